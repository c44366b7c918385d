// Package payment moves funds out of escrow through an external gateway.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"microlend-escrow/internal/domain/payment"
	"microlend-escrow/internal/infrastructure/logger"
)

var _ payment.Transferer = (*Gateway)(nil)

// errDeclined marks a gateway answer that is final for this transfer but
// says nothing about the gateway's health.
var errDeclined = errors.New("transfer declined")

type GatewayConfig struct {
	BaseURL string
	Timeout time.Duration

	// Breaker trips after this many consecutive transport or 5xx failures.
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

// Gateway posts transfers to {BaseURL}/transfers. The transfer reference is
// sent as Idempotency-Key so a retried call cannot pay twice.
type Gateway struct {
	url    string
	client *http.Client
	cb     *gobreaker.CircuitBreaker
	log    *logger.Logger
}

func NewGateway(cfg GatewayConfig, log *logger.Logger) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	g := &Gateway{
		url:    strings.TrimRight(cfg.BaseURL, "/") + "/transfers",
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
	g.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "payment-gateway",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errDeclined)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.log.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return g
}

func (g *Gateway) Transfer(ctx context.Context, t payment.Transfer) error {
	_, err := g.cb.Execute(func() (interface{}, error) {
		return nil, g.post(ctx, t)
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: gateway unavailable: %v", payment.ErrTransferFailed, err)
	}
	return fmt.Errorf("%w: %v", payment.ErrTransferFailed, err)
}

func (g *Gateway) post(ctx context.Context, t payment.Transfer) error {
	body, err := json.Marshal(t)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", t.Ref)

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return fmt.Errorf("%w: status %d: %s", errDeclined, resp.StatusCode, strings.TrimSpace(string(msg)))
	default:
		return fmt.Errorf("gateway status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
}

package notify

import (
	"context"
	"errors"

	"microlend-escrow/internal/domain/event"
	"microlend-escrow/internal/infrastructure/logger"
)

var _ event.Publisher = (*LogPublisher)(nil)

// LogPublisher writes events to the structured log.
type LogPublisher struct{ log *logger.Logger }

func NewLogPublisher(log *logger.Logger) *LogPublisher { return &LogPublisher{log: log} }

func (p *LogPublisher) Publish(_ context.Context, events ...event.Event) error {
	for _, ev := range events {
		p.log.Info("event", "id", ev.ID, "name", string(ev.Name), "loan_id", ev.LoanID, "at", ev.At, "data", ev.Data)
	}
	return nil
}

// Fanout delivers to every publisher and joins their errors.
type Fanout []event.Publisher

func (f Fanout) Publish(ctx context.Context, events ...event.Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, events...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"microlend-escrow/internal/domain/payment"
)

var _ payment.Transferer = (*Memory)(nil)

// Memory is an in-process Transferer that keeps a running balance per
// recipient. It backs local runs and tests.
type Memory struct {
	mu        sync.Mutex
	transfers []payment.Transfer
	balances  map[common.Address]uint64

	// Reject makes transfers to these recipients fail.
	Reject map[common.Address]bool
	// Hook runs before a transfer is recorded; a non-nil error fails it.
	Hook func(ctx context.Context, t payment.Transfer) error
}

func NewMemory() *Memory {
	return &Memory{balances: map[common.Address]uint64{}, Reject: map[common.Address]bool{}}
}

func (m *Memory) Transfer(ctx context.Context, t payment.Transfer) error {
	if m.Hook != nil {
		if err := m.Hook(ctx, t); err != nil {
			return fmt.Errorf("%w: %v", payment.ErrTransferFailed, err)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Reject[t.To] {
		return fmt.Errorf("%w: recipient %s rejected", payment.ErrTransferFailed, t.To.Hex())
	}
	m.transfers = append(m.transfers, t)
	m.balances[t.To] += t.Amount
	return nil
}

func (m *Memory) Transfers() []payment.Transfer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]payment.Transfer(nil), m.transfers...)
}

func (m *Memory) Balance(a common.Address) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[a]
}

// Package usecase wires the collaborators shared by the ledger usecases.
package usecase

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"microlend-escrow/internal/domain/contribution"
	"microlend-escrow/internal/domain/event"
	"microlend-escrow/internal/domain/loan"
	"microlend-escrow/internal/domain/payment"
	"microlend-escrow/internal/domain/settings"
	"microlend-escrow/internal/domain/uow"
	"microlend-escrow/internal/infrastructure/logger"
	"microlend-escrow/pkg/txguard"
)

type Deps struct {
	UoW           uow.UnitOfWork
	Loans         loan.Repository
	Contributions contribution.Repository
	Settings      settings.Repository

	Guard    *txguard.Guard
	Events   event.Publisher
	Payments payment.Transferer

	// Owner receives platform fees and may change rates.
	Owner common.Address
	Clock func() time.Time
	Log   *logger.Logger
}

// WithDefaults fills the optional collaborators. Guard is not optional:
// every usecase of one ledger must share the same guard.
func (d Deps) WithDefaults() Deps {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	return d
}

// Now is the ledger clock in unix seconds.
func (d Deps) Now() int64 {
	return d.Clock().Unix()
}

// Publish sends events that belong to a committed transaction. The ledger
// is already consistent at this point, so failures are only logged.
// Callers release the guard first; a slow subscriber must not hold up writers.
func (d Deps) Publish(ctx context.Context, buf *event.Buffer) {
	evs := buf.Events()
	if d.Events == nil || len(evs) == 0 {
		return
	}
	if err := d.Events.Publish(ctx, evs...); err != nil {
		d.Log.Warn("publish events failed", "error", err, "count", len(evs), "loan_id", evs[0].LoanID)
	}
}

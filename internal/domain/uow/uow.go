package uow

import (
	"context"

	"microlend-escrow/internal/domain/contribution"
	"microlend-escrow/internal/domain/loan"
	"microlend-escrow/internal/domain/settings"
)

// Repos are bound to the same transaction.
type Repos struct {
	Loans         loan.Repository
	Contributions contribution.Repository
	Settings      settings.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock loan first, then pass it in
	WithinLoanTx(ctx context.Context, loanID uint64, fn func(r Repos, l *loan.Loan) error) error
}

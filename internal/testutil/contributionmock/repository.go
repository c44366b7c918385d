package contributionmock

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	domain "microlend-escrow/internal/domain/contribution"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset methods behave like an empty ledger.
type Repo struct {
	CreateFn           func(ctx context.Context, c *domain.Contribution) error
	ListByLoanFn       func(ctx context.Context, loanID uint64) ([]domain.Contribution, error)
	SumByLoanFn        func(ctx context.Context, loanID uint64) (uint64, error)
	AddToLenderTotalFn func(ctx context.Context, loanID uint64, lender common.Address, amount uint64) error
	LenderTotalFn      func(ctx context.Context, loanID uint64, lender common.Address) (uint64, error)
	MarkWithdrawnFn    func(ctx context.Context, loanID uint64, lender common.Address) (int64, error)
	LoanIDsByLenderFn  func(ctx context.Context, lender common.Address) ([]uint64, error)
}

func (m *Repo) Create(ctx context.Context, c *domain.Contribution) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, c)
	}
	return nil
}

func (m *Repo) ListByLoan(ctx context.Context, loanID uint64) ([]domain.Contribution, error) {
	if m.ListByLoanFn != nil {
		return m.ListByLoanFn(ctx, loanID)
	}
	return nil, nil
}

func (m *Repo) SumByLoan(ctx context.Context, loanID uint64) (uint64, error) {
	if m.SumByLoanFn != nil {
		return m.SumByLoanFn(ctx, loanID)
	}
	return 0, nil
}

func (m *Repo) AddToLenderTotal(ctx context.Context, loanID uint64, lender common.Address, amount uint64) error {
	if m.AddToLenderTotalFn != nil {
		return m.AddToLenderTotalFn(ctx, loanID, lender, amount)
	}
	return nil
}

func (m *Repo) LenderTotal(ctx context.Context, loanID uint64, lender common.Address) (uint64, error) {
	if m.LenderTotalFn != nil {
		return m.LenderTotalFn(ctx, loanID, lender)
	}
	return 0, nil
}

func (m *Repo) MarkWithdrawn(ctx context.Context, loanID uint64, lender common.Address) (int64, error) {
	if m.MarkWithdrawnFn != nil {
		return m.MarkWithdrawnFn(ctx, loanID, lender)
	}
	return 0, nil
}

func (m *Repo) LoanIDsByLender(ctx context.Context, lender common.Address) ([]uint64, error) {
	if m.LoanIDsByLenderFn != nil {
		return m.LoanIDsByLenderFn(ctx, lender)
	}
	return nil, nil
}

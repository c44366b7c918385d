package contribution

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

type Repository interface {
	Create(ctx context.Context, c *Contribution) error
	// ListByLoan returns the loan's contributions in funding order.
	ListByLoan(ctx context.Context, loanID uint64) ([]Contribution, error)
	SumByLoan(ctx context.Context, loanID uint64) (uint64, error)

	AddToLenderTotal(ctx context.Context, loanID uint64, lender common.Address, amount uint64) error
	LenderTotal(ctx context.Context, loanID uint64, lender common.Address) (uint64, error)

	// MarkWithdrawn flags every not-yet-withdrawn row of lender on loanID and
	// returns how many rows changed.
	MarkWithdrawn(ctx context.Context, loanID uint64, lender common.Address) (int64, error)

	// LoanIDsByLender returns one entry per funding event, oldest first.
	LoanIDsByLender(ctx context.Context, lender common.Address) ([]uint64, error)
}

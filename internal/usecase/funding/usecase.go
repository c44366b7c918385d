package funding

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"microlend-escrow/internal/domain/contribution"
	"microlend-escrow/internal/domain/event"
	"microlend-escrow/internal/domain/loan"
	"microlend-escrow/internal/domain/payment"
	"microlend-escrow/internal/domain/uow"
	"microlend-escrow/internal/usecase"
	"microlend-escrow/pkg/id"
)

type FundResult struct {
	LoanID      uint64 `json:"loan_id"`
	Accepted    uint64 `json:"accepted"`
	Refunded    uint64 `json:"refunded"`
	TotalFunded uint64 `json:"total_funded"`
	Status      string `json:"status"`
}

// Usecase is the contribution ledger: it accepts lender funds against a
// Pending loan up to its principal.
type Usecase struct{ d usecase.Deps }

func NewUsecase(d usecase.Deps) *Usecase { return &Usecase{d: d.WithDefaults()} }

// Fund records amountSent from funder. Any excess over the unfunded
// remainder is refunded in the same transaction.
func (u *Usecase) Fund(ctx context.Context, loanID uint64, funder common.Address, amountSent uint64) (*FundResult, error) {
	if amountSent == 0 {
		return nil, loan.ErrInvalidAmount
	}
	ctx, release, err := u.d.Guard.Enter(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		res FundResult
		buf event.Buffer
	)
	now := u.d.Now()
	err = u.d.UoW.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if err := l.RequireStatus(loan.StatusPending); err != nil {
			return err
		}
		if funder == l.Borrower {
			return loan.ErrBorrowerCannotFund
		}

		current, err := r.Contributions.SumByLoan(ctx, l.ID)
		if err != nil {
			return err
		}
		if current >= l.Principal {
			return loan.ErrFullyFunded
		}
		accepted := min(amountSent, l.Principal-current)

		if err := r.Contributions.Create(ctx, &contribution.Contribution{
			LoanID: l.ID, Lender: funder, Amount: accepted, CreatedAt: now,
		}); err != nil {
			return err
		}
		if err := r.Contributions.AddToLenderTotal(ctx, l.ID, funder, accepted); err != nil {
			return err
		}
		total := current + accepted
		buf.Add(event.LoanFunded, l.ID, now, event.Funded{Lender: funder, Amount: accepted, TotalFunded: total})

		if total == l.Principal {
			if err := l.TransitionTo(loan.StatusFunded); err != nil {
				return err
			}
			l.FundedAt = now
			if err := r.Loans.Save(ctx, l); err != nil {
				return err
			}
			buf.Add(event.LoanFullyFunded, l.ID, now, event.FullyFunded{TotalFunded: total})
		}

		// Refund last: a failed transfer rolls back the contribution too.
		if excess := amountSent - accepted; excess > 0 {
			err := u.d.Payments.Transfer(ctx, payment.Transfer{
				To: funder, Amount: excess, Ref: id.TransferRef("refund", l.ID, id.NewID32()),
			})
			if err != nil {
				return fmt.Errorf("%w: %v", loan.ErrRefundFailed, err)
			}
			res.Refunded = excess
		}

		res.LoanID = l.ID
		res.Accepted = accepted
		res.TotalFunded = total
		res.Status = string(l.Status)
		return nil
	})
	if err != nil {
		u.d.Log.Warn("fund loan rejected", "loan_id", loanID, "funder", funder.Hex(), "amount", amountSent, "error", err)
		return nil, err
	}

	u.d.Log.Info("loan funded", "loan_id", loanID, "funder", funder.Hex(),
		"accepted", res.Accepted, "refunded", res.Refunded, "total_funded", res.TotalFunded, "status", res.Status)
	release()
	u.d.Publish(ctx, &buf)
	return &res, nil
}

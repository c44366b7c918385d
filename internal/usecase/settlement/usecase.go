package settlement

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
	"microlend-escrow/pkg/bps"
	"microlend-escrow/pkg/id"
)

// Usecase moves money out of (and back into) the escrow once a loan is
// funded: disbursement, repayment, default and lender withdrawal.
//
// Every method stages its state changes first and performs transfers last,
// inside the same transaction; a failed transfer rolls everything back.
type Usecase struct{ d usecase.Deps }

func NewUsecase(d usecase.Deps) *Usecase { return &Usecase{d: d.WithDefaults()} }

func (u *Usecase) Disburse(ctx context.Context, loanID uint64, caller common.Address) (*DisbursementDTO, error) {
	ctx, release, err := u.d.Guard.Enter(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		out DisbursementDTO
		buf event.Buffer
	)
	now := u.d.Now()
	err = u.d.UoW.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if err := l.RequireStatus(loan.StatusFunded); err != nil {
			return err
		}
		if caller != l.Borrower {
			return loan.ErrNotBorrower
		}
		s, err := r.Settings.Get(ctx)
		if err != nil {
			return err
		}
		fee, err := bps.Fee(l.Principal, s.PlatformFeeRate)
		if err != nil {
			return err
		}
		payout := l.Principal - fee

		if err := l.TransitionTo(loan.StatusDisbursed); err != nil {
			return err
		}
		l.DisbursedAt = now
		l.DueDate = now + int64(l.TermDays)*loan.SecondsPerDay
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		opID := id.NewID32()
		if err := u.d.Payments.Transfer(ctx, payment.Transfer{
			To: l.Borrower, Amount: payout, Ref: id.TransferRef("disburse", l.ID, opID),
		}); err != nil {
			return fmt.Errorf("%w: %v", loan.ErrDisbursementFailed, err)
		}
		if fee > 0 {
			if err := u.d.Payments.Transfer(ctx, payment.Transfer{
				To: u.d.Owner, Amount: fee, Ref: id.TransferRef("fee", l.ID, opID),
			}); err != nil {
				return fmt.Errorf("%w: %v", loan.ErrFeeTransferFailed, err)
			}
		}

		buf.Add(event.LoanDisbursed, l.ID, now, event.Disbursed{Borrower: l.Borrower, Amount: payout, DueDate: l.DueDate})
		buf.Add(event.PlatformFeeCollected, l.ID, now, event.FeeCollected{Owner: u.d.Owner, Amount: fee})
		out = DisbursementDTO{LoanID: l.ID, Payout: payout, Fee: fee, DueDate: l.DueDate, Status: string(l.Status)}
		return nil
	})
	if err != nil {
		u.d.Log.Warn("disburse rejected", "loan_id", loanID, "caller", caller.Hex(), "error", err)
		return nil, err
	}

	u.d.Log.Info("loan disbursed", "loan_id", loanID, "payout", out.Payout, "fee", out.Fee, "due_date", out.DueDate)
	release()
	u.d.Publish(ctx, &buf)
	return &out, nil
}

// Repay accepts a partial or full payment. The late penalty is computed at
// payment time and only widens what this payment may cover; the loan is
// Repaid as soon as AmountRepaid reaches TotalRepayment.
func (u *Usecase) Repay(ctx context.Context, loanID uint64, payer common.Address, amountSent uint64) (*RepaymentDTO, error) {
	if amountSent == 0 {
		return nil, loan.ErrInvalidAmount
	}
	ctx, release, err := u.d.Guard.Enter(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		out RepaymentDTO
		buf event.Buffer
	)
	now := u.d.Now()
	err = u.d.UoW.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if err := l.RequireStatus(loan.StatusDisbursed); err != nil {
			return err
		}
		s, err := r.Settings.Get(ctx)
		if err != nil {
			return err
		}
		due, penalty, err := l.AmountDue(now, s.LatePenaltyRate)
		if err != nil {
			return err
		}
		if amountSent > due {
			return fmt.Errorf("%w: sent %d, due %d", loan.ErrOverpayment, amountSent, due)
		}

		l.AmountRepaid += amountSent
		buf.Add(event.RepaymentMade, l.ID, now, event.Repayment{
			Payer: payer, Amount: amountSent, AmountRepaid: l.AmountRepaid, Penalty: penalty,
		})
		if l.AmountRepaid >= l.TotalRepayment {
			if err := l.TransitionTo(loan.StatusRepaid); err != nil {
				return err
			}
			buf.Add(event.LoanRepaid, l.ID, now, event.Repaid{AmountRepaid: l.AmountRepaid})
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = RepaymentDTO{
			LoanID: l.ID, Amount: amountSent, Penalty: penalty,
			AmountRepaid: l.AmountRepaid, Outstanding: l.Outstanding(), Status: string(l.Status),
		}
		return nil
	})
	if err != nil {
		u.d.Log.Warn("repayment rejected", "loan_id", loanID, "payer", payer.Hex(), "amount", amountSent, "error", err)
		return nil, err
	}

	u.d.Log.Info("repayment made", "loan_id", loanID, "amount", amountSent, "amount_repaid", out.AmountRepaid, "status", out.Status)
	release()
	u.d.Publish(ctx, &buf)
	return &out, nil
}

// MarkDefault: the owner may default a loan once it is past due; anyone may
// once the grace period has also elapsed.
func (u *Usecase) MarkDefault(ctx context.Context, loanID uint64, caller common.Address) (*DefaultDTO, error) {
	ctx, release, err := u.d.Guard.Enter(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		out DefaultDTO
		buf event.Buffer
	)
	now := u.d.Now()
	err = u.d.UoW.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if err := l.RequireStatus(loan.StatusDisbursed); err != nil {
			return err
		}
		if !l.DefaultAllowed(now, caller == u.d.Owner) {
			return fmt.Errorf("%w: loan %d due at %d", loan.ErrDefaultNotYetAllowed, l.ID, l.DueDate)
		}
		if err := l.TransitionTo(loan.StatusDefaulted); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		buf.Add(event.LoanDefaulted, l.ID, now, event.Defaulted{MarkedBy: caller, AmountRepaid: l.AmountRepaid})
		out = DefaultDTO{LoanID: l.ID, AmountRepaid: l.AmountRepaid, Status: string(l.Status)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.d.Log.Info("loan defaulted", "loan_id", loanID, "marked_by", caller.Hex(), "amount_repaid", out.AmountRepaid)
	release()
	u.d.Publish(ctx, &buf)
	return &out, nil
}

// Withdraw pays caller floor(AmountRepaid * lenderTotal / Principal) once.
// The share is taken from the loan's current AmountRepaid; truncation
// remainders stay in escrow.
func (u *Usecase) Withdraw(ctx context.Context, loanID uint64, caller common.Address) (*WithdrawalDTO, error) {
	ctx, release, err := u.d.Guard.Enter(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		out WithdrawalDTO
		buf event.Buffer
	)
	now := u.d.Now()
	err = u.d.UoW.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if err := l.RequireStatus(loan.StatusRepaid, loan.StatusDefaulted); err != nil {
			return err
		}
		contributed, err := r.Contributions.LenderTotal(ctx, l.ID, caller)
		if err != nil {
			return err
		}
		if contributed == 0 {
			return contribution.ErrNoContribution
		}
		marked, err := r.Contributions.MarkWithdrawn(ctx, l.ID, caller)
		if err != nil {
			return err
		}
		if marked == 0 {
			return contribution.ErrNothingToWithdraw
		}
		share, err := bps.Share(l.AmountRepaid, contributed, l.Principal)
		if err != nil {
			return err
		}
		if share == 0 {
			return contribution.ErrNothingToWithdraw
		}

		if err := u.d.Payments.Transfer(ctx, payment.Transfer{
			To: caller, Amount: share, Ref: id.TransferRef("withdraw", l.ID, id.NewID32()),
		}); err != nil {
			return fmt.Errorf("%w: %v", loan.ErrWithdrawalFailed, err)
		}

		buf.Add(event.LenderWithdrawal, l.ID, now, event.Withdrawal{Lender: caller, Amount: share})
		out = WithdrawalDTO{LoanID: l.ID, Amount: share}
		return nil
	})
	if err != nil {
		u.d.Log.Warn("withdrawal rejected", "loan_id", loanID, "lender", caller.Hex(), "error", err)
		return nil, err
	}

	u.d.Log.Info("lender withdrawal", "loan_id", loanID, "lender", caller.Hex(), "amount", out.Amount)
	release()
	u.d.Publish(ctx, &buf)
	return &out, nil
}

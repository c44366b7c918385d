package loan

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"microlend-escrow/internal/domain/event"
	domain "microlend-escrow/internal/domain/loan"
	"microlend-escrow/internal/domain/uow"
	"microlend-escrow/internal/usecase"
)

// Usecase is the loan registry: it creates loan records and answers the
// read-only queries.
type Usecase struct{ d usecase.Deps }

func NewUsecase(d usecase.Deps) *Usecase { return &Usecase{d: d.WithDefaults()} }

func (u *Usecase) Create(ctx context.Context, in CreateLoanInput) (*LoanDTO, error) {
	terms := domain.Terms{
		Borrower:             in.Borrower,
		Principal:            in.Principal,
		TermDays:             in.TermDays,
		InterestRate:         in.InterestRate,
		KYCHash:              in.KYCHash,
		ExplanationHash:      in.ExplanationHash,
		RiskCategory:         domain.RiskCategory(in.RiskCategory),
		ProbabilityOfDefault: in.ProbabilityOfDefault,
	}
	// Reject bad input before taking the guard or touching storage.
	if err := terms.Validate(); err != nil {
		return nil, err
	}

	ctx, release, err := u.d.Guard.Enter(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		created *domain.Loan
		buf     event.Buffer
	)
	now := u.d.Now()
	err = u.d.UoW.WithinTx(ctx, func(r uow.Repos) error {
		s, err := r.Settings.GetForUpdate(ctx)
		if err != nil {
			return err
		}
		l, err := domain.New(s.NextLoanID(), terms, now)
		if err != nil {
			return err
		}
		if err := r.Settings.Save(ctx, s); err != nil {
			return err
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		buf.Add(event.LoanCreated, l.ID, now, event.Created{
			Borrower:             l.Borrower,
			Principal:            l.Principal,
			TermDays:             l.TermDays,
			InterestRate:         l.InterestRate,
			TotalRepayment:       l.TotalRepayment,
			KYCHash:              l.KYCHash,
			ExplanationHash:      l.ExplanationHash,
			RiskCategory:         string(l.RiskCategory),
			ProbabilityOfDefault: l.ProbabilityOfDefault,
		})
		created = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.d.Log.Info("loan created", "loan_id", created.ID, "borrower", created.Borrower.Hex(),
		"principal", created.Principal, "total_repayment", created.TotalRepayment)
	release()
	u.d.Publish(ctx, &buf)
	return toDTO(created), nil
}

func (u *Usecase) Get(ctx context.Context, loanID uint64) (*LoanDTO, error) {
	l, err := u.d.Loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return toDTO(l), nil
}

func (u *Usecase) Contributions(ctx context.Context, loanID uint64) (*ContributionsDTO, error) {
	if _, err := u.d.Loans.GetByID(ctx, loanID); err != nil {
		return nil, err
	}
	rows, err := u.d.Contributions.ListByLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	list, total := toContributionDTOs(rows)
	return &ContributionsDTO{LoanID: loanID, TotalFunded: total, Contributions: list}, nil
}

func (u *Usecase) BorrowerLoans(ctx context.Context, borrower common.Address) ([]uint64, error) {
	return u.d.Loans.ListIDsByBorrower(ctx, borrower)
}

func (u *Usecase) LenderLoans(ctx context.Context, lender common.Address) ([]uint64, error) {
	return u.d.Contributions.LoanIDsByLender(ctx, lender)
}

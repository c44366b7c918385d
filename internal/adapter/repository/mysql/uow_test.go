package mysql

import (
	"context"
	"errors"
	"testing"

	"microlend-escrow/internal/domain/contribution"
	loanDomain "microlend-escrow/internal/domain/loan"
	"microlend-escrow/internal/domain/uow"
	"microlend-escrow/internal/testutil/testdb"
)

// ----------------------------- Tests -----------------------------

func TestGormUoW_WithinTx_Commit(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	loanRepo := NewLoanRepository(db)
	contribRepo := NewContributionRepository(db)

	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Loans.Create(ctx, makeLoan(1, borrowerA)); err != nil {
			return err
		}
		return r.Contributions.Create(ctx, &contribution.Contribution{LoanID: 1, Lender: lenderA, Amount: 10})
	})
	if err != nil {
		t.Fatalf("WithinTx commit err: %v", err)
	}

	if _, err := loanRepo.GetByID(ctx, 1); err != nil {
		t.Fatalf("loan not visible after commit: %v", err)
	}
	if sum, _ := contribRepo.SumByLoan(ctx, 1); sum != 10 {
		t.Fatalf("contribution not visible after commit: sum=%d", sum)
	}
}

func TestGormUoW_WithinTx_Rollback(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	loanRepo := NewLoanRepository(db)
	contribRepo := NewContributionRepository(db)

	sentinel := errors.New("boom")

	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Loans.Create(ctx, makeLoan(2, borrowerA)); err != nil {
			return err
		}
		if err := r.Contributions.Create(ctx, &contribution.Contribution{LoanID: 2, Lender: lenderA, Amount: 10}); err != nil {
			return err
		}
		if err := r.Settings.EnsureDefaults(ctx, 1, 1); err != nil {
			return err
		}
		return sentinel // force rollback
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("want sentinel, got %v", err)
	}

	if _, err := loanRepo.GetByID(ctx, 2); !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("expected loan not found after rollback, got %v", err)
	}
	if sum, _ := contribRepo.SumByLoan(ctx, 2); sum != 0 {
		t.Fatalf("expected no contributions after rollback, sum=%d", sum)
	}
	if _, err := NewSettingsRepository(db).Get(ctx); err == nil {
		t.Fatal("expected settings row rolled back")
	}
}

func TestGormUoW_WithinLoanTx_Commit(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	loanRepo := NewLoanRepository(db)

	if err := loanRepo.Create(ctx, makeLoan(3, borrowerA)); err != nil {
		t.Fatalf("seed loan: %v", err)
	}

	if err := guow.WithinLoanTx(ctx, 3, func(r uow.Repos, l *loanDomain.Loan) error {
		if l == nil || l.ID != 3 || l.Status != loanDomain.StatusPending {
			t.Fatalf("unexpected loan passed to fn: %+v", l)
		}
		if err := l.TransitionTo(loanDomain.StatusFunded); err != nil {
			return err
		}
		return r.Loans.Save(ctx, l)
	}); err != nil {
		t.Fatalf("WithinLoanTx commit err: %v", err)
	}

	got, err := loanRepo.GetByID(ctx, 3)
	if err != nil {
		t.Fatalf("GetByID post-commit: %v", err)
	}
	if got.Status != loanDomain.StatusFunded {
		t.Fatalf("loan status not updated, got=%s", got.Status)
	}
}

func TestGormUoW_WithinLoanTx_Rollback(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	loanRepo := NewLoanRepository(db)
	if err := loanRepo.Create(ctx, makeLoan(4, borrowerA)); err != nil {
		t.Fatalf("seed loan: %v", err)
	}

	sentinel := errors.New("stop")
	_ = guow.WithinLoanTx(ctx, 4, func(r uow.Repos, l *loanDomain.Loan) error {
		l.Status = loanDomain.StatusFunded
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		return sentinel // force rollback
	})

	got, err := loanRepo.GetByID(ctx, 4)
	if err != nil {
		t.Fatalf("post-rollback GetByID: %v", err)
	}
	if got.Status != loanDomain.StatusPending {
		t.Fatalf("expected pending after rollback, got %s", got.Status)
	}
}

func TestGormUoW_WithinLoanTx_LoanNotFound(t *testing.T) {
	guow := NewGormUoW(testdb.Open(t))

	err := guow.WithinLoanTx(context.Background(), 404, func(r uow.Repos, l *loanDomain.Loan) error {
		t.Fatalf("callback should not be called when loan missing")
		return nil
	})
	if !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

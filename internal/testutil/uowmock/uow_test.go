package uowmock

import (
	"context"
	"errors"
	"testing"

	"microlend-escrow/internal/domain/loan"
	"microlend-escrow/internal/domain/uow"
	"microlend-escrow/internal/testutil/contributionmock"
	"microlend-escrow/internal/testutil/loanmock"
)

func TestUoW_Default_Unimplemented(t *testing.T) {
	ctx := context.Background()
	m := &UoW{}
	if err := m.WithinTx(ctx, func(uow.Repos) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinTx default: want errUnimplemented, got %v", err)
	}
	if err := m.WithinLoanTx(ctx, 1, func(uow.Repos, *loan.Loan) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinLoanTx default: want errUnimplemented, got %v", err)
	}
}

func TestPassthrough_ForwardsReposAndLoan(t *testing.T) {
	ctx := context.Background()
	lock := &loan.Loan{ID: 7}
	loans := &loanmock.Repo{
		GetByIDForUpdateFn: func(_ context.Context, id uint64) (*loan.Loan, error) {
			if id != 7 {
				t.Fatalf("loanID mismatch, got %d", id)
			}
			return lock, nil
		},
	}
	contribs := &contributionmock.Repo{}
	m := Passthrough(uow.Repos{Loans: loans, Contributions: contribs})

	innerCalled := false
	err := m.WithinLoanTx(ctx, 7, func(r uow.Repos, l *loan.Loan) error {
		innerCalled = true
		if r.Loans != loans || r.Contributions != contribs {
			t.Fatalf("repos not forwarded")
		}
		if l != lock {
			t.Fatalf("loan not forwarded: %+v", l)
		}
		return nil
	})
	if err != nil || !innerCalled {
		t.Fatalf("WithinLoanTx: err=%v called=%v", err, innerCalled)
	}
}

func TestPassthrough_PropagatesErrors(t *testing.T) {
	ctx := context.Background()
	m := Passthrough(uow.Repos{Loans: &loanmock.Repo{}})

	if err := m.WithinLoanTx(ctx, 9, func(uow.Repos, *loan.Loan) error { return nil }); !errors.Is(err, loan.ErrNotFound) {
		t.Fatalf("WithinLoanTx: want ErrNotFound, got %v", err)
	}
	sentinel := errors.New("stop")
	if err := m.WithinTx(ctx, func(uow.Repos) error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("WithinTx: want %v, got %v", sentinel, err)
	}
}

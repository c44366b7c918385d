package loanmock

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	domain "microlend-escrow/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups report domain.ErrNotFound; unset writes succeed.
type Repo struct {
	CreateFn            func(ctx context.Context, l *domain.Loan) error
	SaveFn              func(ctx context.Context, l *domain.Loan) error
	GetByIDFn           func(ctx context.Context, id uint64) (*domain.Loan, error)
	GetByIDForUpdateFn  func(ctx context.Context, id uint64) (*domain.Loan, error)
	ListIDsByBorrowerFn func(ctx context.Context, borrower common.Address) ([]uint64, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListIDsByBorrower(ctx context.Context, borrower common.Address) ([]uint64, error) {
	if m.ListIDsByBorrowerFn != nil {
		return m.ListIDsByBorrowerFn(ctx, borrower)
	}
	return nil, nil
}

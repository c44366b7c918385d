package mysql

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"

	"microlend-escrow/internal/domain/contribution"
)

type ContributionRepository struct{ db *gorm.DB }

func NewContributionRepository(db *gorm.DB) *ContributionRepository {
	return &ContributionRepository{db: db}
}

func (r *ContributionRepository) Create(ctx context.Context, c *contribution.Contribution) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ContributionRepository) ListByLoan(ctx context.Context, loanID uint64) ([]contribution.Contribution, error) {
	out := make([]contribution.Contribution, 0)
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

func (r *ContributionRepository) SumByLoan(ctx context.Context, loanID uint64) (uint64, error) {
	var sum uint64
	err := r.db.WithContext(ctx).
		Model(&contribution.Contribution{}).
		Where("loan_id = ?", loanID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}

// AddToLenderTotal is a read-modify-write; callers hold the loan row lock.
func (r *ContributionRepository) AddToLenderTotal(ctx context.Context, loanID uint64, lender common.Address, amount uint64) error {
	res := r.db.WithContext(ctx).
		Model(&contribution.LenderTotal{}).
		Where("loan_id = ? AND lender = ?", loanID, lender).
		UpdateColumn("amount", gorm.Expr("amount + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&contribution.LenderTotal{
		LoanID: loanID, Lender: lender, Amount: amount,
	}).Error
}

func (r *ContributionRepository) LenderTotal(ctx context.Context, loanID uint64, lender common.Address) (uint64, error) {
	var out contribution.LenderTotal
	res := r.db.WithContext(ctx).
		Where("loan_id = ? AND lender = ?", loanID, lender).
		Limit(1).
		Find(&out)
	if res.Error != nil {
		return 0, res.Error
	}
	return out.Amount, nil
}

func (r *ContributionRepository) MarkWithdrawn(ctx context.Context, loanID uint64, lender common.Address) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&contribution.Contribution{}).
		Where("loan_id = ? AND lender = ? AND withdrawn = ?", loanID, lender, false).
		UpdateColumn("withdrawn", true)
	return res.RowsAffected, res.Error
}

func (r *ContributionRepository) LoanIDsByLender(ctx context.Context, lender common.Address) ([]uint64, error) {
	ids := make([]uint64, 0)
	err := r.db.WithContext(ctx).
		Model(&contribution.Contribution{}).
		Where("lender = ?", lender).
		Order("id ASC").
		Pluck("loan_id", &ids).Error
	return ids, err
}

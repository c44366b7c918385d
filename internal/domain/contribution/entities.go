package contribution

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrNoContribution    = errors.New("caller has no contribution to this loan")
	ErrNothingToWithdraw = errors.New("nothing to withdraw")
)

// Table: contributions. One row per funding event; rows are never merged.
type Contribution struct {
	ID        uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	LoanID    uint64         `gorm:"column:loan_id;not null;index:idx_contributions_loan_lender"`
	Lender    common.Address `gorm:"column:lender;type:binary(20);not null;index:idx_contributions_loan_lender;index:idx_contributions_lender"`
	Amount    uint64         `gorm:"column:amount;not null"`
	Withdrawn bool           `gorm:"column:withdrawn;not null;default:false"`
	CreatedAt int64          `gorm:"column:created_at;autoCreateTime:false"`
}

func (Contribution) TableName() string { return "contributions" }

// Table: lender_totals. Running sum of a lender's contributions to one loan.
type LenderTotal struct {
	LoanID uint64         `gorm:"column:loan_id;primaryKey;autoIncrement:false"`
	Lender common.Address `gorm:"column:lender;type:binary(20);primaryKey"`
	Amount uint64         `gorm:"column:amount;not null"`
}

func (LenderTotal) TableName() string { return "lender_totals" }

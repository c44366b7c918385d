package loan

import (
	"github.com/ethereum/go-ethereum/common"

	"microlend-escrow/pkg/bps"
)

type RiskCategory string

const (
	RiskLow    RiskCategory = "Low"
	RiskMedium RiskCategory = "Medium"
	RiskHigh   RiskCategory = "High"
)

func (r RiskCategory) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// PD thresholds (bps) used by the scoring pipeline to band borrowers.
const (
	lowRiskThreshold    = 500
	mediumRiskThreshold = 1500
)

// CategoryForPD returns the band the scoring pipeline assigns to a PD.
func CategoryForPD(pd uint64) RiskCategory {
	switch {
	case pd < lowRiskThreshold:
		return RiskLow
	case pd < mediumRiskThreshold:
		return RiskMedium
	default:
		return RiskHigh
	}
}

const (
	SecondsPerDay = 86_400
	// GracePeriod is the window after the due date during which only the
	// owner may mark a loan defaulted.
	GracePeriod = 30 * SecondsPerDay

	MaxInterestRate = bps.Denominator
	MaxPD           = bps.Denominator
)

// Table: loans. Timestamps are unix seconds, 0 = unset.
type Loan struct {
	ID                   uint64         `gorm:"column:id;primaryKey;autoIncrement:false"`
	Borrower             common.Address `gorm:"column:borrower;type:binary(20);not null;index:idx_loans_borrower"`
	Principal            uint64         `gorm:"column:principal;not null"`
	InterestRate         uint64         `gorm:"column:interest_rate;not null"`
	TermDays             uint64         `gorm:"column:term_days;not null"`
	TotalRepayment       uint64         `gorm:"column:total_repayment;not null"`
	AmountRepaid         uint64         `gorm:"column:amount_repaid;not null;default:0"`
	CreatedAt            int64          `gorm:"column:created_at;autoCreateTime:false"`
	FundedAt             int64          `gorm:"column:funded_at;not null;default:0"`
	DisbursedAt          int64          `gorm:"column:disbursed_at;not null;default:0"`
	DueDate              int64          `gorm:"column:due_date;not null;default:0"`
	Status               Status         `gorm:"column:status;type:varchar(16);not null;index"`
	KYCHash              common.Hash    `gorm:"column:kyc_hash;type:binary(32);not null"`
	ExplanationHash      common.Hash    `gorm:"column:explanation_hash;type:binary(32);not null"`
	RiskCategory         RiskCategory   `gorm:"column:risk_category;type:varchar(8);not null"`
	ProbabilityOfDefault uint64         `gorm:"column:probability_of_default;not null"`
}

func (Loan) TableName() string { return "loans" }

// Terms are the borrower-supplied inputs of a loan request.
type Terms struct {
	Borrower             common.Address
	Principal            uint64
	TermDays             uint64
	InterestRate         uint64
	KYCHash              common.Hash
	ExplanationHash      common.Hash
	RiskCategory         RiskCategory
	ProbabilityOfDefault uint64
}

func (t Terms) Validate() error {
	switch {
	case t.Principal == 0:
		return invalid("principal must be positive")
	case t.TermDays == 0:
		return invalid("term_days must be positive")
	case t.InterestRate == 0 || t.InterestRate > MaxInterestRate:
		return invalid("interest_rate must be in 1..10000 bps")
	case t.KYCHash == (common.Hash{}):
		return invalid("kyc_hash must be non-zero")
	case t.ExplanationHash == (common.Hash{}):
		return invalid("explanation_hash must be non-zero")
	case t.ProbabilityOfDefault > MaxPD:
		return invalid("probability_of_default must be <= 10000 bps")
	case !t.RiskCategory.Valid():
		return invalid("risk_category must be Low, Medium or High")
	}
	return nil
}

// New builds a Pending loan with its repayment schedule fixed at creation.
func New(id uint64, t Terms, now int64) (*Loan, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	interest, err := bps.Interest(t.Principal, t.InterestRate, t.TermDays)
	if err != nil {
		return nil, invalid(err.Error())
	}
	total := t.Principal + interest
	if total < t.Principal {
		return nil, invalid("total repayment overflows")
	}
	return &Loan{
		ID:                   id,
		Borrower:             t.Borrower,
		Principal:            t.Principal,
		InterestRate:         t.InterestRate,
		TermDays:             t.TermDays,
		TotalRepayment:       total,
		CreatedAt:            now,
		Status:               StatusPending,
		KYCHash:              t.KYCHash,
		ExplanationHash:      t.ExplanationHash,
		RiskCategory:         t.RiskCategory,
		ProbabilityOfDefault: t.ProbabilityOfDefault,
	}, nil
}

// DaysLate is the number of whole days elapsed since the due date.
func (l *Loan) DaysLate(now int64) uint64 {
	if l.DueDate == 0 || now <= l.DueDate {
		return 0
	}
	return uint64(now-l.DueDate) / SecondsPerDay
}

// AmountDue is what a single repayment may cover at time now: the unpaid
// part of TotalRepayment plus any late penalty computed on the fly.
func (l *Loan) AmountDue(now int64, latePenaltyRate uint64) (due, penalty uint64, err error) {
	if l.TotalRepayment > l.AmountRepaid {
		due = l.TotalRepayment - l.AmountRepaid
	}
	if l.DueDate != 0 && now > l.DueDate {
		penalty, err = bps.LatePenalty(l.TotalRepayment, latePenaltyRate, l.DaysLate(now))
		if err != nil {
			return 0, 0, err
		}
		if due+penalty < due {
			return 0, 0, bps.ErrOverflow
		}
		due += penalty
	}
	return due, penalty, nil
}

// Outstanding is TotalRepayment minus AmountRepaid, floored at zero.
func (l *Loan) Outstanding() uint64 {
	if l.AmountRepaid >= l.TotalRepayment {
		return 0
	}
	return l.TotalRepayment - l.AmountRepaid
}

// DefaultAllowed reports whether caller may mark the loan defaulted at now.
func (l *Loan) DefaultAllowed(now int64, callerIsOwner bool) bool {
	if callerIsOwner && now > l.DueDate {
		return true
	}
	return now > l.DueDate+GracePeriod
}

package settings

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound    = errors.New("settings not initialised")
	ErrRateTooHigh = errors.New("rate too high")
)

const (
	// SingletonID is the primary key of the only settings row.
	SingletonID = 1

	MaxPlatformFeeRate = 1000
	MaxLatePenaltyRate = 2000
)

// Table: settings. Process-wide admin parameters plus the loan id counter.
type Settings struct {
	ID              uint8     `gorm:"column:id;primaryKey;autoIncrement:false"`
	PlatformFeeRate uint64    `gorm:"column:platform_fee_rate;not null"`
	LatePenaltyRate uint64    `gorm:"column:late_penalty_rate;not null"`
	LoanCounter     uint64    `gorm:"column:loan_counter;not null;default:0"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Settings) TableName() string { return "settings" }

func ValidatePlatformFeeRate(rate uint64) error {
	if rate > MaxPlatformFeeRate {
		return fmt.Errorf("%w: platform fee rate %d > %d", ErrRateTooHigh, rate, MaxPlatformFeeRate)
	}
	return nil
}

func ValidateLatePenaltyRate(rate uint64) error {
	if rate > MaxLatePenaltyRate {
		return fmt.Errorf("%w: late penalty rate %d > %d", ErrRateTooHigh, rate, MaxLatePenaltyRate)
	}
	return nil
}

// NextLoanID pre-increments the counter; the first loan gets id 1.
func (s *Settings) NextLoanID() uint64 {
	s.LoanCounter++
	return s.LoanCounter
}

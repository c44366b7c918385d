// Package event defines the notifications emitted by ledger operations.
package event

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"microlend-escrow/pkg/id"
)

type Name string

const (
	LoanCreated          Name = "LoanCreated"
	LoanFunded           Name = "LoanFunded"
	LoanFullyFunded      Name = "LoanFullyFunded"
	LoanDisbursed        Name = "LoanDisbursed"
	PlatformFeeCollected Name = "PlatformFeeCollected"
	RepaymentMade        Name = "RepaymentMade"
	LoanRepaid           Name = "LoanRepaid"
	LoanDefaulted        Name = "LoanDefaulted"
	LenderWithdrawal     Name = "LenderWithdrawal"
)

type Event struct {
	ID     string `json:"id"`
	Name   Name   `json:"name"`
	LoanID uint64 `json:"loan_id"`
	At     int64  `json:"at"`
	Data   any    `json:"data,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// Payloads.

type Created struct {
	Borrower             common.Address `json:"borrower"`
	Principal            uint64         `json:"principal"`
	TermDays             uint64         `json:"term_days"`
	InterestRate         uint64         `json:"interest_rate"`
	TotalRepayment       uint64         `json:"total_repayment"`
	KYCHash              common.Hash    `json:"kyc_hash"`
	ExplanationHash      common.Hash    `json:"explanation_hash"`
	RiskCategory         string         `json:"risk_category"`
	ProbabilityOfDefault uint64         `json:"probability_of_default"`
}

type Funded struct {
	Lender      common.Address `json:"lender"`
	Amount      uint64         `json:"amount"`
	TotalFunded uint64         `json:"total_funded"`
}

type FullyFunded struct {
	TotalFunded uint64 `json:"total_funded"`
}

type Disbursed struct {
	Borrower common.Address `json:"borrower"`
	Amount   uint64         `json:"amount"`
	DueDate  int64          `json:"due_date"`
}

type FeeCollected struct {
	Owner  common.Address `json:"owner"`
	Amount uint64         `json:"amount"`
}

type Repayment struct {
	Payer        common.Address `json:"payer"`
	Amount       uint64         `json:"amount"`
	AmountRepaid uint64         `json:"amount_repaid"`
	Penalty      uint64         `json:"penalty"`
}

type Repaid struct {
	AmountRepaid uint64 `json:"amount_repaid"`
}

type Defaulted struct {
	MarkedBy     common.Address `json:"marked_by"`
	AmountRepaid uint64         `json:"amount_repaid"`
}

type Withdrawal struct {
	Lender common.Address `json:"lender"`
	Amount uint64         `json:"amount"`
}

// Buffer collects events during a transaction so they are published only
// after it commits.
type Buffer struct {
	events []Event
}

func (b *Buffer) Add(name Name, loanID uint64, at int64, data any) {
	b.events = append(b.events, Event{ID: id.NewID32(), Name: name, LoanID: loanID, At: at, Data: data})
}

func (b *Buffer) Events() []Event { return b.events }


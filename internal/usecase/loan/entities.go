package loan

import (
	"github.com/ethereum/go-ethereum/common"

	"microlend-escrow/internal/domain/contribution"
	domain "microlend-escrow/internal/domain/loan"
)

type CreateLoanInput struct {
	Borrower             common.Address
	Principal            uint64
	TermDays             uint64
	InterestRate         uint64
	KYCHash              common.Hash
	ExplanationHash      common.Hash
	RiskCategory         string
	ProbabilityOfDefault uint64
}

type LoanDTO struct {
	LoanID               uint64         `json:"loan_id"`
	Borrower             common.Address `json:"borrower"`
	Principal            uint64         `json:"principal"`
	InterestRate         uint64         `json:"interest_rate"`
	TermDays             uint64         `json:"term_days"`
	TotalRepayment       uint64         `json:"total_repayment"`
	AmountRepaid         uint64         `json:"amount_repaid"`
	Outstanding          uint64         `json:"outstanding"`
	CreatedAt            int64          `json:"created_at"`
	FundedAt             int64          `json:"funded_at"`
	DisbursedAt          int64          `json:"disbursed_at"`
	DueDate              int64          `json:"due_date"`
	Status               string         `json:"status"`
	KYCHash              common.Hash    `json:"kyc_hash"`
	ExplanationHash      common.Hash    `json:"explanation_hash"`
	RiskCategory         string         `json:"risk_category"`
	DerivedRiskCategory  string         `json:"derived_risk_category"`
	ProbabilityOfDefault uint64         `json:"probability_of_default"`
}

type ContributionDTO struct {
	Lender    common.Address `json:"lender"`
	Amount    uint64         `json:"amount"`
	Withdrawn bool           `json:"withdrawn"`
	CreatedAt int64          `json:"created_at"`
}

type ContributionsDTO struct {
	LoanID        uint64            `json:"loan_id"`
	TotalFunded   uint64            `json:"total_funded"`
	Contributions []ContributionDTO `json:"contributions"`
}

func toDTO(l *domain.Loan) *LoanDTO {
	return &LoanDTO{
		LoanID:               l.ID,
		Borrower:             l.Borrower,
		Principal:            l.Principal,
		InterestRate:         l.InterestRate,
		TermDays:             l.TermDays,
		TotalRepayment:       l.TotalRepayment,
		AmountRepaid:         l.AmountRepaid,
		Outstanding:          l.Outstanding(),
		CreatedAt:            l.CreatedAt,
		FundedAt:             l.FundedAt,
		DisbursedAt:          l.DisbursedAt,
		DueDate:              l.DueDate,
		Status:               string(l.Status),
		KYCHash:              l.KYCHash,
		ExplanationHash:      l.ExplanationHash,
		RiskCategory:         string(l.RiskCategory),
		DerivedRiskCategory:  string(domain.CategoryForPD(l.ProbabilityOfDefault)),
		ProbabilityOfDefault: l.ProbabilityOfDefault,
	}
}

func toContributionDTOs(rows []contribution.Contribution) ([]ContributionDTO, uint64) {
	out := make([]ContributionDTO, 0, len(rows))
	var total uint64
	for _, c := range rows {
		out = append(out, ContributionDTO{Lender: c.Lender, Amount: c.Amount, Withdrawn: c.Withdrawn, CreatedAt: c.CreatedAt})
		total += c.Amount
	}
	return out, total
}

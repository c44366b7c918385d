package settlement

type DisbursementDTO struct {
	LoanID  uint64 `json:"loan_id"`
	Payout  uint64 `json:"payout"`
	Fee     uint64 `json:"fee"`
	DueDate int64  `json:"due_date"`
	Status  string `json:"status"`
}

type RepaymentDTO struct {
	LoanID       uint64 `json:"loan_id"`
	Amount       uint64 `json:"amount"`
	Penalty      uint64 `json:"penalty"`
	AmountRepaid uint64 `json:"amount_repaid"`
	Outstanding  uint64 `json:"outstanding"`
	Status       string `json:"status"`
}

type DefaultDTO struct {
	LoanID       uint64 `json:"loan_id"`
	AmountRepaid uint64 `json:"amount_repaid"`
	Status       string `json:"status"`
}

type WithdrawalDTO struct {
	LoanID uint64 `json:"loan_id"`
	Amount uint64 `json:"amount"`
}

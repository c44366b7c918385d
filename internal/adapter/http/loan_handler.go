package http

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"

	"microlend-escrow/internal/usecase/loan"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

// The caller is the borrower.
type createLoanReq struct {
	Principal            uint64 `json:"principal" validate:"gt=0"`
	TermDays             uint64 `json:"term_days" validate:"gt=0"`
	InterestRate         uint64 `json:"interest_rate" validate:"gt=0,lte=10000"`
	KYCHash              string `json:"kyc_hash" validate:"required,hash32"`
	ExplanationHash      string `json:"explanation_hash" validate:"required,hash32"`
	RiskCategory         string `json:"risk_category" validate:"required,oneof=Low Medium High"`
	ProbabilityOfDefault uint64 `json:"probability_of_default" validate:"lte=10000"`
}

type loanIDsResp struct {
	Address common.Address `json:"address"`
	LoanIDs []uint64       `json:"loan_ids"`
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	borrower, err := callerOf(c)
	if err != nil {
		return writeError(c, err)
	}
	var req createLoanReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	dto, err := h.uc.Create(c.Request().Context(), loan.CreateLoanInput{
		Borrower:             borrower,
		Principal:            req.Principal,
		TermDays:             req.TermDays,
		InterestRate:         req.InterestRate,
		KYCHash:              common.HexToHash(req.KYCHash),
		ExplanationHash:      common.HexToHash(req.ExplanationHash),
		RiskCategory:         req.RiskCategory,
		ProbabilityOfDefault: req.ProbabilityOfDefault,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	id, err := loanIDParam(c)
	if err != nil {
		return writeError(c, err)
	}
	dto, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Contributions(c echo.Context) error {
	id, err := loanIDParam(c)
	if err != nil {
		return writeError(c, err)
	}
	dto, err := h.uc.Contributions(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) BorrowerLoans(c echo.Context) error {
	addr, err := addressParam(c, "address")
	if err != nil {
		return writeError(c, err)
	}
	ids, err := h.uc.BorrowerLoans(c.Request().Context(), addr)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, loanIDsResp{Address: addr, LoanIDs: nonNil(ids)})
}

func (h *LoanHandler) LenderLoans(c echo.Context) error {
	addr, err := addressParam(c, "address")
	if err != nil {
		return writeError(c, err)
	}
	ids, err := h.uc.LenderLoans(c.Request().Context(), addr)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, loanIDsResp{Address: addr, LoanIDs: nonNil(ids)})
}

func nonNil(ids []uint64) []uint64 {
	if ids == nil {
		return []uint64{}
	}
	return ids
}

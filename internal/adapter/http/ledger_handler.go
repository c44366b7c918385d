package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"microlend-escrow/internal/usecase/funding"
	"microlend-escrow/internal/usecase/settlement"
)

// LedgerHandler serves the money-moving loan operations.
type LedgerHandler struct {
	funding    *funding.Usecase
	settlement *settlement.Usecase
}

func NewLedgerHandler(f *funding.Usecase, s *settlement.Usecase) *LedgerHandler {
	return &LedgerHandler{funding: f, settlement: s}
}

type amountReq struct {
	Amount uint64 `json:"amount" validate:"gt=0"`
}

func (h *LedgerHandler) Fund(c echo.Context) error {
	id, who, err := loanAndCaller(c)
	if err != nil {
		return writeError(c, err)
	}
	var req amountReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	res, err := h.funding.Fund(c.Request().Context(), id, who, req.Amount)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LedgerHandler) Disburse(c echo.Context) error {
	id, who, err := loanAndCaller(c)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.settlement.Disburse(c.Request().Context(), id, who)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LedgerHandler) Repay(c echo.Context) error {
	id, who, err := loanAndCaller(c)
	if err != nil {
		return writeError(c, err)
	}
	var req amountReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	res, err := h.settlement.Repay(c.Request().Context(), id, who, req.Amount)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LedgerHandler) MarkDefault(c echo.Context) error {
	id, who, err := loanAndCaller(c)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.settlement.MarkDefault(c.Request().Context(), id, who)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LedgerHandler) Withdraw(c echo.Context) error {
	id, who, err := loanAndCaller(c)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.settlement.Withdraw(c.Request().Context(), id, who)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"

	"microlend-escrow/internal/adapter/middleware"
	"microlend-escrow/internal/domain/contribution"
	"microlend-escrow/internal/domain/loan"
	"microlend-escrow/internal/domain/payment"
	"microlend-escrow/internal/domain/settings"
	"microlend-escrow/pkg/bps"
	"microlend-escrow/pkg/txguard"
)

// statusFor maps ledger errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, loan.ErrInvalidParameters),
		errors.Is(err, loan.ErrInvalidAmount),
		errors.Is(err, settings.ErrRateTooHigh):
		return http.StatusUnprocessableEntity
	case errors.Is(err, loan.ErrNotFound), errors.Is(err, settings.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, loan.ErrNotBorrower),
		errors.Is(err, loan.ErrNotOwner),
		errors.Is(err, loan.ErrBorrowerCannotFund):
		return http.StatusForbidden
	case errors.Is(err, loan.ErrInvalidStatus),
		errors.Is(err, loan.ErrInvalidTransition),
		errors.Is(err, loan.ErrFullyFunded),
		errors.Is(err, loan.ErrOverpayment),
		errors.Is(err, loan.ErrDefaultNotYetAllowed),
		errors.Is(err, contribution.ErrNoContribution),
		errors.Is(err, contribution.ErrNothingToWithdraw),
		errors.Is(err, txguard.ErrReentrantCall):
		return http.StatusConflict
	case errors.Is(err, loan.ErrRefundFailed),
		errors.Is(err, loan.ErrDisbursementFailed),
		errors.Is(err, loan.ErrFeeTransferFailed),
		errors.Is(err, loan.ErrWithdrawalFailed),
		errors.Is(err, payment.ErrTransferFailed):
		return http.StatusBadGateway
	case errors.Is(err, bps.ErrOverflow):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// validationError carries field details for a 422.
type validationError struct{ details []FieldError }

func (e *validationError) Error() string { return "validation failed" }

func writeError(c echo.Context, err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return c.JSON(he.Code, ErrorResponse{Error: fmt.Sprint(he.Message)})
	}
	var ve *validationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: ve.Error(), Details: ve.details})
	}
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		c.Logger().Error(err)
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(code, ErrorResponse{Error: err.Error()})
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(req); err != nil {
		return &validationError{details: ToFieldErrors(err)}
	}
	return nil
}

func loanIDParam(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("loan_id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid loan_id")
	}
	return id, nil
}

func addressParam(c echo.Context, name string) (common.Address, error) {
	raw := c.Param(name)
	if len(raw) != 42 || !common.IsHexAddress(raw) {
		return common.Address{}, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return common.HexToAddress(raw), nil
}

func callerOf(c echo.Context) (common.Address, error) {
	a, ok := middleware.CallerFrom(c)
	if !ok {
		return common.Address{}, echo.NewHTTPError(http.StatusBadRequest, "missing "+middleware.HeaderCaller)
	}
	return a, nil
}

func loanAndCaller(c echo.Context) (uint64, common.Address, error) {
	id, err := loanIDParam(c)
	if err != nil {
		return 0, common.Address{}, err
	}
	who, err := callerOf(c)
	if err != nil {
		return 0, common.Address{}, err
	}
	return id, who, nil
}

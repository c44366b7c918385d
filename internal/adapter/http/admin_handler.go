package http

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"

	"microlend-escrow/internal/usecase/admin"
)

type AdminHandler struct{ uc *admin.Usecase }

func NewAdminHandler(uc *admin.Usecase) *AdminHandler { return &AdminHandler{uc: uc} }

// Range checks live in the usecase so the error names match the ledger's.
type rateReq struct {
	Rate *uint64 `json:"rate" validate:"required"`
}

func (h *AdminHandler) Rates(c echo.Context) error {
	dto, err := h.uc.Rates(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AdminHandler) SetPlatformFeeRate(c echo.Context) error {
	return h.setRate(c, h.uc.SetPlatformFeeRate)
}

func (h *AdminHandler) SetLatePenaltyRate(c echo.Context) error {
	return h.setRate(c, h.uc.SetLatePenaltyRate)
}

func (h *AdminHandler) setRate(c echo.Context, set func(context.Context, common.Address, uint64) (*admin.RatesDTO, error)) error {
	who, err := callerOf(c)
	if err != nil {
		return writeError(c, err)
	}
	var req rateReq
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	dto, err := set(c.Request().Context(), who, *req.Rate)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

package http

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"microlend-escrow/internal/adapter/middleware"
	"microlend-escrow/internal/infrastructure/logger"
)

type Routes struct {
	Health *Handler
	Loans  *LoanHandler
	Ledger *LedgerHandler
	Admin  *AdminHandler

	// Idempotency is skipped when Redis is nil.
	Redis          redis.UniversalClient
	IdempotencyTTL time.Duration
	Log            *logger.Logger
}

// Register mounts every route on e. Reads are public; writes need a caller
// and pass the idempotency store.
func Register(e *echo.Echo, r Routes) {
	if e.Validator == nil {
		e.Validator = NewValidator()
	}
	e.GET("/health", r.Health.Health)

	e.GET("/loans/:loan_id", r.Loans.GetLoan)
	e.GET("/loans/:loan_id/contributions", r.Loans.Contributions)
	e.GET("/borrowers/:address/loans", r.Loans.BorrowerLoans)
	e.GET("/lenders/:address/loans", r.Loans.LenderLoans)
	e.GET("/admin/rates", r.Admin.Rates)

	writes := []echo.MiddlewareFunc{middleware.Caller()}
	if r.Redis != nil {
		writes = append(writes, middleware.IdempotencyMiddleware(r.Redis, r.IdempotencyTTL, r.Log))
	}
	e.POST("/loans", r.Loans.CreateLoan, writes...)
	e.POST("/loans/:loan_id/fund", r.Ledger.Fund, writes...)
	e.POST("/loans/:loan_id/disburse", r.Ledger.Disburse, writes...)
	e.POST("/loans/:loan_id/repay", r.Ledger.Repay, writes...)
	e.POST("/loans/:loan_id/default", r.Ledger.MarkDefault, writes...)
	e.POST("/loans/:loan_id/withdraw", r.Ledger.Withdraw, writes...)
	e.PUT("/admin/platform-fee-rate", r.Admin.SetPlatformFeeRate, writes...)
	e.PUT("/admin/late-penalty-rate", r.Admin.SetLatePenaltyRate, writes...)
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	httpadp "microlend-escrow/internal/adapter/http"
	"microlend-escrow/internal/adapter/notify"
	"microlend-escrow/internal/adapter/payment"
	"microlend-escrow/internal/adapter/repository/mysql"
	"microlend-escrow/internal/config"
	domainPayment "microlend-escrow/internal/domain/payment"
	"microlend-escrow/internal/infrastructure/cache"
	"microlend-escrow/internal/infrastructure/db"
	"microlend-escrow/internal/infrastructure/logger"
	"microlend-escrow/internal/usecase"
	"microlend-escrow/internal/usecase/admin"
	"microlend-escrow/internal/usecase/funding"
	"microlend-escrow/internal/usecase/loan"
	"microlend-escrow/internal/usecase/settlement"
	"microlend-escrow/pkg/txguard"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatal(err)
	}
	defer lg.Sync()

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), cfg.GormLogLevel())
	if err != nil {
		lg.Fatal("open database", "driver", cfg.DBDriver, "error", err)
	}
	if err := db.Migrate(gdb); err != nil {
		lg.Fatal("migrate", "error", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		lg.Fatal("database handle", "error", err)
	}
	defer sqlDB.Close()

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		lg.Fatal("open redis", "addr", cfg.RedisAddr, "error", err)
	}
	defer rdb.Close()

	var payments domainPayment.Transferer
	switch cfg.PaymentMode {
	case "memory":
		lg.Warn("payments are simulated in memory")
		payments = payment.NewMemory()
	default:
		payments = payment.NewGateway(payment.GatewayConfig{
			BaseURL: cfg.PaymentGatewayURL,
			Timeout: cfg.PaymentTimeout,
		}, lg)
	}

	settingsRepo := mysql.NewSettingsRepository(gdb)
	deps := usecase.Deps{
		UoW:           mysql.NewGormUoW(gdb),
		Loans:         mysql.NewLoanRepository(gdb),
		Contributions: mysql.NewContributionRepository(gdb),
		Settings:      settingsRepo,
		Guard:         txguard.New(),
		Events: notify.Fanout{
			notify.NewRedisPublisher(rdb, cfg.EventsChannel),
			notify.NewLogPublisher(lg),
		},
		Payments: payments,
		Owner:    cfg.Owner(),
		Log:      lg,
	}

	adminUC := admin.NewUsecase(deps)
	if err := adminUC.Init(context.Background(), cfg.PlatformFeeRate, cfg.LatePenaltyRate); err != nil {
		lg.Fatal("init settings", "error", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			kv := []interface{}{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if caller := c.Request().Header.Get("Ax-Caller-Address"); caller != "" {
				kv = append(kv, "caller", caller)
			}
			if v.Error != nil {
				lg.Warn("request", append(kv, "error", v.Error)...)
				return nil
			}
			lg.Info("request", kv...)
			return nil
		},
	}))

	httpadp.Register(e, httpadp.Routes{
		Health: httpadp.NewHandler(map[string]httpadp.Pinger{
			"database": sqlDB.PingContext,
			"redis":    func(ctx context.Context) error { return cache.Ping(ctx, rdb) },
		}),
		Loans:          httpadp.NewLoanHandler(loan.NewUsecase(deps)),
		Ledger:         httpadp.NewLedgerHandler(funding.NewUsecase(deps), settlement.NewUsecase(deps)),
		Admin:          httpadp.NewAdminHandler(adminUC),
		Redis:          rdb,
		IdempotencyTTL: cfg.IdempotencyTTL(),
		Log:            lg,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.AppPort
	go func() {
		lg.Info("listening", "addr", addr, "owner", cfg.Owner().Hex(), "payments", cfg.PaymentMode)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		lg.Error("shutdown", "error", err)
	}
}

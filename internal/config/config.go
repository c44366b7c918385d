package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"gorm.io/gorm/logger"

	"microlend-escrow/internal/domain/settings"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`
	LogMode string `env:"LOG_MODE" envDefault:"dev"`

	// mysql | sqlite
	DBDriver   string `env:"DB_DRIVER" envDefault:"mysql"`
	DBLogLevel string `env:"DB_LOG_LEVEL" envDefault:"warn"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"escrow.db"`

	MySQLHost string `env:"MYSQL_HOST" envDefault:"mysql"`
	MySQLPort string `env:"MYSQL_PORT" envDefault:"3306"`
	MySQLDB   string `env:"MYSQL_DB" envDefault:"escrow"`
	MySQLUser string `env:"MYSQL_USER" envDefault:"escrow"`
	MySQLPass string `env:"MYSQL_PASS" envDefault:"escrow"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"redis:6379"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	EventsChannel string `env:"EVENTS_CHANNEL" envDefault:"escrow:events"`

	IdempTTLSecs int `env:"IDEMPOTENCY_TTL_SECONDS" envDefault:"300"`

	// Owner collects platform fees and administers rates.
	OwnerAddress string `env:"OWNER_ADDRESS"`
	// Initial rates, written once when the settings row is first created.
	PlatformFeeRate uint64 `env:"PLATFORM_FEE_RATE" envDefault:"100"`
	LatePenaltyRate uint64 `env:"LATE_PENALTY_RATE" envDefault:"500"`

	// http | memory
	PaymentMode       string        `env:"PAYMENT_MODE" envDefault:"http"`
	PaymentGatewayURL string        `env:"PAYMENT_GATEWAY_URL"`
	PaymentTimeout    time.Duration `env:"PAYMENT_TIMEOUT" envDefault:"10s"`
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	c := &Config{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("invalid DB_DRIVER %q (mysql|sqlite)", c.DBDriver)
	}
	if !common.IsHexAddress(c.OwnerAddress) || c.Owner() == (common.Address{}) {
		return fmt.Errorf("invalid OWNER_ADDRESS %q", c.OwnerAddress)
	}
	if err := settings.ValidatePlatformFeeRate(c.PlatformFeeRate); err != nil {
		return err
	}
	if err := settings.ValidateLatePenaltyRate(c.LatePenaltyRate); err != nil {
		return err
	}
	switch c.PaymentMode {
	case "http":
		if c.PaymentGatewayURL == "" {
			return errors.New("missing PAYMENT_GATEWAY_URL")
		}
	case "memory":
	default:
		return fmt.Errorf("invalid PAYMENT_MODE %q (http|memory)", c.PaymentMode)
	}
	return nil
}

func (c *Config) Owner() common.Address { return common.HexToAddress(c.OwnerAddress) }

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.SQLitePath
	}
	return c.MySQLDSN()
}

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempTTLSecs) * time.Second
}

func (c *Config) GormLogLevel() logger.LogLevel {
	switch strings.ToLower(c.DBLogLevel) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

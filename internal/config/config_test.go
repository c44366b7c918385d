package config

import (
	"strings"
	"testing"
	"time"

	"gorm.io/gorm/logger"
)

const ownerHex = "0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb0"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OWNER_ADDRESS", ownerHex)
	t.Setenv("PAYMENT_GATEWAY_URL", "http://payments:9000")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.AppPort != "8080" || c.DBDriver != "mysql" || c.PlatformFeeRate != 100 || c.LatePenaltyRate != 500 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.IdempotencyTTL() != 300*time.Second {
		t.Fatalf("ttl = %v", c.IdempotencyTTL())
	}
	if c.PaymentTimeout != 10*time.Second {
		t.Fatalf("payment timeout = %v", c.PaymentTimeout)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !strings.EqualFold(c.Owner().Hex(), ownerHex) {
		t.Fatalf("owner = %s", c.Owner().Hex())
	}
	if !strings.Contains(c.DSN(), "@tcp(mysql:3306)/escrow") {
		t.Fatalf("dsn = %s", c.DSN())
	}
}

func TestLoad_BadNumber(t *testing.T) {
	t.Setenv("REDIS_DB", "nope")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("want parse env error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			AppPort: "8080", DBDriver: "sqlite", SQLitePath: "x.db",
			OwnerAddress: ownerHex, PlatformFeeRate: 100, LatePenaltyRate: 500,
			PaymentMode: "memory",
		}
	}
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"ok", func(c *Config) {}, ""},
		{"bad driver", func(c *Config) { c.DBDriver = "pg" }, "DB_DRIVER"},
		{"missing owner", func(c *Config) { c.OwnerAddress = "" }, "OWNER_ADDRESS"},
		{"zero owner", func(c *Config) { c.OwnerAddress = "0x0000000000000000000000000000000000000000" }, "OWNER_ADDRESS"},
		{"fee too high", func(c *Config) { c.PlatformFeeRate = 1001 }, "rate too high"},
		{"penalty too high", func(c *Config) { c.LatePenaltyRate = 2001 }, "rate too high"},
		{"http without url", func(c *Config) { c.PaymentMode = "http" }, "PAYMENT_GATEWAY_URL"},
		{"mysql bad port", func(c *Config) {
			c.DBDriver = "mysql"
			c.MySQLHost, c.MySQLPort, c.MySQLDB, c.MySQLUser = "h", "notaport", "d", "u"
		}, "MYSQL_PORT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected err: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("want error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestGormLogLevel(t *testing.T) {
	c := &Config{DBLogLevel: "INFO"}
	if c.GormLogLevel() != logger.Info {
		t.Fatalf("level = %v", c.GormLogLevel())
	}
	c.DBLogLevel = ""
	if c.GormLogLevel() != logger.Warn {
		t.Fatalf("default level = %v", c.GormLogLevel())
	}
}

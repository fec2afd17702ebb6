package config

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SHIPPING_FEE_MIN", "")
	t.Setenv("SHIPPING_FEE_MAX", "")
	t.Setenv("PWD_SENIOR_DISCOUNT", "")
	t.Setenv("VOUCHER_DISCOUNT", "")

	cfg := Load()
	if cfg.DBDSN != "eterno.db" {
		t.Fatalf("expected sqlite default dsn, got %q", cfg.DBDSN)
	}
	if cfg.JWTSecret != defaultJWTSecret {
		t.Fatalf("expected development secret, got %q", cfg.JWTSecret)
	}
	if cfg.PWDSeniorRate != 0.20 || cfg.VoucherAmount != 100 {
		t.Fatalf("unexpected discount defaults: %v %v", cfg.PWDSeniorRate, cfg.VoucherAmount)
	}
	if cfg.ShippingFeeMin != 50 || cfg.ShippingFeeMax != 200 {
		t.Fatalf("unexpected shipping defaults: %d-%d", cfg.ShippingFeeMin, cfg.ShippingFeeMax)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("unexpected token ttl %v", cfg.TokenTTL)
	}
}

func TestLoadShippingFloor(t *testing.T) {
	t.Setenv("SHIPPING_FEE_MIN", "10")
	t.Setenv("SHIPPING_FEE_MAX", "20")

	cfg := Load()
	if cfg.ShippingFeeMin != 50 {
		t.Fatalf("expected min raised to 50, got %d", cfg.ShippingFeeMin)
	}
	if cfg.ShippingFeeMax != 50 {
		t.Fatalf("expected max raised to min, got %d", cfg.ShippingFeeMax)
	}
}

func TestLoadInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("VOUCHER_DISCOUNT", "lots")
	t.Setenv("ITEMS_PER_PAGE", "-3")
	t.Setenv("KAFKA_BROKERS", " a:9092, ,b:9092 ")

	cfg := Load()
	if cfg.VoucherAmount != 100 {
		t.Fatalf("expected voucher fallback, got %v", cfg.VoucherAmount)
	}
	if cfg.ItemsPerPage != 20 {
		t.Fatalf("expected items per page fallback, got %d", cfg.ItemsPerPage)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "b:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
}

func TestLoadWarningsGoToStructuredLog(t *testing.T) {
	t.Setenv("JWT_SECRET", "set")
	t.Setenv("SEED_ADMIN_PASSWORD", "set")
	t.Setenv("VOUCHER_DISCOUNT", "lots")

	cfg := Load()
	if len(cfg.Warnings) != 1 || !strings.Contains(cfg.Warnings[0], "VOUCHER_DISCOUNT") {
		t.Fatalf("unexpected warnings %q", cfg.Warnings)
	}

	var buf bytes.Buffer
	logger := NewLogger("info")
	logger.SetOutput(&buf)
	cfg.LogWarnings(logger)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON entry, got %q: %v", buf.String(), err)
	}
	if entry["level"] != "warning" || entry["module"] != "config" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

package database

import (
	"io"
	"path/filepath"
	"testing"

	"eterno-store/internal/config"
	"eterno-store/internal/models"

	"github.com/sirupsen/logrus"
)

func TestConnectSQLiteMigratesAndSeeds(t *testing.T) {
	logg := logrus.New()
	logg.SetOutput(io.Discard)

	cfg := config.Config{DBDriver: "sqlite", DBDSN: filepath.Join(t.TempDir(), "eterno.db")}
	db, err := Connect(cfg, logg)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	created, err := EnsureAdmin(db, "admin123")
	if err != nil || !created {
		t.Fatalf("first EnsureAdmin: created=%v err=%v", created, err)
	}
	if created, err := EnsureAdmin(db, "admin123"); err != nil || created {
		t.Fatalf("second EnsureAdmin: created=%v err=%v", created, err)
	}

	var admin models.User
	if err := db.Where("username = ?", "admin").First(&admin).Error; err != nil || admin.Role != models.RoleAdmin {
		t.Fatalf("admin: %+v %v", admin, err)
	}
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	if _, err := Connect(config.Config{DBDriver: "oracle"}, nil); err == nil {
		t.Fatal("expected an error for an unsupported driver")
	}
}

func TestConnectRedisDisabledWithoutAddr(t *testing.T) {
	if rdb := ConnectRedis("", nil); rdb != nil {
		t.Fatal("expected nil client for an empty address")
	}
}

package database

import (
	"fmt"
	"time"

	"eterno-store/internal/config"
	"eterno-store/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// timestamps are stored in UTC so window comparisons hold on every driver
func nowUTC() time.Time { return time.Now().UTC() }

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "mysql":
		if dsn == "" {
			return nil, fmt.Errorf("DB_DSN not found in environment, please configure your database")
		}
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

// Connect opens the database, waiting for it to come up, and migrates the
// schema. GORM's own log lines go to logg as well.
func Connect(cfg config.Config, logg *logrus.Logger) (*gorm.DB, error) {
	if logg == nil {
		logg = logrus.StandardLogger()
	}
	dial, err := dialector(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Warn
	if cfg.Debug {
		logLevel = logger.Info
	}

	var db *gorm.DB
	for i := 0; i < 5; i++ {
		db, err = gorm.Open(dial, &gorm.Config{
			Logger: logger.New(logg, logger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  logLevel,
				IgnoreRecordNotFoundError: true,
			}),
			NowFunc: nowUTC,
		})
		if err == nil {
			break
		}
		logg.WithError(err).WithField("attempt", i+1).Warn("Failed to connect to database. Retrying in 2 seconds...")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database after 5 attempts: %w", err)
	}

	if cfg.DBDriver == "sqlite" {
		// sqlite allows a single writer
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// OpenMemory returns a migrated in-memory sqlite database on one connection.
func OpenMemory() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: nowUTC,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

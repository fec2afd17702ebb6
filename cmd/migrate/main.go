package main

import (
	"flag"

	"eterno-store/internal/config"
	"eterno-store/internal/database"
)

// migrate creates the schema and seeds the default admin. Pass -seed to also
// fill an empty catalog with sample products.
func main() {
	seed := flag.Bool("seed", false, "seed sample products into an empty catalog")
	flag.Parse()

	dotenvErr := config.LoadDotEnv()
	cfg := config.Load()
	logger := config.NewLogger(cfg.LogLevel)
	if dotenvErr != nil {
		logger.Warn("No .env file found")
	}
	cfg.LogWarnings(logger)

	// Connect runs the migrations
	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	logger.WithField("driver", cfg.DBDriver).Info("schema migrated")

	created, err := database.EnsureAdmin(db, cfg.SeedAdminPassword)
	if err != nil {
		logger.WithError(err).Fatal("Failed to seed admin")
	}
	if created {
		logger.Info("default admin account created")
	}

	if *seed {
		n, err := database.SeedSampleProducts(db)
		if err != nil {
			logger.WithError(err).Fatal("Failed to seed products")
		}
		logger.WithField("count", n).Info("sample products seeded")
	}
}

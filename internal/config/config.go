package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds every runtime setting of the storefront. Values come from the
// environment (optionally seeded from a .env file).
type Config struct {
	Port              string
	BaseURL           string
	DBDriver          string
	DBDSN             string
	JWTSecret         string
	TokenTTL          time.Duration
	AllowedOrigins    []string
	Debug             bool
	LogLevel          string
	CurrencySymbol    string
	CurrencyName      string
	DisplayTimezone   string
	DisplayTZSuffix   string
	PWDSeniorRate     float64
	VoucherAmount     float64
	ShippingFeeMin    int
	ShippingFeeMax    int
	ItemsPerPage      int
	TransactionLimit  int
	ExportPath        string
	UploadDir         string
	RedisAddr         string
	KafkaBrokers      []string
	KafkaTopic        string
	GeminiAPIKey      string
	SeedAdminPassword string

	// Warnings collects problems found while loading, logged by LogWarnings.
	Warnings []string
}

const defaultJWTSecret = "eterno_dev_secret_change_me"

// LoadDotEnv reads .env into the process environment. It runs before the
// logger exists, so a missing file is returned for the caller to log.
func LoadDotEnv() error {
	return godotenv.Load()
}

// Load builds a Config from the environment.
func Load() Config {
	var warn warnings
	cfg := Config{
		Port:              envOr("PORT", "8080"),
		BaseURL:           envOr("BASE_URL", "http://localhost:8080"),
		DBDriver:          strings.ToLower(envOr("DB_DRIVER", "mysql")),
		DBDSN:             os.Getenv("DB_DSN"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		TokenTTL:          time.Duration(warn.envInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		AllowedOrigins:    splitList(envOr("CORS_ORIGINS", "http://localhost:5173")),
		Debug:             os.Getenv("APP_DEBUG") == "true",
		LogLevel:          envOr("LOG_LEVEL", "info"),
		CurrencySymbol:    envOr("CURRENCY_SYMBOL", "₱"),
		CurrencyName:      envOr("CURRENCY_NAME", "PHP"),
		DisplayTimezone:   envOr("DISPLAY_TIMEZONE", "Asia/Singapore"),
		DisplayTZSuffix:   envOr("DISPLAY_TZ_SUFFIX", "SGT"),
		PWDSeniorRate:     warn.envFloat("PWD_SENIOR_DISCOUNT", 0.20),
		VoucherAmount:     warn.envFloat("VOUCHER_DISCOUNT", 100),
		ShippingFeeMin:    warn.envInt("SHIPPING_FEE_MIN", 50),
		ShippingFeeMax:    warn.envInt("SHIPPING_FEE_MAX", 200),
		ItemsPerPage:      warn.envInt("ITEMS_PER_PAGE", 20),
		TransactionLimit:  warn.envInt("TRANSACTION_LIMIT", 200),
		ExportPath:        envOr("EXPORT_PATH", "eterno_data.xlsx"),
		UploadDir:         envOr("UPLOAD_DIR", "./uploads"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		KafkaBrokers:      splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:        envOr("KAFKA_TOPIC", "eterno-transactions"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		SeedAdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
	}

	if cfg.JWTSecret == "" {
		warn.add("JWT_SECRET not set, using the development secret")
		cfg.JWTSecret = defaultJWTSecret
	}
	if cfg.SeedAdminPassword == "" {
		warn.add("SEED_ADMIN_PASSWORD not set, using the default admin password")
		cfg.SeedAdminPassword = "admin123"
	}
	if cfg.DBDriver == "sqlite" && cfg.DBDSN == "" {
		cfg.DBDSN = "eterno.db"
	}
	cfg.normalize(&warn)
	cfg.Warnings = warn
	return cfg
}

// normalize enforces the business floors on the pricing settings.
func (c *Config) normalize(warn *warnings) {
	if c.ShippingFeeMin < 50 {
		c.ShippingFeeMin = 50
	}
	if c.ShippingFeeMax < c.ShippingFeeMin {
		c.ShippingFeeMax = c.ShippingFeeMin
	}
	if c.PWDSeniorRate < 0 || c.PWDSeniorRate > 1 {
		warn.add(fmt.Sprintf("PWD_SENIOR_DISCOUNT %.2f out of range, using 0.20", c.PWDSeniorRate))
		c.PWDSeniorRate = 0.20
	}
	if c.VoucherAmount < 0 {
		c.VoucherAmount = 100
	}
	if c.ItemsPerPage <= 0 {
		c.ItemsPerPage = 20
	}
	if c.TransactionLimit <= 0 {
		c.TransactionLimit = 200
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = 24 * time.Hour
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// LogWarnings writes every load warning to logger.
func (c Config) LogWarnings(logger *logrus.Logger) {
	for _, w := range c.Warnings {
		logger.WithField("module", "config").Warn(w)
	}
}

type warnings []string

func (w *warnings) add(msg string) { *w = append(*w, msg) }

func (w *warnings) envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		w.add(fmt.Sprintf("invalid %s=%q, using %d", key, raw, fallback))
		return fallback
	}
	return v
}

func (w *warnings) envFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		w.add(fmt.Sprintf("invalid %s=%q, using %.2f", key, raw, fallback))
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

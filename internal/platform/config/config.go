package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	JWTSecret      string
	LogLevel       string
	MigrationsPath string

	// Ledger behaviour
	Currency         string
	BalanceEpsilon   decimal.Decimal
	PrefixRollup     bool
	BalanceCacheSize int

	// HTTP surface
	RateLimit          string
	CORSAllowedOrigins []string

	// Usage analytics
	PosthogAPIKey   string
	PosthogEndpoint string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", true)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("LEDGER_CURRENCY", "USD")
	viper.SetDefault("LEDGER_BALANCE_EPSILON", "0.01")
	viper.SetDefault("LEDGER_PREFIX_ROLLUP", true)
	viper.SetDefault("BALANCE_CACHE_SIZE", 4096)
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "https://eu.i.posthog.com")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	epsilonStr := viper.GetString("LEDGER_BALANCE_EPSILON")
	epsilon, err := decimal.NewFromString(epsilonStr)
	if err != nil || epsilon.IsNegative() {
		epsilon = decimal.NewFromFloat(0.01)
		log.Printf("Warning: Invalid value for LEDGER_BALANCE_EPSILON ('%s'). Defaulting to %s.\n", epsilonStr, epsilon.String())
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.LogLevel = viper.GetString("LOG_LEVEL")
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")
	cfg.Currency = strings.ToUpper(viper.GetString("LEDGER_CURRENCY"))
	cfg.BalanceEpsilon = epsilon
	cfg.PrefixRollup = viper.GetBool("LEDGER_PREFIX_ROLLUP")
	cfg.BalanceCacheSize = viper.GetInt("BALANCE_CACHE_SIZE")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	cfg.PosthogEndpoint = viper.GetString("POSTHOG_ENDPOINT")

	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	return cfg, nil
}

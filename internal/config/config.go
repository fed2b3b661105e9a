package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// Following 12-factor app principles, all config is loaded from environment variables
type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	Checkout  CheckoutConfig
	Floor     FloorConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Broker    BrokerConfig
	Receipt   ReceiptConfig
	Mock      MockConfig
	LogLevel  string
	LogFormat string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
	AllowedOrigins  []string
}

// AuthConfig configures the mock auth gate. The credentials are the fixed
// demo account; every successful login is issued a signed session token.
type AuthConfig struct {
	AdminEmail    string
	AdminPassword string
	AdminMobile   string
	OTP           string
	JWTSecret     string
	TokenTTL      time.Duration
	RateLimit     float64 // auth requests per second per client
	RateBurst     int
}

type CheckoutConfig struct {
	TaxRate      float64
	PaymentDelay time.Duration
}

// FloorConfig controls the demo table simulator. It is off unless
// FLOOR_SIMULATION is set.
type FloorConfig struct {
	Simulation      bool
	Interval        time.Duration
	TickProbability float64
	BillingChance   float64
	AvailableChance float64
}

type DatabaseConfig struct {
	URL string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type BrokerConfig struct {
	URL        string
	Exchange   string
	FloorQueue string
}

type ReceiptConfig struct {
	RestaurantName string
	SpoolDir       string
}

type MockConfig struct {
	Latency time.Duration
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("WRITE_TIMEOUT", 15),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 30),
			AllowedOrigins:  getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		},
		Auth: AuthConfig{
			AdminEmail:    getEnv("AUTH_ADMIN_EMAIL", "admin@posapp.com"),
			AdminPassword: getEnv("AUTH_ADMIN_PASSWORD", "Admin@123"),
			AdminMobile:   getEnv("AUTH_ADMIN_MOBILE", "9999999999"),
			OTP:           getEnv("AUTH_OTP", "123456"),
			JWTSecret:     getEnv("JWT_SECRET", "pos-console-dev-secret"),
			TokenTTL:      getEnvAsDuration("TOKEN_TTL", 12*time.Hour),
			RateLimit:     getEnvAsFloat("AUTH_RATE_LIMIT", 5),
			RateBurst:     getEnvAsInt("AUTH_RATE_BURST", 10),
		},
		Checkout: CheckoutConfig{
			TaxRate:      getEnvAsFloat("TAX_RATE", 0.08),
			PaymentDelay: getEnvAsDuration("PAYMENT_DELAY", 1500*time.Millisecond),
		},
		Floor: FloorConfig{
			Simulation:      getEnvAsBool("FLOOR_SIMULATION", false),
			Interval:        getEnvAsDuration("FLOOR_SIMULATION_INTERVAL", 5*time.Second),
			TickProbability: getEnvAsFloat("FLOOR_SIMULATION_TICK_PROBABILITY", 0.3),
			BillingChance:   getEnvAsFloat("FLOOR_SIMULATION_BILLING_CHANCE", 0.05),
			AvailableChance: getEnvAsFloat("FLOOR_SIMULATION_AVAILABLE_CHANCE", 0.02),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Broker: BrokerConfig{
			URL:        getEnv("AMQP_URL", ""),
			Exchange:   getEnv("AMQP_EXCHANGE", "pos_events"),
			FloorQueue: getEnv("AMQP_FLOOR_QUEUE", "pos.floor.q"),
		},
		Receipt: ReceiptConfig{
			RestaurantName: getEnv("RESTAURANT_NAME", "POS Restaurant"),
			SpoolDir:       getEnv("PRINT_SPOOL_DIR", os.TempDir()),
		},
		Mock: MockConfig{
			Latency: getEnvAsDuration("MOCK_LATENCY", 0),
		},
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}

	if c.Auth.RateLimit <= 0 || c.Auth.RateBurst <= 0 {
		return fmt.Errorf("auth rate limit and burst must be positive")
	}

	if c.Checkout.TaxRate < 0 || c.Checkout.TaxRate >= 1 {
		return fmt.Errorf("invalid tax rate: %v (must be in [0, 1))", c.Checkout.TaxRate)
	}

	if c.Checkout.PaymentDelay < 0 {
		return fmt.Errorf("PAYMENT_DELAY must not be negative")
	}

	if c.Floor.Simulation && c.Floor.Interval <= 0 {
		return fmt.Errorf("FLOOR_SIMULATION_INTERVAL must be positive when simulation is enabled")
	}

	for name, p := range map[string]float64{
		"tick":      c.Floor.TickProbability,
		"billing":   c.Floor.BillingChance,
		"available": c.Floor.AvailableChance,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("invalid floor simulation %s probability: %v", name, p)
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}

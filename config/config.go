package config

import (
	"os"
	"strconv"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Get reads an environment variable with a fallback value.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// OnlineMinimumAmount is the smallest total the payment provider will charge.
// Checkout sessions below this are rejected before any external call.
func OnlineMinimumAmount() float64 {
	raw := Get("ONLINE_MIN_AMOUNT", "50")
	min, err := strconv.ParseFloat(raw, 64)
	if err != nil || min < 0 {
		return 50
	}
	return min
}

// InitDB opens the database connection. MySQL when DB_DSN is configured,
// a local sqlite file otherwise so the app can run without a server.
func InitDB() (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		return gorm.Open(mysql.Open(dsn), cfg)
	}
	return gorm.Open(sqlite.Open(Get("DB_FILE", "campus_services.db")), cfg)
}

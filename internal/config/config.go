package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For splitting CORS origins

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort           string   // Application port
	DBUser            string   // Database user
	DBPassword        string   // Database password
	DBHost            string   // Database host
	DBPort            string   // Database port
	DBName            string   // Database name
	JWTSecret         string   // JWT secret key
	RedisAddr         string   // Redis server address
	RedisPass         string   // Redis password
	RedisDB           int      // Redis database number
	CryptoCompareKey  string   // CryptoCompare API key
	CoinGeckoKey      string   // CoinGecko demo API key (optional)
	CORSOrigins       []string // Allowed CORS origins
	IsProd            bool     // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:          getEnv("APP_PORT", "8080"),             // Application port
		DBUser:           os.Getenv("DB_USER"),                   // Database user
		DBPassword:       os.Getenv("DB_PASSWORD"),               // Database password
		DBHost:           os.Getenv("DB_HOST"),                   // Database host
		DBPort:           getEnv("DB_PORT", "3306"),              // Database port
		DBName:           os.Getenv("DB_NAME"),                   // Database name
		JWTSecret:        os.Getenv("JWT_SECRET"),                // JWT secret key
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"), // Redis server address
		RedisPass:        os.Getenv("REDIS_PASS"),                // Redis password
		RedisDB:          redisDB,                                // Redis database number
		CryptoCompareKey: os.Getenv("CRYPTOCOMPARE_API_KEY"),     // CryptoCompare API key
		CoinGeckoKey:     os.Getenv("COINGECKO_API_KEY"),         // CoinGecko demo API key
		CORSOrigins:      splitOrigins(os.Getenv("CORS_ORIGINS")), // Allowed CORS origins
		IsProd:           os.Getenv("IS_PROD") == "true",         // Is production environment
	}
}

// getEnv returns the env value or a default when unset
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// splitOrigins parses a comma-separated origin list
func splitOrigins(raw string) []string {
	if raw == "" {
		return []string{"http://localhost:5173"} // Vite dev server default
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

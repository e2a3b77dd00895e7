package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort    string // Application port
	IsProd     bool   // Is production environment
	DBDriver   string // Database driver: mysql, postgres, sqlite or sqlserver (sqlite search folds ASCII case only)
	DBDSN      string // Full DSN, overrides the DB_* parts when set
	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host
	DBPort     string // Database port
	DBName     string // Database name
	JWTSecret  string // JWT secret key
	RedisAddr  string // Redis server address
	RedisPass  string // Redis password
	RedisDB    int    // Redis database number

	BraintreeEnvironment string // sandbox or production
	BraintreeMerchantID  string // Braintree merchant ID
	BraintreePublicKey   string // Braintree public key
	BraintreePrivateKey  string // Braintree private key

	PhotoDisk  string // Where product photos live: database or s3
	S3Bucket   string // S3 bucket for photos
	S3Region   string // S3 region
	S3Key      string // Static access key (MinIO, R2)
	S3Secret   string // Static secret key
	S3Endpoint string // Custom endpoint, empty for AWS

	MongoURI           string // MongoDB URI for log shipping, empty disables it
	MongoDB            string // MongoDB database name
	MongoLogCollection string // MongoDB collection receiving log entries

	IntentTTL     time.Duration // Age after which a pending checkout intent is orphaned
	SweepInterval time.Duration // How often the server sweeps for orphaned intents
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:    getEnv("APP_PORT", "8080"),     // Application port
		IsProd:     os.Getenv("IS_PROD") == "true", // Is production environment
		DBDriver:   getEnv("DB_DRIVER", "mysql"),   // Database driver
		DBDSN:      os.Getenv("DB_DSN"),            // Full DSN override
		DBUser:     os.Getenv("DB_USER"),           // Database user
		DBPassword: os.Getenv("DB_PASSWORD"),       // Database password
		DBHost:     getEnv("DB_HOST", "127.0.0.1"), // Database host
		DBPort:     getEnv("DB_PORT", "3306"),      // Database port
		DBName:     os.Getenv("DB_NAME"),           // Database name
		JWTSecret:  os.Getenv("JWT_SECRET"),        // JWT secret key
		RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:  os.Getenv("REDIS_PASS"),
		RedisDB:    redisDB,

		BraintreeEnvironment: getEnv("BRAINTREE_ENVIRONMENT", "sandbox"),
		BraintreeMerchantID:  os.Getenv("BRAINTREE_MERCHANT_ID"),
		BraintreePublicKey:   os.Getenv("BRAINTREE_PUBLIC_KEY"),
		BraintreePrivateKey:  os.Getenv("BRAINTREE_PRIVATE_KEY"),

		PhotoDisk:  getEnv("PHOTO_DISK", "database"),
		S3Bucket:   os.Getenv("S3_BUCKET"),
		S3Region:   getEnv("S3_REGION", "us-east-1"),
		S3Key:      os.Getenv("S3_KEY"),
		S3Secret:   os.Getenv("S3_SECRET"),
		S3Endpoint: os.Getenv("S3_ENDPOINT"),

		MongoURI:           os.Getenv("MONGO_URI"),
		MongoDB:            getEnv("MONGO_DB", "shop"),
		MongoLogCollection: getEnv("MONGO_LOG_COLLECTION", "logs"),

		IntentTTL:     getDuration("INTENT_TTL", 15*time.Minute),
		SweepInterval: getDuration("SWEEP_INTERVAL", 5*time.Minute),
	}
}

// DSN returns the data source name for the configured driver
func (c *Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN // Explicit DSN wins
	}
	// Build a MySQL DSN from its parts
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=true"
}

// getEnv returns the variable or fallback when unset
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getDuration parses a Go duration variable, falling back on absence or parse errors
func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

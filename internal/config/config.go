package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost         string
	DBPort         int
	DBUser         string
	DBPassword     string
	DBName         string
	DBMaxOpenConns int
	DBMaxIdleConns int

	// Redis
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	// JWT
	JWTSecret      string
	JWTExpireHours int

	// API
	APIPort     int
	Environment string

	// External hostname customers point their CNAMEs at
	ExternalHost string

	// File storage
	UploadDir     string
	MaxUploadSize int64

	// Offsite backup (FTP mirror of uploads), disabled when host is empty
	BackupFTPHost     string
	BackupFTPPort     int
	BackupFTPUsername string
	BackupFTPPassword string
	BackupFTPPath     string
	BackupIntervalMin int
}

// generateSecureSecret generates a cryptographically secure random secret
func generateSecureSecret(length int) string {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return hex.EncodeToString([]byte(os.Getenv("HOSTNAME") + string(rune(length))))
	}
	return hex.EncodeToString(bytes)
}

func Load() *Config {
	// .env is optional; real deployments set env vars directly
	godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = generateSecureSecret(32)
		log.Println("WARNING: JWT_SECRET not set - generated random secret. Sessions will not persist across restarts.")
	}

	dbPassword := getEnv("DB_PASSWORD", "")
	if dbPassword == "" {
		log.Println("WARNING: DB_PASSWORD not set - this is insecure for production!")
		dbPassword = "changeme"
	}

	redisPassword := getEnv("REDIS_PASSWORD", "")
	if redisPassword == "" {
		log.Println("WARNING: REDIS_PASSWORD not set - Redis is not secured!")
	}

	return &Config{
		// Database
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnvInt("DB_PORT", 5432),
		DBUser:         getEnv("DB_USER", "hostpanel"),
		DBPassword:     dbPassword,
		DBName:         getEnv("DB_NAME", "hostpanel"),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 50),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnvInt("REDIS_PORT", 6379),
		RedisPassword: redisPassword,
		RedisDB:       getEnvInt("REDIS_DB", 0),

		// JWT
		JWTSecret:      jwtSecret,
		JWTExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 168), // 7 days default

		// API
		APIPort:     getEnvInt("API_PORT", 8080),
		Environment: getEnv("ENVIRONMENT", "development"),

		ExternalHost: getEnv("EXTERNAL_HOST", "edge.hostpanel.io"),

		// File storage
		UploadDir:     getEnv("UPLOAD_DIR", "/var/lib/hostpanel/uploads"),
		MaxUploadSize: int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 100)) * 1024 * 1024,

		// Offsite backup
		BackupFTPHost:     getEnv("BACKUP_FTP_HOST", ""),
		BackupFTPPort:     getEnvInt("BACKUP_FTP_PORT", 21),
		BackupFTPUsername: getEnv("BACKUP_FTP_USERNAME", ""),
		BackupFTPPassword: getEnv("BACKUP_FTP_PASSWORD", ""),
		BackupFTPPath:     getEnv("BACKUP_FTP_PATH", "/hostpanel"),
		BackupIntervalMin: getEnvInt("BACKUP_INTERVAL_MINUTES", 30),
	}
}

// IsProduction reports whether the panel runs in production mode.
// Internal error details are suppressed from responses in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

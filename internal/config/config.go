package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Redis    RedisConfig
	Storage  StorageConfig
	SMTP     SMTPConfig
	Kafka    KafkaConfig
	School   SchoolConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type StorageConfig struct {
	Type     string
	BasePath string
	BaseURL  string
}

// SMTPConfig holds outgoing mail settings. An empty Host disables sending.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type KafkaConfig struct {
	Brokers []string
}

// SchoolConfig holds the geofence and the daily time windows.
type SchoolConfig struct {
	Latitude          float64
	Longitude         float64
	RadiusMeters      float64
	Timezone          string
	LateAfter         string // HH:MM, local
	CheckOutFrom      string // HH:MM, local
	EvidenceUntil     string // HH:MM, local
	DailySummaryHour  int
	EvidenceMaxDays   int
	PhotoMaxEncodedKB int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, using process environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "absensigeo"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Redis configuration
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
		TTL:      cacheTTL,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}
	if len(config.App.AllowedOrigins) == 0 {
		config.App.AllowedOrigins = []string{"http://localhost:3000"}
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	config.Storage = StorageConfig{
		Type:     getEnv("STORAGE_TYPE", "local"),
		BasePath: getEnv("STORAGE_BASE_PATH", "./uploads"),
		BaseURL:  getEnv("STORAGE_BASE_URL", "http://localhost:8080/uploads"),
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "no-reply@absensigeo.local"),
		FromName: getEnv("SMTP_FROM_NAME", "Absensi Sekolah"),
	}

	config.Kafka = KafkaConfig{
		Brokers: getEnvSlice("KAFKA_BROKERS"),
	}

	school, err := loadSchool()
	if err != nil {
		return nil, err
	}
	config.School = school

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadSchool() (SchoolConfig, error) {
	lat, err := strconv.ParseFloat(getEnv("SCHOOL_LATITUDE", "-1.8522909597985264"), 64)
	if err != nil {
		return SchoolConfig{}, fmt.Errorf("invalid SCHOOL_LATITUDE: %w", err)
	}
	lon, err := strconv.ParseFloat(getEnv("SCHOOL_LONGITUDE", "106.1316275965487"), 64)
	if err != nil {
		return SchoolConfig{}, fmt.Errorf("invalid SCHOOL_LONGITUDE: %w", err)
	}
	radius, err := strconv.ParseFloat(getEnv("SCHOOL_RADIUS_METERS", "1000"), 64)
	if err != nil {
		return SchoolConfig{}, fmt.Errorf("invalid SCHOOL_RADIUS_METERS: %w", err)
	}
	summaryHour, err := strconv.Atoi(getEnv("DAILY_SUMMARY_HOUR", "17"))
	if err != nil {
		return SchoolConfig{}, fmt.Errorf("invalid DAILY_SUMMARY_HOUR: %w", err)
	}
	evidenceDays, err := strconv.Atoi(getEnv("EVIDENCE_MAX_DAYS", "31"))
	if err != nil {
		return SchoolConfig{}, fmt.Errorf("invalid EVIDENCE_MAX_DAYS: %w", err)
	}
	photoKB, err := strconv.Atoi(getEnv("PHOTO_MAX_ENCODED_KB", "800"))
	if err != nil {
		return SchoolConfig{}, fmt.Errorf("invalid PHOTO_MAX_ENCODED_KB: %w", err)
	}

	return SchoolConfig{
		Latitude:          lat,
		Longitude:         lon,
		RadiusMeters:      radius,
		Timezone:          getEnv("SCHOOL_TIMEZONE", "Asia/Jakarta"),
		LateAfter:         getEnv("LATE_AFTER", "07:15"),
		CheckOutFrom:      getEnv("CHECK_OUT_FROM", "16:00"),
		EvidenceUntil:     getEnv("EVIDENCE_UNTIL", "16:00"),
		DailySummaryHour:  summaryHour,
		EvidenceMaxDays:   evidenceDays,
		PhotoMaxEncodedKB: photoKB,
	}, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.LoadLocation(c.School.Timezone); err != nil {
		return fmt.Errorf("invalid SCHOOL_TIMEZONE: %w", err)
	}
	for key, value := range map[string]string{
		"LATE_AFTER":     c.School.LateAfter,
		"CHECK_OUT_FROM": c.School.CheckOutFrom,
		"EVIDENCE_UNTIL": c.School.EvidenceUntil,
	} {
		if _, err := time.Parse("15:04", value); err != nil {
			return fmt.Errorf("%s must be HH:MM", key)
		}
	}
	if c.School.RadiusMeters <= 0 {
		return fmt.Errorf("SCHOOL_RADIUS_METERS must be positive")
	}
	if c.School.DailySummaryHour < 0 || c.School.DailySummaryHour > 23 {
		return fmt.Errorf("DAILY_SUMMARY_HOUR must be between 0 and 23")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

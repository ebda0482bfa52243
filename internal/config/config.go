package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv         string `yaml:"app_env"`
	Port           string `yaml:"port"`
	AllowedOrigins string `yaml:"allowed_origins"`
	LogLevel       string `yaml:"log_level"`

	DatabaseURL string `yaml:"database_url"`
	DBHost      string `yaml:"db_host"`
	DBUser      string `yaml:"db_user"`
	DBPass      string `yaml:"db_pass"`
	DBName      string `yaml:"db_name"`
	DBPort      string `yaml:"db_port"`

	RedisURL string `yaml:"redis_url"`

	MeiliSearchHost string `yaml:"meilisearch_host"`
	MeiliMasterKey  string `yaml:"meili_master_key"`

	CloudinaryURL          string `yaml:"cloudinary_url"`
	CloudinaryCloudName    string `yaml:"cloudinary_cloud_name"`
	CloudinaryAPIKey       string `yaml:"cloudinary_api_key"`
	CloudinaryAPISecret    string `yaml:"cloudinary_api_secret"`
	CloudinaryUploadFolder string `yaml:"cloudinary_upload_folder"`

	JWTSecret string        `yaml:"jwt_secret"`
	JWTTTL    time.Duration `yaml:"jwt_ttl"`

	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	MailFrom     string `yaml:"mail_from"`

	RateLimitProject      time.Duration `yaml:"rate_limit_project"`
	AnonMessageDailyQuota int           `yaml:"anon_message_daily_quota"`

	CleanupSchedule string `yaml:"cleanup_schedule"`
	ReindexSchedule string `yaml:"reindex_schedule"`

	// AdminUsername enables seeding an admin account at startup.
	AdminUsername string `yaml:"admin_username"`
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPass:      os.Getenv("DB_PASS"),
		DBName:      getEnv("DB_NAME", "devsearch"),
		DBPort:      getEnv("DB_PORT", "5432"),

		RedisURL: os.Getenv("REDIS_URL"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		CloudinaryURL:          os.Getenv("CLOUDINARY_URL"),
		CloudinaryCloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:       os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:    os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "devsearch"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getEnv("MAIL_FROM", "noreply@devsearch.local"),

		CleanupSchedule: getEnv("CLEANUP_SCHEDULE", "@every 1h"),
		ReindexSchedule: getEnv("REINDEX_SCHEDULE", "@daily"),

		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	var err error
	cfg.JWTTTL, err = parseDuration(getEnv("JWT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	cfg.RateLimitProject, err = parseDuration(getEnv("RATE_LIMIT_PROJECT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PROJECT: %w", err)
	}
	cfg.SMTPPort, err = strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	cfg.AnonMessageDailyQuota, err = strconv.Atoi(getEnv("ANON_MESSAGE_DAILY_QUOTA", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid ANON_MESSAGE_DAILY_QUOTA: %w", err)
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.overlay(path); err != nil {
			return nil, err
		}
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "dev-secret-change-me"
	}

	return cfg, nil
}

// overlay applies a YAML file on top of the environment. Keys absent from the
// file keep their current value.
func (c *Config) overlay(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}

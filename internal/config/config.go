package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Elastic  ElasticsearchConfig
	MinIO    MinIOConfig
	SMTP     SMTPConfig
	Mock     MockConfig
	Checkout CheckoutConfig
	Settings SettingsConfig
}

type ServerConfig struct {
	AppEnv      string
	Port        string
	CORSOrigins []string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// RedisConfig : Addr vide = pas de Redis, on reste en mémoire.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type MockConfig struct {
	Seed            uint64
	Latency         bool
	AdminPassword   string
	CashierPassword string
}

type CheckoutConfig struct {
	Delay time.Duration
}

type SettingsConfig struct {
	File string
}

// Load charge le fichier .env s'il existe puis lit la configuration depuis l'environnement.
// Le booléen indique si un .env a été trouvé (le logger n'existe pas encore à ce stade).
func Load() (*Config, bool) {
	envLoaded := godotenv.Load(".env") == nil
	return LoadEnv(), envLoaded
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:      getEnv("APP_ENV", "development"),
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"http://localhost:5173"}),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "info"),
			Encoding:          getEnv("LOGGER_ENCODING", "json"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "super_secret"),
			TTL:    time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Elastic: ElasticsearchConfig{
			Addresses: getEnvSlice("ELASTICSEARCH_ADDRESSES", nil),
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
			Index:     getEnv("ELASTICSEARCH_INDEX", "pos_products"),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "pos-products"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "noreply@pos.local"),
		},
		Mock: MockConfig{
			Seed:            uint64(getEnvInt("MOCK_SEED", 42)),
			Latency:         getEnvBool("MOCK_LATENCY", true),
			AdminPassword:   getEnv("SEED_ADMIN_PASSWORD", "admin123"),
			CashierPassword: getEnv("SEED_CASHIER_PASSWORD", "cashier123"),
		},
		Checkout: CheckoutConfig{
			Delay: time.Duration(getEnvInt("CHECKOUT_DELAY_MS", 1500)) * time.Millisecond,
		},
		Settings: SettingsConfig{
			File: getEnv("SETTINGS_FILE", "pos-settings.json"),
		},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return fallback
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"hardwarestore/pkg/database"
)

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDatabaseURL = "DATABASE_URL"
	EnvSQLitePath  = "SQLITE_PATH"
	EnvJWTSecret   = "JWT_SECRET"
	EnvRedisAddr   = "REDIS_ADDR"
	EnvMinioURL    = "MINIO_ENDPOINT"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	MinIO    MinIOConfig
	Jobs     JobsConfig
	Admin    AdminConfig
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.App.IsProd() && (c.JWT.Secret == "" || c.JWT.Secret == defaultJWTSecret) {
		return fmt.Errorf("%s must be set in production", EnvJWTSecret)
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWT.TTL)
	}
	return nil
}

type AppConfig struct {
	Env       string `envconfig:"APP_ENV" default:"development"`
	Port      string `envconfig:"PORT" default:"5000"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev) || strings.EqualFold(a.Env, "dev")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "prod")
}

// Address is the listen address for the HTTP server.
func (a AppConfig) Address() string {
	return ":" + strings.TrimPrefix(a.Port, ":")
}

type DatabaseConfig struct {
	URL        string `envconfig:"DATABASE_URL"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"hardware_inventory.db"`
	MaxConns   int32  `envconfig:"DB_MAX_CONNS" default:"10"`
}

// Options converts the section into store options; a non-empty URL selects the hosted backend.
func (d DatabaseConfig) Options() database.Options {
	return database.Options{DatabaseURL: d.URL, SQLitePath: d.SQLitePath, MaxConns: d.MaxConns}
}

func (d DatabaseConfig) Hosted() bool {
	return strings.TrimSpace(d.URL) != ""
}

const defaultJWTSecret = "hardware-store-dev-secret"

type JWTConfig struct {
	Secret string        `envconfig:"JWT_SECRET" default:"hardware-store-dev-secret"`
	TTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`
	Issuer string        `envconfig:"JWT_ISSUER" default:"hardwarestore"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`

	LoginLimit  int           `envconfig:"LOGIN_RATE_LIMIT" default:"5"`
	LoginWindow time.Duration `envconfig:"LOGIN_RATE_WINDOW" default:"1m"`
}

// Enabled reports whether a Redis server was configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type MinIOConfig struct {
	Endpoint  string `envconfig:"MINIO_ENDPOINT"`
	AccessKey string `envconfig:"MINIO_ACCESS_KEY"`
	SecretKey string `envconfig:"MINIO_SECRET_KEY"`
	Bucket    string `envconfig:"MINIO_BUCKET" default:"hardware-backups"`
	UseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
}

func (m MinIOConfig) Enabled() bool {
	return m.Endpoint != ""
}

type JobsConfig struct {
	Enabled          bool          `envconfig:"JOBS_ENABLED" default:"true"`
	BackupInterval   time.Duration `envconfig:"BACKUP_INTERVAL" default:"24h"`
	LowStockInterval time.Duration `envconfig:"LOW_STOCK_INTERVAL" default:"1h"`
}

type AdminConfig struct {
	Username string `envconfig:"ADMIN_USERNAME" default:"admin"`
	Password string `envconfig:"ADMIN_PASSWORD" default:"admin123"`
}

// Seed returns the seeding options for the schema initializer.
func (a AdminConfig) Seed() database.SeedOptions {
	return database.SeedOptions{AdminUsername: a.Username, AdminPassword: a.Password}
}

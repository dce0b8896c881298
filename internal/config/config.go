package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	SystemDSN         string
	TenantDSNTemplate string // printf template, %s replaced by the tenant database name
	TenantDBPrefix    string
	JWTSecret         string
	TokenTTL          time.Duration
	RedisAddr         string
	AppPort           string

	SeedAdminName     string
	SeedAdminEmail    string
	SeedAdminPassword string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using system environment variables")
	}

	cfg := Config{
		SystemDSN:         os.Getenv("MYSQL_DSN"),
		TenantDSNTemplate: os.Getenv("TENANT_DSN_TEMPLATE"),
		TenantDBPrefix:    os.Getenv("TENANT_DB_PREFIX"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		AppPort:           os.Getenv("APP_PORT"),
		SeedAdminName:     os.Getenv("SEED_ADMIN_NAME"),
		SeedAdminEmail:    os.Getenv("SEED_ADMIN_EMAIL"),
		SeedAdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
	}

	if cfg.SystemDSN == "" {
		log.Fatal("MYSQL_DSN not set in environment")
	}
	if cfg.TenantDSNTemplate == "" {
		log.Fatal("TENANT_DSN_TEMPLATE not set in environment")
	}
	if cfg.TenantDBPrefix == "" {
		cfg.TenantDBPrefix = "tenant_"
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-only"
	}
	if cfg.AppPort == "" {
		cfg.AppPort = "8080"
	}

	ttlMinutes := 60
	if v := os.Getenv("JWT_TTL_MINUTES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			ttlMinutes = parsed
		}
	}
	cfg.TokenTTL = time.Duration(ttlMinutes) * time.Minute

	if cfg.SeedAdminName == "" {
		cfg.SeedAdminName = "Admin Name"
	}
	if cfg.SeedAdminEmail == "" {
		cfg.SeedAdminEmail = "admin@local.test"
	}

	return cfg
}

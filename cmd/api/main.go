package main

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"tenantgate/internal/auth"
	"tenantgate/internal/config"
	"tenantgate/internal/db"
	httpserver "tenantgate/internal/http"
	"tenantgate/internal/seed"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := config.Load()

	systemDB, err := db.Connect(cfg.SystemDSN)
	if err != nil {
		log.Fatal("system database", zap.Error(err))
	}
	conns := db.NewTenantConnector(cfg.TenantDSNTemplate, cfg.TenantDBPrefix, log)

	ctx := context.Background()
	if err := seed.FirstSetup(ctx, systemDB, cfg, log); err != nil {
		log.Fatal("system seed", zap.Error(err))
	}
	if err := seed.BuildTenants(ctx, systemDB, conns, log); err != nil {
		log.Fatal("tenant build", zap.Error(err))
	}

	var revoker auth.Revoker
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatal("redis", zap.Error(err))
		}
		revoker = &auth.RedisRevoker{Client: client}
	} else {
		log.Warn("REDIS_ADDR not set, token revocation is process-local")
		revoker = auth.NewMemoryRevoker()
	}

	r := httpserver.NewRouter(systemDB, conns, cfg, revoker, log)

	log.Info("server listening", zap.String("port", cfg.AppPort))
	if err := r.Run(fmt.Sprintf(":%s", cfg.AppPort)); err != nil {
		log.Fatal("server", zap.Error(err))
	}
}

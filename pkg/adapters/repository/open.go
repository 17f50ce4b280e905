// Package repository selects the StateRepository named by the config.
package repository

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/wadjakorntonsri/shortly/pkg/adapters/repository/jsonfile"
	"github.com/wadjakorntonsri/shortly/pkg/adapters/repository/redis"
	"github.com/wadjakorntonsri/shortly/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/shortly/pkg/config"
	"github.com/wadjakorntonsri/shortly/pkg/ports"
)

const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

func Open(ctx context.Context, cfg *config.Config) (ports.StateRepository, error) {
	switch cfg.StoreDriver {
	case DriverJSON, "":
		return jsonfile.NewJSONFileRepository(cfg.DataFile)
	case DriverSQLite:
		return sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	case DriverRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		repo, err := redis.NewRedisRepository(ctx, client, cfg.RedisKey)
		if err != nil {
			client.Close()
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

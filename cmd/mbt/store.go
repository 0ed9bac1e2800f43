package main

import (
	"github.com/aretw0/mbtassist/internal/config"
	"github.com/aretw0/mbtassist/pkg/adapters/file"
	"github.com/aretw0/mbtassist/pkg/adapters/memory"
	"github.com/aretw0/mbtassist/pkg/adapters/redis"
	"github.com/aretw0/mbtassist/pkg/ports"
)

// openStore builds the configured project store and a matching locker.
func openStore(cfg config.Store) (ports.ProjectStore, ports.ProjectLocker, func() error, error) {
	switch cfg.Kind {
	case config.StoreRedis:
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			redis.WithPrefix(cfg.RedisPrefix),
			redis.WithTTL(cfg.RedisTTL),
		)
		return store, store.Locker(), store.Close, nil
	case config.StoreMemory:
		return memory.NewStore(), memory.NewLocker(), noClose, nil
	default:
		return file.New(cfg.Dir, file.WithFormat(file.Format(cfg.Format))), memory.NewLocker(), noClose, nil
	}
}

func noClose() error { return nil }

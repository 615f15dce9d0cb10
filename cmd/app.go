package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"github.com/MAVERICK-VF142/Drx.MediMate/internal/cache"
	"github.com/MAVERICK-VF142/Drx.MediMate/internal/clock"
	"github.com/MAVERICK-VF142/Drx.MediMate/internal/config"
	"github.com/MAVERICK-VF142/Drx.MediMate/internal/model"
	"github.com/MAVERICK-VF142/Drx.MediMate/internal/repository"
)

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		zc.Level = level
	}
	return zc.Build()
}

// backends opens storage clients on first use and closes whatever was opened.
type backends struct {
	cfg    *config.Config
	logger *zap.Logger

	db    *gorm.DB
	redis *redis.Client
	mongo *mongo.Client
}

func newBackends(cfg *config.Config, logger *zap.Logger) *backends {
	return &backends{cfg: cfg, logger: logger}
}

func (b *backends) postgres() (*gorm.DB, error) {
	if b.db != nil {
		return b.db, nil
	}
	db, err := config.NewPostgresDB(b.cfg.Database.Postgres)
	if err != nil {
		return nil, err
	}
	if b.cfg.Database.Postgres.AutoMigrate {
		if err := model.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}
		b.logger.Info("database migration completed")
	}
	b.db = db
	return db, nil
}

func (b *backends) redisClient() (*redis.Client, error) {
	if b.redis != nil {
		return b.redis, nil
	}
	client, err := config.NewRedisClient(b.cfg.Database.Redis)
	if err != nil {
		return nil, err
	}
	b.redis = client
	return client, nil
}

func (b *backends) invitationRepository(ctx context.Context) (repository.InvitationRepository, error) {
	switch backend := b.cfg.Invite.Backend; backend {
	case "postgres":
		db, err := b.postgres()
		if err != nil {
			return nil, err
		}
		return repository.NewPGInvitationRepository(db), nil
	case "redis":
		client, err := b.redisClient()
		if err != nil {
			return nil, err
		}
		return repository.NewRedisInvitationRepository(client, b.cfg.Database.Redis.KeyPrefix), nil
	case "mongo":
		client, coll, err := config.NewMongoCollection(b.cfg.Database.Mongo)
		if err != nil {
			return nil, err
		}
		b.mongo = client
		if err := repository.EnsureMongoIndexes(ctx, coll); err != nil {
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		return repository.NewMongoInvitationRepository(coll), nil
	case "memory":
		b.logger.Warn("in-memory invitation store: invitations are lost on restart")
		return repository.NewMemoryInvitationRepository(), nil
	default:
		return nil, fmt.Errorf("unknown invite backend %q", backend)
	}
}

func (b *backends) responseCache() (cache.ResponseCache, error) {
	c := b.cfg.Cache
	switch c.Backend {
	case "", "memory":
		return cache.NewMemoryCache(c.MaxEntries, c.TTL, clock.Real()), nil
	case "redis":
		client, err := b.redisClient()
		if err != nil {
			return nil, err
		}
		return cache.NewRedisCache(client, b.cfg.Database.Redis.KeyPrefix, c.MaxEntries, c.TTL, b.logger), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", c.Backend)
	}
}

func (b *backends) Close() {
	if b.db != nil {
		if sqlDB, err := b.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.mongo != nil {
		_ = b.mongo.Disconnect(context.Background())
	}
}

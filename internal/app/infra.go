package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Algoraver22/employee-hr-platform/internal/config"
	"github.com/Algoraver22/employee-hr-platform/internal/employee"
	"github.com/Algoraver22/employee-hr-platform/internal/messaging/kafka"
	"github.com/Algoraver22/employee-hr-platform/internal/profileimage"
	"github.com/Algoraver22/employee-hr-platform/internal/shared/connection"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type cleanupFunc = func(context.Context) error

// recordStore is the opened record store. db is set only for Postgres,
// where mutations share a transaction with the outbox table.
type recordStore struct {
	db      *sql.DB
	mongoDB *mongo.Database
	repo    employee.Repository
	close   cleanupFunc
}

func openRecordStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*recordStore, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		mdb, err := connection.ConnectMongoWithRetry(cfg.Mongo.URI, cfg.Mongo.Database, cfg.MaxRetries)
		if err != nil {
			return nil, err
		}
		if err := employee.EnsureMongoIndexes(ctx, mdb); err != nil {
			_ = mdb.Client().Disconnect(ctx)
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		logger.Info("record store ready", zap.String("driver", cfg.StoreDriver))
		return &recordStore{
			mongoDB: mdb,
			repo:    employee.NewMongoRepository(mdb),
			close: func(ctx context.Context) error {
				return mdb.Client().Disconnect(ctx)
			},
		}, nil

	default:
		gormDB, err := connection.ConnectGORMWithRetry(cfg.Database.ConnectionString(), cfg.MaxRetries)
		if err != nil {
			return nil, err
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, err
		}
		if err := gormDB.WithContext(ctx).AutoMigrate(&employee.Employee{}); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("migrate employees: %w", err)
		}
		if err := kafka.EnsureSchema(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("migrate outbox: %w", err)
		}
		logger.Info("record store ready", zap.String("driver", cfg.StoreDriver))
		return &recordStore{
			db:   sqlDB,
			repo: employee.NewRepository(gormDB),
			close: func(context.Context) error {
				return sqlDB.Close()
			},
		}, nil
	}
}

// openRedis returns nil when REDIS_ADDR is unset or unreachable; every Redis
// consumer in the service treats a nil client as "cache disabled".
func openRedis(cfg *config.Config, logger *zap.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, caching and idempotency keys disabled")
		return nil
	}
	rdb, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, cfg.MaxRetries)
	if err != nil {
		logger.Warn("redis unavailable, continuing without cache", zap.Error(err))
		return nil
	}
	return rdb
}

func openKafkaWriter(cfg *config.Config, logger *zap.Logger) (*kafkago.Writer, error) {
	if cfg.KafkaBroker == "" {
		return nil, nil
	}
	writer, err := connection.ConnectKafkaWithRetry(cfg.KafkaBroker, cfg.MaxRetries)
	if err != nil {
		return nil, err
	}
	logger.Info("kafka writer ready", zap.String("broker", cfg.KafkaBroker))
	return writer, nil
}

func openImageStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (profileimage.Store, error) {
	if cfg.Image.Store == config.ImageStoreS3 {
		client, err := profileimage.NewS3Client(ctx, profileimage.S3Config{
			Bucket:    cfg.Image.Bucket,
			Region:    cfg.Image.Region,
			Endpoint:  cfg.Image.Endpoint,
			AccessKey: cfg.Image.AccessKey,
			SecretKey: cfg.Image.SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return profileimage.NewS3Store(client, cfg.Image.Bucket, logger), nil
	}
	return profileimage.NewDiskStore(cfg.Image.Dir, logger)
}

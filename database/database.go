package database

import (
	"context"
	"log"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Connections groups the stores the service talks to.
type Connections struct {
	DB    *gorm.DB
	Mongo *mongo.Client
	Redis *redis.Client
}

func (c *Connections) Close(ctx context.Context) {
	if c.Mongo != nil {
		if err := c.Mongo.Disconnect(ctx); err != nil {
			log.Printf("Error disconnecting MongoDB: %v", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Printf("Error closing Redis: %v", err)
		}
	}
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// PingPostgres reports whether the SQL connection answers.
func (c *Connections) PingPostgres(ctx context.Context) error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (c *Connections) PingMongo(ctx context.Context) error {
	return c.Mongo.Ping(ctx, nil)
}

func (c *Connections) PingRedis(ctx context.Context) error {
	return c.Redis.Ping(ctx).Err()
}

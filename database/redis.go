package database

import (
	"backoffice/config"
	"context"
	"log"

	"github.com/go-redis/redis/v8"
)

// InitRedis builds the client used for customer locks. A failed ping is
// logged; the first lock attempt will surface the error.
func InitRedis(ctx context.Context) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Config("REDIS_ADDR", "127.0.0.1:6379"),
		Password: config.Config("REDIS_PASS", ""),
		DB:       config.ConfigInt("REDIS_DB", 0),
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Printf("Redis connection failed: %v", err)
	} else {
		log.Printf("Redis connection successful")
	}

	return client
}

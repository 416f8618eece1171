package cache

import (
	"context"
	"fmt"
	"time"

	"adventure/infra/configs"
	"adventure/pkg/log/zlog"

	"github.com/go-redis/redis/v8"
)

var redisClient *redis.Client

// InitRedis 未启用时保持 nil，限流中间件会直接放行
func InitRedis() error {
	conf := configs.Config().GetRedisConfig()
	if !conf.Enable {
		zlog.Infof("Redis 未启用")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("Redis 连接失败: %w", err)
	}

	redisClient = client
	zlog.Infof("Redis 连接成功: %s", conf.Addr)
	return nil
}

func GetRedisClient() *redis.Client {
	return redisClient
}

// SetRedisClient 测试里注入客户端
func SetRedisClient(client *redis.Client) {
	redisClient = client
}

func Close() error {
	if redisClient == nil {
		return nil
	}
	err := redisClient.Close()
	redisClient = nil
	return err
}

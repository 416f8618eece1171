package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"adventure/constant"
	"adventure/infra/cache"
	"adventure/infra/configs"
	"adventure/pkg/log/zlog"
	"adventure/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RateLimiter 基于 Redis 的滑动窗口限流
// 有会话时按会话限流，否则落到全局 key
func RateLimiter(conf configs.RateLimitConfig) gin.HandlerFunc {
	if !conf.Enable {
		zlog.Infof("限流功能未启用")
		return func(c *gin.Context) {
			c.Next()
		}
	}
	if conf.Limit <= 0 || conf.WindowSeconds <= 0 {
		zlog.Warnf("限流配置无效，跳过限流")
		return func(c *gin.Context) {
			c.Next()
		}
	}

	window := time.Duration(conf.WindowSeconds) * time.Second
	zlog.Infof("限流中间件已启用: %d 请求/%d 秒", conf.Limit, conf.WindowSeconds)

	return func(c *gin.Context) {
		redisClient := cache.GetRedisClient()
		if redisClient == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := rateLimitKey(GetSessionID(c))

		allowed, err := checkRateLimit(ctx, redisClient, key, conf.Limit, window)
		if err != nil {
			// Redis 故障时放行
			zlog.CtxErrorf(ctx, "限流检查失败: %v", err)
			c.Next()
			return
		}

		if !allowed {
			zlog.CtxWarnf(ctx, "请求被限流: %s %s key=%s", c.Request.Method, c.Request.URL.Path, key)
			response.NewResponse(c).ErrorWithStatus(response.TOO_MANY_REQUESTS, http.StatusTooManyRequests)
			c.Abort()
			return
		}

		c.Next()
	}
}

func rateLimitKey(sessionID string) string {
	if sessionID == "" {
		return constant.REDIS_RATE_LIMIT_GLOBAL_KEY
	}
	return fmt.Sprintf(constant.REDIS_RATE_LIMIT_SESSION_KEY, sessionID)
}

// checkRateLimit 使用 Redis Sorted Set 实现滑动窗口
func checkRateLimit(ctx context.Context, client *redis.Client, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now().UnixNano()
	windowStart := now - window.Nanoseconds()

	pipe := client.Pipeline()
	// 移除窗口之外的旧记录
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart))
	// 统计当前窗口内的请求数
	pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, &redis.Z{
		Score:  float64(now),
		Member: fmt.Sprintf("%d-%s", now, uuid.NewString()),
	})
	pipe.Expire(ctx, key, window*2)

	cmds, err := pipe.Exec(ctx)
	if err != nil && err != redis.Nil {
		return false, fmt.Errorf("执行 Redis pipeline 失败: %w", err)
	}
	if len(cmds) < 2 {
		return false, fmt.Errorf("Redis pipeline 返回结果不足")
	}

	countCmd, ok := cmds[1].(*redis.IntCmd)
	if !ok {
		return false, fmt.Errorf("无法解析请求计数")
	}

	// 不包括本次请求
	return countCmd.Val() < int64(limit), nil
}

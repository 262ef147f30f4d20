package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"Sonic-Agent/pkg/logger"
)

// RedisConfig 描述 Redis 缓存的连接参数。
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	Prefix   string
}

// Redis 使用 Redis 实现跨进程共享的缓存。
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis 创建 Redis 缓存实例并验证连通性。
func NewRedis(cfg RedisConfig) (*Redis, error) {
	if cfg.Address == "" {
		return nil, errors.New("Redis address 不能为空")
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "sonicagent:cache:"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("连接 Redis 失败: %w", err)
	}
	return &Redis{client: client, prefix: prefix}, nil
}

// Get 读取缓存值，任何错误都按未命中处理并记录日志。
func (r *Redis) Get(ctx context.Context, key string) (string, bool) {
	value, err := r.client.Get(ctx, r.prefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Named("cache").Warn("读取 Redis 缓存失败", "key", key, "error", err)
		}
		return "", false
	}
	return value, true
}

// Set 写入缓存值，失败只记录日志。
func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := r.client.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		logger.Named("cache").Warn("写入 Redis 缓存失败", "key", key, "error", err)
	}
}

// Close 释放 Redis 连接。
func (r *Redis) Close() error {
	return r.client.Close()
}

var _ Cache = (*Redis)(nil)

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cinematch-go/pkg/omdb"

	"github.com/go-redis/redis/v8"
)

// MetadataCacheRepository 定义了 OMDb 元数据查询结果的缓存接口。
// 推荐排序不依赖缓存；缓存只是为了避免对同一标题反复打外部服务。
type MetadataCacheRepository interface {
	Get(ctx context.Context, title string) (*omdb.Details, error)
	Set(ctx context.Context, title string, details omdb.Details) error
}

type redisMetadataCacheRepository struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// NewMetadataCacheRepository 创建一个新的 MetadataCacheRepository 实例。
func NewMetadataCacheRepository(redisClient *redis.Client, ttl time.Duration) MetadataCacheRepository {
	return &redisMetadataCacheRepository{redisClient: redisClient, ttl: ttl}
}

func metadataKey(title string) string {
	return fmt.Sprintf("omdb:details:%s", title)
}

// Get 从 Redis 读取缓存的元数据。缓存未命中返回 (nil, nil)。
func (r *redisMetadataCacheRepository) Get(ctx context.Context, title string) (*omdb.Details, error) {
	jsonData, err := r.redisClient.Get(ctx, metadataKey(title)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached metadata: %w", err)
	}
	var details omdb.Details
	if err := json.Unmarshal([]byte(jsonData), &details); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached metadata: %w", err)
	}
	return &details, nil
}

// Set 将元数据写入 Redis 并设置过期时间。
func (r *redisMetadataCacheRepository) Set(ctx context.Context, title string, details omdb.Details) error {
	jsonData, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := r.redisClient.Set(ctx, metadataKey(title), jsonData, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cached metadata: %w", err)
	}
	return nil
}

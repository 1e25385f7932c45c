package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/EAS-COD-System/eas-tracker/internal/config"
	"github.com/EAS-COD-System/eas-tracker/internal/domain"
)

const (
	analyticsKeyPrefix = "analytics:summary"
	scanBatchSize      = 100
	defaultTTL         = time.Minute
)

// AnalyticsCache is a read-through cache for aggregation results. Writes to
// the record store invalidate it wholesale.
type AnalyticsCache interface {
	GetRows(ctx context.Context, filter domain.AnalyticsFilter) ([]domain.AnalyticsRow, bool, error)
	SetRows(ctx context.Context, filter domain.AnalyticsFilter, rows []domain.AnalyticsRow) error
	InvalidateAll(ctx context.Context) error
}

type redisAnalyticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopAnalyticsCache struct{}

func NewAnalyticsCache(cfg config.CacheConfig) (AnalyticsCache, error) {
	if !cfg.Enabled {
		return &noopAnalyticsCache{}, nil
	}

	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := time.Duration(cfg.AnalyticsTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &redisAnalyticsCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopAnalyticsCache() AnalyticsCache {
	return &noopAnalyticsCache{}
}

func (c *redisAnalyticsCache) GetRows(ctx context.Context, filter domain.AnalyticsFilter) ([]domain.AnalyticsRow, bool, error) {
	key := buildAnalyticsKey(filter)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var rows []domain.AnalyticsRow
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, false, fmt.Errorf("decode analytics cache: %w", err)
	}

	return rows, true, nil
}

func (c *redisAnalyticsCache) SetRows(ctx context.Context, filter domain.AnalyticsFilter, rows []domain.AnalyticsRow) error {
	key := buildAnalyticsKey(filter)
	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode analytics cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisAnalyticsCache) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, analyticsKeyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis delete failed: %w", err)
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return nil
}

func (n *noopAnalyticsCache) GetRows(ctx context.Context, filter domain.AnalyticsFilter) ([]domain.AnalyticsRow, bool, error) {
	return nil, false, nil
}

func (n *noopAnalyticsCache) SetRows(ctx context.Context, filter domain.AnalyticsFilter, rows []domain.AnalyticsRow) error {
	return nil
}

func (n *noopAnalyticsCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}

	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func buildAnalyticsKey(filter domain.AnalyticsFilter) string {
	parts := []string{
		"start=" + filter.StartDate,
		"end=" + filter.EndDate,
		"country=" + strings.ToLower(filter.Country),
		"product=" + filter.ProductID,
		"sort=" + filter.SortBy + ":" + filter.SortOrder,
		"group=" + filter.GroupBy,
		fmt.Sprintf("extra=%g", filter.ExtraPerPiece),
	}

	raw := strings.Join(parts, "|")
	hash := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s", analyticsKeyPrefix, hex.EncodeToString(hash[:]))
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/iamasit07/othello/backend/internal/config"
	"github.com/iamasit07/othello/backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	liveGameKeyPrefix = "game:"
	liveGameTTL       = 2 * time.Hour
)

var RedisClient *redis.Client
var redisEnabled bool

// options accepts either a redis:// URL or a bare host:port
func options(cfg *config.Config) (*redis.Options, error) {
	if strings.HasPrefix(cfg.RedisURL, "redis://") || strings.HasPrefix(cfg.RedisURL, "rediss://") {
		return redis.ParseURL(cfg.RedisURL)
	}
	return &redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       0,
	}, nil
}

// InitRedis initializes Redis connection. An unreachable server is not fatal.
func InitRedis(cfg *config.Config) error {
	opts, err := options(cfg)
	if err != nil {
		return fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	RedisClient = redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := RedisClient.Ping(ctx).Err(); err != nil {
		log.Printf("[REDIS] Warning: Could not connect to Redis: %v. Falling back to PostgreSQL only.", err)
		redisEnabled = false
		return nil
	}

	redisEnabled = true
	log.Println("[REDIS] Connected successfully")
	return nil
}

func IsRedisEnabled() bool {
	return redisEnabled
}

func CloseRedis() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}

// RedisCache wraps redis.Client for the auth session cache and live game snapshots
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

func (r *RedisCache) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

func LiveGameKey(gameID string) string {
	return liveGameKeyPrefix + gameID
}

func (r *RedisCache) SaveLiveGame(ctx context.Context, game *domain.LiveGame) error {
	data, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("failed to marshal live game: %w", err)
	}
	return r.client.Set(ctx, LiveGameKey(game.GameID), data, liveGameTTL).Err()
}

// GetLiveGame returns nil, nil when the game has no snapshot
func (r *RedisCache) GetLiveGame(ctx context.Context, gameID string) (*domain.LiveGame, error) {
	data, err := r.client.Get(ctx, LiveGameKey(gameID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var game domain.LiveGame
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, fmt.Errorf("failed to unmarshal live game: %w", err)
	}
	return &game, nil
}

func (r *RedisCache) DeleteLiveGame(ctx context.Context, gameID string) error {
	return r.client.Del(ctx, LiveGameKey(gameID)).Err()
}

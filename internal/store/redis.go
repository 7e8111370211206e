package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mahgouba/dealerdocs"
)

// DefaultRedisPrefix namespaces counter keys: "<prefix>:<kind>".
const DefaultRedisPrefix = "dealerdocs:seq"

// redisPingTimeout bounds the connection check in NewRedisSequence.
const redisPingTimeout = 5 * time.Second

// RedisSequence issues sequential identifiers from atomic INCR counters.
// It does not consult the SQL registry.
type RedisSequence struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// Compile-time interface check.
var _ dealerdocs.Sequencer = (*RedisSequence)(nil)

// NewRedisSequence connects to redisURL ("redis://host:6379/0") and checks
// the connection.
func NewRedisSequence(ctx context.Context, redisURL string, logger *zap.Logger) (*RedisSequence, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%w: redis url: %v", ErrInvalidConfig, err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisSequenceFromClient(client, DefaultRedisPrefix, logger), nil
}

// NewRedisSequenceFromClient wraps an existing client.
func NewRedisSequenceFromClient(client *redis.Client, prefix string, logger *zap.Logger) *RedisSequence {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisSequence{client: client, prefix: prefix, logger: logger}
}

// Next increments the kind's counter and formats the new value. When the
// counter passes 999999 the increment is undone and the error wraps
// dealerdocs.ErrFormat.
func (r *RedisSequence) Next(ctx context.Context, kind dealerdocs.Kind) (dealerdocs.Identifier, error) {
	if err := kind.Validate(); err != nil {
		return dealerdocs.Identifier{}, err
	}

	key := r.key(kind)
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return dealerdocs.Identifier{}, fmt.Errorf("failed to increment %s: %w", key, err)
	}

	serial, err := dealerdocs.IssueSequential(int(n - 1))
	if err != nil {
		// Best effort: a failed DECR only leaves the counter further past the limit.
		if decrErr := r.client.Decr(ctx, key).Err(); decrErr != nil {
			r.logger.Warn("failed to undo counter increment", zap.String("key", key), zap.Error(decrErr))
		}
		return dealerdocs.Identifier{}, fmt.Errorf("%s counter exhausted: %w", kind, err)
	}

	return dealerdocs.Identifier{Kind: kind, Serial: serial}, nil
}

// Ping checks the connection.
func (r *RedisSequence) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the client.
func (r *RedisSequence) Close() error {
	return r.client.Close()
}

func (r *RedisSequence) key(kind dealerdocs.Kind) string {
	return r.prefix + ":" + string(kind)
}

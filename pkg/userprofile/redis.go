package userprofile

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces profile hashes in a shared Redis instance.
const keyPrefix = "experimentkit:profile:"

// Config holds Redis connection settings for the profile store.
type Config struct {
	ConnectionURL  string        `env:"EXPERIMENT_PROFILE_REDIS_URL,required" envDefault:"redis://localhost:6379/0"`
	RetryAttempts  int           `env:"EXPERIMENT_PROFILE_REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"EXPERIMENT_PROFILE_REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"EXPERIMENT_PROFILE_REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
	ProfileTTL     time.Duration `env:"EXPERIMENT_PROFILE_TTL" envDefault:"0"` // 0 disables expiry
}

// Connect establishes a Redis connection for the profile store, retrying per
// the config before giving up.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opt, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidRedisURL, err)
	}

	for range cfg.RetryAttempts {
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, ErrRedisNotReady
}

// Redis stores user profiles as one Redis hash per user, field per
// experiment id. It is safe for concurrent use across SDK instances, which
// is what makes sticky bucketing hold in multi-replica deployments.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithProfileTTL expires a user's profile hash after the given duration,
// refreshed on every save. Zero keeps profiles forever.
func WithProfileTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// NewRedis creates a Redis-backed profile store over an established client.
func NewRedis(client *redis.Client, opts ...RedisOption) (*Redis, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	r := &Redis{client: client}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Lookup returns the user's stored decisions. A missing hash is an empty
// profile, not an error.
func (r *Redis) Lookup(ctx context.Context, userID string) (map[string]string, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	profile, err := r.client.HGetAll(ctx, keyPrefix+userID).Result()
	if err != nil {
		return nil, errors.Join(ErrLookupFailed, err)
	}
	if len(profile) == 0 {
		return nil, nil
	}
	return profile, nil
}

// Save records one experiment decision for the user and refreshes the
// profile TTL when one is configured.
func (r *Redis) Save(ctx context.Context, userID, experimentID, variationID string) error {
	if userID == "" {
		return ErrEmptyUserID
	}
	if experimentID == "" || variationID == "" {
		return ErrInvalidProfile
	}

	key := keyPrefix + userID
	if err := r.client.HSet(ctx, key, experimentID, variationID).Err(); err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	if r.ttl > 0 {
		if err := r.client.Expire(ctx, key, r.ttl).Err(); err != nil {
			return errors.Join(ErrSaveFailed, err)
		}
	}
	return nil
}

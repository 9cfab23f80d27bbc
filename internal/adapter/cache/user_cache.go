package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "user-management-service/internal/domain/user"
)

const keyPrefix = "user:"

// UserCache defines the interface for user caching operations.
type UserCache interface {
	// Get returns nil, nil on a cache miss.
	Get(ctx context.Context, id int64) (*domain.User, error)
	Set(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int64) error
}

// entry is the JSON stored under user:<id>. It carries every column so a
// cached row can be written back by a full-row update without losing data.
type entry struct {
	ID                      int64      `json:"id"`
	Name                    string     `json:"name"`
	Email                   string     `json:"email"`
	Password                string     `json:"password"`
	IsEmailVerified         bool       `json:"is_email_verified"`
	VerificationToken       *string    `json:"verification_token,omitempty"`
	VerificationTokenExpiry *time.Time `json:"verification_token_expiry,omitempty"`
}

func toEntry(u *domain.User) entry {
	return entry{
		ID:                      u.ID,
		Name:                    u.Name,
		Email:                   u.Email,
		Password:                u.Password,
		IsEmailVerified:         u.IsEmailVerified,
		VerificationToken:       u.VerificationToken,
		VerificationTokenExpiry: u.VerificationTokenExpiry,
	}
}

func (e entry) toDomain() *domain.User {
	return &domain.User{
		ID:                      e.ID,
		Name:                    e.Name,
		Email:                   e.Email,
		Password:                e.Password,
		IsEmailVerified:         e.IsEmailVerified,
		VerificationToken:       e.VerificationToken,
		VerificationTokenExpiry: e.VerificationTokenExpiry,
	}
}

// RedisUserCache implements UserCache using Redis as the backing store.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisUserCache creates a new Redis-backed user cache.
func NewRedisUserCache(client *redis.Client, ttl time.Duration, log *zap.Logger) UserCache {
	return &RedisUserCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func cacheKey(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

// Get retrieves a user from Redis cache.
func (c *RedisUserCache) Get(ctx context.Context, id int64) (*domain.User, error) {
	data, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug("cache miss", zap.Int64("user_id", id))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.log.Error("failed to unmarshal cached user", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}

	c.log.Debug("cache hit", zap.Int64("user_id", id))
	return e.toDomain(), nil
}

// Set stores a user in Redis cache with TTL.
func (c *RedisUserCache) Set(ctx context.Context, user *domain.User) error {
	if user == nil {
		return errors.New("cannot cache nil user")
	}

	data, err := json.Marshal(toEntry(user))
	if err != nil {
		c.log.Error("failed to marshal user for cache", zap.Int64("user_id", user.ID), zap.Error(err))
		return err
	}

	if err := c.client.Set(ctx, cacheKey(user.ID), data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set cache", zap.Int64("user_id", user.ID), zap.Error(err))
		return err
	}

	c.log.Debug("cached user", zap.Int64("user_id", user.ID), zap.Duration("ttl", c.ttl))
	return nil
}

// Delete removes a user from Redis cache. Deleting a missing key is not an error.
func (c *RedisUserCache) Delete(ctx context.Context, id int64) error {
	if err := c.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		c.log.Error("failed to delete from cache", zap.Int64("user_id", id), zap.Error(err))
		return err
	}

	c.log.Debug("deleted from cache", zap.Int64("user_id", id))
	return nil
}

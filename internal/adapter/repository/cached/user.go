package cached

import (
	"context"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-management-service/internal/adapter/cache"
	domain "user-management-service/internal/domain/user"
	"user-management-service/internal/usecase/user"
)

// CachedUserRepository decorates a database repository with a read-through
// cache for id lookups. Token and credential lookups always reach the
// database so verification and login never see a stale row.
type CachedUserRepository struct {
	dbRepo user.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group
}

// NewCachedUserRepository creates a new instance of CachedUserRepository.
func NewCachedUserRepository(dbRepo user.Repository, cache cache.UserCache, log *zap.Logger) user.Repository {
	return &CachedUserRepository{
		dbRepo: dbRepo,
		cache:  cache,
		log:    log,
	}
}

// Create delegates to the DB repository. New rows are cached on first read.
func (r *CachedUserRepository) Create(ctx context.Context, u *domain.User) (int64, error) {
	return r.dbRepo.Create(ctx, u)
}

// GetByID serves from the cache and falls back to the database on a miss or
// cache error. Concurrent misses for one id share a single database read.
func (r *CachedUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if u := r.fromCache(ctx, id); u != nil {
		return u, nil
	}

	result, err, shared := r.group.Do(strconv.FormatInt(id, 10), func() (any, error) {
		if u := r.fromCache(ctx, id); u != nil {
			return u, nil
		}

		u, err := r.dbRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if r.cache != nil {
			if err := r.cache.Set(ctx, u); err != nil {
				r.log.Warn("failed to cache user", zap.Int64("id", id), zap.Error(err))
			}
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		r.log.Debug("user lookup shared with concurrent caller", zap.Int64("id", id))
	}

	return cloneUser(result.(*domain.User)), nil
}

func (r *CachedUserRepository) fromCache(ctx context.Context, id int64) *domain.User {
	if r.cache == nil {
		return nil
	}
	u, err := r.cache.Get(ctx, id)
	if err != nil {
		r.log.Warn("cache get error, falling back to database", zap.Int64("id", id), zap.Error(err))
		return nil
	}
	if u != nil {
		r.log.Debug("user retrieved from cache", zap.Int64("id", id))
	}
	return u
}

// GetByVerificationToken delegates to the DB repository.
func (r *CachedUserRepository) GetByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	return r.dbRepo.GetByVerificationToken(ctx, token)
}

// GetByCredentials delegates to the DB repository.
func (r *CachedUserRepository) GetByCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	return r.dbRepo.GetByCredentials(ctx, email, password)
}

// Update writes through to the database. The entry is dropped before and
// after the write so a read racing the update cannot re-cache the old row
// for longer than that read takes.
func (r *CachedUserRepository) Update(ctx context.Context, u *domain.User) (int64, error) {
	r.invalidate(ctx, u.ID, "update")

	id, err := r.dbRepo.Update(ctx, u)
	if err != nil {
		return 0, err
	}

	r.invalidate(ctx, u.ID, "update")
	return id, nil
}

// Delete removes the row and its cache entry.
func (r *CachedUserRepository) Delete(ctx context.Context, id int64) (int64, error) {
	deletedID, err := r.dbRepo.Delete(ctx, id)
	if err != nil {
		return 0, err
	}

	r.invalidate(ctx, id, "delete")
	return deletedID, nil
}

// List delegates to the DB repository.
func (r *CachedUserRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.dbRepo.List(ctx)
}

func (r *CachedUserRepository) invalidate(ctx context.Context, id int64, op string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, id); err != nil {
		r.log.Warn("failed to invalidate cached user",
			zap.Int64("id", id),
			zap.String("operation", op),
			zap.Error(err),
		)
	}
}

// cloneUser copies u including its pointer fields, so callers can mutate the
// result without touching the value shared by a single-flight group.
func cloneUser(u *domain.User) *domain.User {
	c := *u
	if u.VerificationToken != nil {
		token := *u.VerificationToken
		c.VerificationToken = &token
	}
	if u.VerificationTokenExpiry != nil {
		expiry := *u.VerificationTokenExpiry
		c.VerificationTokenExpiry = &expiry
	}
	return &c
}

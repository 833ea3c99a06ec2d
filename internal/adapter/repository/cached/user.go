package cached

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-crud-service/internal/adapter/cache"
	domain "user-crud-service/internal/domain/user"
	"user-crud-service/internal/usecase/user"
)

// CachedUserRepository implements user.Repository with caching support.
// It wraps a persistent repository (DB) and a cache implementation.
type CachedUserRepository struct {
	dbRepo user.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group

	// writes counts committed updates and deletes, striped by id. A miss
	// loader only keeps what it read if its stripe did not move meanwhile.
	writes [writeStripes]atomic.Uint64
}

const writeStripes = 256

func (r *CachedUserRepository) stripe(id int64) *atomic.Uint64 {
	return &r.writes[uint64(id)%writeStripes]
}

// NewCachedUserRepository creates a new instance of CachedUserRepository.
func NewCachedUserRepository(dbRepo user.Repository, cache cache.UserCache, log *zap.Logger) user.Repository {
	return &CachedUserRepository{
		dbRepo: dbRepo,
		cache:  cache,
		log:    log,
	}
}

// Create delegates to the DB repository.
func (r *CachedUserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	return r.dbRepo.Create(ctx, u)
}

// GetByID retrieves a user by ID using Cache-Aside pattern.
func (r *CachedUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if cachedUser, err := r.cache.Get(ctx, id); err != nil {
		r.log.Warn("cache get error, falling back to database", zap.Int64("id", id), zap.Error(err))
	} else if cachedUser != nil {
		return cachedUser, nil
	}

	// Concurrent misses for one id share a single database read, detached
	// from the cancellation of whichever caller started it.
	result, err, _ := r.group.Do(cache.Key(id), func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		gen := r.stripe(id).Load()

		u, err := r.dbRepo.GetByID(loadCtx, id)
		if err != nil {
			return nil, err
		}

		r.fill(loadCtx, u, gen)
		return u, nil
	})
	if err != nil {
		return nil, err
	}

	u := *result.(*domain.User)
	return &u, nil
}

// Update updates the user in DB and invalidates the cache.
func (r *CachedUserRepository) Update(ctx context.Context, id int64, patch domain.Patch) (*domain.User, error) {
	u, err := r.dbRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, id, "update")
	return u, nil
}

// Delete deletes the user from DB and invalidates the cache.
func (r *CachedUserRepository) Delete(ctx context.Context, id int64) error {
	if err := r.dbRepo.Delete(ctx, id); err != nil {
		return err
	}

	r.invalidate(ctx, id, "delete")
	return nil
}

// List delegates to the DB repository.
func (r *CachedUserRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.dbRepo.List(ctx)
}

// fill caches u unless a write to its stripe committed after gen was taken.
// The check repeats after Set: a write landing in between has either already
// deleted the key or will be seen here and the entry removed.
func (r *CachedUserRepository) fill(ctx context.Context, u *domain.User, gen uint64) {
	s := r.stripe(u.ID)
	if s.Load() != gen {
		return
	}
	if err := r.cache.Set(ctx, u); err != nil {
		r.log.Warn("failed to cache user", zap.Int64("id", u.ID), zap.Error(err))
		return
	}
	if s.Load() != gen {
		if err := r.cache.Delete(ctx, u.ID); err != nil {
			r.log.Warn("failed to drop raced cache entry", zap.Int64("id", u.ID), zap.Error(err))
		}
	}
}

// invalidate runs after a committed write: it marks the stripe, detaches
// any in-flight load of id from new readers and drops the cached entry.
func (r *CachedUserRepository) invalidate(ctx context.Context, id int64, op string) {
	r.stripe(id).Add(1)
	r.group.Forget(cache.Key(id))

	if err := r.cache.Delete(ctx, id); err != nil {
		r.log.Warn("failed to invalidate cache", zap.String("op", op), zap.Int64("id", id), zap.Error(err))
	}
}

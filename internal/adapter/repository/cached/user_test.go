package cached

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"user-management-service/internal/adapter/cache"
	"user-management-service/internal/adapter/db/postgres"
	domain "user-management-service/internal/domain/user"
	"user-management-service/internal/usecase/user"
)

type fixture struct {
	repo user.Repository
	db   *gorm.DB
	mr   *miniredis.Miniredis
}

func setup(t *testing.T) *fixture {
	t.Helper()
	log := zaptest.NewLogger(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, postgres.AutoMigrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := NewCachedUserRepository(
		postgres.NewUserRepoPG(db, log),
		cache.NewRedisUserCache(rdb, time.Minute, log),
		log,
	)
	return &fixture{repo: repo, db: db, mr: mr}
}

func TestCachedUserRepository_GetByIDPopulatesCache(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	id, err := f.repo.Create(ctx, &domain.User{Name: "A", Email: "a@x.com", Password: "p"})
	require.NoError(t, err)
	assert.False(t, f.mr.Exists("user:1"), "create must not populate the cache")

	got, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
	assert.True(t, f.mr.Exists("user:1"))

	// A second read is served from redis even when the row changes behind the cache.
	require.NoError(t, f.db.Exec("UPDATE users SET name = ? WHERE id = ?", "changed", id).Error)
	got, err = f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
}

func TestCachedUserRepository_UpdateInvalidates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	u := &domain.User{Name: "A", Email: "a@x.com", Password: "p"}
	u.IssueVerification("tok", time.Now().UTC().Add(time.Hour))
	id, err := f.repo.Create(ctx, u)
	require.NoError(t, err)

	stored, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.True(t, f.mr.Exists("user:1"))

	stored.MarkVerified()
	_, err = f.repo.Update(ctx, stored)
	require.NoError(t, err)
	assert.False(t, f.mr.Exists("user:1"))

	got, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.IsEmailVerified)
	assert.Nil(t, got.VerificationToken)
}

func TestCachedUserRepository_DeleteInvalidates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	id, err := f.repo.Create(ctx, &domain.User{Name: "A", Email: "a@x.com", Password: "p"})
	require.NoError(t, err)
	_, err = f.repo.GetByID(ctx, id)
	require.NoError(t, err)

	_, err = f.repo.Delete(ctx, id)
	require.NoError(t, err)

	_, err = f.repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestCachedUserRepository_ReturnsCopies(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	id, err := f.repo.Create(ctx, &domain.User{Name: "A", Email: "a@x.com", Password: "p"})
	require.NoError(t, err)

	first, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	first.Name = "mutated"

	second, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "A", second.Name)
}

func TestCachedUserRepository_RedisDownFallsBackToDatabase(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	id, err := f.repo.Create(ctx, &domain.User{Name: "A", Email: "a@x.com", Password: "p"})
	require.NoError(t, err)

	f.mr.Close()

	got, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
}

func TestCachedUserRepository_Delegates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	u := &domain.User{Name: "A", Email: "a@x.com", Password: "p"}
	u.IssueVerification("tok", time.Now().UTC().Add(time.Hour))
	id, err := f.repo.Create(ctx, u)
	require.NoError(t, err)

	byToken, err := f.repo.GetByVerificationToken(ctx, "tok")
	require.NoError(t, err)
	require.NotNil(t, byToken)
	assert.Equal(t, id, byToken.ID)

	byCreds, err := f.repo.GetByCredentials(ctx, "a@x.com", "p")
	require.NoError(t, err)
	require.NotNil(t, byCreds)
	assert.Equal(t, id, byCreds.ID)

	all, err := f.repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCachedUserRepository_NilCacheUsesDatabase(t *testing.T) {
	log := zaptest.NewLogger(t)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, postgres.AutoMigrate(db))

	repo := NewCachedUserRepository(postgres.NewUserRepoPG(db, log), nil, log)
	ctx := context.Background()

	id, err := repo.Create(ctx, &domain.User{Name: "A", Email: "a@x.com", Password: "p"})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	got.Name = "B"
	_, err = repo.Update(ctx, got)
	require.NoError(t, err)

	got, err = repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "B", got.Name)
}

func TestCloneUser_CopiesPointerFields(t *testing.T) {
	token := "tok"
	expiry := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	u := &domain.User{ID: 1, VerificationToken: &token, VerificationTokenExpiry: &expiry}

	c := cloneUser(u)
	*c.VerificationToken = "other"
	*c.VerificationTokenExpiry = expiry.Add(time.Hour)

	assert.Equal(t, "tok", *u.VerificationToken)
	assert.Equal(t, expiry, *u.VerificationTokenExpiry)
}

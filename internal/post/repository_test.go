package post

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) (Repository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	repo, err := NewRepository(db)
	require.NoError(t, err)
	return repo, db
}

func TestNewIDIsUnique(t *testing.T) {
	repo, _ := newTestRepo(t)
	a, b := repo.NewID(), repo.NewID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestSaveAssignsServerTimestamp(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	id := repo.NewID()
	require.NoError(t, repo.Save(ctx, &Post{
		ID:          id,
		Owner:       "anon-1",
		MediaURL:    "https://cdn.example.com/clips/" + id,
		ContentType: "audio/webm",
	}))

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.CreatedAt.IsZero())
	assert.WithinDuration(t, time.Now().UTC(), got.CreatedAt.UTC(), time.Minute)
}

func TestSaveIsUpsertOnID(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()

	id := repo.NewID()
	require.NoError(t, repo.Save(ctx, &Post{ID: id, MediaURL: "https://old", ContentType: "audio/webm"}))
	require.NoError(t, repo.Save(ctx, &Post{ID: id, MediaURL: "https://new", ContentType: "audio/webm"}))

	var n int64
	require.NoError(t, db.Model(&Post{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "https://new", got.MediaURL)
}

func TestRecentExcludesPostsOutsideWindow(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	old := &Post{ID: repo.NewID(), CreatedAt: now.Add(-25 * time.Hour), ContentType: "audio/webm"}
	fresh := &Post{ID: repo.NewID(), CreatedAt: now.Add(-time.Hour), ContentType: "audio/webm"}
	require.NoError(t, repo.Save(ctx, old))
	require.NoError(t, repo.Save(ctx, fresh))

	got, err := repo.Recent(ctx, 24*time.Hour, 50)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, fresh.ID, got[0].ID)
}

func TestRecentOrdersNewestFirstAndCaps(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	var ids []string
	for i := 1; i <= 3; i++ {
		p := &Post{ID: repo.NewID(), CreatedAt: now.Add(-time.Duration(i) * time.Hour), ContentType: "audio/webm"}
		require.NoError(t, repo.Save(ctx, p))
		ids = append(ids, p.ID)
	}

	got, err := repo.Recent(ctx, 24*time.Hour, 50)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, ids[0], got[0].ID)
	assert.Equal(t, ids[2], got[2].ID)

	capped, err := repo.Recent(ctx, 24*time.Hour, 2)
	require.NoError(t, err)
	require.Len(t, capped, 2)
	assert.Equal(t, ids[0], capped[0].ID)
	assert.Equal(t, ids[1], capped[1].ID)
}

func TestGetByIDMissing(t *testing.T) {
	repo, _ := newTestRepo(t)
	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

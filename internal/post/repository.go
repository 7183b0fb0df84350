package post

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// NewID pre-allocates a post id before any network call, so the
	// storage object key and the record key always match.
	NewID() string
	Save(ctx context.Context, p *Post) error
	GetByID(ctx context.Context, id string) (*Post, error)
	Recent(ctx context.Context, window time.Duration, limit int) ([]Post, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates the repository and migrates the posts table.
func NewRepository(db *gorm.DB) (Repository, error) {
	if err := db.AutoMigrate(&Post{}); err != nil {
		return nil, fmt.Errorf("migrate posts: %w", err)
	}
	return &repository{db: db}, nil
}

func (r *repository) NewID() string { return uuid.NewString() }

// Save upserts by id: re-running a publish flow with the same pre-allocated
// id overwrites the row instead of duplicating it.
func (r *repository) Save(ctx context.Context, p *Post) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(p).Error
}

func (r *repository) GetByID(ctx context.Context, id string) (*Post, error) {
	var p Post
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Recent re-runs the feed query in full: posts created inside the trailing
// window as of now, newest first, capped at limit.
func (r *repository) Recent(ctx context.Context, window time.Duration, limit int) ([]Post, error) {
	cutoff := time.Now().Add(-window)
	var posts []Post
	err := r.db.WithContext(ctx).
		Where("created_at > ?", cutoff).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

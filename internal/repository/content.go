package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"podm-backend/internal/apperr"
	"podm-backend/internal/model"

	"gorm.io/gorm"
)

type ContentRepository interface {
	Create(ctx context.Context, content *model.Content) error
	Get(ctx context.Context, id string) (*model.Content, error)
	// AppendMedia adds a URL to the gallery. The caller passes the
	// version it read; a stale version gets apperr.ErrConflict instead
	// of silently overwriting a concurrent writer's append.
	AppendMedia(ctx context.Context, contentID, mediaURL string, version int64) error
}

type contentRepoImpl struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepoImpl{db: db}
}

func (r *contentRepoImpl) Create(ctx context.Context, content *model.Content) error {
	return r.db.WithContext(ctx).Create(content).Error
}

func (r *contentRepoImpl) Get(ctx context.Context, id string) (*model.Content, error) {
	var content model.Content
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&content).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	return &content, nil
}

func (r *contentRepoImpl) AppendMedia(ctx context.Context, contentID, mediaURL string, version int64) error {
	content, err := r.Get(ctx, contentID)
	if err != nil {
		return err
	}

	var urls []string
	if content.MediaURLs != "" {
		if err := json.Unmarshal([]byte(content.MediaURLs), &urls); err != nil {
			return fmt.Errorf("decode media urls: %w", err)
		}
	}
	urls = append(urls, mediaURL)

	encoded, err := json.Marshal(urls)
	if err != nil {
		return fmt.Errorf("encode media urls: %w", err)
	}

	result := r.db.WithContext(ctx).Model(&model.Content{}).
		Where("id = ? AND version = ?", contentID, version).
		Updates(map[string]interface{}{
			"media_urls": string(encoded),
			"version":    version + 1,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.ErrConflict
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"time"

	"podm-backend/internal/apperr"
	"podm-backend/internal/model"

	"gorm.io/gorm"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *model.Subscription) error
	Get(ctx context.Context, id string) (*model.Subscription, error)
	ListByPayerAndCreator(ctx context.Context, payerID, creatorID string) ([]*model.Subscription, error)
	MarkCanceled(ctx context.Context, id string, endDate time.Time) error
	MarkActive(ctx context.Context, id string) error
	ListActivePayerIDs(ctx context.Context, creatorID string) ([]string, error)
}

type subscriptionRepoImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepoImpl{db: db}
}

func (r *subscriptionRepoImpl) Create(ctx context.Context, sub *model.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *subscriptionRepoImpl) Get(ctx context.Context, id string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&sub).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	return &sub, nil
}

// ListByPayerAndCreator returns every subscription row for the pair,
// newest first. A payer can hold rows across several tiers, so access
// and duplicate checks must look at all of them, not just the latest.
func (r *subscriptionRepoImpl) ListByPayerAndCreator(ctx context.Context, payerID, creatorID string) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	err := r.db.WithContext(ctx).
		Where("payer_id = ? AND creator_id = ?", payerID, creatorID).
		Order("created_at DESC").
		Find(&subs).Error

	if err != nil {
		return nil, err
	}

	return subs, nil
}

func (r *subscriptionRepoImpl) MarkCanceled(ctx context.Context, id string, endDate time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.SubStatusCanceled,
			"end_date":   endDate,
			"updated_at": time.Now(),
		}).Error
}

func (r *subscriptionRepoImpl) MarkActive(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.SubStatusActive,
			"end_date":   nil,
			"updated_at": time.Now(),
		}).Error
}

func (r *subscriptionRepoImpl) ListActivePayerIDs(ctx context.Context, creatorID string) ([]string, error) {
	var payerIDs []string
	err := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("creator_id = ? AND status = ?", creatorID, model.SubStatusActive).
		Pluck("payer_id", &payerIDs).Error

	if err != nil {
		return nil, err
	}

	return payerIDs, nil
}

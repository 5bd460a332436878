package repository

import (
	"context"
	"errors"

	"podm-backend/internal/apperr"
	"podm-backend/internal/model"

	"gorm.io/gorm"
)

type TierRepository interface {
	Get(ctx context.Context, id string) (*model.Tier, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*model.Tier, error)
}

type tierRepoImpl struct {
	db *gorm.DB
}

func NewTierRepository(db *gorm.DB) TierRepository {
	return &tierRepoImpl{db: db}
}

func (r *tierRepoImpl) Get(ctx context.Context, id string) (*model.Tier, error) {
	var tier model.Tier
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&tier).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	return &tier, nil
}

func (r *tierRepoImpl) ListByCreator(ctx context.Context, creatorID string) ([]*model.Tier, error) {
	var tiers []*model.Tier
	err := r.db.WithContext(ctx).
		Where("creator_id = ? AND active = ?", creatorID, true).
		Find(&tiers).Error

	if err != nil {
		return nil, err
	}

	return tiers, nil
}

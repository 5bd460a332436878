package repository

import (
	"context"
	"errors"
	"time"

	"podm-backend/internal/apperr"
	"podm-backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository interface {
	Get(ctx context.Context, id string) (*model.User, error)
	SetCustomerRef(ctx context.Context, userID, customerRef string) error
	SetDefaultPaymentRef(ctx context.Context, userID, methodRef string) error
}

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepoImpl{db: db}
}

func (r *userRepoImpl) Get(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	return &user, nil
}

func (r *userRepoImpl) SetCustomerRef(ctx context.Context, userID, customerRef string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"customer_ref": customerRef,
			"updated_at":   time.Now(),
		}).Error
}

func (r *userRepoImpl) SetDefaultPaymentRef(ctx context.Context, userID, methodRef string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"default_payment_ref": methodRef,
			"updated_at":          time.Now(),
		}).Error
}

package repository

import (
	"context"
	"errors"
	"time"

	"podm-backend/internal/apperr"
	"podm-backend/internal/model"

	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(ctx context.Context, txn *model.Transaction) error
	Get(ctx context.Context, id string) (*model.Transaction, error)
	SetGatewayRef(ctx context.Context, id, gatewayRef string) error
	// MarkCleared / MarkFailed only move pending rows; applying them to
	// a transaction already in a terminal state reports applied=false
	// and changes nothing, which makes webhook redelivery a no-op.
	MarkCleared(ctx context.Context, id string) (applied bool, err error)
	MarkFailed(ctx context.Context, id string) (applied bool, err error)
}

type transactionRepoImpl struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepoImpl{db: db}
}

func (r *transactionRepoImpl) Create(ctx context.Context, txn *model.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *transactionRepoImpl) Get(ctx context.Context, id string) (*model.Transaction, error) {
	var txn model.Transaction
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&txn).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	return &txn, nil
}

func (r *transactionRepoImpl) SetGatewayRef(ctx context.Context, id, gatewayRef string) error {
	return r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"gateway_ref": gatewayRef,
			"updated_at":  time.Now(),
		}).Error
}

func (r *transactionRepoImpl) MarkCleared(ctx context.Context, id string) (bool, error) {
	return r.markStatus(ctx, id, model.TxnStatusCleared)
}

func (r *transactionRepoImpl) MarkFailed(ctx context.Context, id string) (bool, error) {
	return r.markStatus(ctx, id, model.TxnStatusFailed)
}

func (r *transactionRepoImpl) markStatus(ctx context.Context, id, status string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ? AND status = ?", id, model.TxnStatusPending).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

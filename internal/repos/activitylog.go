package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/logger"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/types"
)

type ActivityLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *types.ActivityLog) (*types.ActivityLog, error)
	GetByUserPeriod(ctx context.Context, tx *gorm.DB, userID uuid.UUID, periodStart time.Time) (*types.ActivityLog, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ActivityLog, error)
}

type activityLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityLogRepo(db *gorm.DB, baseLog *logger.Logger) ActivityLogRepo {
	return &activityLogRepo{db: db, log: baseLog.With("repo", "ActivityLogRepo")}
}

func (ar *activityLogRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.ActivityLog) (*types.ActivityLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (ar *activityLogRepo) GetByUserPeriod(ctx context.Context, tx *gorm.DB, userID uuid.UUID, periodStart time.Time) (*types.ActivityLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var entry types.ActivityLog
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND period_start = ?", userID, periodStart).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (ar *activityLogRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ActivityLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var results []*types.ActivityLog
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("period_start DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

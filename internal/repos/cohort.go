package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/logger"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/types"
)

type CohortRepo interface {
	Create(ctx context.Context, tx *gorm.DB, cohort *types.Cohort) (*types.Cohort, error)
	GetActive(ctx context.Context, tx *gorm.DB) (*types.Cohort, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Cohort, error)
	Activate(ctx context.Context, tx *gorm.DB, cohortID uuid.UUID) error
	AddMember(ctx context.Context, tx *gorm.DB, cohortID, userID uuid.UUID) error
	IsMember(ctx context.Context, tx *gorm.DB, cohortID, userID uuid.UUID) (bool, error)
}

type cohortRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCohortRepo(db *gorm.DB, baseLog *logger.Logger) CohortRepo {
	return &cohortRepo{db: db, log: baseLog.With("repo", "CohortRepo")}
}

func (cr *cohortRepo) Create(ctx context.Context, tx *gorm.DB, cohort *types.Cohort) (*types.Cohort, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if cohort.ID == uuid.Nil {
		cohort.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(cohort).Error; err != nil {
		return nil, err
	}
	return cohort, nil
}

func (cr *cohortRepo) GetActive(ctx context.Context, tx *gorm.DB) (*types.Cohort, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var cohort types.Cohort
	if err := transaction.WithContext(ctx).
		Where("active = ?", true).
		First(&cohort).Error; err != nil {
		return nil, err
	}
	return &cohort, nil
}

func (cr *cohortRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Cohort, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.Cohort
	if err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Activate flips the named cohort on and every other cohort off in one
// transaction, keeping the single-active invariant.
func (cr *cohortRepo) Activate(ctx context.Context, tx *gorm.DB, cohortID uuid.UUID) error {
	run := func(transaction *gorm.DB) error {
		if err := transaction.WithContext(ctx).
			Model(&types.Cohort{}).
			Where("active = ?", true).
			Update("active", false).Error; err != nil {
			return err
		}
		res := transaction.WithContext(ctx).
			Model(&types.Cohort{}).
			Where("id = ?", cohortID).
			Update("active", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}
	if tx != nil {
		return run(tx)
	}
	return cr.db.Transaction(run)
}

func (cr *cohortRepo) AddMember(ctx context.Context, tx *gorm.DB, cohortID, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	member := types.CohortMember{
		ID:       uuid.New(),
		CohortID: cohortID,
		UserID:   userID,
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cohort_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&member).Error
}

func (cr *cohortRepo) IsMember(ctx context.Context, tx *gorm.DB, cohortID, userID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.CohortMember{}).
		Where("cohort_id = ? AND user_id = ?", cohortID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

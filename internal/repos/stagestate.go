package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/logger"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/types"
)

type StageStateRepo interface {
	Get(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, stageIndex int) (*types.StageState, error)
	Upsert(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, stageIndex int, stateJSON datatypes.JSONMap) (*types.StageState, error)
	ListBelowStage(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, belowStage int) ([]*types.StageState, error)
}

type stageStateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStageStateRepo(db *gorm.DB, baseLog *logger.Logger) StageStateRepo {
	return &stageStateRepo{db: db, log: baseLog.With("repo", "StageStateRepo")}
}

func (ssr *stageStateRepo) Get(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, stageIndex int) (*types.StageState, error) {
	transaction := tx
	if transaction == nil {
		transaction = ssr.db
	}

	var state types.StageState
	if err := transaction.WithContext(ctx).
		Where("session_id = ? AND stage_index = ?", sessionID, stageIndex).
		First(&state).Error; err != nil {
		return nil, err
	}
	return &state, nil
}

// Upsert replaces the payload for an existing (session, stage) key instead
// of inserting a second row; the unique index on the pair backs the
// ON CONFLICT clause.
func (ssr *stageStateRepo) Upsert(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, stageIndex int, stateJSON datatypes.JSONMap) (*types.StageState, error) {
	transaction := tx
	if transaction == nil {
		transaction = ssr.db
	}

	state := types.StageState{
		ID:         uuid.New(),
		SessionID:  sessionID,
		StageIndex: stageIndex,
		StateJSON:  stateJSON,
		UpdatedAt:  time.Now().UTC(),
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "stage_index"}},
			DoUpdates: clause.AssignmentColumns([]string{"state_json", "updated_at"}),
		}).
		Create(&state).Error; err != nil {
		return nil, err
	}

	return ssr.Get(ctx, transaction, sessionID, stageIndex)
}

func (ssr *stageStateRepo) ListBelowStage(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, belowStage int) ([]*types.StageState, error) {
	transaction := tx
	if transaction == nil {
		transaction = ssr.db
	}

	var results []*types.StageState
	if err := transaction.WithContext(ctx).
		Where("session_id = ? AND stage_index < ?", sessionID, belowStage).
		Order("stage_index ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

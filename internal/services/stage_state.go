package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/apierr"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/logger"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/repos"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/types"
)

type StageStateService interface {
	// Get returns (record, exists). Absence of a stage record is not an
	// error: stage 0 has no prior state on the first turn.
	Get(ctx context.Context, userID, sessionID uuid.UUID, stageIndex int) (*types.StageState, bool, error)
	Upsert(ctx context.Context, userID, sessionID uuid.UUID, stageIndex int, stateJSON datatypes.JSONMap) (*types.StageState, error)
	// ListBelow returns the records of every stage before belowStage, in
	// ascending stage order. Stages with no record are simply absent.
	ListBelow(ctx context.Context, userID, sessionID uuid.UUID, belowStage int) ([]*types.StageState, error)
}

type stageStateService struct {
	db        *gorm.DB
	log       *logger.Logger
	guard     *sessionGuard
	stateRepo repos.StageStateRepo
}

func NewStageStateService(db *gorm.DB, log *logger.Logger, sessionRepo repos.SessionRepo, stateRepo repos.StageStateRepo) StageStateService {
	return &stageStateService{
		db:        db,
		log:       log.With("service", "StageStateService"),
		guard:     &sessionGuard{sessionRepo: sessionRepo},
		stateRepo: stateRepo,
	}
}

func (ss *stageStateService) Get(ctx context.Context, userID, sessionID uuid.UUID, stageIndex int) (*types.StageState, bool, error) {
	if stageIndex < 0 {
		return nil, false, apierr.Newf(apierr.CodeBadRequest, "stage index must be non-negative")
	}
	if _, err := ss.guard.authorize(ctx, userID, sessionID); err != nil {
		return nil, false, err
	}
	state, err := ss.stateRepo.Get(ctx, nil, sessionID, stageIndex)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, false, nil
		}
		return nil, false, apierr.New(apierr.CodeInternal, err)
	}
	return state, true, nil
}

func (ss *stageStateService) Upsert(ctx context.Context, userID, sessionID uuid.UUID, stageIndex int, stateJSON datatypes.JSONMap) (*types.StageState, error) {
	if stageIndex < 0 {
		return nil, apierr.Newf(apierr.CodeBadRequest, "stage index must be non-negative")
	}
	if stateJSON == nil {
		return nil, apierr.Newf(apierr.CodeBadRequest, "state payload is required")
	}
	if _, err := ss.guard.authorize(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	state, err := ss.stateRepo.Upsert(ctx, nil, sessionID, stageIndex, stateJSON)
	if err != nil {
		return nil, apierr.New(apierr.CodeInternal, err)
	}
	return state, nil
}

func (ss *stageStateService) ListBelow(ctx context.Context, userID, sessionID uuid.UUID, belowStage int) ([]*types.StageState, error) {
	if _, err := ss.guard.authorize(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	states, err := ss.stateRepo.ListBelowStage(ctx, nil, sessionID, belowStage)
	if err != nil {
		return nil, apierr.New(apierr.CodeInternal, err)
	}
	return states, nil
}

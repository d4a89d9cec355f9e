package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/apierr"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/logger"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/repos"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/types"
)

type TurnResponse struct {
	AssistantMessage string            `json:"assistant_message"`
	Action           string            `json:"action"`
	StageIndex       int               `json:"stage_index"`
	State            datatypes.JSONMap `json:"state"`
	ThresholdReached bool              `json:"threshold_reached"`
}

// ChatService orchestrates one learner turn: gate, read prior state, run
// the transition engine, and only then persist.
type ChatService interface {
	CreateSession(ctx context.Context, userID uuid.UUID, title string) (*types.Session, error)
	ListSessions(ctx context.Context, userID uuid.UUID) ([]*types.Session, error)
	RunTurn(ctx context.Context, userID uuid.UUID, role types.Role, sessionID uuid.UUID, message string, now time.Time) (*TurnResponse, error)
	// AdvanceStage finalizes the current stage once its minimum-idea
	// threshold is met and moves the session to the next stage.
	AdvanceStage(ctx context.Context, userID, sessionID uuid.UUID) (int, error)
}

type chatService struct {
	db            *gorm.DB
	log           *logger.Logger
	guard         *sessionGuard
	sessionRepo   repos.SessionRepo
	messageRepo   repos.ChatMessageRepo
	stateService  StageStateService
	cohortService CohortService
	engine        BrainstormEngine
	minIdeas      int
	historyLimit  int
}

func NewChatService(
	db *gorm.DB,
	log *logger.Logger,
	sessionRepo repos.SessionRepo,
	messageRepo repos.ChatMessageRepo,
	stateService StageStateService,
	cohortService CohortService,
	engine BrainstormEngine,
	minIdeas int,
	historyLimit int,
) ChatService {
	return &chatService{
		db:            db,
		log:           log.With("service", "ChatService"),
		guard:         &sessionGuard{sessionRepo: sessionRepo},
		sessionRepo:   sessionRepo,
		messageRepo:   messageRepo,
		stateService:  stateService,
		cohortService: cohortService,
		engine:        engine,
		minIdeas:      minIdeas,
		historyLimit:  historyLimit,
	}
}

func (cs *chatService) CreateSession(ctx context.Context, userID uuid.UUID, title string) (*types.Session, error) {
	session := &types.Session{
		UserID: userID,
		Title:  strings.TrimSpace(title),
	}
	created, err := cs.sessionRepo.Create(ctx, nil, session)
	if err != nil {
		return nil, apierr.New(apierr.CodeInternal, err)
	}
	return created, nil
}

func (cs *chatService) ListSessions(ctx context.Context, userID uuid.UUID) ([]*types.Session, error) {
	results, err := cs.sessionRepo.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, apierr.New(apierr.CodeInternal, err)
	}
	return results, nil
}

func (cs *chatService) RunTurn(ctx context.Context, userID uuid.UUID, role types.Role, sessionID uuid.UUID, message string, now time.Time) (*TurnResponse, error) {
	if strings.TrimSpace(message) == "" {
		return nil, apierr.Newf(apierr.CodeBadRequest, "message is required")
	}

	session, err := cs.guard.authorize(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	// Teachers are exempt from the cohort access window.
	if role != types.RoleTeacher {
		if err := cs.checkAccessWindow(ctx, now); err != nil {
			return nil, err
		}
	}

	stage := session.CurrentStage
	prior, err := cs.loadStageState(ctx, userID, sessionID, stage)
	if err != nil {
		return nil, err
	}

	summaries, err := cs.stageSummaries(ctx, userID, sessionID, stage)
	if err != nil {
		return nil, err
	}

	history, err := cs.recentHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result, err := cs.engine.RunTurn(ctx, BrainstormTurnInput{
		State:          prior,
		StageSummaries: summaries,
		History:        history,
		Message:        message,
	})
	if err != nil {
		// Validation gate failed or the collaborator was unreachable:
		// nothing has been written for this turn.
		return nil, err
	}

	stateJSON := result.State.ToJSON()
	if result.StateChanged {
		if _, err := cs.stateService.Upsert(ctx, userID, sessionID, stage, stateJSON); err != nil {
			return nil, err
		}
	}

	messages := []*types.ChatMessage{
		{SessionID: sessionID, Role: "user", Content: strings.TrimSpace(message)},
		{
			SessionID: sessionID,
			Role:      "assistant",
			Content:   result.AssistantMessage,
			Metadata: datatypes.JSONMap{
				"action":            result.Action,
				"threshold_reached": result.ThresholdReached,
			},
		},
	}
	if _, err := cs.messageRepo.Create(ctx, nil, messages); err != nil {
		cs.log.Warn("Failed to persist chat messages", "session_id", sessionID.String(), "error", err)
	}

	return &TurnResponse{
		AssistantMessage: result.AssistantMessage,
		Action:           result.Action,
		StageIndex:       stage,
		State:            stateJSON,
		ThresholdReached: result.ThresholdReached,
	}, nil
}

func (cs *chatService) AdvanceStage(ctx context.Context, userID, sessionID uuid.UUID) (int, error) {
	session, err := cs.guard.authorize(ctx, userID, sessionID)
	if err != nil {
		return 0, err
	}

	stage := session.CurrentStage
	state, err := cs.loadStageState(ctx, userID, sessionID, stage)
	if err != nil {
		return 0, err
	}
	if state.Problem == nil {
		return 0, apierr.Newf(apierr.CodeBadRequest, "problem statement is not confirmed yet")
	}
	if state.MinIdeas > 0 && len(state.Ideas) < state.MinIdeas {
		return 0, apierr.Newf(apierr.CodeBadRequest, "stage needs at least %d ideas before finalizing, has %d", state.MinIdeas, len(state.Ideas))
	}

	next := stage + 1
	if err := cs.sessionRepo.UpdateCurrentStage(ctx, nil, sessionID, next); err != nil {
		return 0, apierr.New(apierr.CodeInternal, err)
	}
	return next, nil
}

func (cs *chatService) checkAccessWindow(ctx context.Context, now time.Time) error {
	cohort, err := cs.cohortService.Active(ctx)
	if err != nil {
		return err
	}
	if cohort == nil {
		return nil
	}
	if werr := WindowError(cohort.AccessStartsAt, cohort.AccessEndsAt, now); werr != nil {
		return werr
	}
	return nil
}

func (cs *chatService) loadStageState(ctx context.Context, userID, sessionID uuid.UUID, stage int) (BrainstormState, error) {
	record, exists, err := cs.stateService.Get(ctx, userID, sessionID, stage)
	if err != nil {
		return BrainstormState{}, err
	}
	if !exists {
		return NewBrainstormState(cs.minIdeas), nil
	}
	state, err := BrainstormStateFromJSON(record.StateJSON)
	if err != nil {
		return BrainstormState{}, apierr.New(apierr.CodeInternal, fmt.Errorf("Failed to decode stage state: %w", err))
	}
	return state, nil
}

// stageSummaries renders read-only context lines from the stages before the
// current one; upstream state is never mutated here.
func (cs *chatService) stageSummaries(ctx context.Context, userID, sessionID uuid.UUID, belowStage int) ([]string, error) {
	if belowStage <= 0 {
		return nil, nil
	}
	records, err := cs.stateService.ListBelow(ctx, userID, sessionID, belowStage)
	if err != nil {
		return nil, err
	}
	var summaries []string
	for _, record := range records {
		state, err := BrainstormStateFromJSON(record.StateJSON)
		if err != nil {
			continue
		}
		summaries = append(summaries, summarizeBrainstorm(record.StageIndex, state))
	}
	return summaries, nil
}

func summarizeBrainstorm(stage int, state BrainstormState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "stage %d:", stage)
	if state.Problem != nil {
		fmt.Fprintf(&b, " problem=%q", state.Problem.Text)
	}
	if len(state.Ideas) > 0 {
		texts := make([]string, 0, len(state.Ideas))
		for _, idea := range state.Ideas {
			texts = append(texts, idea.Text)
		}
		fmt.Fprintf(&b, " ideas=[%s]", strings.Join(texts, "; "))
	}
	return b.String()
}

func (cs *chatService) recentHistory(ctx context.Context, sessionID uuid.UUID) ([]HistoryTurn, error) {
	messages, err := cs.messageRepo.ListRecent(ctx, nil, sessionID, cs.historyLimit)
	if err != nil {
		return nil, apierr.New(apierr.CodeInternal, err)
	}
	history := make([]HistoryTurn, 0, len(messages))
	for _, m := range messages {
		history = append(history, HistoryTurn{Role: m.Role, Content: m.Content})
	}
	return history, nil
}

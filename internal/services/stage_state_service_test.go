package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/apierr"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/repos"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/types"
)

func TestStageStateUpsertKeepsOneRowPerStage(t *testing.T) {
	gdb := openTestDB(t)
	log := testLogger(t)
	sessionRepo := repos.NewSessionRepo(gdb, log)
	stateRepo := repos.NewStageStateRepo(gdb, log)
	svc := NewStageStateService(gdb, log, sessionRepo, stateRepo)

	userID, sessionID := seedUserSession(t, gdb, sessionRepo)
	ctx := context.Background()

	first, err := svc.Upsert(ctx, userID, sessionID, 0, datatypes.JSONMap{"version": "one"})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second, err := svc.Upsert(ctx, userID, sessionID, 0, datatypes.JSONMap{"version": "two"})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var count int64
	if err := gdb.Model(&types.StageState{}).
		Where("session_id = ? AND stage_index = ?", sessionID, 0).
		Count(&count).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d rows for the (session, stage) key, want 1", count)
	}
	if second.ID != first.ID {
		t.Fatalf("second upsert produced a new row id %s, want %s", second.ID, first.ID)
	}
	if got := second.StateJSON["version"]; got != "two" {
		t.Fatalf("got payload version %v, want the replacing write %q", got, "two")
	}
}

func TestStageStateGetReturnsAbsenceWithoutError(t *testing.T) {
	gdb := openTestDB(t)
	log := testLogger(t)
	sessionRepo := repos.NewSessionRepo(gdb, log)
	svc := NewStageStateService(gdb, log, sessionRepo, repos.NewStageStateRepo(gdb, log))

	userID, sessionID := seedUserSession(t, gdb, sessionRepo)

	record, exists, err := svc.Get(context.Background(), userID, sessionID, 0)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if exists || record != nil {
		t.Fatalf("got exists=%v record=%v for an unwritten stage, want absence", exists, record)
	}
}

func TestStageStateListBelow(t *testing.T) {
	gdb := openTestDB(t)
	log := testLogger(t)
	sessionRepo := repos.NewSessionRepo(gdb, log)
	svc := NewStageStateService(gdb, log, sessionRepo, repos.NewStageStateRepo(gdb, log))

	userID, sessionID := seedUserSession(t, gdb, sessionRepo)
	strangerID, _ := seedUserSession(t, gdb, sessionRepo)
	ctx := context.Background()

	// Stage 1 is intentionally left unwritten.
	if _, err := svc.Upsert(ctx, userID, sessionID, 0, datatypes.JSONMap{"stage": "zero"}); err != nil {
		t.Fatalf("upsert stage 0: %v", err)
	}
	if _, err := svc.Upsert(ctx, userID, sessionID, 2, datatypes.JSONMap{"stage": "two"}); err != nil {
		t.Fatalf("upsert stage 2: %v", err)
	}

	records, err := svc.ListBelow(ctx, userID, sessionID, 2)
	if err != nil {
		t.Fatalf("list below 2: %v", err)
	}
	if len(records) != 1 || records[0].StageIndex != 0 {
		t.Fatalf("got %d records below stage 2, want only stage 0", len(records))
	}

	records, err = svc.ListBelow(ctx, userID, sessionID, 3)
	if err != nil {
		t.Fatalf("list below 3: %v", err)
	}
	if len(records) != 2 || records[0].StageIndex != 0 || records[1].StageIndex != 2 {
		t.Fatalf("got records %v, want stages 0 and 2 in order", records)
	}

	_, err = svc.ListBelow(ctx, strangerID, sessionID, 3)
	if got := apierr.From(err).Code; got != apierr.CodeForbidden {
		t.Fatalf("got code %s, want %s", got, apierr.CodeForbidden)
	}
}

func TestStageStateOwnership(t *testing.T) {
	gdb := openTestDB(t)
	log := testLogger(t)
	sessionRepo := repos.NewSessionRepo(gdb, log)
	svc := NewStageStateService(gdb, log, sessionRepo, repos.NewStageStateRepo(gdb, log))

	ownerID, sessionID := seedUserSession(t, gdb, sessionRepo)
	strangerID, _ := seedUserSession(t, gdb, sessionRepo)
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, ownerID, sessionID, 0, datatypes.JSONMap{"ok": true}); err != nil {
		t.Fatalf("owner upsert: %v", err)
	}

	tests := []struct {
		name      string
		userID    uuid.UUID
		sessionID uuid.UUID
		wantCode  string
	}{
		{"foreign_session_forbidden", strangerID, sessionID, apierr.CodeForbidden},
		{"missing_session_not_found", ownerID, uuid.New(), apierr.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Get(ctx, tt.userID, tt.sessionID, 0)
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := apierr.From(err).Code; got != tt.wantCode {
				t.Fatalf("got code %s, want %s", got, tt.wantCode)
			}
			_, err = svc.Upsert(ctx, tt.userID, tt.sessionID, 0, datatypes.JSONMap{"x": 1})
			if got := apierr.From(err).Code; got != tt.wantCode {
				t.Fatalf("upsert: got code %s, want %s", got, tt.wantCode)
			}
		})
	}
}

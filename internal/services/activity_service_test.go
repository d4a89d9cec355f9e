package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/apierr"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/repos"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/types"
)

func newTestActivityService(t *testing.T) (ActivityService, *gorm.DB, uuid.UUID) {
	t.Helper()
	gdb := openTestDB(t)
	log := testLogger(t)
	sessionRepo := repos.NewSessionRepo(gdb, log)
	userID, _ := seedUserSession(t, gdb, sessionRepo)
	svc := NewActivityService(gdb, log, repos.NewActivityLogRepo(gdb, log), repos.NewCohortRepo(gdb, log))
	return svc, gdb, userID
}

func TestActivitySubmitValidation(t *testing.T) {
	svc, _, userID := newTestActivityService(t)
	now := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		hours    float64
		activity string
	}{
		{"negative_hours", -1, "lectura"},
		{"hours_above_cap", 201, "lectura"},
		{"blank_activity", 5, "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), userID, types.RoleStudent, tt.hours, tt.activity, now)
			if got := apierr.From(err).Code; got != apierr.CodeBadRequest {
				t.Fatalf("got code %s, want %s", got, apierr.CodeBadRequest)
			}
		})
	}
}

func TestActivitySubmitOncePerPeriod(t *testing.T) {
	svc, _, userID := newTestActivityService(t)
	ctx := context.Background()
	// Wednesday; the containing Monday-aligned week is Mar 9 to Mar 16.
	now := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)

	first, err := svc.Submit(ctx, userID, types.RoleStudent, 6.5, "mapeo del proceso de mantenimiento", now)
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	wantStart := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	if !first.PeriodStart.Equal(wantStart) {
		t.Fatalf("got period start %v, want %v", first.PeriodStart, wantStart)
	}

	// Friday of the same week collides with the existing record.
	_, err = svc.Submit(ctx, userID, types.RoleStudent, 2, "entrevistas", now.AddDate(0, 0, 2))
	if got := apierr.From(err).Code; got != apierr.CodeConflict {
		t.Fatalf("got code %s, want %s", got, apierr.CodeConflict)
	}
	var conflict *PeriodConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("conflict error does not carry the period bounds: %v", err)
	}
	if !conflict.PeriodStart.Equal(first.PeriodStart) || !conflict.PeriodEnd.Equal(first.PeriodEnd) {
		t.Fatalf("conflict bounds %v-%v do not match the stored record %v-%v",
			conflict.PeriodStart, conflict.PeriodEnd, first.PeriodStart, first.PeriodEnd)
	}

	// The following week is a fresh period.
	second, err := svc.Submit(ctx, userID, types.RoleStudent, 3, "analisis de causas", now.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("next-week submit: %v", err)
	}
	if !second.PeriodStart.Equal(wantStart.AddDate(0, 0, 7)) {
		t.Fatalf("got period start %v, want %v", second.PeriodStart, wantStart.AddDate(0, 0, 7))
	}

	entries, err := svc.List(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
}

func TestActivitySubmitInsertFailureIsNotAConflict(t *testing.T) {
	svc, gdb, userID := newTestActivityService(t)
	now := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)

	// No record exists for the period; the insert itself fails.
	if err := gdb.Exec(`CREATE TRIGGER activity_log_reject BEFORE INSERT ON activity_log
BEGIN SELECT RAISE(ABORT, 'store unavailable'); END;`).Error; err != nil {
		t.Fatalf("install trigger: %v", err)
	}

	_, err := svc.Submit(context.Background(), userID, types.RoleStudent, 4, "lectura", now)
	if got := apierr.From(err).Code; got != apierr.CodeInternal {
		t.Fatalf("got code %s, want %s", got, apierr.CodeInternal)
	}
	var conflict *PeriodConflictError
	if errors.As(err, &conflict) {
		t.Fatalf("insert failure reported as a period conflict: %v", err)
	}
}

func TestActivitySubmitCohortLookupFailure(t *testing.T) {
	svc, gdb, userID := newTestActivityService(t)
	now := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)

	// The active-cohort lookup failing must surface, not disable the gate.
	if err := gdb.Exec("DROP TABLE cohort").Error; err != nil {
		t.Fatalf("drop cohort table: %v", err)
	}

	_, err := svc.Submit(context.Background(), userID, types.RoleStudent, 4, "lectura", now)
	if got := apierr.From(err).Code; got != apierr.CodeInternal {
		t.Fatalf("got code %s, want %s", got, apierr.CodeInternal)
	}
}

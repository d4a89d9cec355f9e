package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/repos"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/types"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(
		&types.User{},
		&types.Session{},
		&types.ChatMessage{},
		&types.StageState{},
		&types.Cohort{},
		&types.CohortMember{},
		&types.ActivityLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func seedUserSession(t *testing.T, gdb *gorm.DB, sessionRepo repos.SessionRepo) (uuid.UUID, uuid.UUID) {
	t.Helper()
	user := &types.User{ID: uuid.New(), Email: uuid.NewString() + "@example.edu", Subject: uuid.NewString()}
	if err := gdb.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	session, err := sessionRepo.Create(context.Background(), nil, &types.Session{UserID: user.ID, Title: "caso mantenimiento"})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return user.ID, session.ID
}

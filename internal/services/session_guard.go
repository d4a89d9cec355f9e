package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/apierr"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/repos"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/types"
)

// sessionGuard is the single ownership predicate every session-scoped
// operation goes through: missing session is NOT_FOUND, someone else's
// session is FORBIDDEN with no record contents leaked.
type sessionGuard struct {
	sessionRepo repos.SessionRepo
}

func (g *sessionGuard) authorize(ctx context.Context, userID, sessionID uuid.UUID) (*types.Session, error) {
	session, err := g.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apierr.Newf(apierr.CodeNotFound, "session not found")
		}
		return nil, apierr.New(apierr.CodeInternal, err)
	}
	if session.UserID != userID {
		return nil, apierr.Newf(apierr.CodeForbidden, "session belongs to another user")
	}
	return session, nil
}

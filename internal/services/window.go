package services

import (
	"time"

	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/apierr"
)

// WithinWindow reports whether now falls inside [startsAt, endsAt). A nil
// bound imposes no restriction on that side; an end bound at or before now
// means expired regardless of the start bound.
func WithinWindow(startsAt, endsAt *time.Time, now time.Time) bool {
	if endsAt != nil && !now.Before(*endsAt) {
		return false
	}
	if startsAt != nil && now.Before(*startsAt) {
		return false
	}
	return true
}

// WindowError returns nil when inside the window, otherwise the cause-
// specific error (expired vs not yet started) so callers can render a
// targeted message.
func WindowError(startsAt, endsAt *time.Time, now time.Time) *apierr.Error {
	if endsAt != nil && !now.Before(*endsAt) {
		return apierr.Newf(apierr.CodeAccessExpired, "access window has ended")
	}
	if startsAt != nil && now.Before(*startsAt) {
		return apierr.Newf(apierr.CodeAccessNotStarted, "access window has not started")
	}
	return nil
}

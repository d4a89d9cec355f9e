package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/apierr"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/logger"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/repos"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/types"
)

const maxWeeklyHours = 200

// PeriodConflictError carries the bounds of the already-recorded period so
// the caller can show the learner which week was double-submitted.
type PeriodConflictError struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
}

func (e *PeriodConflictError) Error() string {
	return fmt.Sprintf("an activity record already exists for the period %s to %s",
		e.PeriodStart.Format("2006-01-02"), e.PeriodEnd.Format("2006-01-02"))
}

type ActivityService interface {
	Submit(ctx context.Context, userID uuid.UUID, role types.Role, hours float64, activity string, now time.Time) (*types.ActivityLog, error)
	List(ctx context.Context, userID uuid.UUID) ([]*types.ActivityLog, error)
}

type activityService struct {
	db         *gorm.DB
	log        *logger.Logger
	repo       repos.ActivityLogRepo
	cohortRepo repos.CohortRepo
}

func NewActivityService(db *gorm.DB, log *logger.Logger, repo repos.ActivityLogRepo, cohortRepo repos.CohortRepo) ActivityService {
	return &activityService{
		db:         db,
		log:        log.With("service", "ActivityService"),
		repo:       repo,
		cohortRepo: cohortRepo,
	}
}

func (as *activityService) Submit(ctx context.Context, userID uuid.UUID, role types.Role, hours float64, activity string, now time.Time) (*types.ActivityLog, error) {
	if hours < 0 || hours > maxWeeklyHours {
		return nil, apierr.Newf(apierr.CodeBadRequest, "hours must be between 0 and %d", maxWeeklyHours)
	}
	activity = strings.TrimSpace(activity)
	if activity == "" {
		return nil, apierr.Newf(apierr.CodeBadRequest, "activity description is required")
	}

	cohort, err := as.activeCohort(ctx)
	if err != nil {
		return nil, apierr.New(apierr.CodeInternal, err)
	}
	if role != types.RoleTeacher && cohort != nil {
		if werr := WindowError(cohort.AccessStartsAt, cohort.AccessEndsAt, now); werr != nil {
			return nil, werr
		}
	}

	var anchor *time.Time
	if cohort != nil {
		anchor = cohort.TrackingStartsOn
	}
	periodStart, periodEnd := PeriodFor(now, anchor)

	existing, err := as.repo.GetByUserPeriod(ctx, nil, userID, periodStart)
	if err == nil && existing != nil {
		return nil, apierr.New(apierr.CodeConflict, &PeriodConflictError{
			PeriodStart: existing.PeriodStart,
			PeriodEnd:   existing.PeriodEnd,
		})
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, apierr.New(apierr.CodeInternal, err)
	}

	entry := &types.ActivityLog{
		UserID:      userID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Hours:       hours,
		Activity:    activity,
	}
	created, err := as.repo.Create(ctx, nil, entry)
	if err != nil {
		// The unique (user, period) index closes the lookup/insert race: a
		// concurrent duplicate surfaces here. Re-read to tell that apart
		// from a plain store failure and to report the stored row's bounds.
		if existing, lookupErr := as.repo.GetByUserPeriod(ctx, nil, userID, periodStart); lookupErr == nil && existing != nil {
			return nil, apierr.New(apierr.CodeConflict, &PeriodConflictError{
				PeriodStart: existing.PeriodStart,
				PeriodEnd:   existing.PeriodEnd,
			})
		}
		return nil, apierr.New(apierr.CodeInternal, err)
	}
	return created, nil
}

func (as *activityService) List(ctx context.Context, userID uuid.UUID) ([]*types.ActivityLog, error) {
	results, err := as.repo.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, apierr.New(apierr.CodeInternal, err)
	}
	return results, nil
}

// activeCohort returns (nil, nil) when no cohort is active; any other
// lookup failure is surfaced so a store outage never disables the gate.
func (as *activityService) activeCohort(ctx context.Context) (*types.Cohort, error) {
	cohort, err := as.cohortRepo.GetActive(ctx, nil)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return cohort, nil
}

// PeriodFor computes the canonical 7-day accounting period containing now.
// With an anchor the weeks are aligned to the anchor date; without one they
// fall back to calendar weeks starting Monday, UTC.
func PeriodFor(now time.Time, anchor *time.Time) (time.Time, time.Time) {
	nowDate := dateUTC(now)

	if anchor != nil {
		anchorDate := dateUTC(*anchor)
		days := int(nowDate.Sub(anchorDate).Hours() / 24)
		k := days / 7
		if days < 0 && days%7 != 0 {
			k--
		}
		start := anchorDate.AddDate(0, 0, k*7)
		return start, start.AddDate(0, 0, 7)
	}

	offset := (int(nowDate.Weekday()) + 6) % 7 // Monday = 0
	start := nowDate.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}

func dateUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

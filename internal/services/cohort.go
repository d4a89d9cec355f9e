package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/apierr"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/logger"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/repos"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/types"
)

const (
	activeCohortCacheKey = "optia:active_cohort"
	activeCohortCacheTTL = 30 * time.Second
)

// Tracking weeks are anchored to a Monday.
const trackingAnchorWeekday = time.Monday

type CohortService interface {
	Create(ctx context.Context, cohort *types.Cohort) (*types.Cohort, error)
	Activate(ctx context.Context, cohortID uuid.UUID) error
	List(ctx context.Context) ([]*types.Cohort, error)
	// Active returns the single active cohort, or (nil, nil) when none is
	// configured; absence of a cohort imposes no access restriction.
	Active(ctx context.Context) (*types.Cohort, error)
	Join(ctx context.Context, userID uuid.UUID, now time.Time) (*types.Cohort, error)
}

type cohortService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.CohortRepo
	rdb  *goredis.Client
}

// NewCohortService accepts a nil redis client; caching is then skipped.
func NewCohortService(db *gorm.DB, log *logger.Logger, repo repos.CohortRepo, rdb *goredis.Client) CohortService {
	return &cohortService{
		db:   db,
		log:  log.With("service", "CohortService"),
		repo: repo,
		rdb:  rdb,
	}
}

func (cs *cohortService) Create(ctx context.Context, cohort *types.Cohort) (*types.Cohort, error) {
	if err := validateCohort(cohort); err != nil {
		return nil, err
	}
	created, err := cs.repo.Create(ctx, nil, cohort)
	if err != nil {
		return nil, apierr.New(apierr.CodeInternal, err)
	}
	return created, nil
}

func validateCohort(cohort *types.Cohort) error {
	if cohort == nil || strings.TrimSpace(cohort.Name) == "" {
		return apierr.Newf(apierr.CodeBadRequest, "cohort name is required")
	}
	if cohort.AccessStartsAt != nil && cohort.AccessEndsAt != nil &&
		!cohort.AccessEndsAt.After(*cohort.AccessStartsAt) {
		return apierr.Newf(apierr.CodeBadRequest, "access end must be after access start")
	}
	if cohort.RegistrationStartsAt != nil && cohort.RegistrationEndsAt != nil &&
		!cohort.RegistrationEndsAt.After(*cohort.RegistrationStartsAt) {
		return apierr.Newf(apierr.CodeBadRequest, "registration end must be after registration start")
	}
	if cohort.TrackingStartsOn != nil && cohort.TrackingStartsOn.UTC().Weekday() != trackingAnchorWeekday {
		return apierr.Newf(apierr.CodeBadRequest, "tracking start date must fall on a %s", trackingAnchorWeekday)
	}
	if cohort.ReminderTimeOfDay != "" {
		if _, err := time.Parse("15:04", cohort.ReminderTimeOfDay); err != nil {
			return apierr.Newf(apierr.CodeBadRequest, "reminder time of day must be HH:MM")
		}
	}
	return nil
}

func (cs *cohortService) Activate(ctx context.Context, cohortID uuid.UUID) error {
	if err := cs.repo.Activate(ctx, nil, cohortID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return apierr.Newf(apierr.CodeNotFound, "cohort not found")
		}
		return apierr.New(apierr.CodeInternal, err)
	}
	cs.invalidateActiveCache(ctx)
	return nil
}

func (cs *cohortService) List(ctx context.Context) ([]*types.Cohort, error) {
	results, err := cs.repo.List(ctx, nil)
	if err != nil {
		return nil, apierr.New(apierr.CodeInternal, err)
	}
	return results, nil
}

func (cs *cohortService) Active(ctx context.Context) (*types.Cohort, error) {
	if cached := cs.cachedActive(ctx); cached != nil {
		return cached, nil
	}

	cohort, err := cs.repo.GetActive(ctx, nil)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, apierr.New(apierr.CodeInternal, err)
	}

	cs.cacheActive(ctx, cohort)
	return cohort, nil
}

func (cs *cohortService) Join(ctx context.Context, userID uuid.UUID, now time.Time) (*types.Cohort, error) {
	cohort, err := cs.Active(ctx)
	if err != nil {
		return nil, err
	}
	if cohort == nil {
		return nil, apierr.Newf(apierr.CodeNotFound, "no active cohort to join")
	}
	// Re-joining is a no-op even after the registration window has closed.
	member, err := cs.repo.IsMember(ctx, nil, cohort.ID, userID)
	if err != nil {
		return nil, apierr.New(apierr.CodeInternal, err)
	}
	if member {
		return cohort, nil
	}
	if werr := WindowError(cohort.RegistrationStartsAt, cohort.RegistrationEndsAt, now); werr != nil {
		return nil, werr
	}
	if err := cs.repo.AddMember(ctx, nil, cohort.ID, userID); err != nil {
		return nil, apierr.New(apierr.CodeInternal, err)
	}
	return cohort, nil
}

func (cs *cohortService) cachedActive(ctx context.Context) *types.Cohort {
	if cs.rdb == nil {
		return nil
	}
	raw, err := cs.rdb.Get(ctx, activeCohortCacheKey).Bytes()
	if err != nil {
		return nil
	}
	var cohort types.Cohort
	if err := json.Unmarshal(raw, &cohort); err != nil {
		return nil
	}
	return &cohort
}

func (cs *cohortService) cacheActive(ctx context.Context, cohort *types.Cohort) {
	if cs.rdb == nil || cohort == nil {
		return
	}
	raw, err := json.Marshal(cohort)
	if err != nil {
		return
	}
	if err := cs.rdb.Set(ctx, activeCohortCacheKey, raw, activeCohortCacheTTL).Err(); err != nil {
		cs.log.Debug("Failed to cache active cohort", "error", err)
	}
}

func (cs *cohortService) invalidateActiveCache(ctx context.Context) {
	if cs.rdb == nil {
		return
	}
	if err := cs.rdb.Del(ctx, activeCohortCacheKey).Err(); err != nil {
		cs.log.Debug("Failed to invalidate active cohort cache", "error", err)
	}
}

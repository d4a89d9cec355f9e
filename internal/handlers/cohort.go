package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/apierr"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/requestdata"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/services"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/types"
)

type CohortHandler struct {
	svc services.CohortService
}

func NewCohortHandler(svc services.CohortService) *CohortHandler {
	return &CohortHandler{svc: svc}
}

// POST /api/cohorts (teacher only)
func (h *CohortHandler) Create(c *gin.Context) {
	var body struct {
		Name                 string     `json:"name"`
		RegistrationStartsAt *time.Time `json:"registration_starts_at"`
		RegistrationEndsAt   *time.Time `json:"registration_ends_at"`
		AccessStartsAt       *time.Time `json:"access_starts_at"`
		AccessEndsAt         *time.Time `json:"access_ends_at"`
		TrackingStartsOn     *time.Time `json:"tracking_starts_on"`
		ReminderTimeOfDay    string     `json:"reminder_time_of_day"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apierr.Newf(apierr.CodeBadRequest, "invalid request body"))
		return
	}

	cohort := &types.Cohort{
		Name:                 body.Name,
		RegistrationStartsAt: body.RegistrationStartsAt,
		RegistrationEndsAt:   body.RegistrationEndsAt,
		AccessStartsAt:       body.AccessStartsAt,
		AccessEndsAt:         body.AccessEndsAt,
		TrackingStartsOn:     body.TrackingStartsOn,
		ReminderTimeOfDay:    body.ReminderTimeOfDay,
	}
	created, err := h.svc.Create(c.Request.Context(), cohort)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"cohort": created})
}

// POST /api/cohorts/:id/activate (teacher only)
func (h *CohortHandler) Activate(c *gin.Context) {
	cohortID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, apierr.Newf(apierr.CodeBadRequest, "invalid cohort id"))
		return
	}
	if err := h.svc.Activate(c.Request.Context(), cohortID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"activated": cohortID})
}

// GET /api/cohorts (teacher only)
func (h *CohortHandler) List(c *gin.Context) {
	cohorts, err := h.svc.List(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"cohorts": cohorts})
}

// GET /api/cohorts/active
func (h *CohortHandler) Active(c *gin.Context) {
	cohort, err := h.svc.Active(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"cohort": cohort})
}

// POST /api/cohorts/join
func (h *CohortHandler) Join(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	cohort, err := h.svc.Join(c.Request.Context(), rd.UserID, time.Now().UTC())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"cohort": cohort})
}

package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/apierr"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/requestdata"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/services"
)

type ActivityHandler struct {
	svc services.ActivityService
}

func NewActivityHandler(svc services.ActivityService) *ActivityHandler {
	return &ActivityHandler{svc: svc}
}

// POST /api/activity-logs
func (h *ActivityHandler) Submit(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var body struct {
		Hours    float64 `json:"hours"`
		Activity string  `json:"activity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apierr.Newf(apierr.CodeBadRequest, "invalid request body"))
		return
	}

	entry, err := h.svc.Submit(c.Request.Context(), rd.UserID, rd.Role, body.Hours, body.Activity, time.Now().UTC())
	if err != nil {
		var conflict *services.PeriodConflictError
		if errors.As(err, &conflict) {
			RespondErrorWithDetails(c, err, map[string]any{
				"period_start": conflict.PeriodStart,
				"period_end":   conflict.PeriodEnd,
			})
			return
		}
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"activity_log": entry})
}

// GET /api/activity-logs
func (h *ActivityHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	entries, err := h.svc.List(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"activity_logs": entries})
}

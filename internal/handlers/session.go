package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/apierr"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/requestdata"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/services"
)

type SessionHandler struct {
	chatService  services.ChatService
	stateService services.StageStateService
}

func NewSessionHandler(chatService services.ChatService, stateService services.StageStateService) *SessionHandler {
	return &SessionHandler{chatService: chatService, stateService: stateService}
}

// POST /api/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var body struct {
		Title string `json:"title"`
	}
	_ = c.ShouldBindJSON(&body)

	session, err := h.chatService.CreateSession(c.Request.Context(), rd.UserID, body.Title)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"session": session})
}

// GET /api/sessions
func (h *SessionHandler) ListSessions(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	sessions, err := h.chatService.ListSessions(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"sessions": sessions})
}

// GET /api/sessions/:id/state/:stage
func (h *SessionHandler) GetStageState(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, apierr.Newf(apierr.CodeBadRequest, "invalid session id"))
		return
	}
	stage, err := strconv.Atoi(c.Param("stage"))
	if err != nil || stage < 0 {
		RespondError(c, apierr.Newf(apierr.CodeBadRequest, "invalid stage index"))
		return
	}

	record, exists, err := h.stateService.Get(c.Request.Context(), rd.UserID, sessionID, stage)
	if err != nil {
		RespondError(c, err)
		return
	}
	if !exists {
		RespondOK(c, gin.H{"exists": false, "state": nil})
		return
	}
	RespondOK(c, gin.H{"exists": true, "state": record.StateJSON, "updated_at": record.UpdatedAt})
}

// POST /api/sessions/:id/advance
func (h *SessionHandler) AdvanceStage(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, apierr.Newf(apierr.CodeBadRequest, "invalid session id"))
		return
	}
	stage, err := h.chatService.AdvanceStage(c.Request.Context(), rd.UserID, sessionID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"current_stage": stage})
}

// POST /api/sessions/:id/turns
func (h *SessionHandler) PostTurn(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, apierr.Newf(apierr.CodeBadRequest, "invalid session id"))
		return
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apierr.Newf(apierr.CodeBadRequest, "invalid request body"))
		return
	}

	resp, err := h.chatService.RunTurn(c.Request.Context(), rd.UserID, rd.Role, sessionID, body.Message, time.Now().UTC())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, resp)
}

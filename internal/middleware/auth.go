package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/apierr"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/logger"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/requestdata"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/services"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/types"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), authService: authService}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			abortWithCode(c, apierr.Newf(apierr.CodeUnauthenticated, "missing or invalid token"))
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			abortWithCode(c, apierr.From(err))
			return
		}
		rd := requestdata.GetRequestData(ctx)
		if rd == nil || rd.UserID == uuid.Nil {
			abortWithCode(c, apierr.Newf(apierr.CodeUnauthenticated, "identity not resolved"))
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (am *AuthMiddleware) RequireTeacher() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := requestdata.GetRequestData(c.Request.Context())
		if rd == nil || rd.Role != types.RoleTeacher {
			abortWithCode(c, apierr.Newf(apierr.CodeForbidden, "teacher role required"))
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}

func abortWithCode(c *gin.Context, ae *apierr.Error) {
	c.AbortWithStatusJSON(ae.Status, gin.H{
		"error": gin.H{"message": ae.Error(), "code": ae.Code},
	})
}

package services

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/apierr"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/logger"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/repos"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/requestdata"
)

// IdentityVerifier is the trust root for identity: it resolves a bearer
// credential to a verified (subject, email) pair or fails.
type IdentityVerifier interface {
	Verify(ctx context.Context, tokenString string) (subject, email, name string, err error)
}

type identityClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type jwtVerifier struct {
	secret []byte
}

func NewJWTVerifier(secretKey string) IdentityVerifier {
	return &jwtVerifier{secret: []byte(secretKey)}
}

func (v *jwtVerifier) Verify(ctx context.Context, tokenString string) (string, string, string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &identityClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return "", "", "", fmt.Errorf("Failed to parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*identityClaims)
	if !ok || !parsed.Valid {
		return "", "", "", fmt.Errorf("Invalid or expired token")
	}
	if claims.Subject == "" || claims.Email == "" {
		return "", "", "", fmt.Errorf("Token missing subject or email claim")
	}
	return claims.Subject, claims.Email, claims.Name, nil
}

type AuthService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	db       *gorm.DB
	log      *logger.Logger
	verifier IdentityVerifier
	gate     *AccessGate
	userRepo repos.UserRepo
}

func NewAuthService(db *gorm.DB, log *logger.Logger, verifier IdentityVerifier, gate *AccessGate, userRepo repos.UserRepo) AuthService {
	return &authService{
		db:       db,
		log:      log.With("service", "AuthService"),
		verifier: verifier,
		gate:     gate,
		userRepo: userRepo,
	}
}

// SetContextFromToken verifies the credential, classifies the role against
// the allowlist/domain policy and stashes the resolved identity in the
// request context. The profile row is created on first authentication.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, apierr.Newf(apierr.CodeUnauthenticated, "missing credential")
	}
	subject, email, name, err := as.verifier.Verify(ctx, tokenString)
	if err != nil {
		return ctx, apierr.New(apierr.CodeUnauthenticated, err)
	}

	role, err := as.gate.ClassifyRole(email)
	if err != nil {
		return ctx, err
	}

	user, err := as.userRepo.FindOrCreate(ctx, nil, subject, email, name)
	if err != nil {
		as.log.Error("Failed to resolve user profile", "error", err)
		return ctx, apierr.New(apierr.CodeInternal, fmt.Errorf("Failed to resolve user profile: %w", err))
	}

	rd := &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      user.ID,
		Email:       user.Email,
		Role:        role,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

package repos

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/logger"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/types"
)

type UserRepo interface {
	FindOrCreate(ctx context.Context, tx *gorm.DB, subject, email, name string) (*types.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

// FindOrCreate resolves the profile row for a verified identity. Emails are
// stored lowercased so lookups stay case-insensitive.
func (ur *userRepo) FindOrCreate(ctx context.Context, tx *gorm.DB, subject, email, name string) (*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	email = strings.ToLower(strings.TrimSpace(email))

	var user types.User
	err := transaction.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err == nil {
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	user = types.User{
		ID:      uuid.New(),
		Email:   email,
		Subject: subject,
		Name:    name,
	}
	if err := transaction.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

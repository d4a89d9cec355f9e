package types

import (
	"time"

	"github.com/google/uuid"
)

// Session is a single run through the case exercise. All stage state is
// scoped under it and it is owned by exactly one user.
type Session struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;index;not null;column:user_id" json:"user_id"`
	User         *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	Title        string    `gorm:"column:title" json:"title"`
	CurrentStage int       `gorm:"not null;default:0;column:current_stage" json:"current_stage"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (Session) TableName() string {
	return "session"
}

package types

import (
	"time"

	"github.com/google/uuid"
)

// ActivityLog records one weekly hour submission. The unique index on
// (user_id, period_start) enforces at most one record per user per period;
// a second submission for the same period is rejected, never overwritten.
type ActivityLog struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_activity_log_period,priority:1;column:user_id" json:"user_id"`
	User        *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	PeriodStart time.Time `gorm:"not null;uniqueIndex:idx_activity_log_period,priority:2;column:period_start" json:"period_start"`
	PeriodEnd   time.Time `gorm:"not null;column:period_end" json:"period_end"`
	Hours       float64   `gorm:"not null;column:hours" json:"hours"`
	Activity    string    `gorm:"not null;column:activity" json:"activity"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "activity_log"
}

package types

import (
	"time"

	"github.com/google/uuid"
)

// Cohort groups learners under a shared registration window, access window
// and weekly-tracking schedule. At most one cohort is active at a time.
type Cohort struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name                 string     `gorm:"uniqueIndex;not null;column:name" json:"name"`
	Active               bool       `gorm:"not null;default:false;index;column:active" json:"active"`
	RegistrationStartsAt *time.Time `gorm:"column:registration_starts_at" json:"registration_starts_at,omitempty"`
	RegistrationEndsAt   *time.Time `gorm:"column:registration_ends_at" json:"registration_ends_at,omitempty"`
	AccessStartsAt       *time.Time `gorm:"column:access_starts_at" json:"access_starts_at,omitempty"`
	AccessEndsAt         *time.Time `gorm:"column:access_ends_at" json:"access_ends_at,omitempty"`
	TrackingStartsOn     *time.Time `gorm:"column:tracking_starts_on" json:"tracking_starts_on,omitempty"`
	ReminderTimeOfDay    string     `gorm:"column:reminder_time_of_day" json:"reminder_time_of_day,omitempty"`
	CreatedAt            time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"not null" json:"updated_at"`
}

func (Cohort) TableName() string {
	return "cohort"
}

type CohortMember struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CohortID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cohort_member_key,priority:1;column:cohort_id" json:"cohort_id"`
	Cohort    *Cohort   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CohortID;references:ID" json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cohort_member_key,priority:2;column:user_id" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (CohortMember) TableName() string {
	return "cohort_member"
}

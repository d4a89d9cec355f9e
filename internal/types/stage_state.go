package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// StageState holds the validated structured state for one stage of one
// session. The unique index on (session_id, stage_index) backs the
// idempotent upsert: at most one live row per key.
type StageState struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID  uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_stage_state_key,priority:1;column:session_id" json:"session_id"`
	Session    *Session          `gorm:"constraint:OnDelete:CASCADE;foreignKey:SessionID;references:ID" json:"-"`
	StageIndex int               `gorm:"not null;uniqueIndex:idx_stage_state_key,priority:2;column:stage_index" json:"stage_index"`
	StateJSON  datatypes.JSONMap `gorm:"column:state_json" json:"state_json"`
	UpdatedAt  time.Time         `gorm:"not null" json:"updated_at"`
	CreatedAt  time.Time         `gorm:"not null" json:"created_at"`
}

func (StageState) TableName() string {
	return "stage_state"
}

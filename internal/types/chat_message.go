package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChatMessage struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID         `gorm:"type:uuid;index;not null;column:session_id" json:"session_id"`
	Session   *Session          `gorm:"constraint:OnDelete:CASCADE;foreignKey:SessionID;references:ID" json:"-"`
	Role      string            `gorm:"not null;column:role" json:"role"`
	Content   string            `gorm:"not null;column:content" json:"content"`
	Metadata  datatypes.JSONMap `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;index" json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_message"
}

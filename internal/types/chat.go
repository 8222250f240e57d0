package types

import (
	"time"

	"gorm.io/datatypes"
)

// ChatRecord maps the upstream product's `chat` table. This service only
// reads it; the table is written and migrated by the product backend.
type ChatRecord struct {
	ID                 int64          `gorm:"column:id;primaryKey" json:"id"`
	ChatConversationID string         `gorm:"column:chat_conversation_id;index" json:"chat_conversation_id"`
	UserID             string         `gorm:"column:user_id" json:"user_id"`
	Message            string         `gorm:"column:message;type:text" json:"message"`
	Type               string         `gorm:"column:type" json:"type"`
	MetaData           datatypes.JSON `gorm:"column:meta_data" json:"meta_data,omitempty"`
	InsertedTime       time.Time      `gorm:"column:inserted_time;index" json:"inserted_time"`
}

func (ChatRecord) TableName() string { return "chat" }

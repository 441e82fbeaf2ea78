package models

import (
	"time"
)

// Message is a directed, point-to-point row. Each row is independently
// addressed to one receiver; there is no thread entity. The persisted row is
// the source of truth, realtime delivery is best-effort on top of it.
type Message struct {
	MessageID   uint64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID   *uint64     `gorm:"index" json:"projectId,omitempty"`
	SenderID    uint64      `gorm:"index;not null" json:"senderId"`
	ReceiverID  uint64      `gorm:"index;not null" json:"receiverId"`
	Body        string      `gorm:"size:4096;not null" json:"message"`
	MessageType MessageType `gorm:"size:32;not null;default:'text'" json:"messageType"`
	IsRead      bool        `gorm:"not null;default:false" json:"isRead"`
	ReadAt      *time.Time  `json:"readAt,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// TableName overrides the table name for Message
func (Message) TableName() string {
	return "messages"
}

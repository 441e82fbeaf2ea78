package services

import (
	"errors"
	"time"

	"github.com/teamdesk/teamdesk/internal/models"
	"github.com/teamdesk/teamdesk/internal/types"
	"gorm.io/gorm"
)

// MessageInput carries a send request. Receivers may be one id or several;
// each receiver gets its own row since messages are point-to-point.
type MessageInput struct {
	ProjectID   *uint64
	ReceiverIDs []uint64
	Body        string
	MessageType models.MessageType
}

// SendMessage persists one row per receiver. Persistence is the source of
// truth; any realtime fan-out happens after this returns, best-effort.
func SendMessage(db *gorm.DB, senderID uint64, in MessageInput) ([]models.Message, error) {
	if in.Body == "" {
		return nil, types.Validation("message body is required")
	}
	if len(in.ReceiverIDs) == 0 {
		return nil, types.Validation("at least one receiver is required")
	}
	if in.MessageType == "" {
		in.MessageType = models.MessageText
	}
	if !in.MessageType.Valid() {
		return nil, types.Validation("unknown message type %q", in.MessageType)
	}
	if in.ProjectID != nil {
		if _, err := GetProject(db, *in.ProjectID); err != nil {
			return nil, err
		}
	}

	messages := make([]models.Message, 0, len(in.ReceiverIDs))
	for _, receiverID := range in.ReceiverIDs {
		messages = append(messages, models.Message{
			ProjectID:   in.ProjectID,
			SenderID:    senderID,
			ReceiverID:  receiverID,
			Body:        in.Body,
			MessageType: in.MessageType,
		})
	}

	if err := db.Create(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// ListMessages returns the principal's messages, newest first. with narrows
// to the conversation with one other user; projectID narrows to one project.
func ListMessages(db *gorm.DB, userID uint64, with, projectID *uint64) ([]models.Message, error) {
	q := db.Order("message_id DESC")
	if with != nil {
		q = q.Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, *with, *with, userID)
	} else {
		q = q.Where("sender_id = ? OR receiver_id = ?", userID, userID)
	}
	if projectID != nil {
		q = q.Where("project_id = ?", *projectID)
	}

	var messages []models.Message
	if err := q.Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkMessageRead flags a message read. Only its receiver may do so.
func MarkMessageRead(db *gorm.DB, id, userID uint64) (*models.Message, error) {
	var msg models.Message
	if err := db.First(&msg, "message_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("message %d not found", id)
		}
		return nil, err
	}
	if msg.ReceiverID != userID {
		return nil, types.PermissionDenied("message %d is not addressed to you", id)
	}
	if msg.IsRead {
		return &msg, nil
	}

	now := time.Now()
	if err := db.Model(&msg).Updates(map[string]interface{}{
		"is_read": true,
		"read_at": now,
	}).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

package repositories

import (
	"errors"
	"time"

	"github.com/tahsinn/campus-found/backend/internal/apperr"
	"github.com/tahsinn/campus-found/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MessageRepository defines the interface for message data operations
type MessageRepository interface {
	Append(msg *models.Message, preview string, recipientID uint) error
	GetByID(id uint) (*models.Message, error)
	ListByConversation(conversationID uint) ([]models.Message, error)
	Latest(conversationID uint) (*models.Message, error)
	UpdateBody(id uint, body string, editedAt time.Time) error
	Delete(id uint) error
	DeleteAllInConversation(conversationID uint) error
}

// PostgresMessageRepository implements MessageRepository for PostgreSQL
type PostgresMessageRepository struct {
	db *gorm.DB
}

// NewPostgresMessageRepository creates a new PostgresMessageRepository
func NewPostgresMessageRepository(db *gorm.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

// Append inserts the message and, in the same transaction, refreshes
// the conversation preview, resets the sender's unread counter and
// bumps the recipient's. The bump is a relative UPDATE at the store, not
// a fetch-then-write, so concurrent senders never lose an increment.
func (r *PostgresMessageRepository) Append(msg *models.Message, preview string, recipientID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Updates(map[string]interface{}{
				"last_message":    preview,
				"last_message_at": msg.CreatedAt,
				"updated_at":      time.Now(),
			}).Error; err != nil {
			return err
		}

		// Sending implicitly marks the sender's own side caught up.
		if err := tx.Model(&models.ConversationState{}).
			Where("conversation_id = ? AND user_id = ?", msg.ConversationID, msg.SenderID).
			Updates(map[string]interface{}{
				"unread_count": 0,
				"updated_at":   time.Now(),
			}).Error; err != nil {
			return err
		}

		res := tx.Model(&models.ConversationState{}).
			Where("conversation_id = ? AND user_id = ?", msg.ConversationID, recipientID).
			Updates(map[string]interface{}{
				"unread_count": gorm.Expr("unread_count + 1"),
				"updated_at":   time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// State row missing (derivation never ran for the peer yet).
			state := models.ConversationState{
				ConversationID: msg.ConversationID,
				UserID:         recipientID,
				UnreadCount:    1,
			}
			return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&state).Error
		}
		return nil
	})
}

// GetByID retrieves a message by ID
func (r *PostgresMessageRepository) GetByID(id uint) (*models.Message, error) {
	var msg models.Message
	if err := r.db.First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &msg, nil
}

// ListByConversation retrieves a conversation's messages in creation
// order, insertion order breaking timestamp ties.
func (r *PostgresMessageRepository) ListByConversation(conversationID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// Latest returns the newest message of a conversation, or nil when the
// conversation is empty.
func (r *PostgresMessageRepository) Latest(conversationID uint) (*models.Message, error) {
	var msg models.Message
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// UpdateBody rewrites a message body and stamps edited_at
func (r *PostgresMessageRepository) UpdateBody(id uint, body string, editedAt time.Time) error {
	return r.db.Model(&models.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"body":      body,
			"edited_at": editedAt,
		}).Error
}

// Delete removes a message
func (r *PostgresMessageRepository) Delete(id uint) error {
	return r.db.Delete(&models.Message{}, id).Error
}

// DeleteAllInConversation removes every message of a conversation
func (r *PostgresMessageRepository) DeleteAllInConversation(conversationID uint) error {
	return r.db.Where("conversation_id = ?", conversationID).Delete(&models.Message{}).Error
}

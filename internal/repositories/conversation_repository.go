package repositories

import (
	"errors"
	"time"

	"github.com/tahsinn/campus-found/backend/internal/apperr"
	"github.com/tahsinn/campus-found/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConversationRepository defines the interface for conversation and
// per-participant state operations.
type ConversationRepository interface {
	EnsureForClaim(conv *models.Conversation) error
	GetByID(id uint) (*models.Conversation, error)
	ListForUser(userID uint) ([]models.ConversationSummary, error)
	UpdatePreview(id uint, preview string, at *time.Time) error
	Delete(id uint) error
	SetUnread(conversationID, userID uint, count int) error
}

// PostgresConversationRepository implements ConversationRepository for PostgreSQL
type PostgresConversationRepository struct {
	db *gorm.DB
}

// NewPostgresConversationRepository creates a new PostgresConversationRepository
func NewPostgresConversationRepository(db *gorm.DB) *PostgresConversationRepository {
	return &PostgresConversationRepository{db: db}
}

// EnsureForClaim inserts the conversation if absent, keyed uniquely by
// claim_id, and makes sure a zero-unread state row exists for each
// participant. Re-entrant: concurrent derivation attempts ride the
// unique constraint with do-nothing conflict handling, and existing
// unread counters are never reset.
func (r *PostgresConversationRepository) EnsureForClaim(conv *models.Conversation) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "claim_id"}},
			DoNothing: true,
		}).Create(conv)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race or already derived; adopt the existing row.
			if err := tx.Where("claim_id = ?", conv.ClaimID).First(conv).Error; err != nil {
				return err
			}
		}

		for _, userID := range []uint{conv.ParticipantA, conv.ParticipantB} {
			state := models.ConversationState{
				ConversationID: conv.ID,
				UserID:         userID,
				UnreadCount:    0,
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&state).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID retrieves a conversation by ID
func (r *PostgresConversationRepository) GetByID(id uint) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.db.First(&conv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &conv, nil
}

// ListForUser retrieves the user's conversations annotated with that
// user's own unread count, most recent activity first.
func (r *PostgresConversationRepository) ListForUser(userID uint) ([]models.ConversationSummary, error) {
	var convs []models.Conversation
	err := r.db.Where("participant_a = ? OR participant_b = ?", userID, userID).
		Order("last_message_at DESC NULLS LAST").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}
	if len(convs) == 0 {
		return []models.ConversationSummary{}, nil
	}

	ids := make([]uint, len(convs))
	for i, c := range convs {
		ids[i] = c.ID
	}
	var states []models.ConversationState
	if err := r.db.Where("conversation_id IN ? AND user_id = ?", ids, userID).Find(&states).Error; err != nil {
		return nil, err
	}
	unread := make(map[uint]int, len(states))
	for _, s := range states {
		unread[s.ConversationID] = s.UnreadCount
	}

	summaries := make([]models.ConversationSummary, len(convs))
	for i, c := range convs {
		summaries[i] = models.ConversationSummary{
			Conversation: c,
			UnreadCount:  unread[c.ID],
		}
	}
	return summaries, nil
}

// UpdatePreview rewrites the conversation's last-message preview
func (r *PostgresConversationRepository) UpdatePreview(id uint, preview string, at *time.Time) error {
	return r.db.Model(&models.Conversation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_message":    preview,
			"last_message_at": at,
			"updated_at":      time.Now(),
		}).Error
}

// Delete removes the conversation; messages and state rows cascade with it
func (r *PostgresConversationRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("conversation_id = ?", id).Delete(&models.ConversationState{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Conversation{}, id).Error
	})
}

// SetUnread sets one participant's counter to an absolute value, used
// by mark-read (0) and mark-unread (1). Increments on send go through
// MessageRepository.Append as atomic deltas instead.
func (r *PostgresConversationRepository) SetUnread(conversationID, userID uint, count int) error {
	return r.db.Model(&models.ConversationState{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Updates(map[string]interface{}{
			"unread_count": count,
			"updated_at":   time.Now(),
		}).Error
}

package models

import "time"

// EmptyPreview is what a conversation shows before any message exists,
// and again after the last message is deleted or the thread is cleared.
const EmptyPreview = "No messages yet"

// Conversation is a two-party thread derived from an adjudicated claim,
// used to coordinate handover. Exactly one conversation exists per claim
// (unique index on claim_id); participants are the claimant and the
// listing owner, order-independent for lookup.
type Conversation struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	ClaimID       uint          `json:"claim_id" gorm:"uniqueIndex"`
	ListingID     uint          `json:"listing_id" gorm:"index"`
	ItemTitle     string        `json:"item_title"`
	ItemStatus    ListingStatus `json:"item_status" gorm:"size:20"`
	ParticipantA  uint          `json:"participant_a" gorm:"index"`
	ParticipantB  uint          `json:"participant_b" gorm:"index"`
	LastMessage   string        `json:"last_message"`
	LastMessageAt *time.Time    `json:"last_message_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// HasParticipant reports whether userID is one of the two parties.
func (c *Conversation) HasParticipant(userID uint) bool {
	return c.ParticipantA == userID || c.ParticipantB == userID
}

// OtherParticipant returns the peer of userID. Callers must check
// HasParticipant first.
func (c *Conversation) OtherParticipant(userID uint) uint {
	if c.ParticipantA == userID {
		return c.ParticipantB
	}
	return c.ParticipantA
}

// ConversationState tracks one participant's unread counter for one
// conversation. Incremented when the other participant sends, reset
// when the owner reads.
type ConversationState struct {
	ConversationID uint      `json:"conversation_id" gorm:"primaryKey;autoIncrement:false"`
	UserID         uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	UnreadCount    int       `json:"unread_count" gorm:"default:0"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ConversationSummary is a conversation annotated with the requesting
// participant's own unread count, never the peer's.
type ConversationSummary struct {
	Conversation
	UnreadCount int          `json:"unread_count"`
	Peer        *UserCompact `json:"peer,omitempty"`
}

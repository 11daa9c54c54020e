package models

import "time"

type NotificationType string

const (
	NotifClaimSubmitted  NotificationType = "claim_submitted"
	NotifClaimApproved   NotificationType = "claim_approved"
	NotifClaimRejected   NotificationType = "claim_rejected"
	NotifMessageReceived NotificationType = "message_received"
)

// Notification is a system-written record addressed to one user,
// created as a side effect of a claim transition or a received message.
// Only the addressed user may mark it read; it is never deleted by
// normal flow.
type Notification struct {
	ID               uint             `json:"id" gorm:"primaryKey"`
	UserID           uint             `json:"user_id" gorm:"index"`
	Type             NotificationType `json:"type" gorm:"size:30;index"`
	Title            string           `json:"title"`
	Message          string           `json:"message"`
	IsRead           bool             `json:"is_read" gorm:"default:false;index"`
	RelatedListingID *uint            `json:"related_listing_id,omitempty"`
	RelatedClaimID   *uint            `json:"related_claim_id,omitempty"`
	CreatedAt        time.Time        `json:"created_at" gorm:"index"`
}

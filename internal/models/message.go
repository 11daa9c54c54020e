package models

import "time"

type AttachmentKind string

const (
	AttachmentImage AttachmentKind = "image"
	AttachmentVideo AttachmentKind = "video"
)

type Attachment struct {
	ID       string         `json:"id"`
	Kind     AttachmentKind `json:"kind"`
	URL      string         `json:"url"`
	FileName string         `json:"fileName"`
	MimeType string         `json:"mimeType"`
	Size     int64          `json:"size"`
}

// Message belongs to a conversation. A message carries a body, at least
// one attachment, or both; editable and deletable only by its sender.
type Message struct {
	ID             uint         `json:"id" gorm:"primaryKey"`
	ConversationID uint         `json:"conversation_id" gorm:"index"`
	SenderID       uint         `json:"sender_id" gorm:"index"`
	Body           string       `json:"body"`
	Attachments    []Attachment `json:"attachments" gorm:"serializer:json"`
	EditedAt       *time.Time   `json:"edited_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at" gorm:"index"`
}

// MessagingAction is the single action-typed messaging payload. The
// action decides which of the remaining fields are meaningful.
type MessagingAction struct {
	Action         string       `json:"action" validate:"required,oneof=send edit_message delete_message mark_read mark_unread clear_conversation delete_conversation"`
	ConversationID uint         `json:"conversation_id,omitempty"`
	MessageID      uint         `json:"message_id,omitempty"`
	Body           string       `json:"body,omitempty"`
	Attachments    []Attachment `json:"attachments,omitempty"`
}

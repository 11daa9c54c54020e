package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tahsinn/campus-found/backend/internal/apperr"
	"github.com/tahsinn/campus-found/backend/internal/models"
	"github.com/tahsinn/campus-found/backend/internal/repositories"
	"github.com/tahsinn/campus-found/backend/internal/syncbus"
)

// MessagingService orchestrates conversation derivation, message
// exchange and unread-counter maintenance.
type MessagingService struct {
	conversations repositories.ConversationRepository
	messages      repositories.MessageRepository
	claims        repositories.ClaimRepository
	listings      repositories.ListingRepository
	users         repositories.UserRepository
	notifications repositories.NotificationRepository
	bus           *syncbus.Bus
}

// NewMessagingService creates a new MessagingService
func NewMessagingService(
	conversations repositories.ConversationRepository,
	messages repositories.MessageRepository,
	claims repositories.ClaimRepository,
	listings repositories.ListingRepository,
	users repositories.UserRepository,
	notifications repositories.NotificationRepository,
	bus *syncbus.Bus,
) *MessagingService {
	return &MessagingService{
		conversations: conversations,
		messages:      messages,
		claims:        claims,
		listings:      listings,
		users:         users,
		notifications: notifications,
		bus:           bus,
	}
}

// DeriveConversations lazily materializes a conversation for every
// claim the user participates in. It runs on every conversation-list
// read and must be safe to run redundantly: the unique claim_id
// constraint absorbs concurrent derivation, and existing unread
// counters are never touched.
func (s *MessagingService) DeriveConversations(ctx context.Context, userID uint) error {
	claims, err := s.claims.ListForParticipant(userID)
	if err != nil {
		return err
	}

	for _, claim := range claims {
		listing, err := s.listings.GetByID(claim.ListingID)
		if err != nil {
			continue
		}
		if listing.OwnerID == claim.ClaimantID {
			// Self-claim, never materialize a thread for it.
			continue
		}

		participants, err := s.users.GetUsersByIDs([]uint{claim.ClaimantID, listing.OwnerID})
		if err != nil {
			return err
		}
		if len(participants) < 2 {
			// One side is no longer a registered profile; skip silently.
			continue
		}

		conv := &models.Conversation{
			ClaimID:      claim.ID,
			ListingID:    listing.ID,
			ItemTitle:    listing.Title,
			ItemStatus:   listing.Status,
			ParticipantA: claim.ClaimantID,
			ParticipantB: listing.OwnerID,
			LastMessage:  models.EmptyPreview,
		}
		if err := s.conversations.EnsureForClaim(conv); err != nil {
			return err
		}
	}
	return nil
}

// ListConversations runs the deriver, then returns the actor's
// conversations annotated with the actor's own unread counts and the
// peer's public profile.
func (s *MessagingService) ListConversations(ctx context.Context, actor models.Actor) ([]models.ConversationSummary, error) {
	if err := s.DeriveConversations(ctx, actor.ID); err != nil {
		return nil, err
	}

	summaries, err := s.conversations.ListForUser(actor.ID)
	if err != nil {
		return nil, err
	}

	peerIDs := make([]uint, 0, len(summaries))
	for _, sum := range summaries {
		peerIDs = append(peerIDs, sum.OtherParticipant(actor.ID))
	}
	peers, err := s.users.GetUsersByIDs(peerIDs)
	if err != nil {
		log.Printf("messaging: expand peers: %v", err)
		peers = map[uint]models.User{}
	}
	for i := range summaries {
		if u, ok := peers[summaries[i].OtherParticipant(actor.ID)]; ok {
			compact := u.ToCompact()
			summaries[i].Peer = &compact
		}
	}
	return summaries, nil
}

// ListMessages returns a conversation's messages in creation order.
func (s *MessagingService) ListMessages(ctx context.Context, actor models.Actor, conversationID uint) ([]models.Message, error) {
	if _, err := s.participantConversation(conversationID, actor.ID); err != nil {
		return nil, err
	}
	return s.messages.ListByConversation(conversationID)
}

// Send appends a message to a conversation the actor participates in.
// The preview refresh, the sender's counter reset and the peer's
// counter bump commit atomically with the insert.
func (s *MessagingService) Send(ctx context.Context, actor models.Actor, input models.MessagingAction) (*models.Message, error) {
	conv, err := s.participantConversation(input.ConversationID, actor.ID)
	if err != nil {
		return nil, err
	}

	body := strings.TrimSpace(input.Body)
	if body == "" && len(input.Attachments) == 0 {
		return nil, fmt.Errorf("%w: message needs a body or at least one attachment", apperr.ErrInvalidInput)
	}

	msg := &models.Message{
		ConversationID: conv.ID,
		SenderID:       actor.ID,
		Body:           body,
		Attachments:    input.Attachments,
	}
	recipientID := conv.OtherParticipant(actor.ID)

	if err := s.messages.Append(msg, previewFor(msg), recipientID); err != nil {
		return nil, err
	}

	notif := &models.Notification{
		UserID:           recipientID,
		Type:             models.NotifMessageReceived,
		Title:            "New message",
		Message:          fmt.Sprintf("New message about %q", conv.ItemTitle),
		RelatedListingID: &conv.ListingID,
		RelatedClaimID:   &conv.ClaimID,
	}
	if err := s.notifications.Create(notif); err != nil {
		log.Printf("messaging: notify user %d: %v", recipientID, err)
	}

	s.bus.Publish(ctx, "message", msg.ID, models.ChangeCreated)
	s.bus.Publish(ctx, "conversation", conv.ID, models.ChangeUpdated)
	return msg, nil
}

// EditMessage rewrites a message body. Only the sender may edit, and
// the preview is recomputed from whatever is the latest message now,
// which may not be the edited one.
func (s *MessagingService) EditMessage(ctx context.Context, actor models.Actor, messageID uint, body string) (*models.Message, error) {
	msg, err := s.messages.GetByID(messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != actor.ID {
		return nil, fmt.Errorf("%w: only the sender may edit a message", apperr.ErrForbidden)
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: edited body must not be empty", apperr.ErrInvalidInput)
	}

	editedAt := time.Now()
	if err := s.messages.UpdateBody(messageID, body, editedAt); err != nil {
		return nil, err
	}
	msg.Body = body
	msg.EditedAt = &editedAt

	if err := s.refreshPreview(msg.ConversationID); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, "message", msg.ID, models.ChangeUpdated)
	s.bus.Publish(ctx, "conversation", msg.ConversationID, models.ChangeUpdated)
	return msg, nil
}

// DeleteMessage removes a message. Only the sender may delete.
func (s *MessagingService) DeleteMessage(ctx context.Context, actor models.Actor, messageID uint) error {
	msg, err := s.messages.GetByID(messageID)
	if err != nil {
		return err
	}
	if msg.SenderID != actor.ID {
		return fmt.Errorf("%w: only the sender may delete a message", apperr.ErrForbidden)
	}

	if err := s.messages.Delete(messageID); err != nil {
		return err
	}
	if err := s.refreshPreview(msg.ConversationID); err != nil {
		return err
	}

	s.bus.Publish(ctx, "message", messageID, models.ChangeDeleted)
	s.bus.Publish(ctx, "conversation", msg.ConversationID, models.ChangeUpdated)
	return nil
}

// MarkRead zeroes the actor's own unread counter. The peer's counter
// is never touched.
func (s *MessagingService) MarkRead(ctx context.Context, actor models.Actor, conversationID uint) error {
	return s.setOwnUnread(ctx, actor, conversationID, 0)
}

// MarkUnread flags the conversation for the actor again.
func (s *MessagingService) MarkUnread(ctx context.Context, actor models.Actor, conversationID uint) error {
	return s.setOwnUnread(ctx, actor, conversationID, 1)
}

// ClearConversation deletes every message of the conversation and
// resets the preview to the empty state.
func (s *MessagingService) ClearConversation(ctx context.Context, actor models.Actor, conversationID uint) error {
	conv, err := s.participantConversation(conversationID, actor.ID)
	if err != nil {
		return err
	}
	if err := s.messages.DeleteAllInConversation(conv.ID); err != nil {
		return err
	}
	if err := s.conversations.UpdatePreview(conv.ID, models.EmptyPreview, nil); err != nil {
		return err
	}
	s.bus.Publish(ctx, "conversation", conv.ID, models.ChangeUpdated)
	return nil
}

// DeleteConversation removes the conversation; its messages and state
// rows go with it.
func (s *MessagingService) DeleteConversation(ctx context.Context, actor models.Actor, conversationID uint) error {
	conv, err := s.participantConversation(conversationID, actor.ID)
	if err != nil {
		return err
	}
	if err := s.conversations.Delete(conv.ID); err != nil {
		return err
	}
	s.bus.Publish(ctx, "conversation", conv.ID, models.ChangeDeleted)
	return nil
}

func (s *MessagingService) setOwnUnread(ctx context.Context, actor models.Actor, conversationID uint, count int) error {
	conv, err := s.participantConversation(conversationID, actor.ID)
	if err != nil {
		return err
	}
	if err := s.conversations.SetUnread(conv.ID, actor.ID, count); err != nil {
		return err
	}
	s.bus.Publish(ctx, "conversation", conv.ID, models.ChangeUpdated)
	return nil
}

// participantConversation loads the conversation and verifies the user
// is one of its two parties. Strangers get NotFound rather than
// Forbidden so the conversation's existence is not leaked.
func (s *MessagingService) participantConversation(conversationID, userID uint) (*models.Conversation, error) {
	conv, err := s.conversations.GetByID(conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, apperr.ErrNotFound
	}
	return conv, nil
}

// refreshPreview recomputes the conversation preview from the current
// latest message, or resets to the empty state when none remain.
func (s *MessagingService) refreshPreview(conversationID uint) error {
	latest, err := s.messages.Latest(conversationID)
	if err != nil {
		return err
	}
	if latest == nil {
		return s.conversations.UpdatePreview(conversationID, models.EmptyPreview, nil)
	}
	at := latest.CreatedAt
	return s.conversations.UpdatePreview(conversationID, previewFor(latest), &at)
}

// previewFor derives the conversation list preview text for a message.
func previewFor(msg *models.Message) string {
	if body := strings.TrimSpace(msg.Body); body != "" {
		return body
	}
	if len(msg.Attachments) == 1 {
		return "Sent an attachment"
	}
	return fmt.Sprintf("Sent %d attachments", len(msg.Attachments))
}

package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/tahsinn/campus-found/backend/internal/models"
	"github.com/tahsinn/campus-found/backend/internal/repositories"
)

// Hand-written testify mocks for the repository interfaces, set up per
// test with expectation chains.

type MockClaimRepository struct {
	mock.Mock
}

func (m *MockClaimRepository) CreatePending(claim *models.Claim, notif *models.Notification) error {
	args := m.Called(claim, notif)
	return args.Error(0)
}

func (m *MockClaimRepository) GetByID(id uint) (*models.Claim, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Claim), args.Error(1)
}

func (m *MockClaimRepository) List(filter repositories.ClaimFilter) ([]models.Claim, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Claim), args.Error(1)
}

func (m *MockClaimRepository) ListForParticipant(userID uint) ([]models.Claim, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Claim), args.Error(1)
}

func (m *MockClaimRepository) Review(claim *models.Claim, resolveListing bool, notif *models.Notification) error {
	args := m.Called(claim, resolveListing, notif)
	return args.Error(0)
}

type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) GetByID(id uint) (*models.Listing, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingRepository) GetByIDs(ids []uint) (map[uint]models.Listing, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint]models.Listing), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUsersByIDs(ids []uint) (map[uint]models.User, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint]models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(notification *models.Notification) error {
	args := m.Called(notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListForUser(userID uint, page, limit int) ([]models.Notification, int64, error) {
	args := m.Called(userID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepository) UnreadCount(userID uint) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(notificationID, userID uint) error {
	args := m.Called(notificationID, userID)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllRead(userID uint) error {
	args := m.Called(userID)
	return args.Error(0)
}

type MockConversationRepository struct {
	mock.Mock
}

func (m *MockConversationRepository) EnsureForClaim(conv *models.Conversation) error {
	args := m.Called(conv)
	return args.Error(0)
}

func (m *MockConversationRepository) GetByID(id uint) (*models.Conversation, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *MockConversationRepository) ListForUser(userID uint) ([]models.ConversationSummary, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ConversationSummary), args.Error(1)
}

func (m *MockConversationRepository) UpdatePreview(id uint, preview string, at *time.Time) error {
	args := m.Called(id, preview, at)
	return args.Error(0)
}

func (m *MockConversationRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockConversationRepository) SetUnread(conversationID, userID uint, count int) error {
	args := m.Called(conversationID, userID, count)
	return args.Error(0)
}

type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Append(msg *models.Message, preview string, recipientID uint) error {
	args := m.Called(msg, preview, recipientID)
	return args.Error(0)
}

func (m *MockMessageRepository) GetByID(id uint) (*models.Message, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockMessageRepository) ListByConversation(conversationID uint) ([]models.Message, error) {
	args := m.Called(conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockMessageRepository) Latest(conversationID uint) (*models.Message, error) {
	args := m.Called(conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockMessageRepository) UpdateBody(id uint, body string, editedAt time.Time) error {
	args := m.Called(id, body, editedAt)
	return args.Error(0)
}

func (m *MockMessageRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockMessageRepository) DeleteAllInConversation(conversationID uint) error {
	args := m.Called(conversationID)
	return args.Error(0)
}

// MockPusher records push attempts.
type MockPusher struct {
	mock.Mock
}

func (m *MockPusher) Push(ctx context.Context, userID uint, title, body string) error {
	args := m.Called(ctx, userID, title, body)
	return args.Error(0)
}

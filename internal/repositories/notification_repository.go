package repositories

import (
	"github.com/tahsinn/campus-found/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification
// operations. Marking is idempotent: marking an already-read
// notification read again affects zero rows and is not an error.
type NotificationRepository interface {
	Create(notification *models.Notification) error
	ListForUser(userID uint, page, limit int) ([]models.Notification, int64, error)
	UnreadCount(userID uint) (int64, error)
	MarkRead(notificationID, userID uint) error
	MarkAllRead(userID uint) error
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

func (r *postgresNotificationRepository) ListForUser(userID uint, page, limit int) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	r.db.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&total)

	offset := (page - 1) * limit
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error

	return notifications, total, err
}

func (r *postgresNotificationRepository) UnreadCount(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).Where("user_id = ? AND is_read = false", userID).Count(&count).Error
	return count, err
}

// MarkRead is scoped to the addressed user; another user's notification
// is untouched and the call is a no-op.
func (r *postgresNotificationRepository) MarkRead(notificationID, userID uint) error {
	return r.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true).Error
}

func (r *postgresNotificationRepository) MarkAllRead(userID uint) error {
	return r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = false", userID).
		Update("is_read", true).Error
}

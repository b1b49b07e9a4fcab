package repositories

import "warbler/internal/models"

// MessageRepository defines the interface for message data access.
type MessageRepository interface {
	Create(message *models.Message) error
	GetByID(id uint) (*models.Message, error)
	Delete(id uint) error
	// ByUser lists a user's messages, newest first. limit <= 0 means no limit.
	ByUser(userID uint, limit int) ([]models.Message, error)
	// Timeline lists messages authored by userID or by the users userID follows.
	Timeline(userID uint, limit int) ([]models.Message, error)
	CountByUser(userID uint) (int64, error)
}

package repositories

import (
	"fmt"

	"warbler/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMMessageRepository is a GORM implementation of MessageRepository.
type GORMMessageRepository struct {
	db *gorm.DB
}

// NewGORMMessageRepository creates a new instance of GORMMessageRepository.
func NewGORMMessageRepository(db *gorm.DB) *GORMMessageRepository {
	return &GORMMessageRepository{
		db: db,
	}
}

// Create inserts a message. A UserID with no matching user fails with ErrConstraint.
func (r *GORMMessageRepository) Create(message *models.Message) error {
	if err := r.db.Omit(clause.Associations).Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", translate(err))
	}
	return nil
}

// GetByID retrieves a single message with its author.
func (r *GORMMessageRepository) GetByID(id uint) (*models.Message, error) {
	var message models.Message
	if err := r.db.Preload("User").First(&message, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get message by ID %d: %w", id, translate(err))
	}
	return &message, nil
}

// Delete deletes a message by its ID from the database.
func (r *GORMMessageRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Message{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete message %d: %w", id, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("message with ID %d not found for deletion: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GORMMessageRepository) ByUser(userID uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	tx := r.db.Where("user_id = ?", userID).
		Preload("User").
		Order("timestamp DESC").
		Order("id DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages of user %d: %w", userID, translate(err))
	}
	return messages, nil
}

func (r *GORMMessageRepository) Timeline(userID uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	following := r.db.Model(&models.Follow{}).
		Select("user_being_followed_id").
		Where("user_following_id = ?", userID)
	tx := r.db.Where("user_id = ? OR user_id IN (?)", userID, following).
		Preload("User").
		Order("timestamp DESC").
		Order("id DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to build timeline for user %d: %w", userID, translate(err))
	}
	return messages, nil
}

func (r *GORMMessageRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Message{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count messages of user %d: %w", userID, translate(err))
	}
	return count, nil
}

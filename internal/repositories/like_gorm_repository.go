package repositories

import (
	"fmt"

	"warbler/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMLikeRepository is a GORM implementation of LikeRepository.
type GORMLikeRepository struct {
	db *gorm.DB
}

// NewGORMLikeRepository creates a new instance of GORMLikeRepository.
func NewGORMLikeRepository(db *gorm.DB) *GORMLikeRepository {
	return &GORMLikeRepository{
		db: db,
	}
}

// Create inserts a like row. Liking the same pair twice is a no-op.
func (r *GORMLikeRepository) Create(userID, messageID uint) error {
	like := models.Like{UserID: userID, MessageID: messageID}
	err := r.db.Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&like).Error
	if err != nil {
		return fmt.Errorf("failed to like message %d: %w", messageID, translate(err))
	}
	return nil
}

func (r *GORMLikeRepository) Delete(userID, messageID uint) (bool, error) {
	res := r.db.Where("user_id = ? AND message_id = ?", userID, messageID).Delete(&models.Like{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to unlike message %d: %w", messageID, translate(res.Error))
	}
	return res.RowsAffected > 0, nil
}

func (r *GORMLikeRepository) Exists(userID, messageID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Like{}).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check like of message %d: %w", messageID, translate(err))
	}
	return count > 0, nil
}

func (r *GORMLikeRepository) LikedMessages(userID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Joins("JOIN likes ON likes.message_id = messages.id").
		Where("likes.user_id = ?", userID).
		Preload("User").
		Order("likes.id").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list likes of user %d: %w", userID, translate(err))
	}
	return messages, nil
}

func (r *GORMLikeRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Like{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count likes of user %d: %w", userID, translate(err))
	}
	return count, nil
}

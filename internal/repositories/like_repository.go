package repositories

import "warbler/internal/models"

// LikeRepository defines the interface for user/message likes.
type LikeRepository interface {
	// Create records the like. An existing like is left as is.
	Create(userID, messageID uint) error
	// Delete removes the like and reports whether one existed.
	Delete(userID, messageID uint) (bool, error)
	Exists(userID, messageID uint) (bool, error)
	// LikedMessages lists the messages liked by userID.
	LikedMessages(userID uint) ([]models.Message, error)
	CountByUser(userID uint) (int64, error)
}

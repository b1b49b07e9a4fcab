package repositories

import "warbler/internal/models"

// FollowRepository defines the interface for the follow graph.
type FollowRepository interface {
	Create(followerID, followedID uint) error
	Delete(followerID, followedID uint) error
	Exists(followerID, followedID uint) (bool, error)
	// Following lists the users userID follows.
	Following(userID uint) ([]models.User, error)
	// Followers lists the users following userID.
	Followers(userID uint) ([]models.User, error)
	CountFollowing(userID uint) (int64, error)
	CountFollowers(userID uint) (int64, error)
}

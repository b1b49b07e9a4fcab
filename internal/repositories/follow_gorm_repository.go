package repositories

import (
	"fmt"

	"warbler/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMFollowRepository is a GORM implementation of FollowRepository.
type GORMFollowRepository struct {
	db *gorm.DB
}

// NewGORMFollowRepository creates a new instance of GORMFollowRepository.
func NewGORMFollowRepository(db *gorm.DB) *GORMFollowRepository {
	return &GORMFollowRepository{
		db: db,
	}
}

// Create adds the edge followerID -> followedID. Adding an existing edge is a no-op.
func (r *GORMFollowRepository) Create(followerID, followedID uint) error {
	follow := models.Follow{UserBeingFollowedID: followedID, UserFollowingID: followerID}
	err := r.db.Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&follow).Error
	if err != nil {
		return fmt.Errorf("failed to follow user %d: %w", followedID, translate(err))
	}
	return nil
}

// Delete removes the edge followerID -> followedID, or returns ErrNotFound.
func (r *GORMFollowRepository) Delete(followerID, followedID uint) error {
	res := r.db.Where("user_following_id = ? AND user_being_followed_id = ?", followerID, followedID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return fmt.Errorf("failed to unfollow user %d: %w", followedID, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d does not follow user %d: %w", followerID, followedID, ErrNotFound)
	}
	return nil
}

func (r *GORMFollowRepository) Exists(followerID, followedID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).
		Where("user_following_id = ? AND user_being_followed_id = ?", followerID, followedID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check follow %d -> %d: %w", followerID, followedID, translate(err))
	}
	return count > 0, nil
}

func (r *GORMFollowRepository) Following(userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.Joins("JOIN follows ON follows.user_being_followed_id = users.id").
		Where("follows.user_following_id = ?", userID).
		Order("users.id").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users followed by %d: %w", userID, translate(err))
	}
	return users, nil
}

func (r *GORMFollowRepository) Followers(userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.Joins("JOIN follows ON follows.user_following_id = users.id").
		Where("follows.user_being_followed_id = ?", userID).
		Order("users.id").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list followers of %d: %w", userID, translate(err))
	}
	return users, nil
}

func (r *GORMFollowRepository) CountFollowing(userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Follow{}).Where("user_following_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users followed by %d: %w", userID, translate(err))
	}
	return count, nil
}

func (r *GORMFollowRepository) CountFollowers(userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Follow{}).Where("user_being_followed_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count followers of %d: %w", userID, translate(err))
	}
	return count, nil
}

package services

import (
	"context"
	"fmt"
	"time"

	"warbler/internal/cache"
	"warbler/internal/events"
	"warbler/internal/models"
	"warbler/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// ProfileMessageLimit caps the messages shown on a user's page.
const ProfileMessageLimit = 100

// Profile is everything shown on a user's page.
type Profile struct {
	User           models.User      `json:"user"`
	Messages       []models.Message `json:"messages"`
	MessageCount   int64            `json:"message_count"`
	FollowingCount int64            `json:"following_count"`
	FollowersCount int64            `json:"followers_count"`
	LikesCount     int64            `json:"likes_count"`
}

// ProfileInput is an edit of the current user's profile. Password must be the
// user's current password.
type ProfileInput struct {
	Username       string `json:"username" form:"username" validate:"required,max=30"`
	Email          string `json:"email" form:"email" validate:"required,email,max=255"`
	ImageURL       string `json:"image_url" form:"image_url" validate:"omitempty,max=2048"`
	HeaderImageURL string `json:"header_image_url" form:"header_image_url" validate:"omitempty,max=2048"`
	Bio            string `json:"bio" form:"bio" validate:"max=500"`
	Location       string `json:"location" form:"location" validate:"max=100"`
	Password       string `json:"password" form:"password" validate:"required"`
}

// UserService handles user listing, profiles and account management.
type UserService struct {
	uow       repositories.UnitOfWork
	cache     cache.Cache
	cacheTTL  time.Duration
	publisher events.Publisher
	validate  *validator.Validate
	log       *logrus.Entry
}

// NewUserService creates a new UserService. cache may be nil.
func NewUserService(uow repositories.UnitOfWork, c cache.Cache, cacheTTL time.Duration, publisher events.Publisher, log *logrus.Entry) *UserService {
	return &UserService{
		uow:       uow,
		cache:     c,
		cacheTTL:  cacheTTL,
		publisher: publisher,
		validate:  validator.New(),
		log:       log.WithField("service", "users"),
	}
}

func existsKey(userID uint) string {
	return fmt.Sprintf("user_exists:%d", userID)
}

// List returns every user, or those whose username contains query.
func (s *UserService) List(ctx context.Context, query string) ([]models.User, error) {
	var users []models.User
	err := s.uow.Do(ctx, "list users", func(repos repositories.Repositories) error {
		var err error
		users, err = repos.Users.Search(query)
		return err
	})
	return users, err
}

func (s *UserService) Get(ctx context.Context, userID uint) (*models.User, error) {
	var user *models.User
	err := s.uow.Do(ctx, "get user", func(repos repositories.Repositories) error {
		var err error
		user, err = repos.Users.GetByID(userID)
		return err
	})
	return user, err
}

// Profile loads a user with their latest messages and relationship counts.
func (s *UserService) Profile(ctx context.Context, userID uint) (*Profile, error) {
	profile := &Profile{}
	err := s.uow.Do(ctx, "user profile", func(repos repositories.Repositories) error {
		user, err := repos.Users.GetByID(userID)
		if err != nil {
			return err
		}
		profile.User = *user

		if profile.Messages, err = repos.Messages.ByUser(userID, ProfileMessageLimit); err != nil {
			return err
		}
		if profile.MessageCount, err = repos.Messages.CountByUser(userID); err != nil {
			return err
		}
		if profile.FollowingCount, err = repos.Follows.CountFollowing(userID); err != nil {
			return err
		}
		if profile.FollowersCount, err = repos.Follows.CountFollowers(userID); err != nil {
			return err
		}
		profile.LikesCount, err = repos.Likes.CountByUser(userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// Exists reports whether userID refers to a live account. Positive answers are
// cached for cacheTTL.
func (s *UserService) Exists(ctx context.Context, userID uint) (bool, error) {
	if s.cache != nil {
		value, err := s.cache.Get(ctx, existsKey(userID))
		if err != nil {
			s.log.WithError(err).Warn("cache lookup failed, falling back to database")
		} else if value != "" {
			return true, nil
		}
	}

	var exists bool
	err := s.uow.Do(ctx, "user exists", func(repos repositories.Repositories) error {
		var err error
		exists, err = repos.Users.Exists(userID)
		return err
	})
	if err != nil {
		return false, err
	}

	if exists && s.cache != nil {
		if err := s.cache.Set(ctx, existsKey(userID), "y", s.cacheTTL); err != nil {
			s.log.WithError(err).Warn("failed to cache user")
		}
	}
	return exists, nil
}

// UpdateProfile changes the profile of userID after re-checking their password.
// A wrong password fails with ErrUnauthorized and changes nothing.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*models.User, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	var user *models.User
	err := s.uow.Do(ctx, "update profile", func(repos repositories.Repositories) error {
		current, err := repos.Users.GetByID(userID)
		if err != nil {
			return err
		}
		if !checkPassword(current.Password, in.Password) {
			return ErrUnauthorized
		}

		current.Username = in.Username
		current.Email = in.Email
		current.ImageURL = in.ImageURL
		if current.ImageURL == "" {
			current.ImageURL = models.DefaultImageURL
		}
		current.HeaderImageURL = in.HeaderImageURL
		if current.HeaderImageURL == "" {
			current.HeaderImageURL = models.DefaultHeaderImageURL
		}
		current.Bio = in.Bio
		current.Location = in.Location
		if err := repos.Users.Update(current); err != nil {
			return err
		}
		user = current
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update profile of user %d: %w", userID, err)
	}
	return user, nil
}

// Delete removes the account and everything it owns.
func (s *UserService) Delete(ctx context.Context, userID uint) error {
	err := s.uow.Do(ctx, "delete user", func(repos repositories.Repositories) error {
		return repos.Users.Delete(userID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", userID, err)
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, existsKey(userID)); err != nil {
			s.log.WithError(err).Warn("failed to evict deleted user from cache")
		}
	}
	s.log.WithField("user_id", userID).Info("user deleted")
	publish(s.publisher, s.log, events.New(events.UserDeleted, userID, 0))
	return nil
}

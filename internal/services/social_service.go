package services

import (
	"context"
	"errors"
	"fmt"

	"warbler/internal/events"
	"warbler/internal/models"
	"warbler/internal/monitoring"
	"warbler/internal/repositories"

	"github.com/sirupsen/logrus"
)

// Connections is one side of a user's follow graph.
type Connections struct {
	User  models.User   `json:"user"`
	Users []models.User `json:"users"`
	Count int           `json:"count"`
}

// SocialService manages follow edges between users.
type SocialService struct {
	uow       repositories.UnitOfWork
	publisher events.Publisher
	log       *logrus.Entry
}

func NewSocialService(uow repositories.UnitOfWork, publisher events.Publisher, log *logrus.Entry) *SocialService {
	return &SocialService{
		uow:       uow,
		publisher: publisher,
		log:       log.WithField("service", "social"),
	}
}

// IsFollowing reports whether userID follows otherID.
func (s *SocialService) IsFollowing(ctx context.Context, userID, otherID uint) (bool, error) {
	var following bool
	err := s.uow.Do(ctx, "is following", func(repos repositories.Repositories) error {
		var err error
		following, err = repos.Follows.Exists(userID, otherID)
		return err
	})
	return following, err
}

// IsFollowedBy reports whether otherID follows userID.
func (s *SocialService) IsFollowedBy(ctx context.Context, userID, otherID uint) (bool, error) {
	return s.IsFollowing(ctx, otherID, userID)
}

// Follow adds the edge followerID -> followedID. Following someone already
// followed is a no-op.
func (s *SocialService) Follow(ctx context.Context, followerID, followedID uint) error {
	if followerID == followedID {
		return ErrSelfFollow
	}

	err := s.uow.Do(ctx, "follow", func(repos repositories.Repositories) error {
		if _, err := repos.Users.GetByID(followedID); err != nil {
			return err
		}
		return repos.Follows.Create(followerID, followedID)
	})
	if errors.Is(err, repositories.ErrConstraint) {
		// the follower row vanished between the gate and the insert
		return ErrUnauthorized
	}
	if err != nil {
		return fmt.Errorf("failed to follow user %d: %w", followedID, err)
	}

	monitoring.FollowChanges.WithLabelValues("follow").Inc()
	publish(s.publisher, s.log, events.New(events.UserFollowed, followerID, followedID))
	return nil
}

// Unfollow removes the edge followerID -> followedID. A missing user or a
// missing edge fails with ErrNotFound.
func (s *SocialService) Unfollow(ctx context.Context, followerID, followedID uint) error {
	err := s.uow.Do(ctx, "unfollow", func(repos repositories.Repositories) error {
		if _, err := repos.Users.GetByID(followedID); err != nil {
			return err
		}
		return repos.Follows.Delete(followerID, followedID)
	})
	if err != nil {
		return fmt.Errorf("failed to unfollow user %d: %w", followedID, err)
	}

	monitoring.FollowChanges.WithLabelValues("unfollow").Inc()
	publish(s.publisher, s.log, events.New(events.UserUnfollowed, followerID, followedID))
	return nil
}

// Following lists the users userID follows.
func (s *SocialService) Following(ctx context.Context, userID uint) (*Connections, error) {
	return s.connections(ctx, "following", userID, func(repos repositories.Repositories) ([]models.User, error) {
		return repos.Follows.Following(userID)
	})
}

// Followers lists the users following userID.
func (s *SocialService) Followers(ctx context.Context, userID uint) (*Connections, error) {
	return s.connections(ctx, "followers", userID, func(repos repositories.Repositories) ([]models.User, error) {
		return repos.Follows.Followers(userID)
	})
}

func (s *SocialService) connections(ctx context.Context, reason string, userID uint, list func(repositories.Repositories) ([]models.User, error)) (*Connections, error) {
	result := &Connections{}
	err := s.uow.Do(ctx, reason, func(repos repositories.Repositories) error {
		user, err := repos.Users.GetByID(userID)
		if err != nil {
			return err
		}
		result.User = *user
		result.Users, err = list(repos)
		return err
	})
	if err != nil {
		return nil, err
	}
	result.Count = len(result.Users)
	return result, nil
}

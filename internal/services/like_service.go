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

// LikedMessages is the list of messages one user liked.
type LikedMessages struct {
	User     models.User      `json:"user"`
	Messages []models.Message `json:"messages"`
	Count    int              `json:"count"`
}

// LikeService manages likes between users and messages.
type LikeService struct {
	uow       repositories.UnitOfWork
	publisher events.Publisher
	log       *logrus.Entry
}

func NewLikeService(uow repositories.UnitOfWork, publisher events.Publisher, log *logrus.Entry) *LikeService {
	return &LikeService{
		uow:       uow,
		publisher: publisher,
		log:       log.WithField("service", "likes"),
	}
}

// Toggle likes messageID for userID, or removes the like if there already is
// one. It returns whether the message is liked afterwards. Users cannot like
// their own messages.
func (s *LikeService) Toggle(ctx context.Context, userID, messageID uint) (bool, error) {
	var liked bool
	err := s.uow.Do(ctx, "toggle like", func(repos repositories.Repositories) error {
		message, err := repos.Messages.GetByID(messageID)
		if err != nil {
			return err
		}
		if message.UserID == userID {
			return ErrForbidden
		}

		removed, err := repos.Likes.Delete(userID, messageID)
		if err != nil {
			return err
		}
		if removed {
			return nil
		}
		liked = true
		// a concurrent first like of the same pair may have won the insert
		if err := repos.Likes.Create(userID, messageID); err != nil && !errors.Is(err, repositories.ErrDuplicate) {
			return err
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle like on message %d: %w", messageID, err)
	}

	eventType, action := events.MessageUnliked, "unlike"
	if liked {
		eventType, action = events.MessageLiked, "like"
	}
	monitoring.LikeToggles.WithLabelValues(action).Inc()
	publish(s.publisher, s.log, events.New(eventType, userID, messageID))
	return liked, nil
}

// Likes lists the messages liked by userID.
func (s *LikeService) Likes(ctx context.Context, userID uint) (*LikedMessages, error) {
	result := &LikedMessages{}
	err := s.uow.Do(ctx, "liked messages", func(repos repositories.Repositories) error {
		user, err := repos.Users.GetByID(userID)
		if err != nil {
			return err
		}
		result.User = *user
		result.Messages, err = repos.Likes.LikedMessages(userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	result.Count = len(result.Messages)
	return result, nil
}

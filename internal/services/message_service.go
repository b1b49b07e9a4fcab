package services

import (
	"context"
	"errors"
	"fmt"

	"warbler/internal/events"
	"warbler/internal/models"
	"warbler/internal/monitoring"
	"warbler/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// TimelineLimit caps the messages on the home page.
const TimelineLimit = 100

// MessageInput is the body of a new message.
type MessageInput struct {
	Text string `json:"text" form:"text" validate:"required,max=140"`
}

// MessageService handles posting, reading and deleting messages.
type MessageService struct {
	uow       repositories.UnitOfWork
	publisher events.Publisher
	validate  *validator.Validate
	log       *logrus.Entry
}

func NewMessageService(uow repositories.UnitOfWork, publisher events.Publisher, log *logrus.Entry) *MessageService {
	return &MessageService{
		uow:       uow,
		publisher: publisher,
		validate:  validator.New(),
		log:       log.WithField("service", "messages"),
	}
}

// Create posts a message owned by userID.
func (s *MessageService) Create(ctx context.Context, userID uint, in MessageInput) (*models.Message, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	message := &models.Message{Text: in.Text, UserID: userID}
	err := s.uow.Do(ctx, "create message", func(repos repositories.Repositories) error {
		return repos.Messages.Create(message)
	})
	if errors.Is(err, repositories.ErrConstraint) {
		// the owner no longer exists
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	monitoring.MessagesPosted.Inc()
	s.log.WithFields(logrus.Fields{"user_id": userID, "message_id": message.ID}).Info("message posted")
	publish(s.publisher, s.log, events.New(events.MessageCreated, userID, message.ID))
	return message, nil
}

// Get returns a message with its author.
func (s *MessageService) Get(ctx context.Context, messageID uint) (*models.Message, error) {
	var message *models.Message
	err := s.uow.Do(ctx, "get message", func(repos repositories.Repositories) error {
		var err error
		message, err = repos.Messages.GetByID(messageID)
		return err
	})
	return message, err
}

// Delete removes messageID on behalf of userID. Only the author may delete a
// message; anyone else gets ErrUnauthorized and nothing changes, whether or not
// the message exists.
func (s *MessageService) Delete(ctx context.Context, userID, messageID uint) error {
	if userID == 0 {
		return ErrUnauthorized
	}

	err := s.uow.Do(ctx, "delete message", func(repos repositories.Repositories) error {
		message, err := repos.Messages.GetByID(messageID)
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUnauthorized
		}
		if err != nil {
			return err
		}
		if message.UserID != userID {
			return ErrUnauthorized
		}
		return repos.Messages.Delete(messageID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete message %d: %w", messageID, err)
	}

	monitoring.MessagesDeleted.Inc()
	publish(s.publisher, s.log, events.New(events.MessageDeleted, userID, messageID))
	return nil
}

// ByUser lists the messages authored by userID, newest first.
func (s *MessageService) ByUser(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := s.uow.Do(ctx, "messages by user", func(repos repositories.Repositories) error {
		var err error
		messages, err = repos.Messages.ByUser(userID, limit)
		return err
	})
	return messages, err
}

// Timeline lists the messages of userID and of everyone they follow, newest first.
func (s *MessageService) Timeline(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := s.uow.Do(ctx, "timeline", func(repos repositories.Repositories) error {
		var err error
		messages, err = repos.Messages.Timeline(userID, limit)
		return err
	})
	return messages, err
}

package services

import (
	"context"
	"errors"
	"fmt"

	"warbler/internal/events"
	"warbler/internal/models"
	"warbler/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// SignupInput is the data needed to open an account.
type SignupInput struct {
	Username string `json:"username" form:"username" validate:"required,max=30"`
	Email    string `json:"email" form:"email" validate:"required,email,max=255"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
	ImageURL string `json:"image_url" form:"image_url" validate:"omitempty,max=2048"`
}

// AuthService handles signup and credential checks.
type AuthService struct {
	uow       repositories.UnitOfWork
	publisher events.Publisher
	validate  *validator.Validate
	hashCost  int
	log       *logrus.Entry
}

// NewAuthService creates a new AuthService. hashCost is the bcrypt cost used for
// new passwords.
func NewAuthService(uow repositories.UnitOfWork, publisher events.Publisher, hashCost int, log *logrus.Entry) *AuthService {
	return &AuthService{
		uow:       uow,
		publisher: publisher,
		validate:  validator.New(),
		hashCost:  hashCost,
		log:       log.WithField("service", "auth"),
	}
}

// Signup hashes the password and creates the user. Uniqueness of username and
// email is left to the database: a taken one fails with ErrDuplicate.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashedPassword),
		ImageURL: in.ImageURL,
	}
	err = s.uow.Do(ctx, "signup", func(repos repositories.Repositories) error {
		return repos.Users.Create(user)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.log.WithField("user_id", user.ID).Info("user signed up")
	publish(s.publisher, s.log, events.New(events.UserSignedUp, user.ID, 0))
	return user, nil
}

// Authenticate returns the user when password matches. An unknown username and a
// wrong password both yield nil, nil so callers cannot tell them apart.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user *models.User
	err := s.uow.Do(ctx, "authenticate", func(repos repositories.Repositories) error {
		found, err := repos.Users.GetByUsername(username)
		if err != nil {
			return err
		}
		user = found
		return nil
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate %s: %w", username, err)
	}

	if !checkPassword(user.Password, password) {
		return nil, nil
	}
	return user, nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

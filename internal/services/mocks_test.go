package services_test

import (
	"context"

	"warbler/internal/events"
	"warbler/internal/models"
	"warbler/internal/repositories"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Search(query string) ([]models.User, error) {
	args := m.Called(query)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) Exists(id uint) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

// MockMessageRepository is a mock implementation of repositories.MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(message *models.Message) error {
	args := m.Called(message)
	return args.Error(0)
}

func (m *MockMessageRepository) GetByID(id uint) (*models.Message, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockMessageRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockMessageRepository) ByUser(userID uint, limit int) ([]models.Message, error) {
	args := m.Called(userID, limit)
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockMessageRepository) Timeline(userID uint, limit int) ([]models.Message, error) {
	args := m.Called(userID, limit)
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockMessageRepository) CountByUser(userID uint) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockFollowRepository is a mock implementation of repositories.FollowRepository
type MockFollowRepository struct {
	mock.Mock
}

func (m *MockFollowRepository) Create(followerID, followedID uint) error {
	args := m.Called(followerID, followedID)
	return args.Error(0)
}

func (m *MockFollowRepository) Delete(followerID, followedID uint) error {
	args := m.Called(followerID, followedID)
	return args.Error(0)
}

func (m *MockFollowRepository) Exists(followerID, followedID uint) (bool, error) {
	args := m.Called(followerID, followedID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) Following(userID uint) ([]models.User, error) {
	args := m.Called(userID)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockFollowRepository) Followers(userID uint) ([]models.User, error) {
	args := m.Called(userID)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockFollowRepository) CountFollowing(userID uint) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFollowRepository) CountFollowers(userID uint) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockLikeRepository is a mock implementation of repositories.LikeRepository
type MockLikeRepository struct {
	mock.Mock
}

func (m *MockLikeRepository) Create(userID, messageID uint) error {
	args := m.Called(userID, messageID)
	return args.Error(0)
}

func (m *MockLikeRepository) Delete(userID, messageID uint) (bool, error) {
	args := m.Called(userID, messageID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLikeRepository) Exists(userID, messageID uint) (bool, error) {
	args := m.Called(userID, messageID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLikeRepository) LikedMessages(userID uint) ([]models.Message, error) {
	args := m.Called(userID)
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockLikeRepository) CountByUser(userID uint) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockPublisher is a mock implementation of events.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// eventOfType matches an event by its type.
func eventOfType(eventType string) interface{} {
	return mock.MatchedBy(func(e events.Event) bool { return e.Type == eventType })
}

// fakeUnitOfWork runs fn directly against the mocks.
type fakeUnitOfWork struct {
	users    *MockUserRepository
	messages *MockMessageRepository
	follows  *MockFollowRepository
	likes    *MockLikeRepository
}

func newFakeUnitOfWork() *fakeUnitOfWork {
	return &fakeUnitOfWork{
		users:    new(MockUserRepository),
		messages: new(MockMessageRepository),
		follows:  new(MockFollowRepository),
		likes:    new(MockLikeRepository),
	}
}

func (u *fakeUnitOfWork) Do(_ context.Context, _ string, fn func(repos repositories.Repositories) error) error {
	return fn(repositories.Repositories{
		Users:    u.users,
		Messages: u.messages,
		Follows:  u.follows,
		Likes:    u.likes,
	})
}

var _ repositories.UnitOfWork = (*fakeUnitOfWork)(nil)

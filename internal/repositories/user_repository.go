package repositories

import "warbler/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	Update(user *models.User) error
	Delete(id uint) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	// Search lists users whose username contains query. An empty query lists everyone.
	Search(query string) ([]models.User, error)
	Exists(id uint) (bool, error)
}

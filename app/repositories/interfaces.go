package repositories

import "feedboard/app/models"

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id int) (*models.Post, error)
	// List returns posts most-recent-first.
	List(limit, offset int) ([]*models.Post, error)
	Count() (int, error)
	Update(post *models.Post) error
	Delete(id int) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
}

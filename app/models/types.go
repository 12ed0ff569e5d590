package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Post represents a single content item owned by exactly one user.
type Post struct {
	ID        int       `json:"id" validate:"gte=0"`
	Title     string    `json:"title" validate:"required,min=5"`
	Content   string    `json:"content" validate:"required,min=6"`
	ImageURL  string    `json:"imageUrl"`
	Creator   int       `json:"creator" validate:"gte=0"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// User represents an account that owns an ordered list of post references.
// Password holds the bcrypt hash, never the plaintext.
type User struct {
	ID       int    `json:"id"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password,omitempty" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Status   string `json:"status"`
	Posts    []int  `json:"posts"`
}

package models

import "errors"

// DefaultStatus is assigned to freshly signed-up users.
const DefaultStatus = "I am new!"

// Validate checks if the user meets all validation requirements
func (u *User) Validate() error {
	return validate.Struct(u)
}

// BeforeCreate sets up any necessary fields before creation
func (u *User) BeforeCreate() {
	if u.Status == "" {
		u.Status = DefaultStatus
	}
}

// AddPost appends a post reference to the user's post list
func (u *User) AddPost(postID int) {
	u.Posts = append(u.Posts, postID)
}

// RemovePost removes a post reference from the user's post list
func (u *User) RemovePost(postID int) error {
	for i, id := range u.Posts {
		if id == postID {
			u.Posts = append(u.Posts[:i], u.Posts[i+1:]...)
			return nil
		}
	}
	return errors.New("post reference not found")
}

// Sanitized returns a copy safe to serialize in responses
func (u *User) Sanitized() User {
	out := *u
	out.Password = ""
	return out
}

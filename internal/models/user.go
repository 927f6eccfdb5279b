package models

import (
	"time"

	"github.com/google/uuid"
)

// User is someone who signed in through GitHub OAuth
type User struct {
	ID             uuid.UUID `json:"id"`
	GitHubID       int64     `json:"githubId"`
	Name           string    `json:"name"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	ProfilePicture string    `json:"profilePicture"`
	CreatedAt      time.Time `json:"createdAt"`
	LastLoginAt    time.Time `json:"lastLoginAt"`
}

// NewUser creates a new User with a generated UUID
func NewUser(githubID int64, username string) *User {
	now := time.Now()
	return &User{
		ID:          uuid.New(),
		GitHubID:    githubID,
		Username:    username,
		CreatedAt:   now,
		LastLoginAt: now,
	}
}

package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alimgiray/orgscope/internal/models"
	"github.com/alimgiray/orgscope/internal/repositories"
)

type UserService struct {
	userRepo *repositories.UserRepository
}

func NewUserService(userRepo *repositories.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// UpsertGitHubUser creates the user on first login and refreshes the profile afterwards
func (s *UserService) UpsertGitHubUser(ghUser *GitHubUser) (*models.User, error) {
	existing, err := s.userRepo.GetByGitHubID(ghUser.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if existing == nil {
		user := models.NewUser(ghUser.ID, ghUser.Login)
		user.Name = ghUser.Name
		user.Email = ghUser.Email
		user.ProfilePicture = ghUser.AvatarURL
		if err := s.userRepo.Create(user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return user, nil
	}

	existing.Username = ghUser.Login
	existing.Name = ghUser.Name
	existing.ProfilePicture = ghUser.AvatarURL
	if ghUser.Email != "" {
		existing.Email = ghUser.Email
	}
	existing.LastLoginAt = time.Now()
	if err := s.userRepo.Update(existing); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return existing, nil
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFoundError("user", id)
	}
	return user, err
}

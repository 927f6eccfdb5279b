package repositories

import (
	"database/sql"

	"github.com/alimgiray/orgscope/internal/models"
	"github.com/google/uuid"
)

const userColumns = `id, github_id, name, username, email, profile_picture, created_at, last_login_at`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// Create creates a new user
func (r *UserRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		user.ID.String(),
		user.GitHubID,
		user.Name,
		user.Username,
		user.Email,
		user.ProfilePicture,
		user.CreatedAt,
		user.LastLoginAt,
	)
	return err
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(r.db.QueryRow(query, id))
}

// GetByGitHubID retrieves a user by GitHub account ID
func (r *UserRepository) GetByGitHubID(githubID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE github_id = ?`
	return scanUser(r.db.QueryRow(query, githubID))
}

// Update updates a user
func (r *UserRepository) Update(user *models.User) error {
	query := `
		UPDATE users
		SET name = ?, username = ?, email = ?, profile_picture = ?, last_login_at = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query,
		user.Name,
		user.Username,
		user.Email,
		user.ProfilePicture,
		user.LastLoginAt,
		user.ID.String(),
	)
	return err
}

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var userID string
	err := row.Scan(
		&userID,
		&user.GitHubID,
		&user.Name,
		&user.Username,
		&user.Email,
		&user.ProfilePicture,
		&user.CreatedAt,
		&user.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}

	user.ID, err = uuid.Parse(userID)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

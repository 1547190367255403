// Package store provides database access methods for all application
// entities. Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/models"
)

const userColumns = `id, username, email, hash_pass, role, city_id, profile_pic, totp_enabled, totp_secret, created_at, updated_at`

// UserStore handles all user-related database operations.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
		&u.CityID, &u.ProfilePic, &u.TOTPEnabled, &u.TOTPSecret,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// FindByID retrieves a user by id. Returns nil if not found.
func (s *UserStore) FindByID(id int64) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// FindByUsername retrieves a user by username. Returns nil if not found.
func (s *UserStore) FindByUsername(username string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username,
	))
	if err != nil {
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return u, nil
}

// FindByEmail retrieves a user by email. Returns nil if not found.
func (s *UserStore) FindByEmail(email string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email,
	))
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// Create inserts a new user with a bcrypt-hashed password.
func (s *UserStore) Create(username, email, password string, role models.Role, cityID *int64) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{}
	err = s.db.QueryRow(`
		INSERT INTO users (username, email, hash_pass, role, city_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns+`
	`, username, email, string(hash), role, cityID).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
		&u.CityID, &u.ProfilePic, &u.TOTPEnabled, &u.TOTPSecret,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func (s *UserStore) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// UpdateUsername changes a user's username.
func (s *UserStore) UpdateUsername(userID int64, username string) error {
	_, err := s.db.Exec(`
		UPDATE users SET username = $1, updated_at = NOW() WHERE id = $2
	`, username, userID)
	if err != nil {
		return fmt.Errorf("update username: %w", err)
	}
	return nil
}

// UpdateEmail changes a user's email address.
func (s *UserStore) UpdateEmail(userID int64, email string) error {
	_, err := s.db.Exec(`
		UPDATE users SET email = $1, updated_at = NOW() WHERE id = $2
	`, email, userID)
	if err != nil {
		return fmt.Errorf("update email: %w", err)
	}
	return nil
}

// UpdatePassword re-hashes and stores a new password for the user.
func (s *UserStore) UpdatePassword(userID int64, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = s.db.Exec(`
		UPDATE users SET hash_pass = $1, updated_at = NOW() WHERE id = $2
	`, string(hash), userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// UpdateCity changes the user's home city reference. A nil cityID clears it.
func (s *UserStore) UpdateCity(userID int64, cityID *int64) error {
	_, err := s.db.Exec(`
		UPDATE users SET city_id = $1, updated_at = NOW() WHERE id = $2
	`, cityID, userID)
	if err != nil {
		return fmt.Errorf("update city: %w", err)
	}
	return nil
}

// UpdateProfilePic stores the filename of the user's profile picture.
func (s *UserStore) UpdateProfilePic(userID int64, name string) error {
	_, err := s.db.Exec(`
		UPDATE users SET profile_pic = $1, updated_at = NOW() WHERE id = $2
	`, name, userID)
	if err != nil {
		return fmt.Errorf("update profile pic: %w", err)
	}
	return nil
}

// EnableTOTP stores the secret and raises the 2FA flag in a single
// statement, so the two can never be observed apart.
func (s *UserStore) EnableTOTP(userID int64, secret string) error {
	_, err := s.db.Exec(`
		UPDATE users SET totp_secret = $1, totp_enabled = TRUE, updated_at = NOW() WHERE id = $2
	`, secret, userID)
	if err != nil {
		return fmt.Errorf("enable totp: %w", err)
	}
	return nil
}

// DisableTOTP clears the secret and lowers the 2FA flag together.
func (s *UserStore) DisableTOTP(userID int64) error {
	_, err := s.db.Exec(`
		UPDATE users SET totp_secret = NULL, totp_enabled = FALSE, updated_at = NOW() WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("disable totp: %w", err)
	}
	return nil
}

// Delete removes a user by id.
func (s *UserStore) Delete(userID int64) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

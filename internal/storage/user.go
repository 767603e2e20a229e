package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"userorg-backend/internal/models"
)

// FindUserByEmail looks a user up by normalized email. A missing user is
// (nil, nil), not an error.
func (s *Storage) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT user_id, first_name, last_name, email, password_hash, phone, created_at
		FROM users
		WHERE email = $1
	`

	var user models.User
	if err := s.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

// GetUser fetches a user by id, returning ErrUserNotFound when absent.
func (s *Storage) GetUser(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT user_id, first_name, last_name, email, password_hash, phone, created_at
		FROM users
		WHERE user_id = $1
	`

	var user models.User
	if err := s.db.GetContext(ctx, &user, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

// CreateUserWithOrganisation provisions a new user, their default
// organisation, and the membership link as one transaction. Either all
// three rows land or none do. A duplicate email surfaces as ErrEmailTaken
// regardless of which statement the unique constraint trips on.
func (s *Storage) CreateUserWithOrganisation(ctx context.Context, user *models.User, org *models.Organisation) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (user_id, first_name, last_name, email, password_hash, phone)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.UserID, user.FirstName, user.LastName, user.Email, user.PasswordHash, user.Phone)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO organisations (org_id, name, description)
		VALUES ($1, $2, $3)
	`, org.OrgID, org.Name, org.Description)
	if err != nil {
		return fmt.Errorf("insert organisation: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_organisations (user_id, org_id)
		VALUES ($1, $2)
	`, user.UserID, org.OrgID)
	if err != nil {
		return fmt.Errorf("insert membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

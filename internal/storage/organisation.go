package storage

import (
	"context"
	"database/sql"
	"errors"

	"userorg-backend/internal/models"
)

// GetOrganisationsForUser lists the organisations the user belongs to,
// oldest first.
func (s *Storage) GetOrganisationsForUser(ctx context.Context, userID string) ([]models.Organisation, error) {
	query := `
		SELECT o.org_id, o.name, o.description, o.created_at
		FROM organisations o
		JOIN user_organisations uo ON uo.org_id = o.org_id
		WHERE uo.user_id = $1
		ORDER BY o.created_at
	`

	orgs := make([]models.Organisation, 0)
	if err := s.db.SelectContext(ctx, &orgs, query, userID); err != nil {
		return nil, err
	}
	return orgs, nil
}

// GetOrganisation fetches one organisation, returning ErrOrgNotFound when
// absent.
func (s *Storage) GetOrganisation(ctx context.Context, orgID string) (*models.Organisation, error) {
	query := `
		SELECT org_id, name, description, created_at
		FROM organisations
		WHERE org_id = $1
	`

	var org models.Organisation
	if err := s.db.GetContext(ctx, &org, query, orgID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrgNotFound
		}
		return nil, err
	}

	return &org, nil
}

// CreateOrganisation inserts an organisation and links its creator in one
// transaction.
func (s *Storage) CreateOrganisation(ctx context.Context, org *models.Organisation, creatorID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO organisations (org_id, name, description)
		VALUES ($1, $2, $3)
	`, org.OrgID, org.Name, org.Description)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_organisations (user_id, org_id)
		VALUES ($1, $2)
	`, creatorID, org.OrgID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// IsMember reports whether the user belongs to the organisation.
func (s *Storage) IsMember(ctx context.Context, userID, orgID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM user_organisations WHERE user_id = $1 AND org_id = $2
		)
	`

	var member bool
	if err := s.db.GetContext(ctx, &member, query, userID, orgID); err != nil {
		return false, err
	}
	return member, nil
}

// AddMember links a user to an organisation. Re-adding an existing member
// is a no-op.
func (s *Storage) AddMember(ctx context.Context, userID, orgID string) error {
	if _, err := s.GetOrganisation(ctx, orgID); err != nil {
		return err
	}
	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_organisations (user_id, org_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, org_id) DO NOTHING
	`, userID, orgID)
	return err
}

// GetUsersInOrganisation lists the members of an organisation.
func (s *Storage) GetUsersInOrganisation(ctx context.Context, orgID string) ([]models.User, error) {
	if _, err := s.GetOrganisation(ctx, orgID); err != nil {
		return nil, err
	}

	query := `
		SELECT u.user_id, u.first_name, u.last_name, u.email, u.password_hash, u.phone, u.created_at
		FROM users u
		JOIN user_organisations uo ON uo.user_id = u.user_id
		WHERE uo.org_id = $1
		ORDER BY u.created_at
	`

	users := make([]models.User, 0)
	if err := s.db.SelectContext(ctx, &users, query, orgID); err != nil {
		return nil, err
	}
	return users, nil
}

package models

import "time"

type Organisation struct {
	OrgID       string    `json:"orgId" db:"org_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"-" db:"created_at"`
}

type CreateOrganisationInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type AddMemberInput struct {
	UserID string `json:"userId" validate:"required"`
}

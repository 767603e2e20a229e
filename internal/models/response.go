package models

// FieldError is a single field-scoped validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResponse is the 422 body: an ordered list of field errors.
type ValidationResponse struct {
	Errors []FieldError `json:"errors"`
}

// SuccessResponse is the {status, message, data} envelope used by every
// successful endpoint.
type SuccessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse is the envelope for authentication and not-found failures.
type ErrorResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// AuthData is the payload of a successful register/login response.
type AuthData struct {
	AccessToken string   `json:"accessToken"`
	User        UserData `json:"user"`
}

// UserData is the client-visible projection of a User. The password hash
// is never part of it.
type UserData struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// PublicUser converts a stored user into its client-visible projection.
func PublicUser(u *User) UserData {
	return UserData{
		UserID:    u.UserID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
	}
}

package validate

import (
	"reflect"
	"testing"

	"userorg-backend/internal/models"
)

func validRegistration() models.RegisterInput {
	return models.RegisterInput{
		FirstName: "John",
		LastName:  "Doe",
		Email:     "johndoe@email.com",
		Password:  "C0mpl3xP@ssw0rd",
		Phone:     "1234567890",
	}
}

func TestRegistrationValid(t *testing.T) {
	got, errs := Registration(validRegistration())
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if got.Email != "johndoe@email.com" {
		t.Errorf("email = %q, want %q", got.Email, "johndoe@email.com")
	}
}

func TestRegistrationNormalizesEmail(t *testing.T) {
	in := validRegistration()
	in.Email = "  John.Doe@Email.COM "

	got, errs := Registration(in)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if got.Email != "john.doe@email.com" {
		t.Errorf("email = %q, want lower-cased trimmed form", got.Email)
	}
}

func TestRegistrationFieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.RegisterInput)
		want   []models.FieldError
	}{
		{
			name:   "missing first name",
			mutate: func(in *models.RegisterInput) { in.FirstName = "" },
			want:   []models.FieldError{{Field: "firstName", Message: "Required"}},
		},
		{
			name:   "missing last name",
			mutate: func(in *models.RegisterInput) { in.LastName = "" },
			want:   []models.FieldError{{Field: "lastName", Message: "Required"}},
		},
		{
			name:   "missing email",
			mutate: func(in *models.RegisterInput) { in.Email = "" },
			want:   []models.FieldError{{Field: "email", Message: "Required"}},
		},
		{
			name:   "bad email shape",
			mutate: func(in *models.RegisterInput) { in.Email = "not-an-email" },
			want:   []models.FieldError{{Field: "email", Message: "Invalid email address"}},
		},
		{
			name:   "missing phone",
			mutate: func(in *models.RegisterInput) { in.Phone = "" },
			want:   []models.FieldError{{Field: "phone", Message: "Required"}},
		},
		{
			name:   "missing password",
			mutate: func(in *models.RegisterInput) { in.Password = "" },
			want:   []models.FieldError{{Field: "password", Message: "Required"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegistration()
			tt.mutate(&in)

			_, errs := Registration(in)
			if !reflect.DeepEqual(errs, tt.want) {
				t.Errorf("errors = %v, want %v", errs, tt.want)
			}
		})
	}
}

func TestRegistrationErrorsAreOrdered(t *testing.T) {
	_, errs := Registration(models.RegisterInput{})

	wantFields := []string{"firstName", "lastName", "email", "password", "phone"}
	if len(errs) != len(wantFields) {
		t.Fatalf("got %d errors, want %d: %v", len(errs), len(wantFields), errs)
	}
	for i, field := range wantFields {
		if errs[i].Field != field {
			t.Errorf("errs[%d].Field = %q, want %q", i, errs[i].Field, field)
		}
		if errs[i].Message != "Required" {
			t.Errorf("errs[%d].Message = %q, want %q", i, errs[i].Message, "Required")
		}
	}
}

func TestPasswordPolicy(t *testing.T) {
	tests := []struct {
		name     string
		password string
		ok       bool
	}{
		{"accepted complex password", "C0mpl3xP@ssw0rd", true},
		{"minimal accepted", "Abcdefg1", true},
		{"too short", "Ab1defg", false},
		{"no upper case", "abcdefg1", false},
		{"no lower case", "ABCDEFG1", false},
		{"no digit", "Abcdefgh", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegistration()
			in.Password = tt.password

			_, errs := Registration(in)
			if tt.ok && len(errs) != 0 {
				t.Errorf("password %q rejected: %v", tt.password, errs)
			}
			if !tt.ok {
				if len(errs) != 1 || errs[0].Field != "password" {
					t.Errorf("password %q: errors = %v, want one password error", tt.password, errs)
				}
			}
		})
	}
}

func TestLoginMissingPassword(t *testing.T) {
	_, errs := Login(models.LoginInput{Email: "johndoe@email.com"})

	want := []models.FieldError{{Field: "password", Message: "Required"}}
	if !reflect.DeepEqual(errs, want) {
		t.Errorf("errors = %v, want %v", errs, want)
	}
}

func TestLoginValid(t *testing.T) {
	got, errs := Login(models.LoginInput{Email: "JohnDoe@Email.com", Password: "whatever"})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if got.Email != "johndoe@email.com" {
		t.Errorf("email = %q, want normalized form", got.Email)
	}
}

func TestLoginPasswordNotPolicyChecked(t *testing.T) {
	// Login only requires presence; policy applies at registration.
	_, errs := Login(models.LoginInput{Email: "johndoe@email.com", Password: "x"})
	if len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
}

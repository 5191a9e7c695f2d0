package service

import (
	"github.com/go-playground/validator/v10"

	"github.com/pulseconnect/hybrid-client/internal/core/domain"
)

const (
	defaultLocation       = "Brazil"
	defaultHourlyRate     = 50.0
	defaultDisplayName    = "User"
	federatedDemoEmail    = "google@example.com"
	federatedDemoName     = "Google User"
	federatedDemoBio      = "Signed in with Google"
	federatedDemoProvider = "google"
)

// newAccountProfile returns the profile fields every new account starts
// with, on either backend.
func newAccountProfile(role domain.Role) (bio string, skills []string, rate *float64) {
	if role == domain.RoleClient {
		return "New client on PulseConnect", nil, nil
	}
	r := defaultHourlyRate
	return "New freelancer on PulseConnect", []string{}, &r
}

// normaliseSignUp fills defaults and validates the input.
func normaliseSignUp(in domain.SignUp) (domain.SignUp, error) {
	if !validEmail(in.Email) {
		return in, domain.NewUserError(domain.CodeInvalidInput, "a valid email is required")
	}
	if in.Role == "" {
		in.Role = domain.RoleFreelancer
	}
	if !in.Role.Valid() {
		return in, domain.NewUserError(domain.CodeInvalidInput, "role must be client or freelancer")
	}
	if in.DisplayName == "" {
		in.DisplayName = defaultDisplayName
	}
	return in, nil
}

var validate = validator.New()

func validEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

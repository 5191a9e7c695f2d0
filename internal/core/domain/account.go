package domain

import (
	"reflect"
	"time"
)

// Role is the marketplace side an account acts on.
type Role string

const (
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
	// RoleAdmin only ever arrives from the remote profile table.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a role an account can sign up with.
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleFreelancer
}

// Account is the canonical identity + profile, whichever backend served it.
type Account struct {
	ID          string    `json:"id"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
	Bio         string    `json:"bio,omitempty"`
	Skills      []string  `json:"skills"`
	HourlyRate  *float64  `json:"hourly_rate,omitempty"`
	Location    string    `json:"location,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// AccountPatch carries a partial profile update. Nil fields are left
// untouched. There is deliberately no role field.
type AccountPatch struct {
	DisplayName *string   `json:"display_name,omitempty"`
	Bio         *string   `json:"bio,omitempty"`
	Skills      *[]string `json:"skills,omitempty"`
	HourlyRate  *float64  `json:"hourly_rate,omitempty"`
	Location    *string   `json:"location,omitempty"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p AccountPatch) Empty() bool {
	return p.DisplayName == nil && p.Bio == nil && p.Skills == nil &&
		p.HourlyRate == nil && p.Location == nil && p.AvatarURL == nil
}

// SignUp is the input to account creation.
type SignUp struct {
	Email       string
	Password    string
	DisplayName string
	Role        Role
}

// Session points at the account currently authenticated against one backend.
type Session struct {
	Account   Account   `json:"account"`
	StartedAt time.Time `json:"started_at"`
}

// FederatedSignIn is the outcome of a provider sign-in. Remote sign-ins
// complete in the browser, so only RedirectURL is set; the offline path
// signs in immediately and sets Account.
type FederatedSignIn struct {
	RedirectURL string   `json:"redirect_url,omitempty"`
	Account     *Account `json:"account,omitempty"`
}

// SameAccount reports whether a and b describe the same signed-in state.
func SameAccount(a, b *Account) bool {
	if a == nil || b == nil {
		return a == b
	}
	return reflect.DeepEqual(*a, *b)
}

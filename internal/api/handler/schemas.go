package handler

import (
	"time"

	"github.com/pulseconnect/hybrid-client/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// --- Auth ---

type signInRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type signUpRequest struct {
	Email       string `json:"email"        validate:"required,email"`
	Password    string `json:"password"     validate:"required,min=6"`
	DisplayName string `json:"display_name" validate:"required,max=120"`
	Role        string `json:"role"         validate:"required,oneof=client freelancer"`
}

type federatedRequest struct {
	Provider string `json:"provider" validate:"omitempty,oneof=google github"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type updateProfileRequest struct {
	DisplayName *string   `json:"display_name" validate:"omitempty,min=1,max=120"`
	Bio         *string   `json:"bio"          validate:"omitempty,max=2000"`
	Skills      *[]string `json:"skills"       validate:"omitempty,max=50"`
	HourlyRate  *float64  `json:"hourly_rate"  validate:"omitempty,gte=0"`
	Location    *string   `json:"location"     validate:"omitempty,max=120"`
	AvatarURL   *string   `json:"avatar_url"   validate:"omitempty,url"`
}

func (r updateProfileRequest) patch() domain.AccountPatch {
	return domain.AccountPatch{
		DisplayName: r.DisplayName,
		Bio:         r.Bio,
		Skills:      r.Skills,
		HourlyRate:  r.HourlyRate,
		Location:    r.Location,
		AvatarURL:   r.AvatarURL,
	}
}

type accountResponse struct {
	Account *domain.Account `json:"account"`
}

// --- Listings ---

type createListingRequest struct {
	Title       string     `json:"title"       validate:"required,max=200"`
	Description string     `json:"description" validate:"required"`
	Category    string     `json:"category"`
	BudgetMin   *float64   `json:"budget_min"  validate:"omitempty,gte=0"`
	BudgetMax   *float64   `json:"budget_max"  validate:"omitempty,gte=0"`
	Skills      []string   `json:"skills"`
	Deadline    *time.Time `json:"deadline"`
}

type listingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open in_progress completed cancelled"`
}

type listingsResponse struct {
	Items []domain.Listing `json:"items"`
	Count int              `json:"count"`
}

// --- Offers ---

type createOfferRequest struct {
	Price        float64 `json:"price"         validate:"required,gt=0"`
	Message      string  `json:"message"       validate:"required"`
	DeliveryDays int     `json:"delivery_days" validate:"required,gt=0"`
}

type offerStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending accepted rejected withdrawn"`
}

type offersResponse struct {
	Items []domain.Offer `json:"items"`
	Count int            `json:"count"`
}

// --- Accounts ---

type accountsResponse struct {
	Items []domain.Account `json:"items"`
	Count int              `json:"count"`
}

type createEndorsementRequest struct {
	Rating    int    `json:"rating"     validate:"required,gte=1,lte=5"`
	Comment   string `json:"comment"    validate:"max=2000"`
	ListingID string `json:"listing_id"`
}

type endorsementsResponse struct {
	Items []domain.Endorsement `json:"items"`
	Count int                  `json:"count"`
}

// --- Connectivity ---

type connectivityResponse struct {
	Reachable   bool `json:"reachable"`
	OfflineMode bool `json:"offline_mode"`
	// Online is what the façades act on: reachable and not forced offline.
	Online bool `json:"online"`
}

type offlineModeRequest struct {
	Offline *bool `json:"offline" validate:"required"`
}

type messageResponse struct {
	Message string `json:"message"`
}

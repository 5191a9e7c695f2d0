package ports

import (
	"context"

	"github.com/pulseconnect/hybrid-client/internal/core/domain"
)

// AuthService is the hybrid authentication entry point. Every error it
// returns is a *domain.UserError.
type AuthService interface {
	// CurrentAccount returns nil when nobody is signed in.
	CurrentAccount(ctx context.Context) (*domain.Account, error)
	SignInWithEmail(ctx context.Context, email, password string) (*domain.Account, error)
	SignUpWithEmail(ctx context.Context, in domain.SignUp) (*domain.Account, error)
	SignInWithProvider(ctx context.Context, provider string) (*domain.FederatedSignIn, error)
	SignOut(ctx context.Context) error
	UpdateProfile(ctx context.Context, patch domain.AccountPatch) (*domain.Account, error)
	ResetPassword(ctx context.Context, email string) error
	ResendConfirmation(ctx context.Context, email string) error
	OnAuthStateChange(fn func(*domain.Account)) (unsubscribe func())
}

// DataService is the hybrid marketplace data entry point. Every error it
// returns is a *domain.UserError.
type DataService interface {
	ListListings(ctx context.Context) ([]domain.Listing, error)
	ListListingsByOwner(ctx context.Context, ownerID string) ([]domain.Listing, error)
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
	CreateListing(ctx context.Context, in domain.NewListing) (*domain.Listing, error)
	UpdateListingStatus(ctx context.Context, id string, status domain.ListingStatus) (*domain.Listing, error)

	ListAccounts(ctx context.Context) ([]domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)

	ListOffersByListing(ctx context.Context, listingID string) ([]domain.Offer, error)
	CreateOffer(ctx context.Context, in domain.NewOffer) (*domain.Offer, error)
	UpdateOfferStatus(ctx context.Context, id string, status domain.OfferStatus) (*domain.Offer, error)

	ListEndorsementsBySubject(ctx context.Context, subjectID string) ([]domain.Endorsement, error)
	CreateEndorsement(ctx context.Context, in domain.NewEndorsement) (*domain.Endorsement, error)

	// ResetLocalData wipes the local store, which reseeds on next use.
	ResetLocalData(ctx context.Context) error
}

package domain

import "time"

// OfferStatus is the lifecycle state of a proposal.
type OfferStatus string

const (
	OfferPending   OfferStatus = "pending"
	OfferAccepted  OfferStatus = "accepted"
	OfferRejected  OfferStatus = "rejected"
	OfferWithdrawn OfferStatus = "withdrawn"
)

func (s OfferStatus) Valid() bool {
	switch s {
	case OfferPending, OfferAccepted, OfferRejected, OfferWithdrawn:
		return true
	}
	return false
}

// Offer is a freelancer's proposal against a listing.
type Offer struct {
	ID           string      `json:"id"`
	ListingID    string      `json:"listing_id"`
	AccountID    string      `json:"account_id"`
	AccountName  string      `json:"account_name"`
	Price        float64     `json:"price"`
	Message      string      `json:"message"`
	DeliveryDays int         `json:"delivery_days"`
	Status       OfferStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
}

// NewOffer is the input to offer creation.
type NewOffer struct {
	ListingID    string
	AccountID    string
	Price        float64
	Message      string
	DeliveryDays int
}

package domain

import "time"

// ListingStatus is the lifecycle state of a job posting.
type ListingStatus string

const (
	ListingOpen       ListingStatus = "open"
	ListingInProgress ListingStatus = "in_progress"
	ListingCompleted  ListingStatus = "completed"
	ListingCancelled  ListingStatus = "cancelled"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case ListingOpen, ListingInProgress, ListingCompleted, ListingCancelled:
		return true
	}
	return false
}

// Listing is a job posted by a client account.
type Listing struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	OwnerID     string        `json:"owner_id"`
	OwnerName   string        `json:"owner_name"`
	Category    string        `json:"category"`
	BudgetMin   *float64      `json:"budget_min,omitempty"`
	BudgetMax   *float64      `json:"budget_max,omitempty"`
	Skills      []string      `json:"skills"`
	Status      ListingStatus `json:"status"`
	Deadline    *time.Time    `json:"deadline,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// NewListing is the input to listing creation.
type NewListing struct {
	OwnerID     string
	Title       string
	Description string
	Category    string
	BudgetMin   *float64
	BudgetMax   *float64
	Skills      []string
	Deadline    *time.Time
}

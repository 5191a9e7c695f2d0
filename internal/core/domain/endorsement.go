package domain

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Endorsement is a rating one account leaves about another.
type Endorsement struct {
	ID         string    `json:"id"`
	SubjectID  string    `json:"subject_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	ListingID  string    `json:"listing_id,omitempty"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewEndorsement is the input to endorsement creation.
type NewEndorsement struct {
	SubjectID string
	AuthorID  string
	ListingID string
	Rating    int
	Comment   string
}

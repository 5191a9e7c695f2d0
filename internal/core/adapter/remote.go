package adapter

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/pulseconnect/hybrid-client/internal/core/domain"
)

// Remote tables.
const (
	TableProfiles  = "user_profiles"
	TableJobs      = "jobs"
	TableProposals = "proposals"
	TableReviews   = "reviews"
)

// Select lists, with the owner/author display name embedded through the
// named foreign key.
const (
	ProfileColumns  = "*"
	JobColumns      = "*,user_profiles!jobs_client_id_fkey(full_name)"
	ProposalColumns = "*,user_profiles!proposals_freelancer_id_fkey(full_name)"
	ReviewColumns   = "*,user_profiles!reviews_reviewer_id_fkey(full_name)"
)

type embeddedProfile struct {
	FullName *string `json:"full_name"`
}

func (e *embeddedProfile) name(fallback string) string {
	if e == nil || e.FullName == nil || *e.FullName == "" {
		return fallback
	}
	return *e.FullName
}

// ProfileRow is one user_profiles row.
type ProfileRow struct {
	ID         string    `json:"id,omitempty"`
	UserID     string    `json:"user_id"`
	Email      *string   `json:"email,omitempty"`
	FullName   *string   `json:"full_name"`
	UserType   string    `json:"user_type"`
	Bio        *string   `json:"bio"`
	Skills     []string  `json:"skills"`
	HourlyRate *float64  `json:"hourly_rate"`
	Location   *string   `json:"location"`
	AvatarURL  *string   `json:"avatar_url"`
	CreatedAt  time.Time `json:"created_at"`
}

// JobRow is one jobs row with the owner's name embedded.
type JobRow struct {
	ID             string           `json:"id"`
	ClientID       string           `json:"client_id"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Category       *string          `json:"category"`
	BudgetMin      *float64         `json:"budget_min"`
	BudgetMax      *float64         `json:"budget_max"`
	SkillsRequired []string         `json:"skills_required"`
	Status         string           `json:"status"`
	Deadline       *time.Time       `json:"deadline"`
	CreatedAt      time.Time        `json:"created_at"`
	Owner          *embeddedProfile `json:"user_profiles"`
}

// ProposalRow is one proposals row with the freelancer's name embedded.
type ProposalRow struct {
	ID            string           `json:"id"`
	JobID         string           `json:"job_id"`
	FreelancerID  string           `json:"freelancer_id"`
	ProposedPrice float64          `json:"proposed_price"`
	Message       *string          `json:"message"`
	DeliveryDays  *int             `json:"delivery_days"`
	Status        string           `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	Freelancer    *embeddedProfile `json:"user_profiles"`
}

// ReviewRow is one reviews row with the reviewer's name embedded.
type ReviewRow struct {
	ID         string           `json:"id"`
	JobID      *string          `json:"job_id"`
	ReviewerID string           `json:"reviewer_id"`
	ReviewedID string           `json:"reviewed_id"`
	Rating     int              `json:"rating"`
	Comment    *string          `json:"comment"`
	CreatedAt  time.Time        `json:"created_at"`
	Reviewer   *embeddedProfile `json:"user_profiles"`
}

func AccountFromProfileRow(r ProfileRow) domain.Account {
	name := deref(r.FullName)
	if name == "" {
		name = DefaultAuthorName
	}
	return domain.Account{
		ID:          r.UserID,
		Email:       deref(r.Email),
		DisplayName: name,
		Role:        domain.Role(r.UserType),
		Bio:         deref(r.Bio),
		Skills:      slices.Clone(r.Skills),
		HourlyRate:  cloneFloat(r.HourlyRate),
		Location:    deref(r.Location),
		AvatarURL:   deref(r.AvatarURL),
		CreatedAt:   r.CreatedAt,
	}
}

func ListingFromJobRow(r JobRow) domain.Listing {
	category := deref(r.Category)
	if category == "" {
		category = DefaultCategory
	}
	return domain.Listing{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		OwnerID:     r.ClientID,
		OwnerName:   r.Owner.name(DefaultOwnerName),
		Category:    category,
		BudgetMin:   cloneFloat(r.BudgetMin),
		BudgetMax:   cloneFloat(r.BudgetMax),
		Skills:      slices.Clone(r.SkillsRequired),
		Status:      domain.ListingStatus(r.Status),
		Deadline:    cloneTime(r.Deadline),
		CreatedAt:   r.CreatedAt,
	}
}

func OfferFromProposalRow(r ProposalRow) domain.Offer {
	days := DefaultDeliveryDays
	if r.DeliveryDays != nil && *r.DeliveryDays > 0 {
		days = *r.DeliveryDays
	}
	return domain.Offer{
		ID:           r.ID,
		ListingID:    r.JobID,
		AccountID:    r.FreelancerID,
		AccountName:  r.Freelancer.name(DefaultOfferName),
		Price:        r.ProposedPrice,
		Message:      deref(r.Message),
		DeliveryDays: days,
		Status:       domain.OfferStatus(r.Status),
		CreatedAt:    r.CreatedAt,
	}
}

func EndorsementFromReviewRow(r ReviewRow) domain.Endorsement {
	return domain.Endorsement{
		ID:         r.ID,
		SubjectID:  r.ReviewedID,
		AuthorID:   r.ReviewerID,
		AuthorName: r.Reviewer.name(DefaultAuthorName),
		ListingID:  deref(r.JobID),
		Rating:     r.Rating,
		Comment:    deref(r.Comment),
		CreatedAt:  r.CreatedAt,
	}
}

// ProfileInsert is the row written after a remote sign-up.
type ProfileInsert struct {
	UserID     string   `json:"user_id"`
	FullName   string   `json:"full_name"`
	UserType   string   `json:"user_type"`
	Bio        string   `json:"bio"`
	Location   string   `json:"location"`
	Skills     []string `json:"skills,omitempty"`
	HourlyRate *float64 `json:"hourly_rate,omitempty"`
}

// JobInsert is the row written by CreateListing.
type JobInsert struct {
	ClientID       string     `json:"client_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Category       string     `json:"category"`
	BudgetMin      *float64   `json:"budget_min,omitempty"`
	BudgetMax      *float64   `json:"budget_max,omitempty"`
	SkillsRequired []string   `json:"skills_required"`
	Status         string     `json:"status"`
	Deadline       *time.Time `json:"deadline,omitempty"`
}

// ProposalInsert is the row written by CreateOffer.
type ProposalInsert struct {
	JobID         string  `json:"job_id"`
	FreelancerID  string  `json:"freelancer_id"`
	ProposedPrice float64 `json:"proposed_price"`
	Message       string  `json:"message"`
	DeliveryDays  int     `json:"delivery_days"`
	Status        string  `json:"status"`
}

// ReviewInsert is the row written by CreateEndorsement.
type ReviewInsert struct {
	JobID      *string `json:"job_id,omitempty"`
	ReviewerID string  `json:"reviewer_id"`
	ReviewedID string  `json:"reviewed_id"`
	Rating     int     `json:"rating"`
	Comment    string  `json:"comment"`
}

func NewJobInsert(in domain.NewListing) JobInsert {
	category := in.Category
	if category == "" {
		category = DefaultCategory
	}
	skills := in.Skills
	if skills == nil {
		skills = []string{}
	}
	return JobInsert{
		ClientID:       in.OwnerID,
		Title:          in.Title,
		Description:    in.Description,
		Category:       category,
		BudgetMin:      cloneFloat(in.BudgetMin),
		BudgetMax:      cloneFloat(in.BudgetMax),
		SkillsRequired: slices.Clone(skills),
		Status:         string(domain.ListingOpen),
		Deadline:       cloneTime(in.Deadline),
	}
}

func NewProposalInsert(in domain.NewOffer) ProposalInsert {
	days := in.DeliveryDays
	if days <= 0 {
		days = DefaultDeliveryDays
	}
	return ProposalInsert{
		JobID:         in.ListingID,
		FreelancerID:  in.AccountID,
		ProposedPrice: in.Price,
		Message:       in.Message,
		DeliveryDays:  days,
		Status:        string(domain.OfferPending),
	}
}

func NewReviewInsert(in domain.NewEndorsement) ReviewInsert {
	var job *string
	if in.ListingID != "" {
		job = &in.ListingID
	}
	return ReviewInsert{
		JobID:      job,
		ReviewerID: in.AuthorID,
		ReviewedID: in.SubjectID,
		Rating:     in.Rating,
		Comment:    in.Comment,
	}
}

// PatchToProfileRow keeps only the columns the patch sets.
func PatchToProfileRow(p domain.AccountPatch) map[string]any {
	row := make(map[string]any)
	if p.DisplayName != nil {
		row["full_name"] = *p.DisplayName
	}
	if p.Bio != nil {
		row["bio"] = *p.Bio
	}
	if p.Skills != nil {
		row["skills"] = *p.Skills
	}
	if p.HourlyRate != nil {
		row["hourly_rate"] = *p.HourlyRate
	}
	if p.Location != nil {
		row["location"] = *p.Location
	}
	if p.AvatarURL != nil {
		row["avatar_url"] = *p.AvatarURL
	}
	return row
}

// DecodeRows decodes a JSON array response.
func DecodeRows[T any](raw []byte) ([]T, error) {
	var rows []T
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return rows, nil
}

// DecodeRow decodes a single-object response.
func DecodeRow[T any](raw []byte) (T, error) {
	var row T
	if err := json.Unmarshal(raw, &row); err != nil {
		return row, fmt.Errorf("decode row: %w", err)
	}
	return row, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

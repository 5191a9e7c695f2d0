// Package adapter maps between the local store shapes, the remote row
// shapes and the canonical domain entities. Every function is total: missing
// optional fields fall back to fixed defaults.
package adapter

import (
	"slices"
	"time"

	"github.com/pulseconnect/hybrid-client/internal/core/domain"
	"github.com/pulseconnect/hybrid-client/internal/core/localstore"
)

// Defaults for fields one side does not carry.
const (
	DefaultCategory     = "general"
	DefaultDeliveryDays = 7
	DefaultOwnerName    = "Client"
	DefaultOfferName    = "Freelancer"
	DefaultAuthorName   = "User"
)

func AccountFromLocal(u localstore.User) domain.Account {
	return domain.Account{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.Name,
		Role:        domain.Role(u.UserType),
		Bio:         u.Bio,
		Skills:      slices.Clone(u.Skills),
		HourlyRate:  cloneFloat(u.HourlyRate),
		Location:    u.Location,
		AvatarURL:   u.AvatarURL,
		CreatedAt:   u.CreatedAt,
	}
}

func AccountToLocal(a domain.Account) localstore.User {
	return localstore.User{
		ID:         a.ID,
		Email:      a.Email,
		Name:       a.DisplayName,
		UserType:   string(a.Role),
		AvatarURL:  a.AvatarURL,
		Bio:        a.Bio,
		Skills:     slices.Clone(a.Skills),
		HourlyRate: cloneFloat(a.HourlyRate),
		Location:   a.Location,
		CreatedAt:  a.CreatedAt,
	}
}

// ApplyPatch copies the set fields of p onto a local user.
func ApplyPatch(u *localstore.User, p domain.AccountPatch) {
	if p.DisplayName != nil {
		u.Name = *p.DisplayName
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Skills != nil {
		u.Skills = slices.Clone(*p.Skills)
	}
	if p.HourlyRate != nil {
		u.HourlyRate = cloneFloat(p.HourlyRate)
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
}

// ListingFromLocal reads the budget range back. A job with a single budget
// figure yields that figure for both bounds.
func ListingFromLocal(j localstore.Job) domain.Listing {
	owner := j.ClientName
	if owner == "" {
		owner = DefaultOwnerName
	}
	category := j.Category
	if category == "" {
		category = DefaultCategory
	}
	low := j.BudgetMin
	if low == nil {
		low = j.Budget
	}
	return domain.Listing{
		ID:          j.ID,
		Title:       j.Title,
		Description: j.Description,
		OwnerID:     j.ClientID,
		OwnerName:   owner,
		Category:    category,
		BudgetMin:   cloneFloat(low),
		BudgetMax:   cloneFloat(j.Budget),
		Skills:      slices.Clone(j.SkillsRequired),
		Status:      domain.ListingStatus(j.Status),
		Deadline:    cloneTime(j.Deadline),
		CreatedAt:   j.CreatedAt,
	}
}

// ListingToLocal stores the upper budget bound, or the lower one when that
// is all there is, plus a distinct lower bound.
func ListingToLocal(l domain.Listing) localstore.Job {
	budget := l.BudgetMax
	if budget == nil {
		budget = l.BudgetMin
	}
	var low *float64
	if l.BudgetMin != nil && budget != nil && *l.BudgetMin != *budget {
		low = l.BudgetMin
	}
	category := l.Category
	if category == DefaultCategory {
		category = ""
	}
	return localstore.Job{
		ID:             l.ID,
		Title:          l.Title,
		Description:    l.Description,
		Category:       category,
		Budget:         cloneFloat(budget),
		BudgetMin:      cloneFloat(low),
		ClientID:       l.OwnerID,
		ClientName:     l.OwnerName,
		SkillsRequired: slices.Clone(l.Skills),
		Status:         string(l.Status),
		CreatedAt:      l.CreatedAt,
		Deadline:       cloneTime(l.Deadline),
	}
}

func OfferFromLocal(p localstore.Proposal) domain.Offer {
	name := p.FreelancerName
	if name == "" {
		name = DefaultOfferName
	}
	days := p.DeliveryDays
	if days <= 0 {
		days = DefaultDeliveryDays
	}
	return domain.Offer{
		ID:           p.ID,
		ListingID:    p.JobID,
		AccountID:    p.FreelancerID,
		AccountName:  name,
		Price:        p.ProposedRate,
		Message:      p.Message,
		DeliveryDays: days,
		Status:       domain.OfferStatus(p.Status),
		CreatedAt:    p.CreatedAt,
	}
}

func OfferToLocal(o domain.Offer) localstore.Proposal {
	days := o.DeliveryDays
	if days == DefaultDeliveryDays {
		days = 0
	}
	return localstore.Proposal{
		ID:             o.ID,
		JobID:          o.ListingID,
		FreelancerID:   o.AccountID,
		FreelancerName: o.AccountName,
		Message:        o.Message,
		ProposedRate:   o.Price,
		DeliveryDays:   days,
		Status:         string(o.Status),
		CreatedAt:      o.CreatedAt,
	}
}

func EndorsementFromLocal(r localstore.Review) domain.Endorsement {
	name := r.ReviewerName
	if name == "" {
		name = DefaultAuthorName
	}
	return domain.Endorsement{
		ID:         r.ID,
		SubjectID:  r.ReviewedID,
		AuthorID:   r.ReviewerID,
		AuthorName: name,
		ListingID:  r.JobID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}

func EndorsementToLocal(e domain.Endorsement) localstore.Review {
	return localstore.Review{
		ID:           e.ID,
		ReviewerID:   e.AuthorID,
		ReviewedID:   e.SubjectID,
		ReviewerName: e.AuthorName,
		JobID:        e.ListingID,
		Rating:       e.Rating,
		Comment:      e.Comment,
		CreatedAt:    e.CreatedAt,
	}
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

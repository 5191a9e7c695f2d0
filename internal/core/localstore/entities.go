package localstore

import "time"

// User is the persisted account shape.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	UserType   string    `json:"user_type"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	Bio        string    `json:"bio,omitempty"`
	Skills     []string  `json:"skills"`
	HourlyRate *float64  `json:"hourly_rate,omitempty"`
	Location   string    `json:"location,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Job is the persisted listing shape. Budget is the upper figure; BudgetMin
// is only stored next to it when the range has a distinct lower bound.
// Category is omitted for the default category.
type Job struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Category       string     `json:"category,omitempty"`
	Budget         *float64   `json:"budget,omitempty"`
	BudgetMin      *float64   `json:"budget_min,omitempty"`
	ClientID       string     `json:"client_id"`
	ClientName     string     `json:"client_name"`
	SkillsRequired []string   `json:"skills_required"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	Deadline       *time.Time `json:"deadline,omitempty"`
}

// Proposal is the persisted offer shape. A zero DeliveryDays means the
// default estimate.
type Proposal struct {
	ID             string    `json:"id"`
	JobID          string    `json:"job_id"`
	FreelancerID   string    `json:"freelancer_id"`
	FreelancerName string    `json:"freelancer_name"`
	Message        string    `json:"message"`
	ProposedRate   float64   `json:"proposed_rate"`
	DeliveryDays   int       `json:"delivery_days,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// Review is the persisted endorsement shape.
type Review struct {
	ID           string    `json:"id"`
	ReviewerID   string    `json:"reviewer_id"`
	ReviewedID   string    `json:"reviewed_id"`
	ReviewerName string    `json:"reviewer_name"`
	JobID        string    `json:"job_id,omitempty"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

// Collection describes one persisted entity list.
type Collection[T any] struct {
	name     string
	idPrefix string
	id       func(*T) *string
	created  func(*T) *time.Time
	seed     func(now time.Time) []T
}

// Name is the collection's storage name without the key prefix.
func (c Collection[T]) Name() string { return c.name }

var (
	Users = Collection[User]{
		name: "users", idPrefix: "user",
		id:      func(u *User) *string { return &u.ID },
		created: func(u *User) *time.Time { return &u.CreatedAt },
		seed:    seedUsers,
	}
	Jobs = Collection[Job]{
		name: "jobs", idPrefix: "job",
		id:      func(j *Job) *string { return &j.ID },
		created: func(j *Job) *time.Time { return &j.CreatedAt },
		seed:    seedJobs,
	}
	Proposals = Collection[Proposal]{
		name: "proposals", idPrefix: "proposal",
		id:      func(p *Proposal) *string { return &p.ID },
		created: func(p *Proposal) *time.Time { return &p.CreatedAt },
		seed:    seedProposals,
	}
	Reviews = Collection[Review]{
		name: "reviews", idPrefix: "review",
		id:      func(r *Review) *string { return &r.ID },
		created: func(r *Review) *time.Time { return &r.CreatedAt },
		seed:    seedReviews,
	}
)

const (
	keyCurrentUser = "current_user"
	keyOfflineMode = "offline_mode"
	keyHealth      = "health"
)

// ownedKeys lists every key ClearAll removes.
var ownedKeys = []string{
	Users.name, Jobs.name, Proposals.name, Reviews.name,
	keyCurrentUser, keyOfflineMode,
}

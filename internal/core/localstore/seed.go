package localstore

import "time"

// Seed accounts, stable across runs so offline demos can sign in by email.
const (
	SeedClientEmail     = "client@example.com"
	SeedFreelancerEmail = "freelancer@example.com"
	SeedDesignerEmail   = "designer@example.com"
)

func ptr[T any](v T) *T { return &v }

func seedUsers(now time.Time) []User {
	return []User{
		{
			ID:        "user-1",
			Email:     SeedClientEmail,
			Name:      "John Client",
			UserType:  "client",
			Bio:       "Entrepreneur looking for talent for innovative projects.",
			Location:  "São Paulo, SP",
			CreatedAt: now,
		},
		{
			ID:         "user-2",
			Email:      SeedFreelancerEmail,
			Name:       "Mary Freelancer",
			UserType:   "freelancer",
			Bio:        "Full stack developer with 5 years of experience.",
			Skills:     []string{"React", "Node.js", "TypeScript", "Python"},
			HourlyRate: ptr(80.0),
			Location:   "Rio de Janeiro, RJ",
			CreatedAt:  now,
		},
		{
			ID:         "user-3",
			Email:      SeedDesignerEmail,
			Name:       "Charles Designer",
			UserType:   "freelancer",
			Bio:        "UX/UI designer focused on modern interfaces.",
			Skills:     []string{"Figma", "Adobe XD", "Photoshop", "Illustrator"},
			HourlyRate: ptr(60.0),
			Location:   "Belo Horizonte, MG",
			CreatedAt:  now,
		},
	}
}

func seedJobs(now time.Time) []Job {
	return []Job{
		{
			ID:             "job-1",
			Title:          "E-commerce development",
			Description:    "Looking for a developer to build a complete online store with payments.",
			Budget:         ptr(5000.0),
			ClientID:       "user-1",
			ClientName:     "John Client",
			SkillsRequired: []string{"React", "Node.js", "MongoDB"},
			Status:         "open",
			CreatedAt:      now,
			Deadline:       ptr(now.Add(30 * 24 * time.Hour)),
		},
		{
			ID:             "job-2",
			Title:          "Mobile app design",
			Description:    "Looking for a designer to create the interface of a delivery app.",
			Budget:         ptr(2500.0),
			ClientID:       "user-1",
			ClientName:     "John Client",
			SkillsRequired: []string{"Figma", "UI/UX Design", "Mobile Design"},
			Status:         "open",
			CreatedAt:      now,
			Deadline:       ptr(now.Add(20 * 24 * time.Hour)),
		},
	}
}

func seedProposals(now time.Time) []Proposal {
	return []Proposal{
		{
			ID:             "proposal-1",
			JobID:          "job-1",
			FreelancerID:   "user-2",
			FreelancerName: "Mary Freelancer",
			Message:        "I have e-commerce experience and can deliver a quality project.",
			ProposedRate:   80,
			Status:         "pending",
			CreatedAt:      now,
		},
	}
}

func seedReviews(now time.Time) []Review {
	return []Review{
		{
			ID:           "review-1",
			ReviewerID:   "user-1",
			ReviewedID:   "user-2",
			ReviewerName: "John Client",
			Rating:       5,
			Comment:      "Excellent work, very professional and punctual.",
			CreatedAt:    now,
		},
	}
}

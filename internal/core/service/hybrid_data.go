package service

import (
	"context"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulseconnect/hybrid-client/internal/core/adapter"
	"github.com/pulseconnect/hybrid-client/internal/core/domain"
	"github.com/pulseconnect/hybrid-client/internal/core/localstore"
	"github.com/pulseconnect/hybrid-client/internal/core/ports"
)

var (
	errListingNotFound = domain.NewUserError(domain.CodeNotFound, "listing not found")
	errAccountNotFound = domain.NewUserError(domain.CodeNotFound, "account not found")
	errOfferNotFound   = domain.NewUserError(domain.CodeNotFound, "offer not found")
)

// HybridDataService serves marketplace data from the remote backend when it
// is usable and from the local store otherwise. Writes served locally stay
// local; they are not replayed once the backend comes back.
type HybridDataService struct {
	remote ports.RemoteDatabase
	store  *localstore.Store
	fb     *fallback
}

var _ ports.DataService = (*HybridDataService)(nil)

func NewHybridDataService(
	remote ports.RemoteDatabase,
	store *localstore.Store,
	policy *Policy,
	reach ports.Reachability,
	recorder ports.Recorder,
	log zerolog.Logger,
) *HybridDataService {
	if recorder == nil {
		recorder = ports.NopRecorder{}
	}
	return &HybridDataService{
		remote: remote,
		store:  store,
		fb:     &fallback{policy: policy, reach: reach, recorder: recorder, log: log},
	}
}

func newestFirst(a, b time.Time) int { return b.Compare(a) }

// ── Listings ─────────────────────────────────────────────────────────────────

func (s *HybridDataService) ListListings(ctx context.Context) ([]domain.Listing, error) {
	return run(ctx, s.fb, "data.list_listings", nil,
		func(ctx context.Context) ([]domain.Listing, error) {
			return s.remoteListings(ctx, nil)
		},
		func() ([]domain.Listing, error) {
			jobs, err := localstore.List(s.store, localstore.Jobs)
			if err != nil {
				return nil, err
			}
			return s.localListings(jobs)
		})
}

func (s *HybridDataService) ListListingsByOwner(ctx context.Context, ownerID string) ([]domain.Listing, error) {
	if ownerID == "" {
		return nil, domain.NewUserError(domain.CodeInvalidInput, "owner id is required")
	}
	return run(ctx, s.fb, "data.list_listings_by_owner", nil,
		func(ctx context.Context) ([]domain.Listing, error) {
			return s.remoteListings(ctx, []ports.Filter{ports.Eq("client_id", ownerID)})
		},
		func() ([]domain.Listing, error) {
			jobs, err := s.store.JobsByOwner(ownerID)
			if err != nil {
				return nil, err
			}
			return s.localListings(jobs)
		})
}

func (s *HybridDataService) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	return run(ctx, s.fb, "data.get_listing", errListingNotFound,
		func(ctx context.Context) (*domain.Listing, error) {
			raw, err := s.remote.Select(ctx, adapter.TableJobs, ports.Query{
				Columns: adapter.JobColumns,
				Filters: []ports.Filter{ports.Eq("id", id)},
				Single:  true,
			})
			if err != nil {
				return nil, err
			}
			return decodeOne(raw, adapter.ListingFromJobRow)
		},
		func() (*domain.Listing, error) {
			j, ok, err := localstore.Get(s.store, localstore.Jobs, id)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, errListingNotFound
			}
			l := adapter.ListingFromLocal(j)
			l.OwnerName = s.localName(j.ClientID, l.OwnerName)
			return &l, nil
		})
}

func (s *HybridDataService) CreateListing(ctx context.Context, in domain.NewListing) (*domain.Listing, error) {
	if err := validateListing(in); err != nil {
		return nil, err
	}
	return run(ctx, s.fb, "data.create_listing", nil,
		func(ctx context.Context) (*domain.Listing, error) {
			raw, err := s.remote.Insert(ctx, adapter.TableJobs, adapter.NewJobInsert(in), adapter.JobColumns)
			if err != nil {
				return nil, err
			}
			return decodeOne(raw, adapter.ListingFromJobRow)
		},
		func() (*domain.Listing, error) {
			l := domain.Listing{
				Title:       in.Title,
				Description: in.Description,
				OwnerID:     in.OwnerID,
				OwnerName:   s.localName(in.OwnerID, adapter.DefaultOwnerName),
				Category:    in.Category,
				BudgetMin:   in.BudgetMin,
				BudgetMax:   in.BudgetMax,
				Skills:      in.Skills,
				Status:      domain.ListingOpen,
				Deadline:    in.Deadline,
			}
			j, err := localstore.Create(s.store, localstore.Jobs, adapter.ListingToLocal(l))
			if err != nil {
				return nil, err
			}
			out := adapter.ListingFromLocal(j)
			return &out, nil
		})
}

func (s *HybridDataService) UpdateListingStatus(ctx context.Context, id string, status domain.ListingStatus) (*domain.Listing, error) {
	if !status.Valid() {
		return nil, domain.NewUserError(domain.CodeInvalidInput, "unknown listing status")
	}
	return run(ctx, s.fb, "data.update_listing_status", errListingNotFound,
		func(ctx context.Context) (*domain.Listing, error) {
			raw, err := s.remote.Update(ctx, adapter.TableJobs,
				[]ports.Filter{ports.Eq("id", id)},
				map[string]any{"status": string(status)}, adapter.JobColumns)
			if err != nil {
				return nil, err
			}
			return decodeOne(raw, adapter.ListingFromJobRow)
		},
		func() (*domain.Listing, error) {
			j, ok, err := localstore.Update(s.store, localstore.Jobs, id, func(j *localstore.Job) {
				j.Status = string(status)
			})
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, errListingNotFound
			}
			l := adapter.ListingFromLocal(j)
			return &l, nil
		})
}

func (s *HybridDataService) remoteListings(ctx context.Context, filters []ports.Filter) ([]domain.Listing, error) {
	raw, err := s.remote.Select(ctx, adapter.TableJobs, ports.Query{
		Columns: adapter.JobColumns,
		Filters: filters,
		Order:   &ports.Order{Column: "created_at"},
	})
	if err != nil {
		return nil, err
	}
	return decodeMany(raw, adapter.ListingFromJobRow)
}

func (s *HybridDataService) localListings(jobs []localstore.Job) ([]domain.Listing, error) {
	names, err := s.localNames()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Listing, 0, len(jobs))
	for _, j := range jobs {
		l := adapter.ListingFromLocal(j)
		if n, ok := names[j.ClientID]; ok {
			l.OwnerName = n
		}
		out = append(out, l)
	}
	slices.SortStableFunc(out, func(a, b domain.Listing) int { return newestFirst(a.CreatedAt, b.CreatedAt) })
	return out, nil
}

// ── Accounts ─────────────────────────────────────────────────────────────────

func (s *HybridDataService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return run(ctx, s.fb, "data.list_accounts", nil,
		func(ctx context.Context) ([]domain.Account, error) {
			raw, err := s.remote.Select(ctx, adapter.TableProfiles, ports.Query{
				Columns: adapter.ProfileColumns,
				Order:   &ports.Order{Column: "created_at"},
			})
			if err != nil {
				return nil, err
			}
			return decodeMany(raw, adapter.AccountFromProfileRow)
		},
		func() ([]domain.Account, error) {
			users, err := localstore.List(s.store, localstore.Users)
			if err != nil {
				return nil, err
			}
			out := make([]domain.Account, 0, len(users))
			for _, u := range users {
				out = append(out, adapter.AccountFromLocal(u))
			}
			slices.SortStableFunc(out, func(a, b domain.Account) int { return newestFirst(a.CreatedAt, b.CreatedAt) })
			return out, nil
		})
}

func (s *HybridDataService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return run(ctx, s.fb, "data.get_account", errAccountNotFound,
		func(ctx context.Context) (*domain.Account, error) {
			raw, err := s.remote.Select(ctx, adapter.TableProfiles, ports.Query{
				Columns: adapter.ProfileColumns,
				Filters: []ports.Filter{ports.Eq("user_id", id)},
				Single:  true,
			})
			if err != nil {
				return nil, err
			}
			return decodeOne(raw, adapter.AccountFromProfileRow)
		},
		func() (*domain.Account, error) {
			u, ok, err := localstore.Get(s.store, localstore.Users, id)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, errAccountNotFound
			}
			a := adapter.AccountFromLocal(u)
			return &a, nil
		})
}

// ── Offers ───────────────────────────────────────────────────────────────────

func (s *HybridDataService) ListOffersByListing(ctx context.Context, listingID string) ([]domain.Offer, error) {
	return run(ctx, s.fb, "data.list_offers", nil,
		func(ctx context.Context) ([]domain.Offer, error) {
			raw, err := s.remote.Select(ctx, adapter.TableProposals, ports.Query{
				Columns: adapter.ProposalColumns,
				Filters: []ports.Filter{ports.Eq("job_id", listingID)},
				Order:   &ports.Order{Column: "created_at"},
			})
			if err != nil {
				return nil, err
			}
			return decodeMany(raw, adapter.OfferFromProposalRow)
		},
		func() ([]domain.Offer, error) {
			proposals, err := s.store.ProposalsByJob(listingID)
			if err != nil {
				return nil, err
			}
			names, err := s.localNames()
			if err != nil {
				return nil, err
			}
			out := make([]domain.Offer, 0, len(proposals))
			for _, p := range proposals {
				o := adapter.OfferFromLocal(p)
				if n, ok := names[p.FreelancerID]; ok {
					o.AccountName = n
				}
				out = append(out, o)
			}
			slices.SortStableFunc(out, func(a, b domain.Offer) int { return newestFirst(a.CreatedAt, b.CreatedAt) })
			return out, nil
		})
}

func (s *HybridDataService) CreateOffer(ctx context.Context, in domain.NewOffer) (*domain.Offer, error) {
	switch {
	case in.ListingID == "" || in.AccountID == "":
		return nil, domain.NewUserError(domain.CodeInvalidInput, "listing and account are required")
	case in.Price <= 0:
		return nil, domain.NewUserError(domain.CodeInvalidInput, "price must be greater than zero")
	case in.DeliveryDays < 0:
		return nil, domain.NewUserError(domain.CodeInvalidInput, "delivery days cannot be negative")
	}
	return run(ctx, s.fb, "data.create_offer", errListingNotFound,
		func(ctx context.Context) (*domain.Offer, error) {
			raw, err := s.remote.Insert(ctx, adapter.TableProposals, adapter.NewProposalInsert(in), adapter.ProposalColumns)
			if err != nil {
				return nil, err
			}
			return decodeOne(raw, adapter.OfferFromProposalRow)
		},
		func() (*domain.Offer, error) {
			if _, ok, err := localstore.Get(s.store, localstore.Jobs, in.ListingID); err != nil {
				return nil, err
			} else if !ok {
				return nil, errListingNotFound
			}
			p, err := localstore.Create(s.store, localstore.Proposals, adapter.OfferToLocal(domain.Offer{
				ListingID:    in.ListingID,
				AccountID:    in.AccountID,
				AccountName:  s.localName(in.AccountID, adapter.DefaultOfferName),
				Message:      in.Message,
				Price:        in.Price,
				DeliveryDays: in.DeliveryDays,
				Status:       domain.OfferPending,
			}))
			if err != nil {
				return nil, err
			}
			o := adapter.OfferFromLocal(p)
			return &o, nil
		})
}

func (s *HybridDataService) UpdateOfferStatus(ctx context.Context, id string, status domain.OfferStatus) (*domain.Offer, error) {
	if !status.Valid() {
		return nil, domain.NewUserError(domain.CodeInvalidInput, "unknown offer status")
	}
	return run(ctx, s.fb, "data.update_offer_status", errOfferNotFound,
		func(ctx context.Context) (*domain.Offer, error) {
			raw, err := s.remote.Update(ctx, adapter.TableProposals,
				[]ports.Filter{ports.Eq("id", id)},
				map[string]any{"status": string(status)}, adapter.ProposalColumns)
			if err != nil {
				return nil, err
			}
			return decodeOne(raw, adapter.OfferFromProposalRow)
		},
		func() (*domain.Offer, error) {
			p, ok, err := localstore.Update(s.store, localstore.Proposals, id, func(p *localstore.Proposal) {
				p.Status = string(status)
			})
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, errOfferNotFound
			}
			o := adapter.OfferFromLocal(p)
			return &o, nil
		})
}

// ── Endorsements ─────────────────────────────────────────────────────────────

func (s *HybridDataService) ListEndorsementsBySubject(ctx context.Context, subjectID string) ([]domain.Endorsement, error) {
	return run(ctx, s.fb, "data.list_endorsements", nil,
		func(ctx context.Context) ([]domain.Endorsement, error) {
			raw, err := s.remote.Select(ctx, adapter.TableReviews, ports.Query{
				Columns: adapter.ReviewColumns,
				Filters: []ports.Filter{ports.Eq("reviewed_id", subjectID)},
				Order:   &ports.Order{Column: "created_at"},
			})
			if err != nil {
				return nil, err
			}
			return decodeMany(raw, adapter.EndorsementFromReviewRow)
		},
		func() ([]domain.Endorsement, error) {
			reviews, err := s.store.ReviewsBySubject(subjectID)
			if err != nil {
				return nil, err
			}
			names, err := s.localNames()
			if err != nil {
				return nil, err
			}
			out := make([]domain.Endorsement, 0, len(reviews))
			for _, r := range reviews {
				e := adapter.EndorsementFromLocal(r)
				if n, ok := names[r.ReviewerID]; ok {
					e.AuthorName = n
				}
				out = append(out, e)
			}
			slices.SortStableFunc(out, func(a, b domain.Endorsement) int { return newestFirst(a.CreatedAt, b.CreatedAt) })
			return out, nil
		})
}

func (s *HybridDataService) CreateEndorsement(ctx context.Context, in domain.NewEndorsement) (*domain.Endorsement, error) {
	switch {
	case in.SubjectID == "" || in.AuthorID == "":
		return nil, domain.NewUserError(domain.CodeInvalidInput, "subject and author are required")
	case in.SubjectID == in.AuthorID:
		return nil, domain.NewUserError(domain.CodeInvalidInput, "accounts cannot endorse themselves")
	case in.Rating < domain.MinRating || in.Rating > domain.MaxRating:
		return nil, domain.NewUserError(domain.CodeInvalidInput, "rating must be between 1 and 5")
	}
	return run(ctx, s.fb, "data.create_endorsement", errAccountNotFound,
		func(ctx context.Context) (*domain.Endorsement, error) {
			raw, err := s.remote.Insert(ctx, adapter.TableReviews, adapter.NewReviewInsert(in), adapter.ReviewColumns)
			if err != nil {
				return nil, err
			}
			return decodeOne(raw, adapter.EndorsementFromReviewRow)
		},
		func() (*domain.Endorsement, error) {
			if _, ok, err := localstore.Get(s.store, localstore.Users, in.SubjectID); err != nil {
				return nil, err
			} else if !ok {
				return nil, errAccountNotFound
			}
			r, err := localstore.Create(s.store, localstore.Reviews, localstore.Review{
				ReviewerID:   in.AuthorID,
				ReviewedID:   in.SubjectID,
				ReviewerName: s.localName(in.AuthorID, adapter.DefaultAuthorName),
				JobID:        in.ListingID,
				Rating:       in.Rating,
				Comment:      in.Comment,
			})
			if err != nil {
				return nil, err
			}
			e := adapter.EndorsementFromLocal(r)
			return &e, nil
		})
}

// ResetLocalData wipes every local collection, the offline session and the
// offline preference.
func (s *HybridDataService) ResetLocalData(ctx context.Context) error {
	if err := s.store.ClearAll(); err != nil {
		return s.fb.localFailed("data.reset_local", err)
	}
	s.fb.log.Info().Msg("local data cleared")
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func validateListing(in domain.NewListing) error {
	switch {
	case in.OwnerID == "":
		return domain.NewUserError(domain.CodeInvalidInput, "owner is required")
	case in.Title == "":
		return domain.NewUserError(domain.CodeInvalidInput, "title is required")
	case (in.BudgetMin != nil && *in.BudgetMin < 0) || (in.BudgetMax != nil && *in.BudgetMax < 0):
		return domain.NewUserError(domain.CodeInvalidInput, "budget cannot be negative")
	case in.BudgetMin != nil && in.BudgetMax != nil && *in.BudgetMin > *in.BudgetMax:
		return domain.NewUserError(domain.CodeInvalidInput, "minimum budget exceeds maximum")
	}
	return nil
}

// localNames maps account id to display name.
func (s *HybridDataService) localNames() (map[string]string, error) {
	users, err := localstore.List(s.store, localstore.Users)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		if u.Name != "" {
			names[u.ID] = u.Name
		}
	}
	return names, nil
}

func (s *HybridDataService) localName(id, fallback string) string {
	u, ok, err := localstore.Get(s.store, localstore.Users, id)
	if err != nil || !ok || u.Name == "" {
		return fallback
	}
	return u.Name
}

func decodeOne[R, T any](raw []byte, mapFn func(R) T) (*T, error) {
	row, err := adapter.DecodeRow[R](raw)
	if err != nil {
		return nil, err
	}
	v := mapFn(row)
	return &v, nil
}

func decodeMany[R, T any](raw []byte, mapFn func(R) T) ([]T, error) {
	rows, err := adapter.DecodeRows[R](raw)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, mapFn(r))
	}
	return out, nil
}

// Package localstore is the durable offline entity store.
//
// It keeps four flat JSON collections (users, jobs, proposals, reviews),
// the offline session pointer and the offline-mode preference in a
// ports.KeyValueStore. Absent collections are seeded with a small demo
// dataset on first use, so fallback mode is never empty.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pulseconnect/hybrid-client/internal/core/ports"
)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "pulseconnect_"

// Store is safe for concurrent use. Read-modify-write cycles on a
// collection are serialised by a single mutex.
type Store struct {
	kv     ports.KeyValueStore
	prefix string
	now    func() time.Time
	newID  func(prefix string) string
	log    zerolog.Logger

	mu sync.Mutex
}

// Option customises a Store.
type Option func(*Store)

// WithPrefix overrides DefaultPrefix.
func WithPrefix(p string) Option { return func(s *Store) { s.prefix = p } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// WithIDGenerator overrides "<prefix>-<uuid>" id assignment.
func WithIDGenerator(fn func(prefix string) string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithLogger sets the store logger.
func WithLogger(log zerolog.Logger) Option { return func(s *Store) { s.log = log } }

// Open builds a Store over kv and seeds any missing collection.
func Open(kv ports.KeyValueStore, opts ...Option) (*Store, error) {
	s := &Store{
		kv:     kv,
		prefix: DefaultPrefix,
		now:    time.Now,
		newID: func(prefix string) string {
			return prefix + "-" + uuid.NewString()
		},
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := load(s, Users); err != nil {
		return nil, err
	}
	if _, err := load(s, Jobs); err != nil {
		return nil, err
	}
	if _, err := load(s, Proposals); err != nil {
		return nil, err
	}
	if _, err := load(s, Reviews); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) key(name string) string { return s.prefix + name }

// load reads a collection, seeding it when absent. Caller holds s.mu.
func load[T any](s *Store, c Collection[T]) ([]T, error) {
	raw, ok, err := s.kv.Get(s.key(c.name))
	if err != nil {
		return nil, fmt.Errorf("localstore: read %s: %w", c.name, err)
	}
	if !ok {
		items := c.seed(s.now().UTC())
		if err := save(s, c, items); err != nil {
			return nil, err
		}
		s.log.Debug().Str("collection", c.name).Int("items", len(items)).Msg("seeded collection")
		return items, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("localstore: decode %s: %w", c.name, err)
	}
	return items, nil
}

// save writes a whole collection. Caller holds s.mu.
func save[T any](s *Store, c Collection[T], items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("localstore: encode %s: %w", c.name, err)
	}
	if err := s.kv.Set(s.key(c.name), raw); err != nil {
		return fmt.Errorf("localstore: write %s: %w", c.name, err)
	}
	return nil
}

// List returns every item in insertion order.
func List[T any](s *Store, c Collection[T]) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return load(s, c)
}

// Filter returns the items matching keep, in insertion order.
func Filter[T any](s *Store, c Collection[T], keep func(T) bool) ([]T, error) {
	items, err := List(s, c)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out, nil
}

// Get looks an item up by id. A miss is ok=false with a nil error.
func Get[T any](s *Store, c Collection[T], id string) (T, bool, error) {
	var zero T
	items, err := List(s, c)
	if err != nil {
		return zero, false, err
	}
	for i := range items {
		if *c.id(&items[i]) == id {
			return items[i], true, nil
		}
	}
	return zero, false, nil
}

// Create assigns an id and creation time to v and appends it.
func Create[T any](s *Store, c Collection[T], v T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := load(s, c)
	if err != nil {
		var zero T
		return zero, err
	}
	*c.id(&v) = s.newID(c.idPrefix)
	*c.created(&v) = s.now().UTC()
	items = append(items, v)
	if err := save(s, c, items); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// Update applies mutate to the item with the given id. The id and creation
// time cannot be changed by mutate. A miss is ok=false with a nil error.
func Update[T any](s *Store, c Collection[T], id string, mutate func(*T)) (T, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	items, err := load(s, c)
	if err != nil {
		return zero, false, err
	}
	for i := range items {
		it := &items[i]
		if *c.id(it) != id {
			continue
		}
		created := *c.created(it)
		mutate(it)
		*c.id(it) = id
		*c.created(it) = created
		if err := save(s, c, items); err != nil {
			return zero, false, err
		}
		return *it, true, nil
	}
	return zero, false, nil
}

// Delete removes the item with the given id and reports whether it existed.
func Delete[T any](s *Store, c Collection[T], id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := load(s, c)
	if err != nil {
		return false, err
	}
	for i := range items {
		if *c.id(&items[i]) == id {
			items = append(items[:i], items[i+1:]...)
			return true, save(s, c, items)
		}
	}
	return false, nil
}

// UserByEmail finds an account by exact email.
func (s *Store) UserByEmail(email string) (User, bool, error) {
	users, err := Filter(s, Users, func(u User) bool { return u.Email == email })
	if err != nil || len(users) == 0 {
		return User{}, false, err
	}
	return users[0], true, nil
}

// JobsByOwner lists the listings posted by one client.
func (s *Store) JobsByOwner(ownerID string) ([]Job, error) {
	return Filter(s, Jobs, func(j Job) bool { return j.ClientID == ownerID })
}

// ProposalsByJob lists the offers made against one listing.
func (s *Store) ProposalsByJob(jobID string) ([]Proposal, error) {
	return Filter(s, Proposals, func(p Proposal) bool { return p.JobID == jobID })
}

// ReviewsBySubject lists the endorsements left about one account.
func (s *Store) ReviewsBySubject(userID string) ([]Review, error) {
	return Filter(s, Reviews, func(r Review) bool { return r.ReviewedID == userID })
}

// CurrentUser returns the persisted offline session, or nil.
func (s *Store) CurrentUser() (*User, error) {
	raw, ok, err := s.kv.Get(s.key(keyCurrentUser))
	if err != nil {
		return nil, fmt.Errorf("localstore: read session: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("localstore: decode session: %w", err)
	}
	return &u, nil
}

// SetCurrentUser persists the offline session pointer.
func (s *Store) SetCurrentUser(u User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("localstore: encode session: %w", err)
	}
	return s.kv.Set(s.key(keyCurrentUser), raw)
}

// ClearCurrentUser removes the offline session pointer.
func (s *Store) ClearCurrentUser() error {
	return s.kv.Delete(s.key(keyCurrentUser))
}

// OfflineModePreference reports the user's forced-offline flag. Read errors
// are logged and treated as "not forced".
func (s *Store) OfflineModePreference() bool {
	raw, ok, err := s.kv.Get(s.key(keyOfflineMode))
	if err != nil {
		s.log.Warn().Err(err).Msg("read offline preference failed")
		return false
	}
	if !ok {
		return false
	}
	var offline bool
	if err := json.Unmarshal(raw, &offline); err != nil {
		s.log.Warn().Err(err).Msg("decode offline preference failed")
		return false
	}
	return offline
}

// SetOfflineModePreference stores the forced-offline flag.
func (s *Store) SetOfflineModePreference(offline bool) error {
	raw, _ := json.Marshal(offline)
	return s.kv.Set(s.key(keyOfflineMode), raw)
}

// ClearAll removes every key the store owns. Collections are reseeded on
// next use.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, k := range ownedKeys {
		if err := s.kv.Delete(s.key(k)); err != nil {
			errs = append(errs, fmt.Errorf("localstore: delete %s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}

// Ping round-trips a marker key through the backing store.
func (s *Store) Ping() error {
	k := s.key(keyHealth)
	if err := s.kv.Set(k, []byte(`"ok"`)); err != nil {
		return err
	}
	if _, ok, err := s.kv.Get(k); err != nil || !ok {
		if err == nil {
			err = errors.New("localstore: health key not readable")
		}
		return err
	}
	return s.kv.Delete(k)
}

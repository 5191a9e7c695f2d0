package localstore

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseconnect/hybrid-client/internal/infrastructure/db/memory"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) (*Store, *memory.KVStore) {
	t.Helper()
	kv := memory.NewKVStore()
	n := 0
	s, err := Open(kv,
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func(prefix string) string {
			n++
			return fmt.Sprintf("%s-test-%d", prefix, n)
		}),
	)
	require.NoError(t, err)
	return s, kv
}

func TestOpen_SeedsEveryCollection(t *testing.T) {
	s, kv := openTestStore(t)

	users, err := List(s, Users)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	jobs, err := List(s, Jobs)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	proposals, _ := List(s, Proposals)
	reviews, _ := List(s, Reviews)
	assert.Len(t, proposals, 1)
	assert.Len(t, reviews, 1)

	assert.ElementsMatch(t, []string{
		"pulseconnect_users", "pulseconnect_jobs", "pulseconnect_proposals", "pulseconnect_reviews",
	}, kv.Keys())
}

func TestOpen_ReusesPersistedData(t *testing.T) {
	kv := memory.NewKVStore()
	s1, err := Open(kv)
	require.NoError(t, err)
	created, err := Create(s1, Users, User{Email: "new@example.com", Name: "New", UserType: "client"})
	require.NoError(t, err)

	s2, err := Open(kv)
	require.NoError(t, err)
	got, ok, err := Get(s2, Users, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new@example.com", got.Email)

	users, _ := List(s2, Users)
	assert.Len(t, users, 4)
}

func TestCreate_AssignsIDAndTimestamp(t *testing.T) {
	s, _ := openTestStore(t)

	job, err := Create(s, Jobs, Job{ID: "ignored", Title: "Landing page", ClientID: "user-1", Status: "open"})
	require.NoError(t, err)
	assert.Equal(t, "job-test-1", job.ID)
	assert.Equal(t, fixedNow, job.CreatedAt)

	jobs, _ := List(s, Jobs)
	assert.Equal(t, job.ID, jobs[len(jobs)-1].ID)
}

func TestGet_MissIsTyped(t *testing.T) {
	s, _ := openTestStore(t)

	_, ok, err := Get(s, Jobs, "job-missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdate_KeepsIdentity(t *testing.T) {
	s, _ := openTestStore(t)

	updated, ok, err := Update(s, Jobs, "job-1", func(j *Job) {
		j.Status = "in_progress"
		j.ID = "hijacked"
		j.CreatedAt = time.Time{}
	})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "job-1", updated.ID)
	assert.Equal(t, "in_progress", updated.Status)
	assert.Equal(t, fixedNow, updated.CreatedAt)

	_, ok, err = Update(s, Jobs, "job-missing", func(*Job) {})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	s, _ := openTestStore(t)

	ok, err := Delete(s, Reviews, "review-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Delete(s, Reviews, "review-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRelationHelpers(t *testing.T) {
	s, _ := openTestStore(t)

	u, ok, err := s.UserByEmail(SeedFreelancerEmail)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "user-2", u.ID)

	_, ok, _ = s.UserByEmail("ghost@example.com")
	assert.False(t, ok)

	jobs, _ := s.JobsByOwner("user-1")
	assert.Len(t, jobs, 2)

	proposals, _ := s.ProposalsByJob("job-1")
	require.Len(t, proposals, 1)
	assert.Equal(t, "user-2", proposals[0].FreelancerID)

	reviews, _ := s.ReviewsBySubject("user-2")
	require.Len(t, reviews, 1)
	assert.Equal(t, 5, reviews[0].Rating)
}

func TestCurrentUser(t *testing.T) {
	s, _ := openTestStore(t)

	u, err := s.CurrentUser()
	require.NoError(t, err)
	assert.Nil(t, u)

	require.NoError(t, s.SetCurrentUser(User{ID: "user-2", Email: SeedFreelancerEmail}))
	u, err = s.CurrentUser()
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "user-2", u.ID)

	require.NoError(t, s.ClearCurrentUser())
	u, _ = s.CurrentUser()
	assert.Nil(t, u)
}

func TestOfflineModePreference(t *testing.T) {
	s, _ := openTestStore(t)

	assert.False(t, s.OfflineModePreference())
	require.NoError(t, s.SetOfflineModePreference(true))
	assert.True(t, s.OfflineModePreference())
	require.NoError(t, s.SetOfflineModePreference(false))
	assert.False(t, s.OfflineModePreference())
}

func TestClearAll_RemovesOwnedKeysAndReseeds(t *testing.T) {
	s, kv := openTestStore(t)
	_, err := Create(s, Jobs, Job{Title: "temp"})
	require.NoError(t, err)
	require.NoError(t, s.SetOfflineModePreference(true))
	require.NoError(t, s.SetCurrentUser(User{ID: "user-1"}))

	require.NoError(t, s.ClearAll())
	assert.Empty(t, kv.Keys())
	assert.False(t, s.OfflineModePreference())

	jobs, err := List(s, Jobs)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

type failingKV struct{ memory.KVStore }

func (*failingKV) Get(string) ([]byte, bool, error) { return nil, false, errors.New("disk gone") }

func TestOpen_PropagatesStorageErrors(t *testing.T) {
	_, err := Open(&failingKV{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read users")
}

func TestPing(t *testing.T) {
	s, kv := openTestStore(t)
	require.NoError(t, s.Ping())
	assert.Len(t, kv.Keys(), 4)
}

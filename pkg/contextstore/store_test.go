package contextstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetmind/fleetmind/pkg/vrp"
)

func testProblem() *vrp.Problem {
	return &vrp.Problem{
		Jobs: []vrp.Job{
			{Name: "job-1", Duration: 600},
			{Name: "job-2", Duration: 300},
		},
		Resources: []vrp.Resource{
			{Name: "vehicle-1", Capacity: []int{100}},
		},
	}
}

func testSolution() *vrp.Solution {
	return &vrp.Solution{
		ID: "sol-1",
		Trips: []vrp.Trip{
			{
				Resource: "vehicle-1",
				Visits:   []vrp.Visit{{Job: "job-1"}, {Job: "job-2"}},
				Distance: 12000,
				Duration: 3600,
			},
		},
	}
}

func TestStore_GetMissing(t *testing.T) {
	store := New()

	ctx, ok := store.Get("never-saved")
	assert.False(t, ok)
	assert.Nil(t, ctx)
}

func TestStore_SaveAndGet(t *testing.T) {
	store := New()

	store.Save("session-1", testProblem(), testSolution())

	ctx, ok := store.Get("session-1")
	require.True(t, ok)
	assert.Equal(t, "session-1", ctx.SessionID)
	assert.Equal(t, testProblem(), ctx.Problem)
	assert.Equal(t, testSolution(), ctx.Solution)
	assert.False(t, ctx.UpdatedAt.IsZero())
}

func TestStore_SaveWithoutSolution(t *testing.T) {
	store := New()

	store.Save("session-1", testProblem(), nil)

	ctx, ok := store.Get("session-1")
	require.True(t, ok)
	assert.NotNil(t, ctx.Problem)
	assert.Nil(t, ctx.Solution)
}

func TestStore_SaveReplaces(t *testing.T) {
	store := New()

	store.Save("session-1", testProblem(), testSolution())
	replacement := testProblem()
	replacement.Jobs = replacement.Jobs[:1]
	store.Save("session-1", replacement, nil)

	ctx, ok := store.Get("session-1")
	require.True(t, ok)
	assert.Len(t, ctx.Problem.Jobs, 1)
	assert.Nil(t, ctx.Solution)
}

func TestStore_SnapshotIsolation(t *testing.T) {
	store := New()
	problem := testProblem()
	store.Save("session-1", problem, testSolution())

	// Mutating the caller's document must not affect the stored entry.
	problem.Jobs[0].Name = "mutated"

	first, ok := store.Get("session-1")
	require.True(t, ok)
	assert.Equal(t, "job-1", first.Problem.Jobs[0].Name)

	// Mutating a returned snapshot must not affect later reads.
	first.Problem.Jobs[0].Name = "also-mutated"
	first.Solution.Trips[0].Visits[0].Job = "tampered"

	second, ok := store.Get("session-1")
	require.True(t, ok)
	assert.Equal(t, "job-1", second.Problem.Jobs[0].Name)
	assert.Equal(t, "job-1", second.Solution.Trips[0].Visits[0].Job)
}

func TestStore_UpdateSolution(t *testing.T) {
	store := New()
	store.Save("session-1", testProblem(), nil)

	before, ok := store.Get("session-1")
	require.True(t, ok)

	store.now = func() time.Time { return before.UpdatedAt.Add(time.Minute) }
	store.UpdateSolution("session-1", testSolution())

	after, ok := store.Get("session-1")
	require.True(t, ok)
	assert.Equal(t, testSolution(), after.Solution)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
}

func TestStore_UpdateSolutionMissingSessionIsNoop(t *testing.T) {
	store := New()

	assert.NotPanics(t, func() {
		store.UpdateSolution("ghost", testSolution())
	})

	_, ok := store.Get("ghost")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestStore_Delete(t *testing.T) {
	store := New()
	store.Save("session-1", testProblem(), nil)

	store.Delete("session-1")
	_, ok := store.Get("session-1")
	assert.False(t, ok)

	// Deleting again is a no-op.
	assert.NotPanics(t, func() { store.Delete("session-1") })
}

func TestStore_ListSessions(t *testing.T) {
	store := New()
	assert.Empty(t, store.ListSessions())

	store.Save("b-session", testProblem(), nil)
	store.Save("a-session", testProblem(), nil)

	listed := store.ListSessions()
	assert.Equal(t, []string{"a-session", "b-session"}, listed)

	// A produced snapshot does not change with later mutations.
	store.Delete("a-session")
	assert.Equal(t, []string{"a-session", "b-session"}, listed)
}

func TestStore_EvictOlderThan(t *testing.T) {
	store := New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	store.now = func() time.Time { return base }
	store.Save("old-session", testProblem(), nil)

	store.now = func() time.Time { return base.Add(20 * time.Hour) }
	store.Save("fresh-session", testProblem(), nil)

	store.now = func() time.Time { return base.Add(25 * time.Hour) }
	removed := store.EvictOlderThan(24 * time.Hour)
	assert.Equal(t, 1, removed)

	_, ok := store.Get("old-session")
	assert.False(t, ok)
	_, ok = store.Get("fresh-session")
	assert.True(t, ok)

	// A second sweep with no intervening writes removes nothing.
	assert.Equal(t, 0, store.EvictOlderThan(24*time.Hour))
}

func TestStore_EvictOlderThanKeepsBoundary(t *testing.T) {
	store := New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	store.now = func() time.Time { return base }
	store.Save("boundary", testProblem(), nil)

	// Exactly at max age the entry stays; only strictly older entries go.
	store.now = func() time.Time { return base.Add(24 * time.Hour) }
	assert.Equal(t, 0, store.EvictOlderThan(24*time.Hour))

	_, ok := store.Get("boundary")
	assert.True(t, ok)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := New()
	done := make(chan struct{})

	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				store.Save("shared", testProblem(), testSolution())
				store.Get("shared")
				store.ListSessions()
				store.UpdateSolution("shared", testSolution())
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	ctx, ok := store.Get("shared")
	require.True(t, ok)
	assert.Equal(t, "shared", ctx.SessionID)
}

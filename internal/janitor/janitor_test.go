package janitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetmind/fleetmind/pkg/contextstore"
	"github.com/fleetmind/fleetmind/pkg/vrp"
)

func TestJanitor_InvalidSchedule(t *testing.T) {
	j := New(contextstore.New(), "not a schedule", time.Hour)
	assert.Error(t, j.Start())
}

func TestJanitor_SweepEvictsStaleSessions(t *testing.T) {
	store := contextstore.New()
	store.Save("session-1", &vrp.Problem{Jobs: []vrp.Job{{Name: "j"}}}, nil)
	require.Equal(t, 1, store.Len())

	// Everything is stale against a zero max age.
	j := New(store, "@hourly", 0)
	time.Sleep(time.Millisecond)
	j.sweep()

	assert.Equal(t, 0, store.Len())
}

func TestJanitor_StartStop(t *testing.T) {
	j := New(contextstore.New(), "@every 1h", time.Hour)
	require.NoError(t, j.Start())
	assert.NotPanics(t, j.Stop)
}

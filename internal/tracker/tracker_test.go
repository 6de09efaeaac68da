package tracker

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakeyudi/tt/internal/config"
	"github.com/fakeyudi/tt/internal/logentry"
	"github.com/fakeyudi/tt/internal/registry"
	"github.com/fakeyudi/tt/internal/report"
	"github.com/fakeyudi/tt/internal/store"
)

// fakeClock is advanced by tests between operations.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) set(hour, minute int) {
	y, m, d := c.t.Date()
	c.t = time.Date(y, m, d, hour, minute, 0, 0, time.Local)
}

func newTracker(t *testing.T, prefix string) (*Tracker, *fakeClock, store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), ".tt"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.ActivitiesPath(), []byte("JIRA-1 fix\nJIRA-2 review\n"), 0o644))

	clock := &fakeClock{t: time.Date(2024, 3, 5, 9, 0, 0, 0, time.Local)}
	cfg := config.Defaults()
	cfg.Prefix = prefix
	return New(s, cfg, WithClock(clock.Now)), clock, s
}

func dayFile(t *testing.T, s store.Store, clock *fakeClock) string {
	t.Helper()
	data, err := os.ReadFile(s.DayPath(clock.t))
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	return string(data)
}

func TestAddWritesResolvedEntry(t *testing.T) {
	tr, clock, s := newTracker(t, "JIRA")

	_, err := tr.Add(AddRequest{Activity: "start"})
	require.NoError(t, err)
	clock.set(9, 15)
	l, err := tr.Add(AddRequest{Activity: "fix", Really: true})
	require.NoError(t, err)
	assert.Equal(t, logentry.KindCorrection, l.Kind)
	clock.set(10, 0)
	_, err = tr.Add(AddRequest{Activity: "42", Tags: []string{"call"}, Ago: 5 * time.Minute})
	require.NoError(t, err)

	assert.Equal(t, "09:00 start\n09:15 really JIRA-1\n10:00 09_55 JIRA-42 call\n", dayFile(t, s, clock))

	cur, ok, err := tr.Current()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "JIRA-42", cur.Activity)
}

func TestAddFailureLeavesLogUntouched(t *testing.T) {
	tr, clock, s := newTracker(t, "")

	clock.set(10, 0)
	_, err := tr.Add(AddRequest{Activity: "fix"})
	require.NoError(t, err)
	before := dayFile(t, s, clock)

	_, err = tr.Add(AddRequest{Activity: "unknown"})
	assert.ErrorIs(t, err, registry.ErrUnknownActivity)

	_, err = tr.Add(AddRequest{Activity: "7"})
	assert.ErrorIs(t, err, registry.ErrNoPrefixConfigured)

	at := logentry.NewTime(9, 0)
	_, err = tr.Add(AddRequest{Activity: "review", At: &at})
	assert.ErrorIs(t, err, logentry.ErrOutOfOrder)

	assert.Equal(t, before, dayFile(t, s, clock))
}

func TestAddRejectsTokensThatDoNotReadBack(t *testing.T) {
	tr, clock, s := newTracker(t, "")
	clock.set(10, 0)

	_, err := tr.Add(AddRequest{Activity: "+my project"})
	assert.ErrorIs(t, err, logentry.ErrMalformedLine)
	_, err = tr.Add(AddRequest{Activity: "+JIRA-2", Tags: []string{"two words"}})
	assert.ErrorIs(t, err, logentry.ErrMalformedLine)
	_, err = tr.Add(AddRequest{Activity: "fix", Tags: []string{""}})
	assert.ErrorIs(t, err, logentry.ErrMalformedLine)

	assert.Equal(t, "", dayFile(t, s, clock))
	acts, err := os.ReadFile(s.ActivitiesPath())
	require.NoError(t, err)
	assert.Equal(t, "JIRA-1 fix\nJIRA-2 review\n", string(acts))
}

func TestReallyWithActivityAndTimeIsRejected(t *testing.T) {
	tr, clock, s := newTracker(t, "")
	_, err := tr.Add(AddRequest{Activity: "review"})
	require.NoError(t, err)
	before := dayFile(t, s, clock)

	clock.set(10, 30)
	at := logentry.NewTime(9, 45)
	_, err = tr.Add(AddRequest{Activity: "fix", Really: true, At: &at})
	assert.ErrorIs(t, err, ErrReallyWithTime)
	_, err = tr.Add(AddRequest{Activity: "fix", Really: true, Ago: 10 * time.Minute})
	assert.ErrorIs(t, err, ErrReallyWithTime)

	assert.Equal(t, before, dayFile(t, s, clock))
}

func TestAddRejectsCorruptDay(t *testing.T) {
	tr, clock, s := newTracker(t, "")
	require.NoError(t, os.WriteFile(s.DayPath(clock.t), []byte("10:00 a\n09:00 b\n"), 0o644))

	_, err := tr.Add(AddRequest{Activity: "fix"})
	assert.ErrorIs(t, err, logentry.ErrOutOfOrder)
	assert.Equal(t, "10:00 a\n09:00 b\n", dayFile(t, s, clock))
}

func TestAddAfterStartIsImplicitCorrection(t *testing.T) {
	tr, clock, s := newTracker(t, "")
	_, err := tr.Add(AddRequest{Activity: "start"})
	require.NoError(t, err)

	clock.set(9, 20)
	_, err = tr.Add(AddRequest{Activity: "review", AfterStart: true})
	require.NoError(t, err)
	assert.Equal(t, "09:00 start\n09:20 really JIRA-2\n", dayFile(t, s, clock))
}

func TestReallyWithTimeMovesStart(t *testing.T) {
	tr, clock, s := newTracker(t, "")
	clock.set(9, 0)
	_, err := tr.Add(AddRequest{Activity: "fix"})
	require.NoError(t, err)
	clock.set(10, 0)
	_, err = tr.Add(AddRequest{Activity: "review"})
	require.NoError(t, err)

	clock.set(10, 5)
	at := logentry.NewTime(9, 45)
	_, err = tr.Add(AddRequest{Really: true, At: &at})
	require.NoError(t, err)
	assert.Contains(t, dayFile(t, s, clock), "10:05 really 09_45\n")

	r, err := tr.Report(report.DayWindow(clock.t), 0)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, r.Totals["JIRA-1"])
	assert.Equal(t, 20*time.Minute, r.Totals["JIRA-2"])
}

func TestOverrideRegistersShortname(t *testing.T) {
	tr, _, s := newTracker(t, "")

	l, err := tr.Add(AddRequest{Activity: "+OPS-3", Tags: []string{"=ops"}})
	require.NoError(t, err)
	assert.Equal(t, "09:00 +OPS-3 =ops", l.String())

	reg, err := s.ReadActivities("")
	require.NoError(t, err)
	a, ok := reg.Lookup("ops")
	require.True(t, ok)
	assert.Equal(t, "OPS-3", a.ID)

	// A later override taking over an existing shortname rewrites the file.
	_, err = tr.Add(AddRequest{Activity: "+OPS-4", Tags: []string{"=fix"}})
	require.NoError(t, err)
	data, err := os.ReadFile(s.ActivitiesPath())
	require.NoError(t, err)
	assert.Equal(t, "OPS-4 fix\nOPS-3 ops\nJIRA-2 review\nJIRA-1\n", string(data))
}

func TestResumeTwice(t *testing.T) {
	tr, clock, _ := newTracker(t, "")
	for i, a := range []string{"+A", "+B", "+C"} {
		clock.set(9+i, 0)
		_, err := tr.Add(AddRequest{Activity: a})
		require.NoError(t, err)
	}

	clock.set(12, 0)
	l, err := tr.Resume(1)
	require.NoError(t, err)
	assert.Equal(t, "B", l.Activity)

	clock.set(12, 30)
	l, err = tr.Resume(1)
	require.NoError(t, err)
	assert.Equal(t, "A", l.Activity)

	_, err = tr.Resume(1)
	assert.ErrorIs(t, err, ErrNothingToResume)
}

func TestIsActive(t *testing.T) {
	tr, clock, _ := newTracker(t, "")

	active, err := tr.IsActive()
	require.NoError(t, err)
	assert.False(t, active, "nothing logged")

	_, err = tr.Add(AddRequest{Activity: "fix"})
	require.NoError(t, err)
	active, err = tr.IsActive()
	require.NoError(t, err)
	assert.True(t, active)

	clock.set(12, 0)
	_, err = tr.Add(AddRequest{Activity: "break"})
	require.NoError(t, err)
	active, err = tr.IsActive()
	require.NoError(t, err)
	assert.False(t, active, "break is not active")
}

func TestReportClosesTodayAtNow(t *testing.T) {
	tr, clock, _ := newTracker(t, "")
	_, err := tr.Add(AddRequest{Activity: "fix"})
	require.NoError(t, err)

	clock.set(11, 30)
	r, err := tr.Report(report.WeekWindow(clock.t), 0)
	require.NoError(t, err)
	assert.Len(t, r.Days, 2) // Monday and Tuesday
	assert.Equal(t, 150*time.Minute, r.Totals["JIRA-1"])
	require.NotNil(t, r.Current)
	assert.Equal(t, "JIRA-1", r.Current.Activity)
}

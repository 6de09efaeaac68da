package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/fakeyudi/tt/internal/logentry"
	"github.com/fakeyudi/tt/internal/registry"
	"github.com/fakeyudi/tt/internal/timeline"
)

var tuesday = time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)

func summarizeDay(t *testing.T, date time.Time, text string) DaySummary {
	t.Helper()
	lines, err := logentry.ParseAll(strings.NewReader(text))
	require.NoError(t, err)
	tl, err := timeline.Build(lines, nil)
	require.NoError(t, err)
	return Summarize(date, tl, 0)
}

func TestDistributeInternalTimeEvenly(t *testing.T) {
	got := Distribute(map[string]time.Duration{
		"JIRA-1": 2 * time.Hour,
		"JIRA-2": 2 * time.Hour,
		"_admin": time.Hour,
	}, 0)
	assert.Equal(t, map[string]time.Duration{
		"JIRA-1": 150 * time.Minute,
		"JIRA-2": 150 * time.Minute,
	}, got)
}

func TestDistributeFoldsActivitiesBelowCutoff(t *testing.T) {
	raw := map[string]time.Duration{
		"JIRA-1": 3 * time.Hour,
		"JIRA-2": 10 * time.Minute,
		"JIRA-3": 2 * time.Hour,
		"_admin": 30 * time.Minute,
	}
	assert.Equal(t, map[string]time.Duration{
		"JIRA-1": 3*time.Hour + 20*time.Minute,
		"JIRA-3": 2*time.Hour + 20*time.Minute,
	}, Distribute(raw, 15*time.Minute))

	// Nothing reaches the cutoff: every activity keeps its own time.
	assert.Equal(t, map[string]time.Duration{
		"JIRA-2": 10 * time.Minute,
		"_admin": 30 * time.Minute,
	}, Distribute(map[string]time.Duration{"JIRA-2": 10 * time.Minute, "_admin": 30 * time.Minute}, time.Hour))
}

func TestDistributeOnlyInternalKeepsOwnBucket(t *testing.T) {
	d := summarizeDay(t, tuesday, "09:00 _admin\n10:00 break\n11:00 break\n")
	assert.Equal(t, map[string]time.Duration{"_admin": time.Hour}, d.Totals)
	assert.Equal(t, time.Hour, d.Break)
	assert.Equal(t, time.Hour, d.Work)
}

func TestSummarizeExcludesBreak(t *testing.T) {
	d := summarizeDay(t, tuesday, "08:00 JIRA-1 review\n10:00 break\n10:30 JIRA-2\n12:30 _admin\n13:30 break\n")
	assert.Equal(t, 30*time.Minute, d.Break)
	assert.Equal(t, 5*time.Hour, d.Work)
	assert.Equal(t, time.Hour, d.Internal)
	assert.Equal(t, map[string]time.Duration{
		"JIRA-1": 150 * time.Minute,
		"JIRA-2": 150 * time.Minute,
	}, d.Totals)
	assert.Equal(t, []string{"review"}, d.Tags["JIRA-1"])
	assert.Equal(t, logentry.NewTime(8, 0), d.Start)
	assert.Equal(t, logentry.NewTime(13, 30), d.End)
}

func TestSummarizeDropsResumeTags(t *testing.T) {
	d := summarizeDay(t, tuesday, "08:00 A x\n09:00 B\n10:00 A x resume:2\n11:00 break\n")
	assert.Equal(t, []string{"x"}, d.Tags["A"])
	assert.Equal(t, 2*time.Hour, d.Totals["A"])
}

// Feature: tt, Property 6: Distribution preserves work time
func TestDistributeConservesTime(t *testing.T) {
	ids := []string{"A", "B", "C", "_admin", "_meeting"}
	rapid.Check(t, func(t *rapid.T) {
		raw := map[string]time.Duration{}
		for _, id := range ids {
			if rapid.Bool().Draw(t, "has_"+id) {
				raw[id] = time.Duration(rapid.IntRange(1, 600).Draw(t, id)) * time.Minute
			}
		}
		var want, got time.Duration
		for _, d := range raw {
			want += d
		}
		cutoff := time.Duration(rapid.IntRange(0, 300).Draw(t, "cutoff")) * time.Minute
		out := Distribute(raw, cutoff)
		for _, d := range out {
			got += d
		}
		if got != want {
			t.Fatalf("sum changed: want %v, got %v", want, got)
		}
		hasTarget := false
		for id, d := range raw {
			if !logentry.IsInternal(id) && d >= cutoff {
				hasTarget = true
			}
		}
		for id, d := range raw {
			_, kept := out[id]
			if kept && hasTarget && (logentry.IsInternal(id) || d < cutoff) {
				t.Fatalf("%s kept although it should be distributed (cutoff %v)", id, cutoff)
			}
		}
	})
}

func TestWeekWindowIsMondayAligned(t *testing.T) {
	w := WeekWindow(time.Date(2024, 3, 7, 15, 0, 0, 0, time.Local)) // Thursday
	dates := w.Dates()
	require.Len(t, dates, 4)
	assert.Equal(t, time.Monday, dates[0].Weekday())
	assert.Equal(t, 4, dates[0].Day())
	assert.Equal(t, 7, dates[3].Day())

	sunday := time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)
	assert.Equal(t, 4, StartOfWeek(sunday).Day())
	assert.True(t, DayWindow(sunday).Single())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00", FormatDuration(0))
	assert.Equal(t, "2:30", FormatDuration(150*time.Minute))
	assert.Equal(t, "1:01", FormatDuration(time.Hour+30*time.Second))
	assert.Equal(t, "12:05", FormatDuration(12*time.Hour+5*time.Minute))
}

func testReport(t *testing.T) *Report {
	t.Helper()
	reg, err := registry.Load(strings.NewReader("JIRA-1 fix\n"), "")
	require.NoError(t, err)

	lines, err := logentry.ParseAll(strings.NewReader("09:00 JIRA-1\n11:00 JIRA-2\n12:00 _admin\n12:30 JIRA-1\n"))
	require.NoError(t, err)
	tl, err := timeline.Build(lines, reg)
	require.NoError(t, err)
	tl.CloseAt(logentry.NewTime(13, 0))

	cur, _ := tl.Current()
	day := Summarize(tuesday, tl, 0)
	return New(DayWindow(tuesday), []DaySummary{day}, &cur, reg)
}

func render(t *testing.T, format string, r *Report) string {
	t.Helper()
	renderer, err := RendererFor(format)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, renderer.Render(&buf, r))
	return buf.String()
}

func TestActivityFormatPrefersShortname(t *testing.T) {
	r := testReport(t)
	assert.Equal(t, "fix\n", render(t, FormatActivity, r))
	assert.Equal(t, "JIRA-1\n", render(t, FormatTicket, r))

	r.Current = nil
	assert.Equal(t, "", render(t, FormatActivity, r))
}

func TestShortAndWorktimeFormats(t *testing.T) {
	r := testReport(t)
	// JIRA-1 2:30 + JIRA-2 1:00, _admin 0:30 split in two.
	assert.Equal(t, "JIRA-1 2:45\nJIRA-2 1:15\n", render(t, FormatShort, r))
	assert.Equal(t, "4:00\n", render(t, FormatWorktime, r))
	assert.Equal(t, "JIRA-1\nJIRA-2\n", render(t, FormatTickets, r))
	assert.Equal(t, "fix 0:30 (4:00)\n", render(t, FormatStatus, r))
}

func TestLongFormat(t *testing.T) {
	out := render(t, FormatLong, testReport(t))
	assert.Contains(t, out, "2024-03-05 Tuesday  09:00 - 13:00")
	assert.Contains(t, out, "internal 0:30")
	assert.Contains(t, out, "2:45  JIRA-1 (fix)")

	empty := New(DayWindow(tuesday), []DaySummary{summarizeDay(t, tuesday, "")}, nil, nil)
	assert.Equal(t, "nothing logged for 2024-03-05\n", render(t, FormatLong, empty))
}

func TestTableFormatAlignsColumns(t *testing.T) {
	out := render(t, FormatTable, testReport(t))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "activity"))
	for _, l := range lines[1:] {
		assert.Equal(t, len(lines[0]), len(l), "row %q", l)
	}
}

func TestJSONFormat(t *testing.T) {
	out := render(t, FormatJSON, testReport(t))
	var decoded jsonReport
	require.NoError(t, sonic.UnmarshalString(out, &decoded))
	assert.Equal(t, "2024-03-05", decoded.From)
	assert.Equal(t, "JIRA-1", decoded.Current)
	assert.Equal(t, 240, decoded.WorkMin)
	assert.Equal(t, map[string]int{"JIRA-1": 165, "JIRA-2": 75}, decoded.Totals)
}

func TestCSVFormat(t *testing.T) {
	out := render(t, FormatCSV, testReport(t))
	assert.Equal(t, "date,activity,minutes\n2024-03-05,JIRA-1,165\n2024-03-05,JIRA-2,75\n", out)
}

func TestUnknownFormat(t *testing.T) {
	_, err := RendererFor("xml")
	assert.ErrorContains(t, err, "unknown format")
}

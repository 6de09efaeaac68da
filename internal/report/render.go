package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/mattn/go-runewidth"
)

// Renderer writes a report in one output format.
type Renderer interface {
	Render(w io.Writer, r *Report) error
}

// Format names.
const (
	FormatLong     = "long"
	FormatActivity = "activity"
	FormatShort    = "short"
	FormatStatus   = "status"
	FormatTicket   = "ticket"
	FormatTickets  = "tickets"
	FormatWorktime = "worktime"
	FormatTable    = "table"
	FormatJSON     = "json"
	FormatCSV      = "csv"
)

var renderers = map[string]Renderer{
	FormatLong:     &LongRenderer{},
	FormatActivity: &ActivityRenderer{},
	FormatShort:    &ShortRenderer{},
	FormatStatus:   &StatusRenderer{},
	FormatTicket:   &TicketRenderer{},
	FormatTickets:  &TicketsRenderer{},
	FormatWorktime: &WorktimeRenderer{},
	FormatTable:    &TableRenderer{},
	FormatJSON:     &JSONRenderer{},
	FormatCSV:      &CSVRenderer{},
}

// Formats lists the supported format names.
func Formats() []string {
	out := make([]string, 0, len(renderers))
	for name := range renderers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// RendererFor returns the renderer registered under name.
func RendererFor(name string) (Renderer, error) {
	r, ok := renderers[name]
	if !ok {
		return nil, fmt.Errorf("unknown format %q (valid: %s)", name, strings.Join(Formats(), ", "))
	}
	return r, nil
}

// LongRenderer renders a human-readable summary per day.
type LongRenderer struct{}

func (lr *LongRenderer) Render(w io.Writer, r *Report) error {
	var sb strings.Builder
	printed := 0
	for _, d := range r.Days {
		if d.Empty {
			continue
		}
		if printed > 0 {
			sb.WriteString("\n")
		}
		printed++
		fmt.Fprintf(&sb, "%s %s  %s - %s\n", d.Date.Format(dateLayout), d.Date.Weekday(), d.Start, d.End)
		fmt.Fprintf(&sb, "  work %s  break %s", FormatDuration(d.Work), FormatDuration(d.Break))
		if d.Internal > 0 {
			fmt.Fprintf(&sb, "  internal %s", FormatDuration(d.Internal))
		}
		sb.WriteString("\n")
		for _, e := range Sorted(d.Totals) {
			fmt.Fprintf(&sb, "  %6s  %s", FormatDuration(e.Duration), r.label(e.Activity))
			if tags := d.Tags[e.Activity]; len(tags) > 0 {
				fmt.Fprintf(&sb, "  [%s]", strings.Join(tags, " "))
			}
			sb.WriteString("\n")
		}
	}

	switch {
	case printed == 0:
		fmt.Fprintf(&sb, "nothing logged for %s\n", r.Window)
	case !r.Window.Single():
		fmt.Fprintf(&sb, "\n%s\n", r.Window)
		fmt.Fprintf(&sb, "  work %s  break %s\n", FormatDuration(r.Work()), FormatDuration(r.Break()))
		for _, e := range Sorted(r.Totals) {
			fmt.Fprintf(&sb, "  %6s  %s\n", FormatDuration(e.Duration), r.label(e.Activity))
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// ActivityRenderer prints the name of the current activity, shortname
// preferred, for shell glue. Nothing is printed when nothing is running.
type ActivityRenderer struct{}

func (ar *ActivityRenderer) Render(w io.Writer, r *Report) error {
	if r.Current == nil {
		return nil
	}
	_, err := fmt.Fprintln(w, r.displayName(r.Current.Activity))
	return err
}

// TicketRenderer prints the canonical id of the current activity.
type TicketRenderer struct{}

func (tr *TicketRenderer) Render(w io.Writer, r *Report) error {
	if r.Current == nil {
		return nil
	}
	_, err := fmt.Fprintln(w, r.Current.Activity)
	return err
}

// ShortRenderer prints one "id H:MM" line per activity of the window.
type ShortRenderer struct{}

func (sr *ShortRenderer) Render(w io.Writer, r *Report) error {
	var sb strings.Builder
	for _, e := range Sorted(r.Totals) {
		fmt.Fprintf(&sb, "%s %s\n", e.Activity, FormatDuration(e.Duration))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// StatusRenderer prints a single status-bar line: the current activity,
// how long it has been running and the work time of the window.
type StatusRenderer struct{}

func (sr *StatusRenderer) Render(w io.Writer, r *Report) error {
	if r.Current == nil {
		_, err := fmt.Fprintf(w, "idle (%s)\n", FormatDuration(r.Work()))
		return err
	}
	_, err := fmt.Fprintf(w, "%s %s (%s)\n",
		r.displayName(r.Current.Activity),
		FormatDuration(r.Current.Duration()),
		FormatDuration(r.Work()))
	return err
}

// TicketsRenderer lists the ids worked on in the window.
type TicketsRenderer struct{}

func (tr *TicketsRenderer) Render(w io.Writer, r *Report) error {
	ids := make([]string, 0, len(r.Totals))
	for id := range r.Totals {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var sb strings.Builder
	for _, id := range ids {
		sb.WriteString(id + "\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// WorktimeRenderer prints the total work time of the window.
type WorktimeRenderer struct{}

func (wr *WorktimeRenderer) Render(w io.Writer, r *Report) error {
	_, err := fmt.Fprintln(w, FormatDuration(r.Work()))
	return err
}

// TableRenderer prints one column per day and a total column.
type TableRenderer struct{}

func (tr *TableRenderer) Render(w io.Writer, r *Report) error {
	header := []string{"activity"}
	for _, d := range r.Days {
		header = append(header, d.Date.Format("Mon 01-02"))
	}
	header = append(header, "total")

	rows := [][]string{header}
	for _, e := range Sorted(r.Totals) {
		row := []string{r.label(e.Activity)}
		for _, d := range r.Days {
			row = append(row, cell(d.Totals[e.Activity]))
		}
		rows = append(rows, append(row, FormatDuration(e.Duration)))
	}
	footer := []string{"work"}
	for _, d := range r.Days {
		footer = append(footer, cell(d.Work))
	}
	rows = append(rows, append(footer, FormatDuration(r.Work())))

	widths := make([]int, len(header))
	for _, row := range rows {
		for i, c := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}

	var sb strings.Builder
	for _, row := range rows {
		for i, c := range row {
			if i > 0 {
				sb.WriteString("  ")
			}
			if i == 0 {
				sb.WriteString(runewidth.FillRight(c, widths[i]))
			} else {
				sb.WriteString(runewidth.FillLeft(c, widths[i]))
			}
		}
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func cell(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	return FormatDuration(d)
}

type jsonDay struct {
	Date     string              `json:"date"`
	Start    string              `json:"start,omitempty"`
	End      string              `json:"end,omitempty"`
	WorkMin  int                 `json:"work_minutes"`
	BreakMin int                 `json:"break_minutes"`
	Internal int                 `json:"internal_minutes"`
	Totals   map[string]int      `json:"totals"`
	Tags     map[string][]string `json:"tags,omitempty"`
}

type jsonReport struct {
	From    string         `json:"from"`
	To      string         `json:"to"`
	Current string         `json:"current,omitempty"`
	WorkMin int            `json:"work_minutes"`
	Totals  map[string]int `json:"totals"`
	Days    []jsonDay      `json:"days"`
}

// JSONRenderer renders the report as indented JSON with minute values.
type JSONRenderer struct{}

func (jr *JSONRenderer) Render(w io.Writer, r *Report) error {
	out := jsonReport{
		From:    r.Window.From.Format(dateLayout),
		To:      r.Window.To.Format(dateLayout),
		WorkMin: minutes(r.Work()),
		Totals:  minuteMap(r.Totals),
		Days:    make([]jsonDay, 0, len(r.Days)),
	}
	if r.Current != nil {
		out.Current = r.Current.Activity
	}
	for _, d := range r.Days {
		jd := jsonDay{
			Date:     d.Date.Format(dateLayout),
			WorkMin:  minutes(d.Work),
			BreakMin: minutes(d.Break),
			Internal: minutes(d.Internal),
			Totals:   minuteMap(d.Totals),
			Tags:     d.Tags,
		}
		if !d.Empty {
			jd.Start, jd.End = d.Start.String(), d.End.String()
		}
		out.Days = append(out.Days, jd)
	}

	data, err := sonic.ConfigStd.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

func minutes(d time.Duration) int {
	return int(d.Round(time.Minute) / time.Minute)
}

func minuteMap(m map[string]time.Duration) map[string]int {
	out := make(map[string]int, len(m))
	for id, d := range m {
		out[id] = minutes(d)
	}
	return out
}

// CSVRenderer writes date,activity,minutes rows.
type CSVRenderer struct{}

func (cr *CSVRenderer) Render(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "activity", "minutes"}); err != nil {
		return err
	}
	for _, d := range r.Days {
		for _, e := range Sorted(d.Totals) {
			rec := []string{d.Date.Format(dateLayout), e.Activity, strconv.Itoa(minutes(e.Duration))}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

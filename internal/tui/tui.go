// Package tui provides the Bubble Tea menu shown when tt runs without
// arguments on a terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/tt/internal/logentry"
	"github.com/fakeyudi/tt/internal/registry"
	"github.com/fakeyudi/tt/internal/timeline"
)

// ── Styles ────────────

var (
	// Title bar at the very top
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	currentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178")).
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	docStyle = lipgloss.NewStyle().Margin(1, 2)
)

// ── Choices ─────────────────

// ChoiceKind is what the user picked.
type ChoiceKind int

const (
	ChoiceNone ChoiceKind = iota
	ChoiceActivity
	ChoiceResume
	ChoiceEditLog
	ChoiceEditActivities
)

// Choice is the result of the menu.
type Choice struct {
	Kind     ChoiceKind
	Activity string // token to add, as the user would type it
	Tags     []string
	Resume   int // 1-based resume stack position
}

type item struct {
	title  string
	desc   string
	choice Choice
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + " " + i.desc }

// Items builds the menu entries: resume stack first, then break, then the
// registered activities.
func Items(frames []timeline.Frame, activities []registry.Activity, names func(string) string) []list.Item {
	var items []list.Item
	for i, f := range frames {
		items = append(items, item{
			title:  fmt.Sprintf("resume %s", names(f.Activity)),
			desc:   strings.TrimSpace(fmt.Sprintf("#%d %s %s", i+1, f.Activity, strings.Join(f.Tags, " "))),
			choice: Choice{Kind: ChoiceResume, Resume: i + 1},
		})
	}
	items = append(items, item{
		title:  logentry.Break,
		desc:   "stop working",
		choice: Choice{Kind: ChoiceActivity, Activity: logentry.Break},
	})
	for _, a := range activities {
		title := a.ID
		token := a.ID
		if a.Shortname != "" {
			title = a.Shortname
			token = a.Shortname
		}
		desc := a.ID
		if a.Internal() {
			desc += " (internal)"
		}
		items = append(items, item{
			title:  title,
			desc:   desc,
			choice: Choice{Kind: ChoiceActivity, Activity: token},
		})
	}
	return items
}

// ── Model ────────────────────

// Model is the root Bubble Tea model of the menu.
type Model struct {
	list     list.Model
	input    textinput.Model
	entering bool
	current  string
	choice   Choice
}

// New creates the menu. current is the display name of the running
// activity, empty when nothing is running.
func New(current string, items []list.Item) Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "tt"
	l.Styles.Title = titleStyle
	l.AdditionalShortHelpKeys = helpKeys
	l.AdditionalFullHelpKeys = helpKeys

	in := textinput.New()
	in.Placeholder = "activity [tags...]"
	in.Prompt = promptStyle.Render("> ")

	return Model{list: l, input: in, current: current}
}

// Choice returns what the user picked once the program has quit.
func (m Model) Choice() Choice { return m.choice }

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-2)
		return m, nil

	case tea.KeyMsg:
		if m.entering {
			return m.updateInput(msg)
		}
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.choice = Choice{}
			return m, tea.Quit
		case "enter":
			if it, ok := m.list.SelectedItem().(item); ok {
				m.choice = it.choice
				return m, tea.Quit
			}
			return m, nil
		case "r":
			m.choice = Choice{Kind: ChoiceResume, Resume: 1}
			return m, tea.Quit
		case "e":
			m.choice = Choice{Kind: ChoiceEditLog}
			return m, tea.Quit
		case "a":
			m.choice = Choice{Kind: ChoiceEditActivities}
			return m, tea.Quit
		case "+", "_":
			m.entering = true
			m.input.SetValue(msg.String())
			m.input.CursorEnd()
			return m, m.input.Focus()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.choice = Choice{}
		return m, tea.Quit
	case "esc":
		m.entering = false
		m.input.Blur()
		m.input.SetValue("")
		return m, nil
	case "enter":
		fields := strings.Fields(m.input.Value())
		if len(fields) == 0 || fields[0] == "+" {
			return m, nil
		}
		m.choice = Choice{Kind: ChoiceActivity, Activity: fields[0]}
		if len(fields) > 1 {
			m.choice.Tags = fields[1:]
		}
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var sb strings.Builder
	if m.current != "" {
		sb.WriteString("now: " + currentStyle.Render(m.current) + "\n")
	} else {
		sb.WriteString(hintStyle.Render("nothing running") + "\n")
	}
	if m.entering {
		sb.WriteString(m.input.View() + "\n")
		sb.WriteString(hintStyle.Render("enter: log  esc: back"))
		return docStyle.Render(sb.String())
	}
	sb.WriteString(m.list.View())
	return docStyle.Render(sb.String())
}

// ── Run ───────────────────

// Run shows the menu and returns the user's choice.
func Run(m Model) (Choice, error) {
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return Choice{}, fmt.Errorf("running menu: %w", err)
	}
	return final.(Model).Choice(), nil
}

// Package ui renders batch rename progress in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"relocator/internal/rename"
)

type progressModel struct {
	title   string
	events  <-chan rename.Event
	spinner spinner.Model
	prog    progress.Model
	items   []classItem
	index   map[string]int
	width   int
	done    bool
}

type classItem struct {
	name   string
	status string
	stage  rename.Stage
	err    error
}

type eventMsg rename.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model listing classes and their
// rename status. It quits once events is closed.
func NewProgressModel(title string, classes []string, events <-chan rename.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]classItem, 0, len(classes))
	index := make(map[string]int, len(classes))
	for i, name := range classes {
		items = append(items, classItem{name: name, status: "queued"})
		index[name] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(rename.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		next, cmd := m.prog.Update(msg)
		m.prog = next.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	errStyle := lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("1"))
	header := fmt.Sprintf("%s [%d/%d]", m.title, m.finished(), len(m.items))
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	const statusWidth = 10
	nameWidth := max(m.width-statusWidth-4, 20)
	for _, item := range m.items {
		status := styleStatus(item.status).Render(fmt.Sprintf("%*s", statusWidth, item.status))
		fmt.Fprintf(&b, "  %s %s\n", status, truncate(item.name, nameWidth))
		if item.err != nil {
			indent := strings.Repeat(" ", statusWidth+3)
			b.WriteString(indent + errStyle.Render(truncate(item.err.Error(), nameWidth)) + "\n")
		}
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(fraction(m.items)))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev rename.Event) tea.Cmd {
	idx, ok := m.index[ev.Class]
	if !ok {
		return nil
	}
	item := &m.items[idx]
	if label := statusLabel(ev.Stage, ev.Status); label != "" {
		item.status = label
		item.stage = ev.Stage
	}
	if ev.Status == rename.StatusError {
		item.err = ev.Err
	}
	return m.prog.SetPercent(fraction(m.items))
}

func (m *progressModel) finished() int {
	n := 0
	for _, item := range m.items {
		if item.status == "done" {
			n++
		}
	}
	return n
}

// fraction is the finished share of the batch. Classes still in flight
// count partially.
func fraction(items []classItem) float64 {
	if len(items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range items {
		switch {
		case item.status == "done" || item.status == "error":
			total += 1
		case item.stage == rename.StageCommit:
			total += 0.9
		case item.status == "planning":
			total += 0.25
		}
	}
	return total / float64(len(items))
}

func statusLabel(stage rename.Stage, status rename.Status) string {
	switch status {
	case rename.StatusQueued:
		return "queued"
	case rename.StatusDone:
		return "done"
	case rename.StatusError:
		return "error"
	case rename.StatusWorking:
		if stage == rename.StageCommit {
			return "committing"
		}
		return "planning"
	}
	return ""
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "planning", "committing":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

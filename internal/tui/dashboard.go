package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/mindflat/internal/styles"
)

// RefreshInterval is how often the dashboard reloads its data.
const RefreshInterval = 2 * time.Second

// DaemonData holds what the dashboard and the status command show.
type DaemonData struct {
	Running   bool
	PID       int
	StartTime time.Time

	InputDir  string
	OutputDir string
	Interval  time.Duration
	Watch     bool
	Tracked   int

	LastSyncTime time.Time
	FilesSynced  int
	LastErrors   int
	LogLines     []string
}

// DaemonMsg is sent when daemon data is ready
type DaemonMsg struct {
	Data *DaemonData
	Err  error
}

type refreshMsg struct{}

// DashboardModel periodically reloads DaemonData through fetch.
type DashboardModel struct {
	fetch func() (*DaemonData, error)
	data  *DaemonData
	err   error
}

// NewDashboardModel creates a dashboard fed by fetch.
func NewDashboardModel(fetch func() (*DaemonData, error)) DashboardModel {
	return DashboardModel{fetch: fetch}
}

func (m DashboardModel) Init() tea.Cmd {
	return m.load()
}

func (m DashboardModel) load() tea.Cmd {
	fetch := m.fetch
	return func() tea.Msg {
		if fetch == nil {
			return DaemonMsg{Data: &DaemonData{}}
		}
		data, err := fetch()
		return DaemonMsg{Data: data, Err: err}
	}
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.load()
		}

	case DaemonMsg:
		m.data = msg.Data
		m.err = msg.Err
		return m, tea.Tick(RefreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })

	case refreshMsg:
		return m, m.load()
	}

	return m, nil
}

func (m DashboardModel) View() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("mindflat daemon"))
	b.WriteString("\n\n")

	if m.err != nil {
		return styles.Error.Render("✗ Error: "+m.err.Error()) + "\n"
	}
	if m.data == nil {
		return b.String()
	}

	b.WriteString(RenderStatus(m.data, time.Now()))
	b.WriteString("\n")
	b.WriteString(styles.Help.Render(fmt.Sprintf("r refresh • q quit • auto-refresh: %v", RefreshInterval)))
	b.WriteString("\n")
	return b.String()
}

// RenderStatus renders d as of now. The status command prints it once; the
// dashboard redraws it.
func RenderStatus(d *DaemonData, now time.Time) string {
	var b strings.Builder
	label := func(s string) {
		b.WriteString(styles.Highlight.Render(s))
		b.WriteString("\n")
	}

	label("Daemon")
	if d.Running {
		fmt.Fprintf(&b, "  Status: %s\n", styles.Success.Render("● Running"))
		fmt.Fprintf(&b, "  PID:    %d\n", d.PID)
		if !d.StartTime.IsZero() {
			fmt.Fprintf(&b, "  Uptime: %s\n", now.Sub(d.StartTime).Round(time.Second))
		}
	} else {
		fmt.Fprintf(&b, "  Status: %s\n", styles.Dim.Render("○ Not running"))
	}
	b.WriteString("\n")

	label("Configuration")
	fmt.Fprintf(&b, "  Input:    %s\n", d.InputDir)
	fmt.Fprintf(&b, "  Output:   %s\n", d.OutputDir)
	mode := d.Interval.String()
	if d.Watch {
		mode += " + watch"
	}
	fmt.Fprintf(&b, "  Interval: %s\n", mode)
	fmt.Fprintf(&b, "  Tracked:  %s mind map(s)\n", styles.Count(d.Tracked))
	b.WriteString("\n")

	label("Last pass")
	if d.LastSyncTime.IsZero() {
		b.WriteString("  " + styles.Dim.Render("No pass completed yet") + "\n")
	} else {
		fmt.Fprintf(&b, "  When:      %s ago\n", now.Sub(d.LastSyncTime).Round(time.Second))
		fmt.Fprintf(&b, "  Converted: %s\n", styles.Count(d.FilesSynced))
		if d.LastErrors > 0 {
			fmt.Fprintf(&b, "  Errors:    %s\n", styles.Error.Render(fmt.Sprint(d.LastErrors)))
		}
	}

	if len(d.LogLines) > 0 {
		b.WriteString("\n")
		label("Recent logs")
		for _, line := range d.LogLines {
			if line == "" {
				continue
			}
			b.WriteString("  " + styles.Dim.Render(line) + "\n")
		}
	}
	return b.String()
}

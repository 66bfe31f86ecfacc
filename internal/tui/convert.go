package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/mindflat/internal/styles"
	"github.com/gerunddev/mindflat/internal/sync"
)

// recentLimit caps how many finished documents the progress view lists.
const recentLimit = 5

// DocumentMsg reports one finished document during a pass.
type DocumentMsg sync.DocumentResult

// ConvertDoneMsg is sent when the pass completes
type ConvertDoneMsg struct {
	Result *sync.SyncResult
	Err    error
}

// ConvertModel shows a spinner while a pass runs, then its summary.
type ConvertModel struct {
	spinner  spinner.Model
	dryRun   bool
	done     int
	failed   int
	recent   []string
	complete bool
	result   *sync.SyncResult
	err      error
}

// NewConvertModel creates the progress model for a conversion pass.
func NewConvertModel(dryRun bool) ConvertModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	return ConvertModel{spinner: s, dryRun: dryRun}
}

// Result returns the finished pass, or nil while it is running.
func (m ConvertModel) Result() (*sync.SyncResult, error) {
	return m.result, m.err
}

func (m ConvertModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m ConvertModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case DocumentMsg:
		if msg.Skipped {
			return m, nil
		}
		m.done++
		line := styles.Success.Render("✓ ") + filepath.Base(msg.Source)
		if msg.Err != nil {
			m.failed++
			line = styles.Error.Render("✗ ") + filepath.Base(msg.Source)
		}
		m.recent = append(m.recent, line)
		if len(m.recent) > recentLimit {
			m.recent = m.recent[len(m.recent)-recentLimit:]
		}
		return m, nil

	case ConvertDoneMsg:
		m.complete = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m ConvertModel) View() string {
	if m.complete {
		return m.summary()
	}

	var b strings.Builder
	verb := "Converting"
	if m.dryRun {
		verb = "Checking"
	}
	fmt.Fprintf(&b, "\n%s %s mind maps... %d done", m.spinner.View(), verb, m.done)
	if m.failed > 0 {
		b.WriteString(styles.Error.Render(fmt.Sprintf(", %d failed", m.failed)))
	}
	b.WriteString("\n\n")
	for _, line := range m.recent {
		b.WriteString("  " + line + "\n")
	}
	return b.String()
}

func (m ConvertModel) summary() string {
	if m.err != nil {
		return styles.Error.Render("✗ Conversion failed: "+m.err.Error()) + "\n"
	}

	took := styles.Help.Render(fmt.Sprintf("Completed in %v", m.result.Duration().Round(time.Millisecond)))

	var b strings.Builder
	switch {
	case m.result.FilesProcessed == 0 && len(m.result.Errors) == 0:
		b.WriteString(styles.Success.Render("✓ Nothing to convert"))
	case m.dryRun:
		b.WriteString(styles.Success.Render(fmt.Sprintf("✓ Would convert %d mind map(s)", m.result.FilesProcessed)))
	default:
		b.WriteString(styles.Success.Render(fmt.Sprintf("✓ Converted %d mind map(s)", m.result.FilesProcessed)))
	}
	if m.result.FilesSkipped > 0 {
		b.WriteString(styles.Dim.Render(fmt.Sprintf(", %d unchanged", m.result.FilesSkipped)))
	}
	if n := len(m.result.Errors); n > 0 {
		b.WriteString(", " + styles.Error.Render(fmt.Sprintf("%d error(s)", n)))
	}
	b.WriteString("\n")
	for _, err := range m.result.Errors {
		b.WriteString(styles.Error.Render("  ✗ "+err.Error()) + "\n")
	}
	b.WriteString(took + "\n")
	return b.String()
}

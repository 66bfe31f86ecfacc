package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/mindflat/internal/styles"
)

// Document is one row of the browser: a mind map and what it flattens to.
type Document struct {
	Name        string
	Source      string
	Output      string
	Nodes       int
	Subnodes    int
	Connections int
	Converted   bool
	Err         error
}

// BrowseMsg carries the documents to list.
type BrowseMsg struct {
	Documents []Document
	Err       error
}

// DiffMsg carries the preview for the selected document.
type DiffMsg struct {
	Content string
	Err     error
}

// DiffFunc renders the pending change for a source document.
type DiffFunc func(source string) (string, error)

// BrowseModel lists documents in a table; enter opens a diff preview.
type BrowseModel struct {
	table       table.Model
	viewport    viewport.Model
	docs        []Document
	err         error
	ready       bool
	showingDiff bool
	selected    *Document
	diff        DiffFunc
}

// NewBrowseModel creates the document browser.
func NewBrowseModel(diff DiffFunc) BrowseModel {
	columns := []table.Column{
		{Title: "Mind map", Width: 40},
		{Title: "Nodes", Width: 7},
		{Title: "Subnodes", Width: 9},
		{Title: "Links", Width: 7},
		{Title: "Status", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(20),
	)
	ts := table.DefaultStyles()
	ts.Header = styles.Header
	ts.Selected = styles.Selected
	t.SetStyles(ts)

	vp := viewport.New(100, 20)
	vp.Style = styles.Panel

	return BrowseModel{table: t, viewport: vp, diff: diff}
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-10, 3))
		m.viewport.Width = max(msg.Width-4, 20)
		m.viewport.Height = max(msg.Height-6, 3)

	case tea.KeyMsg:
		if m.showingDiff {
			switch msg.String() {
			case "q", "esc":
				m.showingDiff = false
				return m, nil
			case "ctrl+c":
				return m, tea.Quit
			}
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "enter", "d":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.docs) {
				return m, nil
			}
			m.selected = &m.docs[idx]
			m.showingDiff = true
			m.viewport.SetContent(styles.Dim.Render("Converting..."))
			m.viewport.GotoTop()
			return m, m.loadDiff(m.selected.Source)
		}
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case BrowseMsg:
		m.ready = true
		m.docs = msg.Documents
		m.err = msg.Err
		m.table.SetRows(rows(m.docs))
		return m, nil

	case DiffMsg:
		content := msg.Content
		switch {
		case msg.Err != nil:
			content = styles.Error.Render("✗ " + msg.Err.Error())
		case content == "":
			content = styles.Success.Render("✓ Output is up to date")
		}
		m.viewport.SetContent(content)
		m.viewport.GotoTop()
		return m, nil
	}

	return m, nil
}

func (m BrowseModel) loadDiff(source string) tea.Cmd {
	diff := m.diff
	return func() tea.Msg {
		if diff == nil {
			return DiffMsg{}
		}
		content, err := diff(source)
		return DiffMsg{Content: content, Err: err}
	}
}

func rows(docs []Document) []table.Row {
	out := make([]table.Row, 0, len(docs))
	for _, d := range docs {
		status := "✓ converted"
		switch {
		case d.Err != nil:
			status = "✗ broken"
		case !d.Converted:
			status = "→ pending"
		}
		out = append(out, table.Row{
			d.Name,
			fmt.Sprint(d.Nodes),
			fmt.Sprint(d.Subnodes),
			fmt.Sprint(d.Connections),
			status,
		})
	}
	return out
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("mindflat documents"))
	b.WriteString("\n\n")

	if m.err != nil {
		return styles.Error.Render("✗ Error: "+m.err.Error()) + "\n"
	}
	if !m.ready {
		return b.String()
	}

	if m.showingDiff && m.selected != nil {
		b.WriteString(styles.Highlight.Render("Diff: " + m.selected.Name))
		b.WriteString("\n\n")
		b.WriteString(m.viewport.View())
		b.WriteString("\n\n")
		b.WriteString(styles.Help.Render("↑/k up • ↓/j down • esc/q back"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(styles.Dim.Render(fmt.Sprintf("Mind maps: %d", len(m.docs))))
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n\n")
	b.WriteString(styles.Help.Render("↑/k up • ↓/j down • enter/d diff • q quit"))
	b.WriteString("\n")
	return b.String()
}

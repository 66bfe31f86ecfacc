// Package styles holds the lipgloss palette shared by the CLI and TUIs.
package styles

import (
	"regexp"
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// Palette
const (
	Background = "#2D2A2E"
	Foreground = "#FCFCFA"

	Red    = "#FF6188"
	Orange = "#FC9867"
	Yellow = "#FFD866"
	Green  = "#A9DC76"
	Cyan   = "#78DCE8"
	Purple = "#AB9DF2"

	Comment = "#727072"
	Border  = "#5B595C"
)

var (
	Success   = lipgloss.NewStyle().Foreground(lipgloss.Color(Green))
	Error     = lipgloss.NewStyle().Foreground(lipgloss.Color(Red))
	Warning   = lipgloss.NewStyle().Foreground(lipgloss.Color(Orange))
	Dim       = lipgloss.NewStyle().Foreground(lipgloss.Color(Comment))
	Title     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(Purple))
	Highlight = lipgloss.NewStyle().Foreground(lipgloss.Color(Yellow)).Bold(true)
	Link      = lipgloss.NewStyle().Foreground(lipgloss.Color(Cyan)).Underline(true)
	Spinner   = lipgloss.NewStyle().Foreground(lipgloss.Color(Purple))
	Help      = lipgloss.NewStyle().Foreground(lipgloss.Color(Comment))

	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(Purple)).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(lipgloss.Color(Border))

	Selected = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Background)).
			Background(lipgloss.Color(Yellow))

	Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(Border)).
		Padding(0, 1)
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Swatch renders a small block in a node's border color. Values lipgloss
// cannot show, including an empty color, render as a dim placeholder.
func Swatch(color string) string {
	if !hexColor.MatchString(color) {
		return Dim.Render("·")
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("■")
}

// Count renders n, dimmed when it is zero.
func Count(n int) string {
	s := strconv.Itoa(n)
	if n == 0 {
		return Dim.Render(s)
	}
	return s
}

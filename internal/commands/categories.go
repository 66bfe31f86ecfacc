package commands

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/gerunddev/mindflat/internal/emoji"
	"github.com/gerunddev/mindflat/internal/styles"
)

func newCategoriesCmd() *cobra.Command {
	var showHTML bool

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the markers mindflat recognizes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), categoriesTable(emoji.Vocabulary(), showHTML))
			return nil
		},
	}
	cmd.Flags().BoolVar(&showHTML, "html", false, "Include the HTML each marker renders to")
	return cmd
}

func categoriesTable(entries []emoji.Entry, showHTML bool) string {
	headers := []string{"Marker", "Category", "Codepoint"}
	if showHTML {
		headers = append(headers, "HTML")
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.Dim).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.Title.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, e := range entries {
		row := []string{e.Marker, e.Category, emoji.Codepoint(e.Marker)}
		if showHTML {
			row = append(row, emoji.CategoryToHTML(e.Category))
		}
		t.Row(row...)
	}
	return t.Render()
}

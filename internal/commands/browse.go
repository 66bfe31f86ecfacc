package commands

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/gerunddev/mindflat/internal/diff"
	"github.com/gerunddev/mindflat/internal/sync"
	"github.com/gerunddev/mindflat/internal/tui"
)

func newBrowseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "browse",
		Aliases: []string{"files"},
		Short:   "Browse mind maps and preview pending changes",
		RunE: func(*cobra.Command, []string) error {
			s, err := opts.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			syncer := s.syncer()
			p := tea.NewProgram(tui.NewBrowseModel(func(source string) (string, error) {
				return diff.Preview(syncer, source)
			}), tea.WithInput(os.Stdin), tea.WithAltScreen())

			go func() {
				docs, err := collectDocuments(s, syncer)
				p.Send(tui.BrowseMsg{Documents: docs, Err: err})
			}()

			_, err = p.Run()
			return err
		},
	}
}

// collectDocuments converts every mind map in memory to count what it
// flattens to. Broken maps are listed with their error.
func collectDocuments(s *session, syncer *sync.Syncer) ([]tui.Document, error) {
	sources, err := syncer.Scan()
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.cfg.InputDir, err)
	}

	docs := make([]tui.Document, 0, len(sources))
	for _, source := range sources {
		name, err := filepath.Rel(s.cfg.InputDir, source)
		if err != nil {
			name = filepath.Base(source)
		}
		doc := tui.Document{Name: name, Source: source}

		if dest, err := syncer.OutputPath(source); err == nil {
			doc.Output = dest
			if changed, err := s.state.HasChanged(s.fs, source, dest); err == nil {
				doc.Converted = !changed
			}
		}

		converted, _, err := syncer.ConvertFile(source)
		if err != nil {
			doc.Err = err
		} else {
			doc.Nodes = len(converted.Nodes)
			doc.Subnodes = len(converted.Subnodes)
			doc.Connections = len(converted.Connections)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

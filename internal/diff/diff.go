// Package diff shows what a conversion pass would change in an existing
// flattened document.
package diff

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"github.com/spf13/afero"

	"github.com/gerunddev/mindflat/internal/sync"
)

// WordWrap is the column glamour wraps rendered diffs at.
const WordWrap = 120

// Unified returns the plain unified diff from existing to fresh. It is
// empty when the two are identical.
func Unified(existing, fresh []byte, name string) string {
	before, after := string(existing), string(fresh)
	if before == after {
		return ""
	}
	edits := myers.ComputeEdits(span.URIFromPath(name), before, after)
	return fmt.Sprint(gotextdiff.ToUnified(name+" (on disk)", name+" (converted)", before, edits))
}

// Generate renders the diff from existing to fresh for the terminal.
// When glamour cannot render, the fenced plain diff is returned instead.
func Generate(existing, fresh []byte, name string) string {
	unified := Unified(existing, fresh, name)
	if unified == "" {
		return ""
	}

	fenced := fmt.Sprintf("```diff\n%s```\n", unified)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(WordWrap),
	)
	if err != nil {
		return fenced
	}
	rendered, err := renderer.Render(fenced)
	if err != nil {
		return fenced
	}
	return rendered
}

// Preview converts source afresh and diffs it against the output already on
// disk. A missing output diffs against nothing.
func Preview(s *sync.Syncer, source string) (string, error) {
	_, fresh, err := s.ConvertFile(source)
	if err != nil {
		return "", err
	}

	dest, err := s.OutputPath(source)
	if err != nil {
		return "", err
	}

	existing, err := afero.ReadFile(s.Fs(), dest)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read %s: %w", dest, err)
	}

	return Generate(existing, fresh, filepath.Base(dest)), nil
}

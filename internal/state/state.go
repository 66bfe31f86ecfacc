package state

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// DocumentState records what a source document looked like when it was
// last converted.
type DocumentState struct {
	MTime  int64  `json:"mtime"`
	Hash   string `json:"hash"`
	Output string `json:"output"`
}

// State tracks converted documents keyed by source path.
type State struct {
	mu sync.Mutex

	Documents map[string]*DocumentState `json:"documents"`
	LastRun   time.Time                 `json:"last_run,omitempty"`
}

// NewState creates a new empty state
func NewState() *State {
	return &State{
		Documents: make(map[string]*DocumentState),
	}
}

// Load reads state from path. A missing file yields an empty state.
func Load(fs afero.Fs, path string) (*State, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return nil, err
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	if st.Documents == nil {
		st.Documents = make(map[string]*DocumentState)
	}
	return &st, nil
}

// Save writes state to path
func (s *State) Save(fs afero.Fs, path string) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	s.mu.Lock()
	data, err := json.MarshalIndent(s, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// ComputeHash returns the sha256 of a file's contents.
func ComputeHash(fs afero.Fs, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("sha256:%x", h.Sum(nil)), nil
}

// HasChanged reports whether source needs converting into dest. A document
// is changed when it is untracked, when it was last written somewhere other
// than dest, when dest is missing, or when its contents differ. mtime is
// checked first to avoid hashing.
func (s *State) HasChanged(fs afero.Fs, source, dest string) (bool, error) {
	info, err := fs.Stat(source)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	doc, ok := s.Documents[source]
	var tracked DocumentState
	if ok {
		tracked = *doc
	}
	s.mu.Unlock()

	if !ok {
		return true, nil
	}

	if tracked.Output != dest {
		return true, nil
	}
	if _, err := fs.Stat(dest); err != nil {
		return true, nil
	}

	if info.ModTime().Unix() == tracked.MTime {
		return false, nil
	}

	hash, err := ComputeHash(fs, source)
	if err != nil {
		return false, err
	}
	return hash != tracked.Hash, nil
}

// Update records the current mtime and hash of source and where it was
// written to.
func (s *State) Update(fs afero.Fs, source, output string) error {
	info, err := fs.Stat(source)
	if err != nil {
		return err
	}
	hash, err := ComputeHash(fs, source)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Documents[source] = &DocumentState{
		MTime:  info.ModTime().Unix(),
		Hash:   hash,
		Output: output,
	}
	return nil
}

// Get returns a copy of the tracked state for source.
func (s *State) Get(source string) (DocumentState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.Documents[source]
	if !ok {
		return DocumentState{}, false
	}
	return *doc, true
}

// Forget drops source from the state.
func (s *State) Forget(source string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Documents, source)
}

// Prune drops every tracked document not in keep and returns the removed
// paths, sorted.
func (s *State) Prune(keep []string) []string {
	present := make(map[string]bool, len(keep))
	for _, k := range keep {
		present[k] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	for path := range s.Documents {
		if !present[path] {
			removed = append(removed, path)
			delete(s.Documents, path)
		}
	}
	sort.Strings(removed)
	return removed
}

// Sources returns all tracked source paths, sorted.
func (s *State) Sources() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.Documents))
	for path := range s.Documents {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// GetMTime returns the recorded modification time for source.
func (s *State) GetMTime(source string) time.Time {
	if doc, ok := s.Get(source); ok {
		return time.Unix(doc.MTime, 0)
	}
	return time.Time{}
}

// MarkRun stamps the time of the last completed pass.
func (s *State) MarkRun(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastRun = t
}

// LastPass returns the time stamped by MarkRun.
func (s *State) LastPass() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.LastRun
}

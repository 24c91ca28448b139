// Package dismissal keeps the per-device list of tasks a user has
// downvoted. It is never sent to the server and only hides tasks from
// this device's views.
package dismissal

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/DropBy-app/dropby/errors"

	"gopkg.in/yaml.v3"
)

// Reason explains why a task was downvoted.
type Reason string

const (
	ReasonInappropriate Reason = "inappropriate"
	ReasonTooFar        Reason = "too-far"
	ReasonTooComplex    Reason = "too-complex"
)

// Reasons lists every accepted reason.
var Reasons = []Reason{ReasonInappropriate, ReasonTooFar, ReasonTooComplex}

// Valid reports whether r is one of Reasons.
func (r Reason) Valid() bool {
	return slices.Contains(Reasons, r)
}

// State is the contents of the state file.
type State struct {
	// Downvoted is kept as a list so the file stays stable and readable.
	Downvoted []string          `yaml:"downvoted"`
	Reasons   map[string]Reason `yaml:"reasons,omitempty"`
	Username  string            `yaml:"username,omitempty"`

	path string
}

// DefaultPath returns the state file location. DROPBY_STATE overrides
// the per-user config directory.
func DefaultPath() (string, error) {
	if custom := os.Getenv("DROPBY_STATE"); custom != "" {
		return custom, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return "", fmt.Errorf("failed to determine home directory: %w", homeErr)
		}
		return filepath.Join(homeDir, ".dropby", "state.yaml"), nil
	}
	return filepath.Join(configDir, "dropby", "state.yaml"), nil
}

// Load reads the state file at path. A missing file yields empty state
// that will be created on the first Save.
func Load(path string) (*State, error) {
	s := &State{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", path, err)
	}
	s.path = path
	s.dedupe()
	return s, nil
}

// dedupe drops repeated ids from hand-edited files, keeping first occurrences.
func (s *State) dedupe() {
	seen := make(map[string]struct{}, len(s.Downvoted))
	kept := s.Downvoted[:0]
	for _, id := range s.Downvoted {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		kept = append(kept, id)
	}
	s.Downvoted = kept
}

// Path returns the file the state is saved to.
func (s *State) Path() string {
	return s.path
}

// Dismiss records id as downvoted. It reports whether id was newly added;
// dismissing an id twice keeps the first reason.
func (s *State) Dismiss(id string, reason Reason) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, errors.NewValidationError("task id is required")
	}
	if reason != "" && !reason.Valid() {
		return false, errors.NewValidationError(fmt.Sprintf("unknown downvote reason %q", reason), map[string]any{
			"allowed": Reasons,
		})
	}

	if slices.Contains(s.Downvoted, id) {
		return false, nil
	}

	s.Downvoted = append(s.Downvoted, id)
	if reason != "" {
		if s.Reasons == nil {
			s.Reasons = make(map[string]Reason)
		}
		s.Reasons[id] = reason
	}
	return true, nil
}

// Dismissed returns the downvoted ids as a set.
func (s *State) Dismissed() map[string]struct{} {
	set := make(map[string]struct{}, len(s.Downvoted))
	for _, id := range s.Downvoted {
		set[id] = struct{}{}
	}
	return set
}

// SetUsername remembers the name used for new requests.
func (s *State) SetUsername(name string) {
	s.Username = strings.TrimSpace(name)
}

// Save writes the state file, creating its directory if needed.
func (s *State) Save() error {
	if s.path == "" {
		return fmt.Errorf("state has no file path")
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create state directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

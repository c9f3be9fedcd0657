// Package store persists the active session and the candidate archive
// as a single JSON document.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/crisphire/crisp/internal/interview"
	"github.com/crisphire/crisp/internal/logger"
)

// State is the whole persisted document. Nothing outside it is ever
// written: resume text in particular stays in memory only.
type State struct {
	Session    *interview.Session    `json:"session,omitempty"`
	Candidates []interview.Candidate `json:"candidates"`
}

// Store reads and writes the state file.
type Store struct {
	path   string
	logger *zap.Logger
}

// New builds a store over the given file path.
func New(path string, log *zap.Logger) *Store {
	return &Store{path: path, logger: logger.OrNop(log)}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted state. A missing file yields an empty state;
// a corrupt one returns an error so the caller can decide to start
// fresh.
func (s *Store) Load() (State, error) {
	var state State

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("no state file yet", zap.String("path", s.path))
			return state, nil
		}
		return state, fmt.Errorf("reading state file %s: %w", s.path, err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return state, fmt.Errorf("parsing state file %s: %w", s.path, err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &state,
	})
	if err != nil {
		return state, fmt.Errorf("building state decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return state, fmt.Errorf("decoding state file %s: %w", s.path, err)
	}

	s.logger.Debug("state loaded",
		zap.String("path", s.path),
		zap.Int("candidates", len(state.Candidates)),
		zap.Bool("session", state.Session != nil),
	)

	return state, nil
}

// Save writes the state atomically enough for a single-user tool: the
// whole document is marshalled and written in one call.
func (s *Store) Save(state State) error {
	if state.Candidates == nil {
		state.Candidates = []interview.Candidate{}
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating state directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing state file %s: %w", s.path, err)
	}

	return nil
}

// Persist satisfies the session machine's persistence hook.
func (s *Store) Persist(session *interview.Session, candidates []interview.Candidate) error {
	return s.Save(State{Session: session, Candidates: candidates})
}

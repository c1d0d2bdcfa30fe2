// Package state persists monitor state as a single JSON document.
package state

import (
	"bytes"
	"encoding/json"
	"os"
	"time"

	"go.uber.org/zap"
)

// MaxHistory caps the number of retained history entries; older entries are
// silently dropped.
const MaxHistory = 100

// HistoryEntry records one observed total. Change is present only on
// detected-change entries.
type HistoryEntry struct {
	Timestamp string `json:"timestamp"`
	Total     int    `json:"total"`
	Change    int    `json:"change,omitempty"`
}

// State is the whole persisted monitor state.
//
// LastTotal == 0 doubles as the "never initialized" sentinel: a listing page
// that genuinely has zero results is indistinguishable from a first run and
// re-triggers initialization. SeenCarIDs is reserved and currently unused.
type State struct {
	LastTotal  int            `json:"last_total"`
	LastCheck  *string        `json:"last_check"`
	History    []HistoryEntry `json:"history"`
	SeenCarIDs []string       `json:"seen_car_ids"`
}

// NewState returns a zero-valued state with non-nil collections so the
// serialized form carries empty arrays rather than nulls.
func NewState() State {
	return State{
		History:    []HistoryEntry{},
		SeenCarIDs: []string{},
	}
}

// Store reads and writes the state file. All I/O is best-effort: a failed
// load yields a fresh state and a failed save is logged, never propagated.
type Store struct {
	path   string
	logger *zap.Logger
}

// New returns a Store backed by the file at path.
func New(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the state file. A missing file or unparsable content yields a
// fresh zero-valued state.
func (s *Store) Load() State {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read state file", zap.String("path", s.path), zap.Error(err))
		}
		return NewState()
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Warn("failed to parse state file", zap.String("path", s.path), zap.Error(err))
		return NewState()
	}
	if st.History == nil {
		st.History = []HistoryEntry{}
	}
	if st.SeenCarIDs == nil {
		st.SeenCarIDs = []string{}
	}
	return st
}

// Save stamps LastCheck with now and overwrites the state file with
// pretty-printed JSON. Hebrew stays literal: HTML escaping is off. Errors
// are logged; a failed save does not fail the run.
func (s *Store) Save(st *State, now time.Time) {
	stamp := now.Format(time.RFC3339)
	st.LastCheck = &stamp

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(st); err != nil {
		s.logger.Warn("failed to serialize state", zap.Error(err))
		return
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0o600); err != nil {
		s.logger.Warn("failed to write state file", zap.String("path", s.path), zap.Error(err))
	}
}

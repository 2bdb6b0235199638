package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Checkpoint records the progress of one import run so an interrupted run can
// resume without repeating committed work.
type Checkpoint struct {
	// Completed marks each phase that finished.
	Completed map[string]bool `json:"completed"`

	// Cursor is the extraction cursor for the current phase.
	Cursor string `json:"cursor,omitempty"`

	// LastProcessedIndex is the index of the last record written in the
	// current phase, -1 when the phase has not started.
	LastProcessedIndex int `json:"lastProcessedIndex"`

	// Phase is the phase currently in progress.
	Phase string `json:"phase"`

	// RunID identifies the run this checkpoint belongs to.
	RunID string `json:"runId"`

	// UpdatedAt is when the checkpoint was last written.
	UpdatedAt time.Time `json:"updatedAt"`
}

// PhaseCompleted reports whether a phase finished in a prior attempt.
func (c *Checkpoint) PhaseCompleted(phase string) bool {
	return c.Completed[phase]
}

// CheckpointStore persists checkpoints as JSON files, one per run id, in a
// local directory. Absence of a file implies a fresh run.
type CheckpointStore struct {
	// dir is the directory holding checkpoint files.
	dir string
}

// NewCheckpointStore creates a checkpoint store rooted at dir.
func NewCheckpointStore(dir string) (*CheckpointStore, error) {
	if dir == "" {
		return nil, errors.New("checkpoint directory is required")
	}
	return &CheckpointStore{dir: dir}, nil
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// NewCheckpoint creates the in-memory checkpoint for a fresh run.
func NewCheckpoint(runID string) *Checkpoint {
	return &Checkpoint{
		Completed:          map[string]bool{},
		LastProcessedIndex: -1,
		RunID:              runID,
	}
}

// Load reads the checkpoint for a run. It returns nil with no error when no
// checkpoint exists.
func (s *CheckpointStore) Load(_ context.Context, runID string) (*Checkpoint, error) {
	if runID == "" {
		return nil, errors.New("run ID is required")
	}

	data, err := os.ReadFile(s.path(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading checkpoint file: %w", err)
	}

	var checkpoint Checkpoint
	if err := json.Unmarshal(data, &checkpoint); err != nil {
		return nil, fmt.Errorf("parsing checkpoint file: %w", err)
	}
	if checkpoint.Completed == nil {
		checkpoint.Completed = map[string]bool{}
	}

	return &checkpoint, nil
}

// Save writes the checkpoint for its run, replacing any previous state.
func (s *CheckpointStore) Save(_ context.Context, checkpoint *Checkpoint) error {
	if checkpoint == nil || checkpoint.RunID == "" {
		return errors.New("checkpoint with run ID is required")
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating checkpoint directory: %w", err)
	}

	checkpoint.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(checkpoint, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding checkpoint: %w", err)
	}

	// Write-then-rename so a crash mid-write never corrupts the checkpoint.
	tmp := s.path(checkpoint.RunID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing checkpoint file: %w", err)
	}
	if err := os.Rename(tmp, s.path(checkpoint.RunID)); err != nil {
		return fmt.Errorf("replacing checkpoint file: %w", err)
	}

	return nil
}

// Clear deletes the checkpoint for a completed run.
func (s *CheckpointStore) Clear(_ context.Context, runID string) error {
	if runID == "" {
		return errors.New("run ID is required")
	}

	if err := os.Remove(s.path(runID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing checkpoint file: %w", err)
	}
	return nil
}

// LatestIncomplete returns the most recently updated checkpoint whose run did
// not finish, or nil when every prior run completed.
func (s *CheckpointStore) LatestIncomplete(ctx context.Context) (*Checkpoint, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading checkpoint directory: %w", err)
	}

	var latest *Checkpoint
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		checkpoint, err := s.Load(ctx, strings.TrimSuffix(name, ".json"))
		if err != nil || checkpoint == nil {
			continue
		}
		if latest == nil || checkpoint.UpdatedAt.After(latest.UpdatedAt) {
			latest = checkpoint
		}
	}

	return latest, nil
}

// path returns the checkpoint file path for a run.
func (s *CheckpointStore) path(runID string) string {
	return filepath.Join(s.dir, runID+".json")
}

package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/config"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/models"
	"github.com/trebuchet-org/treb-sequencer/internal/usecase"
)

// RunStoreAdapter implements RunRepository using one JSON file per run under
// <data dir>/runs/<network>/<run id>.json
type RunStoreAdapter struct {
	runsDir string
}

// NewRunStoreAdapter creates a new RunStoreAdapter
func NewRunStoreAdapter(cfg *config.RuntimeConfig) *RunStoreAdapter {
	return &RunStoreAdapter{
		runsDir: filepath.Join(cfg.DataDir, "runs"),
	}
}

// SaveRun writes a run snapshot to disk, creating the directory if needed.
func (s *RunStoreAdapter) SaveRun(_ context.Context, run *models.Run) error {
	if _, err := uuid.Parse(run.ID); err != nil {
		return fmt.Errorf("invalid run id %q: %w", run.ID, err)
	}
	if run.Network == "" || strings.ContainsAny(run.Network, `/\`) || run.Network == ".." {
		return fmt.Errorf("invalid network name %q", run.Network)
	}

	dir := filepath.Join(s.runsDir, run.Network)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create runs directory: %w", err)
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, run.ID+".json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write run file: %w", err)
	}

	return nil
}

// ListRuns returns the stored runs of a network, newest first
func (s *RunStoreAdapter) ListRuns(_ context.Context, network string) ([]*models.Run, error) {
	dir := filepath.Join(s.runsDir, network)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	var runs []*models.Run
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read run file: %w", err)
		}

		var run models.Run
		if err := json.Unmarshal(data, &run); err != nil {
			return nil, fmt.Errorf("failed to parse run file %s: %w", entry.Name(), err)
		}
		runs = append(runs, &run)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	return runs, nil
}

// Ensure RunStoreAdapter implements RunRepository
var _ usecase.RunRepository = (*RunStoreAdapter)(nil)

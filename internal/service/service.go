package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"

	"github.com/Ning0612/Snapsync/internal/core/planner"
	"github.com/Ning0612/Snapsync/internal/core/tree"
	"github.com/Ning0612/Snapsync/internal/logger"
	"github.com/Ning0612/Snapsync/internal/state"
)

// Service orchestrates the two driver flows: capturing a reference snapshot
// and planning the operations that would sync a target against it
type Service struct {
	builder *tree.Builder
	planner *planner.Planner
	store   *state.Store
	history *state.History // optional; nil disables run history
}

// New creates a service over the given filesystem
func New(fs afero.Fs, opts tree.Options) *Service {
	builder := tree.NewBuilder(fs, opts)
	return &Service{
		builder: builder,
		planner: planner.NewPlanner(builder),
		store:   state.NewStore(fs),
	}
}

// NewDefault creates a service over the OS filesystem
func NewDefault(opts tree.Options) *Service {
	return New(afero.NewOsFs(), opts)
}

// SetHistory enables run history recording
func (s *Service) SetHistory(h *state.History) {
	s.history = h
}

// Snapshot walks directory and persists its tree to statePath
func (s *Service) Snapshot(ctx context.Context, directory, statePath string) error {
	log := logger.With("mode", "snapshot", "directory", directory)
	start := time.Now()

	built, err := s.builder.Build(ctx, directory)
	if err != nil {
		s.recordRun("snapshot", directory, statePath, start, 0, 0, err)
		return fmt.Errorf("snapshot %s: %w", directory, err)
	}

	if err := s.store.Save(statePath, built); err != nil {
		s.recordRun("snapshot", directory, statePath, start, 0, built.Size(), err)
		return err
	}

	log.Info("snapshot saved",
		"state", statePath,
		"entries", built.Size(),
		"elapsed", time.Since(start))
	s.recordRun("snapshot", directory, statePath, start, 0, built.Size(), nil)
	return nil
}

// Plan loads the reference snapshot from statePath, re-walks directory and
// writes one operation per line to out. Nothing is written unless planning
// completed, so a failed run never emits a partial (unsafe) list.
func (s *Service) Plan(ctx context.Context, directory, statePath string, out io.Writer) error {
	log := logger.With("mode", "plan", "directory", directory)
	start := time.Now()

	// A bad directory argument is reported before any state I/O happens
	if err := s.builder.ValidateRoot(directory); err != nil {
		s.recordRun("plan", directory, statePath, start, 0, 0, err)
		return err
	}

	reference, err := s.store.Load(statePath)
	if err != nil {
		s.recordRun("plan", directory, statePath, start, 0, 0, err)
		return err
	}

	ops, err := s.planner.Plan(ctx, reference, directory)
	if err != nil {
		s.recordRun("plan", directory, statePath, start, 0, reference.Size(), err)
		return fmt.Errorf("plan %s: %w", directory, err)
	}

	for _, op := range ops {
		if _, err := fmt.Fprintf(out, "%s\n", op); err != nil {
			s.recordRun("plan", directory, statePath, start, len(ops), reference.Size(), err)
			return fmt.Errorf("write operation list: %w", err)
		}
	}

	log.Info("plan complete",
		"state", statePath,
		"operations", len(ops),
		"elapsed", time.Since(start))
	s.recordRun("plan", directory, statePath, start, len(ops), reference.Size(), nil)
	return nil
}

// recordRun stores a history row; failures only warn, they never fail the run
func (s *Service) recordRun(mode, directory, statePath string, start time.Time, operations, entries int, runErr error) {
	if s.history == nil {
		return
	}

	record := state.RunRecord{
		Mode:       mode,
		Directory:  directory,
		StatePath:  statePath,
		StartTime:  start,
		EndTime:    time.Now(),
		Status:     "success",
		Operations: operations,
		Entries:    entries,
	}
	if runErr != nil {
		record.Status = "failed"
		record.Error = runErr.Error()
	}

	if err := s.history.Record(record); err != nil {
		logger.Get().Warn("failed to record run history", "error", err)
	}
}

package queue

import "math"

// BeginRun marks a batch as running with zero progress.
func (s *Store) BeginRun() error {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	if s.batch.Running {
		return ErrRunInProgress
	}
	s.batch = Batch{Running: true}
	return nil
}

// SetProgress records batch progress, clamped to [0, 100]. Values below the
// current progress are ignored so progress never moves backwards within a run.
func (s *Store) SetProgress(percent float64) {
	if percent < 0 || math.IsNaN(percent) {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	if !s.batch.Running || percent < s.batch.Progress {
		return
	}
	s.batch.Progress = percent
}

// EndRun resets the batch state to idle.
func (s *Store) EndRun() {
	s.batchMu.Lock()
	s.batch = Batch{}
	s.batchMu.Unlock()
}

// Batch returns a snapshot of the batch state.
func (s *Store) Batch() Batch {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	return s.batch
}

package sync

import (
	"log/slog"
	gosync "sync"
	"time"
)

// maxRecentErrors bounds the error history retained in memory.
const maxRecentErrors = 100

// Stats accumulates counters across sync cycles. All methods are safe for
// concurrent use.
type Stats struct {
	lastSuccessfulSync time.Time
	lastSyncTime       time.Time
	mu                 gosync.Mutex
	recentErrors       []string
	totalErrors        int
	totalFetched       int
	totalSynced        int
}

// StatsSnapshot is a point-in-time copy of the accumulated counters.
type StatsSnapshot struct {
	// LastSuccessfulSync is when the last successful cycle finished.
	LastSuccessfulSync time.Time

	// LastSyncTime is when the last cycle finished, successful or not.
	LastSyncTime time.Time

	// RecentErrors holds the most recent error messages, oldest first.
	RecentErrors []string

	// TotalErrors is the number of per-record failures across all cycles.
	TotalErrors int

	// TotalFetched is the number of records fetched across all cycles.
	TotalFetched int

	// TotalSynced is the number of records written across all cycles.
	TotalSynced int
}

// recordCycle folds a cycle result into the running counters.
func (s *Stats) recordCycle(result CycleResult, at time.Time) {
	if result.Skipped {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSyncTime = at
	if result.Success {
		s.lastSuccessfulSync = at
	}

	s.totalFetched += result.FetchedCount
	s.totalSynced += result.SyncedCount
	s.totalErrors += len(result.Errors)

	for _, err := range result.Errors {
		s.recentErrors = append(s.recentErrors, err.Error())
	}
	if overflow := len(s.recentErrors) - maxRecentErrors; overflow > 0 {
		s.recentErrors = s.recentErrors[overflow:]
	}
}

// Snapshot returns a copy of the current counters.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	errs := make([]string, len(s.recentErrors))
	copy(errs, s.recentErrors)

	return StatsSnapshot{
		LastSuccessfulSync: s.lastSuccessfulSync,
		LastSyncTime:       s.lastSyncTime,
		RecentErrors:       errs,
		TotalErrors:        s.totalErrors,
		TotalFetched:       s.totalFetched,
		TotalSynced:        s.totalSynced,
	}
}

// LogValue implements slog.LogValuer so stats can be logged as a group.
func (s *Stats) LogValue() slog.Value {
	snap := s.Snapshot()

	return slog.GroupValue(
		slog.Time("lastSuccessfulSync", snap.LastSuccessfulSync),
		slog.Time("lastSyncTime", snap.LastSyncTime),
		slog.Int("recentErrors", len(snap.RecentErrors)),
		slog.Int("totalErrors", snap.TotalErrors),
		slog.Int("totalFetched", snap.TotalFetched),
		slog.Int("totalSynced", snap.TotalSynced),
	)
}

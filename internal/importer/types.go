// Package importer drives a full batch migration of customers and orders from
// Printavo into Strapi, with checkpointed resume, duplicate detection and a
// per-run session report.
package importer

import (
	"context"
	"iter"
	"time"

	"github.com/printshopos/orderbridge/internal/printavo"
	"github.com/printshopos/orderbridge/internal/storage"
	"github.com/printshopos/orderbridge/internal/strapi"
)

const (
	// PhaseCustomers imports customer records. It runs first so orders can
	// resolve their customer relation.
	PhaseCustomers = "customers"

	// PhaseOrders imports order records.
	PhaseOrders = "orders"
)

// Source defines the Printavo operations required by the importer.
type Source interface {
	// Customers returns a lazy sequence of all customers, restartable from
	// the given cursor.
	Customers(ctx context.Context, cursor string) iter.Seq2[printavo.Customer, error]

	// Orders returns a lazy sequence of all orders, restartable from the
	// given cursor.
	Orders(ctx context.Context, cursor string) iter.Seq2[printavo.Order, error]
}

// Destination defines the Strapi operations required by the importer.
type Destination interface {
	// Upsert creates or updates the record keyed by externalID.
	Upsert(ctx context.Context, collection string, externalID string, record any) (strapi.UpsertResult, error)
}

// CheckpointStore persists run progress for resume.
type CheckpointStore interface {
	// Load reads the checkpoint for a run, nil when none exists.
	Load(ctx context.Context, runID string) (*storage.Checkpoint, error)

	// Save writes the checkpoint for its run.
	Save(ctx context.Context, checkpoint *storage.Checkpoint) error

	// Clear deletes the checkpoint for a completed run.
	Clear(ctx context.Context, runID string) error
}

// RecordTracker records external-id to destination-id mappings across runs.
type RecordTracker interface {
	// Track stores the mapping for a written record.
	Track(ctx context.Context, record storage.TrackedRecord) error

	// TrackedByCollection returns every tracked mapping for one collection.
	TrackedByCollection(ctx context.Context, collection string) ([]storage.TrackedRecord, error)
}

// RecordError is one per-record failure in a batch.
type RecordError struct {
	// Error is the human-readable failure reason.
	Error string `json:"error"`

	// ExternalID is the source identifier of the failed record.
	ExternalID string `json:"externalId"`
}

// BatchResult is the immutable outcome of one batch.
type BatchResult struct {
	// BatchNumber is the 1-indexed position of the batch within its phase.
	BatchNumber int `json:"batchNumber"`

	// DuplicateCount is the number of records skipped as in-run duplicates.
	DuplicateCount int `json:"duplicateCount"`

	// Duplicates lists the external ids skipped as duplicates.
	Duplicates []string `json:"duplicates,omitempty"`

	// Duration is how long the batch took, in seconds.
	Duration float64 `json:"durationSeconds"`

	// ErrorCount is the number of records that failed.
	ErrorCount int `json:"errorCount"`

	// Errors lists the per-record failures.
	Errors []RecordError `json:"errors,omitempty"`

	// Phase is the phase this batch belongs to.
	Phase string `json:"phase"`

	// SuccessCount is the number of records written successfully.
	SuccessCount int `json:"successCount"`

	// SuccessfulRecords lists the external ids written successfully.
	SuccessfulRecords []string `json:"successfulRecords,omitempty"`

	// Total is the number of records in the batch.
	Total int `json:"total"`
}

// SessionResult aggregates every batch of a run. The counts always satisfy
// TotalProcessed == TotalSuccessful + TotalErrors + TotalDuplicates.
type SessionResult struct {
	// Batches holds the per-batch breakdown in processing order.
	Batches []BatchResult `json:"batches"`

	// CompletedAt is when the run finished.
	CompletedAt time.Time `json:"completedAt"`

	// RunID identifies the run.
	RunID string `json:"runId"`

	// StartedAt is when the run started.
	StartedAt time.Time `json:"startedAt"`

	// SuccessRate is TotalSuccessful / TotalProcessed, 0 when nothing ran.
	SuccessRate float64 `json:"successRate"`

	// TotalDuplicates is the number of in-run duplicate records skipped.
	TotalDuplicates int `json:"totalDuplicates"`

	// TotalErrors is the number of records that failed.
	TotalErrors int `json:"totalErrors"`

	// TotalProcessed is the number of records examined.
	TotalProcessed int `json:"totalProcessed"`

	// TotalSuccessful is the number of records written successfully.
	TotalSuccessful int `json:"totalSuccessful"`
}

// addBatch folds one batch outcome into the session totals.
func (s *SessionResult) addBatch(batch BatchResult) {
	s.Batches = append(s.Batches, batch)
	s.TotalDuplicates += batch.DuplicateCount
	s.TotalErrors += batch.ErrorCount
	s.TotalProcessed += batch.Total
	s.TotalSuccessful += batch.SuccessCount
}

// finalize stamps the completion time and success rate.
func (s *SessionResult) finalize() {
	s.CompletedAt = time.Now().UTC()
	if s.TotalProcessed > 0 {
		s.SuccessRate = float64(s.TotalSuccessful) / float64(s.TotalProcessed)
	}
}

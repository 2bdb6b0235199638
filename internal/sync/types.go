// Package sync provides the incremental polling loop that keeps the Strapi
// content store in step with Printavo.
package sync

import (
	"context"
	"time"

	"github.com/printshopos/orderbridge/internal/printavo"
	"github.com/printshopos/orderbridge/internal/strapi"
)

// Extractor defines the Printavo operations required by the sync service.
type Extractor interface {
	// Order fetches a single order by id.
	Order(ctx context.Context, id string) (*printavo.Order, error)

	// OrdersSince fetches orders changed since the given time, up to limit
	// records.
	OrdersSince(ctx context.Context, since time.Time, limit int) ([]printavo.Order, error)
}

// Upserter defines the Strapi operations required by the sync service.
type Upserter interface {
	// Upsert creates or updates the record keyed by externalID.
	Upsert(ctx context.Context, collection string, externalID string, record any) (strapi.UpsertResult, error)
}

// RecordTracker resolves external ids to destination ids for relation
// substitution.
type RecordTracker interface {
	// DestinationID returns the destination record id for a source external
	// id, zero when untracked.
	DestinationID(ctx context.Context, collection string, externalID string) (int, error)
}

// StateStore manages persistent state for the sync process.
type StateStore interface {
	// LastSyncTime returns the timestamp of the last successful sync cycle.
	LastSyncTime(ctx context.Context) (time.Time, error)

	// SetLastSyncTime updates the last successful sync timestamp.
	SetLastSyncTime(ctx context.Context, t time.Time) error

	// PendingOrderIDs returns order IDs fetched but not yet written.
	PendingOrderIDs(ctx context.Context) ([]string, error)

	// SetPendingOrderIDs stores the order IDs still to be written.
	SetPendingOrderIDs(ctx context.Context, ids []string) error

	// RemovePendingOrderID removes one ID after its record was written.
	RemovePendingOrderID(ctx context.Context, id string) error
}

// CycleResult contains the outcome of a single sync cycle. A cycle is
// successful when the fetch completed and either no record failed or at least
// one record synced; fetching zero records is a success.
type CycleResult struct {
	// DryRun indicates this cycle skipped writes to the destination.
	DryRun bool

	// Errors contains the per-record errors from this cycle.
	Errors []error

	// FetchedCount is the number of changed records fetched.
	FetchedCount int

	// RecordsCreated is the number of destination records created.
	RecordsCreated int

	// RecordsUpdated is the number of destination records updated.
	RecordsUpdated int

	// Skipped indicates the cycle did not run because a previous cycle was
	// still in flight. A skipped cycle is neither a success nor a failure.
	Skipped bool

	// Success indicates the cycle advanced the last successful sync time.
	Success bool

	// SyncedCount is the number of records written successfully.
	SyncedCount int
}

package sync

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/printshopos/orderbridge/internal/strapi"
)

// dryRunUpserter wraps an Upserter and logs write operations instead of
// executing them.
type dryRunUpserter struct {
	counter  atomic.Int64
	logger   *slog.Logger
	upserter Upserter
}

// newDryRunUpserter creates a dryRunUpserter that wraps the given Upserter.
func newDryRunUpserter(upserter Upserter, logger *slog.Logger) *dryRunUpserter {
	return &dryRunUpserter{
		logger:   logger,
		upserter: upserter,
	}
}

// Upsert logs what would be written and returns a fake created result.
func (d *dryRunUpserter) Upsert(ctx context.Context, collection string, externalID string, record any) (strapi.UpsertResult, error) {
	fakeID := int(d.counter.Add(1))

	d.logger.Info("[DRY-RUN] would upsert record",
		"fake_id", fakeID,
		"collection", collection,
		"external_id", externalID)

	return strapi.UpsertResult{
		Action: strapi.ActionCreated,
		ID:     fakeID,
	}, nil
}

package main

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/printshopos/orderbridge/internal/strapi"
)

// dryRunDestination logs import writes instead of executing them.
type dryRunDestination struct {
	counter atomic.Int64
	logger  *slog.Logger
}

// Upsert logs what would be written and returns a fake created result.
func (d *dryRunDestination) Upsert(_ context.Context, collection string, externalID string, _ any) (strapi.UpsertResult, error) {
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

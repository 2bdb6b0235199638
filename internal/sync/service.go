package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/printshopos/orderbridge/internal/printavo"
	"github.com/printshopos/orderbridge/internal/strapi"
	"github.com/printshopos/orderbridge/internal/transform"
)

const (
	defaultInterval = 5 * time.Minute
	defaultSyncDays = -30

	// defaultBatchLimit caps orders processed per cycle. The cap exists
	// because pending order IDs are stored in SSM Parameter Store which has a
	// 4KB size limit. With 8-character order IDs stored as comma-separated
	// values, we can safely store ~400 IDs. Setting to 300 provides headroom.
	// If you have sustained volumes exceeding 300 orders per sync interval,
	// shorten the interval rather than raising this limit.
	defaultBatchLimit = 300
)

// Service states.
const (
	StateStopped = "stopped"
	StateRunning = "running"
)

// ErrAlreadyRunning is returned by Start when the loop is already active.
var ErrAlreadyRunning = errors.New("sync service already running")

// Config holds the required configuration for creating a Service.
type Config struct {
	// BatchLimit caps orders processed per cycle. Default is 300. The cap
	// exists because pending order IDs are stored in SSM Parameter Store
	// (4KB limit). Do not exceed 400.
	BatchLimit int

	// DryRun indicates whether to skip writes to Strapi.
	DryRun bool

	// Extractor is the Printavo API client.
	Extractor Extractor

	// Interval is the delay between sync cycles. Default is 5 minutes.
	Interval time.Duration

	// Logger is the structured logger for the service.
	Logger *slog.Logger

	// SinceOverride optionally overrides the last sync time.
	SinceOverride *time.Time

	// StateStore manages sync state persistence.
	StateStore StateStore

	// Tracker resolves order customer IDs to Strapi record IDs. Optional;
	// orders sync without a customer relation when nil.
	Tracker RecordTracker

	// Upserter is the Strapi API client.
	Upserter Upserter
}

// validate checks that all required Config fields are set.
func (c *Config) validate() error {
	var errs []error
	if c.Extractor == nil {
		errs = append(errs, errors.New("extractor is required"))
	}
	if c.StateStore == nil {
		errs = append(errs, errors.New("state store is required"))
	}
	if c.Upserter == nil {
		errs = append(errs, errors.New("upserter is required"))
	}
	return errors.Join(errs...)
}

// Service runs the polling loop that keeps Strapi in step with Printavo.
type Service struct {
	batchLimit    int
	cycleActive   atomic.Bool
	done          chan struct{}
	dryRun        bool
	extractor     Extractor
	interval      time.Duration
	logger        *slog.Logger
	running       atomic.Bool
	sinceOverride *time.Time
	stateStore    StateStore
	stats         Stats
	stopCh        chan struct{}
	tracker       RecordTracker
	upserter      Upserter
}

// New creates a new sync service.
func New(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	upserter := cfg.Upserter
	if cfg.DryRun {
		upserter = newDryRunUpserter(cfg.Upserter, logger)
	}

	batchLimit := cfg.BatchLimit
	if batchLimit <= 0 {
		batchLimit = defaultBatchLimit
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}

	return &Service{
		batchLimit:    batchLimit,
		dryRun:        cfg.DryRun,
		extractor:     cfg.Extractor,
		interval:      interval,
		logger:        logger,
		sinceOverride: cfg.SinceOverride,
		stateStore:    cfg.StateStore,
		tracker:       cfg.Tracker,
		upserter:      upserter,
	}, nil
}

// State reports whether the polling loop is active.
func (s *Service) State() string {
	if s.running.Load() {
		return StateRunning
	}
	return StateStopped
}

// Stats returns the accumulated sync counters.
func (s *Service) Stats() *Stats {
	return &s.stats
}

// Start launches the polling loop. The first cycle runs immediately, then
// cycles repeat at the configured interval until Stop is called or the
// context is cancelled.
func (s *Service) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})

	go s.loop(ctx)

	s.logger.Info("sync service started", "interval", s.interval, "dry_run", s.dryRun)
	return nil
}

// Stop halts the polling loop, letting any in-flight cycle finish first.
// Stop is a no-op if the service is not running.
func (s *Service) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}

	close(s.stopCh)
	<-s.done

	s.logger.Info("sync service stopped", "stats", &s.stats)
}

// loop runs sync cycles until stopped.
func (s *Service) loop(ctx context.Context) {
	defer close(s.done)

	s.runAndRecord(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runAndRecord(ctx)
		}
	}
}

// runAndRecord runs one cycle and folds the result into the stats.
func (s *Service) runAndRecord(ctx context.Context) {
	result, err := s.RunCycle(ctx)
	if err != nil {
		s.logger.Error("sync cycle failed", "error", err)
		s.stats.recordCycle(CycleResult{Errors: []error{err}}, time.Now())
		return
	}
	s.stats.recordCycle(*result, time.Now())
}

// RunCycle executes a single sync cycle. Only one cycle runs at a time; if a
// cycle is already in flight the call returns immediately with a skipped
// result.
func (s *Service) RunCycle(ctx context.Context) (*CycleResult, error) {
	if !s.cycleActive.CompareAndSwap(false, true) {
		s.logger.Warn("previous sync cycle still running, skipping")
		return &CycleResult{DryRun: s.dryRun, Skipped: true}, nil
	}
	defer s.cycleActive.Store(false)

	result := &CycleResult{DryRun: s.dryRun}

	// Check for pending orders from a previous interrupted cycle.
	pendingIDs, err := s.stateStore.PendingOrderIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting pending order IDs: %w", err)
	}

	if len(pendingIDs) > 0 {
		return s.runResume(ctx, result, pendingIDs)
	}

	return s.runFresh(ctx, result)
}

// runFresh executes a fresh cycle, fetching all orders changed since the
// last successful sync.
func (s *Service) runFresh(ctx context.Context, result *CycleResult) (*CycleResult, error) {
	since, err := s.stateStore.LastSyncTime(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting last sync time: %w", err)
	}

	// Allow override for testing and backfills.
	if s.sinceOverride != nil {
		since = *s.sinceOverride
		s.logger.Info("using override sync time", "since", since)
	}

	if since.IsZero() {
		since = defaultSyncStart()
		s.logger.Info("initial sync detected", "since", since)
	}

	s.logger.Info("starting fresh sync cycle",
		"since", since,
		"dry_run", s.dryRun,
		"batch_limit", s.batchLimit)

	orders, err := s.extractor.OrdersSince(ctx, since, s.batchLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching changed orders: %w", err)
	}
	result.FetchedCount = len(orders)

	s.logger.Info("fetched changed orders", "count", len(orders))

	if len(orders) == 0 {
		result.Success = true
		s.finishCycle(ctx, result)
		return result, nil
	}

	// Store pending list before processing (skip in dry-run).
	if !s.dryRun {
		pendingIDs := make([]string, len(orders))
		for i, o := range orders {
			pendingIDs[i] = o.ID
		}
		if err := s.stateStore.SetPendingOrderIDs(ctx, pendingIDs); err != nil {
			return nil, fmt.Errorf("storing pending order IDs: %w", err)
		}
	}

	for _, order := range orders {
		s.syncAndRecord(ctx, result, order.ID, func(ctx context.Context) error {
			return s.syncOrder(ctx, result, order)
		})
		s.removePending(ctx, order.ID)
	}

	s.finishCycle(ctx, result)
	return result, nil
}

// runResume resumes processing from a previous interrupted cycle, refetching
// each pending order by ID so stale snapshots are never written.
func (s *Service) runResume(ctx context.Context, result *CycleResult, pendingIDs []string) (*CycleResult, error) {
	s.logger.Info("resuming interrupted sync cycle",
		"pending_count", len(pendingIDs),
		"dry_run", s.dryRun)

	result.FetchedCount = len(pendingIDs)

	for _, orderID := range pendingIDs {
		s.syncAndRecord(ctx, result, orderID, func(ctx context.Context) error {
			order, err := s.extractor.Order(ctx, orderID)
			if err != nil {
				return fmt.Errorf("fetching order %s: %w", orderID, err)
			}
			return s.syncOrder(ctx, result, *order)
		})

		// Remove from pending regardless of outcome to avoid an infinite
		// retry loop on a poisoned record.
		s.removePending(ctx, orderID)
	}

	s.finishCycle(ctx, result)
	return result, nil
}

// syncAndRecord runs one record's sync and records the outcome.
func (s *Service) syncAndRecord(ctx context.Context, result *CycleResult, orderID string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		result.Errors = append(result.Errors, err)
		s.logger.Error("failed to sync order", "order_id", orderID, "error", err)
		return
	}
	result.SyncedCount++
}

// syncOrder transforms and writes a single order.
func (s *Service) syncOrder(ctx context.Context, result *CycleResult, order printavo.Order) error {
	record, err := transform.Order(order)
	if err != nil {
		return fmt.Errorf("transforming order %s: %w", order.ID, err)
	}

	s.resolveCustomer(ctx, record)

	upsertResult, err := s.upserter.Upsert(ctx, "orders", order.ID, record)
	if err != nil {
		return fmt.Errorf("upserting order %s: %w", order.ID, err)
	}

	switch upsertResult.Action {
	case strapi.ActionCreated:
		result.RecordsCreated++
	case strapi.ActionUpdated:
		result.RecordsUpdated++
	}

	s.logger.Info("synced order",
		"order_id", order.ID,
		"strapi_id", upsertResult.ID,
		"action", upsertResult.Action)
	return nil
}

// resolveCustomer substitutes the Strapi customer record ID for the order's
// source customer ID. Resolution is best-effort; an order with an unknown
// customer syncs without the relation.
func (s *Service) resolveCustomer(ctx context.Context, record *strapi.OrderRecord) {
	if s.tracker == nil || record.SourceCustomerID == "" {
		return
	}

	id, err := s.tracker.DestinationID(ctx, "customers", record.SourceCustomerID)
	if err != nil {
		s.logger.Warn("customer lookup failed",
			"customer_id", record.SourceCustomerID,
			"error", err)
		return
	}
	if id == 0 {
		s.logger.Debug("customer not tracked, syncing order without relation",
			"customer_id", record.SourceCustomerID)
		return
	}
	record.Customer = id
}

// finishCycle settles the cycle outcome and advances the sync watermark.
// A cycle succeeds when no record failed or at least one record synced.
func (s *Service) finishCycle(ctx context.Context, result *CycleResult) {
	result.Success = len(result.Errors) == 0 || result.SyncedCount > 0

	if result.Success && !s.dryRun {
		if err := s.stateStore.SetLastSyncTime(ctx, time.Now()); err != nil {
			s.logger.Error("failed to update last sync time", "error", err)
			result.Errors = append(result.Errors, fmt.Errorf("updating last sync time: %w", err))
		}
	}

	s.logger.Info("sync cycle completed",
		"fetched", result.FetchedCount,
		"synced", result.SyncedCount,
		"created", result.RecordsCreated,
		"updated", result.RecordsUpdated,
		"errors", len(result.Errors),
		"success", result.Success,
		"dry_run", s.dryRun)
}

// removePending removes an order from the pending list after processing.
func (s *Service) removePending(ctx context.Context, orderID string) {
	if s.dryRun {
		return
	}
	if err := s.stateStore.RemovePendingOrderID(ctx, orderID); err != nil {
		s.logger.Error("failed to remove from pending", "order_id", orderID, "error", err)
	}
}

// defaultSyncStart returns the default start time for initial syncs.
func defaultSyncStart() time.Time {
	return time.Now().AddDate(0, 0, defaultSyncDays)
}

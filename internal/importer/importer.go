package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/printshopos/orderbridge/internal/printavo"
	"github.com/printshopos/orderbridge/internal/storage"
	"github.com/printshopos/orderbridge/internal/strapi"
	"github.com/printshopos/orderbridge/internal/transform"
)

const (
	defaultBatchSize  = 1000
	defaultMaxRetries = 3
	defaultRetryDelay = time.Second
)

// Config holds the required configuration for creating an Importer.
type Config struct {
	// BatchSize is the number of records per batch. Default is 1000.
	BatchSize int

	// Checkpoints persists run progress for resume.
	Checkpoints CheckpointStore

	// Destination is the Strapi upsert client.
	Destination Destination

	// Logger is the structured logger for the importer.
	Logger *slog.Logger

	// MaxRetries bounds whole-batch retries. Default is 3.
	MaxRetries int

	// ReportDir is where session reports are written. Empty disables reports.
	ReportDir string

	// RetryDelay is the base delay between batch attempts, scaled linearly
	// by the attempt number. Default is 1s.
	RetryDelay time.Duration

	// RunID identifies the run. A run restarted with the same id resumes
	// from its checkpoint.
	RunID string

	// Source is the Printavo extraction client.
	Source Source

	// Tracker records external-id to destination-id mappings across runs.
	// Optional; without it order-to-customer relations resolve only within
	// a single run.
	Tracker RecordTracker
}

// validate checks that all required Config fields are set.
func (c *Config) validate() error {
	var errs []error
	if c.Checkpoints == nil {
		errs = append(errs, errors.New("checkpoint store is required"))
	}
	if c.Destination == nil {
		errs = append(errs, errors.New("destination client is required"))
	}
	if c.RunID == "" {
		errs = append(errs, errors.New("run ID is required"))
	}
	if c.Source == nil {
		errs = append(errs, errors.New("source client is required"))
	}
	return errors.Join(errs...)
}

// Importer orchestrates a checkpointed batch migration.
type Importer struct {
	batchSize   int
	checkpoints CheckpointStore
	customerIDs map[string]int
	destination Destination
	logger      *slog.Logger
	maxRetries  int
	reportDir   string
	retryDelay  time.Duration
	runID       string
	source      Source
	tracker     RecordTracker
}

// New creates a new batch importer.
func New(cfg Config) (*Importer, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	return &Importer{
		batchSize:   batchSize,
		checkpoints: cfg.Checkpoints,
		destination: cfg.Destination,
		logger:      logger,
		maxRetries:  maxRetries,
		reportDir:   cfg.ReportDir,
		retryDelay:  retryDelay,
		runID:       cfg.RunID,
		source:      cfg.Source,
		tracker:     cfg.Tracker,
	}, nil
}

// Run executes the migration: customers first, then orders, in fixed-size
// batches. Per-record failures are recorded and skipped; a failing batch is
// retried whole and recorded as failed if retries exhaust; an extraction
// failure aborts the run with the checkpoint left at its last good point.
func (imp *Importer) Run(ctx context.Context) (*SessionResult, error) {
	session := &SessionResult{
		RunID:     imp.runID,
		StartedAt: time.Now().UTC(),
	}

	closeRunLog := imp.openRunLog()
	defer closeRunLog()

	checkpoint, err := imp.checkpoints.Load(ctx, imp.runID)
	if err != nil {
		return nil, fmt.Errorf("loading checkpoint: %w", err)
	}
	resumed := checkpoint != nil
	if checkpoint == nil {
		checkpoint = storage.NewCheckpoint(imp.runID)
	}

	imp.customerIDs = make(map[string]int)
	imp.warmCustomerIDs(ctx)

	imp.logger.Info("starting import run",
		"run_id", imp.runID,
		"resumed", resumed,
		"batch_size", imp.batchSize)

	if err := imp.runCustomersPhase(ctx, session, checkpoint); err != nil {
		session.finalize()
		imp.writeReport(session)
		return session, err
	}
	if err := imp.runOrdersPhase(ctx, session, checkpoint); err != nil {
		session.finalize()
		imp.writeReport(session)
		return session, err
	}

	if err := imp.checkpoints.Clear(ctx, imp.runID); err != nil {
		imp.logger.Error("failed to clear checkpoint", "run_id", imp.runID, "error", err)
	}

	session.finalize()
	imp.writeReport(session)

	imp.logger.Info("import run completed",
		"run_id", imp.runID,
		"processed", session.TotalProcessed,
		"successful", session.TotalSuccessful,
		"errors", session.TotalErrors,
		"duplicates", session.TotalDuplicates,
		"success_rate", session.SuccessRate)

	return session, nil
}

// runCustomersPhase imports all customers.
func (imp *Importer) runCustomersPhase(ctx context.Context, session *SessionResult, checkpoint *storage.Checkpoint) error {
	if checkpoint.PhaseCompleted(PhaseCustomers) {
		imp.logger.Info("skipping completed phase", "phase", PhaseCustomers)
		return nil
	}

	var customers []printavo.Customer
	for customer, err := range imp.source.Customers(ctx, "") {
		if err != nil {
			return fmt.Errorf("extracting customers: %w", err)
		}
		customers = append(customers, customer)
	}

	return runBatches(ctx, imp, session, checkpoint, PhaseCustomers, customers,
		func(c printavo.Customer) string { return c.ID },
		imp.importCustomer)
}

// runOrdersPhase imports all orders.
func (imp *Importer) runOrdersPhase(ctx context.Context, session *SessionResult, checkpoint *storage.Checkpoint) error {
	if checkpoint.PhaseCompleted(PhaseOrders) {
		imp.logger.Info("skipping completed phase", "phase", PhaseOrders)
		return nil
	}

	var orders []printavo.Order
	for order, err := range imp.source.Orders(ctx, "") {
		if err != nil {
			return fmt.Errorf("extracting orders: %w", err)
		}
		orders = append(orders, order)
	}

	return runBatches(ctx, imp, session, checkpoint, PhaseOrders, orders,
		func(o printavo.Order) string { return o.ID },
		imp.importOrder)
}

// importCustomer transforms and upserts one customer, recording the
// destination id for order relation resolution.
func (imp *Importer) importCustomer(ctx context.Context, customer printavo.Customer) error {
	record, err := transform.Customer(customer)
	if err != nil {
		return err
	}

	result, err := imp.destination.Upsert(ctx, "customers", record.ExternalID, record)
	if err != nil {
		return fmt.Errorf("upserting customer %s: %w", record.ExternalID, err)
	}

	imp.customerIDs[record.ExternalID] = result.ID
	imp.track(ctx, "customers", record.ExternalID, result)
	return nil
}

// importOrder transforms and upserts one order, substituting the resolved
// customer id for the source customer reference.
func (imp *Importer) importOrder(ctx context.Context, order printavo.Order) error {
	record, err := transform.Order(order)
	if err != nil {
		return err
	}

	if record.SourceCustomerID != "" {
		if id, ok := imp.customerIDs[record.SourceCustomerID]; ok {
			record.Customer = id
		} else {
			imp.logger.Debug("order customer not resolved",
				"order_id", record.ExternalID,
				"customer_id", record.SourceCustomerID)
		}
	}

	result, err := imp.destination.Upsert(ctx, "orders", record.ExternalID, record)
	if err != nil {
		return fmt.Errorf("upserting order %s: %w", record.ExternalID, err)
	}

	imp.track(ctx, "orders", record.ExternalID, result)
	return nil
}

// runBatches drives one phase's records through fixed-size batches with
// duplicate detection, whole-batch retry and per-batch checkpointing.
func runBatches[T any](
	ctx context.Context,
	imp *Importer,
	session *SessionResult,
	checkpoint *storage.Checkpoint,
	phase string,
	records []T,
	externalID func(T) string,
	process func(context.Context, T) error,
) error {
	start := 0
	if checkpoint.Phase == phase && checkpoint.LastProcessedIndex >= 0 {
		start = checkpoint.LastProcessedIndex + 1
		imp.logger.Info("resuming phase from checkpoint",
			"phase", phase,
			"start_index", start)
	} else {
		checkpoint.Phase = phase
		checkpoint.LastProcessedIndex = -1
	}

	seen := make(map[string]bool, len(records))
	// Records before the resume point were committed by a previous attempt;
	// their ids still count for duplicate detection.
	for i := 0; i < start && i < len(records); i++ {
		seen[externalID(records[i])] = true
	}

	for batchStart := start; batchStart < len(records); batchStart += imp.batchSize {
		batchEnd := min(batchStart+imp.batchSize, len(records))
		batchNumber := batchStart/imp.batchSize + 1

		batch := processBatchWithRetry(ctx, imp, phase, batchNumber,
			records[batchStart:batchEnd], seen, externalID, process)
		session.addBatch(batch)

		checkpoint.LastProcessedIndex = batchEnd - 1
		if err := imp.checkpoints.Save(ctx, checkpoint); err != nil {
			return fmt.Errorf("saving checkpoint: %w", err)
		}

		imp.logger.Info("batch completed",
			"phase", phase,
			"batch", batchNumber,
			"total", batch.Total,
			"successful", batch.SuccessCount,
			"errors", batch.ErrorCount,
			"duplicates", batch.DuplicateCount)
	}

	checkpoint.Completed[phase] = true
	checkpoint.LastProcessedIndex = -1
	if err := imp.checkpoints.Save(ctx, checkpoint); err != nil {
		return fmt.Errorf("saving checkpoint: %w", err)
	}

	return nil
}

// processBatchWithRetry runs one batch, retrying the whole batch on systemic
// failure with a linear backoff. A batch that exhausts its retries is recorded
// as failed; it never aborts the run.
func processBatchWithRetry[T any](
	ctx context.Context,
	imp *Importer,
	phase string,
	batchNumber int,
	records []T,
	seen map[string]bool,
	externalID func(T) string,
	process func(context.Context, T) error,
) BatchResult {
	// Classify duplicates once so a retry does not re-flag the batch's own
	// records.
	var duplicates []string
	work := make([]T, 0, len(records))
	for _, record := range records {
		id := externalID(record)
		if seen[id] {
			duplicates = append(duplicates, id)
			continue
		}
		seen[id] = true
		work = append(work, record)
	}

	var result BatchResult
	var lastErr error
	for attempt := 1; attempt <= imp.maxRetries; attempt++ {
		if attempt > 1 {
			imp.logger.Warn("retrying batch",
				"phase", phase,
				"batch", batchNumber,
				"attempt", attempt,
				"error", lastErr)
			if err := sleep(ctx, imp.retryDelay*time.Duration(attempt-1)); err != nil {
				lastErr = err
				break
			}
		}

		result, lastErr = processBatch(ctx, imp, phase, batchNumber, work, externalID, process)
		if lastErr == nil {
			result.DuplicateCount = len(duplicates)
			result.Duplicates = duplicates
			result.Total = len(records)
			return result
		}
	}

	// Batch failed after all attempts: every worked record counts as an error.
	imp.logger.Error("batch failed after retries",
		"phase", phase,
		"batch", batchNumber,
		"attempts", imp.maxRetries,
		"error", lastErr)

	failed := BatchResult{
		BatchNumber:    batchNumber,
		DuplicateCount: len(duplicates),
		Duplicates:     duplicates,
		ErrorCount:     len(work),
		Phase:          phase,
		Total:          len(records),
	}
	for _, record := range work {
		failed.Errors = append(failed.Errors, RecordError{
			Error:      lastErr.Error(),
			ExternalID: externalID(record),
		})
	}
	return failed
}

// processBatch runs one attempt over the batch's non-duplicate records.
// Validation failures are recorded per record; any other failure is systemic
// and fails the attempt.
func processBatch[T any](
	ctx context.Context,
	imp *Importer,
	phase string,
	batchNumber int,
	work []T,
	externalID func(T) string,
	process func(context.Context, T) error,
) (BatchResult, error) {
	startedAt := time.Now()
	result := BatchResult{
		BatchNumber: batchNumber,
		Phase:       phase,
	}

	for _, record := range work {
		err := process(ctx, record)
		if err == nil {
			result.SuccessCount++
			result.SuccessfulRecords = append(result.SuccessfulRecords, externalID(record))
			continue
		}

		var validationErr *transform.ValidationError
		if errors.As(err, &validationErr) {
			result.ErrorCount++
			result.Errors = append(result.Errors, RecordError{
				Error:      validationErr.Reason,
				ExternalID: validationErr.ExternalID,
			})
			imp.logger.Warn("record failed validation",
				"phase", phase,
				"external_id", validationErr.ExternalID,
				"reason", validationErr.Reason)
			continue
		}

		return BatchResult{}, err
	}

	result.Duration = time.Since(startedAt).Seconds()
	return result, nil
}

// warmCustomerIDs pre-loads the customer relation map from the tracker so a
// resumed or incremental run can resolve orders against customers imported in
// a previous run.
func (imp *Importer) warmCustomerIDs(ctx context.Context) {
	if imp.tracker == nil {
		return
	}

	tracked, err := imp.tracker.TrackedByCollection(ctx, "customers")
	if err != nil {
		imp.logger.Warn("failed to load tracked customers", "error", err)
		return
	}
	for _, record := range tracked {
		imp.customerIDs[record.ExternalID] = record.DestinationID
	}
	if len(tracked) > 0 {
		imp.logger.Info("loaded tracked customer mappings", "count", len(tracked))
	}
}

// track records the mapping for a written record. Tracking is best-effort.
func (imp *Importer) track(ctx context.Context, collection string, externalID string, result strapi.UpsertResult) {
	if imp.tracker == nil {
		return
	}

	err := imp.tracker.Track(ctx, storage.TrackedRecord{
		Action:        string(result.Action),
		Collection:    collection,
		DestinationID: result.ID,
		ExternalID:    externalID,
		SyncedAt:      time.Now().UTC(),
	})
	if err != nil {
		imp.logger.Warn("failed to track record",
			"collection", collection,
			"external_id", externalID,
			"error", err)
	}
}

// sleep waits for the given duration or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Package main provides the orderbridge command line interface.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/printshopos/orderbridge/internal/config"
	"github.com/printshopos/orderbridge/internal/importer"
	"github.com/printshopos/orderbridge/internal/printavo"
	"github.com/printshopos/orderbridge/internal/storage"
	"github.com/printshopos/orderbridge/internal/strapi"
	"github.com/printshopos/orderbridge/internal/sync"
)

const usage = `orderbridge syncs commerce records from Printavo into Strapi.

Usage:
  orderbridge init                 Create a sample configuration file
  orderbridge import [flags]       Run a bulk import of all customers and orders
  orderbridge sync [flags]         Run the incremental sync loop
  orderbridge push-credentials     Upload local API credentials to Secrets Manager

Flags for import:
  --batch-size N       Records per batch (default 1000)
  --checkpoint-dir D   Directory for checkpoint files (default .orderbridge/checkpoints)
  --report-dir D       Directory for session reports (default .orderbridge/reports)
  --resume RUN_ID      Resume a previous run by ID
  --dry-run            Log writes instead of executing them

Flags for sync:
  --dry-run            Log writes instead of executing them
  --interval D         Delay between cycles (default 5m)
  --once               Run a single cycle and exit
  --since T            Override the last sync time (RFC 3339)

Flags for push-credentials:
  --secret-arn ARN     Secrets Manager secret to write (default $CREDENTIALS_SECRET_ARN)
`

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "init":
		err = runInit()
	case "import":
		err = runImport(ctx, logger, os.Args[2:])
	case "sync":
		err = runSync(ctx, logger, os.Args[2:])
	case "push-credentials":
		err = runPushCredentials(ctx, logger, os.Args[2:])
	case "-h", "--help", "help":
		fmt.Fprint(os.Stderr, usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// buildClients constructs the Printavo and Strapi clients from local config.
func buildClients(logger *slog.Logger, requestDelay time.Duration) (*printavo.Client, *strapi.Client, error) {
	local, err := config.LoadLocal()
	if err != nil {
		return nil, nil, err
	}

	printavoOpts := []printavo.Option{}
	if local.Printavo.BaseURL != "" {
		printavoOpts = append(printavoOpts, printavo.WithBaseURL(local.Printavo.BaseURL))
	}
	if requestDelay > 0 {
		printavoOpts = append(printavoOpts, printavo.WithRequestDelay(requestDelay))
	}

	source, err := printavo.NewClient(local.Printavo.Email, local.Printavo.Token, printavoOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("creating printavo client: %w", err)
	}

	destination, err := strapi.NewClient(local.Strapi.BaseURL, local.Strapi.Token)
	if err != nil {
		return nil, nil, fmt.Errorf("creating strapi client: %w", err)
	}

	logger.Info("clients ready",
		"printavo_email", local.Printavo.Email,
		"strapi_url", local.Strapi.BaseURL)

	return source, destination, nil
}

// runImport executes a bulk import of all customers and orders.
func runImport(ctx context.Context, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	batchSize := fs.Int("batch-size", 1000, "records per batch")
	checkpointDir := fs.String("checkpoint-dir", ".orderbridge/checkpoints", "directory for checkpoint files")
	dryRun := fs.Bool("dry-run", false, "log writes instead of executing them")
	reportDir := fs.String("report-dir", ".orderbridge/reports", "directory for session reports")
	resume := fs.String("resume", "", "resume a previous run by ID")
	if err := fs.Parse(args); err != nil {
		return err
	}

	source, destination, err := buildClients(logger, 0)
	if err != nil {
		return err
	}

	if err := destination.WaitHealthy(ctx, 30*time.Second, 2*time.Second); err != nil {
		return fmt.Errorf("strapi is not reachable: %w", err)
	}

	checkpoints, err := storage.NewCheckpointStore(*checkpointDir)
	if err != nil {
		return fmt.Errorf("creating checkpoint store: %w", err)
	}

	runID := *resume
	if runID == "" {
		// Pick up an interrupted run automatically before starting fresh.
		if latest, err := checkpoints.LatestIncomplete(ctx); err == nil && latest != nil {
			runID = latest.RunID
			logger.Info("resuming interrupted import", "run_id", runID)
		}
	}
	if runID == "" {
		runID = storage.NewRunID()
	}

	var dest importer.Destination = destination
	if *dryRun {
		dest = &dryRunDestination{logger: logger}
	}

	imp, err := importer.New(importer.Config{
		BatchSize:   *batchSize,
		Checkpoints: checkpoints,
		Destination: dest,
		Logger:      logger,
		ReportDir:   *reportDir,
		RunID:       runID,
		Source:      source,
	})
	if err != nil {
		return fmt.Errorf("creating importer: %w", err)
	}

	session, err := imp.Run(ctx)
	if err != nil {
		return fmt.Errorf("import run %s: %w", runID, err)
	}

	if session.TotalErrors > 0 {
		return fmt.Errorf("import run %s finished with %d failed records", runID, session.TotalErrors)
	}
	return nil
}

// runSync runs the incremental sync loop. The watermark and pending list are
// held in process memory for the lifetime of the command; use the Lambda
// deployment for durable watermarks.
func runSync(ctx context.Context, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "log writes instead of executing them")
	interval := fs.Duration("interval", 5*time.Minute, "delay between cycles")
	once := fs.Bool("once", false, "run a single cycle and exit")
	since := fs.String("since", "", "override the last sync time (RFC 3339)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	source, destination, err := buildClients(logger, 0)
	if err != nil {
		return err
	}

	startFrom := time.Now().AddDate(0, 0, -30)
	var sinceOverride *time.Time
	if *since != "" {
		t, err := time.Parse(time.RFC3339, *since)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}
		startFrom = t
		sinceOverride = &t
	}

	var stateStore sync.StateStore = storage.NewMemoryStateStore(startFrom)
	if *dryRun {
		stateStore = storage.NewNoopStateStore(startFrom)
	}

	svc, err := sync.New(sync.Config{
		DryRun:        *dryRun,
		Extractor:     source,
		Interval:      *interval,
		Logger:        logger,
		SinceOverride: sinceOverride,
		StateStore:    stateStore,
		Upserter:      destination,
	})
	if err != nil {
		return fmt.Errorf("creating sync service: %w", err)
	}

	if *once {
		result, err := svc.RunCycle(ctx)
		if err != nil {
			return err
		}
		if !result.Success && !result.Skipped {
			return fmt.Errorf("sync cycle failed with %d record errors", len(result.Errors))
		}
		return nil
	}

	if err := svc.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("shutting down")
	svc.Stop()
	return nil
}

// runPushCredentials uploads the local config's API credentials to the
// Secrets Manager secret the Lambda deployment reads, so a token rotated
// locally propagates without a redeploy.
func runPushCredentials(ctx context.Context, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("push-credentials", flag.ExitOnError)
	secretARN := fs.String("secret-arn", os.Getenv(config.EnvCredentialsSecretARN), "Secrets Manager secret to write")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *secretARN == "" {
		return fmt.Errorf("--secret-arn or %s is required", config.EnvCredentialsSecretARN)
	}

	local, err := config.LoadLocal()
	if err != nil {
		return err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("loading AWS config: %w", err)
	}

	store, err := storage.NewCredentialsStore(secretsmanager.NewFromConfig(awsCfg), *secretARN)
	if err != nil {
		return fmt.Errorf("creating credentials store: %w", err)
	}

	if err := store.SaveCredentials(ctx, storage.Credentials{
		PrintavoEmail: local.Printavo.Email,
		PrintavoToken: local.Printavo.Token,
		StrapiToken:   local.Strapi.Token,
	}); err != nil {
		return err
	}

	logger.Info("credentials pushed", "secret_arn", *secretARN)
	return nil
}

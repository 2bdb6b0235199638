// Package main provides the Lambda handler entry point for orderbridge.
// Each invocation runs a single sync cycle; durable state lives in SSM
// Parameter Store and DynamoDB.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/printshopos/orderbridge/internal/config"
	"github.com/printshopos/orderbridge/internal/printavo"
	"github.com/printshopos/orderbridge/internal/storage"
	"github.com/printshopos/orderbridge/internal/strapi"
	"github.com/printshopos/orderbridge/internal/sync"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	lambda.Start(handler)
}

func handler(ctx context.Context) error {
	logger := slog.Default()
	logger.InfoContext(ctx, "starting sync invocation")

	svc, err := buildService(ctx, logger)
	if err != nil {
		return fmt.Errorf("initializing sync service: %w", err)
	}

	result, err := svc.RunCycle(ctx)
	if err != nil {
		return fmt.Errorf("running sync cycle: %w", err)
	}
	if result.Skipped {
		logger.InfoContext(ctx, "sync cycle skipped, previous cycle still running")
		return nil
	}

	logger.InfoContext(ctx, "sync invocation complete",
		"fetched", result.FetchedCount,
		"synced", result.SyncedCount,
		"errors", len(result.Errors),
		"success", result.Success)

	if !result.Success {
		return fmt.Errorf("sync cycle failed with %d record errors", len(result.Errors))
	}
	return nil
}

// buildService wires the sync service from environment configuration and AWS
// clients.
func buildService(ctx context.Context, logger *slog.Logger) (*sync.Service, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	printavoEmail := settings.Printavo.Email
	printavoToken := settings.Printavo.Token
	strapiToken := settings.Strapi.Token

	if settings.CredentialsSecretARN != "" {
		credStore, err := storage.NewCredentialsStore(
			secretsmanager.NewFromConfig(awsCfg), settings.CredentialsSecretARN)
		if err != nil {
			return nil, fmt.Errorf("creating credentials store: %w", err)
		}
		creds, err := credStore.Credentials(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading credentials: %w", err)
		}
		printavoEmail = creds.PrintavoEmail
		printavoToken = creds.PrintavoToken
		strapiToken = creds.StrapiToken
	}

	extractor, err := printavo.NewClient(printavoEmail, printavoToken,
		printavo.WithBaseURL(settings.Printavo.BaseURL),
		printavo.WithRequestDelay(settings.Printavo.RequestDelay))
	if err != nil {
		return nil, fmt.Errorf("creating printavo client: %w", err)
	}

	upserter, err := strapi.NewClient(settings.Strapi.BaseURL, strapiToken)
	if err != nil {
		return nil, fmt.Errorf("creating strapi client: %w", err)
	}

	stateStore, err := storage.NewStateStore(
		ssm.NewFromConfig(awsCfg), settings.SSM.ParameterName)
	if err != nil {
		return nil, fmt.Errorf("creating state store: %w", err)
	}

	tracker, err := storage.NewRecordTracker(
		dynamodb.NewFromConfig(awsCfg), settings.DynamoDB.TableName, settings.DynamoDB.IndexName)
	if err != nil {
		return nil, fmt.Errorf("creating record tracker: %w", err)
	}

	return sync.New(sync.Config{
		BatchLimit: settings.Sync.BatchLimit,
		Extractor:  extractor,
		Interval:   settings.Sync.Interval,
		Logger:     logger,
		StateStore: stateStore,
		Tracker:    tracker,
		Upserter:   upserter,
	})
}

// Package config provides configuration loading from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// EnvCredentialsSecretARN is the Secrets Manager ARN storing API credentials.
	EnvCredentialsSecretARN = "CREDENTIALS_SECRET_ARN"

	// EnvDynamoDBIndexName is the DynamoDB Global Secondary Index for per-collection queries.
	EnvDynamoDBIndexName = "DYNAMODB_INDEX_NAME"

	// EnvDynamoDBTableName is the DynamoDB table for tracking synced records.
	EnvDynamoDBTableName = "DYNAMODB_TABLE_NAME"

	// EnvImportBatchSize is the number of records per import batch.
	EnvImportBatchSize = "IMPORT_BATCH_SIZE"

	// EnvImportCheckpointDir is the directory for import checkpoint files.
	EnvImportCheckpointDir = "IMPORT_CHECKPOINT_DIR"

	// EnvImportReportDir is the directory for import session reports.
	EnvImportReportDir = "IMPORT_REPORT_DIR"

	// EnvPrintavoBaseURL is the Printavo GraphQL endpoint URL.
	EnvPrintavoBaseURL = "PRINTAVO_BASE_URL"

	// EnvPrintavoEmail is the account email for Printavo API authentication.
	EnvPrintavoEmail = "PRINTAVO_EMAIL"

	// EnvPrintavoRequestDelay is the delay between Printavo API requests.
	EnvPrintavoRequestDelay = "PRINTAVO_REQUEST_DELAY"

	// EnvPrintavoToken is the API token for Printavo.
	EnvPrintavoToken = "PRINTAVO_TOKEN"

	// EnvSSMParameterName is the SSM parameter storing the last sync timestamp.
	EnvSSMParameterName = "SSM_PARAMETER_NAME"

	// EnvStrapiBaseURL is the base URL for the Strapi instance.
	EnvStrapiBaseURL = "STRAPI_BASE_URL"

	// EnvStrapiToken is the bearer token for the Strapi REST API.
	EnvStrapiToken = "STRAPI_TOKEN"

	// EnvSyncBatchLimit caps orders processed per sync cycle.
	EnvSyncBatchLimit = "SYNC_BATCH_LIMIT"

	// EnvSyncInterval is the delay between sync cycles.
	EnvSyncInterval = "SYNC_INTERVAL"
)

// DynamoDB holds AWS DynamoDB configuration.
type DynamoDB struct {
	// IndexName is the Global Secondary Index name for querying records by collection.
	IndexName string

	// TableName is the name of the DynamoDB table for tracking synced records.
	TableName string
}

// Import holds bulk import configuration.
type Import struct {
	// BatchSize is the number of records per import batch.
	BatchSize int

	// CheckpointDir is the directory for checkpoint files.
	CheckpointDir string

	// ReportDir is the directory for session reports.
	ReportDir string
}

// Printavo holds Printavo API configuration.
type Printavo struct {
	// BaseURL is the GraphQL endpoint URL.
	BaseURL string

	// Email is the account email for authentication.
	Email string

	// RequestDelay is the delay between API requests.
	RequestDelay time.Duration

	// Token is the API token for authentication.
	Token string
}

// SSM holds AWS Systems Manager Parameter Store configuration.
type SSM struct {
	// ParameterName is the SSM parameter storing the last sync timestamp.
	ParameterName string
}

// Strapi holds Strapi REST API configuration.
type Strapi struct {
	// BaseURL is the base URL of the Strapi instance.
	BaseURL string

	// Token is the bearer token for authentication.
	Token string
}

// Sync holds sync loop configuration.
type Sync struct {
	// BatchLimit caps orders processed per cycle.
	BatchLimit int

	// Interval is the delay between sync cycles.
	Interval time.Duration
}

// Settings holds all configuration for the application.
type Settings struct {
	// CredentialsSecretARN is the Secrets Manager ARN storing API credentials.
	// When set, Printavo and Strapi tokens are loaded from Secrets Manager
	// instead of the environment.
	CredentialsSecretARN string

	// DynamoDB contains AWS DynamoDB settings.
	DynamoDB DynamoDB

	// Import contains bulk import settings.
	Import Import

	// Printavo contains Printavo API settings.
	Printavo Printavo

	// SSM contains AWS Systems Manager Parameter Store settings.
	SSM SSM

	// Strapi contains Strapi REST API settings.
	Strapi Strapi

	// Sync contains sync loop settings.
	Sync Sync
}

func (s *Settings) validate() error {
	var errs []error

	if s.DynamoDB.TableName == "" {
		errs = append(errs, requiredError(EnvDynamoDBTableName))
	}
	if s.SSM.ParameterName == "" {
		errs = append(errs, requiredError(EnvSSMParameterName))
	}
	if s.Strapi.BaseURL == "" {
		errs = append(errs, requiredError(EnvStrapiBaseURL))
	}

	// Credentials come from either the environment or Secrets Manager.
	if s.CredentialsSecretARN == "" {
		if s.Printavo.Email == "" {
			errs = append(errs, requiredError(EnvPrintavoEmail))
		}
		if s.Printavo.Token == "" {
			errs = append(errs, requiredError(EnvPrintavoToken))
		}
		if s.Strapi.Token == "" {
			errs = append(errs, requiredError(EnvStrapiToken))
		}
	}

	return errors.Join(errs...)
}

// Load reads configuration from environment variables.
func Load() (*Settings, error) {
	var errs []error

	cfg := &Settings{
		CredentialsSecretARN: strings.TrimSpace(os.Getenv(EnvCredentialsSecretARN)),
		DynamoDB: DynamoDB{
			IndexName: envOrDefault(EnvDynamoDBIndexName, "collection-index"),
			TableName: strings.TrimSpace(os.Getenv(EnvDynamoDBTableName)),
		},
		Import: Import{
			BatchSize:     envIntOrDefault(EnvImportBatchSize, 1000, &errs),
			CheckpointDir: envOrDefault(EnvImportCheckpointDir, ".orderbridge/checkpoints"),
			ReportDir:     envOrDefault(EnvImportReportDir, ".orderbridge/reports"),
		},
		Printavo: Printavo{
			BaseURL:      envOrDefault(EnvPrintavoBaseURL, "https://www.printavo.com/api/v2/graphql"),
			Email:        strings.TrimSpace(os.Getenv(EnvPrintavoEmail)),
			RequestDelay: envDurationOrDefault(EnvPrintavoRequestDelay, 600*time.Millisecond, &errs),
			Token:        strings.TrimSpace(os.Getenv(EnvPrintavoToken)),
		},
		SSM: SSM{
			ParameterName: strings.TrimSpace(os.Getenv(EnvSSMParameterName)),
		},
		Strapi: Strapi{
			BaseURL: strings.TrimSpace(os.Getenv(EnvStrapiBaseURL)),
			Token:   strings.TrimSpace(os.Getenv(EnvStrapiToken)),
		},
		Sync: Sync{
			BatchLimit: envIntOrDefault(EnvSyncBatchLimit, 300, &errs),
			Interval:   envDurationOrDefault(EnvSyncInterval, 5*time.Minute, &errs),
		},
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func envOrDefault(key string, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func envDurationOrDefault(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be a duration (e.g. 5m): %w", key, err))
		return defaultValue
	}
	return d
}

func envIntOrDefault(key string, defaultValue int, errs *[]error) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be an integer: %w", key, err))
		return defaultValue
	}
	return n
}

func requiredError(envVar string) error {
	return fmt.Errorf("%s is required", envVar)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Cannot use t.Parallel() with t.Setenv().
	tests := map[string]struct {
		envVars      map[string]string
		errFragments []string
		wantSettings *Settings
		wantErr      bool
	}{
		"all required vars set": {
			envVars: map[string]string{
				EnvDynamoDBTableName: "orderbridge-records",
				EnvPrintavoEmail:     "ops@printshop.example",
				EnvPrintavoToken:     "printavo-token",
				EnvSSMParameterName:  "/orderbridge/last-sync-time",
				EnvStrapiBaseURL:     "https://cms.printshop.example",
				EnvStrapiToken:       "strapi-token",
			},
			wantErr: false,
			wantSettings: &Settings{
				DynamoDB: DynamoDB{
					IndexName: "collection-index",
					TableName: "orderbridge-records",
				},
				Import: Import{
					BatchSize:     1000,
					CheckpointDir: ".orderbridge/checkpoints",
					ReportDir:     ".orderbridge/reports",
				},
				Printavo: Printavo{
					BaseURL:      "https://www.printavo.com/api/v2/graphql",
					Email:        "ops@printshop.example",
					RequestDelay: 600 * time.Millisecond,
					Token:        "printavo-token",
				},
				SSM: SSM{
					ParameterName: "/orderbridge/last-sync-time",
				},
				Strapi: Strapi{
					BaseURL: "https://cms.printshop.example",
					Token:   "strapi-token",
				},
				Sync: Sync{
					BatchLimit: 300,
					Interval:   5 * time.Minute,
				},
			},
		},
		"custom tuning values": {
			envVars: map[string]string{
				EnvDynamoDBIndexName:    "records-by-collection",
				EnvDynamoDBTableName:    "orderbridge-records",
				EnvImportBatchSize:      "250",
				EnvPrintavoBaseURL:      "https://printavo.test/graphql",
				EnvPrintavoEmail:        "ops@printshop.example",
				EnvPrintavoRequestDelay: "250ms",
				EnvPrintavoToken:        "printavo-token",
				EnvSSMParameterName:     "/orderbridge/last-sync-time",
				EnvStrapiBaseURL:        "https://cms.printshop.example",
				EnvStrapiToken:          "strapi-token",
				EnvSyncBatchLimit:       "150",
				EnvSyncInterval:         "15m",
			},
			wantErr: false,
			wantSettings: &Settings{
				DynamoDB: DynamoDB{
					IndexName: "records-by-collection",
					TableName: "orderbridge-records",
				},
				Import: Import{
					BatchSize:     250,
					CheckpointDir: ".orderbridge/checkpoints",
					ReportDir:     ".orderbridge/reports",
				},
				Printavo: Printavo{
					BaseURL:      "https://printavo.test/graphql",
					Email:        "ops@printshop.example",
					RequestDelay: 250 * time.Millisecond,
					Token:        "printavo-token",
				},
				SSM: SSM{
					ParameterName: "/orderbridge/last-sync-time",
				},
				Strapi: Strapi{
					BaseURL: "https://cms.printshop.example",
					Token:   "strapi-token",
				},
				Sync: Sync{
					BatchLimit: 150,
					Interval:   15 * time.Minute,
				},
			},
		},
		"secrets manager ARN replaces env credentials": {
			envVars: map[string]string{
				EnvCredentialsSecretARN: "arn:aws:secretsmanager:us-east-1:123456789012:secret:orderbridge",
				EnvDynamoDBTableName:    "orderbridge-records",
				EnvSSMParameterName:     "/orderbridge/last-sync-time",
				EnvStrapiBaseURL:        "https://cms.printshop.example",
			},
			wantErr: false,
			wantSettings: &Settings{
				CredentialsSecretARN: "arn:aws:secretsmanager:us-east-1:123456789012:secret:orderbridge",
				DynamoDB: DynamoDB{
					IndexName: "collection-index",
					TableName: "orderbridge-records",
				},
				Import: Import{
					BatchSize:     1000,
					CheckpointDir: ".orderbridge/checkpoints",
					ReportDir:     ".orderbridge/reports",
				},
				Printavo: Printavo{
					BaseURL:      "https://www.printavo.com/api/v2/graphql",
					RequestDelay: 600 * time.Millisecond,
				},
				SSM: SSM{
					ParameterName: "/orderbridge/last-sync-time",
				},
				Strapi: Strapi{
					BaseURL: "https://cms.printshop.example",
				},
				Sync: Sync{
					BatchLimit: 300,
					Interval:   5 * time.Minute,
				},
			},
		},
		"whitespace only values treated as empty": {
			envVars: map[string]string{
				EnvDynamoDBTableName: "orderbridge-records",
				EnvPrintavoEmail:     "   ",
				EnvPrintavoToken:     "printavo-token",
				EnvSSMParameterName:  "/orderbridge/last-sync-time",
				EnvStrapiBaseURL:     "https://cms.printshop.example",
				EnvStrapiToken:       "strapi-token",
			},
			wantErr:      true,
			errFragments: []string{EnvPrintavoEmail + " is required"},
		},
		"missing all required vars": {
			envVars: map[string]string{},
			wantErr: true,
			errFragments: []string{
				EnvDynamoDBTableName + " is required",
				EnvPrintavoEmail + " is required",
				EnvPrintavoToken + " is required",
				EnvSSMParameterName + " is required",
				EnvStrapiBaseURL + " is required",
				EnvStrapiToken + " is required",
			},
		},
		"invalid interval": {
			envVars: map[string]string{
				EnvDynamoDBTableName: "orderbridge-records",
				EnvPrintavoEmail:     "ops@printshop.example",
				EnvPrintavoToken:     "printavo-token",
				EnvSSMParameterName:  "/orderbridge/last-sync-time",
				EnvStrapiBaseURL:     "https://cms.printshop.example",
				EnvStrapiToken:       "strapi-token",
				EnvSyncInterval:      "often",
			},
			wantErr:      true,
			errFragments: []string{EnvSyncInterval + " must be a duration"},
		},
		"invalid batch size": {
			envVars: map[string]string{
				EnvDynamoDBTableName: "orderbridge-records",
				EnvImportBatchSize:   "lots",
				EnvPrintavoEmail:     "ops@printshop.example",
				EnvPrintavoToken:     "printavo-token",
				EnvSSMParameterName:  "/orderbridge/last-sync-time",
				EnvStrapiBaseURL:     "https://cms.printshop.example",
				EnvStrapiToken:       "strapi-token",
			},
			wantErr:      true,
			errFragments: []string{EnvImportBatchSize + " must be an integer"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			// Set environment variables for this test.
			for k, v := range tc.envVars {
				t.Setenv(k, v)
			}

			settings, err := Load()

			if tc.wantErr {
				require.Error(t, err)
				for _, fragment := range tc.errFragments {
					require.Contains(t, err.Error(), fragment)
				}
				require.Nil(t, settings)
			} else {
				require.NoError(t, err)
				require.Equal(t, tc.wantSettings, settings)
			}
		})
	}
}

func TestEnvOrDefault(t *testing.T) {
	// Cannot use t.Parallel() with t.Setenv().
	tests := map[string]struct {
		defaultVal string
		envKey     string
		envVal     string
		setEnv     bool
		want       string
	}{
		"returns env value when set": {
			envKey:     "TEST_VAR",
			envVal:     "custom-value",
			setEnv:     true,
			defaultVal: "default-value",
			want:       "custom-value",
		},
		"returns default when not set": {
			envKey:     "TEST_VAR_UNSET",
			setEnv:     false,
			defaultVal: "default-value",
			want:       "default-value",
		},
		"returns default when empty": {
			envKey:     "TEST_VAR_EMPTY",
			envVal:     "",
			setEnv:     true,
			defaultVal: "default-value",
			want:       "default-value",
		},
		"trims whitespace": {
			envKey:     "TEST_VAR_WHITESPACE",
			envVal:     "  trimmed  ",
			setEnv:     true,
			defaultVal: "default-value",
			want:       "trimmed",
		},
		"returns default when only whitespace": {
			envKey:     "TEST_VAR_ONLY_WHITESPACE",
			envVal:     "   ",
			setEnv:     true,
			defaultVal: "default-value",
			want:       "default-value",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if tc.setEnv {
				t.Setenv(tc.envKey, tc.envVal)
			}

			got := envOrDefault(tc.envKey, tc.defaultVal)

			require.Equal(t, tc.want, got)
		})
	}
}

func TestEnvDurationOrDefault(t *testing.T) {
	// Cannot use t.Parallel() with t.Setenv().
	tests := map[string]struct {
		envVal  string
		setEnv  bool
		want    time.Duration
		wantErr bool
	}{
		"returns parsed duration": {
			envVal: "90s",
			setEnv: true,
			want:   90 * time.Second,
		},
		"returns default when not set": {
			setEnv: false,
			want:   time.Minute,
		},
		"records error for unparseable value": {
			envVal:  "soon",
			setEnv:  true,
			want:    time.Minute,
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if tc.setEnv {
				t.Setenv("TEST_DURATION_VAR", tc.envVal)
			}

			var errs []error
			got := envDurationOrDefault("TEST_DURATION_VAR", time.Minute, &errs)

			require.Equal(t, tc.want, got)
			if tc.wantErr {
				require.NotEmpty(t, errs)
			} else {
				require.Empty(t, errs)
			}
		})
	}
}

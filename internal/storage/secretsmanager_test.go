package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/require"
)

type mockSecretsManagerAPI struct {
	getSecretValueFunc func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	putSecretValueFunc func(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
}

func (m *mockSecretsManagerAPI) GetSecretValue(
	ctx context.Context,
	params *secretsmanager.GetSecretValueInput,
	optFns ...func(*secretsmanager.Options),
) (*secretsmanager.GetSecretValueOutput, error) {
	return m.getSecretValueFunc(ctx, params, optFns...)
}

func (m *mockSecretsManagerAPI) PutSecretValue(
	ctx context.Context,
	params *secretsmanager.PutSecretValueInput,
	optFns ...func(*secretsmanager.Options),
) (*secretsmanager.PutSecretValueOutput, error) {
	return m.putSecretValueFunc(ctx, params, optFns...)
}

func TestNewCredentialsStore(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		client    SecretsManagerAPI
		secretARN string
		wantErr   bool
		errMsg    string
	}{
		"valid inputs": {
			client:    &mockSecretsManagerAPI{},
			secretARN: "arn:aws:secretsmanager:us-east-1:123456789012:secret:test",
			wantErr:   false,
		},
		"nil client": {
			client:    nil,
			secretARN: "arn:aws:secretsmanager:us-east-1:123456789012:secret:test",
			wantErr:   true,
			errMsg:    "secrets manager client is required",
		},
		"empty secret ARN": {
			client:    &mockSecretsManagerAPI{},
			secretARN: "",
			wantErr:   true,
			errMsg:    "secret ARN is required",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			store, err := NewCredentialsStore(tc.client, tc.secretARN)

			if tc.wantErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.errMsg)
				require.Nil(t, store)
			} else {
				require.NoError(t, err)
				require.NotNil(t, store)
			}
		})
	}
}

func TestCredentialsStore_Credentials(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		client  *mockSecretsManagerAPI
		errMsg  string
		want    Credentials
		wantErr bool
	}{
		"returns credentials": {
			client: &mockSecretsManagerAPI{
				getSecretValueFunc: func(_ context.Context, _ *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
					return &secretsmanager.GetSecretValueOutput{
						SecretString: aws.String(`{"printavoEmail":"shop@example.com","printavoToken":"ptok","strapiToken":"stok"}`),
					}, nil
				},
			},
			want: Credentials{
				PrintavoEmail: "shop@example.com",
				PrintavoToken: "ptok",
				StrapiToken:   "stok",
			},
		},
		"no string value": {
			client: &mockSecretsManagerAPI{
				getSecretValueFunc: func(_ context.Context, _ *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
					return &secretsmanager.GetSecretValueOutput{}, nil
				},
			},
			wantErr: true,
			errMsg:  "secret has no string value",
		},
		"malformed secret": {
			client: &mockSecretsManagerAPI{
				getSecretValueFunc: func(_ context.Context, _ *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
					return &secretsmanager.GetSecretValueOutput{
						SecretString: aws.String("not json"),
					}, nil
				},
			},
			wantErr: true,
			errMsg:  "parsing credentials secret",
		},
		"secrets manager error": {
			client: &mockSecretsManagerAPI{
				getSecretValueFunc: func(_ context.Context, _ *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
					return nil, errors.New("access denied")
				},
			},
			wantErr: true,
			errMsg:  "getting secret from Secrets Manager",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			store, err := NewCredentialsStore(tc.client, "arn:aws:secretsmanager:us-east-1:123456789012:secret:test")
			require.NoError(t, err)

			got, err := store.Credentials(context.Background())

			if tc.wantErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.errMsg)
			} else {
				require.NoError(t, err)
				require.Equal(t, tc.want, got)
			}
		})
	}
}

func TestCredentialsStore_SaveCredentials(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		creds   Credentials
		errMsg  string
		wantErr bool
	}{
		"valid credentials": {
			creds: Credentials{
				PrintavoEmail: "shop@example.com",
				PrintavoToken: "ptok",
				StrapiToken:   "stok",
			},
		},
		"empty credentials": {
			creds:   Credentials{},
			wantErr: true,
			errMsg:  "credentials cannot be empty",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var stored string
			client := &mockSecretsManagerAPI{
				putSecretValueFunc: func(_ context.Context, params *secretsmanager.PutSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error) {
					stored = *params.SecretString
					return &secretsmanager.PutSecretValueOutput{}, nil
				},
			}

			store, err := NewCredentialsStore(client, "arn:aws:secretsmanager:us-east-1:123456789012:secret:test")
			require.NoError(t, err)

			err = store.SaveCredentials(context.Background(), tc.creds)

			if tc.wantErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.errMsg)
				return
			}
			require.NoError(t, err)

			var roundTripped Credentials
			require.NoError(t, json.Unmarshal([]byte(stored), &roundTripped))
			require.Equal(t, tc.creds, roundTripped)
		})
	}
}

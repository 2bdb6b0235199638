package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsManagerAPI defines the Secrets Manager operations used by the
// credentials store.
type SecretsManagerAPI interface {
	// GetSecretValue retrieves a secret value.
	GetSecretValue(
		ctx context.Context,
		params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.GetSecretValueOutput, error)

	// PutSecretValue stores a secret value.
	PutSecretValue(
		ctx context.Context,
		params *secretsmanager.PutSecretValueInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.PutSecretValueOutput, error)
}

// Credentials holds the API credentials for both sides of the bridge.
type Credentials struct {
	// PrintavoEmail is the account email for Printavo API auth.
	PrintavoEmail string `json:"printavoEmail"`

	// PrintavoToken is the Printavo API token.
	PrintavoToken string `json:"printavoToken"`

	// StrapiToken is the Strapi API bearer token.
	StrapiToken string `json:"strapiToken"`
}

// CredentialsStore manages API credentials in AWS Secrets Manager.
type CredentialsStore struct {
	// client is the Secrets Manager API client.
	client SecretsManagerAPI

	// secretARN is the ARN of the secret storing the credentials JSON.
	secretARN string
}

// Credentials returns the current credentials from Secrets Manager.
func (s *CredentialsStore) Credentials(ctx context.Context) (Credentials, error) {
	output, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.secretARN),
	})
	if err != nil {
		return Credentials{}, fmt.Errorf("getting secret from Secrets Manager: %w", err)
	}

	if output.SecretString == nil {
		return Credentials{}, errors.New("secret has no string value")
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(*output.SecretString), &creds); err != nil {
		return Credentials{}, fmt.Errorf("parsing credentials secret: %w", err)
	}

	return creds, nil
}

// SaveCredentials stores rotated credentials in Secrets Manager.
func (s *CredentialsStore) SaveCredentials(ctx context.Context, creds Credentials) error {
	if creds.PrintavoToken == "" && creds.StrapiToken == "" {
		return errors.New("credentials cannot be empty")
	}

	payload, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	_, err = s.client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(s.secretARN),
		SecretString: aws.String(string(payload)),
	})
	if err != nil {
		return fmt.Errorf("putting secret to Secrets Manager: %w", err)
	}

	return nil
}

// NewCredentialsStore creates a new Secrets Manager-backed credentials store.
func NewCredentialsStore(client SecretsManagerAPI, secretARN string) (*CredentialsStore, error) {
	if client == nil {
		return nil, errors.New("secrets manager client is required")
	}
	if secretARN == "" {
		return nil, errors.New("secret ARN is required")
	}

	return &CredentialsStore{
		client:    client,
		secretARN: secretARN,
	}, nil
}

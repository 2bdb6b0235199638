package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// SSMAPI defines the SSM operations used by the state store.
type SSMAPI interface {
	// GetParameter retrieves a parameter from SSM.
	GetParameter(
		ctx context.Context,
		params *ssm.GetParameterInput,
		optFns ...func(*ssm.Options),
	) (*ssm.GetParameterOutput, error)

	// PutParameter stores a parameter in SSM.
	PutParameter(
		ctx context.Context,
		params *ssm.PutParameterInput,
		optFns ...func(*ssm.Options),
	) (*ssm.PutParameterOutput, error)
}

// StateStore manages sync state in AWS SSM Parameter Store.
type StateStore struct {
	// client is the SSM API client.
	client SSMAPI

	// lastSyncParameterName is the SSM parameter name for last sync time.
	lastSyncParameterName string

	// pendingParameterName is the SSM parameter name for pending order IDs.
	pendingParameterName string
}

// LastSyncTime returns the timestamp of the last successful sync cycle.
func (s *StateStore) LastSyncTime(ctx context.Context) (time.Time, error) {
	output, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name: aws.String(s.lastSyncParameterName),
	})
	if err != nil {
		// Parameter not found is not an error - return zero time.
		var notFoundErr *types.ParameterNotFound
		if errors.As(err, &notFoundErr) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("getting parameter from SSM: %w", err)
	}

	if output.Parameter == nil || output.Parameter.Value == nil {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.RFC3339, *output.Parameter.Value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing time from parameter: %w", err)
	}

	return t, nil
}

// SetLastSyncTime updates the last successful sync timestamp.
func (s *StateStore) SetLastSyncTime(ctx context.Context, t time.Time) error {
	_, err := s.client.PutParameter(ctx, &ssm.PutParameterInput{
		Name:      aws.String(s.lastSyncParameterName),
		Overwrite: aws.Bool(true),
		Type:      types.ParameterTypeString,
		Value:     aws.String(t.Format(time.RFC3339)),
	})
	if err != nil {
		return fmt.Errorf("putting parameter to SSM: %w", err)
	}

	return nil
}

// PendingOrderIDs returns the list of order IDs fetched but not yet written.
func (s *StateStore) PendingOrderIDs(ctx context.Context) ([]string, error) {
	output, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name: aws.String(s.pendingParameterName),
	})
	if err != nil {
		var notFoundErr *types.ParameterNotFound
		if errors.As(err, &notFoundErr) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting pending orders from SSM: %w", err)
	}

	if output.Parameter == nil || output.Parameter.Value == nil {
		return nil, nil
	}

	value := *output.Parameter.Value
	if value == "" {
		return nil, nil
	}

	// Store as comma-separated for efficiency (saves ~4 bytes per ID vs JSON).
	return strings.Split(value, ","), nil
}

// SetPendingOrderIDs stores the list of order IDs still to be written.
func (s *StateStore) SetPendingOrderIDs(ctx context.Context, ids []string) error {
	value := strings.Join(ids, ",")

	_, err := s.client.PutParameter(ctx, &ssm.PutParameterInput{
		Name:      aws.String(s.pendingParameterName),
		Overwrite: aws.Bool(true),
		Type:      types.ParameterTypeString,
		Value:     aws.String(value),
	})
	if err != nil {
		return fmt.Errorf("putting pending orders to SSM: %w", err)
	}

	return nil
}

// RemovePendingOrderID removes a single ID from the pending list after its
// record has been written.
func (s *StateStore) RemovePendingOrderID(ctx context.Context, id string) error {
	ids, err := s.PendingOrderIDs(ctx)
	if err != nil {
		return fmt.Errorf("getting pending IDs: %w", err)
	}

	// Filter out the processed ID.
	remaining := make([]string, 0, len(ids))
	for _, existingID := range ids {
		if existingID != id {
			remaining = append(remaining, existingID)
		}
	}

	return s.SetPendingOrderIDs(ctx, remaining)
}

// StateStoreOption configures a StateStore.
type StateStoreOption func(*StateStore)

// WithPendingParameter sets the SSM parameter name for pending order IDs.
func WithPendingParameter(name string) StateStoreOption {
	return func(s *StateStore) {
		s.pendingParameterName = name
	}
}

// NewStateStore creates a new SSM-backed state store.
func NewStateStore(client SSMAPI, lastSyncParameterName string, opts ...StateStoreOption) (*StateStore, error) {
	if client == nil {
		return nil, errors.New("ssm client is required")
	}
	if lastSyncParameterName == "" {
		return nil, errors.New("parameter name is required")
	}

	store := &StateStore{
		client:                client,
		lastSyncParameterName: lastSyncParameterName,
	}

	for _, opt := range opts {
		opt(store)
	}

	// Default pending parameter name if not set.
	if store.pendingParameterName == "" {
		store.pendingParameterName = strings.TrimSuffix(lastSyncParameterName, "last-sync-time") + "pending-orders"
	}

	return store, nil
}

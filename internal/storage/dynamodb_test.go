package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
)

type mockDynamoDBClient struct {
	getItemFunc func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	putItemFunc func(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	queryFunc   func(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

func (m *mockDynamoDBClient) GetItem(
	ctx context.Context,
	params *dynamodb.GetItemInput,
	optFns ...func(*dynamodb.Options),
) (*dynamodb.GetItemOutput, error) {
	if m.getItemFunc != nil {
		return m.getItemFunc(ctx, params, optFns...)
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (m *mockDynamoDBClient) PutItem(
	ctx context.Context,
	params *dynamodb.PutItemInput,
	optFns ...func(*dynamodb.Options),
) (*dynamodb.PutItemOutput, error) {
	if m.putItemFunc != nil {
		return m.putItemFunc(ctx, params, optFns...)
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDynamoDBClient) Query(
	ctx context.Context,
	params *dynamodb.QueryInput,
	optFns ...func(*dynamodb.Options),
) (*dynamodb.QueryOutput, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, params, optFns...)
	}
	return &dynamodb.QueryOutput{}, nil
}

func TestNewRecordTracker(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		client    DynamoDBAPI
		errMsg    string
		indexName string
		tableName string
		wantErr   bool
	}{
		"valid inputs": {
			client:    &mockDynamoDBClient{},
			indexName: "collection-index",
			tableName: "record-mappings",
			wantErr:   false,
		},
		"nil client": {
			client:    nil,
			indexName: "collection-index",
			tableName: "record-mappings",
			wantErr:   true,
			errMsg:    "dynamodb client is required",
		},
		"empty table name": {
			client:    &mockDynamoDBClient{},
			indexName: "collection-index",
			tableName: "",
			wantErr:   true,
			errMsg:    "table name is required",
		},
		"empty index name": {
			client:    &mockDynamoDBClient{},
			indexName: "",
			tableName: "record-mappings",
			wantErr:   true,
			errMsg:    "index name is required",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tracker, err := NewRecordTracker(tc.client, tc.tableName, tc.indexName)

			if tc.wantErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.errMsg)
				require.Nil(t, tracker)
			} else {
				require.NoError(t, err)
				require.NotNil(t, tracker)
			}
		})
	}
}

func TestRecordTracker_DestinationID(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		client     *mockDynamoDBClient
		collection string
		errMsg     string
		externalID string
		want       int
		wantErr    bool
	}{
		"returns id when tracked": {
			client: &mockDynamoDBClient{
				getItemFunc: func(_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
					key, ok := params.Key["record_key"].(*types.AttributeValueMemberS)
					require.True(t, ok)
					require.Equal(t, "orders#21199730", key.Value)
					return &dynamodb.GetItemOutput{
						Item: map[string]types.AttributeValue{
							"destination_id": &types.AttributeValueMemberN{Value: "42"},
						},
					}, nil
				},
			},
			collection: "orders",
			externalID: "21199730",
			want:       42,
		},
		"returns zero when not tracked": {
			client: &mockDynamoDBClient{
				getItemFunc: func(_ context.Context, _ *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
					return &dynamodb.GetItemOutput{Item: nil}, nil
				},
			},
			collection: "orders",
			externalID: "21199730",
			want:       0,
		},
		"empty collection": {
			client:     &mockDynamoDBClient{},
			collection: "",
			externalID: "21199730",
			wantErr:    true,
			errMsg:     "collection is required",
		},
		"empty external id": {
			client:     &mockDynamoDBClient{},
			collection: "orders",
			externalID: "",
			wantErr:    true,
			errMsg:     "external ID is required",
		},
		"dynamodb error": {
			client: &mockDynamoDBClient{
				getItemFunc: func(_ context.Context, _ *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
					return nil, errors.New("dynamodb error")
				},
			},
			collection: "orders",
			externalID: "21199730",
			wantErr:    true,
			errMsg:     "getting item from DynamoDB",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tracker, err := NewRecordTracker(tc.client, "record-mappings", "collection-index")
			require.NoError(t, err)

			got, err := tracker.DestinationID(context.Background(), tc.collection, tc.externalID)

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

func TestRecordTracker_Track(t *testing.T) {
	t.Parallel()

	syncedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		errMsg  string
		record  TrackedRecord
		wantErr bool
	}{
		"valid record": {
			record: TrackedRecord{
				Action:        "created",
				Collection:    "orders",
				DestinationID: 42,
				ExternalID:    "21199730",
				SyncedAt:      syncedAt,
			},
		},
		"missing collection": {
			record: TrackedRecord{
				DestinationID: 42,
				ExternalID:    "21199730",
			},
			wantErr: true,
			errMsg:  "collection is required",
		},
		"missing external id": {
			record: TrackedRecord{
				Collection:    "orders",
				DestinationID: 42,
			},
			wantErr: true,
			errMsg:  "external ID is required",
		},
		"non-positive destination id": {
			record: TrackedRecord{
				Collection: "orders",
				ExternalID: "21199730",
			},
			wantErr: true,
			errMsg:  "destination ID must be positive",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var stored map[string]types.AttributeValue
			client := &mockDynamoDBClient{
				putItemFunc: func(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
					stored = params.Item
					return &dynamodb.PutItemOutput{}, nil
				},
			}

			tracker, err := NewRecordTracker(client, "record-mappings", "collection-index")
			require.NoError(t, err)

			err = tracker.Track(context.Background(), tc.record)

			if tc.wantErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.errMsg)
				return
			}
			require.NoError(t, err)

			key, ok := stored["record_key"].(*types.AttributeValueMemberS)
			require.True(t, ok)
			require.Equal(t, "orders#21199730", key.Value)

			id, ok := stored["destination_id"].(*types.AttributeValueMemberN)
			require.True(t, ok)
			require.Equal(t, "42", id.Value)
		})
	}
}

func TestRecordTracker_TrackedByCollection(t *testing.T) {
	t.Parallel()

	syncedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	client := &mockDynamoDBClient{
		queryFunc: func(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
			require.Equal(t, "collection-index", *params.IndexName)
			value, ok := params.ExpressionAttributeValues[":collection"].(*types.AttributeValueMemberS)
			require.True(t, ok)
			require.Equal(t, "customers", value.Value)

			return &dynamodb.QueryOutput{
				Items: []map[string]types.AttributeValue{
					{
						"action":         &types.AttributeValueMemberS{Value: "created"},
						"collection":     &types.AttributeValueMemberS{Value: "customers"},
						"destination_id": &types.AttributeValueMemberN{Value: "7"},
						"external_id":    &types.AttributeValueMemberS{Value: "cust-77"},
						"synced_at":      &types.AttributeValueMemberS{Value: "2025-06-01T12:00:00Z"},
					},
				},
			}, nil
		},
	}

	tracker, err := NewRecordTracker(client, "record-mappings", "collection-index")
	require.NoError(t, err)

	records, err := tracker.TrackedByCollection(context.Background(), "customers")

	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, TrackedRecord{
		Action:        "created",
		Collection:    "customers",
		DestinationID: 7,
		ExternalID:    "cust-77",
		SyncedAt:      syncedAt,
	}, records[0])
}

func TestRecordTracker_TrackedByCollection_BadItem(t *testing.T) {
	t.Parallel()

	client := &mockDynamoDBClient{
		queryFunc: func(_ context.Context, _ *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
			return &dynamodb.QueryOutput{
				Items: []map[string]types.AttributeValue{
					{
						"destination_id": &types.AttributeValueMemberN{Value: "not-a-number"},
					},
				},
			}, nil
		},
	}

	tracker, err := NewRecordTracker(client, "record-mappings", "collection-index")
	require.NoError(t, err)

	_, err = tracker.TrackedByCollection(context.Background(), "customers")

	require.Error(t, err)
	require.Contains(t, err.Error(), "parsing destination id")
}

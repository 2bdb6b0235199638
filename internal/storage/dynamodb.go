// Package storage provides persistence implementations for the sync service.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// TrackedRecord is one external-id to destination-id mapping.
type TrackedRecord struct {
	// Action is the write that produced the mapping ("created" or "updated").
	Action string

	// Collection is the destination collection name.
	Collection string

	// DestinationID is the destination store's own record identifier.
	DestinationID int

	// ExternalID is the source system's identifier.
	ExternalID string

	// SyncedAt is when the record was last written.
	SyncedAt time.Time
}

// RecordTracker tracks external-id to destination-id mappings in DynamoDB.
// The mapping lets a later run resolve relations (an order's customer) without
// re-querying the destination for every record.
type RecordTracker struct {
	// client is the DynamoDB API client.
	client DynamoDBAPI

	// indexName is the name of the collection GSI.
	indexName string

	// tableName is the name of the DynamoDB table.
	tableName string
}

// recordKey builds the table's partition key.
func recordKey(collection string, externalID string) string {
	return collection + "#" + externalID
}

// DestinationID returns the destination record id for a source external id,
// or zero if the record has never been tracked.
func (t *RecordTracker) DestinationID(ctx context.Context, collection string, externalID string) (int, error) {
	if collection == "" {
		return 0, errors.New("collection is required")
	}
	if externalID == "" {
		return 0, errors.New("external ID is required")
	}

	output, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.tableName),
		Key: map[string]types.AttributeValue{
			"record_key": &types.AttributeValueMemberS{Value: recordKey(collection, externalID)},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("getting item from DynamoDB: %w", err)
	}

	if output.Item == nil {
		return 0, nil
	}

	idAttr, ok := output.Item["destination_id"]
	if !ok {
		return 0, nil
	}

	idNum, ok := idAttr.(*types.AttributeValueMemberN)
	if !ok {
		return 0, nil
	}

	id, err := strconv.Atoi(idNum.Value)
	if err != nil {
		return 0, fmt.Errorf("parsing destination id: %w", err)
	}

	return id, nil
}

// Track stores the mapping for a written record.
func (t *RecordTracker) Track(ctx context.Context, record TrackedRecord) error {
	if record.Collection == "" {
		return errors.New("collection is required")
	}
	if record.ExternalID == "" {
		return errors.New("external ID is required")
	}
	if record.DestinationID <= 0 {
		return errors.New("destination ID must be positive")
	}

	_, err := t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.tableName),
		Item: map[string]types.AttributeValue{
			"record_key":     &types.AttributeValueMemberS{Value: recordKey(record.Collection, record.ExternalID)},
			"collection":     &types.AttributeValueMemberS{Value: record.Collection},
			"external_id":    &types.AttributeValueMemberS{Value: record.ExternalID},
			"destination_id": &types.AttributeValueMemberN{Value: strconv.Itoa(record.DestinationID)},
			"action":         &types.AttributeValueMemberS{Value: record.Action},
			"synced_at":      &types.AttributeValueMemberS{Value: record.SyncedAt.Format(time.RFC3339)},
		},
	})
	if err != nil {
		return fmt.Errorf("putting item to DynamoDB: %w", err)
	}

	return nil
}

// TrackedByCollection retrieves every tracked mapping for one collection,
// used to pre-warm the run's external-id to destination-id map.
func (t *RecordTracker) TrackedByCollection(ctx context.Context, collection string) ([]TrackedRecord, error) {
	if collection == "" {
		return nil, errors.New("collection is required")
	}

	output, err := t.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(t.tableName),
		IndexName:              aws.String(t.indexName),
		KeyConditionExpression: aws.String("#c = :collection"),
		ExpressionAttributeNames: map[string]string{
			"#c": "collection",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":collection": &types.AttributeValueMemberS{Value: collection},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("querying DynamoDB: %w", err)
	}

	results := make([]TrackedRecord, 0, len(output.Items))
	for _, item := range output.Items {
		record, err := parseTrackedRecord(item)
		if err != nil {
			return nil, fmt.Errorf("parsing item: %w", err)
		}
		results = append(results, record)
	}

	return results, nil
}

func parseTrackedRecord(item map[string]types.AttributeValue) (TrackedRecord, error) {
	record := TrackedRecord{}

	if v, ok := item["collection"].(*types.AttributeValueMemberS); ok {
		record.Collection = v.Value
	}
	if v, ok := item["external_id"].(*types.AttributeValueMemberS); ok {
		record.ExternalID = v.Value
	}
	if v, ok := item["action"].(*types.AttributeValueMemberS); ok {
		record.Action = v.Value
	}
	if v, ok := item["destination_id"].(*types.AttributeValueMemberN); ok {
		id, err := strconv.Atoi(v.Value)
		if err != nil {
			return record, fmt.Errorf("parsing destination id: %w", err)
		}
		record.DestinationID = id
	}
	if v, ok := item["synced_at"].(*types.AttributeValueMemberS); ok {
		t, err := time.Parse(time.RFC3339, v.Value)
		if err != nil {
			return record, fmt.Errorf("parsing synced_at: %w", err)
		}
		record.SyncedAt = t
	}

	return record, nil
}

// DynamoDBAPI defines the DynamoDB operations used by the tracker.
type DynamoDBAPI interface {
	// GetItem retrieves an item from DynamoDB.
	GetItem(
		ctx context.Context,
		params *dynamodb.GetItemInput,
		optFns ...func(*dynamodb.Options),
	) (*dynamodb.GetItemOutput, error)

	// PutItem stores an item in DynamoDB.
	PutItem(
		ctx context.Context,
		params *dynamodb.PutItemInput,
		optFns ...func(*dynamodb.Options),
	) (*dynamodb.PutItemOutput, error)

	// Query retrieves items matching a key condition from DynamoDB.
	Query(
		ctx context.Context,
		params *dynamodb.QueryInput,
		optFns ...func(*dynamodb.Options),
	) (*dynamodb.QueryOutput, error)
}

// NewRecordTracker creates a new DynamoDB-backed record tracker.
func NewRecordTracker(client DynamoDBAPI, tableName string, indexName string) (*RecordTracker, error) {
	if client == nil {
		return nil, errors.New("dynamodb client is required")
	}
	if tableName == "" {
		return nil, errors.New("table name is required")
	}
	if indexName == "" {
		return nil, errors.New("index name is required")
	}

	return &RecordTracker{
		client:    client,
		indexName: indexName,
		tableName: tableName,
	}, nil
}

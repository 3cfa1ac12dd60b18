// Package dynamodb keeps snapshots in a single-table DynamoDB layout.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"stackecho/application/ports"
)

const (
	keyPrefix  = "SNAPSHOT#"
	sortKey    = "STATE"
	entityType = "Snapshot"
)

// API is the subset of the DynamoDB client the store uses.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

type snapshotItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	Body       string `dynamodbav:"Body"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

// Store persists snapshots as items keyed PK=SNAPSHOT#<key>, SK=STATE.
type Store struct {
	client    API
	tableName string
	now       func() time.Time
	logger    *zap.Logger
}

// NewStore creates a DynamoDB snapshot store
func NewStore(client API, tableName string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		client:    client,
		tableName: tableName,
		now:       time.Now,
		logger:    logger,
	}
}

func buildKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: keyPrefix + key},
		"SK": &types.AttributeValueMemberS{Value: sortKey},
	}
}

// Load implements ports.SnapshotStore.
func (s *Store) Load(ctx context.Context, key string) (*ports.Snapshot, error) {
	proj := expression.NamesList(expression.Name("Body"), expression.Name("UpdatedAt"))
	expr, err := expression.NewBuilder().WithProjection(proj).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(s.tableName),
		Key:                      buildKey(key),
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		return nil, wrapAPIError("get snapshot", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var item snapshotItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrCorruptSnapshot, err)
	}
	return ports.DecodeSnapshot([]byte(item.Body))
}

// Save implements ports.SnapshotStore.
func (s *Store) Save(ctx context.Context, key string, snapshot *ports.Snapshot) error {
	body, err := ports.EncodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	item, err := attributevalue.MarshalMap(snapshotItem{
		PK:         keyPrefix + key,
		SK:         sortKey,
		EntityType: entityType,
		Body:       string(body),
		UpdatedAt:  s.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot item: %w", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		return wrapAPIError("put snapshot", err)
	}

	s.logger.Debug("Snapshot saved",
		zap.String("key", key),
		zap.Int("bytes", len(body)),
	)
	return nil
}

// Delete implements ports.SnapshotStore.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       buildKey(key),
	}); err != nil {
		return wrapAPIError("delete snapshot", err)
	}
	return nil
}

// wrapAPIError keeps the service error code in the message.
func wrapAPIError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("failed to %s: %s: %w", op, apiErr.ErrorCode(), err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

var _ ports.SnapshotStore = (*Store)(nil)

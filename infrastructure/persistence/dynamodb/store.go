package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// partitionKey groups every cache entry into one partition so that
// ListKeys is a single Query with a sort-key prefix condition. The
// entry count is bounded by the kind set plus one item per state, so
// partition heat is not a concern.
const partitionKey = "REFDATA"

// Store persists cache entries in the platform's shared DynamoDB table.
type Store struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewStore creates a DynamoDB-backed store
func NewStore(client *dynamodb.Client, tableName string, logger *zap.Logger) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// storeItem represents the DynamoDB item structure for a cache entry
type storeItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Value     []byte `dynamodbav:"Value"`
	UpdatedAt string `dynamodbav:"UpdatedAt"`
}

// Read fetches the value stored under key
func (s *Store) Read(ctx context.Context, key string) ([]byte, bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: partitionKey},
			"SK": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if out.Item == nil {
		return nil, false, nil
	}

	var item storeItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal item %s: %w", key, err)
	}
	return item.Value, true, nil
}

// Write stores value under key, replacing any prior item
func (s *Store) Write(ctx context.Context, key string, value []byte) error {
	item := storeItem{
		PK:        partitionKey,
		SK:        key,
		Value:     value,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item %s: %w", key, err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}); err != nil {
		s.logger.Error("Failed to write cache item to DynamoDB",
			zap.String("key", key),
			zap.Error(err),
		)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete removes the item for key; absent keys are a no-op
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: partitionKey},
			"SK": &types.AttributeValueMemberS{Value: key},
		},
	}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// ListKeys returns every stored key starting with prefix. The query
// paginates; the result set is small but pagination keeps the contract
// honest if the discriminator space ever grows.
func (s *Store) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(partitionKey))
	if prefix != "" {
		keyCond = keyCond.And(expression.Key("SK").BeginsWith(prefix))
	}

	expr, err := expression.NewBuilder().
		WithKeyCondition(keyCond).
		WithProjection(expression.NamesList(expression.Name("SK"))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build key query: %w", err)
	}

	var keys []string
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(s.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ProjectionExpression:      expr.Projection(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list keys with prefix %q: %w", prefix, err)
		}

		for _, item := range out.Items {
			var projected struct {
				SK string `dynamodbav:"SK"`
			}
			if err := attributevalue.UnmarshalMap(item, &projected); err != nil {
				s.logger.Warn("Skipping unreadable key item", zap.Error(err))
				continue
			}
			keys = append(keys, projected.SK)
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return keys, nil
}

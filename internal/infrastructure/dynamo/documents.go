package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/pg-onboarding-api/internal/domain"
)

// DocumentRepo stores one item of T per user. PK: user_id.
// Used for the profile sub-records, which share the same key shape.
type DocumentRepo[T any] struct {
	client    *dynamodb.Client
	tableName string
	kind      string
}

func NewDocumentRepo[T any](client *dynamodb.Client, tableName, kind string) *DocumentRepo[T] {
	return &DocumentRepo[T]{client: client, tableName: tableName, kind: kind}
}

func (r *DocumentRepo[T]) Get(ctx context.Context, userID string) (*T, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldUserID, userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("%s not found: %w", r.kind, domain.ErrNotFound)
	}
	var v T
	if err := attributevalue.UnmarshalMap(out.Item, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Put overwrites the user's item.
func (r *DocumentRepo[T]) Put(ctx context.Context, v *T) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", r.kind, err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// Create writes the item only if the user has none yet.
func (r *DocumentRepo[T]) Create(ctx context.Context, v *T) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", r.kind, err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": fieldUserID},
	})
	if err = conditionFailed(err); errors.Is(err, domain.ErrConditionFailed) {
		return fmt.Errorf("%s already exists: %w", r.kind, domain.ErrConflict)
	}
	return err
}

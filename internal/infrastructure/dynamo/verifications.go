package dynamo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pg-onboarding-api/internal/domain"
)

// VerificationRepo stores one verification record per user.
// PK: user_id. Channel sub-records are map attributes named after the channel.
type VerificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewVerificationRepo(client *dynamodb.Client, tableName string) *VerificationRepo {
	return &VerificationRepo{client: client, tableName: tableName}
}

func (r *VerificationRepo) Get(ctx context.Context, userID string) (*domain.VerificationRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldUserID, userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("verification record not found: %w", domain.ErrNotFound)
	}
	var v domain.VerificationRecord
	if err := attributevalue.UnmarshalMap(out.Item, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// SaveChannel upserts the sub-record for ch, creating the user's record when absent.
func (r *VerificationRepo) SaveChannel(ctx context.Context, userID string, ch domain.Channel, st *domain.ChannelState, cond domain.WriteCondition) error {
	in, err := channelUpdateInput(r.tableName, userID, ch, st, cond, time.Now().UTC())
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, in)
	return conditionFailed(err)
}

// ReserveAttempt increments the attempt counter for ch while code is still stored
// and fewer than limit attempts were made.
func (r *VerificationRepo) ReserveAttempt(ctx context.Context, userID string, ch domain.Channel, code string, limit int) error {
	in, err := attemptUpdateInput(r.tableName, userID, ch, code, limit, time.Now().UTC())
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, in)
	return conditionFailed(err)
}

func attemptUpdateInput(table, userID string, ch domain.Channel, code string, limit int, now time.Time) (*dynamodb.UpdateItemInput, error) {
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return nil, fmt.Errorf("marshal timestamp: %w", err)
	}
	return &dynamodb.UpdateItemInput{
		TableName:        aws.String(table),
		Key:              strKey(fieldUserID, userID),
		UpdateExpression: aws.String("SET #ch.#att = if_not_exists(#ch.#att, :zero) + :one, #upd = :now"),
		ConditionExpression: aws.String(
			"#ch.#code = :code AND (attribute_not_exists(#ch.#att) OR #ch.#att < :max)"),
		ExpressionAttributeNames: map[string]string{
			"#ch":   string(ch),
			"#att":  fieldAttempts,
			"#code": fieldCode,
			"#upd":  fieldUpdatedAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":code": &types.AttributeValueMemberS{Value: code},
			":zero": &types.AttributeValueMemberN{Value: "0"},
			":one":  &types.AttributeValueMemberN{Value: "1"},
			":max":  &types.AttributeValueMemberN{Value: strconv.Itoa(limit)},
			":now":  nowAV,
		},
	}, nil
}

func channelUpdateInput(table, userID string, ch domain.Channel, st *domain.ChannelState, cond domain.WriteCondition, now time.Time) (*dynamodb.UpdateItemInput, error) {
	stateAV, err := attributevalue.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("marshal channel state: %w", err)
	}
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return nil, fmt.Errorf("marshal timestamp: %w", err)
	}

	names := map[string]string{
		"#ch":  string(ch),
		"#upd": fieldUpdatedAt,
		"#crt": fieldCreatedAt,
	}
	values := map[string]types.AttributeValue{
		":st":  stateAV,
		":now": nowAV,
	}

	var condition string
	if cond.RequireUnverified {
		names["#ver"] = fieldVerified
		values[":false"] = &types.AttributeValueMemberBOOL{Value: false}
		condition = "(attribute_not_exists(#ch) OR attribute_not_exists(#ch.#ver) OR #ch.#ver = :false)"
	}
	if cond.ExpectCode != "" {
		names["#code"] = fieldCode
		values[":code"] = &types.AttributeValueMemberS{Value: cond.ExpectCode}
		if condition != "" {
			condition += " AND "
		}
		condition += "#ch.#code = :code"
	}

	in := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       strKey(fieldUserID, userID),
		UpdateExpression:          aws.String("SET #ch = :st, #upd = :now, #crt = if_not_exists(#crt, :now)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	}
	if condition != "" {
		in.ConditionExpression = aws.String(condition)
	}
	return in, nil
}

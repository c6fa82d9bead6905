package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pg-onboarding-api/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VerificationRepo is the MongoDB-backed verification record store.
type VerificationRepo struct {
	coll *mongo.Collection
}

func NewVerificationRepo(db *mongo.Database) *VerificationRepo {
	return &VerificationRepo{coll: db.Collection(VerificationsCollection)}
}

func (r *VerificationRepo) Get(ctx context.Context, userID string) (*domain.VerificationRecord, error) {
	var v domain.VerificationRecord
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("verification record not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// SaveChannel replaces the sub-record for ch. The record is created on first write
// unless cond.ExpectCode is set, in which case an existing matching code is required.
func (r *VerificationRepo) SaveChannel(ctx context.Context, userID string, ch domain.Channel, st *domain.ChannelState, cond domain.WriteCondition) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set":         bson.M{string(ch): st, "updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}
	upsert := cond.ExpectCode == ""

	res, err := r.coll.UpdateOne(ctx, channelFilter(userID, ch, cond), update, options.Update().SetUpsert(upsert))
	if mongo.IsDuplicateKeyError(err) {
		// The upsert lost to an existing document that failed the filter.
		return domain.ErrConditionFailed
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domain.ErrConditionFailed
	}
	return nil
}

func channelFilter(userID string, ch domain.Channel, cond domain.WriteCondition) bson.M {
	filter := bson.M{"user_id": userID}
	if cond.RequireUnverified {
		filter[string(ch)+".verified"] = bson.M{"$ne": true}
	}
	if cond.ExpectCode != "" {
		filter[string(ch)+".code"] = cond.ExpectCode
	}
	return filter
}

// ReserveAttempt increments the attempt counter for ch while code is still stored
// and fewer than limit attempts were made.
func (r *VerificationRepo) ReserveAttempt(ctx context.Context, userID string, ch domain.Channel, code string, limit int) error {
	update := bson.M{
		"$inc": bson.M{string(ch) + ".attempts": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.coll.UpdateOne(ctx, attemptFilter(userID, ch, code, limit), update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrConditionFailed
	}
	return nil
}

func attemptFilter(userID string, ch domain.Channel, code string, limit int) bson.M {
	return bson.M{
		"user_id":                userID,
		string(ch) + ".code":     code,
		string(ch) + ".attempts": bson.M{"$lt": limit},
	}
}

package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"employee-management/config"
	"employee-management/models"
)

type PreferenceRepository interface {
	// GetOrCreate returns the user's preferences, inserting defaults on first
	// access.
	GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*models.NotificationPreference, error)
	UpdatePreferences(ctx context.Context, userID primitive.ObjectID, set bson.M) (*models.NotificationPreference, error)
}

type preferenceRepository struct {
	collection *mongo.Collection
}

func NewPreferenceRepository(db *mongo.Database) PreferenceRepository {
	return &preferenceRepository{collection: db.Collection(config.NotificationPreferenceCollection)}
}

func (r *preferenceRepository) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*models.NotificationPreference, error) {
	def := models.DefaultNotificationPreference(userID)
	now := time.Now()
	update := bson.M{"$setOnInsert": bson.M{
		"user_id":              userID,
		"email_notifications":  def.EmailNotifications,
		"in_app_notifications": def.InAppNotifications,
		"frequency":            def.Frequency,
		"notification_types":   def.NotificationTypes,
		"quiet_hours":          def.QuietHours,
		"created_at":           now,
		"updated_at":           now,
	}}
	return r.upsert(ctx, userID, update)
}

func (r *preferenceRepository) UpdatePreferences(ctx context.Context, userID primitive.ObjectID, set bson.M) (*models.NotificationPreference, error) {
	if _, err := r.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}
	fields := bson.M{"updated_at": time.Now()}
	for k, v := range set {
		fields[k] = v
	}
	return r.upsert(ctx, userID, bson.M{"$set": fields})
}

func (r *preferenceRepository) upsert(ctx context.Context, userID primitive.ObjectID, update bson.M) (*models.NotificationPreference, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var pref models.NotificationPreference
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&pref)
	if mongo.IsDuplicateKeyError(err) {
		// a concurrent first access inserted the row; the retry matches it
		err = r.collection.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&pref)
	}
	if err != nil {
		return nil, fmt.Errorf("upsert notification preferences: %w", err)
	}
	return &pref, nil
}

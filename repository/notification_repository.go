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

// NotificationRepository scopes every read and write to a recipient.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListForRecipient(ctx context.Context, recipient primitive.ObjectID, page, limit int64) ([]models.Notification, int64, error)
	FindForRecipient(ctx context.Context, id, recipient primitive.ObjectID) (*models.Notification, error)
	MarkAsRead(ctx context.Context, id, recipient primitive.ObjectID, at time.Time) error
	MarkAllAsRead(ctx context.Context, recipient primitive.ObjectID, at time.Time) (int64, error)
	CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error)
	DeleteForRecipient(ctx context.Context, id, recipient primitive.ObjectID) error
}

type notificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) NotificationRepository {
	return &notificationRepository{collection: db.Collection(config.NotificationCollection)}
}

func (r *notificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	now := time.Now()
	n.ID = primitive.NewObjectID()
	n.CreatedAt = now
	n.UpdatedAt = now
	return insertOne(ctx, r.collection, n)
}

func (r *notificationRepository) ListForRecipient(ctx context.Context, recipient primitive.ObjectID, page, limit int64) ([]models.Notification, int64, error) {
	filter := bson.M{"recipient_id": recipient}
	opts := options.Find().SetSort(newestFirst).SetSkip((page - 1) * limit).SetLimit(limit)

	items, err := findAll[models.Notification](ctx, r.collection, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}
	return items, total, nil
}

func (r *notificationRepository) FindForRecipient(ctx context.Context, id, recipient primitive.ObjectID) (*models.Notification, error) {
	return findOne[models.Notification](ctx, r.collection, bson.M{"_id": id, "recipient_id": recipient})
}

// MarkAsRead only touches unread records, so read_at keeps its first value.
func (r *notificationRepository) MarkAsRead(ctx context.Context, id, recipient primitive.ObjectID, at time.Time) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "recipient_id": recipient, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": at, "updated_at": at}},
	)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, recipient primitive.ObjectID, at time.Time) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"recipient_id": recipient, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": at, "updated_at": at}},
	)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"recipient_id": recipient, "is_read": false})
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}

func (r *notificationRepository) DeleteForRecipient(ctx context.Context, id, recipient primitive.ObjectID) error {
	return deleteByID(ctx, r.collection, bson.M{"_id": id, "recipient_id": recipient})
}

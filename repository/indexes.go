package repository

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"employee-management/config"
)

// EnsureIndexes creates the unique and lookup indexes every collection relies
// on. It is safe to call on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		config.UserCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		config.EmployeeCollection: {
			{Keys: bson.D{{Key: "employee_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "department", Value: 1}}},
		},
		config.DepartmentCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		config.AttendanceCollection: {
			{Keys: bson.D{{Key: "employee", Value: 1}, {Key: "date", Value: 1}}},
		},
		config.LeaveCollection: {
			{Keys: bson.D{{Key: "employee", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		config.PayrollCollection: {
			{Keys: bson.D{{Key: "employee", Value: 1}, {Key: "month", Value: -1}}},
		},
		config.DocumentCollection: {
			{Keys: bson.D{{Key: "uploaded_by", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "associated_resource.resource_type", Value: 1}, {Key: "associated_resource.resource_id", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		config.NotificationCollection: {
			{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "is_read", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		config.NotificationPreferenceCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for coll, indexes := range specs {
		names, err := db.Collection(coll).Indexes().CreateMany(ctx, indexes)
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
		logrus.WithFields(logrus.Fields{"collection": coll, "indexes": names}).Debug("indexes ensured")
	}
	return nil
}

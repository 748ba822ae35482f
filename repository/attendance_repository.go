package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"employee-management/config"
	"employee-management/models"
)

type AttendanceRepository interface {
	CreateAttendance(ctx context.Context, attendance *models.Attendance) error
	GetAllAttendance(ctx context.Context) ([]models.AttendanceView, error)
	GetAttendanceByID(ctx context.Context, id primitive.ObjectID) (*models.AttendanceView, error)
	UpdateAttendance(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.AttendanceView, error)
	DeleteAttendance(ctx context.Context, id primitive.ObjectID) error
}

type attendanceRepository struct {
	collection *mongo.Collection
}

func NewAttendanceRepository(db *mongo.Database) AttendanceRepository {
	return &attendanceRepository{collection: db.Collection(config.AttendanceCollection)}
}

func (r *attendanceRepository) CreateAttendance(ctx context.Context, attendance *models.Attendance) error {
	now := time.Now()
	attendance.ID = primitive.NewObjectID()
	attendance.CreatedAt = now
	attendance.UpdatedAt = now
	return insertOne(ctx, r.collection, attendance)
}

func (r *attendanceRepository) GetAllAttendance(ctx context.Context) ([]models.AttendanceView, error) {
	pipeline := stages([]bson.M{{"$sort": bson.D{{Key: "date", Value: -1}}}}, attendanceExpansion())
	return aggregate[models.AttendanceView](ctx, r.collection, pipeline)
}

func (r *attendanceRepository) GetAttendanceByID(ctx context.Context, id primitive.ObjectID) (*models.AttendanceView, error) {
	return aggregateOne[models.AttendanceView](ctx, r.collection, id, attendanceExpansion())
}

func (r *attendanceRepository) UpdateAttendance(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.AttendanceView, error) {
	if _, err := updateByID[models.Attendance](ctx, r.collection, id, set, true); err != nil {
		return nil, err
	}
	return r.GetAttendanceByID(ctx, id)
}

func (r *attendanceRepository) DeleteAttendance(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.collection, bson.M{"_id": id})
}

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

type LeaveRepository interface {
	CreateLeave(ctx context.Context, leave *models.Leave) error
	GetAllLeaves(ctx context.Context) ([]models.LeaveView, error)
	GetLeaveByID(ctx context.Context, id primitive.ObjectID) (*models.LeaveView, error)
	UpdateLeave(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.LeaveView, error)
	DeleteLeave(ctx context.Context, id primitive.ObjectID) error
}

type leaveRepository struct {
	collection *mongo.Collection
}

func NewLeaveRepository(db *mongo.Database) LeaveRepository {
	return &leaveRepository{collection: db.Collection(config.LeaveCollection)}
}

func (r *leaveRepository) CreateLeave(ctx context.Context, leave *models.Leave) error {
	now := time.Now()
	leave.ID = primitive.NewObjectID()
	leave.CreatedAt = now
	leave.UpdatedAt = now
	return insertOne(ctx, r.collection, leave)
}

func (r *leaveRepository) GetAllLeaves(ctx context.Context) ([]models.LeaveView, error) {
	pipeline := stages([]bson.M{sortNewest()}, leaveExpansion())
	return aggregate[models.LeaveView](ctx, r.collection, pipeline)
}

func (r *leaveRepository) GetLeaveByID(ctx context.Context, id primitive.ObjectID) (*models.LeaveView, error) {
	return aggregateOne[models.LeaveView](ctx, r.collection, id, leaveExpansion())
}

// UpdateLeave is also used for approve and reject; the write does not look
// at the current status.
func (r *leaveRepository) UpdateLeave(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.LeaveView, error) {
	if _, err := updateByID[models.Leave](ctx, r.collection, id, set, true); err != nil {
		return nil, err
	}
	return r.GetLeaveByID(ctx, id)
}

func (r *leaveRepository) DeleteLeave(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.collection, bson.M{"_id": id})
}

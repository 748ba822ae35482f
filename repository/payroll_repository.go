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

type PayrollRepository interface {
	CreatePayroll(ctx context.Context, payroll *models.Payroll) error
	GetAllPayrolls(ctx context.Context) ([]models.PayrollView, error)
	GetPayrollByID(ctx context.Context, id primitive.ObjectID) (*models.PayrollView, error)
	UpdatePayroll(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.PayrollView, error)
	DeletePayroll(ctx context.Context, id primitive.ObjectID) error
}

type payrollRepository struct {
	collection *mongo.Collection
}

func NewPayrollRepository(db *mongo.Database) PayrollRepository {
	return &payrollRepository{collection: db.Collection(config.PayrollCollection)}
}

func (r *payrollRepository) CreatePayroll(ctx context.Context, payroll *models.Payroll) error {
	now := time.Now()
	payroll.ID = primitive.NewObjectID()
	payroll.CreatedAt = now
	payroll.UpdatedAt = now
	return insertOne(ctx, r.collection, payroll)
}

func (r *payrollRepository) GetAllPayrolls(ctx context.Context) ([]models.PayrollView, error) {
	pipeline := stages([]bson.M{{"$sort": bson.D{{Key: "month", Value: -1}, {Key: "created_at", Value: -1}}}}, payrollExpansion())
	return aggregate[models.PayrollView](ctx, r.collection, pipeline)
}

func (r *payrollRepository) GetPayrollByID(ctx context.Context, id primitive.ObjectID) (*models.PayrollView, error) {
	return aggregateOne[models.PayrollView](ctx, r.collection, id, payrollExpansion())
}

func (r *payrollRepository) UpdatePayroll(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.PayrollView, error) {
	if _, err := updateByID[models.Payroll](ctx, r.collection, id, set, true); err != nil {
		return nil, err
	}
	return r.GetPayrollByID(ctx, id)
}

func (r *payrollRepository) DeletePayroll(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.collection, bson.M{"_id": id})
}

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

type EmployeeRepository interface {
	CreateEmployee(ctx context.Context, employee *models.Employee) error
	GetAllEmployees(ctx context.Context) ([]models.EmployeeView, error)
	GetEmployeeByID(ctx context.Context, id primitive.ObjectID) (*models.EmployeeView, error)
	// UpdateEmployee returns the record as it was before the change.
	UpdateEmployee(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Employee, error)
	DeleteEmployee(ctx context.Context, id primitive.ObjectID) (*models.Employee, error)
}

type employeeRepository struct {
	collection *mongo.Collection
}

func NewEmployeeRepository(db *mongo.Database) EmployeeRepository {
	return &employeeRepository{collection: db.Collection(config.EmployeeCollection)}
}

func (r *employeeRepository) CreateEmployee(ctx context.Context, employee *models.Employee) error {
	now := time.Now()
	employee.ID = primitive.NewObjectID()
	employee.CreatedAt = now
	employee.UpdatedAt = now
	return insertOne(ctx, r.collection, employee)
}

func (r *employeeRepository) GetAllEmployees(ctx context.Context) ([]models.EmployeeView, error) {
	pipeline := stages([]bson.M{sortNewest()}, employeeExpansion())
	return aggregate[models.EmployeeView](ctx, r.collection, pipeline)
}

func (r *employeeRepository) GetEmployeeByID(ctx context.Context, id primitive.ObjectID) (*models.EmployeeView, error) {
	return aggregateOne[models.EmployeeView](ctx, r.collection, id, employeeExpansion())
}

func (r *employeeRepository) UpdateEmployee(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Employee, error) {
	return updateByID[models.Employee](ctx, r.collection, id, set, false)
}

func (r *employeeRepository) DeleteEmployee(ctx context.Context, id primitive.ObjectID) (*models.Employee, error) {
	return findOneAndDelete[models.Employee](ctx, r.collection, id)
}

package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"employee-management/config"
	"employee-management/models"
)

type DepartmentRepository interface {
	CreateDepartment(ctx context.Context, department *models.Department) error
	GetAllDepartments(ctx context.Context) ([]models.DepartmentView, error)
	GetDepartmentByID(ctx context.Context, id primitive.ObjectID) (*models.DepartmentView, error)
	FindDepartmentByName(ctx context.Context, name string) (*models.Department, error)
	UpdateDepartment(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.DepartmentView, error)
	DeleteDepartment(ctx context.Context, id primitive.ObjectID) error
	AdjustEmployeeCount(ctx context.Context, id primitive.ObjectID, delta int) error
}

type departmentRepository struct {
	collection *mongo.Collection
}

func NewDepartmentRepository(db *mongo.Database) DepartmentRepository {
	return &departmentRepository{collection: db.Collection(config.DepartmentCollection)}
}

func (r *departmentRepository) CreateDepartment(ctx context.Context, department *models.Department) error {
	now := time.Now()
	department.ID = primitive.NewObjectID()
	department.CreatedAt = now
	department.UpdatedAt = now
	return insertOne(ctx, r.collection, department)
}

func (r *departmentRepository) GetAllDepartments(ctx context.Context) ([]models.DepartmentView, error) {
	pipeline := stages([]bson.M{{"$sort": bson.D{{Key: "name", Value: 1}}}}, departmentExpansion())
	return aggregate[models.DepartmentView](ctx, r.collection, pipeline)
}

func (r *departmentRepository) GetDepartmentByID(ctx context.Context, id primitive.ObjectID) (*models.DepartmentView, error) {
	return aggregateOne[models.DepartmentView](ctx, r.collection, id, departmentExpansion())
}

func (r *departmentRepository) FindDepartmentByName(ctx context.Context, name string) (*models.Department, error) {
	return findOne[models.Department](ctx, r.collection, bson.M{"name": name})
}

func (r *departmentRepository) UpdateDepartment(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.DepartmentView, error) {
	if _, err := updateByID[models.Department](ctx, r.collection, id, set, true); err != nil {
		return nil, err
	}
	return r.GetDepartmentByID(ctx, id)
}

func (r *departmentRepository) DeleteDepartment(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.collection, bson.M{"_id": id})
}

func (r *departmentRepository) AdjustEmployeeCount(ctx context.Context, id primitive.ObjectID, delta int) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"employee_count": delta},
		"$set": bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("adjust employee count: %w", err)
	}
	return nil
}

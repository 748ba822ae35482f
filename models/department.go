package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Department struct {
	ID            primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Name          string              `json:"name" bson:"name"`
	Description   string              `json:"description,omitempty" bson:"description,omitempty"`
	Manager       *primitive.ObjectID `json:"manager,omitempty" bson:"manager,omitempty"`
	Budget        float64             `json:"budget" bson:"budget"`
	EmployeeCount int                 `json:"employeeCount" bson:"employee_count"`
	CreatedAt     time.Time           `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time           `json:"updatedAt" bson:"updated_at"`
}

// DepartmentView is a department with its manager expanded.
type DepartmentView struct {
	Department `bson:",inline"`
	ManagerRef *User `json:"manager,omitempty" bson:"manager_ref,omitempty"`
}

type DepartmentCreatePayload struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Description string  `json:"description" validate:"max=500"`
	Manager     string  `json:"manager" validate:"omitempty,objectid"`
	Budget      float64 `json:"budget" validate:"min=0"`
}

func (p DepartmentCreatePayload) ToDepartment() *Department {
	dept := &Department{
		Name:        p.Name,
		Description: p.Description,
		Budget:      p.Budget,
	}
	if p.Manager != "" {
		id := ObjectID(p.Manager)
		dept.Manager = &id
	}
	return dept
}

type DepartmentUpdatePayload struct {
	Name        *string  `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Manager     *string  `json:"manager" validate:"omitempty,objectid"`
	Budget      *float64 `json:"budget" validate:"omitempty,min=0"`
}

func (p DepartmentUpdatePayload) Updates() bson.M {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Manager != nil {
		set["manager"] = ObjectID(*p.Manager)
	}
	if p.Budget != nil {
		set["budget"] = *p.Budget
	}
	return set
}

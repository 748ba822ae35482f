package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Employee struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID       primitive.ObjectID `json:"user" bson:"user_id"`
	EmployeeID   string             `json:"employeeId" bson:"employee_id"`
	DepartmentID primitive.ObjectID `json:"department" bson:"department"`
	Position     string             `json:"position" bson:"position"`
	Salary       float64            `json:"salary" bson:"salary"`
	JoinDate     time.Time          `json:"joinDate" bson:"join_date"`
	Phone        string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Address      string             `json:"address,omitempty" bson:"address,omitempty"`
	DateOfBirth  *time.Time         `json:"dateOfBirth,omitempty" bson:"date_of_birth,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updated_at"`
}

// EmployeeView carries the owning user and department. In JSON the expanded
// records replace the raw reference ids.
type EmployeeView struct {
	Employee      `bson:",inline"`
	UserRef       *User       `json:"user,omitempty" bson:"user_ref,omitempty"`
	DepartmentRef *Department `json:"department,omitempty" bson:"department_ref,omitempty"`
}

type EmployeeCreatePayload struct {
	User        string  `json:"user" validate:"required,objectid"`
	EmployeeID  string  `json:"employeeId" validate:"required,min=2,max=30"`
	Department  string  `json:"department" validate:"required,objectid"`
	Position    string  `json:"position" validate:"required,max=100"`
	Salary      float64 `json:"salary" validate:"required,gt=0"`
	JoinDate    string  `json:"joinDate" validate:"required,datetime=2006-01-02"`
	Phone       string  `json:"phone" validate:"omitempty,max=30"`
	Address     string  `json:"address" validate:"omitempty,max=255"`
	DateOfBirth string  `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
}

func (p EmployeeCreatePayload) ToEmployee() *Employee {
	return &Employee{
		UserID:       ObjectID(p.User),
		EmployeeID:   p.EmployeeID,
		DepartmentID: ObjectID(p.Department),
		Position:     p.Position,
		Salary:       p.Salary,
		JoinDate:     ParseDate(p.JoinDate),
		Phone:        p.Phone,
		Address:      p.Address,
		DateOfBirth:  parseDatePtr(p.DateOfBirth),
	}
}

type EmployeeUpdatePayload struct {
	Department  *string  `json:"department" validate:"omitempty,objectid"`
	Position    *string  `json:"position" validate:"omitempty,max=100"`
	Salary      *float64 `json:"salary" validate:"omitempty,gt=0"`
	JoinDate    *string  `json:"joinDate" validate:"omitempty,datetime=2006-01-02"`
	Phone       *string  `json:"phone" validate:"omitempty,max=30"`
	Address     *string  `json:"address" validate:"omitempty,max=255"`
	DateOfBirth *string  `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
}

func (p EmployeeUpdatePayload) Updates() bson.M {
	set := bson.M{}
	if p.Department != nil {
		set["department"] = ObjectID(*p.Department)
	}
	if p.Position != nil {
		set["position"] = *p.Position
	}
	if p.Salary != nil {
		set["salary"] = *p.Salary
	}
	if p.JoinDate != nil {
		set["join_date"] = ParseDate(*p.JoinDate)
	}
	if p.Phone != nil {
		set["phone"] = *p.Phone
	}
	if p.Address != nil {
		set["address"] = *p.Address
	}
	if p.DateOfBirth != nil {
		set["date_of_birth"] = ParseDate(*p.DateOfBirth)
	}
	return set
}

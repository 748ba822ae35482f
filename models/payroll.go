package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PayrollPending   = "pending"
	PayrollProcessed = "processed"
	PayrollPaid      = "paid"
)

// Payroll stores one month of pay for an employee. NetSalary is taken from
// the caller as is.
type Payroll struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	EmployeeID primitive.ObjectID `json:"employee" bson:"employee"`
	Month      string             `json:"month" bson:"month"`
	BaseSalary float64            `json:"baseSalary" bson:"base_salary"`
	Bonus      float64            `json:"bonus" bson:"bonus"`
	Deductions float64            `json:"deductions" bson:"deductions"`
	NetSalary  float64            `json:"netSalary" bson:"net_salary"`
	Status     string             `json:"status" bson:"status"`
	PaidDate   *time.Time         `json:"paidDate,omitempty" bson:"paid_date,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updated_at"`
}

type PayrollView struct {
	Payroll     `bson:",inline"`
	EmployeeRef *EmployeeView `json:"employee,omitempty" bson:"employee_ref,omitempty"`
}

type PayrollCreatePayload struct {
	Employee   string  `json:"employee" validate:"required,objectid"`
	Month      string  `json:"month" validate:"required,datetime=2006-01"`
	BaseSalary float64 `json:"baseSalary" validate:"required,min=0"`
	Bonus      float64 `json:"bonus" validate:"min=0"`
	Deductions float64 `json:"deductions" validate:"min=0"`
	NetSalary  float64 `json:"netSalary" validate:"required"`
	Status     string  `json:"status" validate:"omitempty,oneof=pending processed paid"`
	PaidDate   string  `json:"paidDate" validate:"omitempty,datetime=2006-01-02"`
}

func (p PayrollCreatePayload) ToPayroll() *Payroll {
	status := p.Status
	if status == "" {
		status = PayrollPending
	}
	return &Payroll{
		EmployeeID: ObjectID(p.Employee),
		Month:      p.Month,
		BaseSalary: p.BaseSalary,
		Bonus:      p.Bonus,
		Deductions: p.Deductions,
		NetSalary:  p.NetSalary,
		Status:     status,
		PaidDate:   parseDatePtr(p.PaidDate),
	}
}

type PayrollUpdatePayload struct {
	Month      *string  `json:"month" validate:"omitempty,datetime=2006-01"`
	BaseSalary *float64 `json:"baseSalary" validate:"omitempty,min=0"`
	Bonus      *float64 `json:"bonus" validate:"omitempty,min=0"`
	Deductions *float64 `json:"deductions" validate:"omitempty,min=0"`
	NetSalary  *float64 `json:"netSalary"`
	Status     *string  `json:"status" validate:"omitempty,oneof=pending processed paid"`
	PaidDate   *string  `json:"paidDate" validate:"omitempty,datetime=2006-01-02"`
}

func (p PayrollUpdatePayload) Updates() bson.M {
	set := bson.M{}
	if p.Month != nil {
		set["month"] = *p.Month
	}
	if p.BaseSalary != nil {
		set["base_salary"] = *p.BaseSalary
	}
	if p.Bonus != nil {
		set["bonus"] = *p.Bonus
	}
	if p.Deductions != nil {
		set["deductions"] = *p.Deductions
	}
	if p.NetSalary != nil {
		set["net_salary"] = *p.NetSalary
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.PaidDate != nil {
		set["paid_date"] = ParseDate(*p.PaidDate)
	}
	return set
}

// PayrollGeneratePayload only describes the batch; amounts are not derived.
type PayrollGeneratePayload struct {
	Month     string   `json:"month" validate:"required,datetime=2006-01"`
	Employees []string `json:"employees" validate:"required,min=1,dive,objectid"`
}

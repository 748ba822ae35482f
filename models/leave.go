package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	LeavePending  = "pending"
	LeaveApproved = "approved"
	LeaveRejected = "rejected"
)

type Leave struct {
	ID              primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	EmployeeID      primitive.ObjectID  `json:"employee" bson:"employee"`
	LeaveType       string              `json:"leaveType" bson:"leave_type"`
	StartDate       time.Time           `json:"startDate" bson:"start_date"`
	EndDate         time.Time           `json:"endDate" bson:"end_date"`
	Days            int                 `json:"days" bson:"days"`
	Reason          string              `json:"reason" bson:"reason"`
	Status          string              `json:"status" bson:"status"`
	ApprovedBy      *primitive.ObjectID `json:"approvedBy,omitempty" bson:"approved_by,omitempty"`
	ApprovedAt      *time.Time          `json:"approvedDate,omitempty" bson:"approved_at,omitempty"`
	RejectionReason string              `json:"rejectionReason,omitempty" bson:"rejection_reason,omitempty"`
	CreatedAt       time.Time           `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time           `json:"updatedAt" bson:"updated_at"`
}

type LeaveView struct {
	Leave       `bson:",inline"`
	EmployeeRef *EmployeeView `json:"employee,omitempty" bson:"employee_ref,omitempty"`
	ApproverRef *User         `json:"approvedBy,omitempty" bson:"approver_ref,omitempty"`
}

// LeaveDays counts calendar days between start and end, both inclusive.
func LeaveDays(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

type LeaveCreatePayload struct {
	Employee  string `json:"employee" validate:"required,objectid"`
	LeaveType string `json:"leaveType" validate:"required,oneof=sick casual annual maternity paternity"`
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Days      int    `json:"days" validate:"omitempty,min=1"`
	Reason    string `json:"reason" validate:"required,min=3,max=500"`
}

func (p LeaveCreatePayload) ToLeave() *Leave {
	start, end := ParseDate(p.StartDate), ParseDate(p.EndDate)
	days := p.Days
	if days == 0 {
		days = LeaveDays(start, end)
	}
	return &Leave{
		EmployeeID: ObjectID(p.Employee),
		LeaveType:  p.LeaveType,
		StartDate:  start,
		EndDate:    end,
		Days:       days,
		Reason:     p.Reason,
		Status:     LeavePending,
	}
}

// LeaveUpdatePayload has no status field: status only moves through the
// approve and reject operations.
type LeaveUpdatePayload struct {
	LeaveType *string `json:"leaveType" validate:"omitempty,oneof=sick casual annual maternity paternity"`
	StartDate *string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   *string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Days      *int    `json:"days" validate:"omitempty,min=1"`
	Reason    *string `json:"reason" validate:"omitempty,min=3,max=500"`
}

// MergeDates returns the period the leave covers once the supplied dates are
// applied over current.
func (p LeaveUpdatePayload) MergeDates(current Leave) (start, end time.Time) {
	start, end = current.StartDate, current.EndDate
	if p.StartDate != nil {
		start = ParseDate(*p.StartDate)
	}
	if p.EndDate != nil {
		end = ParseDate(*p.EndDate)
	}
	return start, end
}

func (p LeaveUpdatePayload) Updates() bson.M {
	set := bson.M{}
	if p.LeaveType != nil {
		set["leave_type"] = *p.LeaveType
	}
	if p.StartDate != nil {
		set["start_date"] = ParseDate(*p.StartDate)
	}
	if p.EndDate != nil {
		set["end_date"] = ParseDate(*p.EndDate)
	}
	if p.Days != nil {
		set["days"] = *p.Days
	}
	if p.Reason != nil {
		set["reason"] = *p.Reason
	}
	return set
}

type LeaveRejectPayload struct {
	RejectionReason string `json:"rejectionReason" validate:"max=500"`
}

// LeaveDecision is the change written by approve and reject.
type LeaveDecision struct {
	Status          string
	ApprovedBy      primitive.ObjectID
	DecidedAt       time.Time
	RejectionReason string
}

func (d LeaveDecision) Updates() bson.M {
	set := bson.M{
		"status":      d.Status,
		"approved_by": d.ApprovedBy,
		"approved_at": d.DecidedAt,
	}
	if d.RejectionReason != "" {
		set["rejection_reason"] = d.RejectionReason
	}
	return set
}

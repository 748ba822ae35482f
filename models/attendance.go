package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
	AttendanceHalfDay = "half_day"
)

type Attendance struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	EmployeeID   primitive.ObjectID `json:"employee" bson:"employee"`
	Date         time.Time          `json:"date" bson:"date"`
	Status       string             `json:"status" bson:"status"`
	CheckInTime  string             `json:"checkInTime,omitempty" bson:"check_in_time,omitempty"`
	CheckOutTime string             `json:"checkOutTime,omitempty" bson:"check_out_time,omitempty"`
	Notes        string             `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updated_at"`
}

// NeedsAlert reports whether the status warrants an attendance alert.
func (a *Attendance) NeedsAlert() bool {
	return a.Status == AttendanceAbsent || a.Status == AttendanceLate
}

type AttendanceView struct {
	Attendance  `bson:",inline"`
	EmployeeRef *EmployeeView `json:"employee,omitempty" bson:"employee_ref,omitempty"`
}

type AttendanceCreatePayload struct {
	Employee     string `json:"employee" validate:"required,objectid"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	Status       string `json:"status" validate:"required,oneof=present absent late half_day"`
	CheckInTime  string `json:"checkInTime" validate:"omitempty,datetime=15:04"`
	CheckOutTime string `json:"checkOutTime" validate:"omitempty,datetime=15:04"`
	Notes        string `json:"notes" validate:"max=500"`
}

func (p AttendanceCreatePayload) ToAttendance() *Attendance {
	return &Attendance{
		EmployeeID:   ObjectID(p.Employee),
		Date:         ParseDate(p.Date),
		Status:       p.Status,
		CheckInTime:  p.CheckInTime,
		CheckOutTime: p.CheckOutTime,
		Notes:        p.Notes,
	}
}

type AttendanceUpdatePayload struct {
	Date         *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Status       *string `json:"status" validate:"omitempty,oneof=present absent late half_day"`
	CheckInTime  *string `json:"checkInTime" validate:"omitempty,datetime=15:04"`
	CheckOutTime *string `json:"checkOutTime" validate:"omitempty,datetime=15:04"`
	Notes        *string `json:"notes" validate:"omitempty,max=500"`
}

func (p AttendanceUpdatePayload) Updates() bson.M {
	set := bson.M{}
	if p.Date != nil {
		set["date"] = ParseDate(*p.Date)
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.CheckInTime != nil {
		set["check_in_time"] = *p.CheckInTime
	}
	if p.CheckOutTime != nil {
		set["check_out_time"] = *p.CheckOutTime
	}
	if p.Notes != nil {
		set["notes"] = *p.Notes
	}
	return set
}

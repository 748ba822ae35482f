package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"employee-management/models"
	"employee-management/pkg/email"
)

// The methods below are called by handlers after a successful write. They
// never fail the request: problems are logged and the caller moves on.

func (s *NotificationService) deliver(ctx context.Context, user *models.User, tmpl email.Template, data email.Data, related *models.ResourceRef) {
	n, err := s.SendNotificationEmail(ctx, user, tmpl, data, related)
	entry := logrus.WithFields(logrus.Fields{"template": string(tmpl), "recipient": user.ID.Hex()})
	if err != nil {
		entry.WithError(err).Error("failed to record notification")
		return
	}
	if !n.IsEmailSent {
		entry.WithField("reason", n.EmailError).Info("notification recorded without email")
	}
}

func employeeName(emp *models.EmployeeView) string {
	if emp.UserRef != nil {
		return emp.UserRef.FullName()
	}
	return emp.EmployeeID
}

func formatDay(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// LeaveSubmitted tells the manager of the employee's department that a
// request is waiting.
func (s *NotificationService) LeaveSubmitted(ctx context.Context, leave *models.Leave) {
	emp, err := s.employees.GetEmployeeByID(ctx, leave.EmployeeID)
	if err != nil {
		logrus.WithError(err).WithField("leave_id", leave.ID.Hex()).Warn("leave submitted for unknown employee")
		return
	}
	if emp.DepartmentRef == nil || emp.DepartmentRef.Manager == nil {
		return
	}
	manager, err := s.users.FindUserByID(ctx, *emp.DepartmentRef.Manager)
	if err != nil {
		logrus.WithError(err).Warn("department manager not found")
		return
	}

	s.deliver(ctx, manager, email.LeaveApprovalRequest, email.Data{
		"ManagerName":  manager.FullName(),
		"EmployeeName": employeeName(emp),
		"LeaveType":    leave.LeaveType,
		"StartDate":    formatDay(leave.StartDate),
		"EndDate":      formatDay(leave.EndDate),
		"Days":         leave.Days,
		"Reason":       leave.Reason,
	}, models.NewResourceRef(models.ResourceLeave, leave.ID))
}

// LeaveDecided tells the employee about an approval or rejection.
func (s *NotificationService) LeaveDecided(ctx context.Context, leave *models.LeaveView, approverName string) {
	emp := leave.EmployeeRef
	if emp == nil || emp.UserRef == nil {
		return
	}
	tmpl := email.LeaveApproved
	if leave.Status == models.LeaveRejected {
		tmpl = email.LeaveRejected
	}

	s.deliver(ctx, emp.UserRef, tmpl, email.Data{
		"EmployeeName":    emp.UserRef.FullName(),
		"LeaveType":       leave.LeaveType,
		"StartDate":       formatDay(leave.StartDate),
		"EndDate":         formatDay(leave.EndDate),
		"Days":            leave.Days,
		"ApproverName":    approverName,
		"RejectionReason": leave.RejectionReason,
	}, models.NewResourceRef(models.ResourceLeave, leave.ID))
}

func (s *NotificationService) PayrollIssued(ctx context.Context, payroll *models.Payroll) {
	emp, err := s.employees.GetEmployeeByID(ctx, payroll.EmployeeID)
	if err != nil || emp.UserRef == nil {
		logrus.WithField("payroll_id", payroll.ID.Hex()).Warn("payroll employee has no user to notify")
		return
	}

	s.deliver(ctx, emp.UserRef, email.PayrollGenerated, email.Data{
		"EmployeeName": emp.UserRef.FullName(),
		"Month":        payroll.Month,
		"BaseSalary":   fmt.Sprintf("%.2f", payroll.BaseSalary),
		"Bonus":        fmt.Sprintf("%.2f", payroll.Bonus),
		"Deductions":   fmt.Sprintf("%.2f", payroll.Deductions),
		"NetSalary":    fmt.Sprintf("%.2f", payroll.NetSalary),
	}, models.NewResourceRef(models.ResourcePayroll, payroll.ID))
}

// PayrollBatchGenerated records an in-app notice for each employee in the
// batch that resolves to a user and returns how many were recorded.
func (s *NotificationService) PayrollBatchGenerated(ctx context.Context, month string, employeeIDs []primitive.ObjectID) int {
	notified := 0
	for _, id := range employeeIDs {
		emp, err := s.employees.GetEmployeeByID(ctx, id)
		if err != nil || emp.UserRef == nil {
			continue
		}
		_, err = s.CreateNotification(ctx, emp.UserRef.ID, models.NotificationInput{
			Subject:         fmt.Sprintf("Payroll for %s", month),
			Message:         fmt.Sprintf("Payroll generation for %s has been started.", month),
			Type:            models.NotifyPayrollGenerated,
			RelatedResource: models.NewResourceRef(models.ResourceEmployee, emp.ID),
		})
		if err != nil {
			logrus.WithError(err).WithField("employee_id", id.Hex()).Warn("payroll notice not recorded")
			continue
		}
		notified++
	}
	return notified
}

// AttendanceFlagged alerts the employee when a record is absent or late.
func (s *NotificationService) AttendanceFlagged(ctx context.Context, a *models.Attendance) {
	if !a.NeedsAlert() {
		return
	}
	emp, err := s.employees.GetEmployeeByID(ctx, a.EmployeeID)
	if err != nil || emp.UserRef == nil {
		return
	}

	s.deliver(ctx, emp.UserRef, email.AttendanceAlert, email.Data{
		"EmployeeName": emp.UserRef.FullName(),
		"Date":         a.Date.Format(models.DateLayout),
		"Status":       a.Status,
		"Notes":        a.Notes,
	}, models.NewResourceRef(models.ResourceAttendance, a.ID))
}

// EmployeeOnboarded welcomes the user behind a new employee record.
func (s *NotificationService) EmployeeOnboarded(ctx context.Context, emp *models.EmployeeView) {
	if emp.UserRef == nil {
		return
	}
	department := ""
	if emp.DepartmentRef != nil {
		department = emp.DepartmentRef.Name
	}

	s.deliver(ctx, emp.UserRef, email.EmployeeWelcome, email.Data{
		"EmployeeName":   emp.UserRef.FullName(),
		"EmployeeID":     emp.EmployeeID,
		"Position":       emp.Position,
		"DepartmentName": department,
		"JoinDate":       formatDay(emp.JoinDate),
	}, models.NewResourceRef(models.ResourceEmployee, emp.ID))
}

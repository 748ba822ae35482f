package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotifyApprovalRequest  NotificationType = "approval_request"
	NotifyApprovalApproved NotificationType = "approval_approved"
	NotifyApprovalRejected NotificationType = "approval_rejected"
	NotifyAttendanceAlert  NotificationType = "attendance_alert"
	NotifyPayrollGenerated NotificationType = "payroll_generated"
	NotifyLeaveUpdate      NotificationType = "leave_update"
	NotifySystemAlert      NotificationType = "system_alert"
	NotifyGeneral          NotificationType = "general"
)

type Notification struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	RecipientID     primitive.ObjectID `json:"recipientId" bson:"recipient_id"`
	Subject         string             `json:"subject" bson:"subject"`
	Message         string             `json:"message" bson:"message"`
	Type            NotificationType   `json:"type" bson:"type"`
	RelatedResource *ResourceRef       `json:"relatedResource,omitempty" bson:"related_resource,omitempty"`
	IsRead          bool               `json:"isRead" bson:"is_read"`
	IsEmailSent     bool               `json:"isEmailSent" bson:"is_email_sent"`
	EmailError      string             `json:"emailError,omitempty" bson:"email_error,omitempty"`
	ReadAt          *time.Time         `json:"readAt,omitempty" bson:"read_at,omitempty"`
	CreatedAt       time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updated_at"`
}

// NotificationInput is what callers supply to create an in-app notification.
type NotificationInput struct {
	Subject         string
	Message         string
	Type            NotificationType
	RelatedResource *ResourceRef
}

const (
	FrequencyImmediate = "immediate"
	FrequencyDaily     = "daily"
	FrequencyWeekly    = "weekly"
)

type NotificationTypeToggles struct {
	ApprovalRequest  bool `json:"approvalRequest" bson:"approval_request"`
	ApprovalApproved bool `json:"approvalApproved" bson:"approval_approved"`
	ApprovalRejected bool `json:"approvalRejected" bson:"approval_rejected"`
	AttendanceAlert  bool `json:"attendanceAlert" bson:"attendance_alert"`
	PayrollGenerated bool `json:"payrollGenerated" bson:"payroll_generated"`
	LeaveUpdate      bool `json:"leaveUpdate" bson:"leave_update"`
	SystemAlert      bool `json:"systemAlert" bson:"system_alert"`
	General          bool `json:"general" bson:"general"`
}

func (t NotificationTypeToggles) Enabled(nt NotificationType) bool {
	switch nt {
	case NotifyApprovalRequest:
		return t.ApprovalRequest
	case NotifyApprovalApproved:
		return t.ApprovalApproved
	case NotifyApprovalRejected:
		return t.ApprovalRejected
	case NotifyAttendanceAlert:
		return t.AttendanceAlert
	case NotifyPayrollGenerated:
		return t.PayrollGenerated
	case NotifyLeaveUpdate:
		return t.LeaveUpdate
	case NotifySystemAlert:
		return t.SystemAlert
	case NotifyGeneral:
		return t.General
	}
	return false
}

type QuietHours struct {
	Enabled   bool   `json:"enabled" bson:"enabled"`
	StartTime string `json:"startTime,omitempty" bson:"start_time,omitempty"`
	EndTime   string `json:"endTime,omitempty" bson:"end_time,omitempty"`
}

type NotificationPreference struct {
	ID                 primitive.ObjectID      `json:"id,omitempty" bson:"_id,omitempty"`
	UserID             primitive.ObjectID      `json:"userId" bson:"user_id"`
	EmailNotifications bool                    `json:"emailNotifications" bson:"email_notifications"`
	InAppNotifications bool                    `json:"inAppNotifications" bson:"in_app_notifications"`
	Frequency          string                  `json:"frequency" bson:"frequency"`
	NotificationTypes  NotificationTypeToggles `json:"notificationTypes" bson:"notification_types"`
	QuietHours         QuietHours              `json:"quietHours" bson:"quiet_hours"`
	CreatedAt          time.Time               `json:"createdAt" bson:"created_at"`
	UpdatedAt          time.Time               `json:"updatedAt" bson:"updated_at"`
}

// DefaultNotificationPreference enables every channel and type.
func DefaultNotificationPreference(userID primitive.ObjectID) NotificationPreference {
	return NotificationPreference{
		UserID:             userID,
		EmailNotifications: true,
		InAppNotifications: true,
		Frequency:          FrequencyImmediate,
		NotificationTypes: NotificationTypeToggles{
			ApprovalRequest:  true,
			ApprovalApproved: true,
			ApprovalRejected: true,
			AttendanceAlert:  true,
			PayrollGenerated: true,
			LeaveUpdate:      true,
			SystemAlert:      true,
			General:          true,
		},
	}
}

// AllowsEmail is false when email is switched off globally or for the type.
func (p NotificationPreference) AllowsEmail(nt NotificationType) bool {
	return p.EmailNotifications && p.NotificationTypes.Enabled(nt)
}

// NotificationPreferenceView adds the next digest time for daily and weekly
// frequencies.
type NotificationPreferenceView struct {
	NotificationPreference
	NextDigestAt *time.Time `json:"nextDigestAt,omitempty"`
}

type NotificationTypeTogglesUpdate struct {
	ApprovalRequest  *bool `json:"approvalRequest"`
	ApprovalApproved *bool `json:"approvalApproved"`
	ApprovalRejected *bool `json:"approvalRejected"`
	AttendanceAlert  *bool `json:"attendanceAlert"`
	PayrollGenerated *bool `json:"payrollGenerated"`
	LeaveUpdate      *bool `json:"leaveUpdate"`
	SystemAlert      *bool `json:"systemAlert"`
	General          *bool `json:"general"`
}

type QuietHoursUpdate struct {
	Enabled   *bool   `json:"enabled"`
	StartTime *string `json:"startTime" validate:"omitempty,datetime=15:04"`
	EndTime   *string `json:"endTime" validate:"omitempty,datetime=15:04"`
}

type NotificationPreferenceUpdatePayload struct {
	EmailNotifications *bool                          `json:"emailNotifications"`
	InAppNotifications *bool                          `json:"inAppNotifications"`
	Frequency          *string                        `json:"frequency" validate:"omitempty,oneof=immediate daily weekly"`
	NotificationTypes  *NotificationTypeTogglesUpdate `json:"notificationTypes"`
	QuietHours         *QuietHoursUpdate              `json:"quietHours"`
}

// Updates flattens the supplied fields into dotted paths so untouched
// nested toggles keep their stored values.
func (p NotificationPreferenceUpdatePayload) Updates() bson.M {
	set := bson.M{}
	if p.EmailNotifications != nil {
		set["email_notifications"] = *p.EmailNotifications
	}
	if p.InAppNotifications != nil {
		set["in_app_notifications"] = *p.InAppNotifications
	}
	if p.Frequency != nil {
		set["frequency"] = *p.Frequency
	}
	if t := p.NotificationTypes; t != nil {
		toggles := []struct {
			key string
			val *bool
		}{
			{"approval_request", t.ApprovalRequest},
			{"approval_approved", t.ApprovalApproved},
			{"approval_rejected", t.ApprovalRejected},
			{"attendance_alert", t.AttendanceAlert},
			{"payroll_generated", t.PayrollGenerated},
			{"leave_update", t.LeaveUpdate},
			{"system_alert", t.SystemAlert},
			{"general", t.General},
		}
		for _, tg := range toggles {
			if tg.val != nil {
				set["notification_types."+tg.key] = *tg.val
			}
		}
	}
	if q := p.QuietHours; q != nil {
		if q.Enabled != nil {
			set["quiet_hours.enabled"] = *q.Enabled
		}
		if q.StartTime != nil {
			set["quiet_hours.start_time"] = *q.StartTime
		}
		if q.EndTime != nil {
			set["quiet_hours.end_time"] = *q.EndTime
		}
	}
	return set
}

type TestEmailPayload struct {
	Email string `json:"email" validate:"required,email"`
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"employee-management/models"
	"employee-management/pkg/email"
	"employee-management/pkg/schedule"
	"employee-management/repository"
)

var ErrInvalidNotification = errors.New("invalid notification")

// Mailer delivers a rendered email. *email.Client satisfies it.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) email.Result
}

type NotificationService struct {
	notifications repository.NotificationRepository
	preferences   repository.PreferenceRepository
	users         repository.UserRepository
	employees     repository.EmployeeRepository
	renderer      *email.Renderer
	mailer        Mailer
	now           func() time.Time
}

func NewNotificationService(
	notifications repository.NotificationRepository,
	preferences repository.PreferenceRepository,
	users repository.UserRepository,
	employees repository.EmployeeRepository,
	renderer *email.Renderer,
	mailer Mailer,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		preferences:   preferences,
		users:         users,
		employees:     employees,
		renderer:      renderer,
		mailer:        mailer,
		now:           time.Now,
	}
}

// notificationTypeFor maps every email template to the in-app type recorded
// alongside it.
func notificationTypeFor(t email.Template) models.NotificationType {
	switch t {
	case email.LeaveApprovalRequest:
		return models.NotifyApprovalRequest
	case email.LeaveApproved:
		return models.NotifyApprovalApproved
	case email.LeaveRejected:
		return models.NotifyApprovalRejected
	case email.PayrollGenerated:
		return models.NotifyPayrollGenerated
	case email.AttendanceAlert:
		return models.NotifyAttendanceAlert
	case email.PasswordReset, email.SystemAlert:
		return models.NotifySystemAlert
	case email.EmployeeWelcome:
		return models.NotifyGeneral
	}
	return models.NotifyGeneral
}

func (s *NotificationService) SendEmail(ctx context.Context, to, subject, html string) email.Result {
	return s.mailer.Send(ctx, to, subject, html)
}

// SendNotificationEmail renders tmpl for user and tries to deliver it. The
// notification row is written whatever happens to the email; only a failed
// insert is returned as an error.
func (s *NotificationService) SendNotificationEmail(ctx context.Context, user *models.User, tmpl email.Template, data email.Data, related *models.ResourceRef) (*models.Notification, error) {
	if user == nil {
		return nil, fmt.Errorf("%w: no recipient", ErrInvalidNotification)
	}

	nType := notificationTypeFor(tmpl)
	n := &models.Notification{
		RecipientID:     user.ID,
		Type:            nType,
		RelatedResource: notificationRef(related),
	}

	rendered, err := s.renderer.Render(tmpl, data)
	if err != nil {
		n.Subject = "Notification"
		n.Message = "You have a new notification."
		n.EmailError = err.Error()
	} else {
		n.Subject = rendered.Subject
		n.Message = rendered.Text
		if reason := s.emailBlocked(ctx, user.ID, nType); reason != "" {
			n.EmailError = reason
		} else {
			result := s.mailer.Send(ctx, user.Email, rendered.Subject, rendered.HTML)
			n.IsEmailSent = result.Success
			n.EmailError = result.Error
		}
	}

	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("save notification: %w", err)
	}
	return n, nil
}

// emailBlocked returns why email must not be sent, or "" when it may be.
func (s *NotificationService) emailBlocked(ctx context.Context, userID primitive.ObjectID, nType models.NotificationType) string {
	pref, err := s.preferences.GetOrCreate(ctx, userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID.Hex()).Warn("could not load notification preferences, using defaults")
		def := models.DefaultNotificationPreference(userID)
		pref = &def
	}
	if !pref.AllowsEmail(nType) {
		return "email notifications disabled by user preference"
	}
	if inQuietHours(pref.QuietHours, s.now()) {
		return "email suppressed during quiet hours"
	}
	return ""
}

func inQuietHours(q models.QuietHours, at time.Time) bool {
	if !q.Enabled {
		return false
	}
	start, ok1 := minuteOfDay(q.StartTime)
	end, ok2 := minuteOfDay(q.EndTime)
	if !ok1 || !ok2 || start == end {
		return false
	}
	now := at.UTC().Hour()*60 + at.UTC().Minute()
	if start < end {
		return now >= start && now < end
	}
	return now >= start || now < end
}

func minuteOfDay(hhmm string) (int, bool) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// notificationRef drops associations notifications cannot carry.
func notificationRef(ref *models.ResourceRef) *models.ResourceRef {
	if ref == nil || !ref.Type.ValidForNotification() {
		return nil
	}
	return ref
}

// CreateNotification stores an in-app notification without sending email.
func (s *NotificationService) CreateNotification(ctx context.Context, userID primitive.ObjectID, in models.NotificationInput) (*models.Notification, error) {
	if in.Subject == "" || in.Message == "" {
		return nil, fmt.Errorf("%w: subject and message are required", ErrInvalidNotification)
	}
	if in.Type == "" {
		in.Type = models.NotifyGeneral
	}
	if in.RelatedResource != nil && !in.RelatedResource.Type.ValidForNotification() {
		return nil, fmt.Errorf("%w: resource type %q", ErrInvalidNotification, in.RelatedResource.Type)
	}

	n := &models.Notification{
		RecipientID:     userID,
		Subject:         in.Subject,
		Message:         in.Message,
		Type:            in.Type,
		RelatedResource: in.RelatedResource,
	}
	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("save notification: %w", err)
	}
	return n, nil
}

func (s *NotificationService) List(ctx context.Context, userID primitive.ObjectID, page, limit int64) ([]models.Notification, int64, error) {
	return s.notifications.ListForRecipient(ctx, userID, page, limit)
}

// MarkAsRead is idempotent. It returns repository.ErrNotFound when the
// notification does not belong to userID.
func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID primitive.ObjectID) (*models.Notification, error) {
	n, err := s.notifications.FindForRecipient(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if n.IsRead {
		return n, nil
	}
	if err := s.notifications.MarkAsRead(ctx, id, userID, s.now()); err != nil {
		return nil, err
	}
	return s.notifications.FindForRecipient(ctx, id, userID)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.notifications.MarkAllAsRead(ctx, userID, s.now())
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.notifications.CountUnread(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	return s.notifications.DeleteForRecipient(ctx, id, userID)
}

func (s *NotificationService) GetPreferences(ctx context.Context, userID primitive.ObjectID) (*models.NotificationPreferenceView, error) {
	pref, err := s.preferences.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.preferenceView(pref), nil
}

func (s *NotificationService) UpdatePreferences(ctx context.Context, userID primitive.ObjectID, payload models.NotificationPreferenceUpdatePayload) (*models.NotificationPreferenceView, error) {
	set := payload.Updates()
	if len(set) == 0 {
		return s.GetPreferences(ctx, userID)
	}
	pref, err := s.preferences.UpdatePreferences(ctx, userID, set)
	if err != nil {
		return nil, err
	}
	return s.preferenceView(pref), nil
}

func (s *NotificationService) preferenceView(pref *models.NotificationPreference) *models.NotificationPreferenceView {
	view := &models.NotificationPreferenceView{NotificationPreference: *pref}
	next, err := schedule.NextDigest(pref.Frequency, s.now())
	if err != nil {
		logrus.WithError(err).Warn("could not compute next digest time")
		return view
	}
	view.NextDigestAt = next
	return view
}

// SendTestEmail renders a system alert and sends it straight to the address
// without recording a notification.
func (s *NotificationService) SendTestEmail(ctx context.Context, to string) email.Result {
	rendered, err := s.renderer.Render(email.SystemAlert, email.Data{
		"Name":    to,
		"Subject": "Test Email - Employee Management System",
		"Message": "This is a test email. Your email configuration is working correctly.",
	})
	if err != nil {
		return email.Result{Error: err.Error()}
	}
	return s.mailer.Send(ctx, to, rendered.Subject, rendered.HTML)
}

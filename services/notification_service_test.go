package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"employee-management/models"
	"employee-management/pkg/email"
	"employee-management/repository"
	"employee-management/repository/repotest"
)

type sentMail struct {
	to, subject string
}

type fakeMailer struct {
	sent []sentMail
	err  string
}

func (f *fakeMailer) Send(_ context.Context, to, subject, _ string) email.Result {
	if f.err != "" {
		return email.Result{Error: f.err}
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject})
	return email.Result{Success: true, MessageID: "<test@example.com>"}
}

func newTestService(t *testing.T) (*NotificationService, *repotest.Store, *fakeMailer) {
	t.Helper()
	renderer, err := email.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	store := repotest.New()
	mailer := &fakeMailer{}
	svc := NewNotificationService(store, store, store, store, renderer, mailer)
	svc.now = func() time.Time { return time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC) }
	return svc, store, mailer
}

func createUser(t *testing.T, store *repotest.Store, addr string) *models.User {
	t.Helper()
	u := &models.User{Email: addr, FirstName: "Jane", LastName: "Doe"}
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestSendNotificationEmailDelivers(t *testing.T) {
	svc, store, mailer := newTestService(t)
	user := createUser(t, store, "jane@example.com")

	n, err := svc.SendNotificationEmail(context.Background(), user, email.PayrollGenerated, email.Data{"Month": "2024-06"}, models.NewResourceRef(models.ResourcePayroll, primitive.NewObjectID()))
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !n.IsEmailSent || n.EmailError != "" {
		t.Fatalf("expected email sent, got %+v", n)
	}
	if n.Type != models.NotifyPayrollGenerated || n.Subject != "Your Payroll for 2024-06 is Ready" {
		t.Fatalf("unexpected notification: %+v", n)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].to != "jane@example.com" {
		t.Fatalf("unexpected mail: %+v", mailer.sent)
	}
	if got := store.Notifications(user.ID); len(got) != 1 {
		t.Fatalf("expected 1 stored notification, got %d", len(got))
	}
}

func TestSendNotificationEmailRespectsPreferences(t *testing.T) {
	ctx := context.Background()
	svc, store, mailer := newTestService(t)
	user := createUser(t, store, "jane@example.com")

	off := false
	if _, err := svc.UpdatePreferences(ctx, user.ID, models.NotificationPreferenceUpdatePayload{
		NotificationTypes: &models.NotificationTypeTogglesUpdate{ApprovalApproved: &off},
	}); err != nil {
		t.Fatalf("update preferences: %v", err)
	}

	n, err := svc.SendNotificationEmail(ctx, user, email.LeaveApproved, email.Data{"LeaveType": "annual"}, nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if n.IsEmailSent || n.EmailError == "" {
		t.Fatalf("expected suppressed email, got %+v", n)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("expected no mail, got %+v", mailer.sent)
	}

	if _, err := svc.SendNotificationEmail(ctx, user, email.PayrollGenerated, email.Data{"Month": "2024-06"}, nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatal("other types should still be emailed")
	}
	if got := store.Notifications(user.ID); len(got) != 2 {
		t.Fatalf("expected both notifications stored, got %d", len(got))
	}
}

func TestSendNotificationEmailQuietHours(t *testing.T) {
	ctx := context.Background()
	svc, store, mailer := newTestService(t)
	user := createUser(t, store, "jane@example.com")

	on := true
	start, end := "22:00", "07:00"
	if _, err := svc.UpdatePreferences(ctx, user.ID, models.NotificationPreferenceUpdatePayload{
		QuietHours: &models.QuietHoursUpdate{Enabled: &on, StartTime: &start, EndTime: &end},
	}); err != nil {
		t.Fatalf("update preferences: %v", err)
	}

	svc.now = func() time.Time { return time.Date(2024, 6, 12, 23, 30, 0, 0, time.UTC) }
	n, err := svc.SendNotificationEmail(ctx, user, email.SystemAlert, email.Data{"Message": "late"}, nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if n.IsEmailSent || n.EmailError != "email suppressed during quiet hours" {
		t.Fatalf("expected quiet hours suppression, got %+v", n)
	}

	svc.now = func() time.Time { return time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC) }
	if n, _ = svc.SendNotificationEmail(ctx, user, email.SystemAlert, email.Data{"Message": "morning"}, nil); !n.IsEmailSent {
		t.Fatalf("expected delivery outside quiet hours, got %+v", n)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected one mail, got %d", len(mailer.sent))
	}
}

func TestSendNotificationEmailFailuresStillRecord(t *testing.T) {
	ctx := context.Background()
	svc, store, mailer := newTestService(t)
	user := createUser(t, store, "jane@example.com")

	mailer.err = "smtp unavailable"
	n, err := svc.SendNotificationEmail(ctx, user, email.SystemAlert, email.Data{"Message": "hi"}, nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if n.IsEmailSent || n.EmailError != "smtp unavailable" {
		t.Fatalf("expected recorded failure, got %+v", n)
	}

	n, err = svc.SendNotificationEmail(ctx, user, email.Template("missing"), nil, nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if n.Subject != "Notification" || n.EmailError == "" {
		t.Fatalf("expected generic notification for render failure, got %+v", n)
	}

	if _, err := svc.SendNotificationEmail(ctx, nil, email.SystemAlert, nil, nil); !errors.Is(err, ErrInvalidNotification) {
		t.Fatalf("expected ErrInvalidNotification, got %v", err)
	}
	if got := store.Notifications(user.ID); len(got) != 2 {
		t.Fatalf("expected 2 stored notifications, got %d", len(got))
	}
}

func TestSendNotificationEmailDropsGeneralReference(t *testing.T) {
	svc, store, _ := newTestService(t)
	user := createUser(t, store, "jane@example.com")

	n, err := svc.SendNotificationEmail(context.Background(), user, email.SystemAlert, email.Data{"Message": "x"}, models.NewResourceRef(models.ResourceGeneral, primitive.NewObjectID()))
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if n.RelatedResource != nil {
		t.Fatalf("expected general reference to be dropped, got %+v", n.RelatedResource)
	}
}

func TestCreateNotificationValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	userID := primitive.NewObjectID()

	if _, err := svc.CreateNotification(ctx, userID, models.NotificationInput{Message: "no subject"}); !errors.Is(err, ErrInvalidNotification) {
		t.Fatalf("expected ErrInvalidNotification, got %v", err)
	}
	if _, err := svc.CreateNotification(ctx, userID, models.NotificationInput{
		Subject: "s", Message: "m", RelatedResource: models.NewResourceRef(models.ResourceGeneral, primitive.NewObjectID()),
	}); !errors.Is(err, ErrInvalidNotification) {
		t.Fatalf("expected ErrInvalidNotification for general resource, got %v", err)
	}

	n, err := svc.CreateNotification(ctx, userID, models.NotificationInput{Subject: "s", Message: "m"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if n.Type != models.NotifyGeneral || n.IsRead {
		t.Fatalf("unexpected defaults: %+v", n)
	}
}

func TestMarkAsReadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	userID := primitive.NewObjectID()

	n, err := svc.CreateNotification(ctx, userID, models.NotificationInput{Subject: "s", Message: "m"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := svc.MarkAsRead(ctx, n.ID, userID)
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if !first.IsRead || first.ReadAt == nil {
		t.Fatalf("expected read notification, got %+v", first)
	}

	svc.now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }
	second, err := svc.MarkAsRead(ctx, n.ID, userID)
	if err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if !second.ReadAt.Equal(*first.ReadAt) {
		t.Fatalf("expected readAt unchanged, got %v then %v", first.ReadAt, second.ReadAt)
	}

	if _, err := svc.MarkAsRead(ctx, n.ID, primitive.NewObjectID()); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another user, got %v", err)
	}
}

func TestUnreadCountAndMarkAll(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	userID := primitive.NewObjectID()

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateNotification(ctx, userID, models.NotificationInput{Subject: "s", Message: "m"}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := svc.CreateNotification(ctx, primitive.NewObjectID(), models.NotificationInput{Subject: "s", Message: "m"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if count, _ := svc.UnreadCount(ctx, userID); count != 3 {
		t.Fatalf("expected 3 unread, got %d", count)
	}
	if modified, _ := svc.MarkAllAsRead(ctx, userID); modified != 3 {
		t.Fatalf("expected 3 modified, got %d", modified)
	}
	if modified, _ := svc.MarkAllAsRead(ctx, userID); modified != 0 {
		t.Fatalf("expected nothing left to mark, got %d", modified)
	}
	if count, _ := svc.UnreadCount(ctx, userID); count != 0 {
		t.Fatalf("expected 0 unread, got %d", count)
	}
}

func TestPreferencesDefaultsAndPartialUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	userID := primitive.NewObjectID()

	pref, err := svc.GetPreferences(ctx, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !pref.EmailNotifications || pref.Frequency != models.FrequencyImmediate || pref.NextDigestAt != nil {
		t.Fatalf("unexpected defaults: %+v", pref)
	}

	weekly := models.FrequencyWeekly
	off := false
	pref, err = svc.UpdatePreferences(ctx, userID, models.NotificationPreferenceUpdatePayload{
		Frequency:         &weekly,
		NotificationTypes: &models.NotificationTypeTogglesUpdate{General: &off},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if pref.Frequency != models.FrequencyWeekly || pref.NotificationTypes.General {
		t.Fatalf("update not applied: %+v", pref)
	}
	if !pref.NotificationTypes.LeaveUpdate || !pref.EmailNotifications {
		t.Fatalf("untouched fields changed: %+v", pref)
	}
	want := time.Date(2024, 6, 17, 8, 0, 0, 0, time.UTC)
	if pref.NextDigestAt == nil || !pref.NextDigestAt.Equal(want) {
		t.Fatalf("expected next digest %v, got %v", want, pref.NextDigestAt)
	}
}

func TestPayrollBatchGenerated(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	user := createUser(t, store, "jane@example.com")

	withUser := &models.Employee{UserID: user.ID, EmployeeID: "EMP-1"}
	orphan := &models.Employee{UserID: primitive.NewObjectID(), EmployeeID: "EMP-2"}
	for _, e := range []*models.Employee{withUser, orphan} {
		if err := store.CreateEmployee(ctx, e); err != nil {
			t.Fatalf("create employee: %v", err)
		}
	}

	got := svc.PayrollBatchGenerated(ctx, "2024-06", []primitive.ObjectID{withUser.ID, orphan.ID, primitive.NewObjectID()})
	if got != 1 {
		t.Fatalf("expected 1 notice, got %d", got)
	}
	notes := store.Notifications(user.ID)
	if len(notes) != 1 || notes[0].Type != models.NotifyPayrollGenerated || notes[0].IsEmailSent {
		t.Fatalf("unexpected notices: %+v", notes)
	}
}

func TestLeaveSubmittedNotifiesDepartmentManager(t *testing.T) {
	ctx := context.Background()
	svc, store, mailer := newTestService(t)
	manager := createUser(t, store, "boss@example.com")
	staff := createUser(t, store, "staff@example.com")

	dept := &models.Department{Name: "Engineering", Manager: &manager.ID}
	if err := store.CreateDepartment(ctx, dept); err != nil {
		t.Fatalf("create department: %v", err)
	}
	emp := &models.Employee{UserID: staff.ID, EmployeeID: "EMP-1", DepartmentID: dept.ID}
	if err := store.CreateEmployee(ctx, emp); err != nil {
		t.Fatalf("create employee: %v", err)
	}
	leave := &models.Leave{EmployeeID: emp.ID, LeaveType: "sick", StartDate: time.Now(), EndDate: time.Now(), Days: 1}
	if err := store.CreateLeave(ctx, leave); err != nil {
		t.Fatalf("create leave: %v", err)
	}

	svc.LeaveSubmitted(ctx, leave)

	if len(mailer.sent) != 1 || mailer.sent[0].to != "boss@example.com" {
		t.Fatalf("expected manager email, got %+v", mailer.sent)
	}
	notes := store.Notifications(manager.ID)
	if len(notes) != 1 || notes[0].Type != models.NotifyApprovalRequest {
		t.Fatalf("unexpected manager notifications: %+v", notes)
	}
	if notes[0].RelatedResource == nil || notes[0].RelatedResource.ID != leave.ID {
		t.Fatalf("expected leave reference, got %+v", notes[0].RelatedResource)
	}
}

func TestAttendanceFlaggedOnlyForAbsentOrLate(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	user := createUser(t, store, "jane@example.com")
	emp := &models.Employee{UserID: user.ID, EmployeeID: "EMP-1"}
	if err := store.CreateEmployee(ctx, emp); err != nil {
		t.Fatalf("create employee: %v", err)
	}

	for _, status := range []string{models.AttendancePresent, models.AttendanceLate, models.AttendanceHalfDay, models.AttendanceAbsent} {
		svc.AttendanceFlagged(ctx, &models.Attendance{ID: primitive.NewObjectID(), EmployeeID: emp.ID, Status: status, Date: time.Now()})
	}
	if got := store.Notifications(user.ID); len(got) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(got))
	}
}

func TestInQuietHours(t *testing.T) {
	at := func(h, m int) time.Time { return time.Date(2024, 6, 12, h, m, 0, 0, time.UTC) }
	cases := []struct {
		name string
		q    models.QuietHours
		at   time.Time
		want bool
	}{
		{"disabled", models.QuietHours{StartTime: "00:00", EndTime: "23:59"}, at(12, 0), false},
		{"same day inside", models.QuietHours{Enabled: true, StartTime: "12:00", EndTime: "14:00"}, at(13, 0), true},
		{"same day end exclusive", models.QuietHours{Enabled: true, StartTime: "12:00", EndTime: "14:00"}, at(14, 0), false},
		{"overnight late", models.QuietHours{Enabled: true, StartTime: "22:00", EndTime: "07:00"}, at(23, 0), true},
		{"overnight early", models.QuietHours{Enabled: true, StartTime: "22:00", EndTime: "07:00"}, at(6, 59), true},
		{"overnight outside", models.QuietHours{Enabled: true, StartTime: "22:00", EndTime: "07:00"}, at(12, 0), false},
		{"malformed", models.QuietHours{Enabled: true, StartTime: "late", EndTime: "07:00"}, at(23, 0), false},
	}
	for _, tc := range cases {
		if got := inQuietHours(tc.q, tc.at); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

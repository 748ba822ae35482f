package email

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type recordingTransport struct {
	sent []Message
	err  error
}

func (r *recordingTransport) Deliver(_ context.Context, msg Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func TestRenderSubjects(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}

	cases := []struct {
		tmpl    Template
		data    Data
		subject string
		body    string
	}{
		{LeaveApprovalRequest, Data{"EmployeeName": "Jane Doe", "LeaveType": "sick"}, "Leave Request from Jane Doe - Action Required", "Jane Doe"},
		{LeaveApproved, Data{"LeaveType": "annual"}, "Your Leave Request Has Been Approved", "annual"},
		{LeaveRejected, Data{"RejectionReason": "Peak season"}, "Your Leave Request Has Been Rejected", "Peak season"},
		{PayrollGenerated, Data{"Month": "2024-06"}, "Your Payroll for 2024-06 is Ready", "2024-06"},
		{AttendanceAlert, Data{"Date": "2024-06-12", "Status": "late"}, "Attendance Alert - 2024-06-12", "late"},
		{EmployeeWelcome, Data{"EmployeeID": "EMP-001"}, "Welcome to the Company", "EMP-001"},
		{SystemAlert, Data{"Subject": "Maintenance", "Message": "Down at noon"}, "Maintenance", "Down at noon"},
		{SystemAlert, Data{"Message": "hello"}, "System Notification", "hello"},
	}
	for _, tc := range cases {
		out, err := r.Render(tc.tmpl, tc.data)
		if err != nil {
			t.Fatalf("%s: render error %v", tc.tmpl, err)
		}
		if out.Subject != tc.subject {
			t.Fatalf("%s: expected subject %q, got %q", tc.tmpl, tc.subject, out.Subject)
		}
		if !strings.Contains(out.HTML, tc.body) {
			t.Fatalf("%s: expected body to contain %q", tc.tmpl, tc.body)
		}
		if !strings.Contains(out.HTML, "Employee Management System") {
			t.Fatalf("%s: expected layout footer", tc.tmpl)
		}
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	if Template("nope").Known() {
		t.Fatal("expected unknown template")
	}
	if _, err := r.Render("nope", nil); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestClientSend(t *testing.T) {
	transport := &recordingTransport{}
	client := NewClient(transport, "noreply@acme.test")

	res := client.Send(context.Background(), "jane@example.com", "Hi", "<p>Hi</p>")
	if !res.Success || res.Error != "" {
		t.Fatalf("expected success, got %+v", res)
	}
	if !strings.HasSuffix(res.MessageID, "@acme.test>") {
		t.Fatalf("expected message id on sender domain, got %q", res.MessageID)
	}
	if len(transport.sent) != 1 || transport.sent[0].To != "jane@example.com" || transport.sent[0].From != "noreply@acme.test" {
		t.Fatalf("unexpected delivery: %+v", transport.sent)
	}
}

func TestClientSendFailures(t *testing.T) {
	transport := &recordingTransport{err: errors.New("connection refused")}
	client := NewClient(transport, "noreply@acme.test")

	res := client.Send(context.Background(), "jane@example.com", "Hi", "<p>Hi</p>")
	if res.Success || res.Error != "connection refused" {
		t.Fatalf("expected transport error in result, got %+v", res)
	}

	res = client.Send(context.Background(), "  ", "Hi", "<p>Hi</p>")
	if res.Success || res.Error == "" {
		t.Fatalf("expected empty recipient failure, got %+v", res)
	}
}

func TestBuildMessageHeaders(t *testing.T) {
	raw := string(buildMessage(Message{ID: "<1@acme.test>", From: "a@acme.test", To: "b@acme.test", Subject: "Hello", HTML: "<p>x</p>"}))
	for _, want := range []string{"From: a@acme.test\r\n", "To: b@acme.test\r\n", "Subject: Hello\r\n", "Message-ID: <1@acme.test>\r\n", "Content-Type: text/html", "\r\n\r\n<p>x</p>"} {
		if !strings.Contains(raw, want) {
			t.Fatalf("expected %q in message:\n%s", want, raw)
		}
	}
}

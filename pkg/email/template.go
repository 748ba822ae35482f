package email

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var templateFS embed.FS

// Template names the closed set of emails the system sends.
type Template string

const (
	LeaveApprovalRequest Template = "leave_approval_request"
	LeaveApproved        Template = "leave_approved"
	LeaveRejected        Template = "leave_rejected"
	PayrollGenerated     Template = "payroll_generated"
	AttendanceAlert      Template = "attendance_alert"
	EmployeeWelcome      Template = "employee_welcome"
	PasswordReset        Template = "password_reset"
	SystemAlert          Template = "system_alert"
)

// Data is the binding passed to a template.
type Data map[string]any

type meta struct {
	heading string
	color   string
	subject func(Data) string
	summary func(Data) string
}

var templates = map[Template]meta{
	LeaveApprovalRequest: {
		heading: "Leave Request Pending Approval",
		color:   "#2196F3",
		subject: func(d Data) string { return fmt.Sprintf("Leave Request from %v - Action Required", d["EmployeeName"]) },
		summary: func(d Data) string {
			return fmt.Sprintf("%v requested %v leave from %v to %v.", d["EmployeeName"], d["LeaveType"], d["StartDate"], d["EndDate"])
		},
	},
	LeaveApproved: {
		heading: "Leave Request Approved",
		color:   "#4CAF50",
		subject: func(Data) string { return "Your Leave Request Has Been Approved" },
		summary: func(d Data) string {
			return fmt.Sprintf("Your %v leave from %v to %v was approved.", d["LeaveType"], d["StartDate"], d["EndDate"])
		},
	},
	LeaveRejected: {
		heading: "Leave Request Rejected",
		color:   "#f44336",
		subject: func(Data) string { return "Your Leave Request Has Been Rejected" },
		summary: func(d Data) string {
			msg := fmt.Sprintf("Your %v leave from %v to %v was rejected.", d["LeaveType"], d["StartDate"], d["EndDate"])
			if r, ok := d["RejectionReason"].(string); ok && r != "" {
				msg += " Reason: " + r
			}
			return msg
		},
	},
	PayrollGenerated: {
		heading: "Payroll Generated",
		color:   "#9C27B0",
		subject: func(d Data) string { return fmt.Sprintf("Your Payroll for %v is Ready", d["Month"]) },
		summary: func(d Data) string { return fmt.Sprintf("Payroll for %v has been generated.", d["Month"]) },
	},
	AttendanceAlert: {
		heading: "Attendance Alert",
		color:   "#FF9800",
		subject: func(d Data) string { return fmt.Sprintf("Attendance Alert - %v", d["Date"]) },
		summary: func(d Data) string { return fmt.Sprintf("Attendance on %v was recorded as %v.", d["Date"], d["Status"]) },
	},
	EmployeeWelcome: {
		heading: "Welcome to the Team",
		color:   "#009688",
		subject: func(Data) string { return "Welcome to the Company" },
		summary: func(d Data) string {
			return fmt.Sprintf("Your employee profile %v (%v) has been created.", d["EmployeeID"], d["Position"])
		},
	},
	PasswordReset: {
		heading: "Password Reset",
		color:   "#607D8B",
		subject: func(Data) string { return "Password Reset Request" },
		summary: func(Data) string { return "A password reset was requested for your account." },
	},
	SystemAlert: {
		heading: "System Notification",
		color:   "#795548",
		subject: func(d Data) string {
			if s, ok := d["Subject"].(string); ok && s != "" {
				return s
			}
			return "System Notification"
		},
		summary: func(d Data) string { return fmt.Sprintf("%v", d["Message"]) },
	},
}

// Rendered is a template ready to send.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

// Known reports whether t is one of the defined templates.
func (t Template) Known() bool {
	_, ok := templates[t]
	return ok
}

// Renderer turns a template and its data into a subject and HTML body.
type Renderer struct {
	engine *html.Engine
}

func NewRenderer() (*Renderer, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to open email templates: %w", err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	return &Renderer{engine: engine}, nil
}

func (r *Renderer) Render(t Template, data Data) (*Rendered, error) {
	m, ok := templates[t]
	if !ok {
		return nil, fmt.Errorf("unknown email template %q", t)
	}

	binding := Data{"Heading": m.heading, "Color": m.color}
	for k, v := range data {
		binding[k] = v
	}

	var buf bytes.Buffer
	if err := r.engine.Render(&buf, string(t), binding, "layouts/main"); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", t, err)
	}
	return &Rendered{
		Subject: m.subject(binding),
		HTML:    buf.String(),
		Text:    m.summary(binding),
	}, nil
}

package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"employee-management/models"
	"employee-management/pkg/email"
	"employee-management/pkg/paseto"
	"employee-management/pkg/storage"
	"employee-management/repository/repotest"
	"employee-management/router"
	"employee-management/seeder"
	"employee-management/services"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "Admin123!"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R', 0, 0, 0, 1}

type testEnv struct {
	app   *fiber.App
	store *repotest.Store
	files *storage.Local
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := repotest.New()

	tokens, err := paseto.NewMaker(bytes.Repeat([]byte{1}, 32), time.Hour)
	if err != nil {
		t.Fatalf("token maker: %v", err)
	}
	files, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	renderer, err := email.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	notifier := services.NewNotificationService(store, store, store, store, renderer,
		email.NewClient(email.NewLogTransport(), "noreply@example.com"))

	if _, err := seeder.SeedAdmin(context.Background(), store, adminEmail, adminPassword); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	app := router.NewApp(router.Dependencies{
		Users:         store,
		Employees:     store,
		Departments:   store,
		Attendance:    store,
		Leaves:        store,
		Payrolls:      store,
		Documents:     store,
		Notifications: notifier,
		Files:         files,
		Tokens:        tokens,
	}, []string{"http://localhost:3000"})

	return &testEnv{app: app, store: store, files: files}
}

type envelope struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message"`
	Token        string          `json:"token"`
	Data         json.RawMessage `json:"data"`
	User         json.RawMessage `json:"user"`
	Count        int             `json:"count"`
	Total        int64           `json:"total"`
	DeletedCount int64           `json:"deletedCount"`
}

func (e *testEnv) do(t *testing.T, req *http.Request, token string) (*http.Response, []byte) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

func (e *testEnv) call(t *testing.T, method, path, token string, payload any, wantStatus int) envelope {
	t.Helper()
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, body := e.do(t, req, token)
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected %d, got %d: %s", method, path, wantStatus, resp.StatusCode, body)
	}
	var env envelope
	if len(body) > 0 {
		if err := json.Unmarshal(body, &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, body, err)
		}
	}
	return env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return out
}

func (e *testEnv) login(t *testing.T, addr, password string) string {
	t.Helper()
	env := e.call(t, "POST", "/api/auth/login", "", map[string]string{"email": addr, "password": password}, fiber.StatusOK)
	if env.Token == "" {
		t.Fatal("expected token")
	}
	return env.Token
}

func (e *testEnv) register(t *testing.T, addr string) (string, string) {
	t.Helper()
	env := e.call(t, "POST", "/api/auth/register", "", map[string]string{
		"email": addr, "password": "Secret123", "firstName": "Jane", "lastName": "Doe",
	}, fiber.StatusCreated)
	user := decode[map[string]any](t, env.User)
	return env.Token, user["id"].(string)
}

// setupEmployee creates a department and an employee record for a newly
// registered user, returning the admin token, the employee's token and ids.
func (e *testEnv) setupEmployee(t *testing.T) (adminToken, empToken, deptID, empID string) {
	t.Helper()
	adminToken = e.login(t, adminEmail, adminPassword)

	dept := e.call(t, "POST", "/api/departments", adminToken, map[string]any{"name": "Engineering", "budget": 1000}, fiber.StatusCreated)
	deptID = decode[map[string]any](t, dept.Data)["id"].(string)

	empToken, userID := e.register(t, "jane@example.com")
	emp := e.call(t, "POST", "/api/employees", adminToken, map[string]any{
		"user":       userID,
		"employeeId": "EMP-001",
		"department": deptID,
		"position":   "Engineer",
		"salary":     5000,
		"joinDate":   "2024-01-15",
	}, fiber.StatusCreated)
	empID = decode[map[string]any](t, emp.Data)["id"].(string)
	return adminToken, empToken, deptID, empID
}

func TestHealthAndRoot(t *testing.T) {
	e := newTestEnv(t)
	if env := e.call(t, "GET", "/api/health", "", nil, fiber.StatusOK); !env.Success || env.Message != "Server is running" {
		t.Fatalf("expected healthy response, got %+v", env)
	}
	if env := e.call(t, "GET", "/", "", nil, fiber.StatusOK); env.Message != "Employee Management API" {
		t.Fatalf("unexpected root message %q", env.Message)
	}
}

func TestAuthFlow(t *testing.T) {
	e := newTestEnv(t)

	token, _ := e.register(t, "Jane@Example.com")
	me := e.call(t, "GET", "/api/auth/me", token, nil, fiber.StatusOK)
	user := decode[map[string]any](t, me.Data)
	if user["email"] != "jane@example.com" || user["role"] != models.RoleEmployee {
		t.Fatalf("unexpected user %v", user)
	}
	if _, ok := user["password"]; ok {
		t.Fatal("password hash must not be exposed")
	}

	e.call(t, "POST", "/api/auth/register", "", map[string]string{
		"email": "jane@example.com", "password": "Secret123", "firstName": "J", "lastName": "D",
	}, fiber.StatusConflict)

	wrong := e.call(t, "POST", "/api/auth/login", "", map[string]string{"email": "jane@example.com", "password": "nope"}, fiber.StatusUnauthorized)
	unknown := e.call(t, "POST", "/api/auth/login", "", map[string]string{"email": "ghost@example.com", "password": "nope"}, fiber.StatusUnauthorized)
	if wrong.Message != unknown.Message {
		t.Fatalf("login failures must not reveal which part was wrong: %q vs %q", wrong.Message, unknown.Message)
	}

	e.login(t, "jane@example.com", "Secret123")
	e.call(t, "POST", "/api/auth/logout", token, nil, fiber.StatusOK)
}

func TestRegisterValidationPersistsNothing(t *testing.T) {
	e := newTestEnv(t)
	e.call(t, "POST", "/api/auth/register", "", map[string]string{"email": "partial@example.com"}, fiber.StatusBadRequest)
	if _, err := e.store.FindUserByEmail(context.Background(), "partial@example.com"); err == nil {
		t.Fatal("invalid registration must not create a user")
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e := newTestEnv(t)
	e.call(t, "GET", "/api/employees", "", nil, fiber.StatusUnauthorized)
	e.call(t, "GET", "/api/employees", "not-a-token", nil, fiber.StatusUnauthorized)

	req := httptest.NewRequest("GET", "/api/employees", nil)
	req.Header.Set("Authorization", "Token abc")
	if resp, _ := e.do(t, req, ""); resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for malformed header, got %d", resp.StatusCode)
	}
}

func TestEmployeeLifecycle(t *testing.T) {
	e := newTestEnv(t)
	adminToken, empToken, deptID, empID := e.setupEmployee(t)

	list := e.call(t, "GET", "/api/employees", empToken, nil, fiber.StatusOK)
	if list.Count != 1 {
		t.Fatalf("expected 1 employee, got %d", list.Count)
	}
	employees := decode[[]map[string]any](t, list.Data)
	dept, _ := employees[0]["department"].(map[string]any)
	if dept == nil || dept["name"] != "Engineering" {
		t.Fatalf("expected expanded department, got %v", employees[0]["department"])
	}
	user, _ := employees[0]["user"].(map[string]any)
	if user == nil || user["email"] != "jane@example.com" {
		t.Fatalf("expected expanded user, got %v", employees[0]["user"])
	}

	deptView := decode[map[string]any](t, e.call(t, "GET", "/api/departments/"+deptID, adminToken, nil, fiber.StatusOK).Data)
	if deptView["employeeCount"] != float64(1) {
		t.Fatalf("expected employee count 1, got %v", deptView["employeeCount"])
	}

	e.call(t, "POST", "/api/employees", adminToken, map[string]any{
		"user": employees[0]["user"].(map[string]any)["id"], "employeeId": "EMP-001", "department": deptID,
		"position": "Engineer", "salary": 1, "joinDate": "2024-01-15",
	}, fiber.StatusConflict)

	updated := e.call(t, "PUT", "/api/employees/"+empID, adminToken, map[string]any{"position": "Senior Engineer"}, fiber.StatusOK)
	if got := decode[map[string]any](t, updated.Data)["position"]; got != "Senior Engineer" {
		t.Fatalf("expected updated position, got %v", got)
	}
	e.call(t, "PUT", "/api/employees/"+empID, adminToken, map[string]any{}, fiber.StatusBadRequest)

	e.call(t, "GET", "/api/employees/not-an-id", adminToken, nil, fiber.StatusNotFound)
	e.call(t, "DELETE", "/api/employees/"+empID, adminToken, nil, fiber.StatusOK)
	e.call(t, "GET", "/api/employees/"+empID, adminToken, nil, fiber.StatusNotFound)
	e.call(t, "DELETE", "/api/employees/"+empID, adminToken, nil, fiber.StatusNotFound)

	deptView = decode[map[string]any](t, e.call(t, "GET", "/api/departments/"+deptID, adminToken, nil, fiber.StatusOK).Data)
	if deptView["employeeCount"] != float64(0) {
		t.Fatalf("expected employee count back to 0, got %v", deptView["employeeCount"])
	}
}

func TestEmployeeCreateValidation(t *testing.T) {
	e := newTestEnv(t)
	adminToken := e.login(t, adminEmail, adminPassword)

	e.call(t, "POST", "/api/employees", adminToken, map[string]any{"employeeId": "EMP-9"}, fiber.StatusBadRequest)
	missing := e.call(t, "POST", "/api/employees", adminToken, map[string]any{
		"user": "65a000000000000000000001", "employeeId": "EMP-9", "department": "65a000000000000000000002",
		"position": "Engineer", "salary": 10, "joinDate": "2024-01-15",
	}, fiber.StatusBadRequest)
	if missing.Message != "User does not exist" {
		t.Fatalf("unexpected message %q", missing.Message)
	}

	list := e.call(t, "GET", "/api/employees", adminToken, nil, fiber.StatusOK)
	if list.Count != 0 {
		t.Fatalf("expected nothing persisted, got %d", list.Count)
	}
}

func TestRoleChecks(t *testing.T) {
	e := newTestEnv(t)
	adminToken, empToken, deptID, empID := e.setupEmployee(t)

	e.call(t, "POST", "/api/departments", empToken, map[string]any{"name": "Sales"}, fiber.StatusForbidden)
	e.call(t, "PUT", "/api/employees/"+empID, empToken, map[string]any{"position": "CEO"}, fiber.StatusForbidden)
	e.call(t, "DELETE", "/api/departments/"+deptID, empToken, nil, fiber.StatusForbidden)

	_, hrID := e.register(t, "hr@example.com")
	e.store.SetRole(models.ObjectID(hrID), models.RoleHRManager)
	hrToken := e.login(t, "hr@example.com", "Secret123")
	e.call(t, "POST", "/api/departments", hrToken, map[string]any{"name": "Sales"}, fiber.StatusCreated)
	e.call(t, "DELETE", "/api/employees/"+empID, hrToken, nil, fiber.StatusForbidden)
	e.call(t, "DELETE", "/api/employees/"+empID, adminToken, nil, fiber.StatusOK)
}

func TestDepartmentNameUnique(t *testing.T) {
	e := newTestEnv(t)
	adminToken := e.login(t, adminEmail, adminPassword)
	e.call(t, "POST", "/api/departments", adminToken, map[string]any{"name": "Finance"}, fiber.StatusCreated)
	e.call(t, "POST", "/api/departments", adminToken, map[string]any{"name": "Finance"}, fiber.StatusConflict)
	if list := e.call(t, "GET", "/api/departments", adminToken, nil, fiber.StatusOK); list.Count != 1 {
		t.Fatalf("expected 1 department, got %d", list.Count)
	}
}

func TestLeaveDecisionsLastWriterWins(t *testing.T) {
	e := newTestEnv(t)
	adminToken, empToken, _, empID := e.setupEmployee(t)

	e.call(t, "POST", "/api/leaves", empToken, map[string]any{
		"employee": empID, "leaveType": "annual", "startDate": "2024-07-05", "endDate": "2024-07-01", "reason": "Holiday",
	}, fiber.StatusBadRequest)

	created := e.call(t, "POST", "/api/leaves", empToken, map[string]any{
		"employee": empID, "leaveType": "annual", "startDate": "2024-07-01", "endDate": "2024-07-05", "reason": "Holiday",
	}, fiber.StatusCreated)
	leave := decode[map[string]any](t, created.Data)
	leaveID := leave["id"].(string)
	if leave["status"] != models.LeavePending || leave["days"] != float64(5) {
		t.Fatalf("unexpected leave %v", leave)
	}

	e.call(t, "POST", "/api/leaves/"+leaveID+"/approve", empToken, nil, fiber.StatusForbidden)

	approved := decode[map[string]any](t, e.call(t, "POST", "/api/leaves/"+leaveID+"/approve", adminToken, nil, fiber.StatusOK).Data)
	if approved["status"] != models.LeaveApproved || approved["approvedDate"] == nil {
		t.Fatalf("unexpected approval %v", approved)
	}
	approver, _ := approved["approvedBy"].(map[string]any)
	if approver == nil || approver["email"] != adminEmail {
		t.Fatalf("expected expanded approver, got %v", approved["approvedBy"])
	}

	rejected := decode[map[string]any](t, e.call(t, "POST", "/api/leaves/"+leaveID+"/reject", adminToken,
		map[string]string{"rejectionReason": "Team offsite"}, fiber.StatusOK).Data)
	if rejected["status"] != models.LeaveRejected || rejected["rejectionReason"] != "Team offsite" {
		t.Fatalf("unexpected rejection %v", rejected)
	}

	again := decode[map[string]any](t, e.call(t, "POST", "/api/leaves/"+leaveID+"/approve", adminToken, nil, fiber.StatusOK).Data)
	if again["status"] != models.LeaveApproved {
		t.Fatalf("expected a later approval to win, got %v", again["status"])
	}

	// the welcome notice plus one per decision
	notes := e.call(t, "GET", "/api/notifications", empToken, nil, fiber.StatusOK)
	if notes.Total != 4 {
		t.Fatalf("expected 4 notifications, got %d", notes.Total)
	}
	e.call(t, "POST", "/api/leaves/65a000000000000000000001/approve", adminToken, nil, fiber.StatusNotFound)
}

func TestNotificationEndpoints(t *testing.T) {
	e := newTestEnv(t)
	adminToken, empToken, _, empID := e.setupEmployee(t)

	e.call(t, "POST", "/api/attendance", adminToken, map[string]any{
		"employee": empID, "date": "2024-06-12", "status": "late", "checkInTime": "09:45",
	}, fiber.StatusCreated)

	count := e.call(t, "GET", "/api/notifications/unread-count", empToken, nil, fiber.StatusOK)
	// welcome on onboarding plus the attendance alert
	if count.Count != 2 {
		t.Fatalf("expected 2 unread, got %d", count.Count)
	}

	page := e.call(t, "GET", "/api/notifications?limit=1", empToken, nil, fiber.StatusOK)
	items := decode[[]map[string]any](t, page.Data)
	if len(items) != 1 || page.Total != 2 || items[0]["type"] != string(models.NotifyAttendanceAlert) {
		t.Fatalf("unexpected page %v total=%d", items, page.Total)
	}
	id := items[0]["id"].(string)

	e.call(t, "PUT", "/api/notifications/"+id+"/read", adminToken, nil, fiber.StatusNotFound)
	read := decode[map[string]any](t, e.call(t, "PUT", "/api/notifications/"+id+"/read", empToken, nil, fiber.StatusOK).Data)
	if read["isRead"] != true {
		t.Fatalf("expected read notification, got %v", read)
	}
	e.call(t, "PUT", "/api/notifications/"+id+"/read", empToken, nil, fiber.StatusOK)

	if c := e.call(t, "GET", "/api/notifications/unread-count", empToken, nil, fiber.StatusOK); c.Count != 1 {
		t.Fatalf("expected 1 unread, got %d", c.Count)
	}
	e.call(t, "PUT", "/api/notifications/read-all", empToken, nil, fiber.StatusOK)
	e.call(t, "DELETE", "/api/notifications/"+id, empToken, nil, fiber.StatusOK)
	e.call(t, "DELETE", "/api/notifications/"+id, empToken, nil, fiber.StatusNotFound)

	prefs := decode[map[string]any](t, e.call(t, "PUT", "/api/notifications/preferences", empToken,
		map[string]any{"frequency": "daily", "notificationTypes": map[string]bool{"general": false}}, fiber.StatusOK).Data)
	toggles := prefs["notificationTypes"].(map[string]any)
	if prefs["frequency"] != "daily" || toggles["general"] != false || toggles["leaveUpdate"] != true || prefs["nextDigestAt"] == nil {
		t.Fatalf("unexpected preferences %v", prefs)
	}
	e.call(t, "PUT", "/api/notifications/preferences", empToken, map[string]any{"frequency": "hourly"}, fiber.StatusBadRequest)
	e.call(t, "GET", "/api/notifications/preferences/get", empToken, nil, fiber.StatusOK)

	e.call(t, "POST", "/api/notifications/test-email", empToken, nil, fiber.StatusOK)
	e.call(t, "POST", "/api/notifications/test-email", empToken, map[string]string{"email": "bad"}, fiber.StatusBadRequest)
}

func TestPayrollEndpoints(t *testing.T) {
	e := newTestEnv(t)
	adminToken, empToken, _, empID := e.setupEmployee(t)

	created := e.call(t, "POST", "/api/payroll", adminToken, map[string]any{
		"employee": empID, "month": "2024-06", "baseSalary": 5000, "bonus": 200, "deductions": 100, "netSalary": 5100,
	}, fiber.StatusCreated)
	payroll := decode[map[string]any](t, created.Data)
	if payroll["status"] != models.PayrollPending || payroll["netSalary"] != float64(5100) {
		t.Fatalf("unexpected payroll %v", payroll)
	}
	e.call(t, "POST", "/api/payroll", empToken, map[string]any{
		"employee": empID, "month": "2024-06", "baseSalary": 1, "netSalary": 1,
	}, fiber.StatusForbidden)

	paid := decode[map[string]any](t, e.call(t, "PUT", "/api/payroll/"+payroll["id"].(string), adminToken,
		map[string]any{"status": "paid", "paidDate": "2024-06-30"}, fiber.StatusOK).Data)
	if paid["status"] != models.PayrollPaid {
		t.Fatalf("unexpected update %v", paid)
	}

	gen := e.call(t, "POST", "/api/payroll/generate", adminToken, map[string]any{"month": "2024-07", "employees": []string{empID}}, fiber.StatusCreated)
	if gen.Count != 1 || gen.Message != "Payroll generated for 2024-07" {
		t.Fatalf("unexpected generate response %+v", gen)
	}
	e.call(t, "POST", "/api/payroll/generate", adminToken, map[string]any{"month": "July", "employees": []string{empID}}, fiber.StatusBadRequest)
}

func TestEmployeeBadge(t *testing.T) {
	e := newTestEnv(t)
	_, empToken, _, empID := e.setupEmployee(t)

	resp, body := e.do(t, httptest.NewRequest("GET", "/api/employees/"+empID+"/badge", nil), empToken)
	if resp.StatusCode != fiber.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("unexpected badge response %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !bytes.HasPrefix(body, pngBytes[:8]) {
		t.Fatal("expected PNG body")
	}
}

func uploadRequest(t *testing.T, fields map[string]string, filename, contentType string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	req := httptest.NewRequest("POST", "/api/documents", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func storedFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	return len(entries)
}

func TestDocumentUploadAndDownload(t *testing.T) {
	e := newTestEnv(t)
	_, empToken, _, empID := e.setupEmployee(t)
	fields := map[string]string{"resourceType": "employee", "resourceId": empID, "description": "ID photo"}

	resp, body := e.do(t, uploadRequest(t, fields, "photo.png", "", pngBytes), empToken)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	doc := decode[map[string]any](t, env.Data)
	if doc["fileType"] != models.MimePNG || doc["originalFileName"] != "photo.png" || doc["downloadCount"] != float64(0) {
		t.Fatalf("unexpected document %v", doc)
	}
	docID := doc["id"].(string)

	resp, body = e.do(t, httptest.NewRequest("GET", "/api/documents/"+docID+"/download", nil), empToken)
	if resp.StatusCode != fiber.StatusOK || !bytes.Equal(body, pngBytes) {
		t.Fatalf("unexpected download %d (%d bytes)", resp.StatusCode, len(body))
	}

	got := decode[map[string]any](t, e.call(t, "GET", "/api/documents/"+docID, empToken, nil, fiber.StatusOK).Data)
	if got["downloadCount"] != float64(1) {
		t.Fatalf("expected downloadCount 1, got %v", got["downloadCount"])
	}

	byResource := e.call(t, "GET", "/api/documents/resource?resourceType=employee&resourceId="+empID, empToken, nil, fiber.StatusOK)
	if byResource.Total != 1 {
		t.Fatalf("expected 1 document for resource, got %d", byResource.Total)
	}
	e.call(t, "GET", "/api/documents/resource?resourceType=attendance&resourceId="+empID, empToken, nil, fiber.StatusBadRequest)
	if mine := e.call(t, "GET", "/api/documents/my-documents", empToken, nil, fiber.StatusOK); mine.Total != 1 {
		t.Fatalf("expected 1 own document, got %d", mine.Total)
	}
}

func TestDocumentUploadRejectsDisallowedType(t *testing.T) {
	e := newTestEnv(t)
	_, empToken, _, empID := e.setupEmployee(t)
	fields := map[string]string{"resourceType": "employee", "resourceId": empID}

	resp, body := e.do(t, uploadRequest(t, fields, "notes.txt", "", []byte("plain text content\n")), empToken)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.StatusCode, body)
	}
	resp, _ = e.do(t, uploadRequest(t, fields, "fake.gif", "image/gif", pngBytes), empToken)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for declared gif, got %d", resp.StatusCode)
	}
	resp, _ = e.do(t, uploadRequest(t, map[string]string{"resourceType": "invoice", "resourceId": empID}, "photo.png", "", pngBytes), empToken)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for unknown resource type, got %d", resp.StatusCode)
	}

	if n := storedFiles(t, e.files.Dir()); n != 0 {
		t.Fatalf("rejected uploads must not leave files, found %d", n)
	}
	if n := e.store.DocumentCount(); n != 0 {
		t.Fatalf("rejected uploads must not leave records, found %d", n)
	}
}

func TestDocumentUploadRemovesFileWhenRecordFails(t *testing.T) {
	e := newTestEnv(t)
	_, empToken, _, empID := e.setupEmployee(t)
	e.store.FailDocumentInsert = fmt.Errorf("disk full")

	resp, _ := e.do(t, uploadRequest(t, map[string]string{"resourceType": "employee", "resourceId": empID}, "photo.png", "", pngBytes), empToken)
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if n := storedFiles(t, e.files.Dir()); n != 0 {
		t.Fatalf("expected stored file to be removed, found %d", n)
	}
}

func TestDocumentDeletePermissions(t *testing.T) {
	e := newTestEnv(t)
	adminToken, empToken, _, empID := e.setupEmployee(t)
	otherToken, _ := e.register(t, "other@example.com")
	fields := map[string]string{"resourceType": "employee", "resourceId": empID}

	upload := func() string {
		resp, body := e.do(t, uploadRequest(t, fields, "photo.png", "", pngBytes), empToken)
		if resp.StatusCode != fiber.StatusCreated {
			t.Fatalf("upload failed: %d %s", resp.StatusCode, body)
		}
		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return decode[map[string]any](t, env.Data)["id"].(string)
	}

	first, second, third := upload(), upload(), upload()
	e.call(t, "DELETE", "/api/documents/"+first, otherToken, nil, fiber.StatusForbidden)
	e.call(t, "DELETE", "/api/documents/"+first, empToken, nil, fiber.StatusOK)
	e.call(t, "GET", "/api/documents/"+first, empToken, nil, fiber.StatusNotFound)

	e.call(t, "POST", "/api/documents/batch-delete", otherToken, map[string]any{"documentIds": []string{second, third}}, fiber.StatusForbidden)
	if n := e.store.DocumentCount(); n != 2 {
		t.Fatalf("forbidden batch must delete nothing, %d left", n)
	}

	batch := e.call(t, "POST", "/api/documents/batch-delete", adminToken, map[string]any{"documentIds": []string{second, third, first}}, fiber.StatusOK)
	if batch.DeletedCount != 2 {
		t.Fatalf("expected 2 deleted, got %d", batch.DeletedCount)
	}
	if n := storedFiles(t, e.files.Dir()); n != 0 {
		t.Fatalf("expected all files removed, found %d", n)
	}
	e.call(t, "POST", "/api/documents/batch-delete", adminToken, map[string]any{"documentIds": []string{second}}, fiber.StatusNotFound)
}

func TestLeavePartialUpdateKeepsPeriodValid(t *testing.T) {
	e := newTestEnv(t)
	adminToken, empToken, _, empID := e.setupEmployee(t)

	created := e.call(t, "POST", "/api/leaves", empToken, map[string]any{
		"employee": empID, "leaveType": "annual", "startDate": "2024-07-10", "endDate": "2024-07-12", "reason": "Holiday",
	}, fiber.StatusCreated)
	leaveID := decode[map[string]any](t, created.Data)["id"].(string)
	path := "/api/leaves/" + leaveID

	e.call(t, "PUT", path, empToken, map[string]any{"reason": "Longer holiday"}, fiber.StatusForbidden)
	e.call(t, "PUT", path, adminToken, map[string]any{"endDate": "2024-07-01"}, fiber.StatusBadRequest)
	e.call(t, "PUT", path, adminToken, map[string]any{"startDate": "2024-07-20"}, fiber.StatusBadRequest)

	stored := decode[map[string]any](t, e.call(t, "GET", path, adminToken, nil, fiber.StatusOK).Data)
	if stored["endDate"] != "2024-07-12T00:00:00Z" || stored["days"] != float64(3) {
		t.Fatalf("rejected updates must leave the leave untouched, got %v", stored)
	}

	extended := decode[map[string]any](t, e.call(t, "PUT", path, adminToken, map[string]any{"endDate": "2024-07-15"}, fiber.StatusOK).Data)
	if extended["days"] != float64(6) {
		t.Fatalf("expected days recomputed to 6, got %v", extended["days"])
	}
	explicit := decode[map[string]any](t, e.call(t, "PUT", path, adminToken, map[string]any{"startDate": "2024-07-11", "days": 4}, fiber.StatusOK).Data)
	if explicit["days"] != float64(4) {
		t.Fatalf("expected explicit days to win, got %v", explicit["days"])
	}

	e.call(t, "PUT", "/api/leaves/65a000000000000000000001", adminToken, map[string]any{"endDate": "2024-07-15"}, fiber.StatusNotFound)
}

func TestConcurrentLeaveDecisions(t *testing.T) {
	e := newTestEnv(t)
	adminToken, empToken, _, empID := e.setupEmployee(t)

	created := e.call(t, "POST", "/api/leaves", empToken, map[string]any{
		"employee": empID, "leaveType": "sick", "startDate": "2024-07-01", "endDate": "2024-07-02", "reason": "Flu",
	}, fiber.StatusCreated)
	leaveID := decode[map[string]any](t, created.Data)["id"].(string)

	decide := func(action string) <-chan int {
		out := make(chan int, 1)
		go func() {
			var body io.Reader
			if action == "reject" {
				body = bytes.NewReader([]byte(`{"rejectionReason":"Coverage"}`))
			}
			req := httptest.NewRequest("POST", "/api/leaves/"+leaveID+"/"+action, body)
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+adminToken)
			resp, err := e.app.Test(req, -1)
			if err != nil {
				out <- 0
				return
			}
			resp.Body.Close()
			out <- resp.StatusCode
		}()
		return out
	}

	approve, reject := decide("approve"), decide("reject")
	if a, r := <-approve, <-reject; a != fiber.StatusOK || r != fiber.StatusOK {
		t.Fatalf("expected both decisions to succeed, got approve=%d reject=%d", a, r)
	}

	final := decode[map[string]any](t, e.call(t, "GET", "/api/leaves/"+leaveID, adminToken, nil, fiber.StatusOK).Data)
	switch final["status"] {
	case models.LeaveApproved, models.LeaveRejected:
	default:
		t.Fatalf("expected one decision to persist, got %v", final["status"])
	}
	if final["approvedDate"] == nil {
		t.Fatalf("expected decision time recorded, got %v", final)
	}
}

func TestMissingRecordsAndIncompleteCreates(t *testing.T) {
	e := newTestEnv(t)
	adminToken := e.login(t, adminEmail, adminPassword)
	missing := "65a0000000000000000000ff"

	cases := []struct {
		base       string
		incomplete map[string]any
	}{
		{"/api/departments", map[string]any{"description": "no name"}},
		{"/api/employees", map[string]any{"position": "Engineer"}},
		{"/api/attendance", map[string]any{"status": "late"}},
		{"/api/leaves", map[string]any{"leaveType": "annual"}},
		{"/api/payroll", map[string]any{"month": "2024-06"}},
	}
	for _, tc := range cases {
		e.call(t, "GET", tc.base+"/"+missing, adminToken, nil, fiber.StatusNotFound)
		e.call(t, "DELETE", tc.base+"/"+missing, adminToken, nil, fiber.StatusNotFound)
		e.call(t, "POST", tc.base, adminToken, tc.incomplete, fiber.StatusBadRequest)
		if list := e.call(t, "GET", tc.base, adminToken, nil, fiber.StatusOK); list.Count != 0 {
			t.Fatalf("%s: incomplete create persisted %d records", tc.base, list.Count)
		}
	}

	e.call(t, "GET", "/api/documents/"+missing, adminToken, nil, fiber.StatusNotFound)
	e.call(t, "GET", "/api/documents/"+missing+"/download", adminToken, nil, fiber.StatusNotFound)
	e.call(t, "DELETE", "/api/documents/"+missing, adminToken, nil, fiber.StatusNotFound)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("resourceType", "general")
	_ = w.WriteField("resourceId", missing)
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	req := httptest.NewRequest("POST", "/api/documents", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if resp, body := e.do(t, req, adminToken); resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 without a file, got %d: %s", resp.StatusCode, body)
	}
	if n := e.store.DocumentCount(); n != 0 {
		t.Fatalf("expected no document records, found %d", n)
	}
}

func TestDocumentUploadEnforcesTypeCeiling(t *testing.T) {
	e := newTestEnv(t)
	_, empToken, _, empID := e.setupEmployee(t)

	big := make([]byte, 6<<20)
	copy(big, pngBytes)
	resp, body := e.do(t, uploadRequest(t, map[string]string{"resourceType": "employee", "resourceId": empID}, "huge.png", "", big), empToken)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for a PNG over 5MB, got %d: %s", resp.StatusCode, body)
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Message != "File too large for image/png. Maximum size is 5MB" {
		t.Fatalf("unexpected message %q", env.Message)
	}
	if n := storedFiles(t, e.files.Dir()); n != 0 {
		t.Fatalf("oversized upload left %d files", n)
	}
	if n := e.store.DocumentCount(); n != 0 {
		t.Fatalf("oversized upload left %d records", n)
	}
}

func TestDocumentDownloadWithMissingFile(t *testing.T) {
	e := newTestEnv(t)
	_, empToken, _, empID := e.setupEmployee(t)

	resp, body := e.do(t, uploadRequest(t, map[string]string{"resourceType": "employee", "resourceId": empID}, "photo.png", "", pngBytes), empToken)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("upload failed: %d %s", resp.StatusCode, body)
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	doc := decode[map[string]any](t, env.Data)
	if err := os.Remove(doc["filePath"].(string)); err != nil {
		t.Fatalf("remove stored file: %v", err)
	}

	gone := e.call(t, "GET", "/api/documents/"+doc["id"].(string)+"/download", empToken, nil, fiber.StatusNotFound)
	if gone.Message != "File not found on server" {
		t.Fatalf("unexpected message %q", gone.Message)
	}
}

func TestTestEmailRecipientRules(t *testing.T) {
	e := newTestEnv(t)
	adminToken, empToken, _, _ := e.setupEmployee(t)

	e.call(t, "POST", "/api/notifications/test-email", empToken, map[string]string{"email": "someone@example.com"}, fiber.StatusForbidden)
	e.call(t, "POST", "/api/notifications/test-email", empToken, map[string]string{"email": "Jane@Example.com"}, fiber.StatusOK)
	e.call(t, "POST", "/api/notifications/test-email", adminToken, map[string]string{"email": "someone@example.com"}, fiber.StatusOK)
}

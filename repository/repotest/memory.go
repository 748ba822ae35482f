// Package repotest provides an in-memory Store that satisfies every
// repository interface, for handler and service tests that run without a
// MongoDB server.
package repotest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"employee-management/models"
	"employee-management/repository"
)

// Store keeps records in insertion order. Lists are returned newest first,
// like the Mongo repositories.
type Store struct {
	mu sync.Mutex

	users         []models.User
	departments   []models.Department
	employees     []models.Employee
	attendance    []models.Attendance
	leaves        []models.Leave
	payrolls      []models.Payroll
	documents     []models.Document
	notifications []models.Notification
	preferences   []models.NotificationPreference

	// FailDocumentInsert, when set, is returned by CreateDocument.
	FailDocumentInsert error
}

func New() *Store { return &Store{} }

var (
	_ repository.UserRepository         = (*Store)(nil)
	_ repository.DepartmentRepository   = (*Store)(nil)
	_ repository.EmployeeRepository     = (*Store)(nil)
	_ repository.AttendanceRepository   = (*Store)(nil)
	_ repository.LeaveRepository        = (*Store)(nil)
	_ repository.PayrollRepository      = (*Store)(nil)
	_ repository.DocumentRepository     = (*Store)(nil)
	_ repository.NotificationRepository = (*Store)(nil)
	_ repository.PreferenceRepository   = (*Store)(nil)
)

func find[T any](rows []T, match func(*T) bool) int {
	for i := range rows {
		if match(&rows[i]) {
			return i
		}
	}
	return -1
}

func newestFirst[T any](rows []T, keep func(*T) bool) []T {
	out := []T{}
	for i := len(rows) - 1; i >= 0; i-- {
		if keep == nil || keep(&rows[i]) {
			out = append(out, rows[i])
		}
	}
	return out
}

func remove[T any](rows []T, i int) []T {
	return append(rows[:i], rows[i+1:]...)
}

// applySet runs a $set document against doc by round-tripping it through
// BSON, so field names and dotted paths behave as they do in Mongo.
func applySet[T any](doc *T, set bson.M) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return err
	}
	for path, v := range set {
		setPath(m, strings.Split(path, "."), v)
	}
	if raw, err = bson.Marshal(m); err != nil {
		return err
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return err
	}
	*doc = out
	return nil
}

func setPath(m bson.M, keys []string, v interface{}) {
	if len(keys) == 1 {
		m[keys[0]] = v
		return
	}
	var child bson.M
	switch c := m[keys[0]].(type) {
	case bson.M:
		child = c
	case primitive.D:
		child = c.Map()
	default:
		child = bson.M{}
	}
	setPath(child, keys[1:], v)
	m[keys[0]] = child
}

func stamp(set bson.M) bson.M {
	out := bson.M{"updated_at": time.Now()}
	for k, v := range set {
		out[k] = v
	}
	return out
}

func duplicate(what string) error {
	return fmt.Errorf("insert %s: %w", what, repository.ErrDuplicate)
}

// Users

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if find(s.users, func(u *models.User) bool { return u.Email == user.Email }) >= 0 {
		return duplicate("user")
	}
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt, user.UpdatedAt = now, now
	if user.Role == "" {
		user.Role = models.RoleEmployee
	}
	s.users = append(s.users, *user)
	return nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := find(s.users, func(u *models.User) bool { return u.Email == email })
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	u := s.users[i]
	return &u, nil
}

func (s *Store) FindUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userByID(id)
}

func (s *Store) userByID(id primitive.ObjectID) (*models.User, error) {
	i := find(s.users, func(u *models.User) bool { return u.ID == id })
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	u := s.users[i]
	return &u, nil
}

// userRef mirrors the lookup stage: the expanded user never carries the hash.
func (s *Store) userRef(id primitive.ObjectID) *models.User {
	u, err := s.userByID(id)
	if err != nil {
		return nil
	}
	u.Password = ""
	return u
}

func (s *Store) UpdateLastLogin(_ context.Context, id primitive.ObjectID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := find(s.users, func(u *models.User) bool { return u.ID == id })
	if i < 0 {
		return repository.ErrNotFound
	}
	s.users[i].LastLogin = &at
	return nil
}

// SetRole changes a user's role; tests use it to create managers.
func (s *Store) SetRole(id primitive.ObjectID, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := find(s.users, func(u *models.User) bool { return u.ID == id }); i >= 0 {
		s.users[i].Role = role
	}
}

// Departments

func (s *Store) CreateDepartment(_ context.Context, dept *models.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if find(s.departments, func(d *models.Department) bool { return d.Name == dept.Name }) >= 0 {
		return duplicate("department")
	}
	now := time.Now()
	dept.ID = primitive.NewObjectID()
	dept.CreatedAt, dept.UpdatedAt = now, now
	s.departments = append(s.departments, *dept)
	return nil
}

func (s *Store) departmentView(d models.Department) models.DepartmentView {
	v := models.DepartmentView{Department: d}
	if d.Manager != nil {
		v.ManagerRef = s.userRef(*d.Manager)
	}
	return v
}

func (s *Store) GetAllDepartments(_ context.Context) ([]models.DepartmentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.DepartmentView{}
	for _, d := range newestFirst(s.departments, nil) {
		out = append(out, s.departmentView(d))
	}
	return out, nil
}

func (s *Store) GetDepartmentByID(_ context.Context, id primitive.ObjectID) (*models.DepartmentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := find(s.departments, func(d *models.Department) bool { return d.ID == id })
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	v := s.departmentView(s.departments[i])
	return &v, nil
}

func (s *Store) FindDepartmentByName(_ context.Context, name string) (*models.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := find(s.departments, func(d *models.Department) bool { return d.Name == name })
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	d := s.departments[i]
	return &d, nil
}

func (s *Store) UpdateDepartment(_ context.Context, id primitive.ObjectID, set bson.M) (*models.DepartmentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := find(s.departments, func(d *models.Department) bool { return d.ID == id })
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	if err := applySet(&s.departments[i], stamp(set)); err != nil {
		return nil, err
	}
	v := s.departmentView(s.departments[i])
	return &v, nil
}

func (s *Store) DeleteDepartment(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := find(s.departments, func(d *models.Department) bool { return d.ID == id })
	if i < 0 {
		return repository.ErrNotFound
	}
	s.departments = remove(s.departments, i)
	return nil
}

func (s *Store) AdjustEmployeeCount(_ context.Context, id primitive.ObjectID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := find(s.departments, func(d *models.Department) bool { return d.ID == id }); i >= 0 {
		s.departments[i].EmployeeCount += delta
	}
	return nil
}

// Employees

func (s *Store) CreateEmployee(_ context.Context, emp *models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if find(s.employees, func(e *models.Employee) bool { return e.EmployeeID == emp.EmployeeID }) >= 0 {
		return duplicate("employee")
	}
	now := time.Now()
	emp.ID = primitive.NewObjectID()
	emp.CreatedAt, emp.UpdatedAt = now, now
	s.employees = append(s.employees, *emp)
	return nil
}

func (s *Store) employeeView(e models.Employee) models.EmployeeView {
	v := models.EmployeeView{Employee: e, UserRef: s.userRef(e.UserID)}
	if i := find(s.departments, func(d *models.Department) bool { return d.ID == e.DepartmentID }); i >= 0 {
		d := s.departments[i]
		v.DepartmentRef = &d
	}
	return v
}

func (s *Store) employeeRef(id primitive.ObjectID) *models.EmployeeView {
	i := find(s.employees, func(e *models.Employee) bool { return e.ID == id })
	if i < 0 {
		return nil
	}
	v := s.employeeView(s.employees[i])
	return &v
}

func (s *Store) GetAllEmployees(_ context.Context) ([]models.EmployeeView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.EmployeeView{}
	for _, e := range newestFirst(s.employees, nil) {
		out = append(out, s.employeeView(e))
	}
	return out, nil
}

func (s *Store) GetEmployeeByID(_ context.Context, id primitive.ObjectID) (*models.EmployeeView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.employeeRef(id)
	if v == nil {
		return nil, repository.ErrNotFound
	}
	return v, nil
}

func (s *Store) UpdateEmployee(_ context.Context, id primitive.ObjectID, set bson.M) (*models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := find(s.employees, func(e *models.Employee) bool { return e.ID == id })
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	before := s.employees[i]
	if err := applySet(&s.employees[i], stamp(set)); err != nil {
		return nil, err
	}
	return &before, nil
}

func (s *Store) DeleteEmployee(_ context.Context, id primitive.ObjectID) (*models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := find(s.employees, func(e *models.Employee) bool { return e.ID == id })
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	deleted := s.employees[i]
	s.employees = remove(s.employees, i)
	return &deleted, nil
}

// Attendance

func (s *Store) CreateAttendance(_ context.Context, a *models.Attendance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	a.ID = primitive.NewObjectID()
	a.CreatedAt, a.UpdatedAt = now, now
	s.attendance = append(s.attendance, *a)
	return nil
}

func (s *Store) attendanceView(a models.Attendance) models.AttendanceView {
	return models.AttendanceView{Attendance: a, EmployeeRef: s.employeeRef(a.EmployeeID)}
}

func (s *Store) GetAllAttendance(_ context.Context) ([]models.AttendanceView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.AttendanceView{}
	for _, a := range newestFirst(s.attendance, nil) {
		out = append(out, s.attendanceView(a))
	}
	return out, nil
}

func (s *Store) GetAttendanceByID(_ context.Context, id primitive.ObjectID) (*models.AttendanceView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := find(s.attendance, func(a *models.Attendance) bool { return a.ID == id })
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	v := s.attendanceView(s.attendance[i])
	return &v, nil
}

func (s *Store) UpdateAttendance(_ context.Context, id primitive.ObjectID, set bson.M) (*models.AttendanceView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := find(s.attendance, func(a *models.Attendance) bool { return a.ID == id })
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	if err := applySet(&s.attendance[i], stamp(set)); err != nil {
		return nil, err
	}
	v := s.attendanceView(s.attendance[i])
	return &v, nil
}

func (s *Store) DeleteAttendance(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := find(s.attendance, func(a *models.Attendance) bool { return a.ID == id })
	if i < 0 {
		return repository.ErrNotFound
	}
	s.attendance = remove(s.attendance, i)
	return nil
}

// Leaves

func (s *Store) CreateLeave(_ context.Context, l *models.Leave) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	l.ID = primitive.NewObjectID()
	l.CreatedAt, l.UpdatedAt = now, now
	s.leaves = append(s.leaves, *l)
	return nil
}

func (s *Store) leaveView(l models.Leave) models.LeaveView {
	v := models.LeaveView{Leave: l, EmployeeRef: s.employeeRef(l.EmployeeID)}
	if l.ApprovedBy != nil {
		v.ApproverRef = s.userRef(*l.ApprovedBy)
	}
	return v
}

func (s *Store) GetAllLeaves(_ context.Context) ([]models.LeaveView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.LeaveView{}
	for _, l := range newestFirst(s.leaves, nil) {
		out = append(out, s.leaveView(l))
	}
	return out, nil
}

func (s *Store) GetLeaveByID(_ context.Context, id primitive.ObjectID) (*models.LeaveView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := find(s.leaves, func(l *models.Leave) bool { return l.ID == id })
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	v := s.leaveView(s.leaves[i])
	return &v, nil
}

func (s *Store) UpdateLeave(_ context.Context, id primitive.ObjectID, set bson.M) (*models.LeaveView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := find(s.leaves, func(l *models.Leave) bool { return l.ID == id })
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	if err := applySet(&s.leaves[i], stamp(set)); err != nil {
		return nil, err
	}
	v := s.leaveView(s.leaves[i])
	return &v, nil
}

func (s *Store) DeleteLeave(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := find(s.leaves, func(l *models.Leave) bool { return l.ID == id })
	if i < 0 {
		return repository.ErrNotFound
	}
	s.leaves = remove(s.leaves, i)
	return nil
}

// Payroll

func (s *Store) CreatePayroll(_ context.Context, p *models.Payroll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	p.ID = primitive.NewObjectID()
	p.CreatedAt, p.UpdatedAt = now, now
	s.payrolls = append(s.payrolls, *p)
	return nil
}

func (s *Store) payrollView(p models.Payroll) models.PayrollView {
	return models.PayrollView{Payroll: p, EmployeeRef: s.employeeRef(p.EmployeeID)}
}

func (s *Store) GetAllPayrolls(_ context.Context) ([]models.PayrollView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.PayrollView{}
	for _, p := range newestFirst(s.payrolls, nil) {
		out = append(out, s.payrollView(p))
	}
	return out, nil
}

func (s *Store) GetPayrollByID(_ context.Context, id primitive.ObjectID) (*models.PayrollView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := find(s.payrolls, func(p *models.Payroll) bool { return p.ID == id })
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	v := s.payrollView(s.payrolls[i])
	return &v, nil
}

func (s *Store) UpdatePayroll(_ context.Context, id primitive.ObjectID, set bson.M) (*models.PayrollView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := find(s.payrolls, func(p *models.Payroll) bool { return p.ID == id })
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	if err := applySet(&s.payrolls[i], stamp(set)); err != nil {
		return nil, err
	}
	v := s.payrollView(s.payrolls[i])
	return &v, nil
}

func (s *Store) DeletePayroll(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := find(s.payrolls, func(p *models.Payroll) bool { return p.ID == id })
	if i < 0 {
		return repository.ErrNotFound
	}
	s.payrolls = remove(s.payrolls, i)
	return nil
}

// Documents

func (s *Store) CreateDocument(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDocumentInsert != nil {
		return s.FailDocumentInsert
	}
	now := time.Now()
	doc.ID = primitive.NewObjectID()
	doc.DownloadCount = 0
	doc.CreatedAt, doc.UpdatedAt = now, now
	s.documents = append(s.documents, *doc)
	return nil
}

func (s *Store) documentView(d models.Document) models.DocumentView {
	return models.DocumentView{Document: d, UploaderRef: s.userRef(d.UploadedBy)}
}

func (s *Store) GetDocumentByID(_ context.Context, id primitive.ObjectID) (*models.DocumentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := find(s.documents, func(d *models.Document) bool { return d.ID == id })
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	v := s.documentView(s.documents[i])
	return &v, nil
}

func (s *Store) pageDocuments(keep func(*models.Document) bool, page, limit int64) ([]models.DocumentView, int64) {
	all := newestFirst(s.documents, keep)
	out := []models.DocumentView{}
	for i := (page - 1) * limit; i < int64(len(all)) && i < page*limit; i++ {
		out = append(out, s.documentView(all[i]))
	}
	return out, int64(len(all))
}

func (s *Store) ListByResource(_ context.Context, ref models.ResourceRef, page, limit int64) ([]models.DocumentView, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, total := s.pageDocuments(func(d *models.Document) bool { return d.AssociatedResource == ref }, page, limit)
	return docs, total, nil
}

func (s *Store) ListByUploader(_ context.Context, userID primitive.ObjectID, page, limit int64) ([]models.DocumentView, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, total := s.pageDocuments(func(d *models.Document) bool { return d.UploadedBy == userID }, page, limit)
	return docs, total, nil
}

func (s *Store) IncrementDownloadCount(_ context.Context, id primitive.ObjectID) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := find(s.documents, func(d *models.Document) bool { return d.ID == id })
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	s.documents[i].DownloadCount++
	d := s.documents[i]
	return &d, nil
}

func (s *Store) FindDocumentsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Document{}
	for _, d := range s.documents {
		for _, id := range ids {
			if d.ID == id {
				out = append(out, d)
				break
			}
		}
	}
	return out, nil
}

func (s *Store) DeleteDocument(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := find(s.documents, func(d *models.Document) bool { return d.ID == id })
	if i < 0 {
		return repository.ErrNotFound
	}
	s.documents = remove(s.documents, i)
	return nil
}

func (s *Store) DeleteDocuments(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for _, id := range ids {
		if i := find(s.documents, func(d *models.Document) bool { return d.ID == id }); i >= 0 {
			s.documents = remove(s.documents, i)
			deleted++
		}
	}
	return deleted, nil
}

// DocumentCount reports how many document records are stored.
func (s *Store) DocumentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.documents)
}

// Notifications

func (s *Store) CreateNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	n.ID = primitive.NewObjectID()
	n.CreatedAt, n.UpdatedAt = now, now
	s.notifications = append(s.notifications, *n)
	return nil
}

func (s *Store) ListForRecipient(_ context.Context, recipient primitive.ObjectID, page, limit int64) ([]models.Notification, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := newestFirst(s.notifications, func(n *models.Notification) bool { return n.RecipientID == recipient })
	out := []models.Notification{}
	for i := (page - 1) * limit; i < int64(len(all)) && i < page*limit; i++ {
		out = append(out, all[i])
	}
	return out, int64(len(all)), nil
}

func (s *Store) FindForRecipient(_ context.Context, id, recipient primitive.ObjectID) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := find(s.notifications, func(n *models.Notification) bool { return n.ID == id && n.RecipientID == recipient })
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	n := s.notifications[i]
	return &n, nil
}

func (s *Store) MarkAsRead(_ context.Context, id, recipient primitive.ObjectID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := find(s.notifications, func(n *models.Notification) bool {
		return n.ID == id && n.RecipientID == recipient && !n.IsRead
	})
	if i >= 0 {
		s.notifications[i].IsRead = true
		s.notifications[i].ReadAt = &at
	}
	return nil
}

func (s *Store) MarkAllAsRead(_ context.Context, recipient primitive.ObjectID, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var modified int64
	for i := range s.notifications {
		n := &s.notifications[i]
		if n.RecipientID == recipient && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &at
			modified++
		}
	}
	return modified, nil
}

func (s *Store) CountUnread(_ context.Context, recipient primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, n := range s.notifications {
		if n.RecipientID == recipient && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *Store) DeleteForRecipient(_ context.Context, id, recipient primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := find(s.notifications, func(n *models.Notification) bool { return n.ID == id && n.RecipientID == recipient })
	if i < 0 {
		return repository.ErrNotFound
	}
	s.notifications = remove(s.notifications, i)
	return nil
}

// Notifications returns every stored notification for recipient, newest first.
func (s *Store) Notifications(recipient primitive.ObjectID) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newestFirst(s.notifications, func(n *models.Notification) bool { return n.RecipientID == recipient })
}

// Preferences

func (s *Store) GetOrCreate(_ context.Context, userID primitive.ObjectID) (*models.NotificationPreference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preference(userID), nil
}

func (s *Store) preference(userID primitive.ObjectID) *models.NotificationPreference {
	i := find(s.preferences, func(p *models.NotificationPreference) bool { return p.UserID == userID })
	if i < 0 {
		p := models.DefaultNotificationPreference(userID)
		now := time.Now()
		p.ID = primitive.NewObjectID()
		p.CreatedAt, p.UpdatedAt = now, now
		s.preferences = append(s.preferences, p)
		i = len(s.preferences) - 1
	}
	p := s.preferences[i]
	return &p
}

func (s *Store) UpdatePreferences(_ context.Context, userID primitive.ObjectID, set bson.M) (*models.NotificationPreference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preference(userID)
	i := find(s.preferences, func(p *models.NotificationPreference) bool { return p.UserID == userID })
	if err := applySet(&s.preferences[i], stamp(set)); err != nil {
		return nil, err
	}
	p := s.preferences[i]
	return &p, nil
}

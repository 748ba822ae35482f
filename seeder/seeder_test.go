package seeder

import (
	"context"
	"testing"

	"employee-management/models"
	"employee-management/pkg/password"
	"employee-management/repository/repotest"
)

func TestSeedDepartmentsIsRepeatable(t *testing.T) {
	ctx := context.Background()
	store := repotest.New()

	if err := store.CreateDepartment(ctx, &models.Department{Name: "Finance"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if added := SeedDepartments(ctx, store); added != len(defaultDepartments)-1 {
		t.Fatalf("expected %d added, got %d", len(defaultDepartments)-1, added)
	}
	if added := SeedDepartments(ctx, store); added != 0 {
		t.Fatalf("expected second run to add nothing, got %d", added)
	}

	all, _ := store.GetAllDepartments(ctx)
	if len(all) != len(defaultDepartments) {
		t.Fatalf("expected %d departments, got %d", len(defaultDepartments), len(all))
	}
}

func TestSeedAdmin(t *testing.T) {
	ctx := context.Background()
	store := repotest.New()

	if _, err := SeedAdmin(ctx, store, "", "x"); err == nil {
		t.Fatal("expected error without email")
	}

	created, err := SeedAdmin(ctx, store, " Root@Example.com ", "Admin123!")
	if err != nil || !created {
		t.Fatalf("expected admin created, got %v %v", created, err)
	}
	admin, err := store.FindUserByEmail(ctx, "root@example.com")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if admin.Role != models.RoleAdmin || !password.CheckPasswordHash("Admin123!", admin.Password) {
		t.Fatalf("unexpected admin %+v", admin)
	}

	created, err = SeedAdmin(ctx, store, "root@example.com", "other")
	if err != nil || created {
		t.Fatalf("expected existing admin to be kept, got %v %v", created, err)
	}
}

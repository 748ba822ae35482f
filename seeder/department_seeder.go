package seeder

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"employee-management/models"
	"employee-management/repository"
)

var defaultDepartments = []models.Department{
	{Name: "Engineering", Description: "Product development and infrastructure"},
	{Name: "Human Resources", Description: "Hiring, onboarding and employee relations"},
	{Name: "Finance", Description: "Accounting, payroll and budgeting"},
	{Name: "Marketing", Description: "Brand, campaigns and communications"},
	{Name: "Sales", Description: "Customer acquisition and accounts"},
	{Name: "Customer Support", Description: "Help desk and customer success"},
	{Name: "Operations", Description: "Facilities, logistics and procurement"},
}

// SeedDepartments inserts the default departments that are not there yet
// and returns how many were added.
func SeedDepartments(ctx context.Context, deptRepo repository.DepartmentRepository) int {
	logrus.Info("seeding departments")

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	added := 0
	for _, dept := range defaultDepartments {
		entry := logrus.WithField("department", dept.Name)

		if _, err := deptRepo.FindDepartmentByName(ctx, dept.Name); err == nil {
			entry.Debug("department already exists, skipping")
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			entry.WithError(err).Error("failed to look up department")
			continue
		}

		d := dept
		if err := deptRepo.CreateDepartment(ctx, &d); err != nil {
			entry.WithError(err).Error("failed to seed department")
			continue
		}
		added++
	}

	logrus.WithField("added", added).Info("department seeding finished")
	return added
}

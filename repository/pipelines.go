package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"employee-management/config"
)

func userLookup(localField, as string) []bson.M {
	return lookupOne(config.UserCollection, localField, as, hidePassword)
}

func employeeExpansion() []bson.M {
	return stages(
		userLookup("user_id", "user_ref"),
		lookupOne(config.DepartmentCollection, "department", "department_ref"),
	)
}

func employeeLookup(localField, as string) []bson.M {
	return lookupOne(config.EmployeeCollection, localField, as, employeeExpansion()...)
}

func departmentExpansion() []bson.M {
	return userLookup("manager", "manager_ref")
}

func attendanceExpansion() []bson.M {
	return employeeLookup("employee", "employee_ref")
}

func leaveExpansion() []bson.M {
	return stages(
		employeeLookup("employee", "employee_ref"),
		userLookup("approved_by", "approver_ref"),
	)
}

func payrollExpansion() []bson.M {
	return employeeLookup("employee", "employee_ref")
}

func documentExpansion() []bson.M {
	return userLookup("uploaded_by", "uploader_ref")
}

func sortNewest() bson.M {
	return bson.M{"$sort": newestFirst}
}

package models

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResourceType tags the kind of record a document or notification points at.
type ResourceType string

const (
	ResourceEmployee   ResourceType = "employee"
	ResourceLeave      ResourceType = "leave"
	ResourcePayroll    ResourceType = "payroll"
	ResourceDepartment ResourceType = "department"
	ResourceAttendance ResourceType = "attendance"
	ResourceGeneral    ResourceType = "general"
)

// ParseResourceType rejects anything outside the known tags.
func ParseResourceType(s string) (ResourceType, error) {
	rt := ResourceType(s)
	switch rt {
	case ResourceEmployee, ResourceLeave, ResourcePayroll, ResourceDepartment, ResourceAttendance, ResourceGeneral:
		return rt, nil
	}
	return "", fmt.Errorf("unknown resource type %q", s)
}

// ValidForDocument reports whether documents may be attached to this kind.
func (rt ResourceType) ValidForDocument() bool {
	switch rt {
	case ResourceEmployee, ResourceLeave, ResourcePayroll, ResourceDepartment, ResourceGeneral:
		return true
	case ResourceAttendance:
		return false
	}
	return false
}

// ValidForNotification reports whether notifications may reference this kind.
func (rt ResourceType) ValidForNotification() bool {
	switch rt {
	case ResourceLeave, ResourcePayroll, ResourceAttendance, ResourceEmployee, ResourceDepartment:
		return true
	case ResourceGeneral:
		return false
	}
	return false
}

// ResourceRef is a typed (kind, id) association.
type ResourceRef struct {
	Type ResourceType       `json:"resourceType" bson:"resource_type"`
	ID   primitive.ObjectID `json:"resourceId" bson:"resource_id"`
}

func NewResourceRef(rt ResourceType, id primitive.ObjectID) *ResourceRef {
	return &ResourceRef{Type: rt, ID: id}
}

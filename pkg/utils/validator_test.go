package util

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"employee-management/models"
)

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	errs := ValidateStruct(&models.UserRegisterPayload{Email: "not-an-email", Password: "123"})
	if len(errs) == 0 {
		t.Fatal("expected validation errors")
	}

	byField := map[string]string{}
	for _, e := range errs {
		byField[e.Field] = e.Tag
	}
	cases := map[string]string{
		"email":     "email",
		"password":  "min",
		"firstName": "required",
		"lastName":  "required",
	}
	for field, tag := range cases {
		if byField[field] != tag {
			t.Fatalf("expected %s to fail %q, got %q (all: %v)", field, tag, byField[field], byField)
		}
	}
}

func TestValidateStructObjectID(t *testing.T) {
	payload := models.DocumentBatchDeletePayload{DocumentIDs: []string{primitive.NewObjectID().Hex(), "nope"}}
	errs := ValidateStruct(&payload)
	if len(errs) != 1 || errs[0].Tag != "objectid" {
		t.Fatalf("expected one objectid error, got %+v", errs)
	}

	payload.DocumentIDs = payload.DocumentIDs[:1]
	if errs := ValidateStruct(&payload); errs != nil {
		t.Fatalf("expected valid payload, got %+v", errs)
	}
}

func TestValidateStructDateFormats(t *testing.T) {
	payload := models.PayrollGeneratePayload{Month: "2024-13", Employees: []string{primitive.NewObjectID().Hex()}}
	errs := ValidateStruct(&payload)
	if len(errs) != 1 || errs[0].Field != "month" || errs[0].Tag != "datetime" {
		t.Fatalf("expected month datetime error, got %+v", errs)
	}

	payload.Month = "2024-06"
	if errs := ValidateStruct(&payload); errs != nil {
		t.Fatalf("expected valid payload, got %+v", errs)
	}
}

package util

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"employee-management/models"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New()

	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	Validate.RegisterValidation("objectid", validateObjectID)
}

func validateObjectID(fl validator.FieldLevel) bool {
	return primitive.IsValidObjectID(fl.Field().String())
}

// ValidateStruct returns one entry per failed rule, or nil when s is valid.
func ValidateStruct(s interface{}) []*models.FieldError {
	var errors []*models.FieldError
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []*models.FieldError{{Field: "", Tag: "invalid", Msg: err.Error()}}
	}

	for _, err := range verrs {
		element := models.FieldError{Field: err.Field(), Tag: err.Tag()}

		switch err.Tag() {
		case "required":
			element.Msg = fmt.Sprintf("'%s' is required.", element.Field)
		case "min":
			element.Msg = fmt.Sprintf("'%s' must be at least %s.", element.Field, err.Param())
		case "max":
			element.Msg = fmt.Sprintf("'%s' must be at most %s.", element.Field, err.Param())
		case "gt":
			element.Msg = fmt.Sprintf("'%s' must be greater than %s.", element.Field, err.Param())
		case "email":
			element.Msg = "Invalid email format."
		case "objectid":
			element.Msg = fmt.Sprintf("'%s' must be a valid id.", element.Field)
		case "datetime":
			element.Msg = fmt.Sprintf("'%s' must match the format %s.", element.Field, err.Param())
		case "oneof":
			element.Msg = fmt.Sprintf("'%s' must be one of: %s.", element.Field, err.Param())
		default:
			element.Msg = fmt.Sprintf("'%s' failed the '%s' rule.", element.Field, element.Tag)
		}
		errors = append(errors, &element)
	}
	return errors
}

package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs the struct's validate tags and folds any failures into
// one ValidationError listing each offending field.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Validationf("invalid input: %v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return Validationf("%s", strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must not be negative", field)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s entry", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "required":
		return fmt.Sprintf("%s is required", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// fieldPath drops the root struct name: "IssuanceDraft.Lines[0].Quantity"
// becomes "Lines[0].Quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// ValidateDraft checks the shape of an issuance draft. It does not touch the
// store; referential and stock checks happen inside the unit of work.
func ValidateDraft(d IssuanceDraft) error {
	if d.IssueDate.IsZero() {
		return Validationf("IssueDate is required")
	}
	return validateStruct(d)
}

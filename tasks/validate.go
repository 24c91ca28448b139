package tasks

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/DropBy-app/dropby/errors"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so errors match the wire format.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("latlng", func(fl validator.FieldLevel) bool {
		_, err := ParseLocation(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}

	return v
}

// Validate checks a create request against its field rules. Failures are
// returned as a validation TaskError whose details map each offending
// field to the rule it broke.
func Validate(req CreateRequest) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.NewValidationError(err.Error())
	}

	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = fe.Tag()
	}

	first := fieldErrs[0]
	return errors.NewValidationError(fmt.Sprintf("%s %s", first.Field(), describe(first)), details)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "latlng":
		return `must be "lat,lng" with latitude in [-90, 90] and longitude in [-180, 180]`
	default:
		return fmt.Sprintf("failed the %q rule", fe.Tag())
	}
}

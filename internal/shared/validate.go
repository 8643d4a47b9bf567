package shared

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate

	handlePattern = regexp.MustCompile(`^[a-z0-9_.]{3,30}$`)
)

// Validator returns the process-wide [validator.Validate] with the custom tags registered.
//
// Custom tags:
//   - handle: lowercase letters, digits, "_" and "." (3-30 chars)
//   - halfstep: a float that is a multiple of 0.5
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
			return handlePattern.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("halfstep", func(fl validator.FieldLevel) bool {
			v := fl.Field().Float() * 2
			return v == float64(int64(v))
		})
	})
	return validate
}

// ValidateStruct runs struct tag validation and folds failures into one [ErrInvalidInput] error.
func ValidateStruct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeField(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}

func describeField(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range", field)
	case "handle":
		return field + " may only contain lowercase letters, digits, '_' and '.'"
	case "halfstep":
		return field + " must be a multiple of 0.5"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrValidation marks request bodies that are well-formed but violate field rules (422).
var ErrValidation = errors.New("validation failed")

// validate is a singleton validator instance; fields are reported by their JSON names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks struct tags on v and reports the first violation.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	e := verrs[0]
	field := e.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest // drop the struct name
	}
	switch e.Tag() {
	case "required":
		return fmt.Errorf("%w: %s: field is required", ErrValidation, field)
	case "min":
		return fmt.Errorf("%w: %s: must have at least %s items", ErrValidation, field, e.Param())
	case "max":
		return fmt.Errorf("%w: %s: must not exceed %s", ErrValidation, field, e.Param())
	case "gte":
		return fmt.Errorf("%w: %s: must be >= %s", ErrValidation, field, e.Param())
	case "oneof":
		return fmt.Errorf("%w: %s: must be one of [%s]", ErrValidation, field, e.Param())
	case "unique":
		return fmt.Errorf("%w: %s: must not contain duplicates", ErrValidation, field)
	default:
		return fmt.Errorf("%w: %s: failed %q", ErrValidation, field, e.Tag())
	}
}

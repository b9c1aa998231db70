package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	apierrors "github.com/Kalmbyy/retail-dashboard/internal/errors"
)

// maxBrandLength bounds manual brand names in filter requests
const maxBrandLength = 100

// NewStructValidator returns a validator that reports JSON field names
// and knows the dashboard's custom tags.
func NewStructValidator() *validator.Validate {
	v := validator.New()

	v.RegisterValidation("brand", isValidBrand)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// FormatFieldError turns a validator field error into a readable message
func FormatFieldError(err validator.FieldError) string {
	field := err.Field()
	tag := err.Tag()
	param := err.Param()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "brand":
		return fmt.Sprintf("%s must be a non-empty brand name of at most %d characters", field, maxBrandLength)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}

// FieldErrors converts validator errors in err into API validation errors.
// It returns nil when err carries no validator.ValidationErrors.
func FieldErrors(err error) []apierrors.ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make([]apierrors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apierrors.ValidationError{
			Field:   fieldPath(fe),
			Message: FormatFieldError(fe),
		})
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace: FilterRequest.years[0] -> years[0]
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func isValidBrand(fl validator.FieldLevel) bool {
	brand := strings.TrimSpace(fl.Field().String())
	return brand != "" && utf8.RuneCountInString(brand) <= maxBrandLength
}

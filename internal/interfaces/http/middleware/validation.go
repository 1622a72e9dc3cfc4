package middleware

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/erp/pricing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator makes gin's validator name fields by their json tag, falling
// back to the form tag for query binding
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return ""
	})
}

// ValidationDetails converts binding errors to field details. ok is false
// when err did not come from the validator.
func ValidationDetails(err error) (details []dto.ValidationDetail, ok bool) {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, false
	}
	details = make([]dto.ValidationDetail, len(fieldErrs))
	for i, fe := range fieldErrs {
		details[i] = dto.ValidationDetail{Field: fieldPath(fe), Message: validationMessage(fe)}
	}
	return details, true
}

// FormatValidationErrors wraps err's field details in an error envelope
func FormatValidationErrors(err error, requestID string) dto.Response {
	details, _ := ValidationDetails(err)
	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// fieldPath strips the Go struct names the validator prefixes to the
// namespace, leaving lineItems[0].unitPrice.codeCurrency. JSON names are
// camelCase so any leading capitalized segment is a Go name.
func fieldPath(fe validator.FieldError) string {
	path := fe.Namespace()
	for {
		head, rest, found := strings.Cut(path, ".")
		if !found || head == "" || !unicode.IsUpper(rune(head[0])) {
			return path
		}
		path = rest
	}
}

func validationMessage(fe validator.FieldError) string {
	p := fe.Param()
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Must be at least " + p + unit
	case "max":
		return "Must be at most " + p + unit
	case "len":
		return "Must be exactly " + p + " characters"
	case "gt":
		return "Must be greater than " + p
	case "gte":
		return "Must be greater than or equal to " + p
	case "lte":
		return "Must be less than or equal to " + p
	case "oneof":
		return "Must be one of: " + p
	case "uuid", "uuid4":
		return "Invalid UUID format"
	}
	return "Invalid value"
}

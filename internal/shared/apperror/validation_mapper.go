package apperror

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// formatFieldName turns "leave_type" into "Leave Type".
func formatFieldName(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	return cases.Title(language.English).String(s)
}

// MapValidationError converts the first binding failure into an AppError.
func MapValidationError(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		e := errs[0]
		field := formatFieldName(e.Field())

		switch e.Tag() {
		case "required":
			return RequiredField(field)
		default:
			return InvalidField(field)
		}
	}

	return New(
		CodeValidation,
		"Invalid input",
		http.StatusBadRequest,
	)
}

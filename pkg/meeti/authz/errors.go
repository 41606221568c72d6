package authz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound means the referenced resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrForbidden means the resource exists but the actor is not its owner.
	ErrForbidden = errors.New("actor does not own resource")
)

// ValidationError carries every field-level message from a failed create
// or update, so callers can surface them together.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Fields, "; ")
}

// FromBinding converts a gin binding failure into a ValidationError with
// one message per failed field, so a form submission surfaces everything
// wrong with it at once rather than the first violation only.
func FromBinding(err error) *ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Fields: []string{err.Error()}}
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fieldMessage(fe)
	}
	return &ValidationError{Fields: msgs}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s does not match %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// IsDenial reports whether err is an ownership denial (NotFound or
// Forbidden). Both are surfaced to users with the same generic message so
// a denied caller cannot distinguish a foreign resource from a missing one.
func IsDenial(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden)
}

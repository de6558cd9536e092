package models

import (
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

const InvalidCredentialsMessage = "The email or password you entered is incorrect"

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

var (
	ErrInvalidID    error = &NotFoundError{Message: "No such data:id"}
	ErrUserNotFound error = &NotFoundError{Message: "No user Found"}
	ErrInvalidToken error = &NotFoundError{Message: "Invalid token, please contact admin"}
)

// NotFoundError covers malformed ids, absent documents and unknown tokens.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError reports a unique field that is already taken.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

var (
	ErrEmailExists error = &ConflictError{Field: "email", Message: "Email already exists"}
	ErrPhoneExists error = &ConflictError{Field: "phone", Message: "Phone number already exists"}
)

type ValidationError struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return e.Message + ": " + strings.Join(parts, ", ")
}

// NewValidationError turns validator output into a ValidationError keyed by
// json field name. Other errors are wrapped as-is.
func NewValidationError(err error) *ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Message: err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &ValidationError{Message: "validation failed", Fields: fields}
}

// FieldMessage describes the first rule a Validate.Var check broke.
func FieldMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fieldMessage(verrs[0])
	}
	return err.Error()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "max":
		return "must be at most " + fe.Param() + " characters long"
	default:
		return "failed on " + fe.Tag()
	}
}

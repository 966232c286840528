package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/nkiryanov/blogapi/internal/apperrors"
)

const (
	PasswordMinLen = 8
	PasswordMaxLen = 25
)

var validate = New()

// New validator that reports json field names and knows 'password' and 'nocontrol' tags
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(useJSONTagNames)
	_ = v.RegisterValidation("password", validatePassword)
	_ = v.RegisterValidation("nocontrol", validateNoControl)
	return v
}

// Validate struct by its 'validate' tags
// Return *apperrors.ValidationError if the value is not valid
func Struct(value any) error {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	return apperrors.NewValidationError(Messages(errs))
}

// Create user-friendly error messages based on validation tag
func Messages(errs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))

	for _, fieldError := range errs {
		var message string
		switch fieldError.Tag() {
		case "required":
			message = "This field is required"
		case "min":
			message = fmt.Sprintf("Value is too short (minimum %s)", fieldError.Param())
		case "max":
			message = fmt.Sprintf("Value is too long (maximum %s)", fieldError.Param())
		case "email":
			message = "Invalid email address"
		case "eqfield":
			message = fmt.Sprintf("Value does not match %s", strings.ToLower(fieldError.Param()))
		case "password":
			message = fmt.Sprintf(
				"Password must be %d-%d letters or digits with at least one lowercase letter, one uppercase letter and one digit",
				PasswordMinLen, PasswordMaxLen,
			)
		case "nocontrol":
			message = "Value contains invalid characters"
		default:
			message = "Invalid value"
		}

		fields[fieldError.Field()] = message
	}

	return fields
}

// Check password complexity
// Only ASCII letters and digits are allowed, at least one of lowercase, uppercase and digit
func Password(password string) error {
	if len(password) < PasswordMinLen || len(password) > PasswordMaxLen {
		return fmt.Errorf("password length must be between %d and %d", PasswordMinLen, PasswordMaxLen)
	}

	var lower, upper, digit bool
	for i := 0; i < len(password); i++ {
		c := password[i]
		switch {
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= '0' && c <= '9':
			digit = true
		default:
			return errors.New("password contains invalid characters")
		}
	}

	if !lower || !upper || !digit {
		return errors.New("password must contain lowercase letter, uppercase letter and digit")
	}

	return nil
}

func validatePassword(fl validator.FieldLevel) bool {
	return Password(fl.Field().String()) == nil
}

// Check text is valid UTF-8 without control characters (NUL, newlines, escapes)
func NoControl(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	return strings.IndexFunc(s, unicode.IsControl) == -1
}

func validateNoControl(fl validator.FieldLevel) bool {
	return NoControl(fl.Field().String())
}

func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	// skip if tag key says it should be ignored
	if name == "-" {
		return ""
	}
	return name
}

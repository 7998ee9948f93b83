package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Binding and validation failures.
var (
	ErrValidation = errors.New("validation failed")
	ErrBinding    = errors.New("binding failed")
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator. Field names in errors are the
// JSON names.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}

			return name
		})

		_ = validate.RegisterValidation("uuid", validateUUID)
		_ = validate.RegisterValidation("notempty", validateNotEmpty)
		_ = validate.RegisterValidation("decimal", validateDecimal)
		_ = validate.RegisterValidation("iso2", validateISO2)
		_ = validate.RegisterValidation("nonnegative", validateNonNegative)
	})

	return validate
}

// Validatable is implemented by requests with rules spanning several fields.
type Validatable interface {
	Validate() error
}

// Validate checks the struct tags of v, then v.Validate when implemented.
func Validate(v any) error {
	if err := Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if validatable, ok := v.(Validatable); ok {
		if err := validatable.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
	}

	return nil
}

// BindAndValidate decodes the JSON body into v and validates it.
func BindAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// FieldError is returned by Validatable implementations.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors maps the failing fields of err to messages. Field paths
// drop the root struct name, e.g. "cart.items[0].quantity".
func ValidationErrors(err error) map[string]string {
	fieldErrors := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fe := range validationErrs {
			fieldErrors[fieldPath(fe.Namespace())] = validationMessage(fe)
		}
	}

	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		fieldErrors[fieldErr.Field] = fieldErr.Message
	}

	return fieldErrors
}

// IsValidationError reports whether err carries field level failures.
func IsValidationError(err error) bool {
	var (
		validationErrs validator.ValidationErrors
		fieldErr       *FieldError
	)

	return errors.As(err, &validationErrs) || errors.As(err, &fieldErr)
}

func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}

	return namespace
}

var validationMessages = map[string]string{
	"required":    "this field is required",
	"uuid":        "must be a valid UUID",
	"notempty":    "must not be empty",
	"decimal":     "must be a decimal number",
	"nonnegative": "must not be negative",
	"iso2":        "must be a two letter ISO 3166-1 country code",
	"len":         "must be exactly {param} characters",
	"gte":         "must be greater than or equal to {param}",
	"lte":         "must be less than or equal to {param}",
	"oneof":       "must be one of: {param}",
}

func validationMessage(fe validator.FieldError) string {
	tag, param := fe.Tag(), fe.Param()

	if tag == "min" || tag == "max" {
		return minMaxMessage(tag, param, fe.Kind())
	}

	if msg, ok := validationMessages[tag]; ok {
		return strings.ReplaceAll(msg, "{param}", param)
	}

	return "failed validation: " + tag
}

func minMaxMessage(tag, param string, kind reflect.Kind) string {
	suffix := ""

	switch kind { //nolint:exhaustive // only sized kinds need a unit
	case reflect.String:
		suffix = " characters"
	case reflect.Slice, reflect.Map, reflect.Array:
		suffix = " items"
	}

	if tag == "min" {
		return "must be at least " + param + suffix
	}

	return "must be at most " + param + suffix
}

func validateUUID(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}

	_, err := uuid.Parse(value)

	return err == nil
}

func validateNotEmpty(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateDecimal(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}

	_, err := decimal.NewFromString(value)

	return err == nil
}

// validateISO2 is iso3166_1_alpha2 without case sensitivity.
func validateISO2(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}

	return validate.Var(strings.ToUpper(value), "iso3166_1_alpha2") == nil
}

func validateNonNegative(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}

	d, err := decimal.NewFromString(value)

	return err == nil && !d.IsNegative()
}

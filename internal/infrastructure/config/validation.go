package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tmurata/inspection-dispatch/internal/domain/shared"
)

// Validator wraps go-playground/validator with the rules the dispatch
// configuration needs.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator instance with the custom rules registered.
func NewValidator() *Validator {
	v := validator.New()

	// hhmm accepts clock times like "12:15", the format shift bounds and the
	// break window use.
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := shared.ParseMinuteOfDay(fl.Field().String())
		return err == nil
	})

	return &Validator{
		validate: v,
	}
}

// Validate validates a struct using validation tags
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return v.formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors into readable messages
func (v *Validator) formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrs {
			messages = append(messages, fmt.Sprintf(
				"field '%s' failed validation: %s (value: '%v')",
				e.Field(),
				e.Tag(),
				e.Value(),
			))
		}
		return fmt.Errorf("validation failed:\n  %s", strings.Join(messages, "\n  "))
	}
	return err
}

// ValidateConfig validates the entire configuration
func ValidateConfig(cfg *Config) error {
	v := NewValidator()
	return v.Validate(cfg)
}

package telemetry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/UnknownOlympus/skyguard/internal/models"
	"github.com/go-playground/validator/v10"
)

// ErrDataValidation is returned when a batch does not match the telemetry schema.
var ErrDataValidation = errors.New("data validation failed")

// Schema validates whole batches against the struct tags declared on models.Telemetry.
// Unlike Validator, the schema leaves signal strength unbounded.
type Schema struct {
	validate *validator.Validate
}

// NewSchema builds a Schema with the drone_status rule registered.
func NewSchema() *Schema {
	validate := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(validate, "drone_status", func(fl validator.FieldLevel) bool {
		status, ok := fl.Field().Interface().(models.Status)
		return ok && status.Valid()
	})

	return &Schema{validate: validate}
}

func mustRegister(validate *validator.Validate, tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("failed to register %q validation: %v", tag, err))
	}
}

// ValidateBatch checks every record. Any failing field rejects the whole batch; the returned
// error wraps ErrDataValidation and lists every failure.
func (s *Schema) ValidateBatch(batch []models.Telemetry) error {
	return s.validateEach(len(batch), func(idx int) any { return &batch[idx] })
}

// ValidateRecords checks a decoded feed with the same all-or-nothing rule as ValidateBatch and
// additionally rejects records with missing numbers. Accepted records are converted.
func (s *Schema) ValidateRecords(records []Record) ([]models.Telemetry, error) {
	if err := s.validateEach(len(records), func(idx int) any { return &records[idx] }); err != nil {
		return nil, err
	}

	batch := make([]models.Telemetry, len(records))
	for idx := range records {
		batch[idx] = records[idx].Telemetry()
	}

	return batch, nil
}

func (s *Schema) validateEach(n int, record func(idx int) any) error {
	var messages []string

	for idx := range n {
		err := s.validate.Struct(record(idx))
		if err == nil {
			continue
		}

		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: record %d: %w", ErrDataValidation, idx, err)
		}
		for _, fe := range fieldErrs {
			messages = append(messages, describe(idx, fe))
		}
	}

	if len(messages) > 0 {
		return fmt.Errorf("%w: %s", ErrDataValidation, strings.Join(messages, ", "))
	}

	return nil
}

func describe(idx int, fe validator.FieldError) string {
	// Drop the struct name so both record forms report the same path.
	_, field, _ := strings.Cut(fe.Namespace(), ".")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("[%d].%s is required", idx, field)
	case "gte":
		return fmt.Sprintf("[%d].%s must be greater than or equal to %s", idx, field, fe.Param())
	case "lte":
		return fmt.Sprintf("[%d].%s must be less than or equal to %s", idx, field, fe.Param())
	case "drone_status":
		return fmt.Sprintf("[%d].%s must be one of IDLE, MOVING, JAMMED", idx, field)
	default:
		return fmt.Sprintf("[%d].%s failed on %s", idx, field, fe.Tag())
	}
}

package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"slotkeeper/pkg/logger"
	"slotkeeper/pkg/model"

	"github.com/go-playground/validator/v10"
)

var (
	slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type EventTypeValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewEventTypeValidator(log *logger.Logger) *EventTypeValidator {
	v := validator.New()

	if err := v.RegisterValidation("slug", validateSlug); err != nil {
		log.Fatal("Failed to register 'slug' validator",
			"error", err,
		)
	}

	return &EventTypeValidator{
		validate: v,
		logger:   log,
	}
}

func validateSlug(fl validator.FieldLevel) bool {
	return slugRegex.MatchString(fl.Field().String())
}

func (v *EventTypeValidator) Validate(eventType *model.EventType) error {
	return v.validateStruct(eventType)
}

func (v *EventTypeValidator) ValidateUpdate(update *model.EventTypeUpdate) error {
	return v.validateStruct(update)
}

func (v *EventTypeValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *EventTypeValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "slug":
			message = fmt.Sprintf("%s may contain only lowercase letters, digits and single hyphens", err.Field())
		case "hexcolor":
			message = fmt.Sprintf("%s must be a hex color such as #0066ff", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

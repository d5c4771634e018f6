// Package validation owns the single validator instance shared by gin's
// binding and the services.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/rs/zerolog/log"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator configured with binding tags, JSON
// field names and the notblank rule.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.SetTagName("binding")
		v.RegisterTagNameFunc(jsonName)
		if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
			log.Fatal().Err(err).Msg("Failed to register notblank validator")
		}
		instance = v
	})
	return instance
}

// RegisterGin swaps gin's default validator for the shared one so handlers and
// services report identical messages.
func RegisterGin() {
	binding.Validator = &ginValidator{validate: Validator()}
}

// Struct validates s and returns validator.ValidationErrors on failure.
func Struct(s any) error {
	return Validator().Struct(s)
}

type ginValidator struct {
	validate *validator.Validate
}

func (g *ginValidator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	value := reflect.ValueOf(obj)
	for value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return nil
		}
		value = value.Elem()
	}
	switch value.Kind() {
	case reflect.Struct:
		return g.validate.Struct(obj)
	case reflect.Slice, reflect.Array:
		for i := 0; i < value.Len(); i++ {
			if err := g.ValidateStruct(value.Index(i).Interface()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *ginValidator) Engine() any {
	return g.validate
}

func jsonName(field reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return field.Name
}

// Messages renders validation failures one line per field. Errors that are not
// validator errors (malformed JSON, wrong types) become a single line.
func Messages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, message(fe))
	}
	return messages
}

func message(fe validator.FieldError) string {
	field := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "email":
		return fmt.Sprintf("%s must be an email", field)
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a UUID", field)
	case "len":
		if isCollection(fe) {
			return fmt.Sprintf("%s must contain exactly %s elements", field, fe.Param())
		}
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "min":
		switch {
		case isCollection(fe):
			return fmt.Sprintf("%s must contain at least %s elements", field, fe.Param())
		case fe.Kind() == reflect.String:
			return fmt.Sprintf("%s must be longer than or equal to %s characters", field, fe.Param())
		default:
			return fmt.Sprintf("%s must not be less than %s", field, fe.Param())
		}
	case "max":
		switch {
		case isCollection(fe):
			return fmt.Sprintf("%s must contain no more than %s elements", field, fe.Param())
		case fe.Kind() == reflect.String:
			return fmt.Sprintf("%s must be shorter than or equal to %s characters", field, fe.Param())
		default:
			return fmt.Sprintf("%s must not be greater than %s", field, fe.Param())
		}
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return fmt.Sprintf("%s failed on the %s rule", field, fe.Tag())
}

func isCollection(fe validator.FieldError) bool {
	switch fe.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}

// fieldPath drops the root struct name: "CreateQuizRequest.questions[0].text"
// becomes "questions[0].text".
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}

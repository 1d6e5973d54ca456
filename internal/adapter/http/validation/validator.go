package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"tasktracker/internal/core/model/response"
	"tasktracker/internal/core/util"
)

var (
	Validator  *validator.Validate
	Translator ut.Translator
)

func init() {
	Validator = validator.New(validator.WithRequiredStructEnabled())
	Validator.RegisterTagNameFunc(fieldName)

	english := en.New()
	uni := ut.New(english, english)

	var found bool
	Translator, found = uni.GetTranslator("en")

	if !found {
		panic("translator en not found")
	}

	if err := en_translations.RegisterDefaultTranslations(Validator, Translator); err != nil {
		panic(err)
	}

	if err := Validator.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}

	if err := Validator.RegisterValidation("deadline", validDeadline); err != nil {
		panic(err)
	}

	addCustomTranslations()
}

// fieldName reports fields by their JSON (or query) name.
func fieldName(field reflect.StructField) string {
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

// validDeadline accepts a blank value, which clears the deadline on details
// updates.
func validDeadline(fl validator.FieldLevel) bool {
	value := fl.Field().String()

	if strings.TrimSpace(value) == "" {
		return true
	}

	_, err := util.ParseDeadline(value)
	return err == nil
}

func addCustomTranslations() {
	Validator.RegisterTranslation("required", Translator, func(ut ut.Translator) error {
		return ut.Add("required", "{0} is required", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("required", fe.Field())
		return t
	})

	Validator.RegisterTranslation("min", Translator, func(ut ut.Translator) error {
		return ut.Add("min", "{0} must not be empty", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("min", fe.Field())
		return t
	})

	Validator.RegisterTranslation("notblank", Translator, func(ut ut.Translator) error {
		return ut.Add("notblank", "{0} must not be blank", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("notblank", fe.Field())
		return t
	})

	Validator.RegisterTranslation("deadline", Translator, func(ut ut.Translator) error {
		return ut.Add("deadline", "{0} must be a valid date or date-time", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("deadline", fe.Field())
		return t
	})
}

// FormatValidationErrors lists every violated field. Errors that did not
// come from the validator are reported against "request".
func FormatValidationErrors(err error) []response.ValidationError {
	var validationErrors validator.ValidationErrors

	if !errors.As(err, &validationErrors) {
		return []response.ValidationError{{Field: "request", Message: err.Error()}}
	}

	formatted := make([]response.ValidationError, 0, len(validationErrors))

	for _, fieldError := range validationErrors {
		formatted = append(formatted, response.ValidationError{
			Field:   fieldPath(fieldError),
			Message: fieldError.Translate(Translator),
		})
	}

	return formatted
}

// fieldPath drops the top-level struct name from the namespace, so nested
// entries read like labels[1].
func fieldPath(fe validator.FieldError) string {
	namespace := fe.Namespace()

	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}

	return fe.Field()
}

package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/noah-isme/sma-classroom/internal/models"
	appErrors "github.com/noah-isme/sma-classroom/pkg/errors"
)

var customMessages = map[string]string{
	"attendance_status": "{0} must be present, absent or excused",
	"performance_level": "{0} must be excellent, good, average, needs_improvement or poor",
	"bulk_mode":         "{0} must be atomic or partialOnError",
}

// requestValidator pairs the shared validator with the translator used for its messages.
type requestValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func newRequestValidator(validate *validator.Validate) requestValidator {
	if validate == nil {
		validate = validator.New()
	}
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseAttendanceStatus(fl.Field().String())
		return ok
	})
	validate.RegisterValidation("performance_level", func(fl validator.FieldLevel) bool {
		_, ok := models.ParsePerformanceLevel(fl.Field().String())
		return ok
	})
	validate.RegisterValidation("bulk_mode", func(fl validator.FieldLevel) bool {
		return models.BulkOperationMode(strings.TrimSpace(fl.Field().String())).Valid()
	})

	english := en.New()
	translator, _ := ut.New(english, english).GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)
	for tag, message := range customMessages {
		tag, message := tag, message
		_ = validate.RegisterTranslation(tag, translator,
			func(trans ut.Translator) error { return trans.Add(tag, message, true) },
			func(trans ut.Translator, fe validator.FieldError) string {
				text, err := trans.T(tag, fe.Field())
				if err != nil {
					return fe.Error()
				}
				return text
			},
		)
	}
	return requestValidator{validate: validate, translator: translator}
}

// Struct validates a request and reports every failing field in one ErrValidation.
func (v requestValidator) Struct(req interface{}) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fe.Translate(v.translator))
	}
	return appErrors.Clone(appErrors.ErrValidation, strings.Join(messages, "; "))
}

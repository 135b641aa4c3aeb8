package apimodels

import (
	"procurement-backend/models"
	"reflect"
	"strings"

	"github.com/go-playground/locales/ru"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	rutranslations "github.com/go-playground/validator/v10/translations/ru"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	Validator  *validator.Validate
	translator ut.Translator
)

func init() {
	Validator = validator.New(validator.WithRequiredStructEnabled())
	// в ошибках используем имена полей из json
	Validator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	locale := ru.New()
	translator, _ = ut.New(locale, locale).GetTranslator("ru")
	if err := rutranslations.RegisterDefaultTranslations(Validator, translator); err != nil {
		log.WithError(err).Warn("ошибка регистрации переводов валидатора")
	}
}

// ValidateStruct проверка по тегам validate, возвращает первую ошибку как models.ValidationError.
// fields - имена полей структуры для частичной проверки (шаг мастера)
func ValidateStruct(s interface{}, fields ...string) error {
	var err error
	if len(fields) > 0 {
		err = Validator.StructPartial(s, fields...)
	} else {
		err = Validator.Struct(s)
	}
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) || len(vErrs) == 0 {
		return err
	}
	fe := vErrs[0]
	return &models.ValidationError{
		Field:   fe.Field(),
		Message: fe.Translate(translator),
	}
}

package models

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrForbidden         = errors.New("операция недоступна")
	ErrInvalidTransition = errors.New("недопустимый переход статуса")
	ErrNotFound          = errors.New("запись не найдена")
)

// ValidationError ошибка входных данных, пользователь может её исправить
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, format string, args ...interface{}) error {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

func Forbidden(format string, args ...interface{}) error {
	return errors.Wrapf(ErrForbidden, format, args...)
}

func NotFound(format string, args ...interface{}) error {
	return errors.Wrapf(ErrNotFound, format, args...)
}

package validation

import (
	"errors"
	"fmt"
)

var (
	ErrNoData      = errors.New("нет данных для обновления")
	ErrInvalidBody = errors.New("тело запроса должно быть JSON-объектом")
)

type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("поле '%s': %s", e.Field, e.Reason)
}

func fieldError(field, reason string) *FieldError {
	return &FieldError{Field: field, Reason: reason}
}

package service

import (
	"errors"
	"fmt"

	"todoTracker/internal/logger"
	"todoTracker/internal/validation"

	"go.uber.org/zap"
)

const (
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeNotFound           = "NOT_FOUND"
	CodeValidation         = "VALIDATION_ERROR"
	CodeNoData             = "NO_DATA"
	CodeStore              = "STORE_ERROR"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
)

// BusinessError ошибка, которую можно показать клиенту; Err наружу не уходит
type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

func NewUnauthorized() *BusinessError {
	return &BusinessError{
		Code:    CodeUnauthorized,
		Message: "Требуется авторизация",
	}
}

func NewNotFound(resource string, id any) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %v не найден(а)", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewNoDataError() *BusinessError {
	return &BusinessError{
		Code:    CodeNoData,
		Message: "Нет данных для обновления",
	}
}

func NewStoreError(operation string, err error) *BusinessError {
	return &BusinessError{
		Code:    CodeStore,
		Message: fmt.Sprintf("Ошибка хранилища: %s", operation),
		Err:     err,
	}
}

func NewInvalidCredentials() *BusinessError {
	return &BusinessError{
		Code:    CodeInvalidCredentials,
		Message: "Неверный логин или пароль",
	}
}

const ReasonInvalidBody = "ожидается JSON-объект"

// FromValidation переводит ошибки разбора тела запроса в BusinessError
func FromValidation(err error) *BusinessError {
	var fieldErr *validation.FieldError
	switch {
	case errors.Is(err, validation.ErrNoData):
		return NewNoDataError()
	case errors.As(err, &fieldErr):
		return NewValidationError(fieldErr.Field, fieldErr.Reason)
	case errors.Is(err, validation.ErrInvalidBody):
		logger.Warn("Service: Неверное тело запроса", zap.Error(err))
		return NewValidationError("body", ReasonInvalidBody)
	default:
		logger.Warn("Service: Не удалось разобрать тело запроса", zap.Error(err))
		return NewValidationError("body", ReasonInvalidBody)
	}
}

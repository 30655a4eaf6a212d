// lyceum-crm/internal/ledger/errors.go
package ledger

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind - машинно-проверяемая категория ошибки движка сверки.
type Kind string

const (
	KindValidation    Kind = "validation"    // некорректные входные данные, клиент может повторить запрос
	KindNotFound      Kind = "not_found"     // запись с указанным идентификатором не существует
	KindAuthorization Kind = "authorization" // у вызывающего нет роли или права владения
	KindStorage       Kind = "storage"       // сбой хранилища, локально не восстановим
)

// Error - структурированная ошибка движка: категория + человекочитаемое сообщение.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func NewValidation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func NewNotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

func NewAuthorization(message string) error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func NewStorage(message string, err error) error {
	return &Error{Kind: KindStorage, Message: message, Err: err}
}

// KindOf возвращает категорию ошибки. Для неизвестных ошибок - KindStorage,
// чтобы сбой хранилища никогда не выглядел как успех или ошибка клиента.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// MessageOf возвращает человекочитаемое сообщение без внутренних деталей.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Внутренняя ошибка сервера"
}

// HTTPStatus транслирует категорию ошибки в HTTP-статус для транспортного слоя.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthorization:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Paquete apperrors define la taxonomía de errores de la aplicación.
// Los handlers traducen estos valores a respuestas HTTP; los servicios
// los devuelven envueltos cuando hace falta contexto.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	return e.Message
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), StatusCode: http.StatusNotFound}
}

func Forbidden(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), StatusCode: http.StatusForbidden}
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), StatusCode: http.StatusBadRequest}
}

func Unauthorized(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), StatusCode: http.StatusUnauthorized}
}

// StatusCode devuelve el código HTTP asociado al error, o 500 si no es un *Error.
func StatusCode(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

func IsNotFound(err error) bool   { return is(err, http.StatusNotFound) }
func IsForbidden(err error) bool  { return is(err, http.StatusForbidden) }
func IsValidation(err error) bool { return is(err, http.StatusBadRequest) }

func is(err error, code int) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.StatusCode == code
}

package riverapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/floatplan/floatplan/pkg/routing"
)

// ParsingError wraps a request body that could not be decoded.
type ParsingError struct {
	Err error
}

func (e *ParsingError) Error() string { return e.Err.Error() }

func (e *ParsingError) Unwrap() error { return e.Err }

// RequiredError marks a missing required field.
type RequiredError struct {
	Field string
}

func (e *RequiredError) Error() string {
	return fmt.Sprintf("required field '%s' is zero value", e.Field)
}

// ErrorHandler turns a controller-level error into an http response.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error, result *ImplResponse)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// DefaultErrorHandler maps decode and validation failures to 400 and
// everything else to the code the service picked, or 500.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error, result *ImplResponse) {
	status := http.StatusInternalServerError
	body := ErrorResponse{Error: err.Error()}

	var parsingErr *ParsingError
	var requiredErr *RequiredError
	var inputErr *routing.InputError
	var snapErr *routing.SnapError
	switch {
	case errors.As(err, &parsingErr):
		status = http.StatusBadRequest
	case errors.As(err, &requiredErr):
		status = http.StatusBadRequest
		body.Field = requiredErr.Field
	case errors.As(err, &inputErr):
		status = http.StatusBadRequest
		body.Field = inputErr.Field
	case errors.As(err, &snapErr):
		status = http.StatusNotFound
		body.Field = string(snapErr.Endpoint)
	default:
		if result != nil && result.Code != 0 {
			status = result.Code
		}
	}
	_ = EncodeJSONResponse(body, &status, w)
}

package dto

import "net/http"

// Error codes returned in APIError.Code
const (
	ErrCodeNotFound      = "not_found"
	ErrCodeBadRequest    = "bad_request"
	ErrCodeInternalError = "internal_error"
)

// APIError is the body of every error response. Status is the HTTP status
// it is sent with and is not serialized.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements error so handlers can pass an APIError around as one
func (e APIError) Error() string {
	return e.Code + ": " + e.Message
}

// NotFoundError reports a missing resource, e.g. NotFoundError("run")
func NotFoundError(resource string) APIError {
	return APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: resource + " not found"}
}

// BadRequestError reports an invalid path or query parameter
func BadRequestError(message string) APIError {
	return APIError{Status: http.StatusBadRequest, Code: ErrCodeBadRequest, Message: message}
}

// InternalError hides storage failures from clients; the handler logs them.
func InternalError() APIError {
	return APIError{Status: http.StatusInternalServerError, Code: ErrCodeInternalError, Message: "an internal error occurred"}
}

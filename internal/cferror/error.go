// Package cferror defines the error format rendered by the campusfound API.
package cferror

import "net/http"

// StatusExpiredAccessToken is an HTTP status code used when an access token is expired.
const StatusExpiredAccessToken = 498

type (
	// A CFError represents the error format that can be rendered by the campusfound server.
	CFError struct {
		HTTPCode   int `json:"-"`
		FieldError err `json:"error"`
	}

	err struct {
		Tag     string `json:"tag,omitempty"`
		Message string `json:"message"`
	}
)

// StatusCode returns the HTTP status code.
func StatusCode(err error) int {
	if cferr, ok := err.(*CFError); ok && cferr.HTTPCode > 0 {
		return cferr.HTTPCode
	}
	return http.StatusInternalServerError
}

// New returns a new CFError with the given message.
func New(message string) *CFError {
	return &CFError{FieldError: err{Message: message}}
}

// NewWithTagCode returns a new CFError with the given code, tag and message.
func NewWithTagCode(code int, tag, message string) *CFError {
	return &CFError{HTTPCode: code, FieldError: err{Tag: tag, Message: message}}
}

// NewNotFound returns a new CFError tagged as not-found.
func NewNotFound(message string) *CFError {
	return NewWithTagCode(http.StatusNotFound, "not-found", message)
}

// IsNotFound returns true if err is a not-found CFError.
func IsNotFound(err error) bool {
	cferr, ok := err.(*CFError)
	return ok && cferr.FieldError.Tag == "not-found"
}

// Error implements error interface.
func (e *CFError) Error() string {
	return e.FieldError.Message
}

// Package response defines the unified JSON envelope returned by all HTTP
// handlers, plus helpers for validation errors and the upgrade-required
// prompt.
package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"
)

// Response is the standard JSON envelope. Status is "OK" or "Error"; Error
// carries the message on failure; Data carries the payload on success.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse is the error shape referenced by the swagger annotations.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

// Envelope status values.
const (
	StatusOK    = "OK"
	StatusError = "Error"
)

// OKWithData returns a success Response carrying data.
func OKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// OK returns an empty success Response.
func OK() Response {
	return Response{Status: StatusOK}
}

// Error returns an error Response with the given message.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// UpgradeRequired is the response for an entitlement-limit breach. A breach
// is not a failure; the UI renders it as an upgrade prompt.
func UpgradeRequired(resource string) Response {
	return Response{
		Status: StatusError,
		Error:  fmt.Sprintf("%s limit reached, upgrade required", resource),
		Data:   map[string]any{"upgrade_required": true, "resource": resource},
	}
}

// ValidationError renders validator violations as one readable message.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "alphanum":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only numbers and letters", err.Field()))
		case "gte":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must not be negative", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s has an unsupported value", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}

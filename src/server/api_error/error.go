// Package api_error defines the JSON shape of every error response.
package api_error

// JSONAPIError is the error body returned by all endpoints. Code is a
// stable machine-readable identifier, Msg is text fit to show a user, and
// ErrorDetails carries the internal error chain for debugging.
type JSONAPIError struct {
	Code         string `json:"code"`
	Msg          string `json:"msg"`
	ErrorDetails string `json:"error_details"`
}

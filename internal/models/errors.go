package models

// ErrorResponse is the JSON body returned by the dashboard API on failure.
type ErrorResponse struct {
	Message string `json:"message"`
}

// Package models defines API response types for consistent JSON responses.
package models

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
	// APIStatusWarning indicates a guard rejected the request without changing state.
	APIStatusWarning APIStatus = "warning"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"` // optional message for warnings, errors, or additional info
	Result  interface{} `json:"result,omitempty"`  // optional result data for successful responses
}

// Success creates a successful API response with result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// SuccessWithMessage creates a successful API response with a message and result data.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Message: message, Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}

// Warning creates a warning API response. Used for guard failures that leave
// session state untouched.
func Warning(message string) APIResponse {
	return APIResponse{Status: string(APIStatusWarning), Message: message}
}

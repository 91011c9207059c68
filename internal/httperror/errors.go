package httperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/divyampandey/pixel-llm-server-go/internal/gemini"
	"github.com/divyampandey/pixel-llm-server-go/internal/transcript"
)

// ErrorCode is the API error code.
type ErrorCode string

const (
	ErrorCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrorCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrorCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrorCodeHTTPRateLimit ErrorCode = "HTTP_RATE_LIMIT"
	ErrorCodeLLM           ErrorCode = "LLM_ERROR"
	ErrorCodeLLMTimeout    ErrorCode = "LLM_TIMEOUT"
	ErrorCodeLLMModel      ErrorCode = "LLM_MODEL_ERROR"
	ErrorCodeTranscript    ErrorCode = "TRANSCRIPT_ERROR"
	ErrorCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrorCodeMissingField  ErrorCode = "MISSING_FIELD"
)

// ErrorResponse is the API error body for the internal /api surface.
// The public /chat route has its own render-safe contract.
type ErrorResponse struct {
	ErrorCode string         `json:"error_code"`
	ErrorType string         `json:"error_type"`
	Message   string         `json:"message"`
	RequestID *string        `json:"request_id"`
	Details   map[string]any `json:"details"`
}

// Error is the internal standard error type.
type Error struct {
	Code    ErrorCode
	Status  int
	Type    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return e.Message
}

// Response converts an error into an HTTP status and body.
func Response(err error, requestID string) (int, ErrorResponse) {
	apiErr := FromError(err)
	if apiErr == nil {
		apiErr = NewInternalError("unknown error")
	}

	var requestIDPtr *string
	if requestID != "" {
		requestIDPtr = &requestID
	}

	return apiErr.Status, ErrorResponse{
		ErrorCode: string(apiErr.Code),
		ErrorType: apiErr.Type,
		Message:   apiErr.Message,
		RequestID: requestIDPtr,
		Details:   apiErr.Details,
	}
}

// FromError maps arbitrary errors onto the internal taxonomy.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	if errors.Is(err, transcript.ErrStoreDisabled) {
		return NewTranscriptError("Transcript store disabled", http.StatusServiceUnavailable)
	}

	if errors.Is(err, gemini.ErrInvalidModel) {
		return NewLLMModelError("Invalid model")
	}

	if errors.Is(err, gemini.ErrMissingAPIKey) {
		return NewLLMError("Missing Gemini API key", http.StatusServiceUnavailable)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewLLMTimeoutError("LLM request timed out")
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return NewValidationError(err)
	}

	return NewInternalError(err.Error())
}

func NewInternalError(message string) *Error {
	return &Error{
		Code:    ErrorCodeInternal,
		Status:  http.StatusInternalServerError,
		Type:    "InternalError",
		Message: message,
	}
}

func NewValidationError(err error) *Error {
	return &Error{
		Code:    ErrorCodeValidation,
		Status:  http.StatusUnprocessableEntity,
		Type:    "ValidationError",
		Message: "Input validation failed",
		Details: validationDetails(err),
	}
}

func NewMissingField(field string) *Error {
	return &Error{
		Code:    ErrorCodeMissingField,
		Status:  http.StatusBadRequest,
		Type:    "MissingFieldError",
		Message: fmt.Sprintf("Field '%s' required", field),
		Details: map[string]any{"field": field},
	}
}

func NewInvalidInput(message string) *Error {
	return &Error{
		Code:    ErrorCodeInvalidInput,
		Status:  http.StatusBadRequest,
		Type:    "InvalidInputError",
		Message: message,
	}
}

func NewUnauthorized(details map[string]any) *Error {
	return &Error{
		Code:    ErrorCodeUnauthorized,
		Status:  http.StatusUnauthorized,
		Type:    "UnauthorizedError",
		Message: "Invalid API key",
		Details: details,
	}
}

func NewRateLimitExceeded(details map[string]any) *Error {
	return &Error{
		Code:    ErrorCodeHTTPRateLimit,
		Status:  http.StatusTooManyRequests,
		Type:    "HTTPRateLimitExceededError",
		Message: "Rate limit exceeded",
		Details: details,
	}
}

func NewTranscriptError(message string, status int) *Error {
	return &Error{
		Code:    ErrorCodeTranscript,
		Status:  status,
		Type:    "TranscriptError",
		Message: message,
	}
}

func NewLLMModelError(message string) *Error {
	return &Error{
		Code:    ErrorCodeLLMModel,
		Status:  http.StatusBadRequest,
		Type:    "LLMModelError",
		Message: message,
	}
}

func NewLLMTimeoutError(message string) *Error {
	return &Error{
		Code:    ErrorCodeLLMTimeout,
		Status:  http.StatusGatewayTimeout,
		Type:    "LLMTimeoutError",
		Message: message,
	}
}

func NewLLMError(message string, status int) *Error {
	return &Error{
		Code:    ErrorCodeLLM,
		Status:  status,
		Type:    "LLMError",
		Message: message,
	}
}

// FieldError describes one invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value"`
}

func validationDetails(err error) map[string]any {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make([]FieldError, 0, len(validationErrors))
		for _, validationErr := range validationErrors {
			fields = append(fields, FieldError{
				Field:   validationErr.Field(),
				Message: validationErr.Error(),
				Value:   validationErr.Value(),
			})
		}
		return map[string]any{"errors": fields}
	}

	return map[string]any{
		"errors": []FieldError{
			{
				Field:   "body",
				Message: err.Error(),
				Value:   nil,
			},
		},
	}
}

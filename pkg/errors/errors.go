package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a typed error code.
type ErrorCode string

const (
	// ErrorCodeInternal represents an internal server error.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrorCodeBadRequest represents a malformed request.
	ErrorCodeBadRequest ErrorCode = "BAD_REQUEST"
	// ErrorCodeUnauthorized represents a missing or rejected credential.
	ErrorCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrorCodeForbidden represents a valid credential without the required scope.
	ErrorCodeForbidden ErrorCode = "FORBIDDEN"
	// ErrorCodeValidation is raised for input that is not a PDF.
	ErrorCodeValidation ErrorCode = "VALIDATION_ERROR"
	// ErrorCodeDecode is raised when a PDF (or one of its pages) cannot be decoded.
	ErrorCodeDecode ErrorCode = "DECODE_ERROR"
	// ErrorCodeParse is raised for invalid JSON typed into the editor.
	ErrorCodeParse ErrorCode = "PARSE_ERROR"
	// ErrorCodeTransport is raised when the conversion server is unreachable or answers non-2xx.
	ErrorCodeTransport ErrorCode = "TRANSPORT_ERROR"
	// ErrorCodeFilesystem is raised when staging or removing an upload fails.
	ErrorCodeFilesystem ErrorCode = "FILESYSTEM_ERROR"
	// ErrorCodePayloadTooLarge is raised when an upload exceeds the configured limit.
	ErrorCodePayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"
)

// User-facing messages shared by the server and the clients.
const (
	MsgNoFileUploaded   = "No file uploaded"
	MsgProcessingFailed = "Error processing PDF"
	MsgInvalidPDF       = "Please upload a valid PDF file."
	MsgInvalidJSON      = "Invalid JSON. Please check your input."
	MsgConversionFailed = "Error converting PDF. Please try again."
)

// AppError represents an application error with code, message, and HTTP status.
type AppError struct {
	Code             ErrorCode
	Message          string
	HTTPStatus       int
	Err              error
	Details          string
	HandledByService bool // Indicates if the service has already handled/alerted on this error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error.
func NewAppError(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// NewAppErrorWithErr creates a new application error with an underlying error.
func NewAppErrorWithErr(code ErrorCode, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// WithDetails attaches a human-readable detail string that is returned to the caller.
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// SetHandledByService marks the error as handled by the service.
func (e *AppError) SetHandledByService(handled bool) *AppError {
	e.HandledByService = handled
	return e
}

// ErrorResponse is the JSON error body returned by the HTTP API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ToErrorResponse converts an AppError to an ErrorResponse for JSON serialization.
func (e *AppError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Details: e.Details,
	}
}

// ToHTTPStatus maps an error code to HTTP status code.
func ToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrorCodeBadRequest, ErrorCodeValidation, ErrorCodeParse:
		return http.StatusBadRequest
	case ErrorCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrorCodeForbidden:
		return http.StatusForbidden
	case ErrorCodeTransport:
		return http.StatusBadGateway
	case ErrorCodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// FromError converts a standard error to an AppError.
// Wrapped AppErrors are found with errors.As; anything else becomes an internal error.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	return NewAppErrorWithErr(
		ErrorCodeInternal,
		"An internal error occurred",
		http.StatusInternalServerError,
		err,
	)
}

// CodeOf returns the code of the first AppError in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool { return CodeOf(err) == ErrorCodeValidation }

// IsDecode reports whether err is a DecodeError.
func IsDecode(err error) bool { return CodeOf(err) == ErrorCodeDecode }

// IsParse reports whether err is a ParseError.
func IsParse(err error) bool { return CodeOf(err) == ErrorCodeParse }

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool { return CodeOf(err) == ErrorCodeTransport }

// IsFilesystem reports whether err is a FilesystemError.
func IsFilesystem(err error) bool { return CodeOf(err) == ErrorCodeFilesystem }

// Common error constructors

// NewBadRequestError creates a bad request error.
func NewBadRequestError(message string) *AppError {
	return NewAppError(ErrorCodeBadRequest, message, http.StatusBadRequest)
}

// NewUnauthorizedError creates an unauthorized error.
func NewUnauthorizedError(message string) *AppError {
	return NewAppError(ErrorCodeUnauthorized, message, http.StatusUnauthorized)
}

// NewForbiddenError creates a forbidden error.
func NewForbiddenError(message string) *AppError {
	return NewAppError(ErrorCodeForbidden, message, http.StatusForbidden)
}

// NewInternalError creates an internal error.
func NewInternalError(message string) *AppError {
	return NewAppError(ErrorCodeInternal, message, http.StatusInternalServerError)
}

// NewValidationError creates a validation error.
func NewValidationError(message string) *AppError {
	return NewAppError(ErrorCodeValidation, message, http.StatusBadRequest)
}

// NewDecodeError creates a decode error. The cause's message is exposed as details.
func NewDecodeError(err error) *AppError {
	e := NewAppErrorWithErr(ErrorCodeDecode, MsgProcessingFailed, http.StatusInternalServerError, err)
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

// NewParseError creates a parse error for invalid JSON.
func NewParseError(err error) *AppError {
	return NewAppErrorWithErr(ErrorCodeParse, MsgInvalidJSON, http.StatusBadRequest, err)
}

// NewTransportError creates a transport error. The cause is kept for logging only.
func NewTransportError(err error) *AppError {
	return NewAppErrorWithErr(ErrorCodeTransport, MsgConversionFailed, http.StatusBadGateway, err)
}

// NewFilesystemError creates a filesystem error.
func NewFilesystemError(message string, err error) *AppError {
	return NewAppErrorWithErr(ErrorCodeFilesystem, message, http.StatusInternalServerError, err)
}

// NewPayloadTooLargeError creates an error for request bodies over limit bytes.
func NewPayloadTooLargeError(limit int64) *AppError {
	return NewAppError(ErrorCodePayloadTooLarge, "Request body too large", http.StatusRequestEntityTooLarge).
		WithDetails(fmt.Sprintf("limit is %d bytes", limit))
}

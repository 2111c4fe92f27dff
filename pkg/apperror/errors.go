package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// Kind classifies an AppError for logging and tests. It is not sent to clients.
type Kind string

const (
	KindValidation           Kind = "VALIDATION"
	KindAlreadyExists        Kind = "ALREADY_EXISTS"
	KindNotFound             Kind = "NOT_FOUND"
	KindConfigurationMissing Kind = "CONFIGURATION_MISSING"
	KindSignature            Kind = "SIGNATURE"
	KindTransport            Kind = "TRANSPORT"
	KindParse                Kind = "PARSE"
	KindGatewayHTTP          Kind = "GATEWAY_HTTP"
	KindGatewayBusiness      Kind = "GATEWAY_BUSINESS"
	KindSchemaViolation      Kind = "SCHEMA_VIOLATION"
	KindUnexpectedCode       Kind = "UNEXPECTED_CODE"
	KindTransactionFailed    Kind = "TRANSACTION_FAILED"
	KindUnauthorized         Kind = "UNAUTHORIZED"
	KindRateLimited          Kind = "RATE_LIMITED"
	KindInternal             Kind = "INTERNAL"
)

// Detail is one entry of the "errors" list, shared with the gateway wire format.
type Detail struct {
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// AppError is a structured error that maps to an error envelope.
type AppError struct {
	Kind       Kind        `json:"-"`
	Code       string      `json:"error_code"`
	Message    string      `json:"message"`
	Errors     []Detail    `json:"errors,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	HTTPStatus int         `json:"-"`
	Err        error       `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s/%s] %s: %v", e.Kind, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s/%s] %s", e.Kind, e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Details returns the errors list, synthesizing a single entry from
// Code and Message when none was supplied.
func (e *AppError) Details() []Detail {
	if len(e.Errors) > 0 {
		return e.Errors
	}
	return []Detail{{ErrorCode: e.Code, ErrorMessage: e.Message}}
}

// New creates a new AppError.
func New(kind Kind, code string, message string, httpStatus int) *AppError {
	return &AppError{
		Kind:       kind,
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(kind Kind, code string, message string, httpStatus int, err error) *AppError {
	e := New(kind, code, message, httpStatus)
	e.Err = err
	return e
}

const (
	codeClient = "400"
	codeServer = "500"
)

// ---- Local input ----

// Validation returns a 400 validation error with a single message.
func Validation(message string) *AppError {
	return New(KindValidation, codeClient, message, http.StatusBadRequest)
}

// ValidationFields returns a 400 validation error carrying one entry per failed field.
func ValidationFields(details []Detail) *AppError {
	e := New(KindValidation, codeClient, "Validation failed", http.StatusBadRequest)
	e.Errors = details
	return e
}

func ErrAlreadyExists() *AppError {
	return New(KindAlreadyExists, codeClient,
		"NPS payment configuration already exists. Only one record is allowed.", http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New(KindNotFound, "404", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Local server faults ----

func ErrConfigurationMissing() *AppError {
	return New(KindConfigurationMissing, codeServer, "NPS payment configuration not found", http.StatusInternalServerError)
}

func ErrSignature(err error) *AppError {
	return Wrap(KindSignature, codeServer, "Error generating signature", http.StatusInternalServerError, err)
}

func ErrDatabaseError(err error) *AppError {
	return Wrap(KindInternal, codeServer, "Internal database error", http.StatusInternalServerError, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap(KindInternal, codeServer, "Encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an unexpected internal error.
func InternalError(err error) *AppError {
	return Wrap(KindInternal, codeServer, "Internal server error", http.StatusInternalServerError, err)
}

// ---- Gateway failures ----

func ErrTransport(err error) *AppError {
	return Wrap(KindTransport, codeServer, "Unable to connect to payment gateway", http.StatusInternalServerError, err)
}

func ErrParse(message string) *AppError {
	return New(KindParse, codeServer, message, http.StatusInternalServerError)
}

// ErrGatewayHTTP reports a non-2xx HTTP reply whose body is not trusted to be JSON.
func ErrGatewayHTTP(status int, body string) *AppError {
	return New(KindGatewayHTTP, strconv.Itoa(status),
		fmt.Sprintf("HTTP %d: %s", status, body), http.StatusInternalServerError)
}

// ErrGatewayRejected reports a well-formed gateway reply with code "1".
func ErrGatewayRejected(message string, details []Detail) *AppError {
	e := New(KindGatewayBusiness, codeClient, message, http.StatusBadRequest)
	e.Errors = details
	return e
}

func ErrSchemaViolation(details []Detail) *AppError {
	e := New(KindSchemaViolation, codeServer, "Invalid response data from payment gateway", http.StatusInternalServerError)
	e.Errors = details
	return e
}

func ErrUnexpectedCode(code string) *AppError {
	return New(KindUnexpectedCode, codeServer, fmt.Sprintf("Unexpected response code: %s", code), http.StatusInternalServerError)
}

// ErrTransactionFailed reports a completed status check whose transaction did not succeed.
func ErrTransactionFailed(reason string, data interface{}) *AppError {
	e := New(KindTransactionFailed, codeClient, fmt.Sprintf("Payment failed: %s", reason), http.StatusBadRequest)
	e.Data = data
	return e
}

// ---- Admin access ----

func ErrInvalidCredentials() *AppError {
	return New(KindUnauthorized, "401", "Invalid credentials", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New(KindUnauthorized, "401", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrPayloadTooLarge() *AppError {
	return New(KindValidation, "413", "Request body too large", http.StatusRequestEntityTooLarge)
}

func ErrRateLimitExceeded() *AppError {
	return New(KindRateLimited, "429", "Rate limit exceeded", http.StatusTooManyRequests)
}

// KindOf returns the Kind of err if it is an *AppError, else KindInternal.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// As extracts an *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

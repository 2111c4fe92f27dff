package response

import (
	"errors"
	"net/http"

	"nps-merchant-gateway/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Envelope codes.
const (
	CodeSuccess = "0"
	CodeError   = "1"
	CodePending = "2"
)

// HeaderRequestID is echoed on every response.
const HeaderRequestID = "X-Request-ID"

// SuccessResponse is the envelope for code "0" and "2" replies.
type SuccessResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// ErrorResponse is the envelope for code "1" replies.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	ErrorCode string            `json:"error_code"`
	Errors    []apperror.Detail `json:"errors,omitempty"`
	Data      interface{}       `json:"data,omitempty"`
}

// OK sends a 200 success envelope.
func OK(c *gin.Context, message string, data interface{}) {
	write(c, http.StatusOK, SuccessResponse{Code: CodeSuccess, Message: message, Data: data})
}

// Created sends a 201 success envelope.
func Created(c *gin.Context, message string, data interface{}) {
	write(c, http.StatusCreated, SuccessResponse{Code: CodeSuccess, Message: message, Data: data})
}

// Pending sends a 200 envelope with code "2". A nil data becomes an empty object.
func Pending(c *gin.Context, message string, data interface{}) {
	if data == nil {
		data = gin.H{}
	}
	write(c, http.StatusOK, SuccessResponse{Code: CodePending, Message: message, Data: data})
}

// Error sends an error envelope. It checks if err is an *apperror.AppError
// and maps it accordingly, otherwise returns 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		write(c, appErr.HTTPStatus, ErrorResponse{
			Code:      CodeError,
			Message:   appErr.Message,
			ErrorCode: appErr.Code,
			Errors:    appErr.Details(),
			Data:      appErr.Data,
		})
		return
	}

	write(c, http.StatusInternalServerError, ErrorResponse{
		Code:      CodeError,
		Message:   "Internal server error",
		ErrorCode: "500",
		Errors:    []apperror.Detail{{ErrorCode: "500", ErrorMessage: "Internal server error"}},
	})
}

func write(c *gin.Context, status int, body interface{}) {
	c.Header(HeaderRequestID, RequestID(c))
	c.JSON(status, body)
}

// RequestID retrieves the request ID from context, or generates and stores one.
func RequestID(c *gin.Context) string {
	if id, exists := c.Get("request_id"); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	id := uuid.New().String()
	c.Set("request_id", id)
	return id
}

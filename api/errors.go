package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/ai-support-router/agent/contract"
)

const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeInvalidJSON   = "INVALID_JSON"
	CodeNotFound      = "NOT_FOUND"
	CodeRateLimited   = "RATE_LIMIT_EXCEEDED"
	CodeAIUnavailable = "AI_UNAVAILABLE"
	CodeInternal      = "INTERNAL_ERROR"
)

var errInvalidJSON = errors.New("invalid json in request body")

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// requestError carries a message that is safe to show to the caller.
type requestError struct {
	status  int
	code    string
	message string
	cause   error
}

func (e *requestError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *requestError) Unwrap() error {
	return e.cause
}

func validationError(message string) error {
	return &requestError{status: http.StatusBadRequest, code: CodeValidation, message: message}
}

// bindError turns a gin binding failure into a request error.
func bindError(err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF), errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return &requestError{status: http.StatusBadRequest, code: CodeInvalidJSON, message: "Invalid JSON in request body", cause: errInvalidJSON}
	case errors.As(err, &typeErr):
		return validationError(fmt.Sprintf("Field %s has the wrong type", typeErr.Field))
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		return validationError(strings.Join(msgs, "; "))
	}
	return validationError(err.Error())
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "ConversationID":
		return "Invalid conversation ID"
	case "UserID":
		return "User ID required"
	case "Message":
		if fe.Tag() == "max" {
			return "Message too long"
		}
		return "Message cannot be empty"
	}
	return fmt.Sprintf("Field %s failed %s validation", fe.Field(), fe.Tag())
}

// classify maps an error to the status, code and public message of the
// response.
func classify(err error) (int, string, string) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return reqErr.status, reqErr.code, reqErr.message
	case errors.Is(err, contractx.ErrValidation):
		return http.StatusBadRequest, CodeValidation, strings.TrimPrefix(err.Error(), contractx.ErrValidation.Error()+": ")
	case errors.Is(err, contractx.ErrConversationNotFound):
		return http.StatusNotFound, CodeNotFound, "Conversation not found"
	case errors.Is(err, contractx.ErrModelInvoke):
		return http.StatusServiceUnavailable, CodeAIUnavailable, "AI service temporarily unavailable"
	default:
		return http.StatusInternalServerError, CodeInternal, "Internal server error"
	}
}

// ErrorHandler renders the last error a handler attached to the context.
func ErrorHandler(development bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, code, message := classify(err)

		ev := log.Warn()
		if status >= http.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Msg("request failed")

		body := errorBody{Success: false, Error: message, Code: code}
		if development && status == http.StatusInternalServerError {
			body.Detail = err.Error()
		}
		c.JSON(status, body)
	}
}

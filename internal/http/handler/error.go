package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"creditdoc/internal/http/middleware"
	"creditdoc/internal/logger"
	"creditdoc/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func requestIDFromCtx(c *fiber.Ctx) string {
	if id, ok := c.Locals(middleware.RequestIDLocalKey).(string); ok {
		return id
	}
	return logger.RequestID(c.UserContext())
}

// writeError writes the {request_id, error{code, message}} envelope. message must be safe to show.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

type errorMapping struct {
	target error
	status int
	code   string
}

// serviceErrors is checked in order. Messages of matched errors are written verbatim since they tell
// the caller or the template author what to fix.
var serviceErrors = []errorMapping{
	{service.ErrInvalidInput, fiber.StatusBadRequest, "INVALID_INPUT"},
	{service.ErrInvalidFileName, fiber.StatusBadRequest, "INVALID_FILE_NAME"},
	{service.ErrTemplateMissing, fiber.StatusNotFound, "TEMPLATE_MISSING"},
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{service.ErrTemplateCorrupt, fiber.StatusUnprocessableEntity, "TEMPLATE_CORRUPT"},
	{service.ErrTemplateSyntax, fiber.StatusUnprocessableEntity, "TEMPLATE_SYNTAX"},
	{service.ErrUnsupportedExport, fiber.StatusNotImplemented, "UNSUPPORTED_EXPORT"},
	{service.ErrMailNotConfigured, fiber.StatusServiceUnavailable, "MAIL_NOT_CONFIGURED"},
	{service.ErrDelivery, fiber.StatusBadGateway, "DELIVERY_FAILED"},
}

// writeServiceError translates a service error. Unclassified errors are logged and not leaked.
func writeServiceError(c *fiber.Ctx, err error) error {
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			return writeError(c, m.status, m.code, err.Error())
		}
	}
	logInternal(c, err)
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// logInternal reports through the global logger, which main replaces with the service logger.
func logInternal(c *fiber.Ctx, err error) {
	logger.FromContext(c.UserContext(), zap.L()).Error("unhandled error",
		zap.String("event", "http_internal_error"),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			if status >= fiber.StatusInternalServerError {
				logInternal(c, err)
			}
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}

package common

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/amirasaad/tem/pkg/conversion"
	conversionSvc "github.com/amirasaad/tem/pkg/service/conversion"
)

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`         // HTTP status code
	Message string `json:"message"`        // Human-readable explanation
	Data    any    `json:"data,omitempty"` // Response data
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`     // A URI reference that identifies the problem type
	Title    string `json:"title"`              // Short, human-readable summary
	Status   int    `json:"status"`             // HTTP status code
	Detail   string `json:"detail,omitempty"`   // Human-readable explanation
	Instance string `json:"instance,omitempty"` // URI reference that identifies the specific occurrence
	Errors   any    `json:"errors,omitempty"`   // Optional: additional error details
}

var validate = validator.New()

// ErrorResponseJSON returns a response following RFC 9457 Problem Details
func ErrorResponseJSON(
	c *fiber.Ctx,
	status int,
	title string,
	detail any,
) error {
	pd := ProblemDetails{
		Type:   "about:blank",
		Title:  title,
		Status: status,
	}
	if detail != nil {
		if s, ok := detail.(string); ok {
			pd.Detail = s
		} else {
			pd.Errors = detail
		}
	}
	pd.Instance = c.OriginalURL()

	if err := c.Status(status).JSON(pd); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/problem+json")
	return nil
}

// ProblemDetailsJSON renders err as a problem response. The status is taken
// from ErrorToStatusCode unless one is given.
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error, status ...int) error {
	code := ErrorToStatusCode(err)
	if len(status) > 0 {
		code = status[0]
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	detail := err.Error()
	var rerr *conversion.ResolveError
	if errors.As(err, &rerr) {
		detail = rerr.Message()
	}
	return ErrorResponseJSON(c, code, title, detail)
}

// SuccessResponseJSON writes a Response with status.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// ErrorToStatusCode maps domain errors to appropriate HTTP status codes.
func ErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, conversion.ErrInvalidDate),
		errors.Is(err, conversion.ErrInvalidCurrency),
		errors.Is(err, conversion.ErrNotApplicable),
		errors.Is(err, conversionSvc.ErrInvalidAmount):
		return fiber.StatusBadRequest
	case errors.Is(err, conversion.ErrFutureDateRejected),
		errors.Is(err, conversion.ErrDateTooOld):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, conversion.ErrNoRateFound):
		return fiber.StatusNotFound
	case errors.Is(err, conversion.ErrProviderNotConfigured),
		errors.Is(err, conversionSvc.ErrHistoryUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, conversionSvc.ErrResolveTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

// BindAndValidate parses the request body and validates it using go-playground/validator.
// Returns a pointer to the struct (populated), or writes an error response and returns nil.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		_ = ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		_ = ErrorResponseJSON(c, fiber.StatusBadRequest, "Validation failed", err.Error())
		return nil, err
	}
	return &input, nil
}

package utils

import (
	"errors"
	"fmt"

	"canteen_manager/constants"
	"canteen_manager/logger"

	"github.com/gofiber/fiber/v2"
)

type ErrorKind string

const (
	ValidationError      ErrorKind = "ValidationError"
	Unauthorized         ErrorKind = "Unauthorized"
	Forbidden            ErrorKind = "Forbidden"
	NotFound             ErrorKind = "NotFound"
	Conflict             ErrorKind = "Conflict"
	InvalidTransition    ErrorKind = "InvalidTransition"
	UpstreamGatewayError ErrorKind = "UpstreamGatewayError"
	PaymentNotConfirmed  ErrorKind = "PaymentNotConfirmed"
	InternalError        ErrorKind = "InternalError"
)

var kindStatus = map[ErrorKind]int{
	ValidationError:      fiber.StatusBadRequest,
	Unauthorized:         fiber.StatusUnauthorized,
	Forbidden:            fiber.StatusForbidden,
	NotFound:             fiber.StatusNotFound,
	Conflict:             fiber.StatusConflict,
	InvalidTransition:    fiber.StatusConflict,
	UpstreamGatewayError: fiber.StatusBadGateway,
	PaymentNotConfirmed:  fiber.StatusBadRequest,
	InternalError:        fiber.StatusInternalServerError,
}

// AppError carries a client-safe message and the underlying cause.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) Status() int {
	if s, ok := kindStatus[e.Kind]; ok {
		return s
	}
	return fiber.StatusInternalServerError
}

func NewError(kind ErrorKind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, InternalError when err is not an AppError.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return InternalError
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// HandleError writes err as a JSON error body. Causes are logged, never sent.
func HandleError(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = NewError(InternalError, constants.ERROR_INTERNAL_ERROR, err)
	}

	entry := logger.WithRequest(c).WithField("kind", appErr.Kind)
	if appErr.Err != nil {
		entry = entry.WithError(appErr.Err)
	}
	if appErr.Status() >= fiber.StatusInternalServerError {
		entry.Error(appErr.Message)
	} else {
		entry.Debug(appErr.Message)
	}

	return c.Status(appErr.Status()).JSON(fiber.Map{
		"message": appErr.Message,
		"error":   string(appErr.Kind),
	})
}

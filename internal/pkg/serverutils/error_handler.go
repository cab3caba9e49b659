package serverutils

import (
	"errors"

	"safebites-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is installed as fiber.Config.ErrorHandler. Handlers return
// typed errors and this maps them onto the response envelope.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
	}

	code := apperror.StatusOf(err)
	return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
}

// ErrorHandlerMiddleware turns errors escaping the chain into enveloped responses
// so that middleware-level failures look the same as handler failures.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if err := ctx.Next(); err != nil {
			return ErrorHandler(ctx, err)
		}
		return nil
	}
}

package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"golden-notes-be/internal/apperr"
)

// ErrorHandlerMiddleware maps service errors to HTTP responses. The message
// in the body is the one the client surfaces to the user, so the wording
// matches what the UI flashes on redirect.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		switch {
		case errors.Is(err, apperr.ErrUnauthenticated):
			return ctx.Status(fiber.StatusUnauthorized).
				JSON(ErrorResponse(fiber.StatusUnauthorized, "You need to be logged in to access this page."))
		case errors.Is(err, apperr.ErrForbidden):
			return ctx.Status(fiber.StatusForbidden).
				JSON(ErrorResponse(fiber.StatusForbidden, "You don't have permission to access this resource."))
		case errors.Is(err, apperr.ErrNotFound):
			return ctx.Status(fiber.StatusNotFound).
				JSON(ErrorResponse(fiber.StatusNotFound, "The resource you are looking for does not exist."))
		case errors.Is(err, apperr.ErrPersistence):
			return ctx.Status(fiber.StatusBadGateway).
				JSON(ErrorResponse(fiber.StatusBadGateway, "Your changes could not be saved, they are kept locally."))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		return ctx.Status(fiber.StatusBadRequest).
			JSON(ErrorResponse(fiber.StatusBadRequest, err.Error()))
	}
}

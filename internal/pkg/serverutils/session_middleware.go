package serverutils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"golden-notes-be/internal/config"
)

const UserIDLocal = "user_id"

// NewSessionMiddleware resolves the caller's identity from the session
// cookie (or an Authorization bearer header as a fallback for non-browser
// clients). Missing, invalid and expired credentials all fail with 401
// before any handler runs.
func NewSessionMiddleware(cfg config.AuthConfig) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := ctx.Cookies(cfg.SessionCookieName)

		if tokenStr == "" {
			authHeader := ctx.Get("Authorization")
			if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
				tokenStr = authHeader[7:]
			}
		}

		if tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).
				JSON(ErrorResponse(fiber.StatusUnauthorized, "You need to be logged in to access this page."))
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.ErrUnauthorized
			}
			return []byte(cfg.JWTSecret), nil
		})

		if err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).
				JSON(ErrorResponse(fiber.StatusUnauthorized, "Your session has expired, please log in again."))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).
				JSON(ErrorResponse(fiber.StatusUnauthorized, "Your session has expired, please log in again."))
		}

		// The claim has to name a real user id. A token that verifies but
		// carries garbage here must not fall through to handlers as the
		// zero UUID.
		userIDStr, ok := claims[UserIDLocal].(string)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).
				JSON(ErrorResponse(fiber.StatusUnauthorized, "Your session has expired, please log in again."))
		}
		if _, err := uuid.Parse(userIDStr); err != nil {
			return ctx.Status(fiber.StatusUnauthorized).
				JSON(ErrorResponse(fiber.StatusUnauthorized, "Your session has expired, please log in again."))
		}

		ctx.Locals(UserIDLocal, userIDStr)
		return ctx.Next()
	}
}

package handler

import (
	"golden-notes-be/internal/config"
	"golden-notes-be/internal/pkg/logger"
	internalWS "golden-notes-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SyncHandler upgrades authenticated clients to the note change push stream.
type SyncHandler struct {
	hub        *internalWS.Hub
	authConfig config.AuthConfig
	logger     logger.ILogger
}

func NewSyncHandler(hub *internalWS.Hub, authConfig config.AuthConfig, log logger.ILogger) *SyncHandler {
	return &SyncHandler{
		hub:        hub,
		authConfig: authConfig,
		logger:     log,
	}
}

func (h *SyncHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}

// ServeWs handles websocket requests from the peer.
func (h *SyncHandler) ServeWs(c *fiber.Ctx) error {
	// Browsers send the session cookie automatically; tooling can use a
	// query param or bearer header instead.
	tokenStr := c.Cookies(h.authConfig.SessionCookieName)

	if tokenStr == "" {
		tokenStr = c.Query("token")
	}

	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}

	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing session"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(h.authConfig.JWTSecret), nil
	})

	if err != nil || !token.Valid {
		h.logger.Warn("SyncHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing user_id"})
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID format in token"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("SyncHandler", "Starting WebSocket session", map[string]interface{}{"user_id": userID})
			internalWS.ServeWs(h.hub, conn, userID)
			h.logger.Info("SyncHandler", "WebSocket session ended", map[string]interface{}{"user_id": userID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

package handler

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/openhack-labs/openhack-api/internal/middleware"
	"github.com/openhack-labs/openhack-api/internal/service"
)

// RealtimeHandler wires the websocket upgrade for live board refreshes.
type RealtimeHandler struct {
	service service.RealtimeService
	logger  zerolog.Logger
}

// NewRealtimeHandler creates a realtime handler instance.
func NewRealtimeHandler(service service.RealtimeService, logger zerolog.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		service: service,
		logger:  logger.With().Str("component", "realtime_handler").Logger(),
	}
}

// Register binds the websocket route under the provided router group.
func (h *RealtimeHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			ctx := c.UserContext()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
			c.Locals("request_ctx", ctx)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/ws", websocket.New(h.handleConnection))
}

func (h *RealtimeHandler) handleConnection(conn *websocket.Conn) {
	room := strings.TrimSpace(conn.Query("room"))
	if room == "" {
		room = service.LeaderboardRoom
	}

	baseCtx, _ := conn.Locals("request_ctx").(context.Context)

	opts := service.RealtimeConnectionOptions{
		Room:    room,
		Context: baseCtx,
	}

	h.logger.Info().Str("room", room).Msg("realtime websocket connected")
	h.service.ServeConnection(conn, opts)
	h.logger.Info().Str("room", room).Msg("realtime websocket disconnected")
}

package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/openhack-labs/openhack-api/internal/service"
	"github.com/openhack-labs/openhack-api/internal/utils"
)

// LeaderboardHandler wires the ranking routes.
type LeaderboardHandler struct {
	service service.LeaderboardService
	logger  zerolog.Logger
}

// NewLeaderboardHandler constructs the handler.
func NewLeaderboardHandler(service service.LeaderboardService, logger zerolog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		service: service,
		logger:  logger.With().Str("component", "leaderboard_handler").Logger(),
	}
}

// Register attaches the authenticated team board.
func (h *LeaderboardHandler) Register(router fiber.Router) {
	router.Get("", h.teamBoard)
}

// RegisterPublic attaches the unauthenticated combined board.
func (h *LeaderboardHandler) RegisterPublic(router fiber.Router) {
	router.Get("/leaderboard", h.publicBoard)
}

func (h *LeaderboardHandler) teamBoard(c *fiber.Ctx) error {
	entries, err := h.service.TeamBoard(c.Context())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendList(c, "leaderboard retrieved", entries, len(entries))
}

func (h *LeaderboardHandler) publicBoard(c *fiber.Ctx) error {
	board, err := h.service.PublicBoard(c.Context())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "public leaderboard retrieved", board)
}

func (h *LeaderboardHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}

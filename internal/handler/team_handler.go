package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/openhack-labs/openhack-api/internal/dto"
	"github.com/openhack-labs/openhack-api/internal/service"
	"github.com/openhack-labs/openhack-api/internal/utils"
)

// TeamHandler wires team management routes.
type TeamHandler struct {
	service service.TeamService
	logger  zerolog.Logger
}

// NewTeamHandler constructs the handler.
func NewTeamHandler(service service.TeamService, logger zerolog.Logger) *TeamHandler {
	return &TeamHandler{
		service: service,
		logger:  logger.With().Str("component", "team_handler").Logger(),
	}
}

// Register attaches endpoints available to any authenticated account.
func (h *TeamHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/me", h.me)
	router.Get("/:id", h.get)
}

// RegisterAdmin attaches management endpoints.
func (h *TeamHandler) RegisterAdmin(router fiber.Router) {
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Put("/:id/jury-score", h.setJuryScore)
}

func (h *TeamHandler) list(c *fiber.Ctx) error {
	teams, err := h.service.List(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendList(c, "teams retrieved", teams, len(teams))
}

func (h *TeamHandler) me(c *fiber.Ctx) error {
	teamID := teamIDFromContext(c)
	if teamID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	team, err := h.service.Me(c.Context(), teamID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "team retrieved", team)
}

func (h *TeamHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	team, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "team retrieved", team)
}

func (h *TeamHandler) create(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	team, err := h.service.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "team created", team)
}

func (h *TeamHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.TeamUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	team, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "team updated", team)
}

func (h *TeamHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	requestLogger(h.logger, c).Info().Uint("team_id", id).Msg("team deleted")

	return utils.SendSuccess(c, "team deleted", fiber.Map{"id": id})
}

func (h *TeamHandler) setJuryScore(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.JuryScoreRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	team, err := h.service.SetJuryScore(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "jury score recorded", team)
}

func (h *TeamHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrTeamNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "team not found")
	case errors.Is(err, service.ErrTeamNameTaken):
		return utils.SendError(c, fiber.StatusConflict, "team name already taken")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

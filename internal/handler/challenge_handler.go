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

// ChallengeHandler wires challenge catalog routes.
type ChallengeHandler struct {
	service service.ChallengeService
	logger  zerolog.Logger
}

// NewChallengeHandler constructs the handler.
func NewChallengeHandler(service service.ChallengeService, logger zerolog.Logger) *ChallengeHandler {
	return &ChallengeHandler{
		service: service,
		logger:  logger.With().Str("component", "challenge_handler").Logger(),
	}
}

// Register attaches read endpoints for authenticated accounts.
func (h *ChallengeHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/levels", h.levels)
	router.Get("/:id", h.get)
}

// RegisterAdmin attaches catalog management endpoints.
func (h *ChallengeHandler) RegisterAdmin(router fiber.Router) {
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *ChallengeHandler) list(c *fiber.Ctx) error {
	challenges, err := h.service.List(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendList(c, "challenges retrieved", challenges, len(challenges))
}

func (h *ChallengeHandler) levels(c *fiber.Ctx) error {
	levels, err := h.service.Levels(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "challenge levels retrieved", levels)
}

func (h *ChallengeHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	challenge, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "challenge retrieved", challenge)
}

func (h *ChallengeHandler) create(c *fiber.Ctx) error {
	var payload dto.ChallengeCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	challenge, err := h.service.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "challenge created", challenge)
}

func (h *ChallengeHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ChallengeUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	challenge, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "challenge updated", challenge)
}

func (h *ChallengeHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "challenge deactivated", fiber.Map{"id": id})
}

func (h *ChallengeHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrChallengeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "challenge not found")
	case errors.Is(err, service.ErrUnknownDependency):
		return utils.SendError(c, fiber.StatusBadRequest, "dependency references unknown challenge")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

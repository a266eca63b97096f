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

// AuthHandler wires authentication routes.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches the public auth endpoints. Registration itself stays
// admin-only and is bound separately.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/login", h.login)
}

// RegisterProtected attaches endpoints that require a valid token.
func (h *AuthHandler) RegisterProtected(router fiber.Router) {
	router.Get("/profile", h.profile)
}

// RegisterAdmin attaches the account creation endpoint.
func (h *AuthHandler) RegisterAdmin(router fiber.Router) {
	router.Post("/register", h.register)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Login(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	requestLogger(h.logger, c).Info().Str("team", response.Team.Name).Msg("team logged in")

	return utils.SendSuccess(c, "login successful", response)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Register(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "team registered", response)
}

func (h *AuthHandler) profile(c *fiber.Ctx) error {
	teamID := teamIDFromContext(c)
	if teamID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	team, err := h.service.Profile(c.Context(), teamID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "profile retrieved", team)
}

func (h *AuthHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return utils.SendError(c, fiber.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrTeamInactive):
		return utils.SendError(c, fiber.StatusForbidden, "team is deactivated")
	case errors.Is(err, service.ErrTeamNameTaken):
		return utils.SendError(c, fiber.StatusConflict, "team name already taken")
	case errors.Is(err, service.ErrTeamNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "team not found")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

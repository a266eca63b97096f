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

// SubmissionHandler wires submission routes.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches team-facing submission endpoints.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("/mine", h.listMine)
	router.Delete("/:id", h.cancel)
}

// RegisterReview attaches review endpoints for admins and mentors.
func (h *SubmissionHandler) RegisterReview(router fiber.Router) {
	router.Get("", h.list)
	router.Put("/:id/validate", h.validate)
}

// RegisterPublic attaches the per-challenge approved board.
func (h *SubmissionHandler) RegisterPublic(router fiber.Router) {
	router.Get("/challenges/:id/board", h.challengeBoard)
}

func (h *SubmissionHandler) create(c *fiber.Ctx) error {
	teamID := teamIDFromContext(c)
	if teamID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.SubmissionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Create(c.Context(), teamID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	requestLogger(h.logger, c).Info().
		Uint("team_id", teamID).
		Uint("challenge_id", payload.ChallengeID).
		Msg("submission created")

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission filed", submission)
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	submissions, err := h.service.ListAll(c.Context(), c.Query("status"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendList(c, "submissions retrieved", submissions, len(submissions))
}

func (h *SubmissionHandler) listMine(c *fiber.Ctx) error {
	teamID := teamIDFromContext(c)
	if teamID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	submissions, err := h.service.ListForTeam(c.Context(), teamID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendList(c, "submissions retrieved", submissions, len(submissions))
}

func (h *SubmissionHandler) validate(c *fiber.Ctx) error {
	reviewerID := teamIDFromContext(c)
	if reviewerID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubmissionReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Validate(c.Context(), reviewerID, id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	requestLogger(h.logger, c).Info().
		Uint("submission_id", id).
		Str("decision", payload.Status).
		Msg("submission validated")

	return utils.SendSuccess(c, "submission reviewed", submission)
}

func (h *SubmissionHandler) cancel(c *fiber.Ctx) error {
	teamID := teamIDFromContext(c)
	if teamID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Cancel(c.Context(), teamID, id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission cancelled", fiber.Map{"id": id})
}

func (h *SubmissionHandler) challengeBoard(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	board, err := h.service.ChallengeBoard(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "challenge board retrieved", board)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrChallengeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "challenge not found")
	case errors.Is(err, service.ErrTeamNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "team not found")
	case errors.Is(err, service.ErrSubmissionConflict):
		return utils.SendError(c, fiber.StatusConflict, "an active submission for this challenge already exists")
	case errors.Is(err, service.ErrChallengeLocked):
		return utils.SendError(c, fiber.StatusForbidden, "challenge is locked by unmet dependencies")
	case errors.Is(err, service.ErrAlreadyReviewed):
		return utils.SendError(c, fiber.StatusConflict, "submission has already been reviewed")
	case errors.Is(err, service.ErrNotReviewer):
		return utils.SendError(c, fiber.StatusForbidden, "reviewing requires an admin or mentor account")
	case errors.Is(err, service.ErrNotOwner):
		return utils.SendError(c, fiber.StatusForbidden, "submission belongs to another team")
	case errors.Is(err, service.ErrScoreRequired):
		return utils.SendError(c, fiber.StatusBadRequest, "a score is required to approve an AI challenge submission")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

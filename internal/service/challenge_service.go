package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/openhack-labs/openhack-api/internal/dto"
	"github.com/openhack-labs/openhack-api/internal/models"
	"github.com/openhack-labs/openhack-api/internal/repository"
)

// ErrChallengeNotFound indicates a challenge could not be found.
var ErrChallengeNotFound = errors.New("challenge not found")

// ErrUnknownDependency indicates a dependency reference to a missing challenge.
var ErrUnknownDependency = errors.New("dependency references unknown challenge")

// ChallengeService manages the challenge catalog.
type ChallengeService interface {
	List(ctx context.Context) ([]dto.ChallengeResponse, error)
	Get(ctx context.Context, id uint) (dto.ChallengeResponse, error)
	Create(ctx context.Context, payload dto.ChallengeCreateRequest) (dto.ChallengeResponse, error)
	Update(ctx context.Context, id uint, payload dto.ChallengeUpdateRequest) (dto.ChallengeResponse, error)
	Delete(ctx context.Context, id uint) error
	Levels(ctx context.Context) (dto.ChallengeLevelsResponse, error)
}

type challengeService struct {
	challenges repository.ChallengeRepository
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
}

// NewChallengeService constructs a ChallengeService instance.
func NewChallengeService(challenges repository.ChallengeRepository, validate *validator.Validate, logger zerolog.Logger) ChallengeService {
	return &challengeService{
		challenges: challenges,
		validator:  validate,
		sanitizer:  bluemonday.UGCPolicy(),
		logger:     logger.With().Str("component", "challenge_service").Logger(),
	}
}

func (s *challengeService) List(ctx context.Context) ([]dto.ChallengeResponse, error) {
	challenges, err := s.challenges.List(ctx, true)
	if err != nil {
		return nil, err
	}

	return dto.NewChallengeResponseSlice(challenges), nil
}

func (s *challengeService) Get(ctx context.Context, id uint) (dto.ChallengeResponse, error) {
	challenge, err := s.challenges.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ChallengeResponse{}, ErrChallengeNotFound
		}
		return dto.ChallengeResponse{}, err
	}

	return dto.NewChallengeResponse(challenge), nil
}

func (s *challengeService) Create(ctx context.Context, payload dto.ChallengeCreateRequest) (dto.ChallengeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ChallengeResponse{}, err
	}

	if err := s.checkDependencies(ctx, payload.Dependencies); err != nil {
		return dto.ChallengeResponse{}, err
	}

	challenge := models.Challenge{
		Title:         payload.Title,
		Description:   s.sanitizer.Sanitize(payload.Description),
		Tag:           payload.Tag,
		InitialPoints: payload.InitialPoints,
		BonusPoints:   payload.BonusPoints,
		BonusLimit:    payload.BonusLimit,
		Resources:     payload.Resources,
		Dependencies:  payload.Dependencies,
		IsAIChallenge: payload.IsAIChallenge,
		IsActive:      true,
	}
	challenge.RefreshPoints()

	if err := s.challenges.Create(ctx, &challenge); err != nil {
		return dto.ChallengeResponse{}, err
	}

	s.logger.Info().Uint("challenge_id", challenge.ID).Str("title", challenge.Title).Msg("challenge created")

	return dto.NewChallengeResponse(challenge), nil
}

func (s *challengeService) Update(ctx context.Context, id uint, payload dto.ChallengeUpdateRequest) (dto.ChallengeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ChallengeResponse{}, err
	}

	challenge, err := s.challenges.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ChallengeResponse{}, ErrChallengeNotFound
		}
		return dto.ChallengeResponse{}, err
	}

	if payload.Title != nil {
		challenge.Title = *payload.Title
	}
	if payload.Description != nil {
		challenge.Description = s.sanitizer.Sanitize(*payload.Description)
	}
	if payload.Tag != nil {
		challenge.Tag = *payload.Tag
	}
	if payload.InitialPoints != nil {
		challenge.InitialPoints = *payload.InitialPoints
	}
	if payload.BonusPoints != nil {
		challenge.BonusPoints = *payload.BonusPoints
	}
	if payload.BonusLimit != nil {
		challenge.BonusLimit = *payload.BonusLimit
	}
	if payload.Resources != nil {
		challenge.Resources = *payload.Resources
	}
	if payload.Dependencies != nil {
		if err := s.checkDependencies(ctx, *payload.Dependencies); err != nil {
			return dto.ChallengeResponse{}, err
		}
		challenge.Dependencies = *payload.Dependencies
	}
	if payload.IsAIChallenge != nil {
		challenge.IsAIChallenge = *payload.IsAIChallenge
	}

	// The cached total follows every initial/bonus edit.
	challenge.RefreshPoints()

	if err := s.challenges.Update(ctx, &challenge); err != nil {
		return dto.ChallengeResponse{}, err
	}

	s.logger.Info().Uint("challenge_id", challenge.ID).Msg("challenge updated")

	return dto.NewChallengeResponse(challenge), nil
}

func (s *challengeService) Delete(ctx context.Context, id uint) error {
	challenge, err := s.challenges.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChallengeNotFound
		}
		return err
	}

	challenge.IsActive = false
	if err := s.challenges.Update(ctx, &challenge); err != nil {
		return err
	}

	s.logger.Info().Uint("challenge_id", challenge.ID).Msg("challenge deactivated")

	return nil
}

// Levels arranges active challenges into dependency layers: a challenge sits
// in the first level whose predecessors contain all of its dependencies.
// When no remaining challenge can be placed the graph contains a cycle; the
// leftovers are reported ungrouped rather than failing the request.
func (s *challengeService) Levels(ctx context.Context) (dto.ChallengeLevelsResponse, error) {
	challenges, err := s.challenges.List(ctx, true)
	if err != nil {
		return dto.ChallengeLevelsResponse{}, err
	}

	placed := make(map[uint]bool, len(challenges))
	remaining := make([]models.Challenge, len(challenges))
	copy(remaining, challenges)

	var levels [][]dto.ChallengeResponse
	for len(remaining) > 0 {
		var level []models.Challenge
		var next []models.Challenge

		for _, challenge := range remaining {
			if dependenciesPlaced(challenge, placed) {
				level = append(level, challenge)
			} else {
				next = append(next, challenge)
			}
		}

		if len(level) == 0 {
			s.logger.Warn().Int("ungrouped", len(next)).Msg("possible circular dependency detected while grouping challenges")
			return dto.ChallengeLevelsResponse{
				Levels:    levels,
				Ungrouped: dto.NewChallengeResponseSlice(next),
			}, nil
		}

		for _, challenge := range level {
			placed[challenge.ID] = true
		}

		levels = append(levels, dto.NewChallengeResponseSlice(level))
		remaining = next
	}

	return dto.ChallengeLevelsResponse{Levels: levels, Ungrouped: []dto.ChallengeResponse{}}, nil
}

func (s *challengeService) checkDependencies(ctx context.Context, dependencies []uint) error {
	for _, depID := range dependencies {
		if _, err := s.challenges.GetByID(ctx, depID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownDependency
			}
			return err
		}
	}
	return nil
}

func dependenciesPlaced(challenge models.Challenge, placed map[uint]bool) bool {
	for _, depID := range challenge.Dependencies {
		if !placed[depID] {
			return false
		}
	}
	return true
}

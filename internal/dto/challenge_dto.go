package dto

import (
	"time"

	"github.com/openhack-labs/openhack-api/internal/models"
)

// ChallengeCreateRequest defines a new challenge. Points is always derived
// from InitialPoints+BonusPoints, never accepted from the caller.
type ChallengeCreateRequest struct {
	Title         string   `json:"title" validate:"required,max=255"`
	Description   string   `json:"description" validate:"required"`
	Tag           string   `json:"tag" validate:"required,max=64"`
	InitialPoints int      `json:"initial_points" validate:"gte=0"`
	BonusPoints   int      `json:"bonus_points" validate:"gte=0"`
	BonusLimit    int      `json:"bonus_limit" validate:"gte=0"`
	Resources     []string `json:"resources" validate:"omitempty,dive,url"`
	Dependencies  []uint   `json:"dependencies"`
	IsAIChallenge bool     `json:"is_ai_challenge"`
}

// ChallengeUpdateRequest updates challenge fields; nil values are left as-is.
type ChallengeUpdateRequest struct {
	Title         *string   `json:"title" validate:"omitempty,max=255"`
	Description   *string   `json:"description"`
	Tag           *string   `json:"tag" validate:"omitempty,max=64"`
	InitialPoints *int      `json:"initial_points" validate:"omitempty,gte=0"`
	BonusPoints   *int      `json:"bonus_points" validate:"omitempty,gte=0"`
	BonusLimit    *int      `json:"bonus_limit" validate:"omitempty,gte=0"`
	Resources     *[]string `json:"resources" validate:"omitempty,dive,url"`
	Dependencies  *[]uint   `json:"dependencies"`
	IsAIChallenge *bool     `json:"is_ai_challenge"`
}

// ChallengeResponse is the public shape of a challenge.
type ChallengeResponse struct {
	ID                       uint      `json:"id"`
	Title                    string    `json:"title"`
	Description              string    `json:"description"`
	Tag                      string    `json:"tag"`
	Points                   int       `json:"points"`
	InitialPoints            int       `json:"initial_points"`
	BonusPoints              int       `json:"bonus_points"`
	BonusLimit               int       `json:"bonus_limit"`
	ApprovedSubmissionsCount int       `json:"approved_submissions_count"`
	Resources                []string  `json:"resources"`
	Dependencies             []uint    `json:"dependencies"`
	IsAIChallenge            bool      `json:"is_ai_challenge"`
	IsActive                 bool      `json:"is_active"`
	CreatedAt                time.Time `json:"created_at"`
}

// ChallengeLevelsResponse groups challenges into dependency layers. Ungrouped
// holds challenges left over when a dependency cycle stops the layering.
type ChallengeLevelsResponse struct {
	Levels    [][]ChallengeResponse `json:"levels"`
	Ungrouped []ChallengeResponse   `json:"ungrouped"`
}

// NewChallengeResponse converts a challenge model into its response shape.
func NewChallengeResponse(challenge models.Challenge) ChallengeResponse {
	resources := make([]string, 0, len(challenge.Resources))
	resources = append(resources, challenge.Resources...)

	dependencies := make([]uint, 0, len(challenge.Dependencies))
	dependencies = append(dependencies, challenge.Dependencies...)

	return ChallengeResponse{
		ID:                       challenge.ID,
		Title:                    challenge.Title,
		Description:              challenge.Description,
		Tag:                      challenge.Tag,
		Points:                   challenge.Points,
		InitialPoints:            challenge.InitialPoints,
		BonusPoints:              challenge.BonusPoints,
		BonusLimit:               challenge.BonusLimit,
		ApprovedSubmissionsCount: challenge.ApprovedSubmissionsCount,
		Resources:                resources,
		Dependencies:             dependencies,
		IsAIChallenge:            challenge.IsAIChallenge,
		IsActive:                 challenge.IsActive,
		CreatedAt:                challenge.CreatedAt,
	}
}

// NewChallengeResponseSlice converts a slice of challenge models.
func NewChallengeResponseSlice(challenges []models.Challenge) []ChallengeResponse {
	responses := make([]ChallengeResponse, 0, len(challenges))
	for _, challenge := range challenges {
		responses = append(responses, NewChallengeResponse(challenge))
	}
	return responses
}

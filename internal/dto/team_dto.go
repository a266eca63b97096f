package dto

import (
	"time"

	"github.com/openhack-labs/openhack-api/internal/models"
)

// TeamResponse is the public shape of a team. The password hash never leaves
// the model layer.
type TeamResponse struct {
	ID                  uint      `json:"id"`
	Name                string    `json:"name"`
	Role                string    `json:"role"`
	Members             []string  `json:"members"`
	Points              int       `json:"points"`
	JuryScore           float64   `json:"jury_score"`
	CurrentChallengeID  *uint     `json:"current_challenge_id"`
	CompletedChallenges []uint    `json:"completed_challenges"`
	IsActive            bool      `json:"is_active"`
	Rank                *int      `json:"rank,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// TeamUpdateRequest updates mutable team fields; nil values are left as-is.
type TeamUpdateRequest struct {
	Name     *string   `json:"name" validate:"omitempty,max=255"`
	Members  *[]string `json:"members" validate:"omitempty,dive,required"`
	Password *string   `json:"password" validate:"omitempty,min=6"`
}

// JuryScoreRequest sets the admin-entered jury score, raw 0-100 scale.
type JuryScoreRequest struct {
	Score *float64 `json:"score" validate:"required,gte=0,lte=100"`
}

// NewTeamResponse converts a team model into its response shape.
func NewTeamResponse(team models.Team) TeamResponse {
	members := make([]string, 0, len(team.Members))
	members = append(members, team.Members...)

	completed := make([]uint, 0, len(team.CompletedChallenges))
	completed = append(completed, team.CompletedChallenges...)

	return TeamResponse{
		ID:                  team.ID,
		Name:                team.Name,
		Role:                team.Role,
		Members:             members,
		Points:              team.Points,
		JuryScore:           team.JuryScore,
		CurrentChallengeID:  team.CurrentChallengeID,
		CompletedChallenges: completed,
		IsActive:            team.IsActive,
		CreatedAt:           team.CreatedAt,
	}
}

// NewTeamResponseSlice converts a slice of team models.
func NewTeamResponseSlice(teams []models.Team) []TeamResponse {
	responses := make([]TeamResponse, 0, len(teams))
	for _, team := range teams {
		responses = append(responses, NewTeamResponse(team))
	}
	return responses
}

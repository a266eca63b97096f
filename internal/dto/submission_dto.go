package dto

import (
	"time"

	"github.com/openhack-labs/openhack-api/internal/models"
)

// SubmissionCreateRequest files a new submission for the calling team.
type SubmissionCreateRequest struct {
	ChallengeID uint   `json:"challenge_id" validate:"required"`
	GithubLink  string `json:"github_link" validate:"required,url"`
	Description string `json:"description" validate:"required"`
}

// SubmissionReviewRequest decides a pending submission. Score is required
// when the target challenge is an AI challenge.
type SubmissionReviewRequest struct {
	Status   string   `json:"status" validate:"required,oneof=approved rejected bypassed"`
	Feedback string   `json:"feedback"`
	Score    *float64 `json:"score" validate:"omitempty,gte=0"`
}

// SubmissionResponse is the public shape of a submission.
type SubmissionResponse struct {
	ID             uint       `json:"id"`
	TeamID         uint       `json:"team_id"`
	TeamName       string     `json:"team_name,omitempty"`
	ChallengeID    uint       `json:"challenge_id"`
	ChallengeTitle string     `json:"challenge_title,omitempty"`
	GithubLink     string     `json:"github_link"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	Feedback       string     `json:"feedback,omitempty"`
	ReviewedByID   *uint      `json:"reviewed_by_id,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	Score          *float64   `json:"score,omitempty"`
	AIPoints       *int       `json:"ai_points,omitempty"`
	PointsAwarded  *int       `json:"points_awarded,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ChallengeBoardEntry is one row of the per-challenge approved list.
type ChallengeBoardEntry struct {
	Rank     int     `json:"rank,omitempty"`
	TeamName string  `json:"team_name"`
	Score    float64 `json:"score,omitempty"`
	AIPoints int     `json:"ai_points,omitempty"`
}

// ChallengeBoardResponse lists approved submissions for a single challenge;
// AI challenges include the score ranking.
type ChallengeBoardResponse struct {
	IsAIChallenge bool                  `json:"is_ai_challenge"`
	Count         int                   `json:"count"`
	Entries       []ChallengeBoardEntry `json:"entries"`
}

// NewSubmissionResponse converts a submission model into its response shape.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:             submission.ID,
		TeamID:         submission.TeamID,
		TeamName:       submission.Team.Name,
		ChallengeID:    submission.ChallengeID,
		ChallengeTitle: submission.Challenge.Title,
		GithubLink:     submission.GithubLink,
		Description:    submission.Description,
		Status:         submission.Status,
		Feedback:       submission.Feedback,
		ReviewedByID:   submission.ReviewedByID,
		ReviewedAt:     submission.ReviewedAt,
		Score:          submission.Score,
		AIPoints:       submission.AIPoints,
		PointsAwarded:  submission.PointsAwarded,
		CreatedAt:      submission.CreatedAt,
	}
}

// NewSubmissionResponseSlice converts a slice of submission models.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}
	return responses
}

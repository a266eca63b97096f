package models

import "time"

// Submission is a team's answer to a challenge: a GitHub link plus a short
// description. PointsAwarded freezes the reward decided at approval time so
// later challenge edits never change historical credit.
type Submission struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	TeamID        uint       `gorm:"not null;index" json:"team_id"`
	ChallengeID   uint       `gorm:"not null;index" json:"challenge_id"`
	GithubLink    string     `gorm:"size:512;not null" json:"github_link"`
	Description   string     `gorm:"type:text;not null" json:"description"`
	Status        string     `gorm:"size:16;not null;default:pending;index" json:"status"`
	Feedback      string     `gorm:"type:text" json:"feedback"`
	ReviewedByID  *uint      `json:"reviewed_by_id"`
	ReviewedAt    *time.Time `json:"reviewed_at"`
	Score         *float64   `json:"score"`
	AIPoints      *int       `json:"ai_points"`
	PointsAwarded *int       `json:"points_awarded"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Team          Team       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"team"`
	Challenge     Challenge  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"challenge"`
}

const (
	// SubmissionStatusPending means the submission awaits review.
	SubmissionStatusPending = "pending"
	// SubmissionStatusApproved means the submission was accepted and scored.
	SubmissionStatusApproved = "approved"
	// SubmissionStatusRejected means the submission was declined; the team may
	// submit again.
	SubmissionStatusRejected = "rejected"
	// SubmissionStatusBypassed unlocks progression without awarding points.
	SubmissionStatusBypassed = "bypassed"
)

// ActiveSubmissionStatuses are the statuses that block a new submission for
// the same team/challenge pair.
var ActiveSubmissionStatuses = []string{SubmissionStatusPending, SubmissionStatusApproved}

// IsPending reports whether the submission can still be reviewed or cancelled.
func (s Submission) IsPending() bool {
	return s.Status == SubmissionStatusPending
}

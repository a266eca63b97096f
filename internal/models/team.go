package models

import (
	"time"

	"gorm.io/datatypes"
)

// Team represents a participating team. Admin and mentor accounts share the
// same table and are distinguished by role.
type Team struct {
	ID                  uint                        `gorm:"primaryKey" json:"id"`
	Name                string                      `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Password            string                      `gorm:"size:255;not null" json:"-"`
	Role                string                      `gorm:"size:16;not null;default:team" json:"role"`
	Members             datatypes.JSONSlice[string] `json:"members"`
	Points              int                         `gorm:"not null;default:0" json:"points"`
	JuryScore           float64                     `gorm:"not null;default:0" json:"jury_score"`
	CurrentChallengeID  *uint                       `json:"current_challenge_id"`
	CompletedChallenges datatypes.JSONSlice[uint]   `json:"completed_challenges"`
	IsActive            bool                        `gorm:"not null;default:true" json:"is_active"`
	CreatedAt           time.Time                   `json:"created_at"`
	UpdatedAt           time.Time                   `json:"updated_at"`
}

const (
	// RoleTeam is the default role for competing teams.
	RoleTeam = "team"
	// RoleMentor may review submissions but has no admin rights.
	RoleMentor = "mentor"
	// RoleAdmin has full management access.
	RoleAdmin = "admin"
)

// IsReviewer reports whether the team may review submissions.
func (t Team) IsReviewer() bool {
	return t.Role == RoleAdmin || t.Role == RoleMentor
}

// IsCompeting reports whether the team appears on leaderboards.
func (t Team) IsCompeting() bool {
	return t.IsActive && t.Role == RoleTeam
}

// HasCompleted reports whether the challenge is already in the completed list.
func (t Team) HasCompleted(challengeID uint) bool {
	for _, id := range t.CompletedChallenges {
		if id == challengeID {
			return true
		}
	}
	return false
}

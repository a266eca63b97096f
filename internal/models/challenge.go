package models

import (
	"time"

	"gorm.io/datatypes"
)

// Challenge describes a single hackathon challenge. Points is a cache of
// InitialPoints+BonusPoints and is refreshed on every create or update.
type Challenge struct {
	ID                       uint                        `gorm:"primaryKey" json:"id"`
	Title                    string                      `gorm:"size:255;not null" json:"title"`
	Description              string                      `gorm:"type:text;not null" json:"description"`
	Tag                      string                      `gorm:"size:64;not null" json:"tag"`
	Points                   int                         `gorm:"not null;default:0" json:"points"`
	InitialPoints            int                         `gorm:"not null;default:0" json:"initial_points"`
	BonusPoints              int                         `gorm:"not null;default:0" json:"bonus_points"`
	BonusLimit               int                         `gorm:"not null;default:0" json:"bonus_limit"`
	ApprovedSubmissionsCount int                         `gorm:"not null;default:0" json:"approved_submissions_count"`
	Resources                datatypes.JSONSlice[string] `json:"resources"`
	Dependencies             datatypes.JSONSlice[uint]   `json:"dependencies"`
	IsAIChallenge            bool                        `gorm:"not null;default:false" json:"is_ai_challenge"`
	IsActive                 bool                        `gorm:"not null;default:true" json:"is_active"`
	CreatedAt                time.Time                   `json:"created_at"`
	UpdatedAt                time.Time                   `json:"updated_at"`
}

// RefreshPoints recomputes the cached total reward.
func (c *Challenge) RefreshPoints() {
	c.Points = c.InitialPoints + c.BonusPoints
}

// BonusApplies reports whether the Nth approval (1-indexed, post-increment
// counter) still falls inside the bonus window.
func (c Challenge) BonusApplies(approvalNumber int) bool {
	return c.BonusLimit > 0 && approvalNumber <= c.BonusLimit
}

// SoleDependencyIs reports whether the challenge depends on exactly the given
// challenge and nothing else.
func (c Challenge) SoleDependencyIs(challengeID uint) bool {
	return len(c.Dependencies) == 1 && c.Dependencies[0] == challengeID
}

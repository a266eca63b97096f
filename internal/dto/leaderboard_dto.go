package dto

import "time"

// LeaderboardEntry is one row of the team-facing board. Rank follows standard
// competition ranking: tied scores share a rank, the next distinct score
// resumes below the tie.
type LeaderboardEntry struct {
	Rank     int      `json:"rank"`
	TeamName string   `json:"team_name"`
	Members  []string `json:"members"`
	Points   int      `json:"points"`
}

// PublicLeaderboardEntry is one row of the public combined board. FinalScore
// blends min-max normalized challenge points and jury score; ranks are dense
// sequential with ties broken by sort order.
type PublicLeaderboardEntry struct {
	Rank           int     `json:"rank"`
	TeamName       string  `json:"team_name"`
	Points         int     `json:"points"`
	Progress       int     `json:"progress"`
	CompletedCount int     `json:"completed_count"`
	FinalScore     float64 `json:"final_score"`
}

// PublicLeaderboardResponse wraps the public board with its generation time.
type PublicLeaderboardResponse struct {
	GeneratedAt time.Time                `json:"generated_at"`
	Entries     []PublicLeaderboardEntry `json:"entries"`
}

// RealtimeEvent is pushed to websocket subscribers. It carries no payload
// beyond the event name; clients re-fetch whatever they render.
type RealtimeEvent struct {
	Event     string    `json:"event"`
	EmittedAt time.Time `json:"emitted_at"`
}

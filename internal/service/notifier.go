package service

import (
	"context"

	"github.com/rs/zerolog"
)

// LeaderboardNotifier is told whenever data feeding the leaderboards changes.
// Implementations must be fire-and-forget: a missed notification is tolerated
// because clients can always re-fetch current state.
type LeaderboardNotifier interface {
	LeaderboardChanged(ctx context.Context)
}

type leaderboardBroadcaster struct {
	boards   LeaderboardService
	realtime RealtimeService
	logger   zerolog.Logger
}

// NewLeaderboardBroadcaster couples cache invalidation with the realtime
// push: every score-affecting write drops the cached public board and tells
// subscribed clients to re-fetch.
func NewLeaderboardBroadcaster(boards LeaderboardService, realtime RealtimeService, logger zerolog.Logger) LeaderboardNotifier {
	return &leaderboardBroadcaster{
		boards:   boards,
		realtime: realtime,
		logger:   logger.With().Str("component", "leaderboard_broadcaster").Logger(),
	}
}

func (b *leaderboardBroadcaster) LeaderboardChanged(ctx context.Context) {
	if b.boards != nil {
		b.boards.Invalidate(ctx)
	}
	if b.realtime != nil {
		b.realtime.Publish(ctx, LeaderboardRoom, LeaderboardUpdateEvent)
	}
	b.logger.Debug().Msg("leaderboard change broadcast")
}

package service

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/openhack-labs/openhack-api/internal/dto"
	"github.com/openhack-labs/openhack-api/internal/models"
	"github.com/openhack-labs/openhack-api/internal/repository"
)

const publicBoardCacheKey = "leaderboard:public"

// LeaderboardService builds the ranked boards.
type LeaderboardService interface {
	TeamBoard(ctx context.Context) ([]dto.LeaderboardEntry, error)
	PublicBoard(ctx context.Context) (dto.PublicLeaderboardResponse, error)
	Invalidate(ctx context.Context)
}

type leaderboardService struct {
	teams      repository.TeamRepository
	challenges repository.ChallengeRepository
	cache      *redis.Client
	cacheTTL   time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// NewLeaderboardService constructs a LeaderboardService. The cache client may
// be nil, in which case every read hits the database.
func NewLeaderboardService(
	teams repository.TeamRepository,
	challenges repository.ChallengeRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) LeaderboardService {
	return &leaderboardService{
		teams:      teams,
		challenges: challenges,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger.With().Str("component", "leaderboard_service").Logger(),
		now:        time.Now,
	}
}

// TeamBoard ranks competing teams by challenge points with competition
// ranking, so tied teams share a rank.
func (s *leaderboardService) TeamBoard(ctx context.Context) ([]dto.LeaderboardEntry, error) {
	teams, err := s.competingTeams(ctx)
	if err != nil {
		return nil, err
	}

	points := make([]int, len(teams))
	for i, team := range teams {
		points[i] = team.Points
	}
	ranks := CompetitionRanks(points)

	entries := make([]dto.LeaderboardEntry, 0, len(teams))
	for i, team := range teams {
		entries = append(entries, dto.LeaderboardEntry{
			Rank:     ranks[i],
			TeamName: team.Name,
			Members:  team.Members,
			Points:   team.Points,
		})
	}

	return entries, nil
}

// PublicBoard blends normalized challenge points and jury scores into a final
// score and ranks by it. Results are cached briefly; submission reviews and
// jury updates invalidate the cache.
func (s *leaderboardService) PublicBoard(ctx context.Context) (dto.PublicLeaderboardResponse, error) {
	if cached, ok := s.cachedPublicBoard(ctx); ok {
		return cached, nil
	}

	teams, err := s.competingTeams(ctx)
	if err != nil {
		return dto.PublicLeaderboardResponse{}, err
	}

	totalPoints, err := s.challenges.TotalActivePoints(ctx)
	if err != nil {
		return dto.PublicLeaderboardResponse{}, err
	}

	entries := buildPublicEntries(teams, totalPoints)

	response := dto.PublicLeaderboardResponse{
		GeneratedAt: s.now().UTC(),
		Entries:     entries,
	}
	s.storePublicBoard(ctx, response)

	return response, nil
}

// Invalidate drops the cached public board so the next read rebuilds it.
func (s *leaderboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, publicBoardCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate leaderboard cache")
	}
}

func (s *leaderboardService) competingTeams(ctx context.Context) ([]models.Team, error) {
	return s.teams.List(ctx, repository.TeamFilter{
		ActiveOnly:   true,
		ExcludeRoles: []string{models.RoleAdmin, models.RoleMentor},
	})
}

func (s *leaderboardService) cachedPublicBoard(ctx context.Context) (dto.PublicLeaderboardResponse, bool) {
	if s.cache == nil {
		return dto.PublicLeaderboardResponse{}, false
	}

	raw, err := s.cache.Get(ctx, publicBoardCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("leaderboard cache read failed")
		}
		return dto.PublicLeaderboardResponse{}, false
	}

	var response dto.PublicLeaderboardResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		s.logger.Warn().Err(err).Msg("discarding malformed leaderboard cache entry")
		return dto.PublicLeaderboardResponse{}, false
	}

	return response, true
}

func (s *leaderboardService) storePublicBoard(ctx context.Context, response dto.PublicLeaderboardResponse) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, publicBoardCacheKey, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("leaderboard cache write failed")
	}
}

func buildPublicEntries(teams []models.Team, totalPoints int) []dto.PublicLeaderboardEntry {
	if len(teams) == 0 {
		return []dto.PublicLeaderboardEntry{}
	}

	pointValues := make([]float64, len(teams))
	juryValues := make([]float64, len(teams))
	for i, team := range teams {
		pointValues[i] = float64(team.Points)
		juryValues[i] = team.JuryScore
	}

	normPoints := normalizeValues(pointValues)
	normJury := normalizeValues(juryValues)

	entries := make([]dto.PublicLeaderboardEntry, 0, len(teams))
	for i, team := range teams {
		final := math.Round((normPoints[i]+normJury[i])*100*100) / 100

		progress := 0
		if totalPoints > 0 {
			progress = int(math.Round(float64(team.Points) / float64(totalPoints) * 100))
		}

		entries = append(entries, dto.PublicLeaderboardEntry{
			TeamName:       team.Name,
			Points:         team.Points,
			Progress:       progress,
			CompletedCount: len(team.CompletedChallenges),
			FinalScore:     final,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].FinalScore > entries[j].FinalScore
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries
}

// normalizeValues min-max scales a series onto 0..1. When every value ties,
// each gets 0.5 so a flat series contributes a neutral half-share.
func normalizeValues(values []float64) []float64 {
	normalized := make([]float64, len(values))
	if len(values) == 0 {
		return normalized
	}

	min, max := values[0], values[0]
	for _, value := range values {
		if value < min {
			min = value
		}
		if value > max {
			max = value
		}
	}

	if max == min {
		for i := range normalized {
			normalized[i] = 0.5
		}
		return normalized
	}

	for i, value := range values {
		normalized[i] = (value - min) / (max - min)
	}

	return normalized
}

// CompetitionRanks assigns standard competition ranks to a descending score
// series: tied scores share a rank and the next distinct score resumes at its
// positional index.
func CompetitionRanks(points []int) []int {
	ranks := make([]int, len(points))
	for i := range points {
		if i > 0 && points[i] == points[i-1] {
			ranks[i] = ranks[i-1]
			continue
		}
		ranks[i] = i + 1
	}
	return ranks
}

package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/openhack-labs/openhack-api/internal/dto"
	"github.com/openhack-labs/openhack-api/internal/models"
	"github.com/openhack-labs/openhack-api/internal/observability"
	"github.com/openhack-labs/openhack-api/internal/repository"
)

var (
	// ErrSubmissionNotFound indicates the submission could not be found.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrSubmissionConflict indicates the team already has a pending or
	// approved submission for the challenge.
	ErrSubmissionConflict = errors.New("an active submission for this challenge already exists")
	// ErrChallengeLocked indicates the challenge's dependencies have not all
	// been attempted yet.
	ErrChallengeLocked = errors.New("challenge is locked by unmet dependencies")
	// ErrAlreadyReviewed indicates the submission is no longer pending.
	ErrAlreadyReviewed = errors.New("submission has already been reviewed")
	// ErrNotReviewer indicates the acting account may not review submissions.
	ErrNotReviewer = errors.New("account is not allowed to review submissions")
	// ErrNotOwner indicates the submission belongs to another team.
	ErrNotOwner = errors.New("submission belongs to another team")
	// ErrScoreRequired indicates an AI challenge approval arrived without a
	// jury score.
	ErrScoreRequired = errors.New("a score is required to approve an AI challenge submission")
)

// SubmissionService manages submissions and applies the scoring rules when a
// reviewer decides one.
type SubmissionService interface {
	Create(ctx context.Context, teamID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	ListAll(ctx context.Context, status string) ([]dto.SubmissionResponse, error)
	ListForTeam(ctx context.Context, teamID uint) ([]dto.SubmissionResponse, error)
	Validate(ctx context.Context, reviewerID, submissionID uint, payload dto.SubmissionReviewRequest) (dto.SubmissionResponse, error)
	Cancel(ctx context.Context, teamID, submissionID uint) error
	ChallengeBoard(ctx context.Context, challengeID uint) (dto.ChallengeBoardResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	challenges  repository.ChallengeRepository
	teams       repository.TeamRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	notifier    LeaderboardNotifier
	tracer      trace.Tracer
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(
	submissions repository.SubmissionRepository,
	challenges repository.ChallengeRepository,
	teams repository.TeamRepository,
	validate *validator.Validate,
	notifier LeaderboardNotifier,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissions: submissions,
		challenges:  challenges,
		teams:       teams,
		validator:   validate,
		sanitizer:   bluemonday.UGCPolicy(),
		notifier:    notifier,
		tracer:      otel.Tracer("submission_service"),
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) Create(ctx context.Context, teamID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	challenge, err := s.challenges.GetByID(ctx, payload.ChallengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrChallengeNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	if !challenge.IsActive {
		return dto.SubmissionResponse{}, ErrChallengeNotFound
	}

	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrTeamNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	teamSubmissions, err := s.submissions.List(ctx, repository.SubmissionFilter{TeamID: &teamID})
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if !challengeUnlocked(challenge, team, teamSubmissions) {
		return dto.SubmissionResponse{}, ErrChallengeLocked
	}

	for _, existing := range teamSubmissions {
		if existing.ChallengeID != challenge.ID {
			continue
		}
		for _, status := range models.ActiveSubmissionStatuses {
			if existing.Status == status {
				return dto.SubmissionResponse{}, ErrSubmissionConflict
			}
		}
	}

	submission := models.Submission{
		TeamID:      teamID,
		ChallengeID: challenge.ID,
		GithubLink:  payload.GithubLink,
		Description: s.sanitizer.Sanitize(payload.Description),
		Status:      models.SubmissionStatusPending,
	}
	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("team_id", teamID).
		Uint("challenge_id", challenge.ID).
		Msg("submission filed")

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.NewSubmissionResponse(submission), nil
	}

	return dto.NewSubmissionResponse(created), nil
}

func (s *submissionService) ListAll(ctx context.Context, status string) ([]dto.SubmissionResponse, error) {
	filter := repository.SubmissionFilter{}
	if status != "" {
		filter.Statuses = []string{status}
	}

	submissions, err := s.submissions.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) ListForTeam(ctx context.Context, teamID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{TeamID: &teamID})
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

// Validate applies a reviewer's decision to a pending submission and runs the
// scoring rules the decision triggers.
func (s *submissionService) Validate(ctx context.Context, reviewerID, submissionID uint, payload dto.SubmissionReviewRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.validate")
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	reviewer, err := s.teams.GetByID(ctx, reviewerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrNotReviewer
		}
		return dto.SubmissionResponse{}, err
	}
	if !reviewer.IsReviewer() {
		return dto.SubmissionResponse{}, ErrNotReviewer
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	if !submission.IsPending() {
		return dto.SubmissionResponse{}, ErrAlreadyReviewed
	}

	challenge, err := s.challenges.GetByID(ctx, submission.ChallengeID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	reviewedAt := s.now()
	submission.Status = payload.Status
	submission.Feedback = payload.Feedback
	submission.ReviewedByID = &reviewerID
	submission.ReviewedAt = &reviewedAt

	switch payload.Status {
	case models.SubmissionStatusRejected:
		if err := s.submissions.Update(ctx, &submission); err != nil {
			return dto.SubmissionResponse{}, err
		}

	case models.SubmissionStatusBypassed:
		zero := 0
		submission.PointsAwarded = &zero
		if err := s.submissions.Update(ctx, &submission); err != nil {
			return dto.SubmissionResponse{}, err
		}
		if err := s.markCompleted(ctx, submission.TeamID, challenge); err != nil {
			return dto.SubmissionResponse{}, err
		}
		s.notifyBoards(ctx)

	case models.SubmissionStatusApproved:
		if challenge.IsAIChallenge {
			if payload.Score == nil {
				return dto.SubmissionResponse{}, ErrScoreRequired
			}
			if err := s.approveAI(ctx, &submission, challenge, *payload.Score); err != nil {
				return dto.SubmissionResponse{}, err
			}
		} else {
			if err := s.approve(ctx, &submission, challenge); err != nil {
				return dto.SubmissionResponse{}, err
			}
		}
		if err := s.markCompleted(ctx, submission.TeamID, challenge); err != nil {
			return dto.SubmissionResponse{}, err
		}
		s.notifyBoards(ctx)
	}

	observability.SubmissionReviews().WithLabelValues(payload.Status).Inc()

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("reviewer_id", reviewerID).
		Str("decision", payload.Status).
		Msg("submission reviewed")

	reviewed, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.NewSubmissionResponse(submission), nil
	}

	return dto.NewSubmissionResponse(reviewed), nil
}

// approve settles a regular challenge: the counter decides whether the team
// lands inside the bonus window, and the reward is frozen on the submission.
func (s *submissionService) approve(ctx context.Context, submission *models.Submission, challenge models.Challenge) error {
	approvalNumber, err := s.challenges.IncrementApprovedCount(ctx, challenge.ID)
	if err != nil {
		return err
	}

	points := challenge.InitialPoints
	if challenge.BonusApplies(approvalNumber) {
		points += challenge.BonusPoints
	}
	submission.PointsAwarded = &points

	if err := s.submissions.Update(ctx, submission); err != nil {
		return err
	}

	team, err := s.teams.GetByID(ctx, submission.TeamID)
	if err != nil {
		return err
	}
	team.Points += points

	return s.teams.Update(ctx, &team)
}

// approveAI stores the jury score and renormalizes every approved score of the
// challenge, then recomputes totals for the teams whose share moved.
func (s *submissionService) approveAI(ctx context.Context, submission *models.Submission, challenge models.Challenge, score float64) error {
	submission.Score = &score
	if err := s.submissions.Update(ctx, submission); err != nil {
		return err
	}

	if _, err := s.challenges.IncrementApprovedCount(ctx, challenge.ID); err != nil {
		return err
	}

	challengeID := challenge.ID
	scored, err := s.submissions.List(ctx, repository.SubmissionFilter{
		ChallengeID: &challengeID,
		Statuses:    []string{models.SubmissionStatusApproved},
		ScoredOnly:  true,
	})
	if err != nil {
		return err
	}

	normalized := normalizeScores(scored)
	affected := make(map[uint]bool, len(scored))
	for i := range scored {
		points := normalized[i]
		scored[i].AIPoints = &points
		if err := s.submissions.Update(ctx, &scored[i]); err != nil {
			return err
		}
		affected[scored[i].TeamID] = true
	}

	for teamID := range affected {
		if err := s.recomputeTeamPoints(ctx, teamID); err != nil {
			return err
		}
	}

	return nil
}

// recomputeTeamPoints rebuilds a team's total from its settled submissions.
// AI challenges contribute the normalized points; everything else contributes
// the frozen reward, falling back to the challenge's current value for rows
// settled before rewards were frozen.
func (s *submissionService) recomputeTeamPoints(ctx context.Context, teamID uint) error {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return err
	}

	settled, err := s.submissions.List(ctx, repository.SubmissionFilter{
		TeamID:   &teamID,
		Statuses: []string{models.SubmissionStatusApproved, models.SubmissionStatusBypassed},
	})
	if err != nil {
		return err
	}

	total := 0
	for _, submission := range settled {
		if submission.Challenge.IsAIChallenge {
			if submission.AIPoints != nil {
				total += *submission.AIPoints
			}
			continue
		}
		if submission.PointsAwarded != nil {
			total += *submission.PointsAwarded
			continue
		}
		if submission.Status == models.SubmissionStatusApproved {
			total += submission.Challenge.Points
		}
	}

	team.Points = total

	return s.teams.Update(ctx, &team)
}

// markCompleted records the challenge on the team and, when exactly one active
// challenge depends solely on it, points the team at that next challenge.
func (s *submissionService) markCompleted(ctx context.Context, teamID uint, challenge models.Challenge) error {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return err
	}

	if !team.HasCompleted(challenge.ID) {
		team.CompletedChallenges = append(team.CompletedChallenges, challenge.ID)
	}

	active, err := s.challenges.List(ctx, true)
	if err != nil {
		return err
	}

	var successors []uint
	for _, candidate := range active {
		if candidate.SoleDependencyIs(challenge.ID) && !team.HasCompleted(candidate.ID) {
			successors = append(successors, candidate.ID)
		}
	}
	if len(successors) == 1 {
		team.CurrentChallengeID = &successors[0]
	}

	return s.teams.Update(ctx, &team)
}

func (s *submissionService) notifyBoards(ctx context.Context) {
	if s.notifier != nil {
		s.notifier.LeaderboardChanged(ctx)
	}
}

func (s *submissionService) Cancel(ctx context.Context, teamID, submissionID uint) error {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubmissionNotFound
		}
		return err
	}

	if submission.TeamID != teamID {
		return ErrNotOwner
	}
	if !submission.IsPending() {
		return ErrAlreadyReviewed
	}

	return s.submissions.Delete(ctx, submission.ID)
}

func (s *submissionService) ChallengeBoard(ctx context.Context, challengeID uint) (dto.ChallengeBoardResponse, error) {
	challenge, err := s.challenges.GetByID(ctx, challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ChallengeBoardResponse{}, ErrChallengeNotFound
		}
		return dto.ChallengeBoardResponse{}, err
	}

	filter := repository.SubmissionFilter{
		ChallengeID: &challengeID,
		Statuses:    []string{models.SubmissionStatusApproved},
	}
	if challenge.IsAIChallenge {
		filter.ScoredOnly = true
		filter.OrderByScore = true
	}

	approved, err := s.submissions.List(ctx, filter)
	if err != nil {
		return dto.ChallengeBoardResponse{}, err
	}

	entries := make([]dto.ChallengeBoardEntry, 0, len(approved))
	for i, submission := range approved {
		entry := dto.ChallengeBoardEntry{TeamName: submission.Team.Name}
		if challenge.IsAIChallenge {
			entry.Rank = i + 1
			if submission.Score != nil {
				entry.Score = *submission.Score
			}
			if submission.AIPoints != nil {
				entry.AIPoints = *submission.AIPoints
			}
		}
		entries = append(entries, entry)
	}

	return dto.ChallengeBoardResponse{
		IsAIChallenge: challenge.IsAIChallenge,
		Count:         len(entries),
		Entries:       entries,
	}, nil
}

// challengeUnlocked reports whether every dependency has been attempted: a
// recorded completion counts, and so does any prior submission regardless of
// its outcome.
func challengeUnlocked(challenge models.Challenge, team models.Team, teamSubmissions []models.Submission) bool {
	attempted := make(map[uint]bool, len(teamSubmissions))
	for _, submission := range teamSubmissions {
		attempted[submission.ChallengeID] = true
	}

	for _, depID := range challenge.Dependencies {
		if !attempted[depID] && !team.HasCompleted(depID) {
			return false
		}
	}

	return true
}

// normalizeScores maps raw jury scores onto 0..100 by min-max scaling. A
// single submission, or a field where every score ties, earns full points.
func normalizeScores(scored []models.Submission) []int {
	points := make([]int, len(scored))
	if len(scored) == 0 {
		return points
	}

	min, max := math.Inf(1), math.Inf(-1)
	for _, submission := range scored {
		if submission.Score == nil {
			continue
		}
		if *submission.Score < min {
			min = *submission.Score
		}
		if *submission.Score > max {
			max = *submission.Score
		}
	}

	for i, submission := range scored {
		if submission.Score == nil {
			continue
		}
		if max == min {
			points[i] = 100
			continue
		}
		points[i] = int(math.Round((*submission.Score - min) / (max - min) * 100))
	}

	return points
}

package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/openhack-labs/openhack-api/internal/dto"
	"github.com/openhack-labs/openhack-api/internal/models"
)

type submissionFixture struct {
	svc         SubmissionService
	teams       *memoryTeamRepo
	challenges  *memoryChallengeRepo
	submissions *memorySubmissionRepo
	notifier    *recordingNotifier
	admin       uint
}

func newSubmissionFixture(t *testing.T) *submissionFixture {
	t.Helper()

	teams := newMemoryTeamRepo()
	challenges := newMemoryChallengeRepo()
	submissions := newMemorySubmissionRepo(teams, challenges)
	notifier := &recordingNotifier{}
	validate := validator.New(validator.WithRequiredStructEnabled())

	admin := models.Team{Name: "jury", Role: models.RoleAdmin, IsActive: true}
	require.NoError(t, teams.Create(context.Background(), &admin))

	return &submissionFixture{
		svc:         NewSubmissionService(submissions, challenges, teams, validate, notifier, testLogger()),
		teams:       teams,
		challenges:  challenges,
		submissions: submissions,
		notifier:    notifier,
		admin:       admin.ID,
	}
}

func (f *submissionFixture) seedTeam(t *testing.T, name string) uint {
	t.Helper()
	team := models.Team{Name: name, Role: models.RoleTeam, IsActive: true}
	require.NoError(t, f.teams.Create(context.Background(), &team))
	return team.ID
}

func (f *submissionFixture) seedChallenge(t *testing.T, challenge models.Challenge) uint {
	t.Helper()
	challenge.IsActive = true
	challenge.RefreshPoints()
	require.NoError(t, f.challenges.Create(context.Background(), &challenge))
	return challenge.ID
}

func (f *submissionFixture) file(t *testing.T, teamID, challengeID uint) dto.SubmissionResponse {
	t.Helper()
	created, err := f.svc.Create(context.Background(), teamID, dto.SubmissionCreateRequest{
		ChallengeID: challengeID,
		GithubLink:  "https://github.com/acme/solution",
		Description: "our solution",
	})
	require.NoError(t, err)
	return created
}

func (f *submissionFixture) review(t *testing.T, submissionID uint, payload dto.SubmissionReviewRequest) dto.SubmissionResponse {
	t.Helper()
	reviewed, err := f.svc.Validate(context.Background(), f.admin, submissionID, payload)
	require.NoError(t, err)
	return reviewed
}

func TestSubmissionCreateLockedByDependencies(t *testing.T) {
	f := newSubmissionFixture(t)
	team := f.seedTeam(t, "alpha")
	base := f.seedChallenge(t, models.Challenge{Title: "Warmup", Tag: "intro", InitialPoints: 50})
	gated := f.seedChallenge(t, models.Challenge{Title: "Gated", Tag: "core", InitialPoints: 100, Dependencies: []uint{base}})

	_, err := f.svc.Create(context.Background(), team, dto.SubmissionCreateRequest{
		ChallengeID: gated,
		GithubLink:  "https://github.com/acme/solution",
		Description: "too early",
	})
	require.ErrorIs(t, err, ErrChallengeLocked)

	// Any attempt unlocks the dependent, even before it is reviewed.
	f.file(t, team, base)
	f.file(t, team, gated)
}

func TestSubmissionCreateRejectedAttemptStillUnlocks(t *testing.T) {
	f := newSubmissionFixture(t)
	team := f.seedTeam(t, "alpha")
	base := f.seedChallenge(t, models.Challenge{Title: "Warmup", Tag: "intro", InitialPoints: 50})
	gated := f.seedChallenge(t, models.Challenge{Title: "Gated", Tag: "core", InitialPoints: 100, Dependencies: []uint{base}})

	first := f.file(t, team, base)
	f.review(t, first.ID, dto.SubmissionReviewRequest{Status: models.SubmissionStatusRejected, Feedback: "try again"})

	f.file(t, team, gated)
}

func TestSubmissionCreateConflictOnActivePair(t *testing.T) {
	f := newSubmissionFixture(t)
	team := f.seedTeam(t, "alpha")
	challenge := f.seedChallenge(t, models.Challenge{Title: "Warmup", Tag: "intro", InitialPoints: 50})

	first := f.file(t, team, challenge)

	_, err := f.svc.Create(context.Background(), team, dto.SubmissionCreateRequest{
		ChallengeID: challenge,
		GithubLink:  "https://github.com/acme/second",
		Description: "duplicate",
	})
	require.ErrorIs(t, err, ErrSubmissionConflict)

	f.review(t, first.ID, dto.SubmissionReviewRequest{Status: models.SubmissionStatusRejected})

	// A rejection frees the pair for another try.
	f.file(t, team, challenge)
}

func TestSubmissionValidateBonusCutoff(t *testing.T) {
	f := newSubmissionFixture(t)
	challenge := f.seedChallenge(t, models.Challenge{Title: "Race", Tag: "core", InitialPoints: 100, BonusPoints: 20, BonusLimit: 2})

	awarded := make([]int, 0, 3)
	for _, name := range []string{"alpha", "bravo", "charlie"} {
		team := f.seedTeam(t, name)
		created := f.file(t, team, challenge)
		reviewed := f.review(t, created.ID, dto.SubmissionReviewRequest{Status: models.SubmissionStatusApproved})
		require.NotNil(t, reviewed.PointsAwarded)
		awarded = append(awarded, *reviewed.PointsAwarded)
	}

	require.Equal(t, []int{120, 120, 100}, awarded)

	stored, err := f.challenges.GetByID(context.Background(), challenge)
	require.NoError(t, err)
	require.Equal(t, 3, stored.ApprovedSubmissionsCount)
}

func TestSubmissionValidateApprovedAddsTeamPoints(t *testing.T) {
	f := newSubmissionFixture(t)
	team := f.seedTeam(t, "alpha")
	challenge := f.seedChallenge(t, models.Challenge{Title: "Warmup", Tag: "intro", InitialPoints: 50, BonusPoints: 10, BonusLimit: 1})

	created := f.file(t, team, challenge)
	f.review(t, created.ID, dto.SubmissionReviewRequest{Status: models.SubmissionStatusApproved})

	stored, err := f.teams.GetByID(context.Background(), team)
	require.NoError(t, err)
	require.Equal(t, 60, stored.Points)
	require.True(t, stored.HasCompleted(challenge))
	require.Equal(t, 1, f.notifier.calls)
}

func TestSubmissionValidateBypassAwardsNothing(t *testing.T) {
	f := newSubmissionFixture(t)
	team := f.seedTeam(t, "alpha")
	challenge := f.seedChallenge(t, models.Challenge{Title: "Warmup", Tag: "intro", InitialPoints: 50})

	created := f.file(t, team, challenge)
	reviewed := f.review(t, created.ID, dto.SubmissionReviewRequest{Status: models.SubmissionStatusBypassed, Feedback: "hardware failure"})

	require.NotNil(t, reviewed.PointsAwarded)
	require.Equal(t, 0, *reviewed.PointsAwarded)

	stored, err := f.teams.GetByID(context.Background(), team)
	require.NoError(t, err)
	require.Equal(t, 0, stored.Points)
	require.True(t, stored.HasCompleted(challenge))
}

func TestSubmissionValidateAIUniformScores(t *testing.T) {
	f := newSubmissionFixture(t)
	challenge := f.seedChallenge(t, models.Challenge{Title: "Model", Tag: "ai", IsAIChallenge: true})

	score := 50.0
	for _, name := range []string{"alpha", "bravo", "charlie"} {
		team := f.seedTeam(t, name)
		created := f.file(t, team, challenge)
		f.review(t, created.ID, dto.SubmissionReviewRequest{Status: models.SubmissionStatusApproved, Score: &score})
	}

	challengeID := challenge
	approved, err := f.submissions.List(context.Background(), listByChallenge(challengeID))
	require.NoError(t, err)
	require.Len(t, approved, 3)
	for _, submission := range approved {
		require.NotNil(t, submission.AIPoints)
		require.Equal(t, 100, *submission.AIPoints)
	}
}

func TestSubmissionValidateAISpreadScores(t *testing.T) {
	f := newSubmissionFixture(t)
	challenge := f.seedChallenge(t, models.Challenge{Title: "Model", Tag: "ai", IsAIChallenge: true})

	teamsByScore := map[float64]uint{}
	for name, score := range map[string]float64{"alpha": 10, "bravo": 50, "charlie": 90} {
		team := f.seedTeam(t, name)
		teamsByScore[score] = team
		created := f.file(t, team, challenge)
		s := score
		f.review(t, created.ID, dto.SubmissionReviewRequest{Status: models.SubmissionStatusApproved, Score: &s})
	}

	expected := map[float64]int{10: 0, 50: 50, 90: 100}
	for score, teamID := range teamsByScore {
		stored, err := f.teams.GetByID(context.Background(), teamID)
		require.NoError(t, err)
		require.Equal(t, expected[score], stored.Points, "score %v", score)
	}
}

func TestSubmissionValidateAIRequiresScore(t *testing.T) {
	f := newSubmissionFixture(t)
	team := f.seedTeam(t, "alpha")
	challenge := f.seedChallenge(t, models.Challenge{Title: "Model", Tag: "ai", IsAIChallenge: true})

	created := f.file(t, team, challenge)
	_, err := f.svc.Validate(context.Background(), f.admin, created.ID, dto.SubmissionReviewRequest{Status: models.SubmissionStatusApproved})
	require.ErrorIs(t, err, ErrScoreRequired)
}

func TestSubmissionValidateRequiresPending(t *testing.T) {
	f := newSubmissionFixture(t)
	team := f.seedTeam(t, "alpha")
	challenge := f.seedChallenge(t, models.Challenge{Title: "Warmup", Tag: "intro", InitialPoints: 50})

	created := f.file(t, team, challenge)
	f.review(t, created.ID, dto.SubmissionReviewRequest{Status: models.SubmissionStatusApproved})

	_, err := f.svc.Validate(context.Background(), f.admin, created.ID, dto.SubmissionReviewRequest{Status: models.SubmissionStatusRejected})
	require.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestSubmissionValidateRequiresReviewerRole(t *testing.T) {
	f := newSubmissionFixture(t)
	team := f.seedTeam(t, "alpha")
	challenge := f.seedChallenge(t, models.Challenge{Title: "Warmup", Tag: "intro", InitialPoints: 50})

	created := f.file(t, team, challenge)
	_, err := f.svc.Validate(context.Background(), team, created.ID, dto.SubmissionReviewRequest{Status: models.SubmissionStatusApproved})
	require.ErrorIs(t, err, ErrNotReviewer)
}

func TestSubmissionCancelRules(t *testing.T) {
	f := newSubmissionFixture(t)
	owner := f.seedTeam(t, "alpha")
	other := f.seedTeam(t, "bravo")
	challenge := f.seedChallenge(t, models.Challenge{Title: "Warmup", Tag: "intro", InitialPoints: 50})

	created := f.file(t, owner, challenge)

	require.ErrorIs(t, f.svc.Cancel(context.Background(), other, created.ID), ErrNotOwner)
	require.NoError(t, f.svc.Cancel(context.Background(), owner, created.ID))
	require.ErrorIs(t, f.svc.Cancel(context.Background(), owner, created.ID), ErrSubmissionNotFound)

	second := f.file(t, owner, challenge)
	f.review(t, second.ID, dto.SubmissionReviewRequest{Status: models.SubmissionStatusApproved})
	require.ErrorIs(t, f.svc.Cancel(context.Background(), owner, second.ID), ErrAlreadyReviewed)
}

func TestSubmissionRejectThenApproveAwardsOnce(t *testing.T) {
	f := newSubmissionFixture(t)
	team := f.seedTeam(t, "alpha")
	challenge := f.seedChallenge(t, models.Challenge{Title: "Warmup", Tag: "intro", InitialPoints: 50})

	first := f.file(t, team, challenge)
	f.review(t, first.ID, dto.SubmissionReviewRequest{Status: models.SubmissionStatusRejected, Feedback: "missing readme"})

	second := f.file(t, team, challenge)
	f.review(t, second.ID, dto.SubmissionReviewRequest{Status: models.SubmissionStatusApproved})

	stored, err := f.teams.GetByID(context.Background(), team)
	require.NoError(t, err)
	require.Equal(t, 50, stored.Points)

	challengeID := challenge
	approved, err := f.submissions.List(context.Background(), listByChallenge(challengeID))
	require.NoError(t, err)
	require.Len(t, approved, 1)
}

func TestSubmissionApprovalSetsNextChallengeHint(t *testing.T) {
	f := newSubmissionFixture(t)
	team := f.seedTeam(t, "alpha")
	base := f.seedChallenge(t, models.Challenge{Title: "Warmup", Tag: "intro", InitialPoints: 50})
	next := f.seedChallenge(t, models.Challenge{Title: "Followup", Tag: "core", InitialPoints: 100, Dependencies: []uint{base}})

	created := f.file(t, team, base)
	f.review(t, created.ID, dto.SubmissionReviewRequest{Status: models.SubmissionStatusApproved})

	stored, err := f.teams.GetByID(context.Background(), team)
	require.NoError(t, err)
	require.NotNil(t, stored.CurrentChallengeID)
	require.Equal(t, next, *stored.CurrentChallengeID)
}

func TestChallengeBoardRanksAISubmissions(t *testing.T) {
	f := newSubmissionFixture(t)
	challenge := f.seedChallenge(t, models.Challenge{Title: "Model", Tag: "ai", IsAIChallenge: true})

	for name, score := range map[string]float64{"alpha": 30, "bravo": 90} {
		team := f.seedTeam(t, name)
		created := f.file(t, team, challenge)
		s := score
		f.review(t, created.ID, dto.SubmissionReviewRequest{Status: models.SubmissionStatusApproved, Score: &s})
	}

	board, err := f.svc.ChallengeBoard(context.Background(), challenge)
	require.NoError(t, err)
	require.True(t, board.IsAIChallenge)
	require.Equal(t, 2, board.Count)
	require.Equal(t, "bravo", board.Entries[0].TeamName)
	require.Equal(t, 1, board.Entries[0].Rank)
	require.Equal(t, 100, board.Entries[0].AIPoints)
	require.Equal(t, "alpha", board.Entries[1].TeamName)
	require.Equal(t, 0, board.Entries[1].AIPoints)
}

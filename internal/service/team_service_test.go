package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/openhack-labs/openhack-api/internal/dto"
	"github.com/openhack-labs/openhack-api/internal/models"
)

func newTeamFixture(t *testing.T) (TeamService, *memoryTeamRepo, *memorySubmissionRepo, *recordingNotifier) {
	t.Helper()
	teams := newMemoryTeamRepo()
	challenges := newMemoryChallengeRepo()
	submissions := newMemorySubmissionRepo(teams, challenges)
	notifier := &recordingNotifier{}
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewTeamService(teams, submissions, validate, notifier, testLogger()), teams, submissions, notifier
}

func TestTeamServiceCreateRejectsDuplicateName(t *testing.T) {
	svc, _, _, _ := newTeamFixture(t)

	payload := dto.RegisterRequest{Name: "alpha", Members: []string{"ada"}, Password: "secret123"}
	_, err := svc.Create(context.Background(), payload)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), payload)
	require.ErrorIs(t, err, ErrTeamNameTaken)
}

func TestTeamServiceSetJuryScoreStoresRawValue(t *testing.T) {
	svc, teams, _, notifier := newTeamFixture(t)

	team := models.Team{Name: "alpha", Role: models.RoleTeam, IsActive: true}
	require.NoError(t, teams.Create(context.Background(), &team))

	score := 87.5
	updated, err := svc.SetJuryScore(context.Background(), team.ID, dto.JuryScoreRequest{Score: &score})
	require.NoError(t, err)
	require.Equal(t, 87.5, updated.JuryScore)
	require.Equal(t, 1, notifier.calls)

	over := 101.0
	_, err = svc.SetJuryScore(context.Background(), team.ID, dto.JuryScoreRequest{Score: &over})
	require.Error(t, err)
}

func TestTeamServiceMeReportsCompetitionRank(t *testing.T) {
	svc, teams, _, _ := newTeamFixture(t)

	var bravo uint
	for _, seed := range []struct {
		name   string
		points int
	}{
		{"alpha", 100},
		{"bravo", 100},
		{"charlie", 80},
	} {
		team := models.Team{Name: seed.name, Role: models.RoleTeam, Points: seed.points, IsActive: true}
		require.NoError(t, teams.Create(context.Background(), &team))
		if seed.name == "bravo" {
			bravo = team.ID
		}
	}
	mentor := models.Team{Name: "coach", Role: models.RoleMentor, Points: 999, IsActive: true}
	require.NoError(t, teams.Create(context.Background(), &mentor))

	me, err := svc.Me(context.Background(), bravo)
	require.NoError(t, err)
	require.NotNil(t, me.Rank)
	require.Equal(t, 1, *me.Rank)

	// Mentors never rank.
	coach, err := svc.Me(context.Background(), mentor.ID)
	require.NoError(t, err)
	require.Nil(t, coach.Rank)
}

func TestTeamServiceDeleteRemovesSubmissions(t *testing.T) {
	svc, teams, submissions, notifier := newTeamFixture(t)

	team := models.Team{Name: "alpha", Role: models.RoleTeam, IsActive: true}
	require.NoError(t, teams.Create(context.Background(), &team))

	sub := models.Submission{TeamID: team.ID, ChallengeID: 1, GithubLink: "https://github.com/acme/x", Description: "x", Status: models.SubmissionStatusPending}
	require.NoError(t, submissions.Create(context.Background(), &sub))

	require.NoError(t, svc.Delete(context.Background(), team.ID))

	_, err := teams.GetByID(context.Background(), team.ID)
	require.Error(t, err)
	require.Empty(t, submissions.submissions)
	require.Equal(t, 1, notifier.calls)
}

func TestTeamServiceGetHidesInactive(t *testing.T) {
	svc, teams, _, _ := newTeamFixture(t)

	team := models.Team{Name: "alpha", Role: models.RoleTeam, IsActive: false}
	require.NoError(t, teams.Create(context.Background(), &team))

	_, err := svc.Get(context.Background(), team.ID)
	require.ErrorIs(t, err, ErrTeamNotFound)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/openhack-labs/openhack-api/internal/dto"
	"github.com/openhack-labs/openhack-api/internal/models"
)

const testSecret = "test-secret"

func newAuthFixture(t *testing.T) (AuthService, *memoryTeamRepo) {
	t.Helper()
	teams := newMemoryTeamRepo()
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewAuthService(teams, validate, testSecret, time.Hour, testLogger()), teams
}

func TestAuthServiceRegisterDefaultsToTeamRole(t *testing.T) {
	svc, _ := newAuthFixture(t)

	response, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:     "alpha",
		Members:  []string{"ada", "grace"},
		Password: "secret123",
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleTeam, response.Team.Role)
	require.NotEmpty(t, response.Token)

	parsed, err := jwt.Parse(response.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, models.RoleTeam, claims["role"])
	require.Equal(t, float64(response.Team.ID), claims["sub"])
}

func TestAuthServiceRegisterRejectsDuplicateName(t *testing.T) {
	svc, _ := newAuthFixture(t)

	payload := dto.RegisterRequest{Name: "alpha", Members: []string{"ada"}, Password: "secret123"}
	_, err := svc.Register(context.Background(), payload)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), payload)
	require.ErrorIs(t, err, ErrTeamNameTaken)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{Name: "alpha", Members: []string{"ada"}, Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Name: "alpha", Password: "wrong-pass"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Name: "ghost", Password: "secret123"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceLoginRejectsInactiveTeam(t *testing.T) {
	svc, teams := newAuthFixture(t)

	response, err := svc.Register(context.Background(), dto.RegisterRequest{Name: "alpha", Members: []string{"ada"}, Password: "secret123"})
	require.NoError(t, err)

	team, err := teams.GetByID(context.Background(), response.Team.ID)
	require.NoError(t, err)
	team.IsActive = false
	require.NoError(t, teams.Update(context.Background(), &team))

	_, err = svc.Login(context.Background(), dto.LoginRequest{Name: "alpha", Password: "secret123"})
	require.ErrorIs(t, err, ErrTeamInactive)
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{Name: "alpha", Members: []string{"ada"}, Password: "secret123", Role: models.RoleMentor})
	require.NoError(t, err)

	response, err := svc.Login(context.Background(), dto.LoginRequest{Name: "alpha", Password: "secret123"})
	require.NoError(t, err)
	require.Equal(t, models.RoleMentor, response.Team.Role)
	require.NotEmpty(t, response.Token)
}

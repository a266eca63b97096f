package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/openhack-labs/openhack-api/internal/dto"
	"github.com/openhack-labs/openhack-api/internal/models"
	"github.com/openhack-labs/openhack-api/internal/repository"
)

// ErrInvalidCredentials indicates an unknown team name or wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrTeamInactive indicates a deactivated team attempted to log in.
var ErrTeamInactive = errors.New("team is deactivated")

// AuthService issues tokens and manages team identity.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error)
	Profile(ctx context.Context, teamID uint) (dto.TeamResponse, error)
}

type authService struct {
	teams     repository.TeamRepository
	validator *validator.Validate
	logger    zerolog.Logger
	secret    string
	expiry    time.Duration
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(teams repository.TeamRepository, validate *validator.Validate, secret string, expiry time.Duration, logger zerolog.Logger) AuthService {
	return &authService{
		teams:     teams,
		validator: validate,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		secret:    secret,
		expiry:    expiry,
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	if _, err := s.teams.GetByName(ctx, payload.Name); err == nil {
		return dto.AuthResponse{}, ErrTeamNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AuthResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	role := payload.Role
	if role == "" {
		role = models.RoleTeam
	}

	team := models.Team{
		Name:     payload.Name,
		Password: string(hash),
		Role:     role,
		Members:  payload.Members,
		IsActive: true,
	}

	if err := s.teams.Create(ctx, &team); err != nil {
		return dto.AuthResponse{}, err
	}

	token, err := s.signToken(team)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	s.logger.Info().Uint("team_id", team.ID).Str("role", team.Role).Msg("team registered")

	return dto.AuthResponse{Token: token, Team: dto.NewTeamResponse(team)}, nil
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	team, err := s.teams.GetByName(ctx, payload.Name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(team.Password), []byte(payload.Password)); err != nil {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	if !team.IsActive {
		return dto.AuthResponse{}, ErrTeamInactive
	}

	token, err := s.signToken(team)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	s.logger.Info().Uint("team_id", team.ID).Msg("team logged in")

	return dto.AuthResponse{Token: token, Team: dto.NewTeamResponse(team)}, nil
}

func (s *authService) Profile(ctx context.Context, teamID uint) (dto.TeamResponse, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TeamResponse{}, ErrTeamNotFound
		}
		return dto.TeamResponse{}, err
	}

	return dto.NewTeamResponse(team), nil
}

func (s *authService) signToken(team models.Team) (string, error) {
	issued := s.now()
	claims := jwt.MapClaims{
		"sub":  float64(team.ID),
		"role": team.Role,
		"iat":  issued.Unix(),
		"exp":  issued.Add(s.expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

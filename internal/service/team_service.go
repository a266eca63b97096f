package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/openhack-labs/openhack-api/internal/dto"
	"github.com/openhack-labs/openhack-api/internal/models"
	"github.com/openhack-labs/openhack-api/internal/repository"
)

// ErrTeamNotFound indicates a team could not be found.
var ErrTeamNotFound = errors.New("team not found")

// ErrTeamNameTaken indicates the requested team name is already in use.
var ErrTeamNameTaken = errors.New("team name already exists")

// TeamService manages team accounts and the jury score.
type TeamService interface {
	List(ctx context.Context) ([]dto.TeamResponse, error)
	Get(ctx context.Context, id uint) (dto.TeamResponse, error)
	Create(ctx context.Context, payload dto.RegisterRequest) (dto.TeamResponse, error)
	Update(ctx context.Context, id uint, payload dto.TeamUpdateRequest) (dto.TeamResponse, error)
	Delete(ctx context.Context, id uint) error
	SetJuryScore(ctx context.Context, id uint, payload dto.JuryScoreRequest) (dto.TeamResponse, error)
	Me(ctx context.Context, teamID uint) (dto.TeamResponse, error)
}

type teamService struct {
	teams       repository.TeamRepository
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	notifier    LeaderboardNotifier
	logger      zerolog.Logger
}

// NewTeamService constructs a TeamService instance.
func NewTeamService(teams repository.TeamRepository, submissions repository.SubmissionRepository, validate *validator.Validate, notifier LeaderboardNotifier, logger zerolog.Logger) TeamService {
	return &teamService{
		teams:       teams,
		submissions: submissions,
		validator:   validate,
		notifier:    notifier,
		logger:      logger.With().Str("component", "team_service").Logger(),
	}
}

func (s *teamService) List(ctx context.Context) ([]dto.TeamResponse, error) {
	teams, err := s.teams.List(ctx, repository.TeamFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	return dto.NewTeamResponseSlice(teams), nil
}

func (s *teamService) Get(ctx context.Context, id uint) (dto.TeamResponse, error) {
	team, err := s.getActive(ctx, id)
	if err != nil {
		return dto.TeamResponse{}, err
	}

	return dto.NewTeamResponse(team), nil
}

func (s *teamService) Create(ctx context.Context, payload dto.RegisterRequest) (dto.TeamResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TeamResponse{}, err
	}

	if _, err := s.teams.GetByName(ctx, payload.Name); err == nil {
		return dto.TeamResponse{}, ErrTeamNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.TeamResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.TeamResponse{}, err
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
		return dto.TeamResponse{}, err
	}

	s.logger.Info().Uint("team_id", team.ID).Msg("team created")

	return dto.NewTeamResponse(team), nil
}

func (s *teamService) Update(ctx context.Context, id uint, payload dto.TeamUpdateRequest) (dto.TeamResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TeamResponse{}, err
	}

	team, err := s.getActive(ctx, id)
	if err != nil {
		return dto.TeamResponse{}, err
	}

	if payload.Name != nil && *payload.Name != team.Name {
		if _, err := s.teams.GetByName(ctx, *payload.Name); err == nil {
			return dto.TeamResponse{}, ErrTeamNameTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TeamResponse{}, err
		}
		team.Name = *payload.Name
	}

	if payload.Members != nil {
		team.Members = *payload.Members
	}

	if payload.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*payload.Password), bcrypt.DefaultCost)
		if err != nil {
			return dto.TeamResponse{}, err
		}
		team.Password = string(hash)
	}

	if err := s.teams.Update(ctx, &team); err != nil {
		return dto.TeamResponse{}, err
	}

	s.logger.Info().Uint("team_id", team.ID).Msg("team updated")

	return dto.NewTeamResponse(team), nil
}

// Delete removes the team and every submission it ever made. Scores of other
// teams are unaffected but the boards must refresh.
func (s *teamService) Delete(ctx context.Context, id uint) error {
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		return err
	}

	if err := s.submissions.DeleteByTeam(ctx, team.ID); err != nil {
		return err
	}

	if err := s.teams.Delete(ctx, team.ID); err != nil {
		return err
	}

	s.logger.Info().Uint("team_id", team.ID).Str("name", team.Name).Msg("team and submissions deleted")

	if s.notifier != nil {
		s.notifier.LeaderboardChanged(ctx)
	}

	return nil
}

func (s *teamService) SetJuryScore(ctx context.Context, id uint, payload dto.JuryScoreRequest) (dto.TeamResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TeamResponse{}, err
	}

	team, err := s.getActive(ctx, id)
	if err != nil {
		return dto.TeamResponse{}, err
	}

	// Stored raw on the 0-100 input scale; normalization happens at blend time.
	team.JuryScore = *payload.Score

	if err := s.teams.Update(ctx, &team); err != nil {
		return dto.TeamResponse{}, err
	}

	s.logger.Info().Uint("team_id", team.ID).Float64("jury_score", team.JuryScore).Msg("jury score updated")

	if s.notifier != nil {
		s.notifier.LeaderboardChanged(ctx)
	}

	return dto.NewTeamResponse(team), nil
}

func (s *teamService) Me(ctx context.Context, teamID uint) (dto.TeamResponse, error) {
	team, err := s.getActive(ctx, teamID)
	if err != nil {
		return dto.TeamResponse{}, err
	}

	response := dto.NewTeamResponse(team)

	if team.Role == models.RoleTeam {
		competitors, err := s.teams.List(ctx, repository.TeamFilter{
			ActiveOnly:   true,
			ExcludeRoles: []string{models.RoleAdmin, models.RoleMentor},
		})
		if err != nil {
			return dto.TeamResponse{}, err
		}

		points := make([]int, 0, len(competitors))
		for _, competitor := range competitors {
			points = append(points, competitor.Points)
		}
		ranks := CompetitionRanks(points)

		for i, competitor := range competitors {
			if competitor.ID == team.ID {
				rank := ranks[i]
				response.Rank = &rank
				break
			}
		}
	}

	return response, nil
}

func (s *teamService) getActive(ctx context.Context, id uint) (models.Team, error) {
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Team{}, ErrTeamNotFound
		}
		return models.Team{}, err
	}

	if !team.IsActive {
		return models.Team{}, ErrTeamNotFound
	}

	return team, nil
}

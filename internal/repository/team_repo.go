package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/openhack-labs/openhack-api/internal/models"
)

// TeamFilter narrows team queries.
type TeamFilter struct {
	ActiveOnly   bool
	Role         *string
	ExcludeRoles []string
}

// TeamRepository defines data operations for teams.
type TeamRepository interface {
	List(ctx context.Context, filter TeamFilter) ([]models.Team, error)
	GetByID(ctx context.Context, id uint) (models.Team, error)
	GetByName(ctx context.Context, name string) (models.Team, error)
	Create(ctx context.Context, team *models.Team) error
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, id uint) error
}

type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository instantiates the repository.
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) List(ctx context.Context, filter TeamFilter) ([]models.Team, error) {
	query := r.db.WithContext(ctx).Model(&models.Team{})

	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}

	if len(filter.ExcludeRoles) > 0 {
		query = query.Where("role NOT IN ?", filter.ExcludeRoles)
	}

	var teams []models.Team
	if err := query.Order("points DESC, name ASC").Find(&teams).Error; err != nil {
		return nil, err
	}

	return teams, nil
}

func (r *teamRepository) GetByID(ctx context.Context, id uint) (models.Team, error) {
	var team models.Team
	if err := r.db.WithContext(ctx).First(&team, id).Error; err != nil {
		return models.Team{}, err
	}

	return team, nil
}

func (r *teamRepository) GetByName(ctx context.Context, name string) (models.Team, error) {
	var team models.Team
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&team).Error; err != nil {
		return models.Team{}, err
	}

	return team, nil
}

func (r *teamRepository) Create(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).Create(team).Error
}

func (r *teamRepository) Update(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).Save(team).Error
}

func (r *teamRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Team{}, id).Error
}

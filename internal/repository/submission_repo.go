package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/openhack-labs/openhack-api/internal/models"
)

// SubmissionFilter narrows submission queries.
type SubmissionFilter struct {
	TeamID      *uint
	ChallengeID *uint
	Statuses    []string
	ScoredOnly  bool
	// OrderByScore sorts by raw score descending instead of recency.
	OrderByScore bool
}

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	Update(ctx context.Context, submission *models.Submission) error
	Delete(ctx context.Context, id uint) error
	DeleteByTeam(ctx context.Context, teamID uint) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Team").
		Preload("Challenge")
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.baseQuery(ctx)

	if filter.TeamID != nil {
		query = query.Where("team_id = ?", *filter.TeamID)
	}

	if filter.ChallengeID != nil {
		query = query.Where("challenge_id = ?", *filter.ChallengeID)
	}

	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}

	if filter.ScoredOnly {
		query = query.Where("score IS NOT NULL")
	}

	order := "created_at DESC"
	if filter.OrderByScore {
		order = "score DESC"
	}

	var submissions []models.Submission
	if err := query.Order(order).Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

func (r *submissionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Submission{}, id).Error
}

func (r *submissionRepository) DeleteByTeam(ctx context.Context, teamID uint) error {
	return r.db.WithContext(ctx).Where("team_id = ?", teamID).Delete(&models.Submission{}).Error
}

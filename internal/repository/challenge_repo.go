package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/openhack-labs/openhack-api/internal/models"
)

// ChallengeRepository defines data operations for challenges.
type ChallengeRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.Challenge, error)
	GetByID(ctx context.Context, id uint) (models.Challenge, error)
	Create(ctx context.Context, challenge *models.Challenge) error
	Update(ctx context.Context, challenge *models.Challenge) error
	// IncrementApprovedCount bumps the approval counter with a single atomic
	// statement and returns the post-increment value.
	IncrementApprovedCount(ctx context.Context, id uint) (int, error)
	TotalActivePoints(ctx context.Context) (int, error)
}

type challengeRepository struct {
	db *gorm.DB
}

// NewChallengeRepository instantiates the repository.
func NewChallengeRepository(db *gorm.DB) ChallengeRepository {
	return &challengeRepository{db: db}
}

func (r *challengeRepository) List(ctx context.Context, activeOnly bool) ([]models.Challenge, error) {
	query := r.db.WithContext(ctx).Model(&models.Challenge{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var challenges []models.Challenge
	if err := query.Order("id ASC").Find(&challenges).Error; err != nil {
		return nil, err
	}

	return challenges, nil
}

func (r *challengeRepository) GetByID(ctx context.Context, id uint) (models.Challenge, error) {
	var challenge models.Challenge
	if err := r.db.WithContext(ctx).First(&challenge, id).Error; err != nil {
		return models.Challenge{}, err
	}

	return challenge, nil
}

func (r *challengeRepository) Create(ctx context.Context, challenge *models.Challenge) error {
	return r.db.WithContext(ctx).Create(challenge).Error
}

func (r *challengeRepository) Update(ctx context.Context, challenge *models.Challenge) error {
	return r.db.WithContext(ctx).Save(challenge).Error
}

func (r *challengeRepository) IncrementApprovedCount(ctx context.Context, id uint) (int, error) {
	result := r.db.WithContext(ctx).Model(&models.Challenge{}).
		Where("id = ?", id).
		UpdateColumn("approved_submissions_count", gorm.Expr("approved_submissions_count + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var challenge models.Challenge
	if err := r.db.WithContext(ctx).Select("approved_submissions_count").First(&challenge, id).Error; err != nil {
		return 0, err
	}

	return challenge.ApprovedSubmissionsCount, nil
}

func (r *challengeRepository) TotalActivePoints(ctx context.Context) (int, error) {
	var total *int
	err := r.db.WithContext(ctx).Model(&models.Challenge{}).
		Where("is_active = ?", true).
		Select("SUM(points)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}

	return *total, nil
}

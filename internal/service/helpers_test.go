package service

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/openhack-labs/openhack-api/internal/models"
	"github.com/openhack-labs/openhack-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func listByChallenge(id uint) repository.SubmissionFilter {
	return repository.SubmissionFilter{
		ChallengeID: &id,
		Statuses:    []string{models.SubmissionStatusApproved},
	}
}

type recordingNotifier struct {
	calls int
}

func (n *recordingNotifier) LeaderboardChanged(context.Context) {
	n.calls++
}

type memoryTeamRepo struct {
	teams  map[uint]models.Team
	nextID uint
}

func newMemoryTeamRepo() *memoryTeamRepo {
	return &memoryTeamRepo{teams: make(map[uint]models.Team), nextID: 1}
}

func (m *memoryTeamRepo) List(ctx context.Context, filter repository.TeamFilter) ([]models.Team, error) {
	results := make([]models.Team, 0, len(m.teams))
	for _, team := range m.teams {
		if filter.ActiveOnly && !team.IsActive {
			continue
		}
		if filter.Role != nil && team.Role != *filter.Role {
			continue
		}
		excluded := false
		for _, role := range filter.ExcludeRoles {
			if team.Role == role {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}
		results = append(results, team)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Points != results[j].Points {
			return results[i].Points > results[j].Points
		}
		return results[i].Name < results[j].Name
	})

	return results, nil
}

func (m *memoryTeamRepo) GetByID(ctx context.Context, id uint) (models.Team, error) {
	team, ok := m.teams[id]
	if !ok {
		return models.Team{}, gorm.ErrRecordNotFound
	}
	return team, nil
}

func (m *memoryTeamRepo) GetByName(ctx context.Context, name string) (models.Team, error) {
	for _, team := range m.teams {
		if team.Name == name {
			return team, nil
		}
	}
	return models.Team{}, gorm.ErrRecordNotFound
}

func (m *memoryTeamRepo) Create(ctx context.Context, team *models.Team) error {
	team.ID = m.nextID
	team.CreatedAt = time.Now()
	team.UpdatedAt = time.Now()
	m.teams[m.nextID] = *team
	m.nextID++
	return nil
}

func (m *memoryTeamRepo) Update(ctx context.Context, team *models.Team) error {
	if _, ok := m.teams[team.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	team.UpdatedAt = time.Now()
	m.teams[team.ID] = *team
	return nil
}

func (m *memoryTeamRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.teams[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.teams, id)
	return nil
}

type memoryChallengeRepo struct {
	challenges map[uint]models.Challenge
	nextID     uint
}

func newMemoryChallengeRepo() *memoryChallengeRepo {
	return &memoryChallengeRepo{challenges: make(map[uint]models.Challenge), nextID: 1}
}

func (m *memoryChallengeRepo) List(ctx context.Context, activeOnly bool) ([]models.Challenge, error) {
	results := make([]models.Challenge, 0, len(m.challenges))
	for _, challenge := range m.challenges {
		if activeOnly && !challenge.IsActive {
			continue
		}
		results = append(results, challenge)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryChallengeRepo) GetByID(ctx context.Context, id uint) (models.Challenge, error) {
	challenge, ok := m.challenges[id]
	if !ok {
		return models.Challenge{}, gorm.ErrRecordNotFound
	}
	return challenge, nil
}

func (m *memoryChallengeRepo) Create(ctx context.Context, challenge *models.Challenge) error {
	challenge.ID = m.nextID
	challenge.CreatedAt = time.Now()
	challenge.UpdatedAt = time.Now()
	m.challenges[m.nextID] = *challenge
	m.nextID++
	return nil
}

func (m *memoryChallengeRepo) Update(ctx context.Context, challenge *models.Challenge) error {
	if _, ok := m.challenges[challenge.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	challenge.UpdatedAt = time.Now()
	m.challenges[challenge.ID] = *challenge
	return nil
}

func (m *memoryChallengeRepo) IncrementApprovedCount(ctx context.Context, id uint) (int, error) {
	challenge, ok := m.challenges[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	challenge.ApprovedSubmissionsCount++
	m.challenges[id] = challenge
	return challenge.ApprovedSubmissionsCount, nil
}

func (m *memoryChallengeRepo) TotalActivePoints(ctx context.Context) (int, error) {
	total := 0
	for _, challenge := range m.challenges {
		if challenge.IsActive {
			total += challenge.Points
		}
	}
	return total, nil
}

type memorySubmissionRepo struct {
	submissions map[uint]models.Submission
	nextID      uint
	teams       *memoryTeamRepo
	challenges  *memoryChallengeRepo
}

func newMemorySubmissionRepo(teams *memoryTeamRepo, challenges *memoryChallengeRepo) *memorySubmissionRepo {
	return &memorySubmissionRepo{
		submissions: make(map[uint]models.Submission),
		nextID:      1,
		teams:       teams,
		challenges:  challenges,
	}
}

func (m *memorySubmissionRepo) hydrate(submission models.Submission) models.Submission {
	if m.teams != nil {
		if team, ok := m.teams.teams[submission.TeamID]; ok {
			submission.Team = team
		}
	}
	if m.challenges != nil {
		if challenge, ok := m.challenges.challenges[submission.ChallengeID]; ok {
			submission.Challenge = challenge
		}
	}
	return submission
}

func (m *memorySubmissionRepo) List(ctx context.Context, filter repository.SubmissionFilter) ([]models.Submission, error) {
	results := make([]models.Submission, 0, len(m.submissions))
	for _, submission := range m.submissions {
		if filter.TeamID != nil && submission.TeamID != *filter.TeamID {
			continue
		}
		if filter.ChallengeID != nil && submission.ChallengeID != *filter.ChallengeID {
			continue
		}
		if len(filter.Statuses) > 0 {
			matched := false
			for _, status := range filter.Statuses {
				if submission.Status == status {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		if filter.ScoredOnly && submission.Score == nil {
			continue
		}
		results = append(results, m.hydrate(submission))
	}

	if filter.OrderByScore {
		sort.Slice(results, func(i, j int) bool {
			var a, b float64
			if results[i].Score != nil {
				a = *results[i].Score
			}
			if results[j].Score != nil {
				b = *results[j].Score
			}
			return a > b
		})
	} else {
		sort.Slice(results, func(i, j int) bool { return results[i].ID > results[j].ID })
	}

	return results, nil
}

func (m *memorySubmissionRepo) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	submission, ok := m.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return m.hydrate(submission), nil
}

func (m *memorySubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	submission.ID = m.nextID
	submission.CreatedAt = time.Now()
	submission.UpdatedAt = time.Now()
	m.submissions[m.nextID] = *submission
	m.nextID++
	return nil
}

func (m *memorySubmissionRepo) Update(ctx context.Context, submission *models.Submission) error {
	if _, ok := m.submissions[submission.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	submission.UpdatedAt = time.Now()
	stored := *submission
	stored.Team = models.Team{}
	stored.Challenge = models.Challenge{}
	m.submissions[submission.ID] = stored
	return nil
}

func (m *memorySubmissionRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.submissions[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.submissions, id)
	return nil
}

func (m *memorySubmissionRepo) DeleteByTeam(ctx context.Context, teamID uint) error {
	for id, submission := range m.submissions {
		if submission.TeamID == teamID {
			delete(m.submissions, id)
		}
	}
	return nil
}

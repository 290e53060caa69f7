package services

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"barrierfree-backend/internal/apperrors"
	"barrierfree-backend/internal/models"
	"barrierfree-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var severities = []string{"low", "medium", "high"}

// DemoInitResult counts the rows written by InitDemo
type DemoInitResult struct {
	Users   int         `json:"users"`
	Reports int         `json:"reports"`
	Teams   int         `json:"teams"`
	Quests  *SeedResult `json:"quests,omitempty"`
}

// DemoResetResult counts the rows removed by ResetDemo
type DemoResetResult struct {
	Users   int `json:"users"`
	Reports int `json:"reports"`
	Teams   int `json:"teams"`
}

// DemoAccount is the public view of a demo user
type DemoAccount struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	Level    int    `json:"level"`
	XP       int    `json:"xp"`
}

// DemoService seeds and removes demonstration data
type DemoService struct {
	userRepo     *repository.UserRepository
	reportRepo   *repository.ReportRepository
	teamRepo     *repository.TeamRepository
	questService *QuestService
	now          func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewDemoService creates a new demo service
func NewDemoService(
	userRepo *repository.UserRepository,
	reportRepo *repository.ReportRepository,
	teamRepo *repository.TeamRepository,
	questService *QuestService,
) *DemoService {
	return &DemoService{
		userRepo:     userRepo,
		reportRepo:   reportRepo,
		teamRepo:     teamRepo,
		questService: questService,
		now:          time.Now,
		rng:          rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
	}
}

// InitDemo creates demo users with their reports, a shared team and the
// sample quests. It refuses to run twice.
func (s *DemoService) InitDemo(ctx context.Context) (*DemoInitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.userRepo.ListByEmailSuffix(ctx, demoEmailSuffix)
	if err != nil {
		return nil, apperrors.Upstream("failed to check demo users", err)
	}
	if len(existing) > 0 {
		return nil, apperrors.Conflict("demo data already exists")
	}

	now := s.now().UTC()
	users := make([]*models.User, 0, len(demoUsers))
	for _, du := range demoUsers {
		users = append(users, &models.User{
			ID:          uuid.New().String(),
			Email:       du.Email,
			Name:        du.Name,
			Nickname:    du.Nickname,
			Provider:    models.ProviderGoogle,
			AvatarItems: []string{},
			XP:          du.XP,
			Level:       models.LevelForXP(du.XP),
			Titles:      slices.Clone(du.Titles),
			CreatedAt:   now,
			LastLogin:   now,
		})
	}

	result := &DemoInitResult{}
	result.Users, err = s.userRepo.CreateMany(ctx, users)
	if err != nil {
		return result, apperrors.Upstream("failed to create demo users", err)
	}

	reports := s.demoReports(users, now)
	result.Reports, err = s.reportRepo.CreateMany(ctx, reports)
	if err != nil {
		return result, apperrors.Upstream("failed to create demo reports", err)
	}

	memberIDs := make([]string, len(users))
	totalXP := 0
	for i, u := range users {
		memberIDs[i] = u.ID
		totalXP += u.XP
	}

	team := &models.Team{
		ID:          uuid.New().String(),
		Name:        demoTeamName,
		Description: demoTeamDescription,
		LeaderID:    users[0].ID,
		MemberIDs:   memberIDs,
		TotalXP:     totalXP,
		Level:       models.TeamLevelForXP(totalXP),
		IsPublic:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return result, apperrors.Upstream("failed to create demo team", err)
	}
	result.Teams = 1

	seeded, err := s.questService.SeedSampleQuests(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to seed sample quests for demo")
	}
	result.Quests = seeded

	log.Info().
		Int("users", result.Users).
		Int("reports", result.Reports).
		Msg("Demo data created")

	return result, nil
}

// demoReports generates 15 to 24 reports per user spread over the last 30 days
func (s *DemoService) demoReports(users []*models.User, now time.Time) []*models.Report {
	var reports []*models.Report
	for _, u := range users {
		n := 15 + s.rng.IntN(10)
		for range n {
			isBarrier := s.rng.Float64() > 0.3
			loc := demoLocations[s.rng.IntN(len(demoLocations))]

			reportType := models.ReportTypeBarrier
			sample := barrierSamples[s.rng.IntN(len(barrierSamples))]
			analysis := &models.AIAnalysis{
				DetectedCategory: sample.Category,
				Severity:         severities[s.rng.IntN(len(severities))],
				Description:      sample.Description,
				Tags:             []string{"접근성", "장애물"},
			}
			if !isBarrier {
				reportType = models.ReportTypePraise
				sample = praiseSamples[s.rng.IntN(len(praiseSamples))]
				analysis = &models.AIAnalysis{
					DetectedCategory: sample.Category,
					Description:      sample.Description,
					Tags:             []string{"친절", "접근가능"},
				}
			}

			createdAt := now.AddDate(0, 0, -s.rng.IntN(30))
			report := &models.Report{
				ID:              uuid.New().String(),
				UserID:          u.ID,
				Type:            reportType,
				Category:        sample.Category,
				Latitude:        loc.Lat,
				Longitude:       loc.Lng,
				Address:         loc.Address,
				City:            loc.City,
				Description:     sample.Description,
				MediaURLs:       []string{},
				AIAnalysis:      analysis,
				ConfidenceScore: 85 + s.rng.IntN(16),
				VerifyCount:     s.rng.IntN(10),
				Status:          models.ReportStatusActive,
				AdminStatus:     models.AdminStatusPending,
				CreatedAt:       createdAt,
				UpdatedAt:       createdAt,
			}
			if s.rng.Float64() > 0.7 {
				report.Status = models.ReportStatusResolved
				report.ResolvedBy = u.ID
				resolvedAt := createdAt
				report.ResolvedAt = &resolvedAt
			}

			reports = append(reports, report)
		}
	}
	return reports
}

// ResetDemo removes demo users, their reports and the demo team
func (s *DemoService) ResetDemo(ctx context.Context) (*DemoResetResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.userRepo.ListByEmailSuffix(ctx, demoEmailSuffix)
	if err != nil {
		return nil, apperrors.Upstream("failed to list demo users", err)
	}

	result := &DemoResetResult{}
	if len(users) == 0 {
		return result, nil
	}

	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}

	result.Reports, err = s.reportRepo.DeleteByUserIDs(ctx, ids)
	if err != nil {
		return result, apperrors.Upstream("failed to delete demo reports", err)
	}

	result.Teams, err = s.teamRepo.DeleteByName(ctx, demoTeamName)
	if err != nil {
		return result, apperrors.Upstream("failed to delete demo team", err)
	}

	result.Users, err = s.userRepo.DeleteByEmailSuffix(ctx, demoEmailSuffix)
	if err != nil {
		return result, apperrors.Upstream("failed to delete demo users", err)
	}

	log.Info().
		Int("users", result.Users).
		Int("reports", result.Reports).
		Int("teams", result.Teams).
		Msg("Demo data removed")

	return result, nil
}

// Accounts lists the demo users
func (s *DemoService) Accounts(ctx context.Context) ([]DemoAccount, error) {
	users, err := s.userRepo.ListByEmailSuffix(ctx, demoEmailSuffix)
	if err != nil {
		return nil, apperrors.Upstream("failed to list demo users", err)
	}

	accounts := make([]DemoAccount, len(users))
	for i, u := range users {
		accounts[i] = DemoAccount{
			Email:    u.Email,
			Name:     u.Name,
			Nickname: u.Nickname,
			Level:    u.Level,
			XP:       u.XP,
		}
	}
	return accounts, nil
}

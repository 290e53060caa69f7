package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"barrierfree-backend/internal/apperrors"
	"barrierfree-backend/internal/models"
	"barrierfree-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CreateQuestInput is the payload for a new quest
type CreateQuestInput struct {
	Type          string     `json:"type" validate:"omitempty,oneof=daily weekly special"`
	Title         string     `json:"title" validate:"required,max=100"`
	Description   string     `json:"description" validate:"max=500"`
	TriggerAction string     `json:"trigger_action" validate:"required,oneof=report_created praise_created report_verified barrier_resolved"`
	TargetCount   int        `json:"target_count" validate:"gte=0"`
	XPReward      *int       `json:"xp_reward" validate:"omitempty,gte=0"`
	PointReward   int        `json:"point_reward" validate:"gte=0"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
}

// SeedResult reports how many sample quests were written
type SeedResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// QuestService exposes the quest catalog and per-user progress
type QuestService struct {
	questRepo     *repository.QuestRepository
	userQuestRepo *repository.UserQuestRepository
	progress      *ProgressEngine
	now           func() time.Time
}

// NewQuestService creates a new quest service
func NewQuestService(
	questRepo *repository.QuestRepository,
	userQuestRepo *repository.UserQuestRepository,
	progress *ProgressEngine,
) *QuestService {
	return &QuestService{
		questRepo:     questRepo,
		userQuestRepo: userQuestRepo,
		progress:      progress,
		now:           time.Now,
	}
}

// ListActiveQuests returns active quests; when userID is set each quest carries
// that user's progress, zero when the user has not started it
func (s *QuestService) ListActiveQuests(ctx context.Context, userID string) ([]models.QuestWithProgress, error) {
	quests, err := s.questRepo.ListActive(ctx)
	if err != nil {
		return nil, apperrors.Upstream("failed to list quests", err)
	}

	var progress map[string]*models.UserQuest
	if userID != "" {
		progress, err = s.userQuestRepo.ListByUser(ctx, userID)
		if err != nil {
			return nil, apperrors.Upstream("failed to load quest progress", err)
		}
	}

	out := make([]models.QuestWithProgress, 0, len(quests))
	for _, q := range quests {
		item := models.QuestWithProgress{Quest: *q}
		if uq, ok := progress[q.ID]; ok {
			item.UserProgress = uq.Progress
			item.UserCompleted = uq.Completed
			item.UserClaimed = uq.Claimed
		}
		out = append(out, item)
	}

	return out, nil
}

// CreateQuest creates a quest, filling defaults for omitted fields
func (s *QuestService) CreateQuest(ctx context.Context, in CreateQuestInput) (*models.Quest, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	quest := &models.Quest{
		ID:            uuid.New().String(),
		Type:          in.Type,
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		TriggerAction: in.TriggerAction,
		TargetCount:   in.TargetCount,
		XPReward:      50,
		PointReward:   in.PointReward,
		StartDate:     now,
		EndDate:       in.EndDate,
		Status:        models.QuestStatusActive,
		CreatedAt:     now,
	}
	if quest.Type == "" {
		quest.Type = models.QuestTypeDaily
	}
	if quest.TargetCount == 0 {
		quest.TargetCount = 1
	}
	if in.XPReward != nil {
		quest.XPReward = *in.XPReward
	}
	if in.StartDate != nil {
		quest.StartDate = in.StartDate.UTC()
	}
	if quest.EndDate != nil && quest.EndDate.Before(quest.StartDate) {
		return nil, apperrors.Invalid("end_date must be after start_date")
	}

	if err := s.questRepo.Create(ctx, quest); err != nil {
		return nil, apperrors.Upstream("failed to save quest", err)
	}

	log.Info().
		Str("quest_id", quest.ID).
		Str("trigger_action", quest.TriggerAction).
		Msg("Quest created")

	return quest, nil
}

// ClaimReward pays out a completed quest
func (s *QuestService) ClaimReward(ctx context.Context, userID, questID string) (*ClaimResult, error) {
	if userID == "" {
		return nil, apperrors.Unauthenticated("authentication required")
	}
	if questID == "" {
		return nil, apperrors.Invalid("quest_id is required")
	}
	return s.progress.ClaimReward(ctx, userID, questID)
}

type sampleQuest struct {
	Type        string
	Title       string
	Description string
	Action      string
	Target      int
	XP          int
	Points      int
}

var sampleQuests = []sampleQuest{
	{models.QuestTypeDaily, "첫 리포트 작성", "오늘 배리어 리포트를 1개 작성하세요", models.ActionReportCreated, 1, 20, 10},
	{models.QuestTypeDaily, "일일 검증왕", "오늘 다른 사람의 리포트를 3개 검증하세요", models.ActionReportVerified, 3, 30, 15},
	{models.QuestTypeDaily, "칭찬 전파자", "오늘 칭찬 리포트를 1개 작성하세요", models.ActionPraiseCreated, 1, 25, 15},
	{models.QuestTypeWeekly, "주간 활동가", "이번 주에 리포트를 10개 작성하세요", models.ActionReportCreated, 10, 100, 50},
	{models.QuestTypeWeekly, "주간 검증 마스터", "이번 주에 리포트를 20개 검증하세요", models.ActionReportVerified, 20, 150, 75},
	{models.QuestTypeWeekly, "문제 해결사", "해결된 배리어를 5개 확인하세요", models.ActionBarrierResolved, 5, 200, 100},
	{models.QuestTypeSpecial, "배리어프리 개척자", "총 50개의 리포트를 작성하세요", models.ActionReportCreated, 50, 500, 300},
	{models.QuestTypeSpecial, "전설의 검증자", "총 100개의 리포트를 검증하세요", models.ActionReportVerified, 100, 1000, 500},
}

// SeedSampleQuests writes the built-in quest catalog, skipping titles that
// already exist among active quests
func (s *QuestService) SeedSampleQuests(ctx context.Context) (*SeedResult, error) {
	existing, err := s.questRepo.ListActive(ctx)
	if err != nil {
		return nil, apperrors.Upstream("failed to list quests", err)
	}
	titles := make(map[string]bool, len(existing))
	for _, q := range existing {
		titles[q.Title] = true
	}

	now := s.now().UTC()
	result := &SeedResult{}
	var quests []*models.Quest
	for _, sq := range sampleQuests {
		if titles[sq.Title] {
			result.Skipped++
			continue
		}

		var end *time.Time
		switch sq.Type {
		case models.QuestTypeDaily:
			t := now.AddDate(0, 0, 1)
			end = &t
		case models.QuestTypeWeekly:
			t := now.AddDate(0, 0, 7)
			end = &t
		}

		quests = append(quests, &models.Quest{
			ID:            uuid.New().String(),
			Type:          sq.Type,
			Title:         sq.Title,
			Description:   sq.Description,
			TriggerAction: sq.Action,
			TargetCount:   sq.Target,
			XPReward:      sq.XP,
			PointReward:   sq.Points,
			StartDate:     now,
			EndDate:       end,
			Status:        models.QuestStatusActive,
			CreatedAt:     now,
		})
	}

	if len(quests) == 0 {
		return result, nil
	}

	n, err := s.questRepo.CreateMany(ctx, quests)
	result.Created = n
	if err != nil {
		return result, apperrors.Upstream(fmt.Sprintf("failed to seed quests after %d", n), err)
	}

	log.Info().Int("created", n).Int("skipped", result.Skipped).Msg("Sample quests seeded")

	return result, nil
}

// ExpireQuests deactivates active quests whose end date has passed
func (s *QuestService) ExpireQuests(ctx context.Context, now time.Time) (int, error) {
	quests, err := s.questRepo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list quests: %w", err)
	}

	expired := 0
	for _, q := range quests {
		if q.EndDate == nil || q.EndDate.After(now) {
			continue
		}
		if err := s.questRepo.SetStatus(ctx, q.ID, models.QuestStatusInactive); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return expired, err
		}
		expired++
	}

	if expired > 0 {
		log.Info().Int("expired", expired).Msg("Quests expired")
	}

	return expired, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"barrierfree-backend/internal/apperrors"
	"barrierfree-backend/internal/models"
	"barrierfree-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// XPResult is the user's state after an XP grant
type XPResult struct {
	XP        int  `json:"xp"`
	Level     int  `json:"level"`
	Points    int  `json:"points"`
	LeveledUp bool `json:"leveled_up"`
}

// ClaimResult describes a paid out quest reward
type ClaimResult struct {
	XP        int `json:"xp"`
	Points    int `json:"points"`
	NewXP     int `json:"new_xp"`
	NewLevel  int `json:"new_level"`
	NewPoints int `json:"new_points"`
}

// ProgressEngine owns XP, levels and quest progress
type ProgressEngine struct {
	userRepo      *repository.UserRepository
	questRepo     *repository.QuestRepository
	userQuestRepo *repository.UserQuestRepository
	notifier      Notifier
	now           func() time.Time
}

// NewProgressEngine creates a new progress engine
func NewProgressEngine(
	userRepo *repository.UserRepository,
	questRepo *repository.QuestRepository,
	userQuestRepo *repository.UserQuestRepository,
	notifier Notifier,
) *ProgressEngine {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &ProgressEngine{
		userRepo:      userRepo,
		questRepo:     questRepo,
		userQuestRepo: userQuestRepo,
		notifier:      notifier,
		now:           time.Now,
	}
}

// GrantXP adds amount to the user's XP and recomputes the level
func (e *ProgressEngine) GrantXP(ctx context.Context, userID string, amount int) (*XPResult, error) {
	return e.grant(ctx, userID, amount, 0)
}

func (e *ProgressEngine) grant(ctx context.Context, userID string, xp, points int) (*XPResult, error) {
	user, err := e.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Wrap(err, "failed to load user")
	}

	newXP := user.XP + xp
	newLevel := models.LevelForXP(newXP)
	newPoints := user.Points + points

	if err := e.userRepo.UpdateProgress(ctx, userID, newXP, newLevel, newPoints); err != nil {
		return nil, apperrors.Wrap(err, "failed to update user progress")
	}

	result := &XPResult{
		XP:        newXP,
		Level:     newLevel,
		Points:    newPoints,
		LeveledUp: newLevel > user.Level,
	}

	if result.LeveledUp {
		log.Info().
			Str("user_id", userID).
			Int("level", newLevel).
			Msg("User leveled up")
		e.notifier.Notify(ctx, userID, NotificationLevelUp,
			"레벨 업!", fmt.Sprintf("레벨 %d에 도달했습니다.", newLevel), "")
	}

	return result, nil
}

// Advance increments the user's progress on every active quest triggered by
// action and returns the quests that completed with this step. A failure on
// one quest is logged and does not stop the others.
func (e *ProgressEngine) Advance(ctx context.Context, userID, action string) ([]*models.UserQuest, error) {
	if !models.ValidAction(action) {
		return nil, apperrors.Invalid(fmt.Sprintf("unknown quest action %q", action))
	}

	quests, err := e.questRepo.ListActive(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list active quests")
	}

	var completed []*models.UserQuest
	for _, quest := range quests {
		if quest.TriggerAction != action {
			continue
		}

		uq, done, err := e.step(ctx, userID, quest)
		if err != nil {
			log.Error().
				Err(err).
				Str("user_id", userID).
				Str("quest_id", quest.ID).
				Msg("Failed to advance quest")
			continue
		}
		if done {
			completed = append(completed, uq)
			e.notifier.Notify(ctx, userID, NotificationQuestComplete,
				"퀘스트 완료!", fmt.Sprintf("'%s' 퀘스트를 완료했습니다. 보상을 받으세요.", quest.Title), "/quests")
		}
	}

	return completed, nil
}

// step applies one unit of progress and reports whether the quest completed now
func (e *ProgressEngine) step(ctx context.Context, userID string, quest *models.Quest) (*models.UserQuest, bool, error) {
	now := e.now().UTC()

	uq, err := e.userQuestRepo.Get(ctx, userID, quest.ID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, false, err
		}
		uq = &models.UserQuest{
			ID:        uuid.New().String(),
			UserID:    userID,
			QuestID:   quest.ID,
			Progress:  1,
			StartedAt: now,
		}
		if uq.Progress >= quest.TargetCount {
			uq.Completed = true
			uq.CompletedAt = &now
		}
		if err := e.userQuestRepo.Create(ctx, uq); err != nil {
			return nil, false, err
		}
		return uq, uq.Completed, nil
	}

	if uq.Completed {
		return uq, false, nil
	}

	uq.Progress++
	if uq.Progress >= quest.TargetCount {
		uq.Completed = true
		uq.CompletedAt = &now
	}
	if err := e.userQuestRepo.UpdateProgress(ctx, uq); err != nil {
		return nil, false, err
	}

	return uq, uq.Completed, nil
}

// ClaimReward pays out a completed quest exactly once. The claim is recorded
// before XP and points are granted so a retry after a partial failure cannot
// pay twice.
func (e *ProgressEngine) ClaimReward(ctx context.Context, userID, questID string) (*ClaimResult, error) {
	quest, err := e.questRepo.GetByID(ctx, questID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("quest not found")
		}
		return nil, apperrors.Wrap(err, "failed to load quest")
	}
	if quest.Status != models.QuestStatusActive {
		return nil, apperrors.NotFound("quest not found")
	}

	uq, err := e.userQuestRepo.Get(ctx, userID, questID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Invalid("quest not completed yet")
		}
		return nil, apperrors.Wrap(err, "failed to load quest progress")
	}

	if !uq.Completed {
		return nil, apperrors.Invalid("quest not completed yet")
	}
	if uq.Claimed {
		return nil, apperrors.Conflict("reward already claimed")
	}

	claimedAt := e.now().UTC()
	uq.Claimed = true
	uq.ClaimedAt = &claimedAt
	if err := e.userQuestRepo.MarkClaimed(ctx, uq); err != nil {
		return nil, apperrors.Wrap(err, "failed to mark reward claimed")
	}

	res, err := e.grant(ctx, userID, quest.XPReward, quest.PointReward)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", userID).
		Str("quest_id", questID).
		Int("xp", quest.XPReward).
		Int("points", quest.PointReward).
		Msg("Quest reward claimed")

	return &ClaimResult{
		XP:        quest.XPReward,
		Points:    quest.PointReward,
		NewXP:     res.XP,
		NewLevel:  res.Level,
		NewPoints: res.Points,
	}, nil
}

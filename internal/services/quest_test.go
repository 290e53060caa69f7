package services

import (
	"context"
	"testing"
	"time"

	"barrierfree-backend/internal/apperrors"
	"barrierfree-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestQuest_ProgressAndClaim(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	u := env.signIn(t, "u", "u@example.com")
	quest, err := env.questSvc.CreateQuest(ctx, CreateQuestInput{
		Title:         "두 번 제보하기",
		TriggerAction: models.ActionReportCreated,
		TargetCount:   2,
		XPReward:      intPtr(40),
		PointReward:   7,
	})
	require.NoError(t, err)
	assert.Equal(t, models.QuestTypeDaily, quest.Type)

	_, err = env.questSvc.ClaimReward(ctx, u.ID, quest.ID)
	assertCode(t, err, apperrors.CodeInvalidArgument)

	_, err = env.reportSvc.CreateReport(ctx, u.ID, barrierInput(37.2, 127))
	require.NoError(t, err)

	list, err := env.questSvc.ListActiveQuests(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].UserProgress)
	assert.False(t, list[0].UserCompleted)

	_, err = env.questSvc.ClaimReward(ctx, u.ID, quest.ID)
	assertCode(t, err, apperrors.CodeInvalidArgument)

	_, err = env.reportSvc.CreateReport(ctx, u.ID, barrierInput(37.2, 127))
	require.NoError(t, err)
	assert.Contains(t, env.notifier.kinds(u.ID), NotificationQuestComplete)

	res, err := env.questSvc.ClaimReward(ctx, u.ID, quest.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, res.XP)
	assert.Equal(t, 7, res.Points)
	assert.Equal(t, 20+40, res.NewXP)
	assert.Equal(t, 1, res.NewLevel)
	assert.Equal(t, 7, res.NewPoints)

	stored := env.user(t, u.ID)
	assert.Equal(t, 60, stored.XP)
	assert.Equal(t, 7, stored.Points)

	_, err = env.questSvc.ClaimReward(ctx, u.ID, quest.ID)
	assertCode(t, err, apperrors.CodeConflict)
	assert.Equal(t, 60, env.user(t, u.ID).XP)

	list, err = env.questSvc.ListActiveQuests(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, list[0].UserCompleted)
	assert.True(t, list[0].UserClaimed)
	assert.Equal(t, 2, list[0].UserProgress)
}

func TestQuest_ProgressStopsAtCompletion(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	u := env.signIn(t, "u", "u@example.com")

	quest, err := env.questSvc.CreateQuest(ctx, CreateQuestInput{
		Title:         "칭찬 한 번",
		TriggerAction: models.ActionPraiseCreated,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, quest.TargetCount)
	assert.Equal(t, 50, quest.XPReward)

	for range 3 {
		_, err := env.progress.Advance(ctx, u.ID, models.ActionPraiseCreated)
		require.NoError(t, err)
	}

	uq, err := env.userQuests.Get(ctx, u.ID, quest.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, uq.Progress)
	assert.True(t, uq.Completed)
	assert.NotNil(t, uq.CompletedAt)
}

func TestQuest_OnlyMatchingActionAdvances(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	u := env.signIn(t, "u", "u@example.com")

	verifyQuest, err := env.questSvc.CreateQuest(ctx, CreateQuestInput{
		Title: "검증", TriggerAction: models.ActionReportVerified, TargetCount: 3,
	})
	require.NoError(t, err)

	_, err = env.progress.Advance(ctx, u.ID, models.ActionReportCreated)
	require.NoError(t, err)

	list, err := env.questSvc.ListActiveQuests(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, verifyQuest.ID, list[0].ID)
	assert.Equal(t, 0, list[0].UserProgress)

	_, err = env.progress.Advance(ctx, u.ID, "unknown")
	assertCode(t, err, apperrors.CodeInvalidArgument)
}

func TestQuest_ClaimUnknownOrInactive(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	u := env.signIn(t, "u", "u@example.com")

	_, err := env.questSvc.ClaimReward(ctx, u.ID, "missing")
	assertCode(t, err, apperrors.CodeNotFound)

	quest, err := env.questSvc.CreateQuest(ctx, CreateQuestInput{Title: "q", TriggerAction: models.ActionReportCreated})
	require.NoError(t, err)
	require.NoError(t, env.quests.SetStatus(ctx, quest.ID, models.QuestStatusInactive))

	_, err = env.questSvc.ClaimReward(ctx, u.ID, quest.ID)
	assertCode(t, err, apperrors.CodeNotFound)

	_, err = env.questSvc.ClaimReward(ctx, "", quest.ID)
	assertCode(t, err, apperrors.CodeUnauthenticated)
}

func TestQuest_AnonymousCatalog(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.questSvc.CreateQuest(ctx, CreateQuestInput{Title: "q", TriggerAction: models.ActionReportCreated})
	require.NoError(t, err)

	list, err := env.questSvc.ListActiveQuests(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 0, list[0].UserProgress)
	assert.False(t, list[0].UserClaimed)
}

func TestQuest_CreateValidation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.questSvc.CreateQuest(ctx, CreateQuestInput{TriggerAction: models.ActionReportCreated})
	assertCode(t, err, apperrors.CodeInvalidArgument)

	_, err = env.questSvc.CreateQuest(ctx, CreateQuestInput{Title: "q", TriggerAction: "login"})
	assertCode(t, err, apperrors.CodeInvalidArgument)

	past := time.Now().Add(-time.Hour)
	_, err = env.questSvc.CreateQuest(ctx, CreateQuestInput{Title: "q", TriggerAction: models.ActionReportCreated, EndDate: &past})
	assertCode(t, err, apperrors.CodeInvalidArgument)
}

func TestQuest_SeedSampleQuestsIsIdempotent(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	res, err := env.questSvc.SeedSampleQuests(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(sampleQuests), res.Created)
	assert.Equal(t, 0, res.Skipped)

	res, err = env.questSvc.SeedSampleQuests(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, len(sampleQuests), res.Skipped)

	list, err := env.questSvc.ListActiveQuests(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list, len(sampleQuests))

	for _, q := range list {
		assert.True(t, models.ValidAction(q.TriggerAction), q.Title)
		if q.Type == models.QuestTypeSpecial {
			assert.Nil(t, q.EndDate, q.Title)
		} else {
			assert.NotNil(t, q.EndDate, q.Title)
		}
	}
}

func TestQuest_ExpireQuests(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.questSvc.SeedSampleQuests(ctx)
	require.NoError(t, err)

	expired, err := env.questSvc.ExpireQuests(ctx, time.Now().Add(2*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, expired)

	expired, err = env.questSvc.ExpireQuests(ctx, time.Now().Add(30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, expired)

	list, err := env.questSvc.ListActiveQuests(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestGrantXP_LevelUp(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	u := env.signIn(t, "u", "u@example.com")

	res, err := env.progress.GrantXP(ctx, u.ID, 99)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Level)
	assert.False(t, res.LeveledUp)

	res, err = env.progress.GrantXP(ctx, u.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 100, res.XP)
	assert.Equal(t, 2, res.Level)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, []string{NotificationLevelUp}, env.notifier.kinds(u.ID))

	_, err = env.progress.GrantXP(ctx, "missing", 10)
	assertCode(t, err, apperrors.CodeNotFound)
}

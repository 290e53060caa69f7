package services

import (
	"context"
	"math/rand/v2"
	"testing"

	"barrierfree-backend/internal/apperrors"
	"barrierfree-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemo_InitAndReset(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.demoSvc.rng = rand.New(rand.NewPCG(1, 2))

	regular := env.signIn(t, "regular", "regular@example.com")
	_, err := env.reportSvc.CreateReport(ctx, regular.ID, barrierInput(37.2, 127))
	require.NoError(t, err)

	res, err := env.demoSvc.InitDemo(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(demoUsers), res.Users)
	assert.GreaterOrEqual(t, res.Reports, 15*len(demoUsers))
	assert.LessOrEqual(t, res.Reports, 24*len(demoUsers))
	assert.Equal(t, 1, res.Teams)
	require.NotNil(t, res.Quests)
	assert.Equal(t, len(sampleQuests), res.Quests.Created)

	reports, err := env.reportSvc.ListReports(ctx, ReportFilter{})
	require.NoError(t, err)
	assert.Len(t, reports, res.Reports+1)
	for _, r := range reports {
		assert.True(t, models.ValidCategory(r.Type, r.Category), r.Category)
		assert.GreaterOrEqual(t, r.ConfidenceScore, 0)
		assert.LessOrEqual(t, r.ConfidenceScore, 100)
	}

	teams, err := env.teamSvc.ListTeams(ctx, TeamFilter{Search: demoTeamName})
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, 850+450+1200, teams[0].TotalXP)
	assert.Equal(t, 3, teams[0].Level)
	assert.Len(t, teams[0].MemberIDs, 3)

	accounts, err := env.demoSvc.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, "접근성지킴이", accounts[0].Nickname)
	assert.Equal(t, 9, accounts[0].Level)

	_, err = env.demoSvc.InitDemo(ctx)
	assertCode(t, err, apperrors.CodeConflict)

	reset, err := env.demoSvc.ResetDemo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, reset.Users)
	assert.Equal(t, res.Reports, reset.Reports)
	assert.Equal(t, 1, reset.Teams)

	reports, err = env.reportSvc.ListReports(ctx, ReportFilter{})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, regular.ID, reports[0].UserID)

	accounts, err = env.demoSvc.Accounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)

	reset, err = env.demoSvc.ResetDemo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, reset.Users)
}

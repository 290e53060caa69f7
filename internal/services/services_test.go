package services

import (
	"context"
	"testing"
	"time"

	"barrierfree-backend/internal/apperrors"
	"barrierfree-backend/internal/models"
	"barrierfree-backend/internal/repository"
	"barrierfree-backend/internal/rowstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedNotification struct {
	UserID string
	Kind   string
}

type recordingNotifier struct {
	sent []recordedNotification
}

func (n *recordingNotifier) Notify(_ context.Context, userID, kind, _, _, _ string) {
	n.sent = append(n.sent, recordedNotification{UserID: userID, Kind: kind})
}

func (n *recordingNotifier) kinds(userID string) []string {
	var out []string
	for _, s := range n.sent {
		if s.UserID == userID {
			out = append(out, s.Kind)
		}
	}
	return out
}

type testEnv struct {
	store         *rowstore.Store
	users         *repository.UserRepository
	reports       *repository.ReportRepository
	verifications *repository.VerificationRepository
	quests        *repository.QuestRepository
	userQuests    *repository.UserQuestRepository
	teams         *repository.TeamRepository
	notifier      *recordingNotifier

	identity  *IdentityService
	progress  *ProgressEngine
	reportSvc *ReportService
	verifySvc *VerificationService
	questSvc  *QuestService
	teamSvc   *TeamService
	demoSvc   *DemoService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := rowstore.NewStore(rowstore.NewMemoryBackend(), rowstore.Options{BatchDelay: time.Millisecond})
	require.NoError(t, repository.InitTables(context.Background(), store))

	env := &testEnv{
		store:         store,
		users:         repository.NewUserRepository(store),
		reports:       repository.NewReportRepository(store),
		verifications: repository.NewVerificationRepository(store),
		quests:        repository.NewQuestRepository(store),
		userQuests:    repository.NewUserQuestRepository(store),
		teams:         repository.NewTeamRepository(store),
		notifier:      &recordingNotifier{},
	}

	env.identity = NewIdentityService(env.users, "test-secret", time.Hour)
	env.progress = NewProgressEngine(env.users, env.quests, env.userQuests, env.notifier)
	env.reportSvc = NewReportService(env.reports, env.progress)
	env.verifySvc = NewVerificationService(env.reports, env.verifications, env.progress, env.notifier)
	env.questSvc = NewQuestService(env.quests, env.userQuests, env.progress)
	env.teamSvc = NewTeamService(env.teams, env.users)
	env.demoSvc = NewDemoService(env.users, env.reports, env.teams, env.questSvc)

	return env
}

func (env *testEnv) signIn(t *testing.T, accountID, email string) *models.User {
	t.Helper()
	user, _, err := env.identity.Authenticate(context.Background(), Assertion{
		Provider:          models.ProviderGoogle,
		ProviderAccountID: accountID,
		Email:             email,
		Name:              accountID,
	})
	require.NoError(t, err)
	return user
}

func (env *testEnv) user(t *testing.T, id string) *models.User {
	t.Helper()
	u, err := env.users.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func floatPtr(v float64) *float64 { return &v }

func barrierInput(lat, lng float64) CreateReportInput {
	return CreateReportInput{
		Type:      models.ReportTypeBarrier,
		Category:  "no_ramp",
		Latitude:  floatPtr(lat),
		Longitude: floatPtr(lng),
		Address:   "경기 수원시 팔달구 정조로 825",
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, apperrors.CodeOf(err), "unexpected error: %v", err)
}

func TestEndToEnd_ReportVerifyResolve(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	u := env.signIn(t, "u", "u@example.com")
	v := env.signIn(t, "v", "v@example.com")
	assert.Equal(t, 0, u.XP)
	assert.Equal(t, 1, u.Level)

	created, err := env.reportSvc.CreateReport(ctx, u.ID, barrierInput(37.25, 127.0))
	require.NoError(t, err)
	assert.Equal(t, models.BarrierReportXP, created.XPEarned)

	u = env.user(t, u.ID)
	assert.Equal(t, 10, u.XP)
	assert.Equal(t, 1, u.Level)

	reportID := created.Report.ID
	res, err := env.verifySvc.Verify(ctx, v.ID, VerifyInput{ReportID: reportID, Type: models.VerificationConfirm})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Report.VerifyCount)
	assert.Equal(t, 10, res.Report.ConfidenceScore)
	assert.Equal(t, models.VerificationXP, env.user(t, v.ID).XP)

	_, err = env.verifySvc.Verify(ctx, v.ID, VerifyInput{ReportID: reportID, Type: models.VerificationConfirm})
	assertCode(t, err, apperrors.CodeConflict)

	res, err = env.verifySvc.Verify(ctx, v.ID, VerifyInput{ReportID: reportID, Type: models.VerificationResolved})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusResolved, res.Report.Status)
	assert.Equal(t, v.ID, res.Report.ResolvedBy)
	assert.NotNil(t, res.Report.ResolvedAt)

	stored, err := env.reportSvc.GetReport(ctx, reportID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusResolved, stored.Status)
	assert.Equal(t, 1, stored.VerifyCount)

	assert.Equal(t, 2*models.VerificationXP, env.user(t, v.ID).XP)

	items, err := env.verifySvc.ListVerifications(ctx, reportID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	assert.Equal(t, []string{NotificationVerification, NotificationResolved}, env.notifier.kinds(u.ID))
}

func TestVerify_ResolveTwiceRejected(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	owner := env.signIn(t, "owner", "owner@example.com")
	a := env.signIn(t, "a", "a@example.com")
	b := env.signIn(t, "b", "b@example.com")

	created, err := env.reportSvc.CreateReport(ctx, owner.ID, barrierInput(37.2, 127.0))
	require.NoError(t, err)

	_, err = env.verifySvc.Verify(ctx, a.ID, VerifyInput{ReportID: created.Report.ID, Type: models.VerificationResolved})
	require.NoError(t, err)

	_, err = env.verifySvc.Verify(ctx, b.ID, VerifyInput{ReportID: created.Report.ID, Type: models.VerificationResolved})
	assertCode(t, err, apperrors.CodeConflict)

	assert.Equal(t, 0, env.user(t, b.ID).XP)
}

func TestVerify_Errors(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	v := env.signIn(t, "v", "v@example.com")

	_, err := env.verifySvc.Verify(ctx, v.ID, VerifyInput{ReportID: "missing", Type: models.VerificationConfirm})
	assertCode(t, err, apperrors.CodeNotFound)

	_, err = env.verifySvc.Verify(ctx, v.ID, VerifyInput{ReportID: "r", Type: "like"})
	assertCode(t, err, apperrors.CodeInvalidArgument)

	_, err = env.verifySvc.Verify(ctx, "", VerifyInput{ReportID: "r", Type: models.VerificationConfirm})
	assertCode(t, err, apperrors.CodeUnauthenticated)

	_, err = env.verifySvc.ListVerifications(ctx, "")
	assertCode(t, err, apperrors.CodeInvalidArgument)
}

func TestVerify_ConfidenceSaturates(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	owner := env.signIn(t, "owner", "owner@example.com")
	created, err := env.reportSvc.CreateReport(ctx, owner.ID, barrierInput(37.2, 127.0))
	require.NoError(t, err)

	var last *models.Report
	for i := range 12 {
		voter := env.signIn(t, "voter"+string(rune('a'+i)), "voter"+string(rune('a'+i))+"@example.com")
		res, err := env.verifySvc.Verify(ctx, voter.ID, VerifyInput{ReportID: created.Report.ID, Type: models.VerificationConfirm})
		require.NoError(t, err)
		last = res.Report
	}

	assert.Equal(t, 12, last.VerifyCount)
	assert.Equal(t, models.MaxConfidenceScore, last.ConfidenceScore)
}

func TestCreateReport_Validation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	u := env.signIn(t, "u", "u@example.com")

	tests := []struct {
		name string
		in   CreateReportInput
	}{
		{"missing type", CreateReportInput{Category: "no_ramp", Latitude: floatPtr(37), Longitude: floatPtr(127)}},
		{"unknown type", CreateReportInput{Type: "complaint", Category: "no_ramp", Latitude: floatPtr(37), Longitude: floatPtr(127)}},
		{"missing latitude", CreateReportInput{Type: "barrier", Category: "no_ramp", Longitude: floatPtr(127)}},
		{"latitude out of range", CreateReportInput{Type: "barrier", Category: "no_ramp", Latitude: floatPtr(91), Longitude: floatPtr(127)}},
		{"category of other type", CreateReportInput{Type: "barrier", Category: "good_ramp", Latitude: floatPtr(37), Longitude: floatPtr(127)}},
		{"bad media url", CreateReportInput{Type: "praise", Category: "good_ramp", Latitude: floatPtr(37), Longitude: floatPtr(127), MediaURLs: []string{"not a url"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.reportSvc.CreateReport(ctx, u.ID, tt.in)
			assertCode(t, err, apperrors.CodeInvalidArgument)
		})
	}

	all, err := env.reportSvc.ListReports(ctx, ReportFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Equal(t, 0, env.user(t, u.ID).XP)

	_, err = env.reportSvc.CreateReport(ctx, "", barrierInput(37, 127))
	assertCode(t, err, apperrors.CodeUnauthenticated)
}

func TestCreateReport_PraiseXP(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	u := env.signIn(t, "u", "u@example.com")

	res, err := env.reportSvc.CreateReport(ctx, u.ID, CreateReportInput{
		Type:      models.ReportTypePraise,
		Category:  "good_ramp",
		Latitude:  floatPtr(37.3),
		Longitude: floatPtr(127.1),
	})
	require.NoError(t, err)
	assert.Equal(t, models.PraiseReportXP, res.XPEarned)
	assert.Equal(t, models.InitialConfidenceScore, res.Report.ConfidenceScore)
	assert.Equal(t, models.ReportStatusActive, res.Report.Status)
	assert.Equal(t, 15, env.user(t, u.ID).XP)
}

func TestListReports_BoundingBox(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	u := env.signIn(t, "u", "u@example.com")

	points := [][2]float64{
		{37.20, 126.80},
		{37.30, 127.10},
		{37.25, 127.00},
		{37.31, 127.00},
		{37.25, 126.79},
		{37.19, 127.00},
	}
	for _, p := range points {
		_, err := env.reportSvc.CreateReport(ctx, u.ID, barrierInput(p[0], p[1]))
		require.NoError(t, err)
	}

	box, err := ParseBoundingBox("37.30,127.10,37.20,126.80")
	require.NoError(t, err)

	got, err := env.reportSvc.ListReports(ctx, ReportFilter{Box: box})
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, r := range got {
		assert.True(t, r.Latitude >= 37.20 && r.Latitude <= 37.30, "lat %v", r.Latitude)
		assert.True(t, r.Longitude >= 126.80 && r.Longitude <= 127.10, "lng %v", r.Longitude)
	}

	_, err = ParseBoundingBox("37.2,126.8,37.3")
	assertCode(t, err, apperrors.CodeInvalidArgument)
	_, err = ParseBoundingBox("a,b,c,d")
	assertCode(t, err, apperrors.CodeInvalidArgument)
}

func TestListReports_TypeAndStatusFilter(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	u := env.signIn(t, "u", "u@example.com")
	v := env.signIn(t, "v", "v@example.com")

	barrier, err := env.reportSvc.CreateReport(ctx, u.ID, barrierInput(37.2, 127))
	require.NoError(t, err)
	_, err = env.reportSvc.CreateReport(ctx, u.ID, CreateReportInput{
		Type: models.ReportTypePraise, Category: "wide_passage", Latitude: floatPtr(37.2), Longitude: floatPtr(127),
	})
	require.NoError(t, err)
	_, err = env.verifySvc.Verify(ctx, v.ID, VerifyInput{ReportID: barrier.Report.ID, Type: models.VerificationResolved})
	require.NoError(t, err)

	praise, err := env.reportSvc.ListReports(ctx, ReportFilter{Type: models.ReportTypePraise})
	require.NoError(t, err)
	require.Len(t, praise, 1)
	assert.Equal(t, "wide_passage", praise[0].Category)

	resolved, err := env.reportSvc.ListReports(ctx, ReportFilter{Status: models.ReportStatusResolved})
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, barrier.Report.ID, resolved[0].ID)

	_, err = env.reportSvc.ListReports(ctx, ReportFilter{Type: "complaint"})
	assertCode(t, err, apperrors.CodeInvalidArgument)
}

func TestGetReport_NotFound(t *testing.T) {
	env := setupTestEnv(t)
	_, err := env.reportSvc.GetReport(context.Background(), "missing")
	assertCode(t, err, apperrors.CodeNotFound)
}

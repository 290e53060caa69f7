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

func TestAuthenticate_ProvisionsOnce(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	a := Assertion{Provider: models.ProviderGoogle, ProviderAccountID: "123", Email: "kim@example.com", Name: "김민준"}

	first, created, err := env.identity.Authenticate(ctx, a)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 0, first.XP)
	assert.Equal(t, 1, first.Level)
	assert.Equal(t, "김민준", first.Nickname)
	assert.Empty(t, first.Titles)

	later := first.LastLogin.Add(time.Hour)
	env.identity.now = func() time.Time { return later }

	second, created, err := env.identity.Authenticate(ctx, a)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, later.Equal(env.user(t, first.ID).LastLogin))

	all, err := env.users.ListByEmailSuffix(ctx, "@example.com")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAuthenticate_PlaceholderEmail(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	user, created, err := env.identity.Authenticate(ctx, Assertion{Provider: models.ProviderKakao, ProviderAccountID: "987"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "kakao_987@placeholder.local", user.Email)
	assert.Equal(t, "987", user.Nickname)

	again, created, err := env.identity.Authenticate(ctx, Assertion{Provider: models.ProviderKakao, ProviderAccountID: "987"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, again.ID)
}

func TestAuthenticate_Validation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, _, err := env.identity.Authenticate(ctx, Assertion{Provider: "facebook", ProviderAccountID: "1"})
	assertCode(t, err, apperrors.CodeInvalidArgument)

	_, _, err = env.identity.Authenticate(ctx, Assertion{Provider: models.ProviderNaver})
	assertCode(t, err, apperrors.CodeInvalidArgument)

	_, _, err = env.identity.Authenticate(ctx, Assertion{Provider: models.ProviderNaver, ProviderAccountID: "1", Email: "not-an-email"})
	assertCode(t, err, apperrors.CodeInvalidArgument)
}

func TestSignIn_TokenAndSession(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	res, err := env.identity.SignIn(ctx, Assertion{Provider: models.ProviderGoogle, ProviderAccountID: "1", Email: "a@example.com", Name: "A"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	assert.True(t, res.Created)

	userID, err := env.identity.ValidateJWT(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, userID)

	_, err = env.progress.GrantXP(ctx, userID, 250)
	require.NoError(t, err)

	session, err := env.identity.Session(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 250, session.XP)
	assert.Equal(t, 3, session.Level)

	_, err = env.identity.Session(ctx, "missing")
	assertCode(t, err, apperrors.CodeNotFound)

	other := NewIdentityService(env.users, "other-secret", time.Hour)
	_, err = other.ValidateJWT(res.Token)
	assert.Error(t, err)

	expired := NewIdentityService(env.users, "test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := expired.GenerateJWT(userID)
	require.NoError(t, err)
	_, err = env.identity.ValidateJWT(token)
	assert.Error(t, err)
}

func TestUpdatePushToken(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	u := env.signIn(t, "u", "u@example.com")

	require.NoError(t, env.identity.UpdatePushToken(ctx, u.ID, " device-token "))
	assert.Equal(t, "device-token", env.user(t, u.ID).PushToken)

	err := env.identity.UpdatePushToken(ctx, "missing", "x")
	assertCode(t, err, apperrors.CodeNotFound)
}

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
	"barrierfree-backend/internal/rowstore"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	defaultTokenTTL  = 30 * 24 * time.Hour
	placeholderEmail = "%s_%s@placeholder.local"
)

// Assertion is what the federated identity provider vouches for
type Assertion struct {
	Provider          string `json:"provider" validate:"required,oneof=google kakao naver"`
	ProviderAccountID string `json:"provider_account_id" validate:"required"`
	Email             string `json:"email" validate:"omitempty,email"`
	Name              string `json:"name"`
}

// Session is the per-request view of the signed-in user, always read from the store
type Session struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	XP       int    `json:"xp"`
	Level    int    `json:"level"`
	Points   int    `json:"points"`
}

// SignInResult is returned after a successful sign-in
type SignInResult struct {
	User    *models.User `json:"user"`
	Token   string       `json:"token"`
	Created bool         `json:"created"`
}

// IdentityService resolves provider assertions to users and issues session tokens
type IdentityService struct {
	userRepo  *repository.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewIdentityService creates a new identity service
func NewIdentityService(userRepo *repository.UserRepository, jwtSecret string, tokenTTL time.Duration) *IdentityService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &IdentityService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

// resolveEmail returns the asserted email or a synthesized placeholder for
// providers that do not share one
func resolveEmail(a Assertion) string {
	if email := strings.TrimSpace(a.Email); email != "" {
		return email
	}
	return fmt.Sprintf(placeholderEmail, a.Provider, a.ProviderAccountID)
}

// Authenticate provisions the user on first sign-in and stamps last login afterwards
func (s *IdentityService) Authenticate(ctx context.Context, a Assertion) (*models.User, bool, error) {
	if err := validateInput(a); err != nil {
		return nil, false, err
	}

	email := resolveEmail(a)
	now := s.now().UTC()

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		if err := s.userRepo.Update(ctx, existing.ID, rowstore.Record{"last_login": now}); err != nil {
			return nil, false, apperrors.Wrap(err, "failed to update last login")
		}
		existing.LastLogin = now
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, apperrors.Wrap(err, "failed to look up user")
	}

	nickname := strings.TrimSpace(a.Name)
	if nickname == "" {
		nickname = a.ProviderAccountID
	}
	if nickname == "" {
		nickname = "User"
	}

	user := &models.User{
		ID:          uuid.New().String(),
		Email:       email,
		Name:        strings.TrimSpace(a.Name),
		Nickname:    nickname,
		Provider:    a.Provider,
		AvatarItems: []string{},
		XP:          0,
		Level:       1,
		Titles:      []string{},
		CreatedAt:   now,
		LastLogin:   now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, false, apperrors.Wrap(err, "failed to create user")
	}

	log.Info().
		Str("user_id", user.ID).
		Str("provider", user.Provider).
		Msg("User provisioned")

	return user, true, nil
}

// SignIn authenticates the assertion and issues a session token
func (s *IdentityService) SignIn(ctx context.Context, a Assertion) (*SignInResult, error) {
	user, created, err := s.Authenticate(ctx, a)
	if err != nil {
		return nil, err
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeInternal, "failed to issue token", err)
	}

	return &SignInResult{User: user, Token: token, Created: created}, nil
}

// GenerateJWT generates a JWT token for a user
func (s *IdentityService) GenerateJWT(userID string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID
func (s *IdentityService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user_id not found in token")
	}

	return userID, nil
}

// Session re-reads the user so XP and level reflect the latest persisted state
func (s *IdentityService) Session(ctx context.Context, userID string) (*Session, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Session{
		UserID:   user.ID,
		Email:    user.Email,
		Nickname: user.Nickname,
		XP:       user.XP,
		Level:    user.Level,
		Points:   user.Points,
	}, nil
}

// GetUser retrieves a user by ID
func (s *IdentityService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Upstream("failed to load user", err)
	}
	return user, nil
}

// UpdatePushToken stores the APNs device token of a user; empty clears it
func (s *IdentityService) UpdatePushToken(ctx context.Context, userID, token string) error {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, userID, rowstore.Record{"push_token": strings.TrimSpace(token)}); err != nil {
		return apperrors.Wrap(err, "failed to update push token")
	}
	return nil
}

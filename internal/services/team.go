package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"barrierfree-backend/internal/apperrors"
	"barrierfree-backend/internal/models"
	"barrierfree-backend/internal/repository"
	"barrierfree-backend/internal/rowstore"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CreateTeamInput is the payload for a new team
type CreateTeamInput struct {
	Name        string `json:"name"`
	Description string `json:"description" validate:"max=500"`
	IsPublic    *bool  `json:"is_public"`
}

// TeamFilter narrows a team listing
type TeamFilter struct {
	Search       string
	MemberUserID string
}

// TeamService manages teams and membership
type TeamService struct {
	teamRepo *repository.TeamRepository
	userRepo *repository.UserRepository
	now      func() time.Time
}

// NewTeamService creates a new team service
func NewTeamService(teamRepo *repository.TeamRepository, userRepo *repository.UserRepository) *TeamService {
	return &TeamService{
		teamRepo: teamRepo,
		userRepo: userRepo,
		now:      time.Now,
	}
}

// CreateTeam creates a team led by userID. A new team starts at zero XP and
// level 1; the total is not recomputed from members later.
func (s *TeamService) CreateTeam(ctx context.Context, userID string, in CreateTeamInput) (*models.Team, error) {
	if userID == "" {
		return nil, apperrors.Unauthenticated("authentication required")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.Invalid("name is required")
	}
	if utf8.RuneCountInString(name) > models.MaxTeamNameLength {
		return nil, apperrors.Invalid(fmt.Sprintf("name must be at most %d characters", models.MaxTeamNameLength))
	}

	exists, err := s.teamRepo.NameExists(ctx, name)
	if err != nil {
		return nil, apperrors.Upstream("failed to check team name", err)
	}
	if exists {
		return nil, apperrors.Conflict("team name already taken")
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Upstream("failed to load user", err)
	}

	isPublic := true
	if in.IsPublic != nil {
		isPublic = *in.IsPublic
	}

	now := s.now().UTC()
	team := &models.Team{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		LeaderID:    userID,
		MemberIDs:   []string{userID},
		TotalXP:     0,
		Level:       1,
		IsPublic:    isPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, apperrors.Upstream("failed to save team", err)
	}

	s.assignTeam(ctx, userID, team.ID)

	log.Info().
		Str("user_id", userID).
		Str("team_id", team.ID).
		Msg("Team created")

	return team, nil
}

// JoinTeam adds userID to the team's members
func (s *TeamService) JoinTeam(ctx context.Context, userID, teamID string) (*models.Team, error) {
	if userID == "" {
		return nil, apperrors.Unauthenticated("authentication required")
	}
	if teamID == "" {
		return nil, apperrors.Invalid("team_id is required")
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("team not found")
		}
		return nil, apperrors.Upstream("failed to load team", err)
	}

	if slices.Contains(team.MemberIDs, userID) {
		return nil, apperrors.Conflict("already a member")
	}

	members := append(slices.Clone(team.MemberIDs), userID)
	updated, err := s.teamRepo.UpdateMembers(ctx, teamID, members, s.now().UTC())
	if err != nil {
		return nil, apperrors.Upstream("failed to update team", err)
	}

	s.assignTeam(ctx, userID, teamID)

	log.Info().
		Str("user_id", userID).
		Str("team_id", teamID).
		Int("members", len(members)).
		Msg("Team joined")

	return updated, nil
}

// assignTeam records the team on the user row; membership on the team row is
// authoritative so a failure here is only logged
func (s *TeamService) assignTeam(ctx context.Context, userID, teamID string) {
	if err := s.userRepo.Update(ctx, userID, rowstore.Record{"team_id": teamID}); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("team_id", teamID).Msg("Failed to set user team")
	}
}

// ListTeams returns teams matching the filter, largest first
func (s *TeamService) ListTeams(ctx context.Context, filter TeamFilter) ([]*models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, apperrors.Upstream("failed to list teams", err)
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := teams[:0]
	for _, t := range teams {
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Name), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		if filter.MemberUserID != "" && !slices.Contains(t.MemberIDs, filter.MemberUserID) {
			continue
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].MemberIDs) > len(out[j].MemberIDs)
	})

	return out, nil
}

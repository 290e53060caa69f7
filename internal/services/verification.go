package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"barrierfree-backend/internal/apperrors"
	"barrierfree-backend/internal/models"
	"barrierfree-backend/internal/repository"
	"barrierfree-backend/internal/rowstore"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// VerifyInput is the payload for a verification
type VerifyInput struct {
	ReportID  string   `json:"report_id" validate:"required"`
	Type      string   `json:"type" validate:"required,oneof=confirm resolved"`
	MediaURLs []string `json:"media_urls" validate:"omitempty,dive,url"`
	Comment   string   `json:"comment" validate:"max=500"`
}

// VerifyResult is the recorded verification and the report after it
type VerifyResult struct {
	Verification *models.Verification `json:"verification"`
	Report       *models.Report       `json:"report"`
	XPEarned     int                  `json:"xp_earned"`
}

// VerificationService records confirm and resolved events on reports
type VerificationService struct {
	reportRepo       *repository.ReportRepository
	verificationRepo *repository.VerificationRepository
	progress         *ProgressEngine
	notifier         Notifier
	now              func() time.Time
}

// NewVerificationService creates a new verification service
func NewVerificationService(
	reportRepo *repository.ReportRepository,
	verificationRepo *repository.VerificationRepository,
	progress *ProgressEngine,
	notifier Notifier,
) *VerificationService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &VerificationService{
		reportRepo:       reportRepo,
		verificationRepo: verificationRepo,
		progress:         progress,
		notifier:         notifier,
		now:              time.Now,
	}
}

// Verify records a verification once per (report, user, kind) and updates the report
func (s *VerificationService) Verify(ctx context.Context, userID string, in VerifyInput) (*VerifyResult, error) {
	if userID == "" {
		return nil, apperrors.Unauthenticated("authentication required")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	report, err := s.reportRepo.GetByID(ctx, in.ReportID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("report not found")
		}
		return nil, apperrors.Upstream("failed to load report", err)
	}

	exists, err := s.verificationRepo.Exists(ctx, in.ReportID, userID, in.Type)
	if err != nil {
		return nil, apperrors.Upstream("failed to check verifications", err)
	}
	if exists {
		return nil, apperrors.Conflict("already verified")
	}

	if in.Type == models.VerificationResolved && report.Status == models.ReportStatusResolved {
		return nil, apperrors.Conflict("report already resolved")
	}

	now := s.now().UTC()
	mediaURLs := in.MediaURLs
	if mediaURLs == nil {
		mediaURLs = []string{}
	}

	v := &models.Verification{
		ID:        uuid.New().String(),
		ReportID:  in.ReportID,
		UserID:    userID,
		Type:      in.Type,
		MediaURLs: mediaURLs,
		Comment:   in.Comment,
		CreatedAt: now,
	}
	if err := s.verificationRepo.Create(ctx, v); err != nil {
		return nil, apperrors.Upstream("failed to save verification", err)
	}

	patch := rowstore.Record{"updated_at": now}
	switch in.Type {
	case models.VerificationConfirm:
		count := report.VerifyCount + 1
		patch["verify_count"] = count
		patch["confidence_score"] = models.ConfidenceForConfirms(count)
	case models.VerificationResolved:
		patch["status"] = models.ReportStatusResolved
		patch["resolved_by"] = userID
		patch["resolved_at"] = now
	}

	updated, err := s.reportRepo.Update(ctx, in.ReportID, patch)
	if err != nil {
		return nil, apperrors.Upstream("failed to update report", err)
	}

	if _, err := s.progress.GrantXP(ctx, userID, models.VerificationXP); err != nil {
		return nil, err
	}

	if _, err := s.progress.Advance(ctx, userID, models.VerificationAction(in.Type)); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("report_id", in.ReportID).Msg("Failed to advance quests")
	}

	if report.UserID != userID {
		s.notifyOwner(ctx, updated, in.Type)
	}

	log.Info().
		Str("user_id", userID).
		Str("report_id", in.ReportID).
		Str("type", in.Type).
		Msg("Report verified")

	return &VerifyResult{Verification: v, Report: updated, XPEarned: models.VerificationXP}, nil
}

func (s *VerificationService) notifyOwner(ctx context.Context, report *models.Report, kind string) {
	link := "/reports/" + report.ID
	if kind == models.VerificationResolved {
		s.notifier.Notify(ctx, report.UserID, NotificationResolved,
			"문제가 해결되었어요", "제보하신 장소의 문제가 해결되었다는 확인이 등록되었습니다.", link)
		return
	}
	s.notifier.Notify(ctx, report.UserID, NotificationVerification,
		"제보가 확인되었어요", fmt.Sprintf("다른 시민이 제보를 확인했습니다. (확인 %d회)", report.VerifyCount), link)
}

// ListVerifications returns the verifications of a report, oldest first
func (s *VerificationService) ListVerifications(ctx context.Context, reportID string) ([]*models.Verification, error) {
	if reportID == "" {
		return nil, apperrors.Invalid("report_id is required")
	}

	items, err := s.verificationRepo.ListByReport(ctx, reportID)
	if err != nil {
		return nil, apperrors.Upstream("failed to list verifications", err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

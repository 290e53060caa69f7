package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"barrierfree-backend/internal/apperrors"
	"barrierfree-backend/internal/models"
	"barrierfree-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CreateReportInput is the payload for a new report
type CreateReportInput struct {
	Type        string             `json:"type" validate:"required,oneof=barrier praise"`
	Category    string             `json:"category" validate:"required"`
	Latitude    *float64           `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude   *float64           `json:"longitude" validate:"required,gte=-180,lte=180"`
	Address     string             `json:"address" validate:"max=300"`
	City        string             `json:"city"`
	District    string             `json:"district"`
	Description string             `json:"description" validate:"max=2000"`
	MediaURLs   []string           `json:"media_urls" validate:"omitempty,dive,url"`
	AIAnalysis  *models.AIAnalysis `json:"ai_analysis"`
}

// CreateReportResult is the created report and the XP it earned
type CreateReportResult struct {
	Report   *models.Report `json:"report"`
	XPEarned int            `json:"xp_earned"`
	NewXP    int            `json:"new_xp"`
	NewLevel int            `json:"new_level"`
}

// BoundingBox is an inclusive latitude/longitude rectangle
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// NewBoundingBox normalizes two opposite corners into a box
func NewBoundingBox(lat1, lng1, lat2, lng2 float64) BoundingBox {
	return BoundingBox{
		MinLat: min(lat1, lat2),
		MaxLat: max(lat1, lat2),
		MinLng: min(lng1, lng2),
		MaxLng: max(lng1, lng2),
	}
}

// ParseBoundingBox parses "lat1,lng1,lat2,lng2"
func ParseBoundingBox(s string) (*BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, apperrors.Invalid("bbox must be lat1,lng1,lat2,lng2")
	}

	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, apperrors.Invalid(fmt.Sprintf("bbox value %q is not a number", p))
		}
		v[i] = f
	}

	box := NewBoundingBox(v[0], v[1], v[2], v[3])
	return &box, nil
}

// Contains reports whether the point lies inside the box, edges included
func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// ReportFilter narrows a report listing
type ReportFilter struct {
	Type   string
	Status string
	UserID string
	Box    *BoundingBox
}

func (f ReportFilter) match(r *models.Report) bool {
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.UserID != "" && r.UserID != f.UserID {
		return false
	}
	if f.Box != nil && !f.Box.Contains(r.Latitude, r.Longitude) {
		return false
	}
	return true
}

// ReportService handles report creation and listing
type ReportService struct {
	reportRepo *repository.ReportRepository
	progress   *ProgressEngine
	now        func() time.Time
}

// NewReportService creates a new report service
func NewReportService(reportRepo *repository.ReportRepository, progress *ProgressEngine) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		progress:   progress,
		now:        time.Now,
	}
}

// CreateReport stores a new report, grants XP and advances quests. Steps that
// already succeeded are not undone when a later step fails.
func (s *ReportService) CreateReport(ctx context.Context, userID string, in CreateReportInput) (*CreateReportResult, error) {
	if userID == "" {
		return nil, apperrors.Unauthenticated("authentication required")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if !models.ValidCategory(in.Type, in.Category) {
		return nil, apperrors.Invalid(fmt.Sprintf("category %q is not allowed for %s reports", in.Category, in.Type))
	}

	now := s.now().UTC()
	mediaURLs := in.MediaURLs
	if mediaURLs == nil {
		mediaURLs = []string{}
	}

	report := &models.Report{
		ID:              uuid.New().String(),
		UserID:          userID,
		Type:            in.Type,
		Category:        in.Category,
		Latitude:        *in.Latitude,
		Longitude:       *in.Longitude,
		Address:         strings.TrimSpace(in.Address),
		City:            strings.TrimSpace(in.City),
		District:        strings.TrimSpace(in.District),
		Description:     strings.TrimSpace(in.Description),
		MediaURLs:       mediaURLs,
		AIAnalysis:      in.AIAnalysis,
		ConfidenceScore: models.InitialConfidenceScore,
		VerifyCount:     0,
		Status:          models.ReportStatusActive,
		AdminStatus:     models.AdminStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, apperrors.Upstream("failed to save report", err)
	}

	xpEarned := models.ReportXP(report.Type)
	res, err := s.progress.GrantXP(ctx, userID, xpEarned)
	if err != nil {
		return nil, err
	}

	if _, err := s.progress.Advance(ctx, userID, models.ReportAction(report.Type)); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("report_id", report.ID).Msg("Failed to advance quests")
	}

	log.Info().
		Str("user_id", userID).
		Str("report_id", report.ID).
		Str("type", report.Type).
		Str("category", report.Category).
		Msg("Report created")

	return &CreateReportResult{
		Report:   report,
		XPEarned: xpEarned,
		NewXP:    res.XP,
		NewLevel: res.Level,
	}, nil
}

// ListReports returns reports matching the filter, newest first
func (s *ReportService) ListReports(ctx context.Context, filter ReportFilter) ([]*models.Report, error) {
	if filter.Type != "" && !models.ValidReportType(filter.Type) {
		return nil, apperrors.Invalid(fmt.Sprintf("unknown report type %q", filter.Type))
	}

	reports, err := s.reportRepo.List(ctx, filter.match)
	if err != nil {
		return nil, apperrors.Upstream("failed to list reports", err)
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})

	return reports, nil
}

// GetReport retrieves a report by ID
func (s *ReportService) GetReport(ctx context.Context, reportID string) (*models.Report, error) {
	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("report not found")
		}
		return nil, apperrors.Upstream("failed to load report", err)
	}
	return report, nil
}

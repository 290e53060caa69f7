package repository

import (
	"context"
	"fmt"
	"slices"

	"barrierfree-backend/internal/models"
	"barrierfree-backend/internal/rowstore"

	"github.com/rs/zerolog/log"
)

// ReportRepository handles row store operations for reports
type ReportRepository struct {
	table *rowstore.Table
}

// NewReportRepository creates a new report repository
func NewReportRepository(store *rowstore.Store) *ReportRepository {
	return &ReportRepository{table: store.Table(TableReports)}
}

func reportToRecord(r *models.Report) rowstore.Record {
	rec := rowstore.Record{
		"report_id":        r.ID,
		"user_id":          r.UserID,
		"type":             r.Type,
		"category":         r.Category,
		"latitude":         r.Latitude,
		"longitude":        r.Longitude,
		"address":          r.Address,
		"city":             r.City,
		"district":         r.District,
		"description":      r.Description,
		"media_urls":       stringsOrEmpty(r.MediaURLs),
		"confidence_score": r.ConfidenceScore,
		"verify_count":     r.VerifyCount,
		"status":           r.Status,
		"resolved_by":      r.ResolvedBy,
		"resolved_at":      r.ResolvedAt,
		"admin_status":     r.AdminStatus,
		"admin_note":       r.AdminNote,
		"created_at":       r.CreatedAt,
		"updated_at":       r.UpdatedAt,
	}
	if r.AIAnalysis != nil {
		rec["ai_analysis"] = r.AIAnalysis
	}
	return rec
}

func reportFromRecord(rec rowstore.Record) *models.Report {
	report := &models.Report{
		ID:              rec.String("report_id"),
		UserID:          rec.String("user_id"),
		Type:            rec.String("type"),
		Category:        rec.String("category"),
		Latitude:        rec.Float("latitude"),
		Longitude:       rec.Float("longitude"),
		Address:         rec.String("address"),
		City:            rec.String("city"),
		District:        rec.String("district"),
		Description:     rec.String("description"),
		MediaURLs:       stringsOrEmpty(rec.Strings("media_urls")),
		ConfidenceScore: models.ClampConfidence(rec.Int("confidence_score")),
		VerifyCount:     rec.Int("verify_count"),
		Status:          rec.String("status"),
		ResolvedBy:      rec.String("resolved_by"),
		ResolvedAt:      rec.TimePtr("resolved_at"),
		AdminStatus:     rec.String("admin_status"),
		AdminNote:       rec.String("admin_note"),
		CreatedAt:       rec.Time("created_at"),
		UpdatedAt:       rec.Time("updated_at"),
	}

	if _, ok := rec["ai_analysis"]; ok {
		var analysis models.AIAnalysis
		if err := rec.Decode("ai_analysis", &analysis); err != nil {
			log.Warn().Err(err).Str("report_id", report.ID).Msg("Malformed ai_analysis cell")
		} else {
			report.AIAnalysis = &analysis
		}
	}

	return report
}

// Create creates a new report
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	if err := r.table.Append(ctx, reportToRecord(report)); err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// CreateMany creates reports in batches
func (r *ReportRepository) CreateMany(ctx context.Context, reports []*models.Report) (int, error) {
	recs := make([]rowstore.Record, len(reports))
	for i, rep := range reports {
		recs[i] = reportToRecord(rep)
	}
	n, err := r.table.AppendMany(ctx, recs)
	if err != nil {
		return n, fmt.Errorf("failed to create reports: %w", err)
	}
	return n, nil
}

// GetByID retrieves a report by ID
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	rec, err := r.table.FindOne(ctx, func(rec rowstore.Record) bool {
		return rec.String("report_id") == id
	})
	if err != nil {
		return nil, fmt.Errorf("report not found: %w", err)
	}
	return reportFromRecord(rec), nil
}

// List returns every report matching pred, all reports when pred is nil
func (r *ReportRepository) List(ctx context.Context, pred func(*models.Report) bool) ([]*models.Report, error) {
	recs, err := r.table.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	reports := make([]*models.Report, 0, len(recs))
	for _, rec := range recs {
		report := reportFromRecord(rec)
		if pred == nil || pred(report) {
			reports = append(reports, report)
		}
	}
	return reports, nil
}

// Update merges fields into the report row
func (r *ReportRepository) Update(ctx context.Context, id string, patch rowstore.Record) (*models.Report, error) {
	rec, err := r.table.UpdateByID(ctx, "report_id", id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update report: %w", err)
	}
	return reportFromRecord(rec), nil
}

// DeleteByUserIDs removes every report owned by one of userIDs
func (r *ReportRepository) DeleteByUserIDs(ctx context.Context, userIDs []string) (int, error) {
	n, err := r.table.DeleteWhere(ctx, func(rec rowstore.Record) bool {
		return slices.Contains(userIDs, rec.String("user_id"))
	})
	if err != nil {
		return n, fmt.Errorf("failed to delete reports: %w", err)
	}
	return n, nil
}

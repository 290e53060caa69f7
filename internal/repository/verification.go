package repository

import (
	"context"
	"fmt"

	"barrierfree-backend/internal/models"
	"barrierfree-backend/internal/rowstore"
)

// VerificationRepository handles row store operations for verifications
type VerificationRepository struct {
	table *rowstore.Table
}

// NewVerificationRepository creates a new verification repository
func NewVerificationRepository(store *rowstore.Store) *VerificationRepository {
	return &VerificationRepository{table: store.Table(TableVerifications)}
}

func verificationFromRecord(rec rowstore.Record) *models.Verification {
	return &models.Verification{
		ID:        rec.String("verification_id"),
		ReportID:  rec.String("report_id"),
		UserID:    rec.String("user_id"),
		Type:      rec.String("type"),
		MediaURLs: stringsOrEmpty(rec.Strings("media_urls")),
		Comment:   rec.String("comment"),
		CreatedAt: rec.Time("created_at"),
	}
}

// Create creates a new verification
func (r *VerificationRepository) Create(ctx context.Context, v *models.Verification) error {
	err := r.table.Append(ctx, rowstore.Record{
		"verification_id": v.ID,
		"report_id":       v.ReportID,
		"user_id":         v.UserID,
		"type":            v.Type,
		"media_urls":      stringsOrEmpty(v.MediaURLs),
		"comment":         v.Comment,
		"created_at":      v.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to create verification: %w", err)
	}
	return nil
}

// Exists checks whether userID already verified reportID with kind
func (r *VerificationRepository) Exists(ctx context.Context, reportID, userID, kind string) (bool, error) {
	recs, err := r.table.Find(ctx, func(rec rowstore.Record) bool {
		return rec.String("report_id") == reportID &&
			rec.String("user_id") == userID &&
			rec.String("type") == kind
	})
	if err != nil {
		return false, fmt.Errorf("failed to check verification: %w", err)
	}
	return len(recs) > 0, nil
}

// ListByReport returns all verifications of a report
func (r *VerificationRepository) ListByReport(ctx context.Context, reportID string) ([]*models.Verification, error) {
	recs, err := r.table.Find(ctx, func(rec rowstore.Record) bool {
		return rec.String("report_id") == reportID
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list verifications: %w", err)
	}
	out := make([]*models.Verification, len(recs))
	for i, rec := range recs {
		out[i] = verificationFromRecord(rec)
	}
	return out, nil
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/haulops-billing/internal/model"
)

type RateRepository struct {
	db *gorm.DB
}

func NewRateRepository(db *gorm.DB) *RateRepository {
	return &RateRepository{db: db}
}

// ListCandidates returns the active entries of one party's catalog whose
// validity window covers asOf. Material, route and unit filtering plus the
// specificity ranking happen in the resolver, so they stay testable without
// a database.
func (r *RateRepository) ListCandidates(
	ctx context.Context,
	partyType model.PartyType,
	partyID uuid.UUID,
	asOf time.Time,
) ([]model.RateCardEntry, error) {
	var entries []model.RateCardEntry
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			id,
			party_type,
			party_id,
			material_id,
			from_site_id,
			to_site_id,
			valid_from,
			valid_to,
			price_per_ton,
			price_per_m3,
			price_per_trip,
			price_per_km,
			min_charge,
			is_active,
			created_at
		FROM rate_cards
		WHERE party_type = ?
			AND party_id = ?
			AND is_active
			AND valid_from <= ?
			AND (valid_to IS NULL OR valid_to >= ?)
		ORDER BY created_at DESC
	`, partyType, partyID, asOf, asOf).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'billing_unit') THEN
			CREATE TYPE billing_unit AS ENUM ('TON', 'M3', 'TRIP', 'KM');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'rate_party_type') THEN
			CREATE TYPE rate_party_type AS ENUM ('CUSTOMER', 'SUBCONTRACTOR');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'job_status') THEN
			CREATE TYPE job_status AS ENUM (
				'PLANNED', 'ASSIGNED', 'ENROUTE_PICKUP', 'LOADED',
				'ENROUTE_DROPOFF', 'DELIVERED', 'CLOSED', 'CANCELED'
			);
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS rate_cards (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		party_type rate_party_type NOT NULL,
		party_id UUID NOT NULL,
		material_id UUID,
		from_site_id UUID,
		to_site_id UUID,
		valid_from DATE NOT NULL,
		valid_to DATE,
		price_per_ton NUMERIC(18,4),
		price_per_m3 NUMERIC(18,4),
		price_per_trip NUMERIC(18,4),
		price_per_km NUMERIC(18,4),
		min_charge NUMERIC(18,2),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT rate_cards_priced CHECK (
			price_per_ton IS NOT NULL OR price_per_m3 IS NOT NULL
			OR price_per_trip IS NOT NULL OR price_per_km IS NOT NULL
		)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_rate_cards_party ON rate_cards (party_type, party_id) WHERE is_active;`,
	`CREATE INDEX IF NOT EXISTS idx_rate_cards_validity ON rate_cards (valid_from, valid_to);`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		org_id UUID NOT NULL,
		customer_id UUID NOT NULL,
		material_id UUID NOT NULL,
		from_site_id UUID,
		to_site_id UUID,
		scheduled_date DATE NOT NULL,
		planned_qty NUMERIC(18,3) NOT NULL,
		actual_qty NUMERIC(18,3),
		unit billing_unit NOT NULL,
		truck_id UUID,
		driver_id UUID,
		subcontractor_id UUID,
		is_subcontractor BOOLEAN NOT NULL DEFAULT FALSE,
		subcontractor_billing_unit billing_unit,
		status job_status NOT NULL DEFAULT 'PLANNED',
		manual_override_total NUMERIC(18,2),
		manual_override_reason TEXT,
		wait_hours NUMERIC(8,2) NOT NULL DEFAULT 0,
		is_night BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT jobs_assignment_exclusive CHECK (
			NOT (truck_id IS NOT NULL AND subcontractor_id IS NOT NULL)
		),
		CONSTRAINT jobs_subcontractor_flag CHECK (
			is_subcontractor = (subcontractor_id IS NOT NULL)
		)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_customer ON jobs (customer_id, scheduled_date);`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_subcontractor ON jobs (subcontractor_id, scheduled_date) WHERE subcontractor_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs (status);`,
	`CREATE TABLE IF NOT EXISTS job_status_events (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		job_id UUID NOT NULL REFERENCES jobs(id),
		from_status job_status NOT NULL,
		to_status job_status NOT NULL,
		lat DOUBLE PRECISION,
		lon DOUBLE PRECISION,
		actor_id UUID NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_job_status_events_job ON job_status_events (job_id, occurred_at);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

package database

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS routes (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		start_location TEXT NOT NULL,
		end_location TEXT NOT NULL,
		stops TEXT[] NOT NULL DEFAULT '{}',
		distance_km NUMERIC(10, 2) NOT NULL DEFAULT 0,
		base_fare NUMERIC(12, 2) NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS schedules (
		id UUID PRIMARY KEY,
		route_id UUID NOT NULL REFERENCES routes (id),
		bus_number TEXT NOT NULL,
		departure_time TIME NOT NULL,
		arrival_time TIME NOT NULL,
		day_of_week SMALLINT NOT NULL DEFAULT -1,
		total_seats INT NOT NULL CHECK (total_seats > 0),
		fare NUMERIC(12, 2),
		active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS booking_groups (
		id UUID PRIMARY KEY,
		passenger_id UUID NOT NULL,
		schedule_id UUID NOT NULL,
		journey_date DATE NOT NULL,
		total_amount NUMERIC(12, 2) NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		cancelled_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id UUID PRIMARY KEY,
		passenger_id UUID NOT NULL,
		schedule_id UUID NOT NULL,
		journey_date DATE NOT NULL,
		seat_id TEXT NOT NULL,
		fare NUMERIC(12, 2) NOT NULL,
		status TEXT NOT NULL,
		booking_group_id UUID REFERENCES booking_groups (id),
		hold_expires_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		cancelled_at TIMESTAMPTZ
	)`,
	// At most one held or confirmed ticket per seat of a run.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_tickets_active_seat
		ON tickets (schedule_id, journey_date, seat_id)
		WHERE status IN ('HELD', 'CONFIRMED')`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_passenger ON tickets (passenger_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_group ON tickets (booking_group_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_held ON tickets (hold_expires_at) WHERE status = 'HELD'`,
	`CREATE TABLE IF NOT EXISTS driver_assignments (
		schedule_id UUID PRIMARY KEY,
		driver_id UUID,
		assigned_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_driver_assignments_driver ON driver_assignments (driver_id)`,
}

// Migrate creates the engine's tables and indexes when missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}
	return nil
}

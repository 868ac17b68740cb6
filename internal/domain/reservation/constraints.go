package reservation

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

// EnsureConstraints installs the Postgres exclusion constraint that forbids
// overlapping intervals per resource. Other dialects rely on the keyed lock
// and transaction in Service.Create.
func EnsureConstraints(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS btree_gist`,
		`DO $$ BEGIN
			ALTER TABLE reservations ADD CONSTRAINT reservations_no_overlap
				EXCLUDE USING gist (resource_type WITH =, resource_id WITH =, tstzrange(start_time, end_time, '[)') WITH &&);
		EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	}
	for _, s := range stmts {
		if err := db.Exec(s).Error; err != nil {
			return err
		}
	}
	return nil
}

// isOverlapViolation reports whether err is a Postgres unique or exclusion
// violation raised by a concurrent insert.
func isOverlapViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgUniqueViolation || pgErr.Code == pgExclusionViolation
}

// lockUser takes a Postgres advisory lock on userID that is held until tx
// commits or rolls back, so concurrent instances serialize one user's
// bookings. Other dialects have no cross-process lock; the keyed lock in
// Service covers a single instance.
func lockUser(tx *gorm.DB, userID int64) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", fmt.Sprintf("reservation:user:%d", userID)).Error
}

package reservation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"linkup/internal/pkg/lock"
)

func TestLockUser_Postgres(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=linkup dbname=linkup sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	var sql string
	var vars []any
	require.NoError(t, db.Callback().Raw().Register("test:capture", func(tx *gorm.DB) {
		sql = tx.Statement.SQL.String()
		vars = tx.Statement.Vars
	}))

	require.NoError(t, lockUser(db, 42))
	assert.Contains(t, sql, "pg_advisory_xact_lock")
	assert.Equal(t, []any{"reservation:user:42"}, vars)
}

func TestLockUser_NoopOnSQLite(t *testing.T) {
	f := newFixture(t, at(9, 0))

	require.NoError(t, f.db.Transaction(func(tx *gorm.DB) error {
		return lockUser(tx, userA)
	}))
}

func TestCreate_SecondBookingRefusedInsideTx(t *testing.T) {
	f := newFixture(t, at(14, 0))
	ctx := context.Background()
	pc := f.computer(t, "Computer 1")
	room := f.room(t, "Room 1")

	_, err := f.svc.Create(ctx, userA, CreateRequest{Type: "computer", ID: pc.ID, ReserveNow: true})
	require.NoError(t, err)

	// A second instance does not share the keyed lock; the ledger check
	// inside the locked transaction still refuses the booking.
	other := NewService(Deps{
		DB:       f.db,
		Registry: f.registry,
		Ledger:   f.ledger,
		Sweeper:  f.sweeper,
		Schedule: DefaultSchedule(),
		Locks:    lock.NewKeyed(),
		Clock:    f.clock,
		Events:   f.events,
	})
	_, err = other.Create(ctx, userA, CreateRequest{Type: "room", ID: room.ID, ReserveNow: true})
	assert.ErrorIs(t, err, ErrAlreadyActive)
}

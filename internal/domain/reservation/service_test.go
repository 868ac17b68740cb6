package reservation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkup/internal/domain/resource"
	"linkup/internal/queue"
)

const (
	userA int64 = 101
	userB int64 = 102
	staff int64 = 900
)

func TestComputerScenario(t *testing.T) {
	f := newFixture(t, at(14, 0))
	ctx := context.Background()
	pc := f.computer(t, "Computer 1")

	row, err := f.svc.Create(ctx, userA, CreateRequest{Type: "computer", ID: pc.ID, ReserveNow: true})
	require.NoError(t, err)
	assert.True(t, at(14, 0).Equal(row.Start))
	assert.True(t, at(15, 0).Equal(row.End))

	got := f.reload(t, pc.Key())
	assert.Equal(t, resource.StatusReserved, got.CurrentStatus())
	assert.True(t, resource.HeldBy(got, userA))

	f.clock.Set(at(14, 10))
	_, err = f.svc.Create(ctx, userB, CreateRequest{Type: "computer", ID: pc.ID, Start: startAt(14, 30)})
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.True(t, resource.HeldBy(f.reload(t, pc.Key()), userA), "rejected request must not mutate")

	f.clock.Set(at(15, 1))
	result, err := f.sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Expired: 1, Reset: 1}, result)

	got = f.reload(t, pc.Key())
	assert.Equal(t, resource.StatusAvailable, got.CurrentStatus())
	assert.Nil(t, got.HolderID())

	assert.Equal(t, []string{queue.EventReservationCreated, queue.EventStatusChanged}, f.events.Types())
	reset, ok := f.events.Last(queue.EventStatusChanged)
	require.True(t, ok)
	assert.Equal(t, string(resource.StatusAvailable), reset.Status)
}

func TestRoomRepairScenario(t *testing.T) {
	f := newFixture(t, at(10, 0))
	ctx := context.Background()
	room := f.room(t, "Room 3")

	_, err := f.svc.Create(ctx, userA, CreateRequest{Type: "room", ID: room.ID, Start: startAt(16, 0)})
	require.NoError(t, err)

	err = f.resources.SetStatus(ctx, resource.Caller{UserID: staff, Elevated: true}, resource.KindRoom, room.ID, resource.StatusOutOfOrder)
	require.NoError(t, err)

	mine, err := f.svc.Current(ctx, userA)
	require.NoError(t, err)
	assert.Nil(t, mine, "override removes the live reservation")

	got := f.reload(t, room.Key())
	assert.Equal(t, resource.StatusOutOfOrder, got.CurrentStatus())
	assert.Nil(t, got.HolderID())

	_, err = f.svc.Create(ctx, userB, CreateRequest{Type: "room", ID: room.ID, Start: startAt(17, 0)})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestElevatedReservedOverrideClearsFutureRows(t *testing.T) {
	f := newFixture(t, at(10, 0))
	ctx := context.Background()
	pc := f.computer(t, "Computer 2")

	_, err := f.svc.Create(ctx, userA, CreateRequest{Type: "computer", ID: pc.ID, Start: startAt(12, 0)})
	require.NoError(t, err)

	require.NoError(t, f.resources.SetStatus(ctx, resource.Caller{UserID: staff, Elevated: true}, resource.KindComputer, pc.ID, resource.StatusReserved))

	rows, err := f.ledger.LiveForResource(ctx, pc.Key(), f.clock.Now())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestForbiddenForeignRelease(t *testing.T) {
	f := newFixture(t, at(14, 0))
	ctx := context.Background()
	pc := f.computer(t, "Computer 1")

	_, err := f.svc.Create(ctx, userA, CreateRequest{Type: "computer", ID: pc.ID, ReserveNow: true})
	require.NoError(t, err)

	err = f.resources.SetStatus(ctx, resource.Caller{UserID: userB}, resource.KindComputer, pc.ID, resource.StatusAvailable)
	assert.ErrorIs(t, err, ErrForbidden)

	got := f.reload(t, pc.Key())
	assert.Equal(t, resource.StatusReserved, got.CurrentStatus())
	assert.True(t, resource.HeldBy(got, userA))
}

func TestSelfReleaseDropsOwnRows(t *testing.T) {
	f := newFixture(t, at(14, 0))
	ctx := context.Background()
	pc := f.computer(t, "Computer 1")

	_, err := f.svc.Create(ctx, userA, CreateRequest{Type: "computer", ID: pc.ID, ReserveNow: true})
	require.NoError(t, err)

	require.NoError(t, f.resources.SetStatus(ctx, resource.Caller{UserID: userA}, resource.KindComputer, pc.ID, resource.StatusAvailable))

	mine, err := f.svc.Current(ctx, userA)
	require.NoError(t, err)
	assert.Nil(t, mine)
	assert.Equal(t, resource.StatusAvailable, f.reload(t, pc.Key()).CurrentStatus())
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t, at(13, 50))
	ctx := context.Background()
	pc := f.computer(t, "Computer 1")

	cases := []struct {
		name string
		req  CreateRequest
		want error
	}{
		{"unknown type", CreateRequest{Type: "desk", ID: pc.ID, Start: startAt(14, 0)}, ErrValidation},
		{"garbage start", CreateRequest{Type: "computer", ID: pc.ID, Start: "soon"}, ErrInvalidStart},
		{"missing start", CreateRequest{Type: "computer", ID: pc.ID}, ErrInvalidStart},
		{"tomorrow", CreateRequest{Type: "computer", ID: pc.ID, Start: "2026-03-03T14:00:00"}, ErrNotToday},
		{"quarter past", CreateRequest{Type: "computer", ID: pc.ID, Start: startAt(14, 15)}, ErrNotHalfHour},
		{"past midnight", CreateRequest{Type: "computer", ID: pc.ID, Start: startAt(23, 0)}, ErrOutsideHours},
		{"elapsed", CreateRequest{Type: "computer", ID: pc.ID, Start: startAt(12, 30)}, ErrSlotElapsed},
		{"missing resource", CreateRequest{Type: "computer", ID: 9999, Start: startAt(14, 0)}, ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, userA, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	rows, err := f.ledger.LiveForUser(ctx, userA, f.clock.Now())
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, resource.StatusAvailable, f.reload(t, pc.Key()).CurrentStatus())
}

func TestSingleActiveReservationPerUser(t *testing.T) {
	f := newFixture(t, at(9, 0))
	ctx := context.Background()
	pc1 := f.computer(t, "Computer 1")
	pc2 := f.computer(t, "Computer 2")

	_, err := f.svc.Create(ctx, userA, CreateRequest{Type: "computer", ID: pc1.ID, Start: startAt(14, 0)})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, userA, CreateRequest{Type: "computer", ID: pc2.ID, Start: startAt(16, 0)})
	assert.ErrorIs(t, err, ErrAlreadyActive)

	f.clock.Set(at(15, 0))
	_, err = f.svc.Create(ctx, userA, CreateRequest{Type: "computer", ID: pc2.ID, Start: startAt(16, 0)})
	assert.NoError(t, err, "a reservation ending at now no longer counts")
}

func TestConcurrentCreateNoDoubleBooking(t *testing.T) {
	f := newFixture(t, at(9, 0))
	ctx := context.Background()
	pc := f.computer(t, "Computer 1")

	const racers = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(user int64) {
			defer wg.Done()
			_, err := f.svc.Create(ctx, user, CreateRequest{Type: "computer", ID: pc.ID, Start: startAt(14, 0)})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, ErrSlotConflict):
				conflicts++
			}
		}(int64(1000 + i))
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, racers-1, conflicts)

	rows, err := f.ledger.LiveForResource(ctx, pc.Key(), f.clock.Now())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestCancelAllForIsIdempotent(t *testing.T) {
	f := newFixture(t, at(14, 0))
	ctx := context.Background()
	pc := f.computer(t, "Computer 1")

	_, err := f.svc.Create(ctx, userA, CreateRequest{Type: "computer", ID: pc.ID, ReserveNow: true})
	require.NoError(t, err)

	cleared, err := f.svc.CancelAllFor(ctx, userA)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)

	got := f.reload(t, pc.Key())
	assert.Equal(t, resource.StatusAvailable, got.CurrentStatus())
	assert.Nil(t, got.HolderID())

	cleared, err = f.svc.CancelAllFor(ctx, userA)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cleared)

	assert.Equal(t, []string{queue.EventReservationCreated, queue.EventReservationCancelled}, f.events.Types())
}

func TestCancelLeavesOtherHolderAlone(t *testing.T) {
	f := newFixture(t, at(14, 0))
	ctx := context.Background()
	pc := f.computer(t, "Computer 1")

	_, err := f.svc.Create(ctx, userB, CreateRequest{Type: "computer", ID: pc.ID, ReserveNow: true})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, userA, CreateRequest{Type: "computer", ID: pc.ID, Start: startAt(16, 0)})
	require.NoError(t, err)

	cleared, err := f.svc.CancelAllFor(ctx, userA)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)

	got := f.reload(t, pc.Key())
	assert.Equal(t, resource.StatusReserved, got.CurrentStatus())
	assert.True(t, resource.HeldBy(got, userB), "the running reservation keeps the resource")

	cancelled, ok := f.events.Last(queue.EventReservationCancelled)
	require.True(t, ok)
	assert.Empty(t, cancelled.Status, "nothing visible changed")
}

func TestFutureBookingEventsMatchClassification(t *testing.T) {
	f := newFixture(t, at(10, 0))
	ctx := context.Background()
	pc := f.computer(t, "Computer 4")

	_, err := f.svc.Create(ctx, userA, CreateRequest{Type: "computer", ID: pc.ID, Start: startAt(14, 0)})
	require.NoError(t, err)

	created, ok := f.events.Last(queue.EventReservationCreated)
	require.True(t, ok)
	assert.Empty(t, created.Status)

	require.NoError(t, f.svc.Sweep(ctx))
	view, err := f.svc.Classified(ctx, userB, []resource.Resource{f.reload(t, pc.Key())})
	require.NoError(t, err)
	assert.Equal(t, resource.StatusAvailable, view[pc.Key()])

	// The cached claim from Create is reset, and viewers are told so.
	changed, ok := f.events.Last(queue.EventStatusChanged)
	require.True(t, ok)
	assert.Equal(t, string(resource.StatusAvailable), changed.Status)

	f.clock.Set(at(14, 0))
	result, err := f.sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Activated: 1}, result)

	got := f.reload(t, pc.Key())
	assert.Equal(t, resource.StatusReserved, got.CurrentStatus())
	assert.True(t, resource.HeldBy(got, userA))

	changed, ok = f.events.Last(queue.EventStatusChanged)
	require.True(t, ok)
	assert.Equal(t, string(resource.StatusReserved), changed.Status)
	assert.Equal(t, userA, changed.UserID)

	view, err = f.svc.Classified(ctx, userB, []resource.Resource{got})
	require.NoError(t, err)
	assert.Equal(t, resource.StatusOccupied, view[pc.Key()])
}

func TestImmediateBookingPublishesReserved(t *testing.T) {
	f := newFixture(t, at(14, 0))
	ctx := context.Background()
	pc := f.computer(t, "Computer 5")

	_, err := f.svc.Create(ctx, userA, CreateRequest{Type: "computer", ID: pc.ID, ReserveNow: true})
	require.NoError(t, err)

	created, ok := f.events.Last(queue.EventReservationCreated)
	require.True(t, ok)
	assert.Equal(t, string(resource.StatusReserved), created.Status)
	assert.Equal(t, userA, created.UserID)

	cleared, err := f.svc.CancelAllFor(ctx, userA)
	require.NoError(t, err)
	require.Equal(t, int64(1), cleared)

	cancelled, ok := f.events.Last(queue.EventReservationCancelled)
	require.True(t, ok)
	assert.Equal(t, string(resource.StatusAvailable), cancelled.Status)
}

func TestCreateThenListSlots(t *testing.T) {
	f := newFixture(t, at(13, 50))
	ctx := context.Background()
	pc := f.computer(t, "Computer 1")

	_, err := f.svc.Create(ctx, userA, CreateRequest{Type: "computer", ID: pc.ID, Start: startAt(14, 0)})
	require.NoError(t, err)

	listing, err := f.svc.ListSlots(ctx, userA, "computer", pc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Computer 1", listing.Resource.DisplayName())
	assert.True(t, listing.UserActive)

	var covering *Slot
	for i := range listing.Slots {
		if listing.Slots[i].Start.Equal(at(14, 0)) {
			covering = &listing.Slots[i]
		}
	}
	require.NotNil(t, covering)
	assert.False(t, covering.Available)

	other, err := f.svc.ListSlots(ctx, userB, "computer", pc.ID)
	require.NoError(t, err)
	assert.False(t, other.UserActive)

	f.clock.Set(at(14, 5))
	other, err = f.svc.ListSlots(ctx, userB, "computer", pc.ID)
	require.NoError(t, err)
	assert.Equal(t, resource.StatusOccupied, other.Status)
	assert.False(t, other.CurrentAvailable)

	mine, err := f.svc.ListSlots(ctx, userA, "computer", pc.ID)
	require.NoError(t, err)
	assert.Equal(t, resource.StatusReserved, mine.Status)
}

func TestReservationEndingNowIsExpired(t *testing.T) {
	f := newFixture(t, at(14, 0))
	ctx := context.Background()
	pc := f.computer(t, "Computer 1")

	_, err := f.svc.Create(ctx, userA, CreateRequest{Type: "computer", ID: pc.ID, ReserveNow: true})
	require.NoError(t, err)

	f.clock.Set(at(15, 0))
	mine, err := f.svc.Current(ctx, userA)
	require.NoError(t, err)
	assert.Nil(t, mine)

	listing, err := f.svc.ListSlots(ctx, userA, "computer", pc.ID)
	require.NoError(t, err)
	assert.False(t, listing.UserActive)
	assert.Equal(t, resource.StatusAvailable, listing.Status)
	for _, s := range listing.Slots {
		assert.True(t, s.Available, "slot %s", s.Start.Format("15:04"))
	}
}

func TestClassified(t *testing.T) {
	f := newFixture(t, at(14, 0))
	ctx := context.Background()
	pc := f.computer(t, "Computer 1")
	room := f.room(t, "Room 1")

	_, err := f.svc.Create(ctx, userA, CreateRequest{Type: "computer", ID: pc.ID, ReserveNow: true})
	require.NoError(t, err)

	items := []resource.Resource{f.reload(t, pc.Key()), f.reload(t, room.Key())}
	view, err := f.svc.Classified(ctx, userB, items)
	require.NoError(t, err)
	assert.Equal(t, resource.StatusOccupied, view[pc.Key()])
	assert.Equal(t, resource.StatusAvailable, view[room.Key()])

	view, err = f.svc.Classified(ctx, userA, items)
	require.NoError(t, err)
	assert.Equal(t, resource.StatusReserved, view[pc.Key()])
}

func TestRepositoryTimesRoundTrip(t *testing.T) {
	f := newFixture(t, at(9, 0))
	ctx := context.Background()
	pc := f.computer(t, "Computer 1")

	row := &Reservation{Kind: resource.KindComputer, ResourceID: pc.ID, UserID: userA, Start: at(14, 0), End: at(15, 0)}
	require.NoError(t, f.ledger.Insert(ctx, row))

	overlap, err := f.ledger.Overlapping(ctx, pc.Key(), at(14, 30), at(15, 30))
	require.NoError(t, err)
	require.Len(t, overlap, 1)
	assert.True(t, overlap[0].Start.Equal(at(14, 0)))

	touching, err := f.ledger.Overlapping(ctx, pc.Key(), at(15, 0), at(16, 0))
	require.NoError(t, err)
	assert.Empty(t, touching)

	cur, err := f.ledger.CurrentFor(ctx, pc.Key(), at(14, 0))
	require.NoError(t, err)
	require.NotNil(t, cur)

	cur, err = f.ledger.CurrentFor(ctx, pc.Key(), at(15, 0))
	require.NoError(t, err)
	assert.Nil(t, cur)

	n, err := f.ledger.DeleteExpired(ctx, at(15, 0).Add(-time.Second))
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = f.ledger.DeleteExpired(ctx, at(15, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

package reservation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"linkup/internal/domain/resource"
	"linkup/internal/pkg/clock"
	"linkup/internal/pkg/lock"
	"linkup/internal/queue"
)

type Service struct {
	db       *gorm.DB
	registry *resource.Registry
	ledger   *Repository
	sweeper  *Sweeper
	schedule Schedule
	locks    *lock.Keyed
	clock    clock.Clock
	events   queue.Sink
}

type Deps struct {
	DB       *gorm.DB
	Registry *resource.Registry
	Ledger   *Repository
	Sweeper  *Sweeper
	Schedule Schedule
	Locks    *lock.Keyed
	Clock    clock.Clock
	Events   queue.Sink
}

func NewService(d Deps) *Service {
	if d.Events == nil {
		d.Events = queue.Discard
	}
	return &Service{
		db:       d.DB,
		registry: d.Registry,
		ledger:   d.Ledger,
		sweeper:  d.Sweeper,
		schedule: d.Schedule,
		locks:    d.Locks,
		clock:    d.Clock,
		events:   d.Events,
	}
}

func (s *Service) Schedule() Schedule { return s.schedule }

func (s *Service) Now() time.Time { return s.clock.Now() }

// Sweep runs the reconciliation sweep. Handlers that read status call it
// first.
func (s *Service) Sweep(ctx context.Context) error {
	return s.sweeper.Reconcile(ctx)
}

// SweepNow runs a sweep and reports what it changed.
func (s *Service) SweepNow(ctx context.Context) (SweepResult, error) {
	return s.sweeper.Sweep(ctx)
}

// Create books one slot for userID. The start is RoundUp(now) for an
// immediate booking, otherwise the parsed req.Start; the end is one slot
// length later.
func (s *Service) Create(ctx context.Context, userID int64, req CreateRequest) (*Reservation, error) {
	kind, err := resource.ParseKind(req.Type)
	if err != nil {
		return nil, err
	}
	if req.ID <= 0 {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}

	now := s.clock.Now()
	var start time.Time
	if req.ReserveNow {
		start = RoundUp(now)
	} else {
		start, err = ParseStart(req.Start, s.clock.Location())
		if err != nil {
			return nil, err
		}
	}
	end := start.Add(s.schedule.SlotLength)

	if err := s.schedule.CheckWindow(start, end, now); err != nil {
		return nil, err
	}

	if err := s.sweeper.Reconcile(ctx); err != nil {
		return nil, err
	}

	key := resource.Key{Kind: kind, ID: req.ID}
	unlock := s.locks.LockAll(resource.UserLockKey(userID), key.String())
	defer unlock()

	row := &Reservation{Kind: kind, ResourceID: req.ID, UserID: userID, Start: start, End: end}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, userID); err != nil {
			return err
		}
		registry := s.registry.WithTx(tx)
		ledger := s.ledger.WithTx(tx)

		res, err := registry.ResolveForUpdate(ctx, kind, req.ID)
		if err != nil {
			return err
		}
		if res.CurrentStatus().Terminal() {
			return ErrUnavailable
		}

		active, err := ledger.LiveForUser(ctx, userID, now)
		if err != nil {
			return err
		}
		if len(active) > 0 {
			return ErrAlreadyActive
		}

		clash, err := ledger.Overlapping(ctx, key, start, end)
		if err != nil {
			return err
		}
		if len(clash) > 0 {
			return ErrSlotConflict
		}

		if err := ledger.Insert(ctx, row); err != nil {
			if isOverlapViolation(err) {
				return ErrSlotConflict
			}
			return err
		}

		holder := userID
		res.SetStatus(resource.StatusReserved)
		res.SetHolder(&holder)
		return registry.Save(ctx, res)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("reservation_created id=%d resource=%s user_id=%d start=%s end=%s", row.ID, key, userID, row.Start.Format(time.RFC3339), row.End.Format(time.RFC3339))
	// A booking that has not started yet changes nothing viewers see.
	var shown resource.Status
	if row.ActiveAt(now) {
		shown = resource.StatusReserved
	}
	s.publish(ctx, queue.EventReservationCreated, *row, shown, now)
	return row, nil
}

// CancelAllFor deletes every live reservation of userID and releases the
// resources that still name the user as holder. Returns the number of rows
// removed; zero when there was nothing to cancel.
func (s *Service) CancelAllFor(ctx context.Context, userID int64) (int64, error) {
	if err := s.sweeper.Reconcile(ctx); err != nil {
		return 0, err
	}

	unlock := s.locks.Lock(resource.UserLockKey(userID))
	defer unlock()

	now := s.clock.Now()
	var rows []Reservation
	var cleared int64
	released := make(map[resource.Key]bool)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, userID); err != nil {
			return err
		}
		registry := s.registry.WithTx(tx)
		ledger := s.ledger.WithTx(tx)

		var err error
		rows, err = ledger.LiveForUser(ctx, userID, now)
		if err != nil || len(rows) == 0 {
			return err
		}

		ids := make([]int64, 0, len(rows))
		for _, r := range rows {
			ids = append(ids, r.ID)
			res, err := registry.ResolveForUpdate(ctx, r.Kind, r.ResourceID)
			if err != nil {
				if errors.Is(err, resource.ErrNotFound) {
					continue
				}
				return err
			}
			if !resource.HeldBy(res, userID) || res.CurrentStatus().Terminal() {
				continue
			}
			resource.Release(res)
			if err := registry.Save(ctx, res); err != nil {
				return err
			}
			released[res.Key()] = true
		}

		cleared, err = ledger.DeleteByIDs(ctx, ids)
		return err
	})
	if err != nil {
		return 0, err
	}

	if cleared > 0 {
		log.Printf("reservation_cancelled user_id=%d cleared=%d", userID, cleared)
	}
	for _, r := range rows {
		var shown resource.Status
		if released[r.Key()] {
			shown = resource.StatusAvailable
		}
		s.publish(ctx, queue.EventReservationCancelled, r, shown, now)
	}
	return cleared, nil
}

// SlotListing is the availability view of one resource for today.
type SlotListing struct {
	Resource         resource.Resource
	Status           resource.Status
	Slots            []Slot
	UserActive       bool
	CurrentAvailable bool
	Now              time.Time
}

func (s *Service) ListSlots(ctx context.Context, userID int64, kindRaw string, id int64) (*SlotListing, error) {
	kind, err := resource.ParseKind(kindRaw)
	if err != nil {
		return nil, err
	}
	if err := s.sweeper.Reconcile(ctx); err != nil {
		return nil, err
	}

	res, err := s.registry.Resolve(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	rows, err := s.ledger.LiveForResource(ctx, res.Key(), now)
	if err != nil {
		return nil, err
	}
	mine, err := s.ledger.LiveForUser(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	status := Classify(res.CurrentStatus(), rows, userID, now)
	return &SlotListing{
		Resource:         res,
		Status:           status,
		Slots:            s.schedule.Slots(now, rows),
		UserActive:       len(mine) > 0,
		CurrentAvailable: status == resource.StatusAvailable,
		Now:              now,
	}, nil
}

// Current returns the caller's live reservation, or nil.
func (s *Service) Current(ctx context.Context, userID int64) (*Reservation, error) {
	if err := s.sweeper.Reconcile(ctx); err != nil {
		return nil, err
	}
	rows, err := s.ledger.LiveForUser(ctx, userID, s.clock.Now())
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// Classified returns the caller's view of each resource's status. The
// caller is expected to have swept already.
func (s *Service) Classified(ctx context.Context, callerID int64, items []resource.Resource) (map[resource.Key]resource.Status, error) {
	now := s.clock.Now()
	live, err := s.ledger.Live(ctx, now)
	if err != nil {
		return nil, err
	}
	return ClassifyAll(items, live, callerID, now), nil
}

func (s *Service) publish(ctx context.Context, typ string, r Reservation, status resource.Status, at time.Time) {
	start, end := r.Start, r.End
	s.events.Publish(ctx, queue.Event{
		Type:         typ,
		ResourceType: string(r.Kind),
		ResourceID:   r.ResourceID,
		Status:       string(status),
		UserID:       r.UserID,
		Start:        &start,
		End:          &end,
		OccurredAt:   at,
	})
}

var startLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseStart reads an ISO-8601 timestamp. Timestamps without an offset are
// taken in loc.
func ParseStart(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrInvalidStart
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range startLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidStart, raw)
}

package resource

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"linkup/internal/pkg/clock"
	"linkup/internal/pkg/lock"
	"linkup/internal/queue"
)

// Reconciler brings cached statuses in line with the reservation ledger.
type Reconciler interface {
	Reconcile(ctx context.Context) error
}

// LiveReservations removes reservations that have not ended yet. When
// userID is non-nil only that user's rows are removed. It runs inside the
// caller's transaction.
type LiveReservations interface {
	DeleteLive(ctx context.Context, tx *gorm.DB, key Key, userID *int64, now time.Time) (int64, error)
}

// Caller is the subset of the authenticated principal the service needs.
type Caller struct {
	UserID   int64
	Elevated bool
}

type Service struct {
	registry   *Registry
	ledger     LiveReservations
	reconciler Reconciler
	locks      *lock.Keyed
	clock      clock.Clock
	events     queue.Sink
}

func NewService(registry *Registry, ledger LiveReservations, reconciler Reconciler, locks *lock.Keyed, clk clock.Clock, events queue.Sink) *Service {
	if events == nil {
		events = queue.Discard
	}
	return &Service{
		registry:   registry,
		ledger:     ledger,
		reconciler: reconciler,
		locks:      locks,
		clock:      clk,
		events:     events,
	}
}

// SetStatus applies a status override. Elevated callers may set any status
// valid for the kind and always win over live reservations; other callers
// may only claim an available resource or release one they hold.
func (s *Service) SetStatus(ctx context.Context, caller Caller, kind Kind, id int64, status Status) error {
	if !kind.Allows(status) {
		return fmt.Errorf("%w: %q for %s", ErrInvalidStatus, status, kind)
	}
	if err := s.reconciler.Reconcile(ctx); err != nil {
		return err
	}

	key := Key{Kind: kind, ID: id}
	unlock := s.locks.LockAll(UserLockKey(caller.UserID), key.String())
	defer unlock()

	now := s.clock.Now()
	var cleared int64
	err := s.registry.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err := s.registry.WithTx(tx).ResolveForUpdate(ctx, kind, id)
		if err != nil {
			return err
		}

		if caller.Elevated {
			res.SetStatus(status)
			if status == StatusReserved {
				holder := caller.UserID
				res.SetHolder(&holder)
			} else {
				res.SetHolder(nil)
			}
			cleared, err = s.ledger.DeleteLive(ctx, tx, key, nil, now)
			if err != nil {
				return err
			}
			return s.registry.WithTx(tx).Save(ctx, res)
		}

		current := res.CurrentStatus()
		switch {
		case current == StatusAvailable && status == StatusReserved:
			holder := caller.UserID
			res.SetStatus(StatusReserved)
			res.SetHolder(&holder)
		case current == StatusReserved && status == StatusAvailable && HeldBy(res, caller.UserID):
			Release(res)
			self := caller.UserID
			cleared, err = s.ledger.DeleteLive(ctx, tx, key, &self, now)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: cannot change %s from %s to %s", ErrForbidden, key, current, status)
		}
		return s.registry.WithTx(tx).Save(ctx, res)
	})
	if err != nil {
		return err
	}

	log.Printf("resource_status_set resource=%s status=%s user_id=%d elevated=%t cleared=%d", key, status, caller.UserID, caller.Elevated, cleared)
	// Overrides leave no reservation covering now, so viewers see the
	// uncovered form of the stored status.
	s.events.Publish(ctx, queue.Event{
		Type:         queue.EventStatusChanged,
		ResourceType: string(kind),
		ResourceID:   id,
		Status:       string(status.Uncovered()),
		UserID:       caller.UserID,
		OccurredAt:   now,
	})
	return nil
}

// Move places the resource's floor-map marker. Any signed-in caller may
// move a marker. Coordinates are percentages of the map image, kept to two
// decimals.
func (s *Service) Move(ctx context.Context, caller Caller, kind Kind, id int64, x, y decimal.Decimal) error {
	x, y = x.Round(2), y.Round(2)
	if !inPercentRange(x) || !inPercentRange(y) {
		return ErrInvalidPosition
	}

	key := Key{Kind: kind, ID: id}
	unlock := s.locks.Lock(key.String())
	defer unlock()

	err := s.registry.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err := s.registry.WithTx(tx).ResolveForUpdate(ctx, kind, id)
		if err != nil {
			return err
		}
		res.MoveTo(x, y)
		return s.registry.WithTx(tx).Save(ctx, res)
	})
	if err != nil {
		return err
	}

	log.Printf("resource_moved resource=%s x=%s y=%s user_id=%d", key, x, y, caller.UserID)
	return nil
}

var hundred = decimal.NewFromInt(100)

func inPercentRange(v decimal.Decimal) bool {
	return !v.IsNegative() && v.LessThanOrEqual(hundred)
}

// UserLockKey is the keyed-lock name for per-user serialization. Callers
// always take the user key before a resource key.
func UserLockKey(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

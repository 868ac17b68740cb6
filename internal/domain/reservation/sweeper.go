package reservation

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"linkup/internal/domain/resource"
	"linkup/internal/pkg/clock"
	"linkup/internal/queue"
)

// Sweeper expires finished ledger rows and brings cached resource status in
// line with the rows covering now.
type Sweeper struct {
	db       *gorm.DB
	registry *resource.Registry
	ledger   *Repository
	clock    clock.Clock
	events   queue.Sink
}

type SweepResult struct {
	Expired   int64
	Reset     int
	Activated int
}

func NewSweeper(db *gorm.DB, registry *resource.Registry, ledger *Repository, clk clock.Clock, events queue.Sink) *Sweeper {
	if events == nil {
		events = queue.Discard
	}
	return &Sweeper{db: db, registry: registry, ledger: ledger, clock: clk, events: events}
}

// Sweep deletes rows with end <= now, releases every held resource without
// a row covering now, and marks resources whose reservation has started as
// reserved by its owner. All steps share one transaction; a status change
// event is published for every resource touched once it commits.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	now := s.clock.Now()
	var result SweepResult
	var changed []queue.Event

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ledger := s.ledger.WithTx(tx)
		registry := s.registry.WithTx(tx)
		result = SweepResult{}
		changed = changed[:0]

		expired, err := ledger.DeleteExpired(ctx, now)
		if err != nil {
			return err
		}
		result.Expired = expired

		held, err := registry.ListHeld(ctx)
		if err != nil {
			return err
		}
		for _, res := range held {
			cur, err := ledger.CurrentFor(ctx, res.Key(), now)
			if err != nil {
				return err
			}
			if cur != nil {
				continue
			}
			resource.Release(res)
			if err := registry.Save(ctx, res); err != nil {
				return err
			}
			result.Reset++
			changed = append(changed, statusEvent(res.Key(), resource.StatusAvailable, 0, now))
		}

		started, err := ledger.Started(ctx, now)
		if err != nil {
			return err
		}
		for _, row := range started {
			res, err := registry.ResolveForUpdate(ctx, row.Kind, row.ResourceID)
			if errors.Is(err, resource.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if res.CurrentStatus().Terminal() {
				continue
			}
			if res.CurrentStatus() == resource.StatusReserved && resource.HeldBy(res, row.UserID) {
				continue
			}
			holder := row.UserID
			res.SetStatus(resource.StatusReserved)
			res.SetHolder(&holder)
			if err := registry.Save(ctx, res); err != nil {
				return err
			}
			result.Activated++
			changed = append(changed, statusEvent(res.Key(), resource.StatusReserved, row.UserID, now))
		}
		return nil
	})
	if err != nil {
		return SweepResult{}, err
	}

	if result.Expired > 0 || result.Reset > 0 || result.Activated > 0 {
		log.Printf("reservation_sweep expired=%d reset=%d activated=%d", result.Expired, result.Reset, result.Activated)
	}
	for _, ev := range changed {
		s.events.Publish(ctx, ev)
	}
	return result, nil
}

func statusEvent(key resource.Key, status resource.Status, holder int64, at time.Time) queue.Event {
	return queue.Event{
		Type:         queue.EventStatusChanged,
		ResourceType: string(key.Kind),
		ResourceID:   key.ID,
		Status:       string(status),
		UserID:       holder,
		OccurredAt:   at,
	}
}

// Reconcile runs a sweep and discards the counts.
func (s *Sweeper) Reconcile(ctx context.Context) error {
	_, err := s.Sweep(ctx)
	return err
}

// ScheduleSweeps runs the sweeper on a cron spec in addition to the lazy
// per-request sweep. The caller starts and stops the returned scheduler.
func ScheduleSweeps(spec string, s *Sweeper) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if _, err := s.Sweep(context.Background()); err != nil {
			log.Printf("reservation_sweep_failed source=cron error=%v", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

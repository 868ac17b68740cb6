package reservation

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"linkup/internal/database"
	"linkup/internal/domain/resource"
	"linkup/internal/pkg/clock"
	"linkup/internal/pkg/lock"
	"linkup/internal/queue"
)

type fixture struct {
	db        *gorm.DB
	clock     *clock.Fixed
	registry  *resource.Registry
	ledger    *Repository
	sweeper   *Sweeper
	svc       *Service
	resources *resource.Service
	events    *queue.Recorder
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(fmt.Sprintf("file:reservation_test_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, append(resource.Models(), Models()...)...))

	f := &fixture{
		db:       db,
		clock:    clock.NewFixed(now),
		registry: resource.NewRegistry(db),
		ledger:   NewRepository(db),
		events:   &queue.Recorder{},
	}
	locks := lock.NewKeyed()
	f.sweeper = NewSweeper(db, f.registry, f.ledger, f.clock, f.events)
	f.svc = NewService(Deps{
		DB:       db,
		Registry: f.registry,
		Ledger:   f.ledger,
		Sweeper:  f.sweeper,
		Schedule: DefaultSchedule(),
		Locks:    locks,
		Clock:    f.clock,
		Events:   f.events,
	})
	f.resources = resource.NewService(f.registry, f.ledger, f.sweeper, locks, f.clock, f.events)
	return f
}

func (f *fixture) computer(t *testing.T, name string) *resource.Computer {
	t.Helper()
	c := &resource.Computer{Name: name, Status: resource.StatusAvailable}
	require.NoError(t, f.registry.Create(context.Background(), c))
	return c
}

func (f *fixture) room(t *testing.T, name string) *resource.StudyRoom {
	t.Helper()
	r := &resource.StudyRoom{Name: name, Status: resource.StatusAvailable}
	require.NoError(t, f.registry.Create(context.Background(), r))
	return r
}

func (f *fixture) reload(t *testing.T, key resource.Key) resource.Resource {
	t.Helper()
	res, err := f.registry.Resolve(context.Background(), key.Kind, key.ID)
	require.NoError(t, err)
	return res
}

func startAt(hour, minute int) string {
	return fmt.Sprintf("2026-03-02T%02d:%02d:00", hour, minute)
}

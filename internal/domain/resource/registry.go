package resource

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Registry resolves resources by kind and id and persists their cached
// status, holder and marker position.
type Registry struct {
	db *gorm.DB
}

func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// WithTx returns a Registry bound to tx.
func (r *Registry) WithTx(tx *gorm.DB) *Registry {
	return &Registry{db: tx}
}

func (r *Registry) DB() *gorm.DB { return r.db }

func (r *Registry) Resolve(ctx context.Context, kind Kind, id int64) (Resource, error) {
	return r.resolve(r.db.WithContext(ctx), kind, id)
}

// ResolveForUpdate reads the row with SELECT ... FOR UPDATE. Must be called
// on a Registry bound to a transaction.
func (r *Registry) ResolveForUpdate(ctx context.Context, kind Kind, id int64) (Resource, error) {
	return r.resolve(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), kind, id)
}

func (r *Registry) resolve(q *gorm.DB, kind Kind, id int64) (Resource, error) {
	res, err := newOfKind(kind)
	if err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, Key{Kind: kind, ID: id})
	}
	err = q.First(res, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, Key{Kind: kind, ID: id})
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Registry) Save(ctx context.Context, res Resource) error {
	return r.db.WithContext(ctx).
		Model(res).
		Select("status", "reserved_by", "x", "y", "updated_at").
		Updates(res).Error
}

func (r *Registry) Create(ctx context.Context, res Resource) error {
	return r.db.WithContext(ctx).Create(res).Error
}

func (r *Registry) ListComputers(ctx context.Context) ([]Computer, error) {
	var out []Computer
	err := r.db.WithContext(ctx).Order("name").Find(&out).Error
	return out, err
}

func (r *Registry) ListRooms(ctx context.Context) ([]StudyRoom, error) {
	var out []StudyRoom
	err := r.db.WithContext(ctx).Order("name").Find(&out).Error
	return out, err
}

// ListHeld returns, locked for update, every resource whose cached status
// names a holder.
func (r *Registry) ListHeld(ctx context.Context) ([]Resource, error) {
	q := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("status IN ? AND reserved_by IS NOT NULL", []Status{StatusReserved, StatusOccupied}).
		Order("id").
		Session(&gorm.Session{})

	var computers []Computer
	if err := q.Find(&computers).Error; err != nil {
		return nil, err
	}
	var rooms []StudyRoom
	if err := q.Find(&rooms).Error; err != nil {
		return nil, err
	}

	out := make([]Resource, 0, len(computers)+len(rooms))
	for i := range computers {
		out = append(out, &computers[i])
	}
	for i := range rooms {
		out = append(out, &rooms[i])
	}
	return out, nil
}

package reservation

import (
	"time"

	"linkup/internal/domain/resource"
)

// Reservation is one ledger row: user holds resource over [Start, End).
type Reservation struct {
	ID         int64
	Kind       resource.Kind
	ResourceID int64
	UserID     int64
	Start      time.Time
	End        time.Time
	CreatedAt  time.Time
}

func (r Reservation) Key() resource.Key {
	return resource.Key{Kind: r.Kind, ID: r.ResourceID}
}

// ActiveAt reports whether now falls inside [Start, End).
func (r Reservation) ActiveAt(now time.Time) bool {
	return !now.Before(r.Start) && now.Before(r.End)
}

// Expired reports End <= now.
func (r Reservation) Expired(now time.Time) bool {
	return !r.End.After(now)
}

type reservationModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	ResourceType string    `gorm:"column:resource_type;size:20;not null;index:idx_reservations_resource,priority:1"`
	ResourceID   int64     `gorm:"column:resource_id;not null;index:idx_reservations_resource,priority:2"`
	UserID       int64     `gorm:"column:user_id;not null;index:idx_reservations_user,priority:1"`
	StartTime    time.Time `gorm:"column:start_time;not null;index:idx_reservations_resource,priority:3"`
	EndTime      time.Time `gorm:"column:end_time;not null;index:idx_reservations_user,priority:2;index:idx_reservations_end"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (reservationModel) TableName() string { return "reservations" }

// Models lists the tables owned by this package, for migrations.
func Models() []any {
	return []any{&reservationModel{}}
}

// dbTime is the canonical stored form: UTC, whole seconds.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func toDomain(m reservationModel) Reservation {
	return Reservation{
		ID:         m.ID,
		Kind:       resource.Kind(m.ResourceType),
		ResourceID: m.ResourceID,
		UserID:     m.UserID,
		Start:      m.StartTime.UTC(),
		End:        m.EndTime.UTC(),
		CreatedAt:  m.CreatedAt,
	}
}

func toModel(r *Reservation) reservationModel {
	return reservationModel{
		ID:           r.ID,
		ResourceType: string(r.Kind),
		ResourceID:   r.ResourceID,
		UserID:       r.UserID,
		StartTime:    dbTime(r.Start),
		EndTime:      dbTime(r.End),
		CreatedAt:    r.CreatedAt,
	}
}

func toDomainList(ms []reservationModel) []Reservation {
	out := make([]Reservation, 0, len(ms))
	for _, m := range ms {
		out = append(out, toDomain(m))
	}
	return out
}

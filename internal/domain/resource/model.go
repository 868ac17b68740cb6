package resource

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindComputer Kind = "computer"
	KindRoom     Kind = "room"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindComputer, KindRoom:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

type Status string

const (
	StatusAvailable  Status = "available"
	StatusReserved   Status = "reserved"
	StatusOccupied   Status = "occupied"
	StatusRepair     Status = "repair"
	StatusOutOfOrder Status = "out_of_order"
)

// Terminal statuses block reservations regardless of the ledger.
func (s Status) Terminal() bool {
	return s == StatusRepair || s == StatusOutOfOrder
}

// Uncovered is the status displayed when no reservation covers now: a
// terminal status or an unheld "occupied" set by staff stays, anything
// else reads as available.
func (s Status) Uncovered() Status {
	if s.Terminal() || s == StatusOccupied {
		return s
	}
	return StatusAvailable
}

// Allows reports whether s belongs to the status set of kind k.
func (k Kind) Allows(s Status) bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusOccupied:
		return k == KindComputer || k == KindRoom
	case StatusRepair:
		return k == KindComputer
	case StatusOutOfOrder:
		return k == KindRoom
	}
	return false
}

// Key identifies a resource across both tables.
type Key struct {
	Kind Kind
	ID   int64
}

func (k Key) String() string {
	return string(k.Kind) + ":" + strconv.FormatInt(k.ID, 10)
}

// Resource is the behaviour shared by computers and study rooms.
type Resource interface {
	Key() Key
	DisplayName() string
	CurrentStatus() Status
	SetStatus(Status)
	HolderID() *int64
	SetHolder(*int64)
	Position() (x, y decimal.Decimal)
	MoveTo(x, y decimal.Decimal)
}

type Computer struct {
	ID         int64           `json:"id" gorm:"primaryKey"`
	Name       string          `json:"name" gorm:"size:100;uniqueIndex;not null"`
	X          decimal.Decimal `json:"x" gorm:"type:decimal(5,2);not null;default:0"`
	Y          decimal.Decimal `json:"y" gorm:"type:decimal(5,2);not null;default:0"`
	Status     Status          `json:"status" gorm:"size:20;not null;default:available"`
	ReservedBy *int64          `json:"reserved_by" gorm:"index"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (Computer) TableName() string { return "computers" }

func (c *Computer) Key() Key { return Key{Kind: KindComputer, ID: c.ID} }
func (c *Computer) DisplayName() string { return c.Name }
func (c *Computer) CurrentStatus() Status { return c.Status }
func (c *Computer) SetStatus(s Status) { c.Status = s }
func (c *Computer) HolderID() *int64 { return c.ReservedBy }
func (c *Computer) SetHolder(id *int64) { c.ReservedBy = id }
func (c *Computer) Position() (decimal.Decimal, decimal.Decimal) { return c.X, c.Y }
func (c *Computer) MoveTo(x, y decimal.Decimal) { c.X, c.Y = x, y }

type StudyRoom struct {
	ID         int64           `json:"id" gorm:"primaryKey"`
	Name       string          `json:"name" gorm:"size:100;uniqueIndex;not null"`
	X          decimal.Decimal `json:"x" gorm:"type:decimal(5,2);not null;default:0"`
	Y          decimal.Decimal `json:"y" gorm:"type:decimal(5,2);not null;default:0"`
	Status     Status          `json:"status" gorm:"size:20;not null;default:available"`
	ReservedBy *int64          `json:"reserved_by" gorm:"index"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (StudyRoom) TableName() string { return "study_rooms" }

func (r *StudyRoom) Key() Key { return Key{Kind: KindRoom, ID: r.ID} }
func (r *StudyRoom) DisplayName() string { return r.Name }
func (r *StudyRoom) CurrentStatus() Status { return r.Status }
func (r *StudyRoom) SetStatus(s Status) { r.Status = s }
func (r *StudyRoom) HolderID() *int64 { return r.ReservedBy }
func (r *StudyRoom) SetHolder(id *int64) { r.ReservedBy = id }
func (r *StudyRoom) Position() (decimal.Decimal, decimal.Decimal) { return r.X, r.Y }
func (r *StudyRoom) MoveTo(x, y decimal.Decimal) { r.X, r.Y = x, y }

// Models lists the tables owned by this package, for migrations.
func Models() []any {
	return []any{&Computer{}, &StudyRoom{}}
}

func newOfKind(kind Kind) (Resource, error) {
	switch kind {
	case KindComputer:
		return &Computer{}, nil
	case KindRoom:
		return &StudyRoom{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Release clears the holder and marks the resource available.
func Release(r Resource) {
	r.SetStatus(StatusAvailable)
	r.SetHolder(nil)
}

// HeldBy reports whether userID is recorded as the resource's holder.
func HeldBy(r Resource, userID int64) bool {
	h := r.HolderID()
	return h != nil && *h == userID
}

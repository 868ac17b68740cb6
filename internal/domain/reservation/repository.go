package reservation

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"linkup/internal/domain/resource"
)

// Repository is the reservation ledger. Live rows are those with
// end_time > now; everything else is garbage awaiting the sweeper.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) Insert(ctx context.Context, res *Reservation) error {
	m := toModel(res)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*res = toDomain(m)
	return nil
}

// Overlapping returns rows for key whose interval intersects [start, end).
func (r *Repository) Overlapping(ctx context.Context, key resource.Key, start, end time.Time) ([]Reservation, error) {
	var ms []reservationModel
	err := r.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", string(key.Kind), key.ID).
		Where("start_time < ? AND end_time > ?", dbTime(end), dbTime(start)).
		Order("start_time").
		Find(&ms).Error
	return toDomainList(ms), err
}

func (r *Repository) LiveForUser(ctx context.Context, userID int64, now time.Time) ([]Reservation, error) {
	var ms []reservationModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND end_time > ?", userID, dbTime(now)).
		Order("start_time").
		Find(&ms).Error
	return toDomainList(ms), err
}

func (r *Repository) LiveForResource(ctx context.Context, key resource.Key, now time.Time) ([]Reservation, error) {
	var ms []reservationModel
	err := r.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ? AND end_time > ?", string(key.Kind), key.ID, dbTime(now)).
		Order("start_time").
		Find(&ms).Error
	return toDomainList(ms), err
}

// Live returns every live row, grouped by resource.
func (r *Repository) Live(ctx context.Context, now time.Time) (map[resource.Key][]Reservation, error) {
	var ms []reservationModel
	err := r.db.WithContext(ctx).
		Where("end_time > ?", dbTime(now)).
		Order("start_time").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make(map[resource.Key][]Reservation)
	for _, m := range ms {
		res := toDomain(m)
		out[res.Key()] = append(out[res.Key()], res)
	}
	return out, nil
}

// Started returns every row covering now.
func (r *Repository) Started(ctx context.Context, now time.Time) ([]Reservation, error) {
	var ms []reservationModel
	t := dbTime(now)
	err := r.db.WithContext(ctx).
		Where("start_time <= ? AND end_time > ?", t, t).
		Order("id").
		Find(&ms).Error
	return toDomainList(ms), err
}

// CurrentFor returns the row covering now for key, or nil.
func (r *Repository) CurrentFor(ctx context.Context, key resource.Key, now time.Time) (*Reservation, error) {
	var m reservationModel
	t := dbTime(now)
	err := r.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", string(key.Kind), key.ID).
		Where("start_time <= ? AND end_time > ?", t, t).
		Order("start_time").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	res := toDomain(m)
	return &res, nil
}

func (r *Repository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).Where("end_time <= ?", dbTime(now)).Delete(&reservationModel{})
	return tx.RowsAffected, tx.Error
}

func (r *Repository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&reservationModel{})
	return tx.RowsAffected, tx.Error
}

// DeleteLive removes live rows for key inside tx, limited to userID when set.
func (r *Repository) DeleteLive(ctx context.Context, tx *gorm.DB, key resource.Key, userID *int64, now time.Time) (int64, error) {
	q := tx.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ? AND end_time > ?", string(key.Kind), key.ID, dbTime(now))
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	res := q.Delete(&reservationModel{})
	return res.RowsAffected, res.Error
}

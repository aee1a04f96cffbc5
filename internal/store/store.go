package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kozynetsoleksandr/reservation/internal/model"
)

// ErrNotFound is returned when no reservation exists for the requested id.
var ErrNotFound = errors.New("reservation not found")

// Store defines the persistence contract the lifecycle engine depends on.
// No business logic lives here; it is a keyed record store.
type Store interface {
	// FindByID returns the reservation with the given id or ErrNotFound.
	FindByID(ctx context.Context, id int64) (model.Reservation, error)
	// FindAll returns every stored reservation in no particular order.
	FindAll(ctx context.Context) ([]model.Reservation, error)
	// Exists reports whether a reservation with the given id is stored.
	Exists(ctx context.Context, id int64) (bool, error)
	// Save inserts r when its ID is zero, assigning a fresh id on the record,
	// and otherwise replaces the stored record at r.ID in full.
	Save(ctx context.Context, r *model.Reservation) error
	// Delete removes the record unconditionally.
	Delete(ctx context.Context, id int64) error
	// SetStatus mutates only the status column of the record, returning
	// ErrNotFound when no row was touched.
	SetStatus(ctx context.Context, id int64, status model.Status) error
	// FindConflictingIDs returns the ids of reservations for roomID in the
	// given status whose [start_date, end_date) range overlaps [start, end).
	FindConflictingIDs(ctx context.Context, roomID int64, start, end model.Date, status model.Status) ([]int64, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) FindByID(ctx context.Context, id int64) (model.Reservation, error) {
	var r model.Reservation
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Reservation{}, ErrNotFound
		}
		return model.Reservation{}, fmt.Errorf("find reservation %d: %w", id, err)
	}
	return r, nil
}

func (s *gormStore) FindAll(ctx context.Context) ([]model.Reservation, error) {
	var rs []model.Reservation
	if err := s.db.WithContext(ctx).Find(&rs).Error; err != nil {
		return nil, fmt.Errorf("find all reservations: %w", err)
	}
	return rs, nil
}

func (s *gormStore) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check reservation %d: %w", id, err)
	}
	return count > 0, nil
}

func (s *gormStore) Save(ctx context.Context, r *model.Reservation) error {
	// gorm's Save inserts on a zero primary key and updates every column
	// otherwise, which is exactly the insert-or-full-replace contract.
	if err := s.db.WithContext(ctx).Save(r).Error; err != nil {
		return fmt.Errorf("save reservation: %w", err)
	}
	return nil
}

func (s *gormStore) Delete(ctx context.Context, id int64) error {
	if err := s.db.WithContext(ctx).Delete(&model.Reservation{}, id).Error; err != nil {
		return fmt.Errorf("delete reservation %d: %w", id, err)
	}
	return nil
}

func (s *gormStore) SetStatus(ctx context.Context, id int64, status model.Status) error {
	result := s.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("set status of reservation %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) FindConflictingIDs(ctx context.Context, roomID int64, start, end model.Date, status model.Status) ([]int64, error) {
	// Half-open overlap: [s1,e1) and [s2,e2) overlap iff s1 < e2 AND s2 < e1.
	var ids []int64
	if err := s.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("room_id = ? AND status = ? AND start_date < ? AND end_date > ?", roomID, status, end, start).
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("find conflicting reservations for room %d: %w", roomID, err)
	}
	return ids, nil
}

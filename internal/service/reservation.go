package service

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/kozynetsoleksandr/reservation/internal/model"
	"github.com/kozynetsoleksandr/reservation/internal/store"
)

// Reservation is the external representation exchanged with callers. ID and
// Status are pointers so their absence on input is representable: both must
// be unset on creation and both are assigned by the system on output.
type Reservation struct {
	ID        *int64        `json:"id,omitempty"`
	UserID    int64         `json:"userId"`
	RoomID    int64         `json:"roomId"`
	StartDate model.Date    `json:"startDate"`
	EndDate   model.Date    `json:"endDate"`
	Status    *model.Status `json:"status,omitempty"`
}

// Service implements the reservation lifecycle over a Store: validation,
// status transitions and approval-time conflict detection.
type Service struct {
	store store.Store
	locks *roomLocks
}

// New creates a reservation lifecycle service backed by s.
func New(s store.Store) *Service {
	return &Service{store: s, locks: newRoomLocks()}
}

// GetByID returns the reservation with the given id.
func (s *Service) GetByID(ctx context.Context, id int64) (Reservation, error) {
	rec, err := s.findRecord(ctx, id)
	if err != nil {
		return Reservation{}, err
	}
	return toExternal(rec), nil
}

// ListAll returns every reservation. An empty store yields an empty list.
func (s *Service) ListAll(ctx context.Context) ([]Reservation, error) {
	recs, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, internalErr("list reservations", err)
	}
	out := make([]Reservation, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toExternal(rec))
	}
	return out, nil
}

// Create validates r and stores it as a new PENDING reservation. The caller
// must not supply an id or a status; both are system-assigned.
func (s *Service) Create(ctx context.Context, r Reservation) (Reservation, error) {
	if r.Status != nil {
		return Reservation{}, invalidArgumentf("status must not be set on creation")
	}
	if r.ID != nil {
		return Reservation{}, invalidArgumentf("id must not be set on creation")
	}
	if err := validateDates(r.StartDate, r.EndDate); err != nil {
		return Reservation{}, err
	}

	rec := model.Reservation{
		UserID:    r.UserID,
		RoomID:    r.RoomID,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Status:    model.StatusPending,
	}
	if err := s.store.Save(ctx, &rec); err != nil {
		return Reservation{}, internalErr("create reservation", err)
	}
	return toExternal(rec), nil
}

// Update replaces the user, room and dates of a PENDING reservation. The
// identifier and any status carried in r are ignored: the record keeps its
// stored id and is forced back to PENDING.
func (s *Service) Update(ctx context.Context, id int64, r Reservation) (Reservation, error) {
	rec, err := s.findRecord(ctx, id)
	if err != nil {
		return Reservation{}, err
	}

	switch rec.Status {
	case model.StatusPending:
	case model.StatusApproved, model.StatusCancelled:
		return Reservation{}, invalidArgumentf("cannot modify reservation with status %s", rec.Status)
	default:
		return Reservation{}, internalErr("stored reservation has unknown status "+string(rec.Status), nil)
	}

	if err := validateDates(r.StartDate, r.EndDate); err != nil {
		return Reservation{}, err
	}

	rec.UserID = r.UserID
	rec.RoomID = r.RoomID
	rec.StartDate = r.StartDate
	rec.EndDate = r.EndDate
	rec.Status = model.StatusPending
	if err := s.store.Save(ctx, &rec); err != nil {
		return Reservation{}, internalErr("update reservation", err)
	}
	return toExternal(rec), nil
}

// Cancel moves a PENDING reservation to CANCELLED via the targeted status
// update. Approved reservations cannot be cancelled here, and cancelling
// twice is rejected rather than silently accepted.
func (s *Service) Cancel(ctx context.Context, id int64) error {
	rec, err := s.findRecord(ctx, id)
	if err != nil {
		return err
	}

	switch rec.Status {
	case model.StatusApproved:
		return invalidStatef("cannot cancel approved reservation %d: contact a manager", id)
	case model.StatusCancelled:
		return invalidStatef("reservation %d is already cancelled", id)
	case model.StatusPending:
	default:
		return internalErr("stored reservation has unknown status "+string(rec.Status), nil)
	}

	if err := s.store.SetStatus(ctx, id, model.StatusCancelled); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFoundf("reservation not found: id=%d", id)
		}
		return internalErr("cancel reservation", err)
	}
	log.Printf("reservation cancelled: id=%d", id)
	return nil
}

// Approve moves a PENDING reservation to APPROVED after checking that no
// other APPROVED reservation for the same room overlaps its date range. The
// conflict scan and the status write run under a per-room lock so that
// concurrent approvals for one room serialize.
func (s *Service) Approve(ctx context.Context, id int64) (Reservation, error) {
	rec, err := s.findRecord(ctx, id)
	if err != nil {
		return Reservation{}, err
	}

	// Lock the record's room, then re-read. A concurrent update can move the
	// reservation to another room between the read and the lock; when that
	// happens, release and lock the room the record actually points at now.
	var mu *sync.Mutex
	for {
		roomID := rec.RoomID
		mu = s.locks.get(roomID)
		mu.Lock()
		rec, err = s.findRecord(ctx, id)
		if err != nil {
			mu.Unlock()
			return Reservation{}, err
		}
		if rec.RoomID == roomID {
			break
		}
		mu.Unlock()
	}
	defer mu.Unlock()

	switch rec.Status {
	case model.StatusPending:
	case model.StatusApproved, model.StatusCancelled:
		return Reservation{}, invalidArgumentf("cannot approve reservation with status %s: must be PENDING", rec.Status)
	default:
		return Reservation{}, internalErr("stored reservation has unknown status "+string(rec.Status), nil)
	}

	conflicting, err := s.store.FindConflictingIDs(ctx, rec.RoomID, rec.StartDate, rec.EndDate, model.StatusApproved)
	if err != nil {
		return Reservation{}, internalErr("conflict check", err)
	}
	for _, conflictID := range conflicting {
		if conflictID == rec.ID {
			continue
		}
		log.Printf("approval conflict: reservation=%d room=%d range=[%s, %s) conflicts with reservation=%d",
			rec.ID, rec.RoomID, rec.StartDate, rec.EndDate, conflictID)
		return Reservation{}, invalidArgumentf("cannot approve reservation %d: room %d is already booked for an overlapping period", id, rec.RoomID)
	}

	rec.Status = model.StatusApproved
	if err := s.store.Save(ctx, &rec); err != nil {
		return Reservation{}, internalErr("approve reservation", err)
	}
	return toExternal(rec), nil
}

// Delete removes a reservation unconditionally. Unlike Cancel it performs no
// status-transition checks; the record is gone afterwards.
func (s *Service) Delete(ctx context.Context, id int64) error {
	exists, err := s.store.Exists(ctx, id)
	if err != nil {
		return internalErr("check reservation", err)
	}
	if !exists {
		return notFoundf("reservation not found: id=%d", id)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return internalErr("delete reservation", err)
	}
	return nil
}

func (s *Service) findRecord(ctx context.Context, id int64) (model.Reservation, error) {
	rec, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Reservation{}, notFoundf("reservation not found: id=%d", id)
		}
		return model.Reservation{}, internalErr("find reservation", err)
	}
	return rec, nil
}

func validateDates(start, end model.Date) error {
	if start.IsZero() || end.IsZero() {
		return invalidArgumentf("startDate and endDate are required")
	}
	if !end.After(start) {
		return invalidArgumentf("endDate must be after startDate")
	}
	return nil
}

func toExternal(rec model.Reservation) Reservation {
	id := rec.ID
	status := rec.Status
	return Reservation{
		ID:        &id,
		UserID:    rec.UserID,
		RoomID:    rec.RoomID,
		StartDate: rec.StartDate,
		EndDate:   rec.EndDate,
		Status:    &status,
	}
}

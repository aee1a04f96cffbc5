package service

import "sync"

// roomLocks hands out one mutex per room so that approvals for the same room
// serialize their conflict scan and status write. Without this, two
// concurrent approvals could both pass the conflict check before either
// writes, leaving two overlapping APPROVED reservations.
type roomLocks struct {
	mu    sync.RWMutex
	rooms map[int64]*sync.Mutex
}

func newRoomLocks() *roomLocks {
	return &roomLocks{rooms: make(map[int64]*sync.Mutex)}
}

// get returns the mutex for a room, creating it on first use. Locks are
// never evicted; the set of rooms is small and bounded.
func (l *roomLocks) get(roomID int64) *sync.Mutex {
	l.mu.RLock()
	m, ok := l.rooms[roomID]
	l.mu.RUnlock()
	if ok {
		return m
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if m, ok := l.rooms[roomID]; ok {
		return m
	}
	m = &sync.Mutex{}
	l.rooms[roomID] = m
	return m
}

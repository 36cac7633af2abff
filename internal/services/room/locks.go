package room

import (
	"sync"

	"github.com/OwaisSafa/ChessVerse/internal/model"
)

// roomLocks hands out one mutex per room code.
// Entries are reference counted and dropped when nobody holds or waits on them.
type roomLocks struct {
	mu    sync.Mutex
	locks map[model.RoomCode]*roomLock
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

func newRoomLocks() *roomLocks {
	return &roomLocks{locks: make(map[model.RoomCode]*roomLock)}
}

// lock blocks until the room's mutex is held and returns its release func
func (l *roomLocks) lock(code model.RoomCode) func() {
	l.mu.Lock()
	entry, ok := l.locks[code]
	if !ok {
		entry = &roomLock{}
		l.locks[code] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, code)
		}
		l.mu.Unlock()
	}
}

// size returns the number of live lock entries
func (l *roomLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

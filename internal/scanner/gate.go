package scanner

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrScanInFlight means the user already has an analysis outstanding.
var ErrScanInFlight = errors.New("scanner: a scan is already in progress")

// Gate enforces at most one in-flight analysis per user. It is a busy/idle
// flag, not a queue: a second capture while busy is rejected outright.
type Gate struct {
	mu    sync.Mutex
	inUse map[uuid.UUID]struct{}
}

// NewGate creates an empty gate.
func NewGate() *Gate {
	return &Gate{inUse: make(map[uuid.UUID]struct{})}
}

// Acquire marks the user busy and returns the matching release func. The
// release func is safe to call exactly once per successful acquire; callers
// defer it so every exit path releases.
func (g *Gate) Acquire(userID uuid.UUID) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inUse[userID]; busy {
		return nil, ErrScanInFlight
	}
	g.inUse[userID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inUse, userID)
			g.mu.Unlock()
		})
	}, nil
}

// Busy reports whether the user currently has an analysis outstanding.
func (g *Gate) Busy(userID uuid.UUID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.inUse[userID]
	return busy
}

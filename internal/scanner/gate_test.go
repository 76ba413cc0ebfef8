package scanner

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestGateSingleFlight(t *testing.T) {
	gate := NewGate()
	user := uuid.New()

	release, err := gate.Acquire(user)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	if !gate.Busy(user) {
		t.Error("Busy = false while held")
	}

	if _, err := gate.Acquire(user); !errors.Is(err, ErrScanInFlight) {
		t.Errorf("second Acquire err = %v, want ErrScanInFlight", err)
	}

	release()
	if gate.Busy(user) {
		t.Error("Busy = true after release")
	}
	if _, err := gate.Acquire(user); err != nil {
		t.Errorf("Acquire after release: %v", err)
	}
}

func TestGateIsPerUser(t *testing.T) {
	gate := NewGate()
	alice, bob := uuid.New(), uuid.New()

	if _, err := gate.Acquire(alice); err != nil {
		t.Fatalf("Acquire alice: %v", err)
	}
	if _, err := gate.Acquire(bob); err != nil {
		t.Errorf("Acquire bob while alice busy: %v", err)
	}
}

func TestGateReleaseIsIdempotent(t *testing.T) {
	gate := NewGate()
	user := uuid.New()

	release, err := gate.Acquire(user)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	release()
	release() // second call must not panic or release someone else's slot

	release2, err := gate.Acquire(user)
	if err != nil {
		t.Fatalf("reacquire: %v", err)
	}
	release()
	if !gate.Busy(user) {
		t.Error("stale release freed the new acquisition")
	}
	release2()
}

func TestGateConcurrentAcquire(t *testing.T) {
	gate := NewGate()
	user := uuid.New()

	const attempts = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	won := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := gate.Acquire(user); err == nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if won != 1 {
		t.Errorf("winners = %d, want exactly 1", won)
	}
}

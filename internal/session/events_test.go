package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	events := NewEvents()
	ch1, stop1 := events.Subscribe()
	ch2, stop2 := events.Subscribe()
	defer stop1()
	defer stop2()

	user := uuid.New()
	events.Publish(Event{Type: SignedIn, UserID: user})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case evt := <-ch:
			if evt.Type != SignedIn || evt.UserID != user {
				t.Errorf("subscriber %d got %+v", i, evt)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d never received the event", i)
		}
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	events := NewEvents()
	ch, stop := events.Subscribe()

	stop()
	stop() // second call is a no-op

	if _, open := <-ch; open {
		t.Error("channel still open after unsubscribe")
	}

	// Publishing after unsubscribe must not panic on the closed channel.
	events.Publish(Event{Type: SignedOut, UserID: uuid.New()})
}

func TestPublishNeverBlocks(t *testing.T) {
	events := NewEvents()
	_, stop := events.Subscribe()
	defer stop()

	done := make(chan struct{})
	go func() {
		// More events than the subscriber buffer holds; nobody is reading.
		for i := 0; i < 100; i++ {
			events.Publish(Event{Type: SignedIn, UserID: uuid.New()})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
}

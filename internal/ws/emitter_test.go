package ws

import (
	"testing"
	"time"
)

func TestLifecycleBroadcastDoesNotWaitOnPublish(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	release := make(chan struct{})
	published := make(chan string, 2)
	e := &roomEmitter{
		hub:   hub,
		token: "tok_pub",
		publish: func(token, event string, data map[string]interface{}) {
			<-release
			published <- event
		},
	}

	done := make(chan struct{})
	go func() {
		e.Broadcast("point_scored", map[string]interface{}{"side": "left"})
		close(done)
	}()

	// The session goroutine calls Broadcast from inside the tick; a stalled
	// publish must not hold it up.
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast blocked on the publish round trip")
	}

	close(release)
	select {
	case ev := <-published:
		if ev != "point_scored" {
			t.Errorf("published event = %q, want point_scored", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("lifecycle event never published")
	}

	// High-frequency state traffic stays off the events channel.
	e.Broadcast("state_diff", map[string]interface{}{"matchTimeSeconds": 1})
	select {
	case ev := <-published:
		t.Errorf("state traffic published to match events: %q", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

package ws

import (
	"github.com/playvolley/backend/internal/game"
)

// roomEmitter adapts a hub room to the session's Emitter. Lifecycle events
// are also published to Redis for external consumers; high-frequency state
// traffic stays on the websocket only.
type roomEmitter struct {
	hub     *Hub
	token   string
	publish func(matchToken, event string, data map[string]interface{})
}

// NewEmitterFactory returns the constructor the session manager uses to
// build a per-match emitter.
func NewEmitterFactory(hub *Hub) func(token string) game.Emitter {
	return func(token string) game.Emitter {
		return &roomEmitter{hub: hub, token: token, publish: PublishMatchEvent}
	}
}

// lifecycleEvents are the one-shot events mirrored onto the Redis
// match_events channel.
var lifecycleEvents = map[string]bool{
	"match_ready":          true,
	"countdown":            true,
	"point_scored":         true,
	"game_paused":          true,
	"game_resumed":         true,
	"game_over":            true,
	"opponent_left":        true,
	"opponent_reconnected": true,
}

func (e *roomEmitter) Broadcast(event string, data map[string]interface{}) {
	e.hub.Broadcast(e.token, envelope(event, data))
	if lifecycleEvents[event] {
		// Broadcast runs on the session goroutine; the Redis round trip
		// must never stall the tick loop.
		go e.publish(e.token, event, data)
	}
}

func (e *roomEmitter) SendTo(connID string, event string, data map[string]interface{}) {
	e.hub.SendTo(connID, envelope(event, data))
}

// envelope merges the event type into a copy of the payload fields.
func envelope(event string, data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	out["type"] = event
	return out
}

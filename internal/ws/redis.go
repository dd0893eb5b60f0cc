package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

var rdbClient *redis.Client

// MatchEventsChannel carries one-shot lifecycle events to external
// consumers (rating workers, spectator services).
const MatchEventsChannel = "match_events"

// SetRedisClient wires the shared Redis client; publishing is disabled when
// it was never set.
func SetRedisClient(r *redis.Client) {
	rdbClient = r
}

// PublishMatchEvent publishes a lifecycle event on the match_events channel.
// Failures are logged and swallowed; the match never depends on Redis.
func PublishMatchEvent(matchToken, event string, data map[string]interface{}) {
	if rdbClient == nil {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"type":        event,
		"match_token": matchToken,
		"data":        data,
	})
	if err != nil {
		log.Printf("[MATCH EVENTS] marshal error for %s: %v", event, err)
		return
	}

	if err := rdbClient.Publish(context.Background(), MatchEventsChannel, payload).Err(); err != nil {
		log.Printf("[MATCH EVENTS] publish error for %s on %s: %v", event, matchToken, err)
	}
}

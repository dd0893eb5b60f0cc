package ws

import (
	"encoding/json"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/playvolley/backend/internal/game"
)

// Identity is the verified join identity handed over by the HTTP layer
// after ticket verification.
type Identity struct {
	MatchToken  string
	Mode        game.Mode
	AccountRef  string
	DisplayName string
	CharacterID string
}

// ServeMatch upgrades an already-authorized request and attaches the
// connection to its match session. The HTTP layer has verified the ticket
// and checked capacity; everything after the upgrade speaks the ws protocol
// only.
func ServeMatch(c *gin.Context, hub *Hub, mgr *game.Manager, id Identity) {
	session := mgr.GetOrCreate(id.MatchToken, id.Mode)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] upgrade error: %v", err)
		return
	}

	client := &Client{
		conn:       conn,
		connID:     newConnID(),
		accountRef: id.AccountRef,
		matchToken: id.MatchToken,
		session:    session,
		send:       make(chan []byte, 256),
	}
	hub.register <- client
	go client.writePump()

	res, err := session.Join(game.JoinRequest{
		ConnID:      client.connID,
		AccountRef:  id.AccountRef,
		DisplayName: id.DisplayName,
		CharacterID: id.CharacterID,
	})
	if err != nil {
		client.sendError(err.Error())
		// The client was already registered; unregister reclaims the room
		// entry and closes the send channel, which shuts writePump down
		// after it flushes the error frame.
		hub.unregister <- client
		return
	}

	hub.SendTo(client.connID, map[string]interface{}{
		"type":       "joined",
		"seed":       res.Seed,
		"side":       res.Side,
		"matchToken": id.MatchToken,
		"mode":       id.Mode,
		"resumed":    res.Resumed,
	})
	client.sendSnapshot(res.Snapshot)

	client.readPump(hub)
}

// sendSnapshot delivers a full state frame to this connection only.
func (c *Client) sendSnapshot(snap *game.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("[WS] error marshaling snapshot: %v", err)
		return
	}
	var fields map[string]interface{}
	json.Unmarshal(data, &fields)
	fields["type"] = "state"

	payload, _ := json.Marshal(fields)
	select {
	case c.send <- payload:
	default:
	}
}

// handleMessage routes one inbound frame to the session.
func (c *Client) handleMessage(msg WSMessage) {
	switch msg.Type {
	case "input":
		c.handleInput(msg.Data)

	case "ready":
		c.session.Ready(c.connID)

	case "pause":
		c.session.Pause(c.connID)

	case "resume":
		c.session.Resume(c.connID)

	case "forfeit":
		c.session.Forfeit(c.connID)

	case "get_state":
		c.sendSnapshot(c.session.State())

	default:
		c.sendError("Unknown message type")
	}
}

// handleInput validates one input frame. Clients are not trusted to send
// well-typed JSON: booleans are coerced from whatever arrived and the
// sequence number must be a non-negative integer, otherwise the frame is
// dropped.
func (c *Client) handleInput(raw json.RawMessage) {
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		c.sendError("Invalid input data")
		return
	}

	seq, ok := coerceSequence(fields["sequence"])
	if !ok {
		return
	}

	c.session.Input(c.connID,
		coerceBool(fields["left"]),
		coerceBool(fields["right"]),
		coerceBool(fields["jump"]),
		coerceBool(fields["jumpPressed"]),
		seq,
	)
}

// coerceBool maps loosely-typed client values onto strict booleans.
// Anything not recognizably true is false.
func coerceBool(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t == "true" || t == "1"
	default:
		return false
	}
}

// coerceSequence accepts the JSON number forms a client might send.
func coerceSequence(v interface{}) (uint64, bool) {
	f, ok := v.(float64)
	if !ok || f < 0 {
		return 0, false
	}
	return uint64(f), true
}

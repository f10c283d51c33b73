package core

import (
	"encoding/json"
	"fmt"
)

type EventType string

// Inbound events.
const (
	EventCreateSession   EventType = "create-session"
	EventResetSession    EventType = "reset-session"
	EventJoinSession     EventType = "join-session"
	EventAddToQueue      EventType = "add-to-queue"
	EventRemoveFromQueue EventType = "remove-from-queue"
	EventReorderQueue    EventType = "reorder-queue"
	EventUpdatePlayback  EventType = "update-playback"
	EventPlayerCommand   EventType = "player-command"
	EventPing            EventType = "ping"
)

// Outbound events. player-command is relayed under its inbound name.
const (
	EventSessionCreated      EventType = "session-created"
	EventJoinedSuccess       EventType = "joined-success"
	EventError               EventType = "error"
	EventRemoteConnected     EventType = "remote-connected"
	EventRemoteDisconnected  EventType = "remote-disconnected"
	EventDisplayDisconnected EventType = "display-disconnected"
	EventQueueUpdated        EventType = "queue-updated"
	EventPlaybackUpdated     EventType = "playback-updated"
	EventPong                EventType = "pong"
)

// Envelope is the wire form of every message in both directions.
type Envelope struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Encode wraps data in an Envelope. A nil data omits the field.
func Encode(t EventType, data any) (Frame, error) {
	env := Envelope{Type: t}
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", t, err)
		}
		env.Data = b
	}
	b, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode %s envelope: %w", t, err)
	}
	return b, nil
}

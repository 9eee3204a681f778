package models

import (
	"bytes"
	"encoding/json"
)

// EventType names a frame on the real-time channel
type EventType string

// Client to server.
const (
	EventUserOnline  EventType = "user-online"
	EventJoinChat    EventType = "join-chat"
	EventLeaveChat   EventType = "leave-chat"
	EventSendMessage EventType = "send-message"
	EventTyping      EventType = "typing"
	EventStopTyping  EventType = "stop-typing"
	EventCallUser    EventType = "call-user"
	EventAnswerCall  EventType = "answer-call"
	EventEndCall     EventType = "end-call"
)

// Server to client.
const (
	EventUserStatusChange EventType = "user-status-change"
	EventNewMessage       EventType = "new-message"
	EventUserTyping       EventType = "user-typing"
	EventUserStopTyping   EventType = "user-stop-typing"
	EventIncomingCall     EventType = "incoming-call"
	EventCallAccepted     EventType = "call-accepted"
	EventCallEnded        EventType = "call-ended"
)

// Envelope is the single frame shape in both directions.
type Envelope struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals v as the frame data. A nil v produces a frame without data.
func NewEnvelope(t EventType, v any) (Envelope, error) {
	if v == nil {
		return Envelope{Type: t}, nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return Envelope{Type: t, Data: raw}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: t, Data: data}, nil
}

type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

// StatusChange is the user-status-change payload.
type StatusChange struct {
	UserID string `json:"userId"`
	Status Status `json:"status"`
}

// CallUser is the call-user payload.
type CallUser struct {
	UserToCall string          `json:"userToCall"`
	SignalData json.RawMessage `json:"signalData"`
	From       string          `json:"from"`
	Name       string          `json:"name"`
}

// IncomingCall is what the callee receives for a call-user.
type IncomingCall struct {
	Signal json.RawMessage `json:"signal"`
	From   string          `json:"from"`
	Name   string          `json:"name"`
}

type AnswerCall struct {
	To     string          `json:"to"`
	Signal json.RawMessage `json:"signal"`
}

type EndCall struct {
	To string `json:"to"`
}

// IDFrom extracts an identifier that clients send either as a bare JSON
// string or as an object field. The first non-empty field wins.
func IDFrom(data json.RawMessage, fields ...string) (string, bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return "", false
	}

	if trimmed[0] == '"' {
		var id string
		if err := json.Unmarshal(trimmed, &id); err != nil || id == "" {
			return "", false
		}
		return id, true
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return "", false
	}
	for _, f := range fields {
		raw, ok := obj[f]
		if !ok {
			continue
		}
		var id string
		if err := json.Unmarshal(raw, &id); err == nil && id != "" {
			return id, true
		}
	}
	return "", false
}

package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/mossy-p/socio-relay/internal/models"
	"github.com/rs/zerolog/log"
)

var (
	ErrMalformedEvent = errors.New("malformed event")
	ErrUnknownEvent   = errors.New("unknown event")
)

type handlerFunc func(conn Conn, data json.RawMessage) error

// Hub is the single entry point for connection lifecycle and inbound events.
// Registry and room mutations happen only here, serialized by mu together
// with the presence announcements they cause.
type Hub struct {
	Registry  *Registry
	Rooms     *Rooms
	Presence  *Presence
	Signaling *Signaling
	Messages  *Messages

	mu       sync.Mutex
	handlers map[models.EventType]handlerFunc
}

func NewHub(store PresenceStore) *Hub {
	registry := NewRegistry()
	rooms := NewRooms()
	h := &Hub{
		Registry:  registry,
		Rooms:     rooms,
		Presence:  NewPresence(registry, store),
		Signaling: NewSignaling(registry),
		Messages:  NewMessages(rooms),
	}
	h.handlers = map[models.EventType]handlerFunc{
		models.EventUserOnline:  h.handleUserOnline,
		models.EventJoinChat:    h.handleJoinChat,
		models.EventLeaveChat:   h.handleLeaveChat,
		models.EventSendMessage: h.roomForwarder(models.EventNewMessage),
		models.EventTyping:      h.roomForwarder(models.EventUserTyping),
		models.EventStopTyping:  h.roomForwarder(models.EventUserStopTyping),
		models.EventCallUser:    h.handleCallUser,
		models.EventAnswerCall:  h.handleAnswerCall,
		models.EventEndCall:     h.handleEndCall,
	}
	return h
}

// Run drives background work (presence store writes) until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	h.Presence.Run(ctx)
}

// Handle dispatches one inbound frame. Errors are logged and returned for
// the caller's information only; the connection stays open.
func (h *Hub) Handle(conn Conn, env models.Envelope) error {
	handler, ok := h.handlers[env.Type]
	if !ok {
		log.Warn().Str("module", "relay").Str("conn_id", conn.ID()).Str("type", string(env.Type)).Msg("unknown event")
		return fmt.Errorf("%w: %q", ErrUnknownEvent, env.Type)
	}
	if err := handler(conn, env.Data); err != nil {
		log.Warn().Err(err).Str("module", "relay").Str("conn_id", conn.ID()).Str("type", string(env.Type)).Msg("dropped event")
		return err
	}
	return nil
}

// Disconnect removes conn from every room and from the registry before
// announcing the user offline. When it returns the user is unreachable.
func (h *Hub) Disconnect(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	left := h.Rooms.LeaveAll(conn)
	userID, ok := h.Registry.Unregister(conn)

	log.Info().Str("module", "relay").
		Str("conn_id", conn.ID()).
		Str("user_id", userID).
		Strs("rooms", left).
		Msg("connection closed")

	if ok {
		h.Presence.Announce(userID, models.StatusOffline, nil)
	}
}

func (h *Hub) handleUserOnline(conn Conn, data json.RawMessage) error {
	userID, ok := models.IDFrom(data, "userId")
	if !ok {
		return fmt.Errorf("%w: user-online without userId", ErrMalformedEvent)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if prev := h.Registry.Register(userID, conn); prev != "" {
		h.Presence.Announce(prev, models.StatusOffline, conn)
	}
	log.Info().Str("module", "relay").Str("conn_id", conn.ID()).Str("user_id", userID).Msg("user online")
	h.Presence.Announce(userID, models.StatusOnline, conn)
	return nil
}

func roomIDFrom(data json.RawMessage) (string, bool) {
	return models.IDFrom(data, "roomId", "chatId")
}

func (h *Hub) handleJoinChat(conn Conn, data json.RawMessage) error {
	roomID, ok := roomIDFrom(data)
	if !ok {
		return fmt.Errorf("%w: join-chat without roomId", ErrMalformedEvent)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Rooms.Join(roomID, conn)
	return nil
}

func (h *Hub) handleLeaveChat(conn Conn, data json.RawMessage) error {
	roomID, ok := roomIDFrom(data)
	if !ok {
		return fmt.Errorf("%w: leave-chat without roomId", ErrMalformedEvent)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Rooms.Leave(roomID, conn)
	return nil
}

// roomForwarder relays the client's data unchanged under the outbound name.
func (h *Hub) roomForwarder(out models.EventType) handlerFunc {
	return func(conn Conn, data json.RawMessage) error {
		roomID, ok := roomIDFrom(data)
		if !ok {
			return fmt.Errorf("%w: %s without roomId", ErrMalformedEvent, out)
		}
		h.Messages.RelayToRoom(roomID, conn, models.Envelope{Type: out, Data: data})
		return nil
	}
}

func (h *Hub) handleCallUser(conn Conn, data json.RawMessage) error {
	var req models.CallUser
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if req.UserToCall == "" {
		return fmt.Errorf("%w: call-user without userToCall", ErrMalformedEvent)
	}
	from := req.From
	if registered, ok := h.Registry.UserOf(conn); ok {
		from = registered
	}
	h.Signaling.RelayInvite(from, req.UserToCall, req.Name, req.SignalData)
	return nil
}

func (h *Hub) handleAnswerCall(conn Conn, data json.RawMessage) error {
	var req models.AnswerCall
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if req.To == "" {
		return fmt.Errorf("%w: answer-call without to", ErrMalformedEvent)
	}
	from, _ := h.Registry.UserOf(conn)
	h.Signaling.RelayAccept(from, req.To, req.Signal)
	return nil
}

func (h *Hub) handleEndCall(conn Conn, data json.RawMessage) error {
	var req models.EndCall
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if req.To == "" {
		return fmt.Errorf("%w: end-call without to", ErrMalformedEvent)
	}
	from, _ := h.Registry.UserOf(conn)
	h.Signaling.RelayEnd(from, req.To)
	return nil
}

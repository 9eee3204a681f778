package relay

import (
	"encoding/json"

	"github.com/mossy-p/socio-relay/internal/models"
	"github.com/rs/zerolog/log"
)

// Signaling forwards call negotiation between two users. It keeps no call
// state and never looks inside the payload.
type Signaling struct {
	registry *Registry
}

func NewSignaling(registry *Registry) *Signaling {
	return &Signaling{registry: registry}
}

// RelayInvite delivers incoming-call to the callee's current connection.
func (s *Signaling) RelayInvite(from, to, displayName string, payload json.RawMessage) bool {
	return s.relay(to, models.EventIncomingCall, models.IncomingCall{
		Signal: payload,
		From:   from,
		Name:   displayName,
	})
}

// RelayAccept delivers call-accepted carrying the answer payload as-is.
func (s *Signaling) RelayAccept(from, to string, payload json.RawMessage) bool {
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	return s.relay(to, models.EventCallAccepted, payload)
}

// RelayEnd delivers call-ended, which has no data.
func (s *Signaling) RelayEnd(from, to string) bool {
	return s.relay(to, models.EventCallEnded, nil)
}

func (s *Signaling) relay(to string, t models.EventType, v any) bool {
	conn, ok := s.registry.Lookup(to)
	if !ok {
		log.Debug().Str("module", "relay.signaling").Str("to", to).Str("type", string(t)).Msg("target not connected")
		return false
	}
	env, err := models.NewEnvelope(t, v)
	if err != nil {
		log.Error().Err(err).Str("module", "relay.signaling").Msg("marshal signal")
		return false
	}
	return send(conn, env)
}

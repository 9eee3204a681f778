package relay

import (
	"github.com/mossy-p/socio-relay/internal/models"
	"github.com/rs/zerolog/log"
)

// send hands env to the transport once. Failures are logged and reported
// as false; there is no retry.
func send(c Conn, env models.Envelope) bool {
	if err := c.Send(env); err != nil {
		log.Warn().Err(err).Str("module", "relay").
			Str("conn_id", c.ID()).
			Str("type", string(env.Type)).
			Msg("dropped event")
		return false
	}
	return true
}

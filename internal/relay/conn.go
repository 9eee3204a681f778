package relay

import (
	"errors"

	"github.com/mossy-p/socio-relay/internal/models"
)

var (
	ErrSendBufferFull = errors.New("send buffer full")
	ErrConnClosed     = errors.New("connection closed")
)

// Conn is the relay's view of one live client channel. The transport owns the
// channel; Send must not block.
type Conn interface {
	ID() string
	Send(env models.Envelope) error
}

package relay

import (
	"context"

	"github.com/mossy-p/socio-relay/internal/models"
	"github.com/rs/zerolog/log"
)

// PresenceStore mirrors presence transitions outside the process. Writes
// are best effort.
type PresenceStore interface {
	Record(ctx context.Context, change models.StatusChange) error
}

const presenceQueueSize = 1024

// Presence fans user-status-change out to every registered connection and
// queues each transition for the store.
type Presence struct {
	registry *Registry
	store    PresenceStore
	queue    chan models.StatusChange
}

func NewPresence(registry *Registry, store PresenceStore) *Presence {
	return &Presence{
		registry: registry,
		store:    store,
		queue:    make(chan models.StatusChange, presenceQueueSize),
	}
}

// Announce sends the transition to every registered connection except
// exclude (the subject's own connection, nil when it is already gone).
// It returns the number of connections that accepted the event.
func (p *Presence) Announce(userID string, status models.Status, exclude Conn) int {
	change := models.StatusChange{UserID: userID, Status: status}
	env, err := models.NewEnvelope(models.EventUserStatusChange, change)
	if err != nil {
		log.Error().Err(err).Str("module", "relay.presence").Msg("marshal status change")
		return 0
	}

	sent := 0
	for _, c := range p.registry.Connections() {
		if exclude != nil && c.ID() == exclude.ID() {
			continue
		}
		if send(c, env) {
			sent++
		}
	}

	log.Debug().Str("module", "relay.presence").
		Str("user_id", userID).
		Str("status", string(status)).
		Int("recipients", sent).
		Msg("announced presence")

	p.enqueue(change)
	return sent
}

func (p *Presence) enqueue(change models.StatusChange) {
	if p.store == nil {
		return
	}
	select {
	case p.queue <- change:
	default:
		log.Warn().Str("module", "relay.presence").Str("user_id", change.UserID).Msg("presence queue full, dropping store update")
	}
}

// Run drains queued transitions into the store in announcement order until
// ctx is done.
func (p *Presence) Run(ctx context.Context) {
	if p.store == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case change := <-p.queue:
			if err := p.store.Record(ctx, change); err != nil {
				log.Warn().Err(err).Str("module", "relay.presence").
					Str("user_id", change.UserID).
					Str("status", string(change.Status)).
					Msg("failed to record presence")
			}
		}
	}
}

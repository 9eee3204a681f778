package relay

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mossy-p/socio-relay/internal/models"
)

type fakeConn struct {
	id string

	mu     sync.Mutex
	events []models.Envelope
	err    error
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(env models.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, env)
	return nil
}

func (c *fakeConn) failWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (c *fakeConn) received() []models.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Envelope, len(c.events))
	copy(out, c.events)
	return out
}

func (c *fakeConn) receivedOf(t models.EventType) []models.Envelope {
	var out []models.Envelope
	for _, env := range c.received() {
		if env.Type == t {
			out = append(out, env)
		}
	}
	return out
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}

type fakeStore struct {
	mu      sync.Mutex
	changes []models.StatusChange
	err     error
}

func (s *fakeStore) Record(_ context.Context, change models.StatusChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changes = append(s.changes, change)
	return s.err
}

func (s *fakeStore) recorded() []models.StatusChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.StatusChange, len(s.changes))
	copy(out, s.changes)
	return out
}

func envelope(t models.EventType, v any) models.Envelope {
	env, err := models.NewEnvelope(t, v)
	if err != nil {
		panic(err)
	}
	return env
}

func rawJSON(s string) json.RawMessage {
	return json.RawMessage(s)
}

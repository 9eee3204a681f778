package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/mossy-p/socio-relay/internal/models"
	"github.com/mossy-p/socio-relay/internal/relay"
	"github.com/stretchr/testify/assert"
)

type stubConn struct{ id string }

func (c stubConn) ID() string                { return c.id }
func (c stubConn) Send(models.Envelope) error { return nil }

func TestGetPresence(t *testing.T) {
	hub := relay.NewHub(nil)
	hub.Registry.Register("alice", stubConn{id: "c1"})

	r := NewRouter(testConfig(), Deps{Hub: hub})
	w := doJSON(t, r, http.MethodGet, "/api/presence/alice", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":"alice","status":"online"}`, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/presence/bob", "", nil)
	assert.JSONEq(t, `{"userId":"bob","status":"offline"}`, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/presence", "", nil)
	assert.JSONEq(t, `{"online":["alice"],"rooms":0}`, w.Body.String())
}

func TestGetPresenceFallsBackToStore(t *testing.T) {
	hub := relay.NewHub(nil)

	r := NewRouter(testConfig(), Deps{Hub: hub, Presence: &fakePresence{status: models.StatusOnline}})
	w := doJSON(t, r, http.MethodGet, "/api/presence/bob", "", nil)
	assert.JSONEq(t, `{"userId":"bob","status":"online"}`, w.Body.String())

	r = NewRouter(testConfig(), Deps{Hub: hub, Presence: &fakePresence{err: errors.New("redis down")}})
	w = doJSON(t, r, http.MethodGet, "/api/presence/bob", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

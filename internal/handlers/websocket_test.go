package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mossy-p/socio-relay/internal/models"
	"github.com/mossy-p/socio-relay/internal/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsPeer struct {
	t    *testing.T
	conn *websocket.Conn
}

func startRelay(t *testing.T) (*relay.Hub, *httptest.Server) {
	t.Helper()
	hub := relay.NewHub(nil)
	srv := httptest.NewServer(NewRouter(testConfig(), Deps{Hub: hub}))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *wsPeer {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &wsPeer{t: t, conn: conn}
}

func (p *wsPeer) emit(typ models.EventType, data any) {
	p.t.Helper()
	env, err := models.NewEnvelope(typ, data)
	require.NoError(p.t, err)
	require.NoError(p.t, p.conn.WriteJSON(env))
}

// expect reads frames until one of type typ arrives.
func (p *wsPeer) expect(typ models.EventType) models.Envelope {
	p.t.Helper()
	require.NoError(p.t, p.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var env models.Envelope
		require.NoError(p.t, p.conn.ReadJSON(&env), "waiting for %s", typ)
		if env.Type == typ {
			return env
		}
	}
}

// expectNone asserts nothing of type typ arrives within a short window.
// The connection is unusable for reads afterwards.
func (p *wsPeer) expectNone(typ models.EventType) {
	p.t.Helper()
	require.NoError(p.t, p.conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	for {
		var env models.Envelope
		if err := p.conn.ReadJSON(&env); err != nil {
			return
		}
		assert.NotEqual(p.t, typ, env.Type, "unexpected %s: %s", typ, env.Data)
	}
}

func goOnline(t *testing.T, hub *relay.Hub, p *wsPeer, userID string) {
	t.Helper()
	p.emit(models.EventUserOnline, userID)
	require.Eventually(t, func() bool {
		_, ok := hub.Registry.Lookup(userID)
		return ok
	}, 2*time.Second, 5*time.Millisecond)
}

func TestWebSocketCallFlow(t *testing.T) {
	hub, srv := startRelay(t)
	a, b := dial(t, srv, ""), dial(t, srv, "")

	goOnline(t, hub, a, "A")
	goOnline(t, hub, b, "B")

	status := a.expect(models.EventUserStatusChange)
	assert.JSONEq(t, `{"userId":"B","status":"online"}`, string(status.Data))

	a.emit(models.EventCallUser, models.CallUser{
		UserToCall: "B",
		SignalData: json.RawMessage(`{"sdp":"x"}`),
		From:       "A",
		Name:       "Alice",
	})
	incoming := b.expect(models.EventIncomingCall)
	var call models.IncomingCall
	require.NoError(t, json.Unmarshal(incoming.Data, &call))
	assert.Equal(t, "A", call.From)
	assert.Equal(t, "Alice", call.Name)
	assert.JSONEq(t, `{"sdp":"x"}`, string(call.Signal))

	b.emit(models.EventAnswerCall, models.AnswerCall{To: "A", Signal: json.RawMessage(`{"sdp":"ans"}`)})
	accepted := a.expect(models.EventCallAccepted)
	assert.JSONEq(t, `{"sdp":"ans"}`, string(accepted.Data))

	a.emit(models.EventEndCall, models.EndCall{To: "B"})
	b.expect(models.EventCallEnded)

	require.NoError(t, b.conn.Close())
	offline := a.expect(models.EventUserStatusChange)
	assert.JSONEq(t, `{"userId":"B","status":"offline"}`, string(offline.Data))
	_, ok := hub.Registry.Lookup("B")
	assert.False(t, ok)
}

func TestWebSocketRoomBroadcast(t *testing.T) {
	hub, srv := startRelay(t)
	a, b, c := dial(t, srv, ""), dial(t, srv, ""), dial(t, srv, "")

	a.emit(models.EventJoinChat, "r1")
	b.emit(models.EventJoinChat, map[string]string{"chatId": "r1"})
	require.Eventually(t, func() bool { return len(hub.Rooms.MembersOf("r1")) == 2 }, 2*time.Second, 5*time.Millisecond)

	msg := json.RawMessage(`{"chatId":"r1","text":"hi"}`)
	a.emit(models.EventSendMessage, msg)

	got := b.expect(models.EventNewMessage)
	assert.JSONEq(t, string(msg), string(got.Data))

	a.emit(models.EventTyping, map[string]string{"chatId": "r1", "senderId": "A"})
	b.expect(models.EventUserTyping)

	a.expectNone(models.EventNewMessage)
	c.expectNone(models.EventNewMessage)
}

func TestWebSocketMalformedFramesKeepConnection(t *testing.T) {
	hub, srv := startRelay(t)
	a, b := dial(t, srv, ""), dial(t, srv, "")
	goOnline(t, hub, b, "B")

	require.NoError(t, a.conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	a.emit(models.EventCallUser, map[string]string{"signalData": "x"})
	a.emit("no-such-event", nil)

	goOnline(t, hub, a, "A")
	b.expect(models.EventUserStatusChange)
}

func TestWebSocketTokenRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.RequireWSToken = true
	srv := httptest.NewServer(NewRouter(cfg, Deps{Hub: relay.NewHub(nil)}))
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token := strings.TrimPrefix(bearer(t, "alice"), "Bearer ")
	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+token, nil)
	require.NoError(t, err)
	conn.Close()
}

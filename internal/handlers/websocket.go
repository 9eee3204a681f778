package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mossy-p/socio-relay/config"
	"github.com/mossy-p/socio-relay/internal/middleware"
	"github.com/mossy-p/socio-relay/internal/models"
	"github.com/mossy-p/socio-relay/internal/relay"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checking is handled by middleware
		return true
	},
}

// Client is one WebSocket connection. It implements relay.Conn.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	cfg  config.WSConfig

	mu     sync.RWMutex
	closed bool
}

func newClient(conn *websocket.Conn, cfg config.WSConfig) *Client {
	return &Client{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, cfg.SendBuffer),
		cfg:  cfg,
	}
}

func (c *Client) ID() string { return c.id }

// Send queues env for the write pump without blocking.
func (c *Client) Send(env models.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return relay.ErrConnClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return relay.ErrSendBufferFull
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// HandleWebSocket upgrades the request and attaches the connection to hub.
func HandleWebSocket(hub *relay.Hub, cfg config.WSConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn().Err(err).Str("module", "ws").Msg("failed to upgrade connection")
			return
		}

		client := newClient(conn, cfg)
		log.Info().Str("module", "ws").
			Str("conn_id", client.id).
			Str("auth_user", c.GetString(middleware.UserIDKey)).
			Str("remote", c.ClientIP()).
			Msg("connection opened")

		go client.writePump()
		go client.readPump(hub)
	}
}

func (c *Client) readPump(hub *relay.Hub) {
	defer func() {
		// Registry and room cleanup completes before the socket goes away.
		hub.Disconnect(c)
		c.close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.ReadLimit)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("module", "ws").Str("conn_id", c.id).Msg("websocket error")
			}
			return
		}

		var env models.Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			log.Warn().Err(err).Str("module", "ws").Str("conn_id", c.id).Msg("failed to parse message")
			continue
		}

		_ = hub.Handle(c, env)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn().Err(err).Str("module", "ws").Str("conn_id", c.id).Msg("failed to write message")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mossy-p/socio-relay/internal/models"
	"github.com/mossy-p/socio-relay/internal/relay"
	"github.com/rs/zerolog/log"
)

// GetPresence reports a user's status. Local connections are authoritative;
// otherwise the shared store is consulted when there is one.
func GetPresence(hub *relay.Hub, store PresenceReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userId")

		status := models.StatusOffline
		if _, ok := hub.Registry.Lookup(userID); ok {
			status = models.StatusOnline
		} else if store != nil {
			s, err := store.Status(c.Request.Context(), userID)
			if err != nil {
				log.Warn().Err(err).Str("module", "http.presence").Str("user_id", userID).Msg("presence lookup")
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "presence unavailable"})
				return
			}
			status = s
		}

		c.JSON(http.StatusOK, models.StatusChange{UserID: userID, Status: status})
	}
}

// ListOnline returns the users connected to this instance.
func ListOnline(hub *relay.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"online": hub.Registry.OnlineUsers(),
			"rooms":  hub.Rooms.Len(),
		})
	}
}

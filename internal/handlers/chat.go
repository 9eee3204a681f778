package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mossy-p/socio-relay/internal/middleware"
	"github.com/mossy-p/socio-relay/internal/models"
	"github.com/mossy-p/socio-relay/internal/mongo"
	"github.com/rs/zerolog/log"
)

// GetMessages returns the conversation between the caller and :userId.
// With a user store the peer must exist.
func GetMessages(messages MessageStore, users UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		me := c.GetString(middleware.UserIDKey)
		peer := c.Param("userId")

		if users != nil {
			if _, err := users.FindByID(c.Request.Context(), peer); err != nil {
				if errors.Is(err, mongo.ErrNotFound) {
					c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
					return
				}
				log.Error().Err(err).Str("module", "http.chat").Str("peer", peer).Msg("find peer")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
				return
			}
		}

		chatID := models.ChatIDFor(me, peer)

		history, err := messages.History(c.Request.Context(), chatID)
		if err != nil {
			log.Error().Err(err).Str("module", "http.chat").Str("chat_id", chatID).Msg("load history")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}
		c.JSON(http.StatusOK, history)
	}
}

// PostMessage persists a direct message. Live delivery is the relay's job;
// clients emit send-message separately.
func PostMessage(messages MessageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		text := strings.TrimSpace(req.Text)
		if text == "" && req.Image == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "text or image is required"})
			return
		}

		me := c.GetString(middleware.UserIDKey)
		msg := &models.ChatMessage{
			ChatID:     models.ChatIDFor(me, req.ReceiverID),
			SenderID:   me,
			ReceiverID: req.ReceiverID,
			Text:       text,
			Image:      req.Image,
		}
		if err := messages.Save(c.Request.Context(), msg); err != nil {
			log.Error().Err(err).Str("module", "http.chat").Msg("save message")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}
		c.JSON(http.StatusCreated, msg)
	}
}

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/mossy-p/socio-relay/config"
	"github.com/mossy-p/socio-relay/internal/middleware"
	"github.com/mossy-p/socio-relay/internal/models"
	"github.com/mossy-p/socio-relay/internal/mongo"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// Register creates an account and returns a session token.
func Register(users UserStore, auth config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		email, err := validEmail(req.Email)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Error().Err(err).Str("module", "http.auth").Msg("hash password")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}

		user := &models.User{
			Username:     strings.TrimSpace(req.Username),
			Email:        email,
			PasswordHash: string(hash),
			Bio:          models.DefaultBio,
		}
		if err := users.Create(c.Request.Context(), user); err != nil {
			if errors.Is(err, mongo.ErrDuplicate) {
				c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
				return
			}
			log.Error().Err(err).Str("module", "http.auth").Msg("create user")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}

		respondWithToken(c, http.StatusCreated, user, auth)
	}
}

// Login checks credentials and returns a session token.
func Login(users UserStore, auth config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		email, err := validEmail(req.Email)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		user, err := users.FindByEmail(c.Request.Context(), email)
		if err != nil {
			if errors.Is(err, mongo.ErrNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
				return
			}
			log.Error().Err(err).Str("module", "http.auth").Msg("find user")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		respondWithToken(c, http.StatusOK, user, auth)
	}
}

func respondWithToken(c *gin.Context, status int, user *models.User, auth config.AuthConfig) {
	token, err := middleware.IssueToken(auth.JWTSecret, user.ID.Hex(), auth.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(status, models.AuthResponse{Token: token, User: user})
}

var emailValidator = validator.New()

// validEmail normalizes before validating so padded input is accepted.
func validEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if err := emailValidator.Var(email, "required,email"); err != nil {
		return "", err
	}
	return email, nil
}

package handlers

import (
	"context"
	"io"

	"github.com/mossy-p/socio-relay/internal/models"
)

// UserStore is the account persistence the auth handlers need.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// MessageStore persists chat history.
type MessageStore interface {
	Save(ctx context.Context, msg *models.ChatMessage) error
	History(ctx context.Context, chatID string) ([]models.ChatMessage, error)
}

type MediaUploader interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader, size int64) (models.UploadResponse, error)
}

// PresenceReader answers presence for users connected to other instances.
type PresenceReader interface {
	Status(ctx context.Context, userID string) (models.Status, error)
}

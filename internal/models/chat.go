package models

import (
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const MaxMessageLength = 2000

// Image references an uploaded media object.
type Image struct {
	URL      string `bson:"url" json:"url"`
	PublicID string `bson:"publicId" json:"publicId"`
}

// ChatMessage is a persisted direct message. Persistence happens over REST;
// the real-time relay never stores anything.
type ChatMessage struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ChatID     string             `bson:"chatId" json:"chatId"`
	SenderID   string             `bson:"sender" json:"sender"`
	ReceiverID string             `bson:"receiver" json:"receiver"`
	Text       string             `bson:"text,omitempty" json:"text,omitempty"`
	Image      *Image             `bson:"image,omitempty" json:"image,omitempty"`
	Read       bool               `bson:"read" json:"read"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// SendMessageRequest is the body of POST /api/chat/messages.
type SendMessageRequest struct {
	ReceiverID string `json:"receiverId" binding:"required"`
	Text       string `json:"text" binding:"max=2000"`
	Image      *Image `json:"image"`
}

// UploadResponse is returned by the media upload endpoint.
type UploadResponse struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// ChatIDFor returns the conversation id shared by two users, independent of
// argument order.
func ChatIDFor(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mossy-p/socio-relay/config"
	"github.com/mossy-p/socio-relay/internal/middleware"
	"github.com/mossy-p/socio-relay/internal/models"
	"github.com/mossy-p/socio-relay/internal/mongo"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Auth: config.AuthConfig{
			JWTSecret: testSecret,
			TokenTTL:  time.Hour,
		},
		WS: config.WSConfig{
			ReadLimit:  1 << 16,
			SendBuffer: 32,
			PingPeriod: time.Minute,
			PongWait:   time.Minute,
			WriteWait:  time.Second,
		},
	}
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token, err := middleware.IssueToken(testSecret, userID, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(t *testing.T, r http.Handler, method, target, auth string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type fakeUsers struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
	err     error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: make(map[string]*models.User)}
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, u := range f.byEmail {
		if u.Username == user.Username {
			return mongo.ErrDuplicate
		}
	}
	if _, ok := f.byEmail[user.Email]; ok {
		return mongo.ErrDuplicate
	}
	user.ID = primitive.NewObjectID()
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, mongo.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byEmail {
		if u.ID.Hex() == id {
			return u, nil
		}
	}
	return nil, mongo.ErrNotFound
}

type fakeMessages struct {
	mu    sync.Mutex
	saved []*models.ChatMessage
	err   error
}

func (f *fakeMessages) Save(_ context.Context, msg *models.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now()
	f.saved = append(f.saved, msg)
	return nil
}

func (f *fakeMessages) History(_ context.Context, chatID string) ([]models.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.ChatMessage, 0)
	for _, m := range f.saved {
		if m.ChatID == chatID {
			out = append(out, *m)
		}
	}
	return out, nil
}

type fakeUploader struct {
	gotName  string
	gotType  string
	gotBytes []byte
	err      error
}

func (f *fakeUploader) Upload(_ context.Context, filename, contentType string, r io.Reader, _ int64) (models.UploadResponse, error) {
	if f.err != nil {
		return models.UploadResponse{}, f.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return models.UploadResponse{}, err
	}
	f.gotName, f.gotType, f.gotBytes = filename, contentType, b
	return models.UploadResponse{URL: "http://media.local/socio/images/x.png", PublicID: "images/x.png"}, nil
}

type fakePresence struct {
	status models.Status
	err    error
}

func (f *fakePresence) Status(context.Context, string) (models.Status, error) {
	return f.status, f.err
}

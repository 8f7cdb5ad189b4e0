package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-live/internal/client"
	"github.com/vovakirdan/wirechat-live/internal/config"
	"github.com/vovakirdan/wirechat-live/internal/core"
	"github.com/vovakirdan/wirechat-live/internal/proto"
)

// chatBackend is a minimal store plus channel endpoint that echoes chat
// frames to the sender with a store-assigned id.
type chatBackend struct {
	mu      sync.Mutex
	nextID  int
	posts   int
	channel bool
}

func (b *chatBackend) allocID() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	return b.nextID
}

func (b *chatBackend) postCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.posts
}

func startBackend(t *testing.T, b *chatBackend) *httptest.Server {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/messages/", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{
			{"id": 100, "sender_username": "bob", "text": "welcome", "created_at": "2024-05-01T10:00:00Z"},
		})
	})
	router.POST("/api/messages/", func(c *gin.Context) {
		var req proto.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		b.mu.Lock()
		b.posts++
		b.mu.Unlock()
		c.JSON(http.StatusCreated, gin.H{"id": b.allocID(), "sender_username": req.SenderUsername, "text": req.Text})
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", router)
	mux.HandleFunc("/ws/chat/", func(w http.ResponseWriter, r *http.Request) {
		if !b.channel {
			http.NotFound(w, r)
			return
		}
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()

		ctx := r.Context()
		for {
			var frame proto.ChatFrame
			if err := wsjson.Read(ctx, conn, &frame); err != nil {
				return
			}
			_ = wsjson.Write(ctx, conn, gin.H{
				"type": proto.TypeChatMessage,
				"message": gin.H{
					"id":              b.allocID(),
					"sender_username": frame.SenderUsername,
					"text":            frame.Message,
				},
			})
		}
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func newTestApp(t *testing.T, ts *httptest.Server) *App {
	t.Helper()

	cfg := config.Default()
	cfg.StoreURL = ts.URL + "/api"
	cfg.ChannelURL = strings.Replace(ts.URL, "http", "ws", 1) + "/ws/chat/"

	disabledLogger := zerolog.New(nil)
	a, err := New(&cfg, &disabledLogger)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a
}

func waitForMessage(ctx context.Context, c *client.Client, text string) error {
	for {
		for _, m := range c.Messages() {
			if m.Text == text {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestRunDeliversOverChannel(t *testing.T) {
	backend := &chatBackend{channel: true}
	a := newTestApp(t, startBackend(t, backend))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := a.Run(ctx, func(ctx context.Context, c *client.Client) error {
		if c.Status() != core.StatusOpen {
			return errors.New("channel should be open")
		}
		path, err := c.Send(ctx, core.Draft{Author: "alice", Text: "hello"})
		if err != nil {
			return err
		}
		if path != client.PathChannel {
			return errors.New("expected channel delivery")
		}
		return waitForMessage(ctx, c, "hello")
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	msgs := a.Client().Messages()
	if len(msgs) != 2 || msgs[0].Text != "welcome" {
		t.Fatalf("unexpected feed: %+v", msgs)
	}
	if backend.postCount() != 0 {
		t.Fatalf("channel delivery must not post to the store")
	}
}

func TestRunFallsBackToStore(t *testing.T) {
	backend := &chatBackend{channel: false}
	a := newTestApp(t, startBackend(t, backend))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := a.Run(ctx, func(ctx context.Context, c *client.Client) error {
		if c.Status() != core.StatusClosed {
			return errors.New("channel should be closed")
		}
		path, err := c.Send(ctx, core.Draft{Author: "alice", Text: "hello"})
		if err != nil {
			return err
		}
		if path != client.PathStore {
			return errors.New("expected store delivery")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	msgs := a.Client().Messages()
	if len(msgs) != 2 || msgs[1].ID != "1" {
		t.Fatalf("unexpected feed: %+v", msgs)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.ChannelURL = "not a url"
	disabledLogger := zerolog.New(nil)

	if _, err := New(&cfg, &disabledLogger); err == nil {
		t.Fatalf("expected config validation error")
	}
}

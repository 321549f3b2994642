package popout

import (
	"context"
	"errors"
	"testing"
	"time"

	"eegdash/internal/config"

	"go.uber.org/zap"
)

func newTestHub(connectTimeout time.Duration) *WebSocketHub {
	return NewWebSocketHub(&config.Config{PopoutConnectTimeout: connectTimeout}, zap.NewNop())
}

func TestHubQueue(t *testing.T) {
	hub := newTestHub(time.Hour)
	hub.queueSize = 2
	ctx := WithOwner(context.Background(), "user-1")

	if err := hub.Send("nope", Message{}); !errors.Is(err, ErrUnknownSurface) {
		t.Errorf("Send to unknown surface: got %v", err)
	}

	if err := hub.OnMessage("s1", func(Message) {}); !errors.Is(err, ErrUnknownSurface) {
		t.Errorf("OnMessage before Open: got %v", err)
	}
	if err := hub.Open(ctx, "s1", Message{Type: MessageInit, Seq: 1}); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := hub.OnMessage("s1", func(Message) {}); err != nil {
		t.Fatalf("OnMessage() error = %v", err)
	}
	if err := hub.Send("s1", Message{Type: MessageState, Seq: 2}); err != nil {
		t.Errorf("Send() error = %v", err)
	}
	if err := hub.Send("s1", Message{Type: MessageState, Seq: 3}); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Expected ErrQueueFull, got %v", err)
	}

	s, err := hub.attach("s1", "user-1")
	if err != nil {
		t.Fatalf("attach() error = %v", err)
	}
	if first := <-s.out; first.Type != MessageInit {
		t.Errorf("Expected init to be delivered first, got %s", first.Type)
	}
	if _, err := hub.attach("s1", "user-1"); !errors.Is(err, ErrSurfaceBusy) {
		t.Errorf("Second connection: got %v", err)
	}

	if err := hub.Close("s1"); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	select {
	case <-s.done:
	default:
		t.Error("Close must signal the connection")
	}
	if hub.detach("s1", s) {
		t.Error("detach after Close must report the surface gone")
	}
	if err := hub.Close("s1"); !errors.Is(err, ErrUnknownSurface) {
		t.Errorf("Second Close: got %v", err)
	}
}

func TestHubOpenCancelled(t *testing.T) {
	hub := newTestHub(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := hub.Open(ctx, "s1", Message{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Open with cancelled context: got %v", err)
	}
}

func TestHubAttachChecksOwner(t *testing.T) {
	hub := newTestHub(time.Hour)
	if err := hub.Open(WithOwner(context.Background(), "user-1"), "s1", Message{Type: MessageInit, Seq: 1}); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	tests := []struct {
		name    string
		userID  string
		wantErr error
	}{
		{name: "Other User", userID: "user-2", wantErr: ErrSurfaceForbidden},
		{name: "No User", userID: "", wantErr: ErrSurfaceForbidden},
		{name: "Owner", userID: "user-1"},
		{name: "Owner Again", userID: "user-1", wantErr: ErrSurfaceBusy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := hub.attach("s1", tt.userID)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("attach(%q) error = %v, want %v", tt.userID, err, tt.wantErr)
			}
		})
	}
}

func TestHubConnectTimeout(t *testing.T) {
	hub := newTestHub(20 * time.Millisecond)
	got := make(chan Message, 1)

	ctx := WithOwner(context.Background(), "user-1")
	if err := hub.Open(ctx, "s1", Message{Type: MessageInit, Seq: 1}); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := hub.OnMessage("s1", func(msg Message) { got <- msg }); err != nil {
		t.Fatalf("OnMessage() error = %v", err)
	}

	select {
	case msg := <-got:
		if msg.Type != MessageDisconnected {
			t.Errorf("Expected disconnected, got %s", msg.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Surface that never connected was not reported")
	}
	if err := hub.Send("s1", Message{Type: MessageState}); !errors.Is(err, ErrUnknownSurface) {
		t.Errorf("Send after timeout: got %v", err)
	}

	// a connected surface outlives the timeout
	if err := hub.Open(ctx, "s2", Message{Type: MessageInit, Seq: 1}); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := hub.OnMessage("s2", func(msg Message) { got <- msg }); err != nil {
		t.Fatalf("OnMessage() error = %v", err)
	}
	if _, err := hub.attach("s2", "user-1"); err != nil {
		t.Fatalf("attach() error = %v", err)
	}
	time.Sleep(60 * time.Millisecond)
	select {
	case msg := <-got:
		t.Errorf("Connected surface got %s", msg.Type)
	default:
	}
	if err := hub.Send("s2", Message{Type: MessageState}); err != nil {
		t.Errorf("Send to connected surface: %v", err)
	}
}

package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fd1az/dex-monitor/internal/apperror"
	"github.com/fd1az/dex-monitor/internal/logger"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for hub.ClientCount() != want {
		select {
		case <-deadline:
			t.Fatalf("client count = %d, want %d", hub.ClientCount(), want)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestBroadcastReachesClient(t *testing.T) {
	hub := NewHub(logger.Nop())
	conn := dialHub(t, hub)
	waitForClients(t, hub, 1)

	if err := hub.Broadcast(context.Background(), []byte(`{"type":"opportunity"}`)); err != nil {
		t.Fatalf("Broadcast() error: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error: %v", err)
	}
	if string(msg) != `{"type":"opportunity"}` {
		t.Errorf("message = %s", msg)
	}
}

func TestBroadcastNoClients(t *testing.T) {
	hub := NewHub(logger.Nop())

	if err := hub.Broadcast(context.Background(), []byte("x")); err != nil {
		t.Errorf("Broadcast() with no clients = %v, want nil", err)
	}
}

func TestCloseDisconnectsClients(t *testing.T) {
	hub := NewHub(logger.Nop())
	conn := dialHub(t, hub)
	waitForClients(t, hub, 1)

	if err := hub.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after close, want 0", hub.ClientCount())
	}

	err := hub.Broadcast(context.Background(), []byte("x"))
	if code := apperror.GetCode(err); code != apperror.CodeConnectionClosed {
		t.Errorf("Broadcast() after close code = %s, want %s", code, apperror.CodeConnectionClosed)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func TestClientDisconnectUnregisters(t *testing.T) {
	hub := NewHub(logger.Nop())
	conn := dialHub(t, hub)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

package broadcast

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub(DefaultHubConfig("display"))
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleDisplay))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestHubBroadcastsToConnectedClient(t *testing.T) {
	hub, url := startHub(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := Dial(ctx, url, "console")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	waitForConnections(t, hub, 1)

	payload, _ := json.Marshal(map[string]int{"n": 1})
	if err := hub.Send(Message{Type: TypeGameStateUpdate, Origin: "console", Payload: payload}); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case msg := <-client.Receive():
		if msg.Type != TypeGameStateUpdate || msg.Origin != "console" {
			t.Fatalf("unexpected message %+v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("broadcast never reached the client")
	}
}

func TestHubForwardsReverseMessages(t *testing.T) {
	hub, url := startHub(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := Dial(ctx, url, "console")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	if err := client.Send(Message{Type: TypePlayerViewReady, Origin: "display"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case msg := <-hub.Receive():
		if msg.Type != TypePlayerViewReady {
			t.Fatalf("unexpected message %+v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("reverse message never reached the hub")
	}
}

func TestHubRejectsUntrustedReverseOrigin(t *testing.T) {
	hub, url := startHub(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := Dial(ctx, url, "console")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	if err := client.Send(Message{Type: TypeHideScoreboard, Origin: "intruder"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case msg := <-hub.Receive():
		t.Fatalf("untrusted message must be dropped, got %+v", msg)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestHubSendWithNoDisplaysIsHarmless(t *testing.T) {
	hub, _ := startHub(t)

	for i := 0; i < 50; i++ {
		if err := hub.Send(Message{Type: TypeGameStateUpdate, Origin: "console"}); err != nil {
			t.Fatalf("send %d with zero displays: %v", i, err)
		}
	}
	if hub.ConnectionCount() != 0 {
		t.Fatalf("expected zero connections")
	}
}

func waitForConnections(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ConnectionCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d connections, have %d", want, hub.ConnectionCount())
}

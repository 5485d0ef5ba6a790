package spectate

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"gridwar.gg/internal/matchlog"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEntry(t *testing.T, conn *websocket.Conn) matchlog.RoundEntry {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var e matchlog.RoundEntry
	if err := json.Unmarshal(b, &e); err != nil {
		t.Fatalf("unmarshal %s: %v", b, err)
	}
	return e
}

func TestHub_LateJoinerReplaysBacklog(t *testing.T) {
	h := NewHub(zerolog.Nop())
	defer h.Close()
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	for i := 0; i < 3; i++ {
		if err := h.WriteRound(matchlog.RoundEntry{Round: uint32(i), Digest: "d"}); err != nil {
			t.Fatalf("write round %d: %v", i, err)
		}
	}

	conn := dial(t, srv)
	for i := 0; i < 3; i++ {
		if e := readEntry(t, conn); e.Round != uint32(i) {
			t.Fatalf("backlog entry %d carries round %d", i, e.Round)
		}
	}
}

func TestHub_StreamsNewRounds(t *testing.T) {
	h := NewHub(zerolog.Nop())
	defer h.Close()
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	conn := dial(t, srv)

	// Wait until the client is registered before writing: the handler
	// registers under the hub lock, so poll through it.
	deadline := time.Now().Add(5 * time.Second)
	for {
		h.mu.Lock()
		n := len(h.clients)
		h.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := h.WriteRound(matchlog.RoundEntry{Round: 0, Digest: "d0"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := h.WriteRound(matchlog.RoundEntry{Round: 1, Digest: "d1"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	if e := readEntry(t, conn); e.Round != 0 || e.Digest != "d0" {
		t.Fatalf("first streamed entry = %+v", e)
	}
	if e := readEntry(t, conn); e.Round != 1 || e.Digest != "d1" {
		t.Fatalf("second streamed entry = %+v", e)
	}
}

func TestHub_WriteNeverBlocksOnSlowClient(t *testing.T) {
	h := NewHub(zerolog.Nop())
	defer h.Close()
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	// Connect but never read.
	_ = dial(t, srv)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < clientBuffer+64; i++ {
			_ = h.WriteRound(matchlog.RoundEntry{Round: uint32(i)})
		}
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatalf("round writer blocked on a slow spectator")
	}
}

package signal

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Karaoke/internal/app"
	"github.com/dkeye/Karaoke/internal/app/orch"
	"github.com/dkeye/Karaoke/internal/core"
	"github.com/dkeye/Karaoke/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

func newTestServer(t *testing.T, joinLimit int) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := clockwork.NewFakeClock()
	o := &orch.Orchestrator{
		Registry: app.NewRegistry(),
		Sessions: app.NewStore(app.RandomCodes{}, clock, 0),
		Policy:   app.SimplePolicy{},
		Clock:    clock,
	}
	ctl := NewSignalWSController(o, NewJoinRateLimiter(joinLimit, time.Minute, clock), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	r := gin.New()
	r.GET("/api/ws", func(c *gin.Context) { ctl.HandleSignal(ctx, c) })
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		cancel()
		srv.Close()
		o.Shutdown()
	})
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func send(t *testing.T, ws *websocket.Conn, typ core.EventType, data any) {
	t.Helper()
	msg := map[string]any{"type": typ}
	if data != nil {
		msg["data"] = data
	}
	if err := ws.WriteJSON(msg); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func expect(t *testing.T, ws *websocket.Conn, typ core.EventType) core.Envelope {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env core.Envelope
	if err := ws.ReadJSON(&env); err != nil {
		t.Fatalf("waiting for %s: %v", typ, err)
	}
	if env.Type != typ {
		t.Fatalf("got %s (%s), want %s", env.Type, env.Data, typ)
	}
	return env
}

func expectError(t *testing.T, ws *websocket.Conn, want string) {
	t.Helper()
	env := expect(t, ws, core.EventError)
	var msg string
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		t.Fatalf("error payload %s: %v", env.Data, err)
	}
	if msg != want {
		t.Fatalf("error = %q, want %q", msg, want)
	}
}

func TestDisplayRemoteRoundTrip(t *testing.T) {
	srv := newTestServer(t, 10)
	display := dial(t, srv)
	remote := dial(t, srv)

	send(t, display, core.EventCreateSession, nil)
	var created core.SessionCreated
	if err := json.Unmarshal(expect(t, display, core.EventSessionCreated).Data, &created); err != nil {
		t.Fatal(err)
	}
	if _, err := domain.ParseCode(string(created.Code)); err != nil {
		t.Fatalf("bad code %q", created.Code)
	}
	code := string(created.Code)

	send(t, remote, core.EventJoinSession, code)
	expect(t, remote, core.EventJoinedSuccess)
	expect(t, display, core.EventRemoteConnected)

	send(t, remote, core.EventAddToQueue, map[string]any{
		"code": code,
		"item": domain.QueueItem{VideoID: "abc", Title: "Song", Duration: "3:30"},
	})
	for _, ws := range []*websocket.Conn{display, remote} {
		var q []domain.QueueItem
		if err := json.Unmarshal(expect(t, ws, core.EventQueueUpdated).Data, &q); err != nil {
			t.Fatal(err)
		}
		if len(q) != 1 || q[0].VideoID != "abc" {
			t.Fatalf("queue = %+v", q)
		}
	}

	send(t, display, core.EventUpdatePlayback, map[string]any{
		"code":  code,
		"state": map[string]any{"isPlaying": true},
	})
	var pb domain.PlaybackState
	if err := json.Unmarshal(expect(t, remote, core.EventPlaybackUpdated).Data, &pb); err != nil {
		t.Fatal(err)
	}
	if !pb.IsPlaying {
		t.Fatalf("playback = %+v", pb)
	}

	send(t, remote, core.EventPlayerCommand, map[string]any{"code": code, "command": "skip"})
	expect(t, display, core.EventPlayerCommand)
	expect(t, remote, core.EventPlayerCommand)

	send(t, remote, core.EventPing, nil)
	expect(t, remote, core.EventPong)

	_ = remote.Close()
	expect(t, display, core.EventRemoteDisconnected)
}

func TestJoinErrors(t *testing.T) {
	srv := newTestServer(t, 10)
	display := dial(t, srv)
	first := dial(t, srv)
	second := dial(t, srv)

	send(t, display, core.EventCreateSession, "not-a-code")
	var created core.SessionCreated
	if err := json.Unmarshal(expect(t, display, core.EventSessionCreated).Data, &created); err != nil {
		t.Fatal(err)
	}

	send(t, second, core.EventJoinSession, "000000")
	expectError(t, second, msgSessionNotFound)

	send(t, first, core.EventJoinSession, string(created.Code))
	expect(t, first, core.EventJoinedSuccess)

	send(t, second, core.EventJoinSession, string(created.Code))
	expectError(t, second, msgControllerBound)
}

func TestJoinRateLimited(t *testing.T) {
	srv := newTestServer(t, 2)
	ws := dial(t, srv)

	send(t, ws, core.EventJoinSession, "000000")
	expectError(t, ws, msgSessionNotFound)
	send(t, ws, core.EventJoinSession, "000001")
	expectError(t, ws, msgSessionNotFound)
	send(t, ws, core.EventJoinSession, "000002")
	expectError(t, ws, msgTooManyJoins)
}

func TestMalformedFrameKeepsConnection(t *testing.T) {
	srv := newTestServer(t, 10)
	ws := dial(t, srv)

	if err := ws.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	send(t, ws, core.EventAddToQueue, "wrong shape")
	send(t, ws, "no-such-event", nil)
	send(t, ws, core.EventPing, nil)
	expect(t, ws, core.EventPong)
}

func TestUnknownSessionMutationIsSilent(t *testing.T) {
	srv := newTestServer(t, 10)
	ws := dial(t, srv)

	send(t, ws, core.EventAddToQueue, map[string]any{"code": "000000", "item": domain.QueueItem{VideoID: "x"}})
	send(t, ws, core.EventPing, nil)
	expect(t, ws, core.EventPong)
}

func TestOriginChecker(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/ws", nil)
	req.Header.Set("Origin", "https://evil.example")

	if !originChecker(nil)(req) {
		t.Fatal("empty list should allow all")
	}
	if !originChecker([]string{"*"})(req) {
		t.Fatal("wildcard should allow all")
	}
	if originChecker([]string{"https://karaoke.example"})(req) {
		t.Fatal("foreign origin allowed")
	}
	req.Header.Set("Origin", "https://karaoke.example")
	if !originChecker([]string{"https://karaoke.example"})(req) {
		t.Fatal("listed origin rejected")
	}
}

package transport

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/seanwolter/fun-euchre/internal/protocol"
)

func dialRealtime(t *testing.T, ts *httptest.Server, sessionID, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/realtime/ws?sessionId=" + sessionID + "&reconnectToken=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	return conn
}

func TestRealtimeHandlerRejectsMissingCredentials(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/realtime/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatalf("Dial() with no credentials succeeded, want rejection")
	}
	if resp == nil || resp.StatusCode != 401 {
		t.Fatalf("response = %+v, want 401", resp)
	}
}

func TestRealtimeHandlerSendsWSReadyThenSubscribedOnConnect(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	created := srv.Lobby.Create("req-1", protocol.LobbyCreatePayload{DisplayName: "Alice"})
	if !created.OK {
		t.Fatalf("Create() OK = false: %+v", created.Outbound)
	}

	conn := dialRealtime(t, ts, created.Identity.SessionID, created.Identity.ReconnectToken)
	defer conn.Close()

	var ready protocol.Outbound
	if err := conn.ReadJSON(&ready); err != nil {
		t.Fatalf("ReadJSON(ws.ready) error = %v", err)
	}
	if ready.Type != protocol.TypeWSReady {
		t.Fatalf("first event type = %q, want ws.ready", ready.Type)
	}

	if err := conn.WriteJSON(protocol.Inbound{
		Version: 1, Type: "subscribe", RequestID: "req-sub",
		Payload: protocol.SubscribePayload{LobbyID: created.Identity.LobbyID},
	}); err != nil {
		t.Fatalf("WriteJSON(subscribe) error = %v", err)
	}

	var subscribed protocol.Outbound
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&subscribed); err != nil {
		t.Fatalf("ReadJSON(ws.subscribed) error = %v", err)
	}
	if subscribed.Type != protocol.TypeWSSubscribed {
		t.Fatalf("second event type = %q, want ws.subscribed", subscribed.Type)
	}
}

func TestRealtimeHandlerRejectsInvalidToken(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	created := srv.Lobby.Create("req-1", protocol.LobbyCreatePayload{DisplayName: "Alice"})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/realtime/ws?sessionId=" + created.Identity.SessionID + "&reconnectToken=garbage"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatalf("Dial() with a garbage token succeeded, want rejection")
	}
	if resp == nil || resp.StatusCode != 401 {
		t.Fatalf("response = %+v, want 401", resp)
	}
}

func TestRealtimeHandlerMarksSessionDisconnectedOnClose(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	created := srv.Lobby.Create("req-1", protocol.LobbyCreatePayload{DisplayName: "Alice"})
	conn := dialRealtime(t, ts, created.Identity.SessionID, created.Identity.ReconnectToken)

	var ready protocol.Outbound
	conn.ReadJSON(&ready)
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rec, ok := srv.Realtime.Sessions.Get(created.Identity.SessionID)
		if ok && !rec.Payload.Connected {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("session was never marked disconnected after the websocket closed")
}

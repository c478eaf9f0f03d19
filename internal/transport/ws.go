package transport

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/seanwolter/fun-euchre/internal/broker"
	"github.com/seanwolter/fun-euchre/internal/clock"
	"github.com/seanwolter/fun-euchre/internal/idgen"
	"github.com/seanwolter/fun-euchre/internal/protocol"
	"github.com/seanwolter/fun-euchre/internal/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// connSink adapts a gorilla/websocket connection to broker.Sink. Send
// queues messages on a buffered channel and a single pump goroutine
// writes them one at a time (gorilla connections are not safe for
// concurrent writers).
type connSink struct {
	conn  *websocket.Conn
	write chan protocol.Outbound
	done  chan struct{}
}

func newConnSink(conn *websocket.Conn) *connSink {
	s := &connSink{conn: conn, write: make(chan protocol.Outbound, 64), done: make(chan struct{})}
	go s.pump()
	return s
}

func (s *connSink) pump() {
	for {
		select {
		case evt := <-s.write:
			if err := s.conn.WriteJSON(evt); err != nil {
				close(s.done)
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *connSink) Send(evt protocol.Outbound) error {
	select {
	case s.write <- evt:
		return nil
	case <-s.done:
		return websocket.ErrCloseSent
	}
}

func (s *connSink) Close() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	_ = s.conn.Close()
}

// RealtimeHandler implements spec §6 "GET /realtime/ws".
type RealtimeHandler struct {
	Clock    clock.Clock
	Tokens   *idgen.TokenManager
	Sessions *store.SessionStore
	Broker   *broker.Broker
	Log      *zap.SugaredLogger
}

func (h *RealtimeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	token := r.URL.Query().Get("reconnectToken")
	if sessionID == "" || token == "" {
		http.Error(w, "missing sessionId or reconnectToken", http.StatusUnauthorized)
		return
	}
	nowMs := h.Clock.NowMs()
	claim, err := h.Tokens.Verify(token, idgen.Expected{SessionID: sessionID}, nowMs)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.Log != nil {
			h.Log.Warnw("websocket upgrade failed", "error", err)
		}
		return
	}
	sink := newConnSink(conn)
	h.Broker.ConnectSession(claim.SessionID, sink)
	h.Sessions.Reconnect(claim.SessionID, nowMs)

	_ = sink.Send(protocol.Outbound{Version: protocol.EnvelopeVersion, Type: protocol.TypeWSReady})

	defer func() {
		h.Broker.DisconnectSession(claim.SessionID)
		if rec, ok := h.Sessions.Get(claim.SessionID); ok {
			h.Sessions.Disconnect(rec.Payload.SessionID, h.Clock.NowMs())
		}
		sink.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var inbound protocol.Inbound
		if err := json.Unmarshal(raw, &inbound); err != nil {
			continue
		}
		if inbound.Type != "subscribe" {
			continue
		}
		var sub protocol.SubscribePayload
		if payloadRaw, err := json.Marshal(inbound.Payload); err == nil {
			_ = json.Unmarshal(payloadRaw, &sub)
		}
		if sub.LobbyID != "" {
			h.Broker.BindSession(claim.SessionID, broker.LobbyRoom(sub.LobbyID))
		}
		if sub.GameID != "" {
			h.Broker.BindSession(claim.SessionID, broker.GameRoom(sub.GameID))
		}
		_ = sink.Send(protocol.Outbound{
			Version: protocol.EnvelopeVersion, Type: protocol.TypeWSSubscribed,
			Payload: sub,
		})
	}
}

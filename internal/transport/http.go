// Package transport implements spec §6 "HTTP surface" and "WebSocket
// surface": the non-goal transport framing that nonetheless must exist
// as a real, runnable adapter around the pure runtime core.
package transport

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/seanwolter/fun-euchre/internal/dispatch"
	"github.com/seanwolter/fun-euchre/internal/protocol"
)

// maxBodyBytes caps HTTP body reads at 1 MiB per spec §5.
const maxBodyBytes = 1 << 20

// Server wires the lobby/game dispatchers and the realtime handler into
// a chi router.
type Server struct {
	Lobby    *dispatch.Lobby
	Game     *dispatch.Game
	Realtime *RealtimeHandler
	Log      *zap.SugaredLogger
	Service  string
}

// Router builds the chi router for the HTTP and WebSocket surfaces.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/realtime/ws", s.Realtime.ServeHTTP)

	r.Route("/lobbies", func(r chi.Router) {
		r.Post("/create", s.handleLobbyCreate)
		r.Post("/join", s.handleLobbyJoin)
		r.Post("/update-name", s.handleLobbyUpdateName)
		r.Post("/start", s.handleLobbyStart)
	})
	r.Post("/actions", s.handleAction)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": s.Service})
}

type replyEnvelope struct {
	RequestID string              `json:"requestId"`
	Outbound  []protocol.Outbound `json:"outbound,omitempty"`
	Error     *errorBody          `json:"error,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func statusFor(code protocol.RejectCode) int {
	switch code {
	case protocol.CodeUnauthorized:
		return http.StatusForbidden
	case protocol.CodeInvalidAction:
		return http.StatusBadRequest
	case protocol.CodeInvalidState, protocol.CodeNotYourTurn:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) respond(w http.ResponseWriter, requestID string, result dispatch.Result) {
	status := http.StatusOK
	if !result.OK {
		status = http.StatusBadRequest
		for _, o := range result.Outbound {
			if p, ok := o.Payload.(protocol.ActionRejectedPayload); ok {
				status = statusFor(p.Code)
				break
			}
		}
	}
	writeJSON(w, status, replyEnvelope{RequestID: requestID, Outbound: result.Outbound})
}

func decodeInbound[T any](w http.ResponseWriter, r *http.Request) (string, T, bool) {
	var zero T
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var env struct {
		Version   int    `json:"version"`
		Type      string `json:"type"`
		RequestID string `json:"requestId"`
		Payload   T      `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		writeJSON(w, http.StatusBadRequest, replyEnvelope{Error: &errorBody{Code: string(protocol.CodeInvalidAction), Message: "malformed request body"}})
		return "", zero, false
	}
	if env.RequestID == "" {
		writeJSON(w, http.StatusBadRequest, replyEnvelope{Error: &errorBody{Code: string(protocol.CodeInvalidAction), Message: "requestId must not be empty"}})
		return "", zero, false
	}
	if env.Version != protocol.EnvelopeVersion {
		writeJSON(w, http.StatusBadRequest, replyEnvelope{RequestID: env.RequestID, Error: &errorBody{Code: string(protocol.CodeInvalidAction), Message: "unsupported envelope version"}})
		return "", zero, false
	}
	return env.RequestID, env.Payload, true
}

func (s *Server) handleLobbyCreate(w http.ResponseWriter, r *http.Request) {
	requestID, payload, ok := decodeInbound[protocol.LobbyCreatePayload](w, r)
	if !ok {
		return
	}
	s.respond(w, requestID, s.Lobby.Create(requestID, payload))
}

func (s *Server) handleLobbyJoin(w http.ResponseWriter, r *http.Request) {
	requestID, payload, ok := decodeInbound[protocol.LobbyJoinPayload](w, r)
	if !ok {
		return
	}
	s.respond(w, requestID, s.Lobby.Join(requestID, payload))
}

func (s *Server) handleLobbyUpdateName(w http.ResponseWriter, r *http.Request) {
	requestID, payload, ok := decodeInbound[protocol.LobbyUpdateNamePayload](w, r)
	if !ok {
		return
	}
	s.respond(w, requestID, s.Lobby.UpdateName(requestID, payload))
}

func (s *Server) handleLobbyStart(w http.ResponseWriter, r *http.Request) {
	requestID, payload, ok := decodeInbound[protocol.LobbyStartPayload](w, r)
	if !ok {
		return
	}
	s.respond(w, requestID, s.Lobby.Start(requestID, payload))
}

// handleAction dispatches the four game.* command types posted to
// POST /actions, keyed by the envelope's "type" field.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, replyEnvelope{Error: &errorBody{Code: string(protocol.CodeInvalidAction), Message: "failed to read request body"}})
		return
	}
	var head struct {
		Version   int    `json:"version"`
		Type      string `json:"type"`
		RequestID string `json:"requestId"`
	}
	if err := json.Unmarshal(body, &head); err != nil || head.RequestID == "" {
		writeJSON(w, http.StatusBadRequest, replyEnvelope{Error: &errorBody{Code: string(protocol.CodeInvalidAction), Message: "malformed action envelope"}})
		return
	}
	if head.Version != protocol.EnvelopeVersion {
		writeJSON(w, http.StatusBadRequest, replyEnvelope{RequestID: head.RequestID, Error: &errorBody{Code: string(protocol.CodeInvalidAction), Message: "unsupported envelope version"}})
		return
	}

	var result dispatch.Result
	switch head.Type {
	case protocol.CmdGamePlayCard:
		var env struct {
			Payload protocol.GamePlayCardPayload `json:"payload"`
		}
		_ = json.Unmarshal(body, &env)
		result = s.Game.PlayCard(head.RequestID, env.Payload)
	case protocol.CmdGamePass:
		var env struct {
			Payload protocol.GamePassPayload `json:"payload"`
		}
		_ = json.Unmarshal(body, &env)
		result = s.Game.Pass(head.RequestID, env.Payload)
	case protocol.CmdGameOrderUp:
		var env struct {
			Payload protocol.GameOrderUpPayload `json:"payload"`
		}
		_ = json.Unmarshal(body, &env)
		result = s.Game.OrderUp(head.RequestID, env.Payload)
	case protocol.CmdGameCallTrump:
		var env struct {
			Payload protocol.GameCallTrumpPayload `json:"payload"`
		}
		_ = json.Unmarshal(body, &env)
		result = s.Game.CallTrump(head.RequestID, env.Payload)
	default:
		writeJSON(w, http.StatusBadRequest, replyEnvelope{RequestID: head.RequestID, Error: &errorBody{Code: string(protocol.CodeInvalidAction), Message: "unknown action type " + head.Type}})
		return
	}
	s.respond(w, head.RequestID, result)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

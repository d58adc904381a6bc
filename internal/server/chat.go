package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// chatRequest is one inbound user turn on the chat socket.
type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// chatResponse is one outbound frame on the chat socket.
type chatResponse struct {
	Type      string   `json:"type"` // reply, error
	Content   string   `json:"content,omitempty"`
	ToolsUsed []string `json:"toolsUsed,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// handleChat upgrades to a websocket and runs conversational turns until
// the client disconnects.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		writeError(w, http.StatusServiceUnavailable, "assistant not configured", "server")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	log.Info().Str("remote", r.RemoteAddr).Msg("Chat client connected")

	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("Chat connection closed unexpectedly")
			}
			return
		}
		if req.Message == "" {
			s.writeChatFrame(conn, chatResponse{Type: "error", Error: "message is required"})
			continue
		}
		if req.SessionID == "" {
			s.writeChatFrame(conn, chatResponse{Type: "error", Error: "sessionId is required"})
			continue
		}

		reply, err := s.orchestrator.Respond(r.Context(), req.SessionID, req.Message)
		if err != nil {
			log.Error().Err(err).Str("session_id", req.SessionID).Msg("Assistant turn failed")
			s.writeChatFrame(conn, chatResponse{Type: "error", Error: "assistant unavailable"})
			continue
		}
		s.writeChatFrame(conn, chatResponse{
			Type:      "reply",
			Content:   reply.Content,
			ToolsUsed: reply.ToolsUsed,
		})
	}
}

func (s *Server) writeChatFrame(conn *websocket.Conn, frame chatResponse) {
	if err := conn.WriteJSON(frame); err != nil {
		log.Warn().Err(err).Msg("Failed to write chat frame")
	}
}

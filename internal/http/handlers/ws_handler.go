// Live room websocket handler.
//
// GET /ws/{topicID}?token=... upgrades to a websocket and attaches the caller
// to the topic's room. The session token and topic are validated before the
// member joins; a bad token or unknown topic still upgrades, but the socket is
// immediately closed with a policy-violation close frame so browser clients
// can read the reason.
//
// On join the server replays the newest persisted messages to the joiner
// (oldest first, original timestamps), then streams room events until the
// client disconnects.
package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/nchalk/go-debate-backend/internal/hub"
	"github.com/nchalk/go-debate-backend/internal/http/middleware"
)

// inboundFrame is the only message shape clients may send on the socket.
type inboundFrame struct {
	Message string `json:"message"`
}

// wsConn adapts a *websocket.Conn to hub.Conn, serializing writes and
// applying a per-write deadline. Gorilla connections allow one concurrent
// writer only.
type wsConn struct {
	mu        sync.Mutex
	c         *websocket.Conn
	writeWait time.Duration
}

func (w *wsConn) WriteJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.c.SetWriteDeadline(time.Now().Add(w.writeWait))
	return w.c.WriteJSON(v)
}

func (w *wsConn) Close() error { return w.c.Close() }

// LiveRoom godoc
// @ID          liveRoom
// @Summary     Join a live debate room
// @Description Upgrades to a websocket bound to one topic. Requires a valid session token in the `token` query parameter. Invalid credentials or an unknown topic close the socket with code 1008.
// @Tags        Rooms
//
// @Param       topicID  path   string  true  "Topic slug"     example(climate_action)
// @Param       token    query  string  true  "Session token"
//
// @Success     101  {string}  string  "Switching Protocols"
// @Router      /ws/{topicID} [get]
func (h *Handlers) LiveRoom(c *gin.Context) {
	ctx := c.Request.Context()
	topicID := c.Param("topicID")
	token := strings.TrimSpace(c.Query("token"))

	var rejectReason string
	user, err := h.deps.Auth.Whoami(ctx, token)
	if err != nil {
		rejectReason = "invalid session token"
	} else if _, err := h.deps.Topics.Get(ctx, topicID); err != nil {
		rejectReason = "unknown topic"
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	raw, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error.
		middleware.LoggerFrom(c).Warn().Err(err).Str("topic_id", topicID).Msg("websocket upgrade failed")
		return
	}

	if rejectReason != "" {
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, rejectReason)
		_ = raw.WriteControl(websocket.CloseMessage, msg, time.Now().Add(h.deps.WSWriteWait))
		_ = raw.Close()
		return
	}

	conn := &wsConn{c: raw, writeWait: h.deps.WSWriteWait}
	lg := middleware.LoggerFrom(c).With().
		Str("topic_id", topicID).
		Str("user_id", user.ID).
		Logger()

	// Replay happens before Join so the prefix cannot interleave with live
	// fan-out for this room.
	if recent, err := h.deps.History.Recent(ctx, topicID, h.deps.HistoryPrefix); err == nil {
		for _, msg := range recent {
			ev := hub.Event{
				Type:      hub.EventMessage,
				UserID:    msg.UserID,
				UserName:  msg.UserName,
				Message:   msg.Body,
				Timestamp: msg.CreatedAt,
			}
			if err := conn.WriteJSON(ev); err != nil {
				_ = raw.Close()
				return
			}
		}
	} else {
		lg.Warn().Err(err).Msg("history replay failed, joining without prefix")
	}

	member := h.deps.Hub.Join(topicID, user.ID, user.Name, conn)
	defer func() {
		h.deps.Hub.Leave(member)
		_ = raw.Close()
	}()

	raw.SetReadLimit(h.deps.WSReadLimit)
	_ = raw.SetReadDeadline(time.Now().Add(h.deps.WSPongWait))
	raw.SetPongHandler(func(string) error {
		return raw.SetReadDeadline(time.Now().Add(h.deps.WSPongWait))
	})
	raw.SetPingHandler(func(appData string) error {
		_ = raw.SetReadDeadline(time.Now().Add(h.deps.WSPongWait))
		return raw.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(h.deps.WSWriteWait))
	})

	for {
		_, data, err := raw.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				lg.Warn().Err(err).Msg("websocket read error")
			}
			return
		}
		_ = raw.SetReadDeadline(time.Now().Add(h.deps.WSPongWait))

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			lg.Debug().Err(err).Msg("ignoring malformed room frame")
			continue
		}
		body := strings.TrimSpace(frame.Message)
		if body == "" {
			continue
		}
		h.deps.Hub.Say(ctx, member, body)
	}
}

// checkOrigin admits browser upgrades whose Origin matches the configured
// allow list. An empty list admits everything, matching the CORS default.
func (h *Handlers) checkOrigin(r *http.Request) bool {
	if len(h.deps.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Non-browser clients send no Origin header.
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	for _, allowed := range h.deps.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(strings.TrimRight(allowed, "/"), u.Scheme+"://"+u.Host) {
			return true
		}
	}
	return false
}

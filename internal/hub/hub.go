// Package hub implements the in-memory fan-out layer for live debate rooms.
//
// A Hub tracks one room per topic. Every room mutation (join, message, leave)
// runs under that room's own lock, so two events in the same room are always
// applied and broadcast in a single global order, while rooms never block each
// other. Messages are persisted before they are broadcast; presence events are
// not persisted at all.
//
// The transport is abstracted behind Conn so tests can drive rooms with fakes
// instead of real sockets.
package hub

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/nchalk/go-debate-backend/internal/services"
)

// Event type tags sent to clients.
const (
	EventUserJoined = "user_joined"
	EventUserLeft   = "user_left"
	EventMessage    = "message"
)

// nameCacheTTL bounds how long a disconnected user's display name is kept
// around for presence events. Entries refresh on every join and message.
const nameCacheTTL = 24 * time.Hour

var (
	connectionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "debate_room_connections",
		Help: "Currently attached live connections across all rooms.",
	})
	roomsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "debate_rooms_active",
		Help: "Rooms with at least one attached connection.",
	})
	broadcastsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "debate_room_broadcasts_total",
		Help: "Events fanned out to rooms, by event type.",
	}, []string{"type"})
	prunedConnsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "debate_room_pruned_connections_total",
		Help: "Connections dropped mid-broadcast after a failed write.",
	})
)

// Conn is the write side of a live connection. *websocket.Conn satisfies it;
// tests substitute fakes.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Event is the wire shape of everything a room pushes to its clients.
// Presence events omit user_id and message.
type Event struct {
	Type      string    `json:"type"`
	UserID    string    `json:"user_id,omitempty"`
	UserName  string    `json:"user_name,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Member is one attached connection inside a room. A user connected twice
// holds two members.
type Member struct {
	UserID   string
	UserName string

	conn    Conn
	topicID string
}

// TopicID reports the room this member is attached to.
func (m *Member) TopicID() string { return m.topicID }

type room struct {
	mu      sync.Mutex
	members map[*Member]struct{}
}

// Hub owns every live room and the durable log they write through.
type Hub struct {
	history *services.HistoryService

	mu    sync.Mutex
	rooms map[string]*room

	// names remembers the last display name seen per user id, so presence
	// events can still carry a name after the member struct is gone.
	names *cache.Cache
}

// New constructs a Hub writing through history.
func New(history *services.HistoryService) *Hub {
	return &Hub{
		history: history,
		rooms:   make(map[string]*room),
		names:   cache.New(nameCacheTTL, nameCacheTTL),
	}
}

// Join attaches conn to the topic's room and announces the arrival to every
// other member. The joiner does not receive its own join notice.
func (h *Hub) Join(topicID, userID, userName string, conn Conn) *Member {
	m := &Member{UserID: userID, UserName: userName, conn: conn, topicID: topicID}
	h.names.Set(userID, userName, cache.DefaultExpiration)

	r := h.roomFor(topicID)
	r.mu.Lock()
	r.members[m] = struct{}{}
	count := len(r.members)
	r.broadcastLocked(Event{
		Type:      EventUserJoined,
		UserName:  userName,
		Timestamp: time.Now().UTC(),
	}, m)
	r.mu.Unlock()

	connectionsGauge.Inc()
	log.Info().
		Str("topic_id", topicID).
		Str("user_id", userID).
		Int("room_size", count).
		Msg("member joined room")
	return m
}

// Say persists the message and then fans it out to every member of the room,
// the sender included. Persistence failure is logged inside the history
// service and never blocks the broadcast.
func (h *Hub) Say(ctx context.Context, m *Member, body string) {
	r := h.roomFor(m.topicID)
	h.names.Set(m.UserID, m.UserName, cache.DefaultExpiration)

	r.mu.Lock()
	defer r.mu.Unlock()

	// Durable log first, live fan-out second. Holding the room lock across
	// both keeps the log order identical to the delivery order.
	h.history.Append(ctx, m.topicID, m.UserID, m.UserName, body)
	r.broadcastLocked(Event{
		Type:      EventMessage,
		UserID:    m.UserID,
		UserName:  m.UserName,
		Message:   body,
		Timestamp: time.Now().UTC(),
	}, nil)
}

// Leave detaches the member and announces the departure to whoever remains.
// Leaving twice is harmless.
func (h *Hub) Leave(m *Member) {
	r := h.roomFor(m.topicID)

	r.mu.Lock()
	if _, ok := r.members[m]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.members, m)
	empty := len(r.members) == 0
	name := m.UserName
	if name == "" {
		name, _ = h.LastKnownName(m.UserID)
	}
	r.broadcastLocked(Event{
		Type:      EventUserLeft,
		UserName:  name,
		Timestamp: time.Now().UTC(),
	}, nil)
	r.mu.Unlock()

	connectionsGauge.Dec()
	if empty {
		h.dropIfEmpty(m.topicID)
	}
	log.Info().
		Str("topic_id", m.topicID).
		Str("user_id", m.UserID).
		Msg("member left room")
}

// LastKnownName reports the most recent display name seen for a user id, if
// the entry has not aged out.
func (h *Hub) LastKnownName(userID string) (string, bool) {
	v, ok := h.names.Get(userID)
	if !ok {
		return "", false
	}
	name, _ := v.(string)
	return name, name != ""
}

// RoomSize reports the current member count of a topic's room.
func (h *Hub) RoomSize(topicID string) int {
	h.mu.Lock()
	r, ok := h.rooms[topicID]
	h.mu.Unlock()
	if !ok {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

func (h *Hub) roomFor(topicID string) *room {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[topicID]
	if !ok {
		r = &room{members: make(map[*Member]struct{})}
		h.rooms[topicID] = r
		roomsGauge.Inc()
	}
	return r
}

// dropIfEmpty removes a room that lost its last member. Re-checked under both
// locks since a new member may have joined in between.
func (h *Hub) dropIfEmpty(topicID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[topicID]
	if !ok {
		return
	}
	r.mu.Lock()
	empty := len(r.members) == 0
	r.mu.Unlock()
	if empty {
		delete(h.rooms, topicID)
		roomsGauge.Dec()
	}
}

// broadcastLocked writes ev to every member except skip. A member whose write
// fails is pruned on the spot and its transport closed; delivery to the rest
// continues. Callers hold r.mu.
func (r *room) broadcastLocked(ev Event, skip *Member) {
	broadcastsTotal.WithLabelValues(ev.Type).Inc()
	for m := range r.members {
		if m == skip {
			continue
		}
		if err := m.conn.WriteJSON(ev); err != nil {
			delete(r.members, m)
			_ = m.conn.Close()
			connectionsGauge.Dec()
			prunedConnsTotal.Inc()
			log.Warn().
				Err(err).
				Str("topic_id", m.topicID).
				Str("user_id", m.UserID).
				Msg("pruned unwritable room connection")
		}
	}
}

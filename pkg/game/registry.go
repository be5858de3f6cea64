package game

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tecu23/lobby-server/internal/color"
	"github.com/tecu23/lobby-server/pkg/events"
	"github.com/tecu23/lobby-server/pkg/protocol"
)

// Registry is the single owner of all live sessions and the FIFO lobby of
// sessions awaiting a second player. Map and queue mutations are serialized
// by its mutex, which is never held across network I/O; session content is
// guarded by each session's own mutex. Lock order is registry then session,
// never the reverse.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	lobby    []string

	maxSpectators int
	broadcaster   *Broadcaster
	publisher     *events.Publisher
	logger        *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(maxSpectators int, b *Broadcaster, publisher *events.Publisher, logger *zap.Logger) *Registry {
	return &Registry{
		sessions:      make(map[string]*Session),
		maxSpectators: maxSpectators,
		broadcaster:   b,
		publisher:     publisher,
		logger:        logger,
	}
}

// newSessionID mirrors the short id format clients are used to.
func newSessionID() string {
	return uuid.New().String()[:8]
}

// CreateWaitingSession seats conn as white in a fresh session, announces the
// seat, and queues the session for matchmaking. The announcement goes out
// before the session is joinable, so the white player's assignment always
// precedes any match traffic. It returns nil when the announcement cannot be
// delivered; the session is discarded.
func (r *Registry) CreateWaitingSession(conn Recipient) *Session {
	s := newSession(newSessionID(), conn, r.maxSpectators, r.broadcaster, r.logger)

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()

	if err := conn.Send(protocol.Info("You are White. Game ID: %s. Waiting for an opponent...", s.id)); err != nil {
		r.logger.Warn("seat announcement failed",
			zap.String("session_id", s.id),
			zap.String("white_addr", conn.RemoteAddr()),
			zap.Error(err))
		r.Remove(s.id)
		return nil
	}

	r.mu.Lock()
	r.lobby = append(r.lobby, s.id)
	r.mu.Unlock()

	r.logger.Info("created waiting session",
		zap.String("session_id", s.id),
		zap.String("white_addr", conn.RemoteAddr()))
	r.publisher.Publish(events.Event{Type: events.EventSessionCreated, SessionID: s.id})

	return s
}

// JoinWaitingSession matches conn against the oldest waiting session,
// seating it as black and activating the session. It returns nil when no
// session is waiting; the caller creates one instead.
func (r *Registry) JoinWaitingSession(conn Recipient) *Session {
	for {
		r.mu.Lock()
		if len(r.lobby) == 0 {
			r.mu.Unlock()
			return nil
		}
		id := r.lobby[0]
		r.lobby = r.lobby[1:]
		s := r.sessions[id]
		r.mu.Unlock()

		// The queued session may have been removed or forfeited between the
		// pop and the seat; skip to the next waiting one.
		if s == nil || !s.seatBlack(conn) {
			continue
		}

		r.logger.Info("matched session",
			zap.String("session_id", s.id),
			zap.String("black_addr", conn.RemoteAddr()))
		r.publisher.Publish(events.Event{Type: events.EventSessionStarted, SessionID: s.id})

		return s
	}
}

// Lookup returns the session with the given id, if present.
func (r *Registry) Lookup(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]

	return s, ok
}

// ListSessions returns a consistent snapshot of all sessions for spectator
// selection, ordered by id.
func (r *Registry) ListSessions() []protocol.SessionSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]protocol.SessionSummary, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s.summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// Count reports the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// Remove deletes the session from the registry and, if still queued, the
// lobby. Removing an absent id is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	for i, lid := range r.lobby {
		if lid == id {
			r.lobby = append(r.lobby[:i], r.lobby[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	if ok {
		r.logger.Info("removed session", zap.String("session_id", id))
		r.publisher.Publish(events.Event{Type: events.EventSessionRemoved, SessionID: id})
	}
}

// Conclude removes a session whose game reached a terminal result.
func (r *Registry) Conclude(id string) {
	r.publisher.Publish(events.Event{Type: events.EventGameOver, SessionID: id})
	r.Remove(id)
}

// Forfeit ends the session because the seated player of the given color
// disconnected, notifying the opponent and removing the session. Calling it
// on an absent or already concluded session is a no-op.
func (r *Registry) Forfeit(id string, leaving color.Color) {
	s, ok := r.Lookup(id)
	if !ok {
		return
	}

	if s.Forfeit(leaving) {
		r.logger.Info("session forfeited",
			zap.String("session_id", id),
			zap.String("leaving_color", string(leaving)))
		r.publisher.Publish(events.Event{Type: events.EventGameOver, SessionID: id})
	}

	r.Remove(id)
}

// AttachSpectator appends conn to the session's spectator set, failing when
// the session is absent or at capacity.
func (r *Registry) AttachSpectator(id string, conn Recipient) (*Session, bool) {
	s, ok := r.Lookup(id)
	if !ok {
		return nil, false
	}

	if !s.attachSpectator(conn) {
		return nil, false
	}

	r.publisher.Publish(events.Event{Type: events.EventSpectatorJoined, SessionID: id})

	return s, true
}

// DetachSpectator removes conn from the session's spectator set if present.
func (r *Registry) DetachSpectator(id string, conn Recipient) {
	if s, ok := r.Lookup(id); ok {
		s.detachSpectator(conn)
	}
}

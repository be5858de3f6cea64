package game

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/tecu23/lobby-server/internal/color"
	"github.com/tecu23/lobby-server/pkg/protocol"
	"github.com/tecu23/lobby-server/pkg/rules"
)

// Phase is the session lifecycle state. Transitions only move forward:
// AwaitingOpponent -> Active -> Over.
type Phase int

// Session phases.
const (
	PhaseAwaitingOpponent Phase = iota
	PhaseActive
	PhaseOver
)

// ErrSessionOver reports an action against a session whose game already
// concluded.
var ErrSessionOver = errors.New("session is over")

// Session owns one game's mutable state: position, turn, seats, spectators.
// All content mutation happens under its mutex, and broadcasts are issued
// while it is held so every participant observes them in the order the
// session produced them. Individual sends are bounded by the connection's
// send timeout, so a stalled peer cannot hold the lock indefinitely.
type Session struct {
	id string

	mu         sync.Mutex
	pos        rules.Position
	phase      Phase
	turn       color.Color
	white      Recipient
	black      Recipient
	spectators []Recipient

	maxSpectators int
	broadcaster   *Broadcaster
	logger        *zap.Logger
}

func newSession(id string, white Recipient, maxSpectators int, b *Broadcaster, logger *zap.Logger) *Session {
	return &Session{
		id:            id,
		pos:           rules.NewPosition(),
		phase:         PhaseAwaitingOpponent,
		turn:          color.White,
		white:         white,
		maxSpectators: maxSpectators,
		broadcaster:   b,
		logger:        logger,
	}
}

// ID returns the session's stable identifier.
func (s *Session) ID() string { return s.id }

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.phase
}

// Turn returns the color expected to move next.
func (s *Session) Turn() color.Color {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.turn
}

// Snapshot returns the serialized position and turn for a late joiner.
func (s *Session) Snapshot() (string, color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pos.FEN(), s.turn
}

// seatBlack fills the black seat and activates the session. It announces the
// match to both players and broadcasts the opening position and turn. It
// reports false if the session is no longer waiting for an opponent.
func (s *Session) seatBlack(conn Recipient) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseAwaitingOpponent {
		return false
	}

	s.black = conn
	s.phase = PhaseActive

	s.unicast(conn, protocol.Info("You are Black. Game ID: %s. Game starting with %s!", s.id, s.white.RemoteAddr()))
	s.unicast(s.white, protocol.Info("Player %s (Black) has joined. Game starts!", conn.RemoteAddr()))

	all := s.recipientsLocked()
	s.broadcaster.Send(all, protocol.Board(s.pos.FEN()), nil)
	s.broadcaster.Send(all, protocol.Turn(s.turn), nil)

	return true
}

// MoveOutcome reports what a move attempt led to.
type MoveOutcome struct {
	Accepted bool
	Over     bool
	Result   string // game-over result text when Over
}

// HandleMove validates and applies one move attempt from mover. Rejections
// are unicast to the mover only and leave the session untouched; an accepted
// move flips the turn and broadcasts BOARD, then either GAME_OVER or the
// accepted-move notice followed by TURN.
func (s *Session) HandleMove(mover Recipient, moverColor color.Color, text string) (MoveOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case PhaseOver:
		return MoveOutcome{}, ErrSessionOver
	case PhaseAwaitingOpponent:
		s.unicast(mover, protocol.InvalidMove(protocol.ReasonNoOpponentYet))
		return MoveOutcome{}, nil
	}

	if s.seatLocked(moverColor) != mover || s.turn != moverColor {
		s.unicast(mover, protocol.InvalidMove(protocol.ReasonNotYourTurn))
		return MoveOutcome{}, nil
	}

	if err := s.pos.ApplyUCI(text); err != nil {
		switch {
		case errors.Is(err, rules.ErrMoveFormat):
			s.unicast(mover, protocol.InvalidMove(protocol.ReasonBadMoveFormat))
		case errors.Is(err, rules.ErrIllegalMove):
			s.unicast(mover, protocol.InvalidMove(protocol.ReasonIllegalMove))
		default:
			s.logger.Error("move processing failed",
				zap.String("session_id", s.id),
				zap.String("move", text),
				zap.Error(err))
			s.unicast(mover, protocol.InternalError(protocol.ReasonMoveProcessing))
		}
		return MoveOutcome{}, nil
	}

	s.turn = s.turn.Opp()

	all := s.recipientsLocked()
	s.broadcaster.Send(all, protocol.Board(s.pos.FEN()), nil)

	if result, over := s.terminalResultLocked(moverColor); over {
		s.phase = PhaseOver
		s.broadcaster.Send(all, protocol.GameOver(result), nil)
		s.logger.Info("game over",
			zap.String("session_id", s.id),
			zap.String("result", result))
		return MoveOutcome{Accepted: true, Over: true, Result: result}, nil
	}

	s.broadcaster.Send(all, protocol.MoveAccepted(text, moverColor), nil)
	s.broadcaster.Send(all, protocol.Turn(s.turn), nil)

	return MoveOutcome{Accepted: true}, nil
}

// Chat broadcasts a chat line to everyone except the sender. The caller
// echoes to the sender separately. senderLabel is the seat color or
// "Spectator". Chat never mutates game state and is not gated by turn.
func (s *Session) Chat(sender Recipient, senderLabel, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseOver {
		return ErrSessionOver
	}

	s.broadcaster.Send(s.recipientsLocked(), protocol.Chat(senderLabel, sender.RemoteAddr(), text), sender)

	return nil
}

// Forfeit marks the session over because the seated player of the given
// color disconnected, notifying the remaining player. It reports whether
// this call performed the transition.
func (s *Session) Forfeit(leaving color.Color) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseOver {
		return false
	}

	s.phase = PhaseOver

	if opp := s.seatLocked(leaving.Opp()); opp != nil {
		s.unicast(opp, protocol.Info("Opponent (%s) disconnected. Game ended.", leaving))
	}

	return true
}

// attachSpectator appends conn unless the session concluded or the spectator
// set is full.
func (s *Session) attachSpectator(conn Recipient) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseOver || len(s.spectators) >= s.maxSpectators {
		return false
	}

	s.spectators = append(s.spectators, conn)

	return true
}

// detachSpectator removes conn if present; no-op otherwise.
func (s *Session) detachSpectator(conn Recipient) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sp := range s.spectators {
		if sp == conn {
			s.spectators = append(s.spectators[:i], s.spectators[i+1:]...)
			return
		}
	}
}

// summary builds one spectate-listing row.
func (s *Session) summary() protocol.SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := protocol.SessionSummary{
		ID:        s.id,
		WhiteAddr: s.white.RemoteAddr(),
		Status:    protocol.StatusAwaiting,
	}
	if s.black != nil {
		sum.BlackAddr = s.black.RemoteAddr()
		sum.Status = protocol.StatusInProgress
	}

	return sum
}

func (s *Session) seatLocked(c color.Color) Recipient {
	switch c {
	case color.White:
		return s.white
	case color.Black:
		return s.black
	default:
		return nil
	}
}

func (s *Session) recipientsLocked() []Recipient {
	out := make([]Recipient, 0, 2+len(s.spectators))
	if s.white != nil {
		out = append(out, s.white)
	}
	if s.black != nil {
		out = append(out, s.black)
	}
	out = append(out, s.spectators...)

	return out
}

// terminalResultLocked checks the terminal predicates in fixed priority
// order. mover is the color that just moved and wins on checkmate.
func (s *Session) terminalResultLocked(mover color.Color) (string, bool) {
	switch {
	case s.pos.IsCheckmate():
		return protocol.CheckmateResult(mover), true
	case s.pos.IsStalemate():
		return protocol.StalemateResult, true
	case s.pos.IsInsufficientMaterial():
		return protocol.InsufficientMaterialResult, true
	case s.pos.IsMoveLimitDraw():
		return protocol.MoveLimitResult, true
	case s.pos.IsRepetitionDraw():
		return protocol.RepetitionResult, true
	}

	return "", false
}

func (s *Session) unicast(r Recipient, line string) {
	if err := r.Send(line); err != nil {
		s.logger.Warn("unicast delivery failed",
			zap.String("remote_addr", r.RemoteAddr()),
			zap.Error(err))
	}
}

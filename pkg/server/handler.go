package server

import (
	"errors"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tecu23/lobby-server/internal/color"
	"github.com/tecu23/lobby-server/pkg/config"
	"github.com/tecu23/lobby-server/pkg/events"
	"github.com/tecu23/lobby-server/pkg/game"
	"github.com/tecu23/lobby-server/pkg/protocol"
)

// Handler runs the per-connection control flow: handshake, role path, main
// loop, cleanup. One sequential goroutine per connection; all shared state
// is reached through the registry.
type Handler struct {
	registry  *game.Registry
	cfg       *config.Config
	publisher *events.Publisher
	logger    *zap.Logger
}

// NewHandler creates a connection handler.
func NewHandler(registry *game.Registry, cfg *config.Config, publisher *events.Publisher, logger *zap.Logger) *Handler {
	return &Handler{
		registry:  registry,
		cfg:       cfg,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle serves one connection to completion.
func (h *Handler) Handle(conn *Connection) {
	go conn.WritePump()

	h.logger.Info("new connection",
		zap.String("connection_id", conn.ID.String()),
		zap.String("remote_addr", conn.RemoteAddr()))

	defer func() {
		conn.Close()
		h.publisher.Publish(events.Event{
			Type:    events.EventConnectionClosed,
			Payload: conn.ID.String(),
		})
		h.logger.Info("connection closed", zap.String("remote_addr", conn.RemoteAddr()))
	}()

	if err := conn.Send(protocol.RolePrompt); err != nil {
		return
	}

	choice, err := conn.ReadLine()
	if err != nil {
		return
	}

	switch strings.ToUpper(strings.TrimSpace(choice)) {
	case "P":
		h.runPlayer(conn)
	case "S":
		h.runSpectator(conn)
	default:
		_ = conn.Send(protocol.Info("Invalid choice."))
	}
}

// runPlayer joins the oldest waiting session as black, or creates a fresh
// one as white, then enters the main loop. Cleanup forfeits the session if
// the game is still running when the loop exits.
func (h *Handler) runPlayer(conn *Connection) {
	var (
		sess *game.Session
		col  color.Color
	)

	if s := h.registry.JoinWaitingSession(conn); s != nil {
		sess, col = s, color.Black
	} else if s := h.registry.CreateWaitingSession(conn); s != nil {
		sess, col = s, color.White
	} else {
		return
	}

	// Forfeit is a no-op once the game concluded through play or the other
	// seat's disconnect; removal is idempotent either way.
	defer h.registry.Forfeit(sess.ID(), col)

	h.mainLoop(conn, sess, col, false)
}

// runSpectator shows the session listing, attaches to the chosen session,
// sends the current position, then enters the main loop.
func (h *Handler) runSpectator(conn *Connection) {
	summaries := h.registry.ListSessions()
	if len(summaries) == 0 {
		_ = conn.Send(protocol.Info("No active games to spectate. Try again later."))
		return
	}

	if err := conn.Send(protocol.Listing(summaries)); err != nil {
		return
	}

	choice, err := conn.ReadLine()
	if err != nil {
		return
	}
	id := strings.TrimSpace(choice)

	sess, ok := h.registry.AttachSpectator(id, conn)
	if !ok {
		if _, exists := h.registry.Lookup(id); exists {
			_ = conn.Send(protocol.Info("Spectator limit reached for this game."))
		} else {
			_ = conn.Send(protocol.Info("Invalid Game ID."))
		}
		return
	}

	defer h.registry.DetachSpectator(id, conn)

	_ = conn.Send(protocol.Info("Spectating Game ID %s. Board updates will follow.", id))
	fen, turn := sess.Snapshot()
	_ = conn.Send(protocol.Board(fen))
	if err := conn.Send(protocol.Turn(turn)); err != nil {
		return
	}

	h.logger.Info("spectator attached",
		zap.String("session_id", id),
		zap.String("remote_addr", conn.RemoteAddr()))

	h.mainLoop(conn, sess, "", true)
}

// mainLoop reads one line at a time until the peer quits, disconnects, or
// the session concludes underneath an action. Spectators read under an idle
// deadline that exists purely for dead-peer detection; players block
// indefinitely.
func (h *Handler) mainLoop(conn *Connection, sess *game.Session, col color.Color, spectator bool) {
	label := string(col)
	if spectator {
		label = "Spectator"
	}

	for {
		if spectator {
			_ = conn.SetReadDeadline(time.Now().Add(h.cfg.SpectatorIdleTimeout))
		}

		line, err := conn.ReadLine()
		if err != nil {
			var nerr net.Error
			if spectator && errors.As(err, &nerr) && nerr.Timeout() {
				// Idle is fine as long as deliveries still go through.
				if conn.Failed() {
					return
				}
				continue
			}
			return
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		cmd := protocol.ParseCommand(line)
		switch cmd.Kind {
		case protocol.CmdMove:
			outcome, err := sess.HandleMove(conn, col, cmd.Arg)
			if err != nil {
				_ = conn.Send(protocol.Info("The game session has ended."))
				return
			}
			if outcome.Accepted {
				h.publisher.Publish(events.Event{
					Type:      events.EventMoveAccepted,
					SessionID: sess.ID(),
					Payload:   cmd.Arg,
				})
			}
			if outcome.Over {
				h.registry.Conclude(sess.ID())
				return
			}

		case protocol.CmdChat:
			if err := sess.Chat(conn, label, cmd.Arg); err != nil {
				_ = conn.Send(protocol.Info("The game session has ended."))
				return
			}
			if err := conn.Send(protocol.ChatEcho(cmd.Arg)); err != nil {
				return
			}

		case protocol.CmdQuit:
			_ = conn.Send(protocol.Info("You have quit the game."))
			return

		default:
			if sess.Turn() != col {
				_ = conn.Send(protocol.Info("It's not your turn. Type 'CHAT:<your message>' to chat or 'QUIT'."))
			}
		}
	}
}

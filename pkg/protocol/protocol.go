// Package protocol implements the line-oriented text protocol spoken by
// players and spectators. One message per line, UTF-8, '\n'-terminated.
// The codec is stateless; it only builds and classifies lines.
package protocol

import (
	"fmt"
	"strings"

	"github.com/tecu23/lobby-server/internal/color"
)

// RolePrompt is the first message sent on every new connection.
const RolePrompt = "Welcome! Play (P) or Spectate (S)? "

// Rejection reasons carried by INVALID_MOVE.
const (
	ReasonNotYourTurn   = "Not your turn."
	ReasonIllegalMove   = "Illegal move."
	ReasonBadMoveFormat = "Invalid move format (use UCI e.g., e2e4)."
	ReasonNoOpponentYet = "Opponent not connected yet."
)

// ReasonMoveProcessing is the generic ERROR text for an engine fault.
const ReasonMoveProcessing = "Could not process move."

// Session status strings shown in the spectate listing.
const (
	StatusAwaiting   = "awaiting opponent"
	StatusInProgress = "in progress"
)

// Game-over result texts for drawn games.
const (
	StalemateResult            = "Stalemate! It's a draw."
	InsufficientMaterialResult = "Insufficient material! It's a draw."
	MoveLimitResult            = "75-move rule! It's a draw."
	RepetitionResult           = "Fivefold repetition! It's a draw."
)

// CommandKind classifies inbound lines read during the main loop.
type CommandKind int

// The commands a client may send after the handshake.
const (
	CmdUnknown CommandKind = iota
	CmdMove
	CmdChat
	CmdQuit
)

// Command is one parsed inbound line.
type Command struct {
	Kind CommandKind
	Arg  string // move text for CmdMove, chat text for CmdChat
}

// ParseCommand classifies one inbound line.
func ParseCommand(line string) Command {
	switch {
	case strings.HasPrefix(line, "MOVE:"):
		return Command{Kind: CmdMove, Arg: strings.TrimPrefix(line, "MOVE:")}
	case strings.HasPrefix(line, "CHAT:"):
		return Command{Kind: CmdChat, Arg: strings.TrimPrefix(line, "CHAT:")}
	case strings.EqualFold(strings.TrimSpace(line), "QUIT"):
		return Command{Kind: CmdQuit}
	default:
		return Command{Kind: CmdUnknown, Arg: line}
	}
}

// Board renders the authoritative position snapshot message.
func Board(fen string) string { return "BOARD:" + fen }

// Turn renders the whose-move-is-next message.
func Turn(c color.Color) string { return "TURN:" + string(c) }

// Info renders a free-form informational message.
func Info(format string, args ...interface{}) string {
	return "INFO:" + fmt.Sprintf(format, args...)
}

// InvalidMove renders a unicast move rejection.
func InvalidMove(reason string) string { return "INVALID_MOVE:" + reason }

// InternalError renders the generic error sent on an internal fault.
func InternalError(msg string) string { return "ERROR:" + msg }

// GameOver renders a terminal result message.
func GameOver(result string) string { return "GAME_OVER:" + result }

// CheckmateResult renders the result text for a checkmate win.
func CheckmateResult(winner color.Color) string {
	return fmt.Sprintf("Checkmate! Winner: %s", winner)
}

// Chat renders the broadcast copy of a chat line. sender is the seat color
// or "Spectator"; addr is the peer's display address.
func Chat(sender, addr, text string) string {
	return fmt.Sprintf("CHAT:%s(%s): %s", sender, addr, text)
}

// ChatEcho renders the distinct copy echoed back to the chat sender.
func ChatEcho(text string) string { return "CHAT:You: " + text }

// MoveAccepted renders the accepted-move notice broadcast after BOARD.
func MoveAccepted(uci string, c color.Color) string {
	return Info("Move %s by %s was valid.", uci, c)
}

// SessionSummary is one row of the spectate listing.
type SessionSummary struct {
	ID        string
	WhiteAddr string
	BlackAddr string // empty while awaiting an opponent
	Status    string
}

// Listing renders the spectate selection block. It spans several lines and
// ends with the game id prompt.
func Listing(sessions []SessionSummary) string {
	var b strings.Builder
	b.WriteString("INFO:Active Games:\n")
	for _, s := range sessions {
		black := s.BlackAddr
		if black == "" {
			black = "N/A"
		}
		fmt.Fprintf(&b, "  ID: %s - White: %s vs Black: %s (%s)\n", s.ID, s.WhiteAddr, black, s.Status)
	}
	b.WriteString("Enter Game ID to spectate: ")

	return b.String()
}

// Package rules adapts the external chess rules engine. The server treats
// positions as opaque: it applies candidate moves, serializes the position,
// and queries terminal predicates, nothing more.
package rules

import (
	"errors"
	"regexp"

	"github.com/corentings/chess/v2"

	"github.com/tecu23/lobby-server/internal/color"
)

// Classified move failures. Anything else returned by ApplyUCI is an engine
// fault.
var (
	ErrMoveFormat  = errors.New("invalid move format")
	ErrIllegalMove = errors.New("illegal move")
)

var uciPattern = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][nbrq]?$`)

// Position is the narrow contract a game session needs from the rules
// engine. A position is exclusively owned by one session.
type Position interface {
	// ApplyUCI validates and applies one move in UCI notation. A rejected
	// move leaves the position untouched.
	ApplyUCI(text string) error
	// FEN serializes the current position.
	FEN() string
	// Turn reports the color to move.
	Turn() color.Color

	// Terminal predicates, queried after an applied move in this priority
	// order: checkmate first, repetition draw last.
	IsCheckmate() bool
	IsStalemate() bool
	IsInsufficientMaterial() bool
	IsMoveLimitDraw() bool
	IsRepetitionDraw() bool
}

type position struct {
	game *chess.Game
}

// NewPosition returns a fresh position at the standard starting setup.
func NewPosition() Position {
	return &position{game: chess.NewGame()}
}

func (p *position) ApplyUCI(text string) error {
	if !uciPattern.MatchString(text) {
		return ErrMoveFormat
	}

	if err := p.game.PushNotationMove(text, chess.UCINotation{}, nil); err != nil {
		return ErrIllegalMove
	}

	return nil
}

func (p *position) FEN() string { return p.game.FEN() }

func (p *position) Turn() color.Color {
	if p.game.Position().Turn() == chess.White {
		return color.White
	}

	return color.Black
}

func (p *position) IsCheckmate() bool { return p.game.Method() == chess.Checkmate }

func (p *position) IsStalemate() bool { return p.game.Method() == chess.Stalemate }

func (p *position) IsInsufficientMaterial() bool {
	return p.game.Method() == chess.InsufficientMaterial
}

func (p *position) IsMoveLimitDraw() bool { return p.game.Method() == chess.SeventyFiveMoveRule }

func (p *position) IsRepetitionDraw() bool { return p.game.Method() == chess.FivefoldRepetition }

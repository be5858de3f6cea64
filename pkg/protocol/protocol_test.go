package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tecu23/lobby-server/internal/color"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Command
	}{
		{"move", "MOVE:e2e4", Command{Kind: CmdMove, Arg: "e2e4"}},
		{"chat keeps inner colons", "CHAT:gg: well played", Command{Kind: CmdChat, Arg: "gg: well played"}},
		{"quit", "QUIT", Command{Kind: CmdQuit}},
		{"quit lowercase", "quit", Command{Kind: CmdQuit}},
		{"unknown", "HELP", Command{Kind: CmdUnknown, Arg: "HELP"}},
		{"move prefix is case sensitive", "move:e2e4", Command{Kind: CmdUnknown, Arg: "move:e2e4"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseCommand(tc.line))
		})
	}
}

func TestOutboundMessages(t *testing.T) {
	assert.Equal(t, "BOARD:some-fen", Board("some-fen"))
	assert.Equal(t, "TURN:white", Turn(color.White))
	assert.Equal(t, "TURN:black", Turn(color.Black))
	assert.Equal(t, "INVALID_MOVE:Not your turn.", InvalidMove(ReasonNotYourTurn))
	assert.Equal(t, "ERROR:Could not process move.", InternalError(ReasonMoveProcessing))
	assert.Equal(t, "GAME_OVER:Checkmate! Winner: black", GameOver(CheckmateResult(color.Black)))
	assert.Equal(t, "GAME_OVER:Stalemate! It's a draw.", GameOver(StalemateResult))
	assert.Equal(t, "CHAT:white(1.2.3.4:5678): hi", Chat("white", "1.2.3.4:5678", "hi"))
	assert.Equal(t, "CHAT:You: hi", ChatEcho("hi"))
	assert.Equal(t, "INFO:Move e2e4 by white was valid.", MoveAccepted("e2e4", color.White))
	assert.Equal(t, "INFO:Game ID: abc", Info("Game ID: %s", "abc"))
}

func TestListing(t *testing.T) {
	got := Listing([]SessionSummary{
		{ID: "abc12345", WhiteAddr: "w:1", Status: StatusAwaiting},
		{ID: "def67890", WhiteAddr: "w:2", BlackAddr: "b:2", Status: StatusInProgress},
	})

	want := "INFO:Active Games:\n" +
		"  ID: abc12345 - White: w:1 vs Black: N/A (awaiting opponent)\n" +
		"  ID: def67890 - White: w:2 vs Black: b:2 (in progress)\n" +
		"Enter Game ID to spectate: "
	assert.Equal(t, want, got)
}

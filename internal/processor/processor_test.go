package processor

import (
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkers/internal/core"
	"checkers/internal/game"
	"checkers/internal/service"
	"checkers/internal/state"
)

var (
	human   = core.PlayerConfig{Type: core.PlayerHuman}
	machine = core.PlayerConfig{Type: core.PlayerGreedy, Seed: 9}
)

func newProcessor(t *testing.T) *Processor {
	t.Helper()
	p := New(service.New(nil, service.Config{}), Config{Workers: 1, SearchTimeout: 5 * time.Second})
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func create(t *testing.T, p *Processor, req core.CreateGameRequest) core.GameResponse {
	t.Helper()
	resp := p.Execute(NewCreateGameCommand("", req))
	require.True(t, resp.Success, "%+v", resp.Error)
	return resp.Data.(core.GameResponse)
}

func errCode(t *testing.T, resp ProcessorResponse) string {
	t.Helper()
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestHumanGame(t *testing.T) {
	p := newProcessor(t)
	g := create(t, p, core.CreateGameRequest{White: human, Black: human})
	assert.Equal(t, state.Starting, g.State)
	assert.Equal(t, "white_to_move", g.Status)
	assert.Equal(t, "ongoing", g.Result)
	assert.Equal(t, 12, g.Pieces.WhiteMen)

	resp := p.Execute(NewMakeMoveCommand(g.GameID, core.MoveRequest{Move: "9-13"}))
	require.True(t, resp.Success)
	after := resp.Data.(core.GameResponse)
	assert.Equal(t, "b", after.Turn)
	assert.Equal(t, []string{"9-13"}, after.Moves)
	require.NotNil(t, after.LastMove)
	assert.Equal(t, "w", after.LastMove.PlayerColor)

	assert.Equal(t, core.ErrInvalidMove, errCode(t, p.Execute(NewMakeMoveCommand(g.GameID, core.MoveRequest{Move: "21-25"}))))
	assert.Equal(t, core.ErrInvalidMove, errCode(t, p.Execute(NewMakeMoveCommand(g.GameID, core.MoveRequest{Move: "a-b"}))))
	assert.Equal(t, core.ErrNotComputerTurn, errCode(t, p.Execute(NewMakeMoveCommand(g.GameID, core.MoveRequest{Move: core.ComputerMove}))))
}

func TestUndoRedoPause(t *testing.T) {
	p := newProcessor(t)
	g := create(t, p, core.CreateGameRequest{White: human, Black: human})
	id := g.GameID

	assert.Equal(t, core.ErrNothingToUndo, errCode(t, p.Execute(NewUndoMoveCommand(id, core.UndoRequest{Count: 1}))))
	require.True(t, p.Execute(NewMakeMoveCommand(id, core.MoveRequest{Move: "9-13"})).Success)

	resp := p.Execute(NewUndoMoveCommand(id, core.UndoRequest{}))
	require.True(t, resp.Success)
	undone := resp.Data.(core.GameResponse)
	assert.Empty(t, undone.Moves)
	assert.True(t, undone.CanRedo)

	resp = p.Execute(NewRedoMoveCommand(id))
	require.True(t, resp.Success)
	assert.Equal(t, []string{"9-13"}, resp.Data.(core.GameResponse).Moves)
	assert.Equal(t, core.ErrNothingToRedo, errCode(t, p.Execute(NewRedoMoveCommand(id))))

	resp = p.Execute(NewPauseCommand(id))
	require.True(t, resp.Success)
	assert.Equal(t, "paused", resp.Data.(core.GameResponse).Status)
	assert.Equal(t, core.ErrGamePaused, errCode(t, p.Execute(NewMakeMoveCommand(id, core.MoveRequest{Move: "21-17"}))))

	resp = p.Execute(NewResumeCommand(id))
	require.True(t, resp.Success)
	assert.Equal(t, "black_to_move", resp.Data.(core.GameResponse).Status)
}

func TestReset(t *testing.T) {
	p := newProcessor(t)
	initial := "wwwwwwwwwwww........bbbbbbbbbbbb b - 3"
	g := create(t, p, core.CreateGameRequest{White: human, Black: human, State: initial})
	id := g.GameID

	require.True(t, p.Execute(NewMakeMoveCommand(id, core.MoveRequest{Move: "21-17"})).Success)
	require.True(t, p.Execute(NewPauseCommand(id)).Success)

	resp := p.Execute(NewResetCommand(id))
	require.True(t, resp.Success)
	reset := resp.Data.(core.GameResponse)
	assert.Equal(t, g.State, reset.State)
	assert.Empty(t, reset.Moves)
	assert.False(t, reset.CanRedo)
	assert.Equal(t, "black_to_move", reset.Status)

	assert.Equal(t, core.ErrGameNotFound, errCode(t, p.Execute(NewResetCommand("missing"))))
}

func TestComputerMove(t *testing.T) {
	p := newProcessor(t)
	g := create(t, p, core.CreateGameRequest{White: machine, Black: human})

	assert.Equal(t, core.ErrNotHumanTurn, errCode(t, p.Execute(NewMakeMoveCommand(g.GameID, core.MoveRequest{Move: "9-13"}))))

	resp := p.Execute(NewMakeMoveCommand(g.GameID, core.MoveRequest{Move: core.ComputerMove}))
	require.True(t, resp.Success, "%+v", resp.Error)
	assert.True(t, resp.Pending)

	require.Eventually(t, func() bool {
		r := p.Execute(NewGetGameCommand(g.GameID))
		data := r.Data.(core.GameResponse)
		return !data.Pending && len(data.Moves) == 1
	}, 5*time.Second, 5*time.Millisecond)

	r := p.Execute(NewGetGameCommand(g.GameID)).Data.(core.GameResponse)
	assert.Equal(t, "b", r.Turn)
	require.NotNil(t, r.LastMove)
	assert.Equal(t, "w", r.LastMove.PlayerColor)
}

func TestCreateFromState(t *testing.T) {
	p := newProcessor(t)
	drawPlies := 20
	g := create(t, p, core.CreateGameRequest{
		White:     human,
		Black:     human,
		State:     "wwwwwwwwwwww........bbbbbbbbbbbb b - 3",
		Variant:   "italian",
		DrawPlies: &drawPlies,
	})
	assert.Equal(t, "wwwwwwwwwwww........bbbbbbbbbbbb b - 3 italian 20", g.State)
	assert.Equal(t, "black_to_move", g.Status)

	bad := p.Execute(NewCreateGameCommand("", core.CreateGameRequest{White: human, Black: human, State: "nonsense"}))
	assert.Equal(t, core.ErrInvalidState, errCode(t, bad))

	over := create(t, p, core.CreateGameRequest{White: human, Black: human, State: "w............................... b - 0"})
	assert.Equal(t, "over", over.Status)
	assert.Equal(t, "white wins", over.Result)
}

func TestBoardAndLegalMoves(t *testing.T) {
	p := newProcessor(t)
	g := create(t, p, core.CreateGameRequest{White: human, Black: human})

	resp := p.Execute(NewGetBoardCommand(g.GameID))
	require.True(t, resp.Success)
	b := resp.Data.(core.BoardResponse)
	assert.Equal(t, state.Starting, b.State)
	assert.NotEmpty(t, b.Board)

	resp = p.Execute(NewLegalMovesCommand(g.GameID, core.LegalMovesRequest{}))
	require.True(t, resp.Success)
	assert.Len(t, resp.Data.(core.LegalMovesResponse).Moves, 7)

	from := 9
	resp = p.Execute(NewLegalMovesCommand(g.GameID, core.LegalMovesRequest{From: &from}))
	require.True(t, resp.Success)
	assert.ElementsMatch(t, []string{"9-13", "9-14"}, resp.Data.(core.LegalMovesResponse).Moves)
}

func TestDeleteAndMissingGame(t *testing.T) {
	p := newProcessor(t)
	g := create(t, p, core.CreateGameRequest{White: human, Black: human})

	require.True(t, p.Execute(NewDeleteGameCommand(g.GameID)).Success)
	for _, cmd := range []Command{
		NewGetGameCommand(g.GameID),
		NewDeleteGameCommand(g.GameID),
		NewGetBoardCommand(g.GameID),
		NewRedoMoveCommand(g.GameID),
		NewMakeMoveCommand(g.GameID, core.MoveRequest{Move: "9-13"}),
	} {
		assert.Equal(t, core.ErrGameNotFound, errCode(t, p.Execute(cmd)))
	}
	assert.Equal(t, core.ErrInvalidRequest, errCode(t, p.Execute(Command{Type: CmdCreateGame, Args: "bogus"})))
	assert.Equal(t, core.ErrInvalidRequest, errCode(t, p.Execute(Command{Type: CommandType(99)})))
}

func TestConfigurePlayers(t *testing.T) {
	p := newProcessor(t)
	g := create(t, p, core.CreateGameRequest{White: human, Black: human})

	resp := p.Execute(NewConfigurePlayersCommand(g.GameID, core.ConfigurePlayersRequest{
		White: human,
		Black: core.PlayerConfig{Type: core.PlayerMinimax, Depth: 3},
	}))
	require.True(t, resp.Success)
	players := resp.Data.(core.GameResponse).Players
	assert.Equal(t, core.PlayerMinimax, players.Black.Type)
	assert.Equal(t, 3, players.Black.Depth)
}

func TestErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{fmt.Errorf("wrapped: %w", service.ErrGameNotFound), core.ErrGameNotFound},
		{errors.Wrap(state.ErrIllegalMove, "9-18"), core.ErrInvalidMove},
		{game.ErrBusy, core.ErrGameBusy},
		{game.ErrNothingToRedo, core.ErrNothingToRedo},
		{errors.New("boom"), core.ErrInternalError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, ErrorCode(tc.err), tc.err.Error())
	}
}

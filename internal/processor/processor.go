package processor

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/rs/zerolog/log"

	"checkers/internal/board"
	"checkers/internal/core"
	"checkers/internal/game"
	"checkers/internal/service"
	"checkers/internal/state"
)

// Processor executes commands against the service and schedules computer moves
type Processor struct {
	svc     *service.Service
	queue   *EngineQueue
	mu      sync.Mutex
	pending map[string]bool // games with a queued or running computer move
}

// Config sizes the engine worker pool
type Config struct {
	Workers       int
	SearchTimeout time.Duration
}

func New(svc *service.Service, cfg Config) *Processor {
	return &Processor{
		svc:     svc,
		queue:   NewEngineQueue(cfg.Workers, cfg.SearchTimeout),
		pending: make(map[string]bool),
	}
}

func (p *Processor) Execute(cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdCreateGame:
		return p.handleCreateGame(cmd)
	case CmdConfigurePlayers:
		return p.handleConfigurePlayers(cmd)
	case CmdGetGame:
		return p.handleGetGame(cmd)
	case CmdMakeMove:
		return p.handleMakeMove(cmd)
	case CmdUndoMove:
		return p.handleUndoMove(cmd)
	case CmdRedoMove:
		return p.withGame(cmd, func(g *game.Manager) error { return g.Redo() })
	case CmdPause:
		return p.withGame(cmd, func(g *game.Manager) error { return g.Pause() })
	case CmdResume:
		return p.withGame(cmd, func(g *game.Manager) error { return g.Resume() })
	case CmdReset:
		return p.withGame(cmd, func(g *game.Manager) error {
			if err := g.Reset(); err != nil {
				return err
			}
			return g.Start()
		})
	case CmdDeleteGame:
		return p.handleDeleteGame(cmd)
	case CmdGetBoard:
		return p.handleGetBoard(cmd)
	case CmdLegalMoves:
		return p.handleLegalMoves(cmd)
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

// isStateSafe rejects control characters in client-supplied state strings
func isStateSafe(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

func (p *Processor) handleCreateGame(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.CreateGameRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	initial := state.New(state.DefaultRules())
	if args.State != "" {
		if !isStateSafe(args.State) {
			return p.errorResponse("invalid characters in state", core.ErrInvalidState)
		}
		parsed, err := state.Parse(args.State)
		if err != nil {
			return p.errorResponse(err.Error(), core.ErrInvalidState)
		}
		initial = parsed
	}

	rules := initial.Rules()
	if args.Variant != "" {
		v, err := board.ParseVariant(args.Variant)
		if err != nil {
			return p.errorResponse(err.Error(), core.ErrInvalidRequest)
		}
		rules.Variant = v
	}
	if args.DrawPlies != nil {
		rules.DrawPlies = *args.DrawPlies
	}
	initial = initial.WithRules(rules)

	gameID, g, err := p.svc.CreateGame(initial, args.White, args.Black, cmd.UserID)
	if err != nil {
		return p.fromError(fmt.Sprintf("failed to create game: %v", err), err)
	}

	return ProcessorResponse{Success: true, Data: p.buildGameResponse(gameID, g)}
}

func (p *Processor) handleConfigurePlayers(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.ConfigurePlayersRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	if p.isPending(cmd.GameID) {
		return p.errorResponse("cannot change players while computer is calculating", core.ErrGameBusy)
	}

	if err := p.svc.ConfigurePlayers(cmd.GameID, args.White, args.Black); err != nil {
		return p.fromError(err.Error(), err)
	}
	return p.handleGetGame(cmd)
}

func (p *Processor) handleGetGame(cmd Command) ProcessorResponse {
	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}
	resp := p.buildGameResponse(cmd.GameID, g)
	return ProcessorResponse{Success: true, Pending: resp.Pending, Data: resp}
}

// handleMakeMove plays a human move, or schedules the computer move when the move is "cccc"
func (p *Processor) handleMakeMove(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.MoveRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	move := strings.TrimSpace(args.Move)
	if move == core.ComputerMove {
		return p.handleComputerMove(cmd.GameID, g)
	}

	if p.isPending(cmd.GameID) {
		return p.errorResponse("computer move in progress", core.ErrGameBusy)
	}
	if !isStateSafe(move) {
		return p.errorResponse("invalid move format", core.ErrInvalidMove)
	}
	m, err := board.ParseMove(move)
	if err != nil {
		return p.errorResponse(err.Error(), core.ErrInvalidMove)
	}

	mover := g.State().Turn()
	if err := g.SubmitMove(m); err != nil {
		return p.fromError(err.Error(), err)
	}

	resp := p.buildGameResponse(cmd.GameID, g)
	resp.LastMove = &core.MoveInfo{Move: m.String(), PlayerColor: mover.String()}
	return ProcessorResponse{Success: true, Data: resp}
}

func (p *Processor) handleComputerMove(gameID string, g *game.Manager) ProcessorResponse {
	view := g.View()
	switch view.Status {
	case core.StatusPlayer1ToMove, core.StatusPlayer2ToMove:
	default:
		return p.fromError("game is not running", statusError(view.Status))
	}

	turn := view.Current.State.Turn()
	next := view.White
	if turn == core.ColorBlack {
		next = view.Black
	}
	if next.IsHuman() {
		return p.errorResponse("not computer player's turn", core.ErrNotComputerTurn)
	}

	if !p.markPending(gameID) {
		return p.errorResponse("computer move in progress", core.ErrGameBusy)
	}

	err := p.queue.SubmitAsync(gameID, g, func(result EngineResult) {
		p.clearPending(gameID)
		switch {
		case result.Error == nil:
			log.Info().Str("game", gameID).Str("move", result.Search.BestMove.String()).
				Int("score", result.Search.Score).Int("nodes", result.Search.Nodes).Msg("computer moved")
		case errors.Is(result.Error, game.ErrStale):
			log.Debug().Str("game", gameID).Msg("computer move discarded, game changed")
		default:
			log.Warn().Err(result.Error).Str("game", gameID).Msg("computer move failed")
		}
	})
	if err != nil {
		p.clearPending(gameID)
		return p.errorResponse(err.Error(), core.ErrResourceLimit)
	}

	resp := p.buildGameResponse(gameID, g)
	resp.LastMove = &core.MoveInfo{PlayerColor: turn.String()}
	return ProcessorResponse{Success: true, Pending: true, Data: resp}
}

func (p *Processor) handleUndoMove(cmd Command) ProcessorResponse {
	args := core.UndoRequest{Count: 1}
	if req, ok := cmd.Args.(core.UndoRequest); ok && req.Count > 0 {
		args = req
	}
	return p.withGame(cmd, func(g *game.Manager) error { return g.Undo(args.Count) })
}

// withGame runs a manager transition and answers with the resulting game
func (p *Processor) withGame(cmd Command, fn func(*game.Manager) error) ProcessorResponse {
	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}
	if p.isPending(cmd.GameID) {
		return p.errorResponse("computer move in progress", core.ErrGameBusy)
	}
	if err := fn(g); err != nil {
		return p.fromError(err.Error(), err)
	}
	return ProcessorResponse{Success: true, Data: p.buildGameResponse(cmd.GameID, g)}
}

func (p *Processor) handleDeleteGame(cmd Command) ProcessorResponse {
	if p.isPending(cmd.GameID) {
		return p.errorResponse("cannot delete game while computer move is in progress", core.ErrGameBusy)
	}
	if err := p.svc.DeleteGame(cmd.GameID); err != nil {
		return p.fromError(err.Error(), err)
	}
	return ProcessorResponse{Success: true}
}

func (p *Processor) handleGetBoard(cmd Command) ProcessorResponse {
	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	s := g.State()
	return ProcessorResponse{
		Success: true,
		Data: core.BoardResponse{
			State: s.String(),
			Board: s.Board().ToASCII(),
		},
	}
}

func (p *Processor) handleLegalMoves(cmd Command) ProcessorResponse {
	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	s := g.State()
	moves := s.LegalMoves()
	if req, ok := cmd.Args.(core.LegalMovesRequest); ok && req.From != nil {
		moves = s.MovesFrom(*req.From)
	}

	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	return ProcessorResponse{Success: true, Data: core.LegalMovesResponse{Moves: out}}
}

func (p *Processor) buildGameResponse(gameID string, g *game.Manager) core.GameResponse {
	view := g.View()
	s := view.Current.State

	resp := core.GameResponse{
		GameID:    gameID,
		State:     s.String(),
		Turn:      s.Turn().String(),
		Status:    view.Status.String(),
		Result:    s.Result().String(),
		Pending:   view.Thinking || p.isPending(gameID),
		Moves:     view.Moves,
		CanRedo:   view.RedoCount > 0,
		Pieces:    s.PieceCount(),
		Players:   core.PlayersResponse{White: view.White, Black: view.Black},
		UpdatedAt: view.Current.PlayedAt.UTC(),
	}
	if jump := s.JumpFrom(); jump >= 0 {
		resp.JumpFrom = &jump
	}
	if mv := view.Current.PreviousMove; mv != nil {
		resp.LastMove = &core.MoveInfo{
			Move:        mv.String(),
			PlayerColor: view.Current.Mover.String(),
			Score:       view.Current.Score,
			Depth:       view.Current.Depth,
			Nodes:       view.Current.Nodes,
		}
	}
	return resp
}

func (p *Processor) markPending(gameID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending[gameID] {
		return false
	}
	p.pending[gameID] = true
	return true
}

func (p *Processor) clearPending(gameID string) {
	p.mu.Lock()
	delete(p.pending, gameID)
	p.mu.Unlock()
}

func (p *Processor) isPending(gameID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending[gameID]
}

// errorCodes maps domain errors to API error codes; the first match wins
var errorCodes = []struct {
	err  error
	code string
}{
	{service.ErrGameNotFound, core.ErrGameNotFound},
	{service.ErrTooManyGames, core.ErrResourceLimit},
	{state.ErrIllegalMove, core.ErrInvalidMove},
	{state.ErrInvalidState, core.ErrInvalidState},
	{game.ErrPaused, core.ErrGamePaused},
	{game.ErrGameOver, core.ErrGameOver},
	{game.ErrNotHumanTurn, core.ErrNotHumanTurn},
	{game.ErrNotComputerTurn, core.ErrNotComputerTurn},
	{game.ErrNothingToUndo, core.ErrNothingToUndo},
	{game.ErrNothingToRedo, core.ErrNothingToRedo},
	{game.ErrBusy, core.ErrGameBusy},
	{game.ErrStale, core.ErrGameBusy},
	{game.ErrNotStarted, core.ErrInvalidRequest},
}

// ErrorCode returns the API error code for err
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return core.ErrInternalError
}

func statusError(s core.Status) error {
	switch s {
	case core.StatusPaused:
		return game.ErrPaused
	case core.StatusOver:
		return game.ErrGameOver
	default:
		return game.ErrNotStarted
	}
}

func (p *Processor) fromError(message string, err error) ProcessorResponse {
	return p.errorResponse(message, ErrorCode(err))
}

func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error: message,
			Code:  code,
		},
	}
}

// Close stops the engine workers
func (p *Processor) Close() error {
	return p.queue.Shutdown(5 * time.Second)
}

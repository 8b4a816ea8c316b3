package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"checkers/internal/board"
	"checkers/internal/core"
	"checkers/internal/engine"
	"checkers/internal/state"
)

var (
	ErrNotStarted      = errors.New("game not started")
	ErrPaused          = errors.New("game is paused")
	ErrGameOver        = errors.New("game is over")
	ErrNotHumanTurn    = errors.New("not a human player's turn")
	ErrNotComputerTurn = errors.New("not a computer player's turn")
	ErrNothingToUndo   = errors.New("nothing to undo")
	ErrNothingToRedo   = errors.New("nothing to redo")
	ErrBusy            = errors.New("computer move in progress")
	ErrStale           = errors.New("game changed during computation")
)

// Event is delivered to the change hook after every transition
type Event struct {
	Status    core.Status
	Snapshot  Snapshot
	MoveCount int
	Version   uint64
}

// Manager drives a game through Ready, Player1ToMove/Player2ToMove, Paused and Over.
// All methods are safe for concurrent use. Computer moves are searched outside the lock
// on an immutable state and committed only if nothing changed meanwhile.
type Manager struct {
	mu       sync.Mutex
	initial  state.State
	history  history
	players  map[core.Color]*core.Player
	engines  map[core.Color]engine.Player
	status   core.Status
	version  uint64
	thinking bool
	onChange func(Event)
	wake     chan struct{}
}

// New creates a game in the Ready status. A nil player is human.
func New(initial state.State, white, black *core.Player) *Manager {
	m := &Manager{
		initial: initial,
		history: newHistory(initial),
		players: map[core.Color]*core.Player{},
		engines: map[core.Color]engine.Player{},
		status:  core.StatusReady,
		wake:    make(chan struct{}, 1),
	}
	m.setPlayer(core.ColorWhite, white)
	m.setPlayer(core.ColorBlack, black)
	return m
}

// OnChange registers the hook called after each transition, outside the manager lock
func (m *Manager) OnChange(fn func(Event)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// UseEngine overrides the strategy built from a player's configuration
func (m *Manager) UseEngine(c core.Color, p engine.Player) {
	m.mu.Lock()
	m.engines[c] = p
	m.version++
	m.mu.Unlock()
	m.signal()
}

func (m *Manager) Start() error {
	return m.transition(func() error {
		switch m.status {
		case core.StatusReady:
			m.status = core.StatusToMove(m.current().State.Turn())
			m.settle()
			return nil
		case core.StatusOver:
			return ErrGameOver
		default:
			return nil
		}
	})
}

func (m *Manager) Pause() error {
	return m.transition(func() error {
		switch m.status {
		case core.StatusReady:
			return ErrNotStarted
		case core.StatusOver:
			return ErrGameOver
		default:
			m.status = core.StatusPaused
			return nil
		}
	})
}

func (m *Manager) Resume() error {
	return m.transition(func() error {
		switch m.status {
		case core.StatusReady:
			return ErrNotStarted
		case core.StatusOver:
			return ErrGameOver
		default:
			m.status = core.StatusToMove(m.current().State.Turn())
			m.settle()
			return nil
		}
	})
}

// Reset restores the initial position, clears history and returns to Ready
func (m *Manager) Reset() error {
	return m.transition(func() error {
		m.history = newHistory(m.initial)
		m.status = core.StatusReady
		m.version++
		return nil
	})
}

// Undo steps back count moves. Undoing a finished game leaves it paused.
func (m *Manager) Undo(count int) error {
	return m.transition(func() error {
		if m.thinking {
			return ErrBusy
		}
		if !m.history.undo(count) {
			if count < 1 {
				return fmt.Errorf("invalid undo count: %d", count)
			}
			return fmt.Errorf("%w: cannot undo %d moves, only %d available", ErrNothingToUndo, count, m.history.cursor)
		}
		m.version++
		switch m.status {
		case core.StatusOver:
			m.status = core.StatusPaused
		case core.StatusPlayer1ToMove, core.StatusPlayer2ToMove:
			m.status = core.StatusToMove(m.current().State.Turn())
		}
		return nil
	})
}

// Redo replays the next undone move. Redoing into a finished position ends the game.
func (m *Manager) Redo() error {
	return m.transition(func() error {
		if m.thinking {
			return ErrBusy
		}
		if !m.history.redo() {
			return ErrNothingToRedo
		}
		m.version++
		if m.status == core.StatusPlayer1ToMove || m.status == core.StatusPlayer2ToMove {
			m.status = core.StatusToMove(m.current().State.Turn())
		}
		m.settle()
		return nil
	})
}

// SetPlayer replaces the player of a side; a computation in flight for the old player is discarded
func (m *Manager) SetPlayer(c core.Color, p *core.Player) {
	m.mu.Lock()
	m.setPlayer(c, p)
	m.version++
	ev := m.event()
	fn := m.onChange
	m.mu.Unlock()

	m.signal()
	if fn != nil {
		fn(ev)
	}
}

func (m *Manager) setPlayer(c core.Color, p *core.Player) {
	if p == nil {
		p = core.NewPlayer(core.PlayerConfig{Type: core.PlayerHuman}, c)
	}
	p.Color = c
	m.players[c] = p
	m.engines[c] = engine.New(p)
}

// SubmitMove applies a move for a human player
func (m *Manager) SubmitMove(mv board.Move) error {
	return m.transition(func() error {
		if err := m.checkRunning(); err != nil {
			return err
		}
		turn := m.current().State.Turn()
		if !m.engines[turn].IsHuman() {
			return ErrNotHumanTurn
		}
		return m.commit(mv, nil)
	})
}

// Advance computes and applies the move of the computer player to move. The search runs
// without holding the lock; if the game changed meanwhile the result is dropped with ErrStale.
func (m *Manager) Advance(ctx context.Context) (*engine.SearchResult, error) {
	m.mu.Lock()
	if err := m.checkRunning(); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	if m.thinking {
		m.mu.Unlock()
		return nil, ErrBusy
	}
	s := m.current().State
	player := m.engines[s.Turn()]
	if player.IsHuman() {
		m.mu.Unlock()
		return nil, ErrNotComputerTurn
	}
	m.thinking = true
	version := m.version
	m.mu.Unlock()

	res, searchErr := player.ChooseMove(ctx, s)

	var result *engine.SearchResult
	err := m.transition(func() error {
		m.thinking = false
		if searchErr != nil {
			return searchErr
		}
		if m.version != version {
			return ErrStale
		}
		result = res
		return m.commit(res.BestMove, res)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Run plays computer turns in the background until ctx is done. A paused game is never
// advanced; a pause requested during a search takes effect before the next one.
func (m *Manager) Run(ctx context.Context) error {
	for {
		if m.computerToMove() {
			_, err := m.Advance(ctx)
			switch {
			case err == nil:
			case ctx.Err() != nil:
				return ctx.Err()
			case errors.Is(err, ErrStale), errors.Is(err, ErrBusy), errors.Is(err, ErrNotComputerTurn),
				errors.Is(err, ErrPaused), errors.Is(err, ErrGameOver), errors.Is(err, ErrNotStarted):
			default:
				return err
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.wake:
		}
	}
}

func (m *Manager) computerToMove() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.thinking || m.checkRunning() != nil {
		return false
	}
	return !m.engines[m.current().State.Turn()].IsHuman()
}

// commit applies a move under the lock
func (m *Manager) commit(mv board.Move, res *engine.SearchResult) error {
	cur := m.current().State
	next, err := cur.Apply(mv)
	if err != nil {
		return err
	}

	snap := Snapshot{
		State:        next,
		PreviousMove: &mv,
		Mover:        cur.Turn(),
		PlayedAt:     time.Now(),
	}
	if res != nil {
		snap.Score = res.Score
		snap.Depth = res.Depth
		snap.Nodes = res.Nodes
	}
	m.history.push(snap)
	m.version++

	if m.status != core.StatusPaused {
		m.status = core.StatusToMove(next.Turn())
	}
	m.settle()
	return nil
}

func (m *Manager) checkRunning() error {
	switch m.status {
	case core.StatusReady:
		return ErrNotStarted
	case core.StatusPaused:
		return ErrPaused
	case core.StatusOver:
		return ErrGameOver
	default:
		return nil
	}
}

// settle moves to Over when the current position is terminal
func (m *Manager) settle() {
	if m.status != core.StatusReady && m.current().State.IsOver() {
		m.status = core.StatusOver
	}
}

// transition runs fn under the lock and notifies listeners when it succeeds
func (m *Manager) transition(fn func() error) error {
	m.mu.Lock()
	if err := fn(); err != nil {
		m.mu.Unlock()
		return err
	}
	ev := m.event()
	hook := m.onChange
	m.mu.Unlock()

	m.signal()
	if hook != nil {
		hook(ev)
	}
	return nil
}

func (m *Manager) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *Manager) event() Event {
	return Event{Status: m.status, Snapshot: m.current(), MoveCount: m.history.cursor, Version: m.version}
}

func (m *Manager) current() Snapshot {
	return m.history.current()
}

// View is a consistent copy of the observable game state
type View struct {
	Status    core.Status
	Current   Snapshot
	Moves     []string
	RedoCount int
	Thinking  bool
	White     *core.Player
	Black     *core.Player
	Version   uint64
}

func (m *Manager) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	moves := []string{}
	for _, s := range m.history.played() {
		moves = append(moves, s.PreviousMove.String())
	}
	return View{
		Status:    m.status,
		Current:   m.current(),
		Moves:     moves,
		RedoCount: m.history.canRedo(),
		Thinking:  m.thinking,
		White:     m.players[core.ColorWhite],
		Black:     m.players[core.ColorBlack],
		Version:   m.version,
	}
}

// Accessors

func (m *Manager) State() state.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current().State
}

func (m *Manager) CurrentSnapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current()
}

func (m *Manager) InitialState() state.State {
	return m.initial
}

func (m *Manager) Status() core.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Manager) Result() core.Result {
	return m.State().Result()
}

func (m *Manager) Version() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

// Thinking reports whether a computer move is being searched
func (m *Manager) Thinking() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.thinking
}

func (m *Manager) Player(c core.Color) *core.Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.players[c]
}

func (m *Manager) NextPlayer() *core.Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.players[m.current().State.Turn()]
}

// History returns the played snapshots up to the current position
func (m *Manager) History() []Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.played()
}

// Moves returns the played moves in notation
func (m *Manager) Moves() []string {
	moves := []string{}
	for _, s := range m.History() {
		if s.PreviousMove != nil {
			moves = append(moves, s.PreviousMove.String())
		}
	}
	return moves
}

func (m *Manager) MoveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.cursor
}

// RedoCount returns the number of moves available to Redo
func (m *Manager) RedoCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.canRedo()
}

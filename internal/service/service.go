package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"

	"checkers/internal/core"
	"checkers/internal/game"
	"checkers/internal/state"
	"checkers/internal/storage"
)

const (
	MaxComputerGames   = 10
	MaxUsers           = 100
	PermanentSlots     = 10
	TempUserTTL        = 24 * time.Hour
	SessionTTL         = 7 * 24 * time.Hour
	CleanupJobInterval = 1 * time.Hour
)

var (
	ErrGameNotFound    = errors.New("game not found")
	ErrTooManyGames    = errors.New("computer game limit reached")
	ErrStorageDisabled = errors.New("storage disabled")
)

// Config holds the service settings; zero values select the defaults above
type Config struct {
	JWTSecret        []byte
	MaxComputerGames int
	WaitTimeout      time.Duration
}

// Service coordinates games, long-poll waiters, user management and storage
type Service struct {
	games            map[string]*entry
	mu               sync.RWMutex
	store            *storage.Store // nil if persistence disabled
	jwtSecret        []byte
	waiter           *WaitRegistry
	computerGames    atomic.Int32
	maxComputerGames int32
}

type entry struct {
	mgr      *game.Manager
	computer bool

	persistMu sync.Mutex
	persisted []string // "move state" of each recorded move, in order
}

// New creates a service; store may be nil
func New(store *storage.Store, cfg Config) *Service {
	limit := cfg.MaxComputerGames
	if limit <= 0 {
		limit = MaxComputerGames
	}
	return &Service{
		games:            make(map[string]*entry),
		store:            store,
		jwtSecret:        cfg.JWTSecret,
		waiter:           NewWaitRegistry(cfg.WaitTimeout),
		maxComputerGames: int32(limit),
	}
}

// CreateGame registers and starts a new game. Human players take userID as their id when given.
func (s *Service) CreateGame(initial state.State, white, black core.PlayerConfig, userID string) (string, *game.Manager, error) {
	wp := core.NewPlayer(white, core.ColorWhite)
	bp := core.NewPlayer(black, core.ColorBlack)
	if userID != "" {
		for _, p := range []*core.Player{wp, bp} {
			if p.IsHuman() {
				p.ID = userID
			}
		}
	}
	computer := !wp.IsHuman() || !bp.IsHuman()

	s.mu.Lock()
	if computer && s.computerGames.Load() >= s.maxComputerGames {
		s.mu.Unlock()
		return "", nil, ErrTooManyGames
	}
	id := s.generateGameID()
	e := &entry{mgr: game.New(initial, wp, bp), computer: computer}
	s.games[id] = e
	if computer {
		s.computerGames.Add(1)
	}
	s.mu.Unlock()

	if s.store != nil {
		rules := initial.Rules()
		if err := s.store.RecordNewGame(storage.GameRecord{
			GameID:        id,
			InitialState:  initial.String(),
			Variant:       rules.Variant.String(),
			DrawPlies:     rules.DrawPlies,
			WhitePlayerID: wp.ID,
			WhiteType:     int(wp.Type),
			WhiteDepth:    wp.Depth,
			BlackPlayerID: bp.ID,
			BlackType:     int(bp.Type),
			BlackDepth:    bp.Depth,
			StartTimeUTC:  time.Now().UTC(),
		}); err != nil {
			log.Warn().Err(err).Str("game", id).Msg("game not persisted")
		}
	}

	e.mgr.OnChange(func(ev game.Event) { s.onChange(id, e, ev) })
	if err := e.mgr.Start(); err != nil {
		return "", nil, fmt.Errorf("failed to start game: %w", err)
	}

	log.Info().Str("game", id).Str("white", wp.Type.String()).Str("black", bp.Type.String()).Msg("game created")
	return id, e.mgr, nil
}

// generateGameID must be called with s.mu held
func (s *Service) generateGameID() string {
	for {
		id := uuid.New().String()
		if _, exists := s.games[id]; !exists {
			return id
		}
	}
}

// ConfigurePlayers replaces both players of a game. It fails while a computer move is searched.
func (s *Service) ConfigurePlayers(gameID string, white, black core.PlayerConfig) error {
	e, err := s.lookup(gameID)
	if err != nil {
		return err
	}
	if e.mgr.Thinking() {
		return game.ErrBusy
	}

	wp := core.NewPlayer(white, core.ColorWhite)
	bp := core.NewPlayer(black, core.ColorBlack)
	computer := !wp.IsHuman() || !bp.IsHuman()

	s.mu.Lock()
	if computer && !e.computer {
		if s.computerGames.Load() >= s.maxComputerGames {
			s.mu.Unlock()
			return ErrTooManyGames
		}
		s.computerGames.Add(1)
	} else if !computer && e.computer {
		s.computerGames.Add(-1)
	}
	e.computer = computer
	s.mu.Unlock()

	e.mgr.SetPlayer(core.ColorWhite, wp)
	e.mgr.SetPlayer(core.ColorBlack, bp)

	if s.store != nil {
		if err := s.store.UpdatePlayers(storage.GameRecord{
			GameID:        gameID,
			WhitePlayerID: wp.ID,
			WhiteType:     int(wp.Type),
			WhiteDepth:    wp.Depth,
			BlackPlayerID: bp.ID,
			BlackType:     int(bp.Type),
			BlackDepth:    bp.Depth,
		}); err != nil {
			log.Warn().Err(err).Str("game", gameID).Msg("player change not persisted")
		}
	}
	return nil
}

// GetGame retrieves a game by ID
func (s *Service) GetGame(gameID string) (*game.Manager, error) {
	e, err := s.lookup(gameID)
	if err != nil {
		return nil, err
	}
	return e.mgr, nil
}

func (s *Service) lookup(gameID string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return e, nil
}

// DeleteGame removes a game from memory; its recorded history stays in storage
func (s *Service) DeleteGame(gameID string) error {
	e, err := s.lookup(gameID)
	if err != nil {
		return err
	}
	if e.mgr.Thinking() {
		return game.ErrBusy
	}

	s.mu.Lock()
	if _, ok := s.games[gameID]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	delete(s.games, gameID)
	if e.computer {
		s.computerGames.Add(-1)
	}
	s.mu.Unlock()

	s.waiter.RemoveGame(gameID)
	log.Info().Str("game", gameID).Msg("game deleted")
	return nil
}

// GameCount returns the number of games in memory
func (s *Service) GameCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// ComputerGameCount returns the number of games with at least one computer player
func (s *Service) ComputerGameCount() int {
	return int(s.computerGames.Load())
}

// WaitForChange long-polls until the game changes. It returns immediately when the game's
// move count already differs from moveCount.
func (s *Service) WaitForChange(ctx context.Context, gameID string, moveCount int) error {
	if _, err := s.lookup(gameID); err != nil {
		return err
	}
	s.waiter.Wait(ctx, gameID, moveCount, func() (int, bool) {
		e, err := s.lookup(gameID)
		if err != nil {
			return 0, false
		}
		return e.mgr.MoveCount(), true
	})
	return nil
}

// onChange persists the history delta and wakes long-polling clients
func (s *Service) onChange(gameID string, e *entry, ev game.Event) {
	log.Debug().Str("game", gameID).Str("status", ev.Status.String()).Int("moves", ev.MoveCount).Msg("game changed")
	s.persist(gameID, e)
	s.waiter.NotifyGame(gameID)
}

// persist brings the stored moves in line with the manager's history. Hooks can run out of
// order, so the delta is computed from the current history rather than from the event.
func (s *Service) persist(gameID string, e *entry) {
	if s.store == nil {
		return
	}

	e.persistMu.Lock()
	defer e.persistMu.Unlock()

	history := e.mgr.History()
	keys := make([]string, len(history))
	for i, snap := range history {
		keys[i] = snap.PreviousMove.String() + " " + snap.State.String()
	}

	common := 0
	for common < len(e.persisted) && common < len(keys) && e.persisted[common] == keys[common] {
		common++
	}

	if common < len(e.persisted) {
		if err := s.store.DeleteUndoneMoves(gameID, common); err != nil {
			log.Warn().Err(err).Str("game", gameID).Msg("undo not persisted")
			return
		}
		e.persisted = e.persisted[:common]
	}

	for i := common; i < len(history); i++ {
		snap := history[i]
		if err := s.store.RecordMove(storage.MoveRecord{
			GameID:         gameID,
			MoveNumber:     i + 1,
			Move:           snap.PreviousMove.String(),
			StateAfterMove: snap.State.String(),
			PlayerColor:    snap.Mover.String(),
			MoveTimeUTC:    snap.PlayedAt.UTC(),
		}); err != nil {
			log.Warn().Err(err).Str("game", gameID).Int("move", i+1).Msg("move not persisted")
			return
		}
		e.persisted = append(e.persisted, keys[i])
	}
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// Shutdown releases waiters, drops all games and closes storage after flushing queued writes
func (s *Service) Shutdown(timeout time.Duration) error {
	var result *multierror.Error

	s.waiter.Shutdown()

	s.mu.Lock()
	s.games = make(map[string]*entry)
	s.computerGames.Store(0)
	s.mu.Unlock()

	if s.store != nil {
		if s.store.IsHealthy() {
			if err := s.store.Flush(timeout); err != nil {
				result = multierror.Append(result, fmt.Errorf("storage flush: %w", err))
			}
		}
		if err := s.store.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("storage: %w", err))
		}
	}

	return result.ErrorOrNil()
}

// RunCleanupJob runs periodic cleanup of expired users and sessions until ctx is done
func (s *Service) RunCleanupJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupExpired()
		}
	}
}

func (s *Service) cleanupExpired() {
	if s.store == nil {
		return
	}

	if deleted, err := s.store.DeleteExpiredTempUsers(); err != nil {
		log.Error().Err(err).Msg("cleanup: failed to delete expired users")
	} else if deleted > 0 {
		log.Info().Int64("count", deleted).Msg("cleanup: deleted expired temp users")
	}

	if deleted, err := s.store.DeleteExpiredSessions(); err != nil {
		log.Error().Err(err).Msg("cleanup: failed to delete expired sessions")
	} else if deleted > 0 {
		log.Info().Int64("count", deleted).Msg("cleanup: deleted expired sessions")
	}
}

package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"checkers/internal/engine"
	"checkers/internal/game"
)

const (
	DefaultWorkers       = 2
	DefaultSearchTimeout = 30 * time.Second
	queueSize            = 100
)

var (
	ErrQueueFull     = errors.New("engine queue is full")
	ErrQueueShutdown = errors.New("engine queue is shutting down")
)

// EngineTask asks a worker to play the computer move of a game
type EngineTask struct {
	GameID   string
	Game     *game.Manager
	Response chan<- EngineResult
}

// EngineResult contains the outcome of a computer move
type EngineResult struct {
	GameID string
	Search *engine.SearchResult
	Error  error
}

// EngineQueue runs computer moves on a fixed pool of workers
type EngineQueue struct {
	tasks         chan EngineTask
	workers       int
	searchTimeout time.Duration
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
	closeOnce     sync.Once
}

// NewEngineQueue creates a queue with the given worker count and per-search timeout
func NewEngineQueue(workerCount int, searchTimeout time.Duration) *EngineQueue {
	if workerCount < 1 {
		workerCount = DefaultWorkers
	}
	if searchTimeout <= 0 {
		searchTimeout = DefaultSearchTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &EngineQueue{
		tasks:         make(chan EngineTask, queueSize),
		workers:       workerCount,
		searchTimeout: searchTimeout,
		ctx:           ctx,
		cancel:        cancel,
	}

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	return q
}

func (q *EngineQueue) worker(id int) {
	defer q.wg.Done()

	for {
		select {
		case task := <-q.tasks:
			result := q.processTask(task)
			log.Debug().Int("worker", id).Str("game", task.GameID).Err(result.Error).Msg("computer move done")

			// Response is buffered by SubmitAsync; drop if nobody listens
			select {
			case task.Response <- result:
			default:
			}

		case <-q.ctx.Done():
			return
		}
	}
}

func (q *EngineQueue) processTask(task EngineTask) EngineResult {
	ctx, cancel := context.WithTimeout(q.ctx, q.searchTimeout)
	defer cancel()

	search, err := task.Game.Advance(ctx)
	if err != nil {
		return EngineResult{GameID: task.GameID, Error: fmt.Errorf("computer move failed: %w", err)}
	}
	return EngineResult{GameID: task.GameID, Search: search}
}

// Submit adds a task to the queue without blocking
func (q *EngineQueue) Submit(task EngineTask) error {
	if q.ctx.Err() != nil {
		return ErrQueueShutdown
	}
	select {
	case q.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// SubmitAsync queues a computer move and calls callback with its outcome
func (q *EngineQueue) SubmitAsync(gameID string, g *game.Manager, callback func(EngineResult)) error {
	respChan := make(chan EngineResult, 1)
	if err := q.Submit(EngineTask{GameID: gameID, Game: g, Response: respChan}); err != nil {
		return err
	}

	go func() {
		select {
		case result := <-respChan:
			callback(result)
		case <-q.ctx.Done():
			callback(EngineResult{GameID: gameID, Error: ErrQueueShutdown})
		}
	}()
	return nil
}

// Shutdown cancels running searches and waits for the workers to exit
func (q *EngineQueue) Shutdown(timeout time.Duration) error {
	q.closeOnce.Do(q.cancel)

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("engine queue shutdown timeout exceeded")
	}
}

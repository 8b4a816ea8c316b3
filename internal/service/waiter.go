package service

import (
	"context"
	"sync"
	"time"
)

const (
	// WaitTimeout is the maximum time a client can wait for notifications
	WaitTimeout = 25 * time.Second
)

// WaitRegistry manages long-polling clients waiting for game state changes
type WaitRegistry struct {
	mu       sync.Mutex
	waiters  map[string][]*waitRequest // gameID → waiting clients
	shutdown chan struct{}
	once     sync.Once
	timeout  time.Duration
}

type waitRequest struct {
	notify chan struct{}
}

func NewWaitRegistry(timeout time.Duration) *WaitRegistry {
	if timeout <= 0 {
		timeout = WaitTimeout
	}
	return &WaitRegistry{
		waiters:  make(map[string][]*waitRequest),
		shutdown: make(chan struct{}),
		timeout:  timeout,
	}
}

// Wait blocks until the game changes or is removed, the timeout elapses, ctx is done or the
// registry shuts down. It returns at once when the move count already differs from moveCount;
// current is consulted after registration so a move racing the call is not missed.
func (w *WaitRegistry) Wait(ctx context.Context, gameID string, moveCount int, current func() (int, bool)) {
	req := &waitRequest{notify: make(chan struct{}, 1)}

	w.mu.Lock()
	w.waiters[gameID] = append(w.waiters[gameID], req)
	w.mu.Unlock()
	defer w.remove(gameID, req)

	if n, ok := current(); !ok || n != moveCount {
		return
	}

	timer := time.NewTimer(w.timeout)
	defer timer.Stop()

	select {
	case <-req.notify:
	case <-timer.C:
	case <-ctx.Done():
	case <-w.shutdown:
	}
}

// NotifyGame wakes every client of a game after a transition: a move, undo, redo, reset,
// pause, resume or player change
func (w *WaitRegistry) NotifyGame(gameID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, req := range w.waiters[gameID] {
		wake(req)
	}
}

// RemoveGame wakes every client of a game (called before game deletion)
func (w *WaitRegistry) RemoveGame(gameID string) {
	w.mu.Lock()
	waitList := w.waiters[gameID]
	delete(w.waiters, gameID)
	w.mu.Unlock()

	for _, req := range waitList {
		wake(req)
	}
}

// Waiting returns the number of clients registered for a game
func (w *WaitRegistry) Waiting(gameID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.waiters[gameID])
}

// Shutdown releases all waiting clients
func (w *WaitRegistry) Shutdown() {
	w.once.Do(func() { close(w.shutdown) })
}

func wake(req *waitRequest) {
	select {
	case req.notify <- struct{}{}:
	default:
	}
}

func (w *WaitRegistry) remove(gameID string, req *waitRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()

	waitList := w.waiters[gameID]
	for i, waiter := range waitList {
		if waiter == req {
			w.waiters[gameID] = append(waitList[:i], waitList[i+1:]...)
			break
		}
	}
	if len(w.waiters[gameID]) == 0 {
		delete(w.waiters, gameID)
	}
}

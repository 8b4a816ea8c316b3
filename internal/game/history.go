package game

import (
	"time"

	"checkers/internal/board"
	"checkers/internal/core"
	"checkers/internal/state"
)

type Snapshot struct {
	State        state.State
	PreviousMove *board.Move // Move that created this position, nil for the initial one
	Mover        core.Color  // Side that played PreviousMove
	Score        int
	Depth        int
	Nodes        int
	PlayedAt     time.Time
}

// history is an append-only list of snapshots with a cursor. Undo moves the cursor back,
// redo forward, and pushing after an undo drops the redo tail.
type history struct {
	snapshots []Snapshot
	cursor    int
}

func newHistory(initial state.State) history {
	return history{snapshots: []Snapshot{{State: initial, PlayedAt: time.Now()}}}
}

func (h *history) current() Snapshot {
	return h.snapshots[h.cursor]
}

func (h *history) push(s Snapshot) {
	h.snapshots = append(h.snapshots[:h.cursor+1], s)
	h.cursor++
}

func (h *history) undo(count int) bool {
	if count < 1 || h.cursor < count {
		return false
	}
	h.cursor -= count
	return true
}

func (h *history) redo() bool {
	if h.cursor >= len(h.snapshots)-1 {
		return false
	}
	h.cursor++
	return true
}

func (h *history) canRedo() int {
	return len(h.snapshots) - 1 - h.cursor
}

// played returns the snapshots up to the cursor, excluding the initial one
func (h *history) played() []Snapshot {
	out := make([]Snapshot, h.cursor)
	copy(out, h.snapshots[1:h.cursor+1])
	return out
}

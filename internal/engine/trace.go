package engine

import (
	"fmt"
	"strconv"

	"github.com/awalterschulze/gographviz"

	"checkers/internal/board"
	"checkers/internal/state"
)

const graphName = "search"

// Trace records a search tree as a Graphviz digraph. Nodes past MaxNodes are dropped.
// A nil *Trace records nothing.
type Trace struct {
	MaxNodes int

	graph *gographviz.Graph
	next  int
}

func NewTrace(maxNodes int) *Trace {
	g := gographviz.NewGraph()
	_ = g.SetName(graphName)
	_ = g.SetDir(true)
	return &Trace{MaxNodes: maxNodes, graph: g}
}

func (t *Trace) root(s state.State) string {
	if t == nil {
		return ""
	}
	id := t.reserve()
	t.add(id, fmt.Sprintf("%s to move", s.Turn().Name()))
	return id
}

// reserve allocates a node id, empty once the node limit is reached
func (t *Trace) reserve() string {
	if t == nil || (t.MaxNodes > 0 && t.next >= t.MaxNodes) {
		return ""
	}
	id := "n" + strconv.Itoa(t.next)
	t.next++
	return id
}

// node labels a reserved node with the move leading to it and its score
func (t *Trace) node(parent, id string, m board.Move, score int) {
	if t == nil || id == "" {
		return
	}
	t.add(id, fmt.Sprintf("%s (%d)", m, score))
	if parent != "" {
		_ = t.graph.AddEdge(parent, id, true, nil)
	}
}

func (t *Trace) add(id, label string) {
	_ = t.graph.AddNode(graphName, id, map[string]string{
		"label": strconv.Quote(label),
	})
}

// Len returns the number of recorded nodes
func (t *Trace) Len() int {
	if t == nil {
		return 0
	}
	return len(t.graph.Nodes.Nodes)
}

// String renders the tree in DOT format
func (t *Trace) String() string {
	if t == nil {
		return ""
	}
	return t.graph.String()
}

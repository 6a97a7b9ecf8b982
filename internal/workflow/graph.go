package workflow

import (
	"context"
	"errors"
	"fmt"
)

// StageFunc executes one node: read the accumulated state, call
// collaborators, return a partial update. Stages must not write to st
// directly; multi-call stages that want to stream intermediate files fold
// them in through rc.Apply and leave them out of the returned delta.
type StageFunc func(ctx context.Context, rc *Run, st *State) (*Delta, error)

// BranchFunc picks the next node by inspecting state only. It runs strictly
// after the producing stage's delta has been merged.
type BranchFunc func(st *State) Node

type stageEntry struct {
	phase string
	fn    StageFunc
}

// Graph is a directed graph of stages joined by unconditional edges and
// state-inspecting branches. Every run starts at the entry node and walks
// until NodeEnd.
type Graph struct {
	entry    Node
	stages   map[Node]stageEntry
	edges    map[Node]Node
	branches map[Node]BranchFunc
}

func NewGraph(entry Node) *Graph {
	return &Graph{
		entry:    entry,
		stages:   make(map[Node]stageEntry),
		edges:    make(map[Node]Node),
		branches: make(map[Node]BranchFunc),
	}
}

// Stage registers fn for node n. The phase label is applied (and notified)
// when the node starts executing.
func (g *Graph) Stage(n Node, phase string, fn StageFunc) *Graph {
	g.stages[n] = stageEntry{phase: phase, fn: fn}
	return g
}

// Edge wires an unconditional transition.
func (g *Graph) Edge(from, to Node) *Graph {
	g.edges[from] = to
	return g
}

// Branch wires a conditional transition; it wins over an Edge on the same
// node.
func (g *Graph) Branch(from Node, fn BranchFunc) *Graph {
	g.branches[from] = fn
	return g
}

// maxSteps guards against a miswired graph. The repair cap, not this, is
// the intended loop bound.
const maxSteps = 64

// Run walks the graph to NodeEnd, merging each stage's delta into st before
// evaluating that node's outgoing edge. A stage failure aborts the walk;
// state accumulated up to that point has already been surfaced through the
// run's callbacks.
func (g *Graph) Run(ctx context.Context, rc *Run, st *State) error {
	node := g.entry
	for steps := 0; node != NodeEnd; steps++ {
		if steps >= maxSteps {
			return &Error{Node: node, Err: fmt.Errorf("graph exceeded %d steps", maxSteps)}
		}
		if err := ctx.Err(); err != nil {
			return &Error{Node: node, Err: err}
		}
		entry, ok := g.stages[node]
		if !ok {
			return &Error{Node: node, Err: errors.New("no stage registered")}
		}
		rc.SetPhase(st, entry.phase)
		rc.Log.Debug().Stringer("node", node).Msg("stage start")
		delta, err := entry.fn(ctx, rc, st)
		if err != nil {
			return &Error{Node: node, Err: err}
		}
		rc.Apply(st, delta)
		next, err := g.next(node, st)
		if err != nil {
			return err
		}
		node = next
	}
	return nil
}

func (g *Graph) next(node Node, st *State) (Node, error) {
	if branch, ok := g.branches[node]; ok {
		return branch(st), nil
	}
	if to, ok := g.edges[node]; ok {
		return to, nil
	}
	return NodeEnd, &Error{Node: node, Err: errors.New("no outgoing edge")}
}

// Error reports the stage that irrecoverably failed a run.
type Error struct {
	Node Node
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("workflow stage %s: %v", e.Node, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

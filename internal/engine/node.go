package engine

import (
	"fmt"
	"slices"
)

// Node is a vertex of the audio graph.
type Node interface {
	// Connect routes this node's output into dst. Connecting the same pair twice is a no-op.
	Connect(dst Node) error

	// Disconnect removes every outgoing connection. It returns ErrNotConnected
	// when the node has none.
	Disconnect() error

	// Kind names the node type (see the Kind constants).
	Kind() string

	// NumInputs returns the number of nodes feeding this node.
	NumInputs() int

	// NumOutputs returns the number of nodes this node feeds.
	NumOutputs() int

	// ConnectedTo reports whether this node feeds dst directly.
	ConnectedTo(dst Node) bool

	core() *node
}

// kernel renders one quantum. in holds the summed inputs; out must be fully written.
type kernel interface {
	process(in, out []float64, frame int64)
}

// node is the graph bookkeeping shared by every node type.
type node struct {
	ctx     *Context
	kind    string
	k       kernel
	inputs  []*node
	outputs []*node

	acceptsInput bool
	hasOutput    bool

	// wired is set on first connection; auto-pull nodes are dropped once wired and isolated.
	wired bool

	mix   []float64
	out   []float64
	stamp int64
}

func newNode(c *Context, kind string, k kernel, acceptsInput, hasOutput bool) *node {
	return &node{
		ctx:          c,
		kind:         kind,
		k:            k,
		acceptsInput: acceptsInput,
		hasOutput:    hasOutput,
		mix:          make([]float64, RenderQuantum),
		out:          make([]float64, RenderQuantum),
		stamp:        -1,
	}
}

func (n *node) core() *node { return n }

func (n *node) Kind() string { return n.kind }

func (n *node) NumInputs() int {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()
	return len(n.inputs)
}

func (n *node) NumOutputs() int {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()
	return len(n.outputs)
}

func (n *node) ConnectedTo(dst Node) bool {
	if dst == nil {
		return false
	}
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()
	return slices.Contains(n.outputs, dst.core())
}

func (n *node) Connect(dst Node) error {
	if dst == nil {
		return fmt.Errorf("%w: nil destination", ErrInvalidValue)
	}
	d := dst.core()
	if d.ctx != n.ctx {
		return ErrForeignNode
	}
	if d == n {
		return fmt.Errorf("%w: %s connected to itself", ErrInvalidValue, n.kind)
	}
	if !n.hasOutput {
		return fmt.Errorf("%w: %s has no output", ErrInvalidState, n.kind)
	}
	if !d.acceptsInput {
		return fmt.Errorf("%w: %s has no input", ErrInvalidState, d.kind)
	}

	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()

	if n.ctx.state == StateClosed {
		return ErrClosed
	}
	if slices.Contains(n.outputs, d) {
		return nil
	}
	n.outputs = append(n.outputs, d)
	d.inputs = append(d.inputs, n)
	n.wired = true
	d.wired = true
	return nil
}

func (n *node) Disconnect() error {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()

	if len(n.outputs) == 0 {
		return fmt.Errorf("%w: %s", ErrNotConnected, n.kind)
	}
	for _, d := range n.outputs {
		d.inputs = slices.DeleteFunc(d.inputs, func(x *node) bool { return x == n })
	}
	n.outputs = nil
	return nil
}

// pull renders the node for the quantum starting at frame, memoized so that
// fan-out renders each node once per quantum. Caller holds ctx.mu.
func (n *node) pull(frame int64) []float64 {
	if n.stamp == frame {
		return n.out
	}
	// Stamp first: a cycle reads the previous quantum instead of recursing.
	n.stamp = frame

	clear(n.mix)
	for _, in := range n.inputs {
		src := in.pull(frame)
		for i, v := range src {
			n.mix[i] += v
		}
	}
	n.k.process(n.mix, n.out, frame)
	return n.out
}

var (
	_ Node = (*Oscillator)(nil)
	_ Node = (*Delay)(nil)
	_ Node = (*Gain)(nil)
	_ Node = (*Analyser)(nil)
	_ Node = (*Destination)(nil)
)

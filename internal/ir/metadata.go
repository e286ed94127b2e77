package ir

import (
	"fmt"

	"fortio.org/safecast"
)

// MDID addresses a node in an MDArena. Nodes refer to each other by MDID
// only, so cycles need no owning pointers.
type MDID uint32

// NoMD is the zero MDID.
const NoMD MDID = 0

// MDOperandKind tags an MDOperand.
type MDOperandKind uint8

const (
	MDOpNull MDOperandKind = iota
	MDOpNode
	MDOpString
	MDOpValue
)

// MDOperand is one element of a node: null, another node, a string or a
// typed value.
type MDOperand struct {
	Kind  MDOperandKind
	Node  MDID
	Str   string
	Value Value
}

// MDNode is !{...}.
type MDNode struct {
	ID  MDID
	Ops []MDOperand
	// Temporary is set while the node only exists because of a forward
	// reference; Fill clears it.
	Temporary bool
	// Resolved is set once every node reachable from here is defined.
	// Nodes on a cycle are marked at finalize by ResolveCycles.
	Resolved      bool
	FunctionLocal bool
}

// SetOperand rewrites a value operand; used when a forward value resolves.
func (n *MDNode) SetOperand(i int, v Value) {
	n.Ops[i].Value = v
}

// MDArena owns every metadata node of a module.
type MDArena struct {
	nodes []*MDNode
}

func NewMDArena() *MDArena {
	return &MDArena{nodes: []*MDNode{nil}} // 0 = NoMD
}

func (a *MDArena) alloc(n *MDNode) MDID {
	id, err := safecast.Conv[uint32](len(a.nodes))
	if err != nil {
		panic(fmt.Errorf("metadata arena overflow: %w", err))
	}
	n.ID = MDID(id)
	a.nodes = append(a.nodes, n)
	return n.ID
}

// New allocates a defined node.
func (a *MDArena) New(ops []MDOperand) MDID {
	return a.alloc(&MDNode{Ops: ops})
}

// NewTemporary allocates a node standing in for a forward reference.
func (a *MDArena) NewTemporary() MDID {
	return a.alloc(&MDNode{Temporary: true})
}

// Fill defines a temporary node in place so every existing reference sees
// the real operands. It reports false if the node was already defined.
func (a *MDArena) Fill(id MDID, ops []MDOperand) bool {
	n := a.Node(id)
	if n == nil || !n.Temporary {
		return false
	}
	n.Ops = ops
	n.Temporary = false
	return true
}

// Node returns the node for id, or nil.
func (a *MDArena) Node(id MDID) *MDNode {
	if id == NoMD || int(id) >= len(a.nodes) {
		return nil
	}
	return a.nodes[id]
}

// Len returns the number of allocated nodes.
func (a *MDArena) Len() int {
	return len(a.nodes) - 1
}

// Temporaries lists nodes still waiting for a definition.
func (a *MDArena) Temporaries() []MDID {
	var out []MDID
	for _, n := range a.nodes[1:] {
		if n.Temporary {
			out = append(out, n.ID)
		}
	}
	return out
}

// ResolveCycles marks defined nodes as resolved. A node whose operands are
// all resolved is resolved; whatever is left after the fixpoint, while not
// temporary and not reaching a temporary, sits on a cycle and is marked
// resolved as well. It returns how many nodes were resolved that way.
func (a *MDArena) ResolveCycles() int {
	for changed := true; changed; {
		changed = false
		for _, n := range a.nodes[1:] {
			if n.Resolved || n.Temporary {
				continue
			}
			if a.operandsResolved(n) {
				n.Resolved = true
				changed = true
			}
		}
	}
	cyclic := 0
	for _, n := range a.nodes[1:] {
		if n.Resolved || n.Temporary || a.reachesTemporary(n.ID, map[MDID]bool{}) {
			continue
		}
		n.Resolved = true
		cyclic++
	}
	return cyclic
}

func (a *MDArena) operandsResolved(n *MDNode) bool {
	for _, op := range n.Ops {
		if op.Kind == MDOpNode && !a.Node(op.Node).Resolved {
			return false
		}
	}
	return true
}

func (a *MDArena) reachesTemporary(id MDID, seen map[MDID]bool) bool {
	if seen[id] {
		return false
	}
	seen[id] = true
	n := a.Node(id)
	if n.Temporary {
		return true
	}
	for _, op := range n.Ops {
		if op.Kind == MDOpNode && a.reachesTemporary(op.Node, seen) {
			return true
		}
	}
	return false
}

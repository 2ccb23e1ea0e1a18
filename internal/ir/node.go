package ir

import (
	"fmt"
	"sort"
)

// Node is an operation in a block. Nodes are created unattached by the
// graph and must be inserted into a block before their position is queried.
type Node struct {
	id     NodeID
	graph  *Graph
	kind   Symbol
	schema string
	scope  string
	attrs  map[string]Const

	inputs  []*Value
	outputs []*Value
	blocks  []*Block

	owner      *Block
	prev, next *Node
	destroyed  bool
}

func (n *Node) ID() NodeID        { return n.id }
func (n *Node) Graph() *Graph     { return n.graph }
func (n *Node) Kind() Symbol      { return n.kind }
func (n *Node) Owner() *Block     { return n.owner }
func (n *Node) Next() *Node       { return n.next }
func (n *Node) Prev() *Node       { return n.prev }
func (n *Node) Attached() bool    { return n.owner != nil }
func (n *Node) Destroyed() bool   { return n.destroyed }
func (n *Node) Scope() string     { return n.scope }
func (n *Node) SetScope(s string) { n.scope = s }

// Schema returns the canonical signature of the node's overload, or "" when
// the node was created by kind only.
func (n *Node) Schema() string { return n.schema }

// Inputs returns the node inputs. The slice must not be modified.
func (n *Node) Inputs() []*Value { return n.inputs }

// Outputs returns the node outputs. The slice must not be modified.
func (n *Node) Outputs() []*Value { return n.outputs }

// Blocks returns the nested blocks.
func (n *Node) Blocks() []*Block { return n.blocks }

// Input returns the i-th input.
func (n *Node) Input(i int) *Value { return n.inputs[i] }

// Output returns the single output of n. It panics if n does not have
// exactly one output.
func (n *Node) Output() *Value {
	if len(n.outputs) != 1 {
		panic(fmt.Sprintf("ir: %s has %d outputs, expected exactly one", n.kind, len(n.outputs)))
	}
	return n.outputs[0]
}

// Attr returns the named attribute.
func (n *Node) Attr(name string) (Const, bool) {
	c, ok := n.attrs[name]
	return c, ok
}

// SetAttr sets the named attribute.
func (n *Node) SetAttr(name string, c Const) *Node {
	if n.attrs == nil {
		n.attrs = make(map[string]Const)
	}
	n.attrs[name] = c
	return n
}

// AttrNames returns the attribute names in sorted order.
func (n *Node) AttrNames() []string {
	names := make([]string, 0, len(n.attrs))
	for name := range n.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddInput appends v to the inputs and records the use.
func (n *Node) AddInput(v *Value) *Value {
	n.mustLive()
	n.graph.mustOwn(v)
	v.uses = append(v.uses, Use{User: n, Offset: len(n.inputs)})
	n.inputs = append(n.inputs, v)
	return v
}

// AddOutput appends a new unnamed output of type t.
func (n *Node) AddOutput(t Type) *Value {
	n.mustLive()
	v := n.graph.newValue(n, nil, len(n.outputs), t)
	n.outputs = append(n.outputs, v)
	return v
}

// AddBlock appends a new nested block.
func (n *Node) AddBlock() *Block {
	n.mustLive()
	b := n.graph.newBlock(n)
	n.blocks = append(n.blocks, b)
	return b
}

// InsertAt attaches the unattached node n at ip.
func (n *Node) InsertAt(ip InsertPoint) *Node {
	n.mustLive()
	if n.owner != nil {
		panic(fmt.Sprintf("ir: node %d (%s) is already attached", n.id, n.kind))
	}
	if ip.block == nil {
		panic("ir: insertion point has no block")
	}
	if ip.block.graph != n.graph {
		panic("ir: insertion point belongs to another graph")
	}
	ip.block.link(n, ip.before)
	return n
}

// InsertBefore attaches n immediately before anchor.
func (n *Node) InsertBefore(anchor *Node) *Node { return n.InsertAt(Before(anchor)) }

// InsertAfter attaches n immediately after anchor.
func (n *Node) InsertAfter(anchor *Node) *Node { return n.InsertAt(After(anchor)) }

// AppendTo attaches n at the end of b.
func (n *Node) AppendTo(b *Block) *Node { return n.InsertAt(AtEnd(b)) }

// IsBefore reports whether n precedes other in the same block.
func (n *Node) IsBefore(other *Node) bool {
	if n.owner == nil || other == nil || other.owner != n.owner {
		panic("ir: position query on nodes that do not share a block")
	}
	for cur := n.next; cur != nil; cur = cur.next {
		if cur == other {
			return true
		}
	}
	return false
}

// ReplaceInputAt redirects the i-th input edge to v.
func (n *Node) ReplaceInputAt(i int, v *Value) {
	n.mustLive()
	n.graph.mustOwn(v)
	old := n.inputs[i]
	old.removeUse(Use{User: n, Offset: i})
	n.inputs[i] = v
	v.uses = append(v.uses, Use{User: n, Offset: i})
}

// ReplaceInput redirects every input edge of n that reads from to v.
func (n *Node) ReplaceInput(from, to *Value) {
	for i, in := range n.inputs {
		if in == from {
			n.ReplaceInputAt(i, to)
		}
	}
}

// Destroy unlinks n from its block, drops its uses and releases its
// outputs and nested blocks. The outputs must not have remaining uses.
func (n *Node) Destroy() {
	n.mustLive()
	for _, out := range n.outputs {
		if len(out.uses) > 0 {
			panic(fmt.Sprintf("ir: destroying %s while output %%%s still has %d use(s)", n.kind, out.Name(), len(out.uses)))
		}
	}
	for i := len(n.blocks) - 1; i >= 0; i-- {
		n.blocks[i].release()
	}
	for i, in := range n.inputs {
		in.removeUse(Use{User: n, Offset: i})
	}
	if n.owner != nil {
		n.owner.unlink(n)
	}
	for _, out := range n.outputs {
		out.release()
	}
	n.inputs, n.outputs, n.blocks = nil, nil, nil
	n.destroyed = true
	n.graph.nodes[n.id] = nil
}

func (b *Block) release() {
	for i, out := range b.outputs {
		out.removeUse(Use{Block: b, Offset: i})
	}
	b.outputs = nil
	// Reverse order: every user of a node's outputs is destroyed first.
	for n := b.tail; n != nil; {
		prev := n.prev
		n.Destroy()
		n = prev
	}
	for _, in := range b.inputs {
		in.release()
	}
	b.inputs = nil
	b.graph.blocks[b.id] = nil
}

func (n *Node) mustLive() {
	if n == nil {
		panic("ir: nil node")
	}
	if n.destroyed {
		panic(fmt.Sprintf("ir: use of destroyed node %d (%s)", n.id, n.kind))
	}
}

package ir

// Block is an ordered list of nodes with inputs and declared outputs.
// The root block is owned by the graph; every other block is owned by a node.
type Block struct {
	id    BlockID
	graph *Graph
	owner *Node

	head, tail *Node
	size       int

	inputs  []*Value
	outputs []*Value
}

func (b *Block) ID() BlockID      { return b.id }
func (b *Block) Graph() *Graph    { return b.graph }
func (b *Block) Owner() *Node     { return b.owner }
func (b *Block) First() *Node     { return b.head }
func (b *Block) Last() *Node      { return b.tail }
func (b *Block) Len() int         { return b.size }
func (b *Block) Inputs() []*Value { return b.inputs }

// Outputs returns the declared block outputs. The slice must not be modified.
func (b *Block) Outputs() []*Value { return b.outputs }

// Nodes returns a snapshot of the block's nodes in order.
func (b *Block) Nodes() []*Node {
	out := make([]*Node, 0, b.size)
	for n := b.head; n != nil; n = n.next {
		out = append(out, n)
	}
	return out
}

// AddInput appends a block input.
func (b *Block) AddInput(name string, t Type) *Value {
	v := b.graph.newValue(nil, b, len(b.inputs), t)
	b.inputs = append(b.inputs, v)
	if name != "" {
		v.SetName(name)
	}
	return v
}

// RegisterOutput appends v to the declared outputs and returns its offset.
func (b *Block) RegisterOutput(v *Value) int {
	b.graph.mustOwn(v)
	offset := len(b.outputs)
	b.outputs = append(b.outputs, v)
	v.uses = append(v.uses, Use{Block: b, Offset: offset})
	return offset
}

// InsertPoint is a position in a block: before a node, or at the end.
type InsertPoint struct {
	block  *Block
	before *Node
}

// Before returns the insertion point immediately before n.
func Before(n *Node) InsertPoint {
	if n == nil || n.owner == nil {
		panic("ir: insertion point anchored on an unattached node")
	}
	return InsertPoint{block: n.owner, before: n}
}

// After returns the insertion point immediately after n.
func After(n *Node) InsertPoint {
	if n == nil || n.owner == nil {
		panic("ir: insertion point anchored on an unattached node")
	}
	if n.next != nil {
		return InsertPoint{block: n.owner, before: n.next}
	}
	return InsertPoint{block: n.owner}
}

// AtEnd returns the insertion point at the end of b.
func AtEnd(b *Block) InsertPoint {
	if b == nil {
		panic("ir: insertion point in nil block")
	}
	return InsertPoint{block: b}
}

// AtStart returns the insertion point before the first node of b.
func AtStart(b *Block) InsertPoint {
	if b == nil {
		panic("ir: insertion point in nil block")
	}
	return InsertPoint{block: b, before: b.head}
}

// Block returns the block the insertion point refers to.
func (ip InsertPoint) Block() *Block { return ip.block }

// Anchor returns the node new nodes are inserted before, or nil at block end.
func (ip InsertPoint) Anchor() *Node { return ip.before }

func (b *Block) link(n *Node, before *Node) {
	n.owner = b
	b.size++
	if before == nil {
		n.prev = b.tail
		n.next = nil
		if b.tail != nil {
			b.tail.next = n
		} else {
			b.head = n
		}
		b.tail = n
		return
	}
	n.next = before
	n.prev = before.prev
	if before.prev != nil {
		before.prev.next = n
	} else {
		b.head = n
	}
	before.prev = n
}

func (b *Block) unlink(n *Node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		b.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		b.tail = n.prev
	}
	n.prev, n.next, n.owner = nil, nil, nil
	b.size--
}

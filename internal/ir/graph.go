package ir

import (
	"fmt"
	"maps"
)

// Graph owns an arena of nodes, values and blocks addressed by stable IDs.
// Entries of destroyed objects are cleared but IDs are never reused.
//
// A Graph is not safe for concurrent mutation.
type Graph struct {
	nodes  []*Node
	values []*Value
	blocks []*Block
	root   *Block
	names  map[string]*Value
}

// NewGraph creates an empty graph with a root block.
func NewGraph() *Graph {
	g := &Graph{names: make(map[string]*Value)}
	g.root = g.newBlock(nil)
	return g
}

// Block returns the root block.
func (g *Graph) Block() *Block { return g.root }

// Inputs returns the graph inputs (the root block inputs).
func (g *Graph) Inputs() []*Value { return g.root.inputs }

// Outputs returns the graph outputs (the root block outputs).
func (g *Graph) Outputs() []*Value { return g.root.outputs }

// AddInput appends a graph input.
func (g *Graph) AddInput(name string, t Type) *Value { return g.root.AddInput(name, t) }

// RegisterOutput appends v to the graph outputs and returns its offset.
func (g *Graph) RegisterOutput(v *Value) int { return g.root.RegisterOutput(v) }

// Node returns the live node with the given ID, or nil.
func (g *Graph) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// Value returns the live value with the given ID, or nil.
func (g *Graph) Value(id ValueID) *Value {
	if id < 0 || int(id) >= len(g.values) {
		return nil
	}
	return g.values[id]
}

// ValueByName looks up a named value.
func (g *Graph) ValueByName(name string) *Value {
	return g.names[normalizeName(name)]
}

// NumNodes returns the number of live nodes, attached or not.
func (g *Graph) NumNodes() int {
	n := 0
	for _, node := range g.nodes {
		if node != nil {
			n++
		}
	}
	return n
}

// Create allocates an unattached node of the given kind with `outputs`
// outputs of type None. Use Node.InsertBefore/InsertAfter/AppendTo to
// place it.
func (g *Graph) Create(kind Symbol, outputs int) *Node {
	if !kind.Valid() {
		panic(fmt.Sprintf("ir: invalid operator symbol %q", kind))
	}
	n := &Node{
		id:    NodeID(len(g.nodes)),
		graph: g,
		kind:  kind,
	}
	g.nodes = append(g.nodes, n)
	for range outputs {
		n.AddOutput(TypeNone)
	}
	return n
}

// CreateSchema creates an unattached node for a specific operator overload.
func (g *Graph) CreateSchema(sig string, outputs int) (*Node, error) {
	schema, err := ParseSchema(sig)
	if err != nil {
		return nil, err
	}
	n := g.Create(schema.Name, outputs)
	n.schema = schema.String()
	return n, nil
}

// CreateClone creates an unattached copy of src, which may belong to another
// graph. Kind, schema, attributes and scope are copied; inputs, outputs and
// nested blocks are not.
func (g *Graph) CreateClone(src *Node) *Node {
	if src == nil {
		panic("ir: clone of nil node")
	}
	n := g.Create(src.kind, 0)
	n.schema = src.schema
	n.scope = src.scope
	if len(src.attrs) > 0 {
		n.attrs = maps.Clone(src.attrs)
	}
	return n
}

// InsertConstant creates a prim::Constant node holding c at ip and returns
// its output. The node takes the scope of the anchor, if any.
func (g *Graph) InsertConstant(ip InsertPoint, c Const) *Value {
	n := g.Create(PrimConstant, 1)
	n.SetAttr("value", c)
	n.Output().SetType(c.Type())
	if ip.before != nil {
		n.scope = ip.before.scope
	}
	n.InsertAt(ip)
	return n.Output()
}

func (g *Graph) newBlock(owner *Node) *Block {
	b := &Block{
		id:    BlockID(len(g.blocks)),
		graph: g,
		owner: owner,
	}
	g.blocks = append(g.blocks, b)
	return b
}

func (g *Graph) newValue(node *Node, block *Block, offset int, t Type) *Value {
	v := &Value{
		id:     ValueID(len(g.values)),
		graph:  g,
		node:   node,
		block:  block,
		offset: offset,
		typ:    t,
	}
	g.values = append(g.values, v)
	return v
}

// Method is a graph together with the metadata the passes need from the
// enclosing model.
type Method struct {
	Name  string
	Graph *Graph
	// ParamCount is the number of trailing graph inputs that are module
	// parameters; the leading inputs are external data.
	ParamCount int
}

// Module is an ordered collection of methods.
type Module struct {
	Methods []*Method
}

// Method returns the method with the given name, or nil.
func (m *Module) Method(name string) *Method {
	if m == nil {
		return nil
	}
	for _, meth := range m.Methods {
		if meth != nil && meth.Name == name {
			return meth
		}
	}
	return nil
}

package ir

import (
	"fmt"
	"slices"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// Use is one consumer slot of a value: either input Offset of User, or,
// when User is nil, output Offset of Block.
type Use struct {
	User   *Node
	Block  *Block
	Offset int
}

// Value is a typed result of a node, or an input of a block.
type Value struct {
	id     ValueID
	graph  *Graph
	node   *Node
	block  *Block
	offset int
	name   string
	typ    Type
	uses   []Use
}

func (v *Value) ID() ValueID   { return v.id }
func (v *Value) Graph() *Graph { return v.graph }
func (v *Value) Type() Type    { return v.typ }
func (v *Value) Offset() int   { return v.offset }
func (v *Value) HasUses() bool { return len(v.uses) > 0 }

// Node returns the producing node, or nil for block inputs.
func (v *Value) Node() *Node { return v.node }

// DefBlock returns the block in which v becomes visible.
func (v *Value) DefBlock() *Block {
	if v.node != nil {
		return v.node.owner
	}
	return v.block
}

// Uses returns the use-list. The slice must not be modified.
func (v *Value) Uses() []Use { return v.uses }

// HasName reports whether v carries an explicit name.
func (v *Value) HasName() bool { return v.name != "" }

// Name returns the unique name of v, falling back to its numeric ID.
func (v *Value) Name() string {
	if v.name != "" {
		return v.name
	}
	return strconv.Itoa(int(v.id))
}

// SetType sets the static type.
func (v *Value) SetType(t Type) *Value {
	v.typ = t
	return v
}

// SetName assigns a unique name. Names are NFC-normalized; if another value
// already holds the name, a ".N" suffix is appended to this one.
// An empty name clears it. Purely numeric names are reserved for
// unnamed values.
func (v *Value) SetName(name string) *Value {
	g := v.graph
	if v.name != "" && g.names[v.name] == v {
		delete(g.names, v.name)
	}
	name = normalizeName(name)
	if name == "" {
		v.name = ""
		return v
	}
	if isNumericName(name) {
		panic(fmt.Sprintf("ir: value name %q is reserved", name))
	}
	unique := name
	for i := 1; ; i++ {
		other, taken := g.names[unique]
		if !taken || other == v {
			break
		}
		unique = name + "." + strconv.Itoa(i)
	}
	v.name = unique
	g.names[unique] = v
	return v
}

// ReplaceAllUsesWith redirects every consumer of v, node inputs and block
// outputs alike, to to.
func (v *Value) ReplaceAllUsesWith(to *Value) {
	v.graph.mustOwn(v)
	v.graph.mustOwn(to)
	if to == v {
		panic("ir: replacing a value with itself")
	}
	for _, u := range v.uses {
		if u.User != nil {
			u.User.inputs[u.Offset] = to
		} else {
			u.Block.outputs[u.Offset] = to
		}
	}
	to.uses = append(to.uses, v.uses...)
	v.uses = nil
}

func (v *Value) removeUse(u Use) {
	i := slices.Index(v.uses, u)
	if i < 0 {
		panic(fmt.Sprintf("ir: use-list of %%%s has no entry for offset %d", v.Name(), u.Offset))
	}
	v.uses = slices.Delete(v.uses, i, i+1)
}

func (v *Value) release() {
	g := v.graph
	if v.name != "" && g.names[v.name] == v {
		delete(g.names, v.name)
	}
	v.uses = nil
	g.values[v.id] = nil
}

func (g *Graph) mustOwn(v *Value) {
	if v == nil {
		panic("ir: nil value")
	}
	if v.graph != g || g.Value(v.id) != v {
		panic(fmt.Sprintf("ir: value %%%s does not belong to this graph", v.Name()))
	}
}

func normalizeName(name string) string {
	return norm.NFC.String(name)
}

func isNumericName(name string) bool {
	for _, r := range name {
		if r < '0' || r > '9' {
			return false
		}
	}
	return name != ""
}

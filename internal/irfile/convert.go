package irfile

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"qgraph/internal/ir"
)

// FromModule converts mod into its file form.
func FromModule(mod *ir.Module) (*File, error) {
	f := &File{Format: FormatTag, Version: SchemaVersion}
	for _, m := range mod.Methods {
		if m == nil || m.Graph == nil {
			return nil, errors.New("method without a graph")
		}
		pc, err := safecast.Conv[uint32](m.ParamCount)
		if err != nil {
			return nil, fmt.Errorf("method %q: parameter count %d: %w", m.Name, m.ParamCount, err)
		}
		f.Methods = append(f.Methods, Method{
			Name:       m.Name,
			ParamCount: pc,
			Graph:      fromBlock(m.Graph.Block()),
		})
	}
	return f, nil
}

func fromBlock(b *ir.Block) Block {
	out := Block{
		Inputs:  fromValues(b.Inputs()),
		Outputs: refs(b.Outputs()),
	}
	for _, n := range b.Nodes() {
		dto := Node{
			Kind:    string(n.Kind()),
			Schema:  n.Schema(),
			Scope:   n.Scope(),
			Inputs:  refs(n.Inputs()),
			Outputs: fromValues(n.Outputs()),
		}
		if names := n.AttrNames(); len(names) > 0 {
			dto.Attrs = make(map[string]Attr, len(names))
			for _, name := range names {
				c, _ := n.Attr(name)
				dto.Attrs[name] = fromConst(c)
			}
		}
		for _, sub := range n.Blocks() {
			dto.Blocks = append(dto.Blocks, fromBlock(sub))
		}
		out.Nodes = append(out.Nodes, dto)
	}
	return out
}

func fromValues(vals []*ir.Value) []Value {
	out := make([]Value, len(vals))
	for i, v := range vals {
		out[i] = Value{Name: v.Name(), Type: v.Type().String()}
	}
	return out
}

func refs(vals []*ir.Value) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.Name()
	}
	return out
}

func fromConst(c ir.Const) Attr {
	switch c.Kind {
	case ir.ConstInt:
		return Attr{Kind: "int", Int: c.IntValue}
	case ir.ConstFloat:
		return Attr{Kind: "float", Float: c.FloatValue}
	case ir.ConstBool:
		return Attr{Kind: "bool", Bool: c.BoolValue}
	case ir.ConstString:
		return Attr{Kind: "str", Str: c.StringValue}
	}
	return Attr{Kind: "none"}
}

func toConst(a Attr) (ir.Const, error) {
	switch a.Kind {
	case "int":
		return ir.IntConst(a.Int), nil
	case "float":
		return ir.FloatConst(a.Float), nil
	case "bool":
		return ir.BoolConst(a.Bool), nil
	case "str":
		return ir.StringConst(a.Str), nil
	case "none", "":
		return ir.NoneConst(), nil
	}
	return ir.Const{}, fmt.Errorf("unknown attribute kind %q", a.Kind)
}

// ToModule rebuilds a module from f and validates every graph.
func ToModule(f *File) (*ir.Module, error) {
	if f.Format != FormatTag {
		return nil, fmt.Errorf("not a module file (format %q)", f.Format)
	}
	if f.Version != SchemaVersion {
		return nil, fmt.Errorf("unsupported schema version %d (want %d)", f.Version, SchemaVersion)
	}
	mod := &ir.Module{}
	seen := make(map[string]bool, len(f.Methods))
	for i := range f.Methods {
		dto := &f.Methods[i]
		if seen[dto.Name] {
			return nil, fmt.Errorf("duplicate method %q", dto.Name)
		}
		seen[dto.Name] = true
		m, err := toMethod(dto)
		if err != nil {
			return nil, fmt.Errorf("method %q: %w", dto.Name, err)
		}
		mod.Methods = append(mod.Methods, m)
	}
	return mod, nil
}

type builder struct {
	g      *ir.Graph
	values map[string]*ir.Value
}

func toMethod(dto *Method) (m *ir.Method, err error) {
	pc, err := safecast.Conv[int](dto.ParamCount)
	if err != nil {
		return nil, err
	}
	// IR primitives panic on misuse; a malformed file must not crash the
	// process.
	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fmt.Errorf("malformed graph: %v", r)
		}
	}()

	b := &builder{g: ir.NewGraph(), values: make(map[string]*ir.Value)}
	if err := b.block(b.g.Block(), &dto.Graph); err != nil {
		return nil, err
	}
	if pc > len(b.g.Inputs()) {
		return nil, fmt.Errorf("parameter count %d exceeds %d inputs", pc, len(b.g.Inputs()))
	}
	if err := ir.Validate(b.g); err != nil {
		return nil, err
	}
	return &ir.Method{Name: dto.Name, Graph: b.g, ParamCount: pc}, nil
}

func (b *builder) block(dst *ir.Block, dto *Block) error {
	for _, in := range dto.Inputs {
		t, err := ir.ParseType(in.Type)
		if err != nil {
			return err
		}
		v := dst.AddInput("", t)
		if err := b.define(v, in.Name); err != nil {
			return err
		}
	}
	for i := range dto.Nodes {
		if err := b.node(dst, &dto.Nodes[i]); err != nil {
			return err
		}
	}
	for _, name := range dto.Outputs {
		v, err := b.lookup(name)
		if err != nil {
			return fmt.Errorf("block output: %w", err)
		}
		dst.RegisterOutput(v)
	}
	return nil
}

func (b *builder) node(dst *ir.Block, dto *Node) error {
	var n *ir.Node
	if dto.Schema != "" {
		var err error
		if n, err = b.g.CreateSchema(dto.Schema, 0); err != nil {
			return err
		}
		if string(n.Kind()) != dto.Kind {
			return fmt.Errorf("node %s: schema names %s", dto.Kind, n.Kind())
		}
	} else {
		kind := ir.Symbol(dto.Kind)
		if !kind.Valid() {
			return fmt.Errorf("invalid operator %q", dto.Kind)
		}
		n = b.g.Create(kind, 0)
	}
	n.SetScope(dto.Scope)
	for name, a := range dto.Attrs {
		c, err := toConst(a)
		if err != nil {
			return fmt.Errorf("node %s attribute %s: %w", dto.Kind, name, err)
		}
		n.SetAttr(name, c)
	}
	n.AppendTo(dst)

	var errs []error
	for _, name := range dto.Inputs {
		v, err := b.lookup(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("node %s input: %w", dto.Kind, err))
			continue
		}
		n.AddInput(v)
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	for _, out := range dto.Outputs {
		t, err := ir.ParseType(out.Type)
		if err != nil {
			return err
		}
		if err := b.define(n.AddOutput(t), out.Name); err != nil {
			return err
		}
	}
	for i := range dto.Blocks {
		if err := b.block(n.AddBlock(), &dto.Blocks[i]); err != nil {
			return err
		}
	}
	return nil
}

// define registers v under the file name. Numeric names stand for unnamed
// values and are not assigned.
func (b *builder) define(v *ir.Value, name string) error {
	if name == "" {
		return errors.New("value without a name")
	}
	if _, dup := b.values[name]; dup {
		return fmt.Errorf("value %q defined twice", name)
	}
	b.values[name] = v
	if isNumeric(name) {
		return nil
	}
	if v.SetName(name); v.Name() != name {
		// SetName normalizes; an unnormalized or clashing name is a
		// malformed file.
		return fmt.Errorf("value name %q is not canonical", name)
	}
	return nil
}

func (b *builder) lookup(name string) (*ir.Value, error) {
	v, ok := b.values[name]
	if !ok {
		return nil, fmt.Errorf("unknown value %q", name)
	}
	return v, nil
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

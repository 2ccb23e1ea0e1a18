package ir

import (
	"errors"
	"fmt"
)

// Validate checks graph invariants and returns every violation found.
//
// Checked:
//  1. every attached node is owned by the block that lists it
//  2. every input is defined before its use (enclosing blocks included)
//  3. use-lists mirror node inputs and block outputs exactly
//  4. the name table maps each name to the live value carrying it
//  5. no live node is left unattached
func Validate(g *Graph) error {
	if g == nil {
		return nil
	}
	v := &validator{
		g:       g,
		visible: make(map[*Value]bool),
		seen:    make(map[*Node]bool),
	}
	v.block(g.root, "graph")
	v.checkNames()
	v.checkDetached()
	return errors.Join(v.errs...)
}

type validator struct {
	g       *Graph
	visible map[*Value]bool
	seen    map[*Node]bool
	errs    []error
}

func (v *validator) errorf(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf(format, args...))
}

func (v *validator) block(b *Block, where string) {
	var defined []*Value
	for _, in := range b.inputs {
		v.visible[in] = true
		defined = append(defined, in)
		v.checkUses(in)
	}

	count := 0
	for n := b.head; n != nil; n = n.next {
		count++
		ctx := fmt.Sprintf("%s: node %d (%s)", where, n.id, n.kind)
		if n.owner != b {
			v.errorf("%s: listed in block %d but owned by another block", ctx, b.id)
		}
		if n.destroyed || v.g.Node(n.id) != n {
			v.errorf("%s: destroyed node still linked", ctx)
		}
		v.seen[n] = true
		for i, in := range n.inputs {
			switch {
			case in == nil:
				v.errorf("%s: input %d is nil", ctx, i)
				continue
			case v.g.Value(in.id) != in:
				v.errorf("%s: input %d (%%%s) is not a live value", ctx, i, in.Name())
			case !v.visible[in]:
				v.errorf("%s: input %d (%%%s) used before definition", ctx, i, in.Name())
			}
			if !hasUse(in, Use{User: n, Offset: i}) {
				v.errorf("%s: input %d (%%%s) missing from use-list", ctx, i, in.Name())
			}
		}
		for i, sub := range n.blocks {
			if sub.owner != n {
				v.errorf("%s: block %d has wrong owner", ctx, sub.id)
			}
			v.block(sub, fmt.Sprintf("%s block%d", ctx, i))
		}
		for _, out := range n.outputs {
			if out.node != n {
				v.errorf("%s: output %%%s has wrong producer", ctx, out.Name())
			}
			v.visible[out] = true
			defined = append(defined, out)
			v.checkUses(out)
		}
	}
	if count != b.size {
		v.errorf("%s: block %d size %d does not match %d linked nodes", where, b.id, b.size, count)
	}

	for i, out := range b.outputs {
		if out == nil {
			v.errorf("%s: block output %d is nil", where, i)
			continue
		}
		if !v.visible[out] {
			v.errorf("%s: block output %d (%%%s) is not defined in scope", where, i, out.Name())
		}
		if !hasUse(out, Use{Block: b, Offset: i}) {
			v.errorf("%s: block output %d (%%%s) missing from use-list", where, i, out.Name())
		}
	}

	for _, d := range defined {
		delete(v.visible, d)
	}
}

// checkUses verifies that every recorded use points back at v.
func (v *validator) checkUses(val *Value) {
	for _, u := range val.uses {
		switch {
		case u.User != nil:
			if u.Offset < 0 || u.Offset >= len(u.User.inputs) || u.User.inputs[u.Offset] != val {
				v.errorf("value %%%s: stale use by node %d offset %d", val.Name(), u.User.id, u.Offset)
			}
		case u.Block != nil:
			if u.Offset < 0 || u.Offset >= len(u.Block.outputs) || u.Block.outputs[u.Offset] != val {
				v.errorf("value %%%s: stale use by block %d output %d", val.Name(), u.Block.id, u.Offset)
			}
		default:
			v.errorf("value %%%s: use without consumer", val.Name())
		}
	}
}

func (v *validator) checkNames() {
	for name, val := range v.g.names {
		if v.g.Value(val.id) != val {
			v.errorf("name %q refers to a released value", name)
			continue
		}
		if val.name != name {
			v.errorf("name %q refers to value named %q", name, val.name)
		}
	}
}

func (v *validator) checkDetached() {
	for _, n := range v.g.nodes {
		if n != nil && !v.seen[n] {
			v.errorf("node %d (%s) is not attached to the graph", n.id, n.kind)
		}
	}
}

func hasUse(v *Value, u Use) bool {
	for _, x := range v.uses {
		if x == u {
			return true
		}
	}
	return false
}

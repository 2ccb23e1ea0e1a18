package ir_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"qgraph/internal/ir"
)

func kinds(b *ir.Block) []string {
	var out []string
	for _, n := range b.Nodes() {
		out = append(out, string(n.Kind()))
	}
	return out
}

func TestInsertBeforeAfterOrdering(t *testing.T) {
	g := ir.NewGraph()
	root := g.Block()

	mid := g.Create("test::mid", 0).AppendTo(root)
	g.Create("test::after", 0).InsertAfter(mid)
	g.Create("test::before", 0).InsertBefore(mid)
	g.Create("test::first", 0).InsertAt(ir.AtStart(root))
	g.Create("test::last", 0).InsertAt(ir.After(root.Last()))

	want := []string{"test::first", "test::before", "test::mid", "test::after", "test::last"}
	if diff := cmp.Diff(want, kinds(root)); diff != "" {
		t.Fatalf("node order mismatch (-want +got):\n%s", diff)
	}
	if root.Len() != 5 {
		t.Fatalf("expected 5 nodes, got %d", root.Len())
	}
	if !root.First().IsBefore(mid) || mid.IsBefore(root.First()) {
		t.Fatalf("IsBefore disagrees with block order")
	}
}

func TestInsertAttachedNodePanics(t *testing.T) {
	g := ir.NewGraph()
	n := g.Create("test::op", 0).AppendTo(g.Block())
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when inserting an attached node")
		}
	}()
	n.AppendTo(g.Block())
}

func TestReplaceAllUsesWithUpdatesNodesAndBlockOutputs(t *testing.T) {
	g := ir.NewGraph()
	x := g.AddInput("x", ir.TypeTensor)
	z := g.AddInput("z", ir.TypeTensor)
	a := g.Create("test::a", 1).AppendTo(g.Block())
	a.AddInput(x)
	b := g.Create("test::b", 1).AppendTo(g.Block())
	b.AddInput(x)
	b.AddInput(x)
	g.RegisterOutput(x)

	x.ReplaceAllUsesWith(z)

	if x.HasUses() {
		t.Fatalf("expected %%x to have no uses, got %d", len(x.Uses()))
	}
	if len(z.Uses()) != 4 {
		t.Fatalf("expected 4 uses of replacement, got %d", len(z.Uses()))
	}
	if a.Input(0) != z || b.Input(0) != z || b.Input(1) != z || g.Outputs()[0] != z {
		t.Fatalf("consumers were not redirected")
	}
	if err := ir.Validate(g); err != nil {
		t.Fatalf("graph invalid: %v", err)
	}
}

func TestReplaceInputAtTouchesOneEdge(t *testing.T) {
	g := ir.NewGraph()
	x := g.AddInput("x", ir.TypeTensor)
	z := g.AddInput("z", ir.TypeTensor)
	n := g.Create("test::add", 1).AppendTo(g.Block())
	n.AddInput(x)
	n.AddInput(x)

	n.ReplaceInputAt(1, z)

	if n.Input(0) != x || n.Input(1) != z {
		t.Fatalf("unexpected inputs after ReplaceInputAt")
	}
	if len(x.Uses()) != 1 || x.Uses()[0].Offset != 0 {
		t.Fatalf("expected single use of %%x at offset 0, got %+v", x.Uses())
	}
	if err := ir.Validate(g); err != nil {
		t.Fatalf("graph invalid: %v", err)
	}
}

func TestDestroyDropsUsesAndNames(t *testing.T) {
	g := ir.NewGraph()
	x := g.AddInput("x", ir.TypeTensor)
	n := g.Create("test::op", 1).AppendTo(g.Block())
	n.AddInput(x)
	n.Output().SetName("tmp")

	n.Destroy()

	if x.HasUses() {
		t.Fatalf("destroyed node still listed as a use of %%x")
	}
	if g.Block().Len() != 0 {
		t.Fatalf("expected empty block")
	}
	if g.ValueByName("tmp") != nil {
		t.Fatalf("name of destroyed output still registered")
	}
	if g.Node(n.ID()) != nil {
		t.Fatalf("destroyed node still reachable by ID")
	}
	if err := ir.Validate(g); err != nil {
		t.Fatalf("graph invalid: %v", err)
	}
}

func TestDestroyWithLiveUsesPanics(t *testing.T) {
	g := ir.NewGraph()
	p := g.Create("test::p", 1).AppendTo(g.Block())
	c := g.Create("test::c", 0).AppendTo(g.Block())
	c.AddInput(p.Output())
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic destroying a node with used outputs")
		}
	}()
	p.Destroy()
}

func TestDestroyReleasesNestedBlocks(t *testing.T) {
	g := ir.NewGraph()
	x := g.AddInput("x", ir.TypeTensor)
	loop := g.Create(ir.PrimLoop, 0).AppendTo(g.Block())
	body := loop.AddBlock()
	i := body.AddInput("i", ir.TypeInt)
	inner := g.Create("test::inner", 1).AppendTo(body)
	inner.AddInput(x)
	inner.AddInput(i)
	body.RegisterOutput(inner.Output())

	loop.Destroy()

	if x.HasUses() {
		t.Fatalf("uses from the nested block survived destruction")
	}
	if g.NumNodes() != 0 {
		t.Fatalf("expected no live nodes, got %d", g.NumNodes())
	}
	if g.ValueByName("i") != nil {
		t.Fatalf("block input name still registered")
	}
}

func TestSetNameKeepsNamesUnique(t *testing.T) {
	g := ir.NewGraph()
	a := g.AddInput("x", ir.TypeTensor)
	b := g.AddInput("x", ir.TypeTensor)
	c := g.AddInput("x", ir.TypeTensor)

	if a.Name() != "x" || b.Name() != "x.1" || c.Name() != "x.2" {
		t.Fatalf("unexpected names %q %q %q", a.Name(), b.Name(), c.Name())
	}
	a.SetName("renamed")
	if g.ValueByName("x") != nil {
		t.Fatalf("old name still registered")
	}
	if g.ValueByName("renamed") != a {
		t.Fatalf("new name not registered")
	}
}

func TestSetNameNormalizesUnicode(t *testing.T) {
	g := ir.NewGraph()
	v := g.AddInput("cafe\u0301", ir.TypeTensor)
	if v.Name() != "caf\u00e9" {
		t.Fatalf("expected NFC name, got %q", v.Name())
	}
	if g.ValueByName("cafe\u0301") != v {
		t.Fatalf("lookup by decomposed name failed")
	}
}

func TestUnnamedValueFallsBackToID(t *testing.T) {
	g := ir.NewGraph()
	n := g.Create("test::op", 1).AppendTo(g.Block())
	if n.Output().HasName() {
		t.Fatalf("fresh output should be unnamed")
	}
	if n.Output().Name() != "0" {
		t.Fatalf("expected numeric fallback name, got %q", n.Output().Name())
	}
}

func TestCreateCloneCopiesShapeOnly(t *testing.T) {
	tmpl := ir.NewGraph()
	src := tmpl.Create(ir.PrimCallExtern, 1).AppendTo(tmpl.Block())
	src.SetAttr("name", ir.StringConst("observe"))
	src.SetScope("calib")
	src.AddInput(tmpl.AddInput("t", ir.TypeTensor))

	g := ir.NewGraph()
	clone := g.CreateClone(src)

	if clone.Kind() != ir.PrimCallExtern || clone.Scope() != "calib" {
		t.Fatalf("kind/scope not copied: %s %q", clone.Kind(), clone.Scope())
	}
	if c, ok := clone.Attr("name"); !ok || c.StringValue != "observe" {
		t.Fatalf("attribute not copied")
	}
	if len(clone.Inputs()) != 0 || len(clone.Outputs()) != 0 || clone.Attached() {
		t.Fatalf("clone must carry no wiring")
	}
	clone.SetAttr("name", ir.StringConst("changed"))
	if c, _ := src.Attr("name"); c.StringValue != "observe" {
		t.Fatalf("clone shares attribute storage with template")
	}
}

func TestInsertConstantTakesAnchorScope(t *testing.T) {
	g := ir.NewGraph()
	anchor := g.Create("test::op", 0).AppendTo(g.Block())
	anchor.SetScope("layer1")

	v := g.InsertConstant(ir.Before(anchor), ir.FloatConst(0.5))

	n := v.Node()
	if n.Kind() != ir.PrimConstant || n.Next() != anchor {
		t.Fatalf("constant not inserted before anchor")
	}
	if n.Scope() != "layer1" {
		t.Fatalf("expected anchor scope, got %q", n.Scope())
	}
	if v.Type() != ir.TypeFloat {
		t.Fatalf("expected float constant, got %s", v.Type())
	}
	if c, _ := n.Attr("value"); c.FloatValue != 0.5 {
		t.Fatalf("unexpected constant payload %v", c)
	}
}

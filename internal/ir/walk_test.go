package ir_test

import (
	"testing"

	"qgraph/internal/ir"
)

func TestWalkVisitsNestedNodesOnce(t *testing.T) {
	g := ir.NewGraph()
	root := g.Block()
	g.Create("test::a", 0).AppendTo(root)
	ifn := g.Create(ir.PrimIf, 0).AppendTo(root)
	then := ifn.AddBlock()
	els := ifn.AddBlock()
	g.Create("test::then", 0).AppendTo(then)
	loop := g.Create(ir.PrimLoop, 0).AppendTo(els)
	body := loop.AddBlock()
	g.Create("test::body1", 0).AppendTo(body)
	g.Create("test::body2", 0).AppendTo(body)
	g.Create("test::b", 0).AppendTo(root)

	seen := make(map[ir.NodeID]int)
	var bodyOrder []ir.Symbol
	ir.Walk(root, func(n *ir.Node) {
		seen[n.ID()]++
		if n.Owner() == body {
			bodyOrder = append(bodyOrder, n.Kind())
		}
	})

	if len(seen) != g.NumNodes() {
		t.Fatalf("visited %d distinct nodes, graph has %d", len(seen), g.NumNodes())
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("node %d visited %d times", id, count)
		}
	}
	if len(bodyOrder) != 2 || bodyOrder[0] != "test::body1" || bodyOrder[1] != "test::body2" {
		t.Errorf("block-local order not preserved: %v", bodyOrder)
	}
}

func TestWalkBlocksReportsEveryBlock(t *testing.T) {
	g := ir.NewGraph()
	ifn := g.Create(ir.PrimIf, 0).AppendTo(g.Block())
	ifn.AddBlock()
	ifn.AddBlock()

	blocks := 0
	ir.WalkBlocks(g.Block(), nil, func(*ir.Block) { blocks++ })
	if blocks != 3 {
		t.Fatalf("expected 3 blocks, got %d", blocks)
	}
}

package ir

// Walk visits every node reachable from root exactly once, nested blocks
// included. Each block's nodes are visited in stored order; no order is
// guaranteed across blocks.
//
// visit must not destroy nodes. Passes collect what they need during the
// walk and mutate afterwards.
func Walk(root *Block, visit func(n *Node)) {
	WalkBlocks(root, visit, nil)
}

// WalkBlocks is Walk with an additional callback invoked for each block
// after all of its nodes were visited.
func WalkBlocks(root *Block, visit func(n *Node), leave func(b *Block)) {
	if root == nil {
		panic("ir: walk from nil block")
	}
	pending := []*Block{root}
	for len(pending) > 0 {
		b := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		for n := b.head; n != nil; n = n.next {
			// Subblocks are processed on a later pop, never inline.
			pending = append(pending, n.blocks...)
			if visit != nil {
				visit(n)
			}
		}
		if leave != nil {
			leave(b)
		}
	}
}

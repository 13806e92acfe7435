package arena

import "github.com/viking-sudo-rm/rusty-dawg/token"

// insertAVL inserts newIdx (an edge record whose symbol is sym, already
// pushed to the edge store with left=right=Null, balance=0) into the tree
// rooted at root, returning the new tree root. Only insertion is needed:
// edges are never removed from a node's tree, only rerouted in place
// (spec.md §4.B), so the classic AVL deletion cases never arise.
//
// Rotations mutate only left/right/balance on already-stored edge
// records; no edge's own index ever changes, which is the invariant
// spec.md's Design Notes §9 calls out as the point of using an embedded
// arena AVL tree in the first place.
func (g *Graph) insertAVL(root, newIdx EdgeIndex, sym token.Token) (newRoot EdgeIndex, grew bool) {
	if root == Null {
		return newIdx, true
	}

	e := g.getEdgeRec(root)
	switch {
	case sym < e.symbol:
		newLeft, taller := g.insertAVL(e.left, newIdx, sym)
		e.left = newLeft
		g.putEdgeRec(root, e)
		if !taller {
			return root, false
		}
		switch e.balance {
		case 1:
			e.balance = 0
			g.putEdgeRec(root, e)
			return root, false
		case 0:
			e.balance = -1
			g.putEdgeRec(root, e)
			return root, true
		default: // -1: already left-heavy, must rebalance
			return g.rebalanceLeft(root)
		}

	case sym > e.symbol:
		newRight, taller := g.insertAVL(e.right, newIdx, sym)
		e.right = newRight
		g.putEdgeRec(root, e)
		if !taller {
			return root, false
		}
		switch e.balance {
		case -1:
			e.balance = 0
			g.putEdgeRec(root, e)
			return root, false
		case 0:
			e.balance = 1
			g.putEdgeRec(root, e)
			return root, true
		default: // 1: already right-heavy, must rebalance
			return g.rebalanceRight(root)
		}

	default:
		g.violateDuplicateSymbol(sym)
		return root, false
	}
}

// rebalanceLeft handles the LL and LR cases for a node whose left subtree
// just grew taller while its balance was already -1.
func (g *Graph) rebalanceLeft(root EdgeIndex) (EdgeIndex, bool) {
	e := g.getEdgeRec(root)
	lIdx := e.left
	l := g.getEdgeRec(lIdx)

	if l.balance <= 0 {
		// single right rotation (LL case)
		e.left = l.right
		l.right = root
		e.balance = 0
		l.balance = 0
		g.putEdgeRec(root, e)
		g.putEdgeRec(lIdx, l)
		return lIdx, false
	}

	// double rotation (LR case): rIdx is l's right child, the node that
	// actually caused the imbalance.
	rIdx := l.right
	r := g.getEdgeRec(rIdx)

	l.right = r.left
	r.left = lIdx
	e.left = r.right
	r.right = root

	switch r.balance {
	case 1:
		l.balance, e.balance = -1, 0
	case -1:
		l.balance, e.balance = 0, 1
	default:
		l.balance, e.balance = 0, 0
	}
	r.balance = 0

	g.putEdgeRec(root, e)
	g.putEdgeRec(lIdx, l)
	g.putEdgeRec(rIdx, r)
	return rIdx, false
}

// rebalanceRight is the mirror image of rebalanceLeft for the RR/RL cases.
func (g *Graph) rebalanceRight(root EdgeIndex) (EdgeIndex, bool) {
	e := g.getEdgeRec(root)
	rIdx := e.right
	r := g.getEdgeRec(rIdx)

	if r.balance >= 0 {
		// single left rotation (RR case)
		e.right = r.left
		r.left = root
		e.balance = 0
		r.balance = 0
		g.putEdgeRec(root, e)
		g.putEdgeRec(rIdx, r)
		return rIdx, false
	}

	// double rotation (RL case)
	lIdx := r.left
	l := g.getEdgeRec(lIdx)

	r.left = l.right
	l.right = rIdx
	e.right = l.left
	l.left = root

	switch l.balance {
	case -1:
		r.balance, e.balance = 1, 0
	case 1:
		r.balance, e.balance = 0, -1
	default:
		r.balance, e.balance = 0, 0
	}
	l.balance = 0

	g.putEdgeRec(root, e)
	g.putEdgeRec(rIdx, r)
	g.putEdgeRec(lIdx, l)
	return lIdx, false
}

// findAVL performs the O(log b) BST lookup of sym in the tree rooted at
// root, returning the matching edge's index.
func (g *Graph) findAVL(root EdgeIndex, sym token.Token) (EdgeIndex, bool) {
	for root != Null {
		e := g.getEdgeRec(root)
		switch {
		case sym < e.symbol:
			root = e.left
		case sym > e.symbol:
			root = e.right
		default:
			return root, true
		}
	}
	return Null, false
}

// inorder calls fn for every edge in the tree rooted at root in ascending
// symbol order, stopping early if fn returns false.
func (g *Graph) inorder(root EdgeIndex, fn func(EdgeIndex, edge) bool) bool {
	if root == Null {
		return true
	}
	e := g.getEdgeRec(root)
	if !g.inorder(e.left, fn) {
		return false
	}
	if !fn(root, e) {
		return false
	}
	return g.inorder(e.right, fn)
}

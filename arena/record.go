package arena

import (
	"encoding/binary"

	"github.com/viking-sudo-rm/rusty-dawg/store"
	"github.com/viking-sudo-rm/rusty-dawg/token"
)

// NodeIndex and EdgeIndex are the opaque, stable "pointers" spec.md §3
// calls for: indices into the node and edge arenas respectively.
type NodeIndex = store.Index
type EdgeIndex = store.Index

// Null marks the absence of a node or edge (root's failure link, a
// missing child in an edge tree, ...).
const Null = store.NullIndex

// node is the physical, fixed-size record backing every NodeIndex. It is
// the superset of weight.Basic / weight.Counting / weight.Cdawg: one
// physical shape serves every configured weight.Layout, per spec.md §4.C
// ("Layouts are fixed-size; builder chooses one and the store holds that
// shape") — chosen here as a single shape rather than three differently
// sized Store instances, to keep the arena non-generic. See DESIGN.md.
type node struct {
	firstEdge EdgeIndex
	length    uint32
	failure   NodeIndex
	count     uint64
	firstOcc  uint64
	final     bool

	// primary marks a node created directly for one token position (a
	// dawg "cur" node or a cdawg "curSink" node), as opposed to a node
	// introduced purely to keep the graph's shape correct (a dawg clone
	// or a cdawg edge-split internal node). Only primary nodes contribute
	// their own firstOcc to Occurrences; see automaton.WalkOccurrences.
	primary bool
}

// NodeSize is the fixed on-disk/in-memory size of one node record.
const NodeSize = 8 + 4 + 8 + 8 + 8 + 1 + 1 // firstEdge + length + failure + count + firstOcc + final + primary

func encodeNode(n node) []byte {
	buf := make([]byte, NodeSize)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(n.firstEdge))
	binary.LittleEndian.PutUint32(buf[8:12], n.length)
	binary.LittleEndian.PutUint64(buf[12:20], uint64(n.failure))
	binary.LittleEndian.PutUint64(buf[20:28], n.count)
	binary.LittleEndian.PutUint64(buf[28:36], n.firstOcc)
	if n.final {
		buf[36] = 1
	}
	if n.primary {
		buf[37] = 1
	}
	return buf
}

func decodeNode(buf []byte) node {
	return node{
		firstEdge: NodeIndex(binary.LittleEndian.Uint64(buf[0:8])),
		length:    binary.LittleEndian.Uint32(buf[8:12]),
		failure:   NodeIndex(int64(binary.LittleEndian.Uint64(buf[12:20]))),
		count:     binary.LittleEndian.Uint64(buf[20:28]),
		firstOcc:  binary.LittleEndian.Uint64(buf[28:36]),
		final:     buf[36] != 0,
		primary:   buf[37] != 0,
	}
}

// edge is the physical, fixed-size record backing every EdgeIndex. The
// CDAWG-only Start/End range fields are present (but unused, left zero)
// on a plain DAWG graph, so both variants share one arena.Graph
// implementation and one edge Store, per spec.md §4.B.
type edge struct {
	symbol  token.Token
	target  NodeIndex
	left    EdgeIndex
	right   EdgeIndex
	balance int8
	start   uint64
	end     uint64
}

// EdgeSize is the fixed on-disk/in-memory size of one edge record.
const EdgeSize = 4 + 8 + 8 + 8 + 1 + 8 + 8 // symbol + target + left + right + balance + start + end

func encodeEdge(e edge) []byte {
	buf := make([]byte, EdgeSize)
	binary.LittleEndian.PutUint32(buf[0:4], e.symbol)
	binary.LittleEndian.PutUint64(buf[4:12], uint64(e.target))
	binary.LittleEndian.PutUint64(buf[12:20], uint64(e.left))
	binary.LittleEndian.PutUint64(buf[20:28], uint64(e.right))
	buf[28] = byte(e.balance)
	binary.LittleEndian.PutUint64(buf[29:37], e.start)
	binary.LittleEndian.PutUint64(buf[37:45], e.end)
	return buf
}

func decodeEdge(buf []byte) edge {
	return edge{
		symbol:  binary.LittleEndian.Uint32(buf[0:4]),
		target:  NodeIndex(int64(binary.LittleEndian.Uint64(buf[4:12]))),
		left:    EdgeIndex(int64(binary.LittleEndian.Uint64(buf[12:20]))),
		right:   EdgeIndex(int64(binary.LittleEndian.Uint64(buf[20:28]))),
		balance: int8(buf[28]),
		start:   binary.LittleEndian.Uint64(buf[29:37]),
		end:     binary.LittleEndian.Uint64(buf[37:45]),
	}
}

// Package editdist computes the edit distance between LaTeX forests.
//
// The distance is the minimum-cost sequence of unit-cost operations on
// token trees: deleting a token (its arguments become siblings),
// inserting a token, or matching two tokens (free when the labels are
// equal, 1 for a rename) and recursing on the arguments.
//
// Two variants are provided. Distance is the full symmetric distance.
// LeftDistance is left-anchored: once the left forest is exhausted the
// remainder of the right forest costs nothing, so it measures how well
// the left forest occurs as a prefix of the right one.
package editdist

import (
	"hash/fnv"

	"github.com/DavidAlphaFox/texsearch/internal/latex"
)

// cell is a node of a persistent token list. Splicing a token's
// arguments in front of the remaining list conses onto the existing
// tail, so shared suffixes keep identical hashes and the memo table
// collapses repeated subproblems.
type cell struct {
	head latex.Token
	tail *cell
	hash uint64
	cost int
}

func cons(head latex.Token, tail *cell) *cell {
	tailHash, tailCost := uint64(0), 0
	if tail != nil {
		tailHash, tailCost = tail.hash, tail.cost
	}
	return &cell{
		head: head,
		tail: tail,
		hash: combine(head.Hash(), tailHash),
		cost: head.Cost() + tailCost,
	}
}

func combine(a, b uint64) uint64 {
	h := fnv.New64a()
	var buf [16]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(a >> (8 * i))
		buf[8+i] = byte(b >> (8 * i))
	}
	h.Write(buf[:])
	return h.Sum64()
}

// splice prepends a forest onto tail, rightmost token first.
func splice(f latex.Forest, tail *cell) *cell {
	for i := len(f) - 1; i >= 0; i-- {
		tail = cons(f[i], tail)
	}
	return tail
}

type kernel struct {
	memo         map[[2]uint64]int
	leftAnchored bool
}

func (k *kernel) dist(l, r *cell) int {
	switch {
	case l == nil && r == nil:
		return 0
	case l == nil:
		if k.leftAnchored {
			return 0
		}
		return r.cost
	case r == nil:
		return l.cost
	}

	key := [2]uint64{l.hash, r.hash}
	if v, ok := k.memo[key]; ok {
		return v
	}

	lRest := splice(l.head.Args(), l.tail)
	rRest := splice(r.head.Args(), r.tail)

	best := 1 + k.dist(l, rRest)
	if v := 1 + k.dist(lRest, r); v < best {
		best = v
	}
	match := k.dist(lRest, rRest)
	if l.head.Label() != r.head.Label() {
		match++
	}
	if match < best {
		best = match
	}

	k.memo[key] = best
	return best
}

// Distance returns the full edit distance between two forests. It is
// symmetric and zero on structurally equal forests. Because a deleted
// token's arguments become siblings, forests with the same preorder
// label sequence but different nesting also have distance zero.
func Distance(l, r latex.Forest) int {
	k := &kernel{memo: make(map[[2]uint64]int)}
	return k.dist(splice(l, nil), splice(r, nil))
}

// LeftDistance returns the left-anchored edit distance: the cost of
// editing l into a prefix of r. It is bounded by the cost of l and is
// not symmetric.
func LeftDistance(l, r latex.Forest) int {
	k := &kernel{memo: make(map[[2]uint64]int), leftAnchored: true}
	return k.dist(splice(l, nil), splice(r, nil))
}

// Package index implements the metric-tree index over LaTeX fragments:
// a BK-tree keyed on the integer left-anchored edit distance, with
// logical deletion and a resumable ranked nearest-neighbor search.
package index

import (
	"github.com/DavidAlphaFox/texsearch/internal/editdist"
	"github.com/DavidAlphaFox/texsearch/internal/latex"
)

const (
	// BucketSize is the width of one distance band. Entries closer than
	// this to a pivot live in the pivot's in-place bucket.
	BucketSize = 5

	// BranchSize is the number of regular child bands per branch; one
	// extra overflow band covers [BranchSize*BucketSize, inf).
	BranchSize = 20

	branchCount = BranchSize + 1
)

// Entry is one indexed fragment. Suffix forests are derived from the
// tokens and rebuilt lazily after deserialization.
type Entry struct {
	DocID      string
	FragmentID string
	Tokens     latex.Forest

	suffixes []latex.Forest
}

// NewEntry builds an index entry with its suffix forests precomputed.
func NewEntry(docID, fragmentID string, tokens latex.Forest) Entry {
	return Entry{
		DocID:      docID,
		FragmentID: fragmentID,
		Tokens:     tokens,
		suffixes:   latex.Suffixes(tokens),
	}
}

// Suffixes returns every suffix forest of the entry's tokens, longest
// first, ending with the empty forest.
func (e *Entry) Suffixes() []latex.Forest {
	if e.suffixes == nil {
		e.suffixes = latex.Suffixes(e.Tokens)
	}
	return e.suffixes
}

// Dist measures how well the query occurs inside the stored fragment:
// the minimum left-anchored edit distance from the query's tokens to
// any suffix forest of the stored entry. The suffix expansion lets a
// short query match anywhere within a larger fragment.
//
// The left-anchored distance is not a true metric, but the tree treats
// it as one; the band pruning bounds below are therefore heuristic.
// This is a deliberate compromise carried over from the system this
// index reimplements.
func Dist(query, stored *Entry) int {
	best := -1
	for _, suffix := range stored.Suffixes() {
		d := editdist.LeftDistance(query.Tokens, suffix)
		if best < 0 || d < best {
			best = d
		}
		if best == 0 {
			break
		}
	}
	return best
}

// Branch is one node of the tree. Children are arena indexes, -1 when
// empty. A tombstoned branch keeps its subtree reachable but its pivot
// is no longer reported as a match.
type Branch struct {
	Pivot     Entry
	Tombstone bool
	Bucket    []Entry
	Children  [branchCount]int
}

// Tree is the BK-tree, stored as an arena of branches to keep the
// search loop free of pointer chasing and the whole structure trivially
// serializable.
type Tree struct {
	Nodes []Branch
	Root  int
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{Root: -1}
}

// Empty reports whether the tree holds no branches at all.
func (t *Tree) Empty() bool { return t.Root < 0 }

// Len returns the number of live (non-deleted) entries.
func (t *Tree) Len() int {
	n := 0
	for i := range t.Nodes {
		if !t.Nodes[i].Tombstone {
			n++
		}
		n += len(t.Nodes[i].Bucket)
	}
	return n
}

func (t *Tree) newBranch(e Entry) int {
	b := Branch{Pivot: e}
	for i := range b.Children {
		b.Children[i] = -1
	}
	t.Nodes = append(t.Nodes, b)
	return len(t.Nodes) - 1
}

// Add inserts an entry, descending by banded distance to each pivot.
func (t *Tree) Add(e Entry) {
	if t.Root < 0 {
		t.Root = t.newBranch(e)
		return
	}
	cur := t.Root
	for {
		d := Dist(&e, &t.Nodes[cur].Pivot)
		if d < BucketSize {
			t.Nodes[cur].Bucket = append([]Entry{e}, t.Nodes[cur].Bucket...)
			return
		}
		band := d / BucketSize
		if band > BranchSize {
			band = BranchSize
		}
		next := t.Nodes[cur].Children[band]
		if next < 0 {
			idx := t.newBranch(e)
			t.Nodes[cur].Children[band] = idx
			return
		}
		cur = next
	}
}

// Delete logically removes a single fragment: matching pivots are
// tombstoned (their subtrees stay reachable) and matching bucket
// entries are filtered out.
func (t *Tree) Delete(fragmentID string) {
	t.remove(func(e *Entry) bool { return e.FragmentID == fragmentID })
}

// DeleteDoc logically removes every fragment of a document.
func (t *Tree) DeleteDoc(docID string) {
	t.remove(func(e *Entry) bool { return e.DocID == docID })
}

func (t *Tree) remove(match func(*Entry) bool) {
	for i := range t.Nodes {
		b := &t.Nodes[i]
		if match(&b.Pivot) {
			b.Tombstone = true
		}
		kept := b.Bucket[:0]
		for _, e := range b.Bucket {
			if !match(&e) {
				kept = append(kept, e)
			}
		}
		b.Bucket = kept
	}
}

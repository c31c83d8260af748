package index

import (
	"context"

	"github.com/DavidAlphaFox/texsearch/internal/latex"
	"github.com/DavidAlphaFox/texsearch/internal/pqueue"
)

// Result is one ranked match.
type Result struct {
	DocID      string
	FragmentID string
	Dist       int
}

// ref identifies a discovered entry while it waits in the staging
// queues.
type ref struct {
	docID      string
	fragmentID string
}

// Search is a resumable ranked nearest-neighbor traversal. Results are
// produced in non-decreasing distance order, below the cutoff computed
// from the query's symbol count, across as many calls to Next as the caller
// needs for pagination.
//
// The frontier (unsearched) holds subtrees keyed by a lower bound on
// the distance of anything inside them. minDist is the largest bound
// popped so far and never decreases, so any discovered match with a
// smaller distance can no longer be outranked: those sit in sorted,
// while matches that might still be beaten wait in sorting and are
// promoted whenever minDist advances.
type Search struct {
	tree   *Tree
	target Entry

	unsearched *pqueue.Queue[int]
	sorting    *pqueue.Queue[ref]
	sorted     *pqueue.Queue[ref]

	minDist int
	cutoff  int
}

// NewSearch starts a search for the given query entry. The cutoff is
// fixed at creation: a third of the query's symbol count (its edit
// cost, plus one for the empty suffix), plus one. A larger query
// tolerates proportionally more edits.
func (t *Tree) NewSearch(target Entry) *Search {
	s := &Search{
		tree:       t,
		target:     target,
		unsearched: pqueue.New[int](),
		sorting:    pqueue.New[ref](),
		sorted:     pqueue.New[ref](),
		cutoff:     (latex.Cost(target.Tokens)+1)/3 + 1,
	}
	if t.Root >= 0 {
		s.unsearched.Add(t.Root, 0)
	}
	return s
}

// Cutoff returns the exclusive distance bound: only results with a
// distance strictly below it are reported.
func (s *Search) Cutoff() int { return s.cutoff }

// Next returns up to k further results in rank order. done is true once
// the traversal is exhausted; the final page may be shorter than k.
// Cancellation is checked once per frontier pop.
func (s *Search) Next(ctx context.Context, k int) (results []Result, done bool, err error) {
	for {
		if s.sorted.Len() >= k {
			page, _ := s.sorted.SplitAtLength(k)
			return toResults(page), false, nil
		}

		if err := ctx.Err(); err != nil {
			return nil, false, err
		}

		idx, ok := s.nextSearchNode()
		if !ok {
			if s.sorting.Empty() {
				return toResults(s.sorted.ToList()), true, nil
			}
			s.sorted.Append(s.sorting)
			continue
		}

		s.visit(idx)
	}
}

// nextSearchNode pops the most promising subtree, advances minDist and
// promotes every tentative result that can no longer be outranked.
func (s *Search) nextSearchNode() (int, bool) {
	if s.minDist > s.cutoff {
		return 0, false
	}
	item, ok := s.unsearched.Pop()
	if !ok {
		return 0, false
	}
	if item.Priority > s.minDist {
		s.minDist = item.Priority
	}
	for _, r := range s.sorting.SplitAtPriority(s.minDist) {
		s.sorted.Add(r.Value, r.Priority)
	}
	return item.Value, true
}

// visit expands one branch: children are pushed with their band lower
// bounds, then the pivot and bucket entries are classified.
func (s *Search) visit(idx int) {
	b := &s.tree.Nodes[idx]
	dP := Dist(&s.target, &b.Pivot)

	for i := 0; i < BranchSize; i++ {
		if child := b.Children[i]; child >= 0 {
			bound := dP - i*BucketSize
			if bound < 0 {
				bound = 0
			}
			s.unsearched.Add(child, bound)
		}
	}
	if child := b.Children[BranchSize]; child >= 0 {
		s.unsearched.Add(child, 0)
	}

	if !b.Tombstone {
		s.insertResult(&b.Pivot, dP)
	}
	for i := range b.Bucket {
		s.insertResult(&b.Bucket[i], Dist(&s.target, &b.Bucket[i]))
	}
}

func (s *Search) insertResult(e *Entry, d int) {
	if d >= s.cutoff {
		return
	}
	r := ref{docID: e.DocID, fragmentID: e.FragmentID}
	if d < s.minDist {
		s.sorted.Add(r, d)
	} else {
		s.sorting.Add(r, d)
	}
}

func toResults(items []pqueue.Item[ref]) []Result {
	out := make([]Result, len(items))
	for i, it := range items {
		out[i] = Result{DocID: it.Value.docID, FragmentID: it.Value.fragmentID, Dist: it.Priority}
	}
	return out
}

package app

import (
	"context"
	"errors"

	"github.com/DavidAlphaFox/texsearch/domain"
	"github.com/DavidAlphaFox/texsearch/internal/index"
	"github.com/DavidAlphaFox/texsearch/internal/latex"
)

// QueryUseCase runs one search request end to end: parse, preprocess,
// ranked index search, pagination window, source materialization,
// serialization. It never mutates the index and always produces a
// response envelope, so a failed request never stops the query loop.
type QueryUseCase struct {
	preprocessor domain.Preprocessor
	store        domain.DocumentStore
	formatter    domain.ResponseFormatter
	tree         *index.Tree
}

// NewQueryUseCase creates a query use case over a loaded index tree.
func NewQueryUseCase(preprocessor domain.Preprocessor, store domain.DocumentStore, formatter domain.ResponseFormatter, tree *index.Tree) *QueryUseCase {
	return &QueryUseCase{
		preprocessor: preprocessor,
		store:        store,
		formatter:    formatter,
		tree:         tree,
	}
}

// Execute handles one request line and returns the response line.
func (q *QueryUseCase) Execute(ctx context.Context, line []byte) []byte {
	req, err := domain.ParseSearchRequest(line)
	if err != nil {
		return q.formatter.FormatError(err)
	}
	matches, err := q.run(ctx, req)
	if err != nil {
		return q.formatter.FormatError(err)
	}
	out, err := q.formatter.FormatResults(req.SearchTerm, matches, req.Format)
	if err != nil {
		return q.formatter.FormatError(err)
	}
	return out
}

func (q *QueryUseCase) run(ctx context.Context, req *domain.SearchRequest) ([]domain.Match, error) {
	pctx, cancel := context.WithTimeout(ctx, req.PreprocessorTimeout)
	forest, err := q.preprocessor.Process(pctx, req.SearchTerm)
	cancel()
	if err != nil {
		return nil, err
	}

	sctx, cancel := context.WithTimeout(ctx, req.SearchTimeout)
	defer cancel()

	ranked, err := q.collect(sctx, req, forest)
	if err != nil {
		return nil, asDomainError(err)
	}

	window := paginate(ranked, req.StartAt, req.EndAt)
	return q.materialize(sctx, window)
}

// collect pages through the ranked search until the requested window
// is covered or the tree is exhausted.
func (q *QueryUseCase) collect(ctx context.Context, req *domain.SearchRequest, forest latex.Forest) ([]index.Result, error) {
	search := q.tree.NewSearch(index.NewEntry("", "", forest))
	var ranked []index.Result
	for {
		page, done, err := search.Next(ctx, domain.SearchPageSize)
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, page...)
		if done {
			return ranked, nil
		}
		if req.EndAt > 0 && len(ranked) >= req.EndAt {
			return ranked, nil
		}
	}
}

func paginate(ranked []index.Result, startAt, endAt int) []index.Result {
	if startAt < 1 {
		startAt = 1
	}
	// An inverted window selects nothing.
	if endAt > 0 && endAt < startAt {
		return nil
	}
	if startAt-1 >= len(ranked) {
		return nil
	}
	end := len(ranked)
	if endAt > 0 && endAt < end {
		end = endAt
	}
	return ranked[startAt-1 : end]
}

// materialize resolves each result's source string through the
// document store, fetching every referenced document once.
func (q *QueryUseCase) materialize(ctx context.Context, window []index.Result) ([]domain.Match, error) {
	docs := make(map[string]*domain.Document)
	matches := make([]domain.Match, 0, len(window))
	for _, r := range window {
		doc, ok := docs[r.DocID]
		if !ok {
			fetched, err := q.store.FetchDocument(ctx, r.DocID)
			if err != nil {
				return nil, asDomainError(err)
			}
			doc = fetched
			docs[r.DocID] = doc
		}
		matches = append(matches, domain.Match{
			DocID:      r.DocID,
			FragmentID: r.FragmentID,
			Source:     doc.Source[r.FragmentID],
			Dist:       r.Dist,
		})
	}
	return matches, nil
}

// asDomainError maps context expiry onto the wire error kinds.
func asDomainError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return domain.NewTimeoutError("search timed out", err)
	case errors.Is(err, context.Canceled):
		return domain.NewCancelledError("search cancelled", err)
	default:
		return err
	}
}

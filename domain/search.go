package domain

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/DavidAlphaFox/texsearch/internal/latex"
)

// OutputFormat represents the response serialization format
type OutputFormat string

const (
	FormatXML  OutputFormat = "xml"
	FormatJSON OutputFormat = "json"
)

// SearchRequest holds one parsed query request.
// EndAt is 0 when the caller did not bound the window.
type SearchRequest struct {
	SearchTerm          string
	SearchTimeout       time.Duration
	PreprocessorTimeout time.Duration
	StartAt             int
	EndAt               int
	Format              OutputFormat
}

// requestEnvelope mirrors the wire shape: all numeric fields arrive as
// decimal strings.
type requestEnvelope struct {
	Query *struct {
		SearchTerm          string `json:"searchTerm"`
		SearchTimeout       string `json:"searchTimeout"`
		PreprocessorTimeout string `json:"preprocessorTimeout"`
		StartAt             string `json:"startAt"`
		EndAt               string `json:"endAt"`
		Format              string `json:"format"`
	} `json:"query"`
}

// ParseSearchRequest parses one request line into a SearchRequest,
// applying the documented defaults.
func ParseSearchRequest(line []byte) (*SearchRequest, error) {
	var env requestEnvelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, NewBadRequestError("malformed request", err)
	}
	if env.Query == nil || env.Query.SearchTerm == "" {
		return nil, NewBadRequestError("request is missing searchTerm", nil)
	}

	req := &SearchRequest{
		SearchTerm:          env.Query.SearchTerm,
		SearchTimeout:       DefaultSearchTimeout,
		PreprocessorTimeout: DefaultPreprocessorTimeout,
		StartAt:             DefaultStartAt,
		Format:              DefaultFormat,
	}

	if env.Query.SearchTimeout != "" {
		secs, err := strconv.ParseFloat(env.Query.SearchTimeout, 64)
		if err != nil || secs <= 0 {
			return nil, NewBadRequestError("invalid searchTimeout", err)
		}
		req.SearchTimeout = time.Duration(secs * float64(time.Second))
	}
	if env.Query.PreprocessorTimeout != "" {
		secs, err := strconv.ParseFloat(env.Query.PreprocessorTimeout, 64)
		if err != nil || secs <= 0 {
			return nil, NewBadRequestError("invalid preprocessorTimeout", err)
		}
		req.PreprocessorTimeout = time.Duration(secs * float64(time.Second))
	}
	if env.Query.StartAt != "" {
		n, err := strconv.Atoi(env.Query.StartAt)
		if err != nil {
			return nil, NewBadRequestError("invalid startAt", err)
		}
		if n < 1 {
			n = 1
		}
		req.StartAt = n
	}
	if env.Query.EndAt != "" {
		n, err := strconv.Atoi(env.Query.EndAt)
		if err != nil || n < 0 {
			return nil, NewBadRequestError("invalid endAt", err)
		}
		req.EndAt = n
	}
	switch env.Query.Format {
	case "":
		// keep default
	case string(FormatXML):
		req.Format = FormatXML
	case string(FormatJSON):
		req.Format = FormatJSON
	default:
		return nil, NewBadRequestError("invalid format: "+env.Query.Format, nil)
	}

	return req, nil
}

// Match is one materialized search result.
type Match struct {
	DocID      string
	FragmentID string
	Source     string
	Dist       int
}

// Preprocessor normalizes a raw LaTeX search term into a token forest.
// Implemented by an external service; a parse failure is a BAD_REQUEST,
// an exceeded deadline a TIMEOUT.
type Preprocessor interface {
	Process(ctx context.Context, term string) (latex.Forest, error)
}

// DocumentStore is the external corpus. ChangesSince returns document
// mutations with change sequence in (since, since+limit], ordered by
// sequence.
type DocumentStore interface {
	ChangesSince(ctx context.Context, since int64, limit int) ([]DocumentUpdate, error)
	FetchDocument(ctx context.Context, docID string) (*Document, error)
}

// ResponseFormatter serializes response envelopes for the stdio loop.
type ResponseFormatter interface {
	FormatResults(query string, matches []Match, format OutputFormat) ([]byte, error)
	FormatError(err error) []byte
}

// ProgressReporter surfaces update reconciliation progress to the
// operator.
type ProgressReporter interface {
	StartBatch(total int)
	Step()
	FinishBatch(applied, skipped int, lastSeq int64)
}

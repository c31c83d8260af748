package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/DavidAlphaFox/texsearch/domain"
	"github.com/DavidAlphaFox/texsearch/internal/latex"
)

// HTTPPreprocessor calls the external LaTeX preprocessor: the raw
// search term goes out as plain text, a token forest comes back as
// JSON.
type HTTPPreprocessor struct {
	url    string
	client *http.Client
}

// NewHTTPPreprocessor creates a preprocessor client for the given
// endpoint.
func NewHTTPPreprocessor(url string) *HTTPPreprocessor {
	return &HTTPPreprocessor{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Process normalizes one search term. The caller bounds the call with
// its context; an exceeded deadline surfaces as a TIMEOUT error, a
// rejected term as BAD_REQUEST.
func (p *HTTPPreprocessor) Process(ctx context.Context, term string) (latex.Forest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, strings.NewReader(term))
	if err != nil {
		return nil, domain.NewInternalError("building preprocessor request", err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.NewTimeoutError("preprocessor timed out", err)
		}
		return nil, domain.NewUpstreamError("preprocessor unreachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusBadRequest:
		io.Copy(io.Discard, resp.Body)
		return nil, domain.NewBadRequestError("search term could not be parsed", nil)
	default:
		io.Copy(io.Discard, resp.Body)
		return nil, domain.NewUpstreamError("preprocessor returned status "+resp.Status, nil)
	}

	var forest latex.Forest
	if err := json.NewDecoder(resp.Body).Decode(&forest); err != nil {
		return nil, domain.NewUpstreamError("decoding preprocessor response", err)
	}
	return forest, nil
}

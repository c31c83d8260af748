package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/DavidAlphaFox/texsearch/domain"
)

// CouchStore talks to the external document store over its CouchDB-ish
// HTTP surface: a paged by-sequence listing for the change feed, and
// plain GETs for single documents.
type CouchStore struct {
	baseURL string
	client  *http.Client
}

// NewCouchStore creates a document store client for the given database
// URL.
func NewCouchStore(baseURL string) *CouchStore {
	return &CouchStore{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type changeRow struct {
	ID    string `json:"id"`
	Key   int64  `json:"key"`
	Value struct {
		Deleted bool `json:"deleted"`
	} `json:"value"`
	Doc *domain.Document `json:"doc"`
}

type changesPage struct {
	Rows []changeRow `json:"rows"`
}

// ChangesSince returns up to limit document updates with change
// sequence strictly above since, ordered by sequence. The listing's
// startkey is inclusive, so the bound is shifted by one to keep the
// already-applied boundary row out of every batch.
func (s *CouchStore) ChangesSince(ctx context.Context, since int64, limit int) ([]domain.DocumentUpdate, error) {
	u := fmt.Sprintf("%s/_all_docs_by_seq?startkey=%d&limit=%d&include_docs=true", s.baseURL, since+1, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, domain.NewInternalError("building change feed request", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, domain.NewUpstreamError("document store unreachable", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewUpstreamError("change feed returned status "+resp.Status, nil)
	}

	var page changesPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, domain.NewUpstreamError("decoding change feed", err)
	}

	updates := make([]domain.DocumentUpdate, 0, len(page.Rows))
	for _, row := range page.Rows {
		updates = append(updates, domain.DocumentUpdate{
			DocID:   row.ID,
			Seq:     row.Key,
			Deleted: row.Value.Deleted,
			Doc:     row.Doc,
		})
	}
	return updates, nil
}

// FetchDocument retrieves one document by id.
func (s *CouchStore) FetchDocument(ctx context.Context, docID string) (*domain.Document, error) {
	u := s.baseURL + "/" + url.PathEscape(docID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, domain.NewInternalError("building document request", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, domain.NewUpstreamError("document store unreachable", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewUpstreamError("document "+docID+" returned status "+resp.Status, nil)
	}

	var doc domain.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, domain.NewUpstreamError("decoding document "+docID, err)
	}
	if doc.ID == "" {
		doc.ID = docID
	}
	return &doc, nil
}

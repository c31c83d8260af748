package domain

import (
	"github.com/DavidAlphaFox/texsearch/internal/latex"
)

// Document is one corpus unit: a set of preprocessed LaTeX fragments
// keyed by fragment id, with the original source string of each
// fragment kept verbatim for response materialization.
type Document struct {
	ID      string                  `json:"_id"`
	Source  map[string]string       `json:"source"`
	Content map[string]latex.Forest `json:"content"`
}

// DocumentUpdate is one entry of the store's monotone change feed.
// Doc is nil for deletions.
type DocumentUpdate struct {
	DocID   string
	Seq     int64
	Deleted bool
	Doc     *Document
}

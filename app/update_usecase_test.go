package app

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/DavidAlphaFox/texsearch/domain"
	"github.com/DavidAlphaFox/texsearch/internal/index"
	"github.com/DavidAlphaFox/texsearch/internal/latex"
	"github.com/DavidAlphaFox/texsearch/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	updates []domain.DocumentUpdate
	docs    map[string]*domain.Document
	err     error
}

func (f *fakeStore) ChangesSince(ctx context.Context, since int64, limit int) ([]domain.DocumentUpdate, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.DocumentUpdate
	for _, u := range f.updates {
		if u.Seq > since && u.Seq <= since+int64(limit) {
			out = append(out, u)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) FetchDocument(ctx context.Context, docID string) (*domain.Document, error) {
	doc, ok := f.docs[docID]
	if !ok {
		return nil, domain.NewUpstreamError("no such document: "+docID, nil)
	}
	return doc, nil
}

type noopProgress struct{}

func (noopProgress) StartBatch(int)              {}
func (noopProgress) Step()                       {}
func (noopProgress) FinishBatch(int, int, int64) {}

func text(values ...string) latex.Forest {
	f := make(latex.Forest, len(values))
	for i, v := range values {
		f[i] = latex.NewText(v)
	}
	return f
}

func doc(id string, fragments map[string]latex.Forest) *domain.Document {
	d := &domain.Document{ID: id, Source: map[string]string{}, Content: map[string]latex.Forest{}}
	for fragID, tokens := range fragments {
		d.Source[fragID] = tokens.String()
		d.Content[fragID] = tokens
	}
	return d
}

func initSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index_store")
	require.NoError(t, storage.Empty().Save(path))
	return path
}

func TestRunAppliesUpdatesToFixedPoint(t *testing.T) {
	path := initSnapshot(t)
	store := &fakeStore{updates: []domain.DocumentUpdate{
		{DocID: "docA", Seq: 1, Doc: doc("docA", map[string]latex.Forest{"docA#eq0": text("x")})},
		{DocID: "docB", Seq: 2, Doc: doc("docB", map[string]latex.Forest{
			"docB#eq0": text("y"),
			"docB#eq1": text("y", "z"),
		})},
	}}

	useCase := NewUpdateUseCase(store, noopProgress{}, path, &bytes.Buffer{})
	require.NoError(t, useCase.Run(context.Background()))

	snap, err := storage.Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(2), snap.LastUpdate)
	assert.Equal(t, 3, snap.Tree.Len())
}

func TestRunReplacesAndDeletesDocuments(t *testing.T) {
	path := initSnapshot(t)
	store := &fakeStore{updates: []domain.DocumentUpdate{
		{DocID: "docA", Seq: 1, Doc: doc("docA", map[string]latex.Forest{"docA#eq0": text("x")})},
		{DocID: "docA", Seq: 2, Doc: doc("docA", map[string]latex.Forest{"docA#eq0b": text("q")})},
		{DocID: "docB", Seq: 3, Doc: doc("docB", map[string]latex.Forest{"docB#eq0": text("y")})},
		{DocID: "docB", Seq: 4, Deleted: true},
	}}

	useCase := NewUpdateUseCase(store, noopProgress{}, path, &bytes.Buffer{})
	require.NoError(t, useCase.Run(context.Background()))

	snap, err := storage.Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(4), snap.LastUpdate)
	assert.Equal(t, 1, snap.Tree.Len())

	// Only the replacement fragment answers queries.
	results, done, err := snap.Tree.NewSearch(index.NewEntry("", "", text("q"))).Next(context.Background(), 10)
	require.NoError(t, err)
	assert.True(t, done)
	require.Len(t, results, 1)
	assert.Equal(t, "docA#eq0b", results[0].FragmentID)
}

func TestRunSkipsBrokenUpdateAndContinues(t *testing.T) {
	path := initSnapshot(t)
	store := &fakeStore{updates: []domain.DocumentUpdate{
		{DocID: "docA", Seq: 1, Doc: doc("docA", map[string]latex.Forest{"docA#eq0": text("x")})},
		{DocID: "docBad", Seq: 2}, // not deleted, but no payload
		{DocID: "docC", Seq: 3, Doc: doc("docC", map[string]latex.Forest{"docC#eq0": text("z")})},
	}}

	log := &bytes.Buffer{}
	useCase := NewUpdateUseCase(store, noopProgress{}, path, log)
	require.NoError(t, useCase.Run(context.Background()))

	snap, err := storage.Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), snap.LastUpdate)
	assert.Equal(t, 2, snap.Tree.Len())
	assert.Contains(t, log.String(), "docBad")
}

func TestRunLeavesStateUntouchedOnUpstreamFailure(t *testing.T) {
	path := initSnapshot(t)

	seeded := &fakeStore{updates: []domain.DocumentUpdate{
		{DocID: "docA", Seq: 1, Doc: doc("docA", map[string]latex.Forest{"docA#eq0": text("x")})},
	}}
	require.NoError(t, NewUpdateUseCase(seeded, noopProgress{}, path, &bytes.Buffer{}).Run(context.Background()))

	broken := &fakeStore{err: domain.NewUpstreamError("store down", nil)}
	err := NewUpdateUseCase(broken, noopProgress{}, path, &bytes.Buffer{}).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeUpstream, domain.CodeOf(err))

	snap, err := storage.Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.LastUpdate, "on-disk state must equal the pre-invocation state")
	assert.Equal(t, 1, snap.Tree.Len())
}

func TestRunWithoutSnapshotFails(t *testing.T) {
	err := NewUpdateUseCase(&fakeStore{}, noopProgress{}, filepath.Join(t.TempDir(), "absent"), &bytes.Buffer{}).
		Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodePersistence, domain.CodeOf(err))
}

func TestRunIsMonotone(t *testing.T) {
	path := initSnapshot(t)
	store := &fakeStore{updates: []domain.DocumentUpdate{
		{DocID: "docA", Seq: 5, Doc: doc("docA", map[string]latex.Forest{"docA#eq0": text("x")})},
	}}

	useCase := NewUpdateUseCase(store, noopProgress{}, path, &bytes.Buffer{})
	require.NoError(t, useCase.Run(context.Background()))
	snap, _ := storage.Load(path)
	first := snap.LastUpdate

	// A second run with nothing new never moves the sequence backwards.
	require.NoError(t, useCase.Run(context.Background()))
	snap, _ = storage.Load(path)
	assert.Equal(t, first, snap.LastUpdate)
}

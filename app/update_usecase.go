package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/DavidAlphaFox/texsearch/domain"
	"github.com/DavidAlphaFox/texsearch/internal/index"
	"github.com/DavidAlphaFox/texsearch/internal/storage"
)

// UpdateUseCase reconciles the document store's change feed into the
// persistent index. It is the single writer of the snapshot file;
// callers must not run two reconciliations concurrently.
type UpdateUseCase struct {
	store     domain.DocumentStore
	progress  domain.ProgressReporter
	indexPath string
	log       io.Writer
}

// NewUpdateUseCase creates an update use case over the given store.
func NewUpdateUseCase(store domain.DocumentStore, progress domain.ProgressReporter, indexPath string, log io.Writer) *UpdateUseCase {
	if log == nil {
		log = os.Stderr
	}
	return &UpdateUseCase{
		store:     store,
		progress:  progress,
		indexPath: indexPath,
		log:       log,
	}
}

// Run loads the snapshot and applies update batches until the change
// sequence stops advancing, persisting after every batch.
func (u *UpdateUseCase) Run(ctx context.Context) error {
	snap, err := storage.Load(u.indexPath)
	if err != nil {
		return domain.NewPersistenceError("loading index snapshot (run init first?)", err)
	}

	for {
		before := snap.LastUpdate
		snap, err = u.RunBatch(ctx, snap)
		if err != nil {
			return err
		}
		if snap.LastUpdate == before {
			return nil
		}
	}
}

// RunBatch pulls one batch of updates, applies them to the tree and
// persists the snapshot atomically. The returned snapshot is reloaded
// from disk, so the caller always continues from the persisted state.
// A per-update failure is logged and skipped; the sequence advances
// only for updates that applied cleanly.
func (u *UpdateUseCase) RunBatch(ctx context.Context, snap *storage.Snapshot) (*storage.Snapshot, error) {
	updates, err := u.store.ChangesSince(ctx, snap.LastUpdate, domain.UpdateBatchSize)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return snap, nil
	}

	u.progress.StartBatch(len(updates))
	applied, skipped := 0, 0
	for _, update := range updates {
		if err := applyUpdate(snap.Tree, update); err != nil {
			skipped++
			fmt.Fprintf(u.log, "skipping update %d for document %s: %v\n", update.Seq, update.DocID, err)
		} else {
			applied++
			snap.LastUpdate = update.Seq
		}
		u.progress.Step()
	}
	u.progress.FinishBatch(applied, skipped, snap.LastUpdate)

	if err := snap.Save(u.indexPath); err != nil {
		return nil, domain.NewPersistenceError("saving index snapshot", err)
	}
	reloaded, err := storage.Load(u.indexPath)
	if err != nil {
		return nil, domain.NewPersistenceError("reloading index snapshot", err)
	}
	return reloaded, nil
}

// applyUpdate replays one document mutation: any previous entries for
// the document are tombstoned unconditionally, then the new fragments
// are added unless the document was deleted.
func applyUpdate(tree *index.Tree, update domain.DocumentUpdate) error {
	if update.DocID == "" {
		return fmt.Errorf("update %d has no document id", update.Seq)
	}
	tree.DeleteDoc(update.DocID)
	if update.Deleted {
		return nil
	}
	if update.Doc == nil {
		return fmt.Errorf("update %d carries no document payload", update.Seq)
	}

	fragmentIDs := make([]string, 0, len(update.Doc.Content))
	for fragmentID := range update.Doc.Content {
		fragmentIDs = append(fragmentIDs, fragmentID)
	}
	sort.Strings(fragmentIDs)
	for _, fragmentID := range fragmentIDs {
		tree.Add(index.NewEntry(update.DocID, fragmentID, update.Doc.Content[fragmentID]))
	}
	return nil
}

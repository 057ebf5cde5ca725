package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dgallion1/docmask/internal/cms"
)

// Store is the subset of the CMS client the pipeline needs.
type Store interface {
	List(ctx context.Context) ([]cms.Record, error)
	Create(ctx context.Context, rec cms.Record) (string, error)
	Delete(ctx context.Context, contentID string) error
}

// Index maps proposal IDs to the CMS content IDs currently holding them.
type Index struct {
	mu   sync.Mutex
	byID map[string][]string
}

func NewIndex(records []cms.Record) *Index {
	idx := &Index{byID: make(map[string][]string)}
	for _, r := range records {
		idx.byID[r.ProposalID] = append(idx.byID[r.ProposalID], r.ID)
	}
	return idx
}

// LoadIndex lists every record in store.
func LoadIndex(ctx context.Context, store Store) (*Index, error) {
	recs, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	return NewIndex(recs), nil
}

// ContentIDs returns the content IDs recorded for proposalID.
func (i *Index) ContentIDs(proposalID string) []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]string(nil), i.byID[proposalID]...)
}

func (i *Index) set(proposalID string, contentIDs ...string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(contentIDs) == 0 {
		delete(i.byID, proposalID)
		return
	}
	i.byID[proposalID] = contentIDs
}

// Replace deletes any existing copies of rec and creates it anew. Failed
// deletes are logged and do not stop the upload.
func Replace(ctx context.Context, store Store, idx *Index, rec cms.Record, log *slog.Logger) (string, error) {
	var kept []string
	for _, id := range idx.ContentIDs(rec.ProposalID) {
		if err := store.Delete(ctx, id); err != nil {
			log.Warn("delete existing proposal failed", "proposal_id", rec.ProposalID, "content_id", id, "error", err)
			if !cms.IsNotFound(err) {
				kept = append(kept, id)
			}
			continue
		}
		log.Info("deleted existing proposal", "proposal_id", rec.ProposalID, "content_id", id)
	}
	idx.set(rec.ProposalID, kept...)

	id, err := store.Create(ctx, rec)
	if err != nil {
		return "", err
	}
	idx.set(rec.ProposalID, append(kept, id)...)
	return id, nil
}

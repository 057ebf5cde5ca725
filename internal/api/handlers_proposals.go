package api

import (
	"net/http"
	"sort"

	"github.com/dgallion1/docmask/internal/cms"
	"github.com/dgallion1/docmask/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

type proposalSummary struct {
	ContentID     string `json:"content_id"`
	ProposalID    string `json:"proposal_id"`
	Title         string `json:"title"`
	Status        string `json:"status"`
	Authors       string `json:"authors"`
	ReviewManager string `json:"review_manager"`
}

// handleListProposals lists the published proposals without their content.
func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.List(r.Context())
	if err != nil {
		jsonError(w, "failed to list proposals: "+err.Error(), http.StatusBadGateway)
		return
	}
	out := make([]proposalSummary, 0, len(recs))
	for _, rec := range recs {
		out = append(out, proposalSummary{
			ContentID:     rec.ID,
			ProposalID:    rec.ProposalID,
			Title:         rec.Title,
			Status:        rec.Status,
			Authors:       rec.Authors,
			ReviewManager: rec.ReviewManager,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProposalID != out[j].ProposalID {
			return out[i].ProposalID < out[j].ProposalID
		}
		return out[i].ContentID < out[j].ContentID
	})
	writeJSON(w, http.StatusOK, map[string]any{"proposals": out})
}

// handleDeleteProposal removes every published copy of a proposal.
func (s *Server) handleDeleteProposal(w http.ResponseWriter, r *http.Request) {
	proposalID := chi.URLParam(r, "proposalID")
	ctx := r.Context()

	idx, err := pipeline.LoadIndex(ctx, s.store)
	if err != nil {
		jsonError(w, "failed to list proposals: "+err.Error(), http.StatusBadGateway)
		return
	}
	ids := idx.ContentIDs(proposalID)
	if len(ids) == 0 {
		jsonError(w, "proposal not found", http.StatusNotFound)
		return
	}

	deleted, failed := 0, 0
	for _, id := range ids {
		if err := s.store.Delete(ctx, id); err != nil && !cms.IsNotFound(err) {
			s.log.Warn("delete proposal failed", "proposal_id", proposalID, "content_id", id, "error", err)
			failed++
			continue
		}
		deleted++
	}

	code := http.StatusOK
	if failed > 0 {
		code = http.StatusBadGateway
	}
	writeJSON(w, code, map[string]any{
		"proposal_id": proposalID,
		"deleted":     deleted,
		"failed":      failed,
	})
}

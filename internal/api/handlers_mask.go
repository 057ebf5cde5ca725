package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/dgallion1/docmask/internal/htmlconv"
	"github.com/dgallion1/docmask/internal/masker"
)

type maskRequest struct {
	Markdown string  `json:"markdown"`
	Seed     *uint64 `json:"seed"`
}

type maskResponse struct {
	Text     string          `json:"text"`
	HTML     string          `json:"html,omitempty"`
	Metadata masker.Metadata `json:"metadata"`
	Tokens   int             `json:"tokens"`
	Masked   int             `json:"masked"`
	Seed     uint64          `json:"seed"`
}

// handleMask masks one document synchronously. The body is raw Markdown or
// a JSON maskRequest. A seed query parameter overrides both the body and the
// configured seed. Each request gets its own stream, so the same input and
// seed always produce the same output.
func (s *Server) handleMask(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("body exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	req := maskRequest{Markdown: string(data)}
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "application/json" {
		req = maskRequest{}
		if err := json.Unmarshal(data, &req); err != nil {
			jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	seed := s.cfg.MaskSeed
	if req.Seed != nil {
		seed = *req.Seed
	}
	if v := r.URL.Query().Get("seed"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			jsonError(w, "seed must be an unsigned integer", http.StatusBadRequest)
			return
		}
		seed = n
	}

	m := masker.New(s.oracle, masker.NewStream(seed), masker.Config{Probability: s.cfg.MaskProbability})
	res := m.MaskDocument(req.Markdown)
	resp := maskResponse{
		Text:     res.Text,
		Metadata: res.Metadata,
		Tokens:   res.Tokens,
		Masked:   res.Masked,
		Seed:     seed,
	}
	if r.URL.Query().Get("html") == "true" {
		resp.HTML, err = htmlconv.Convert(res.Text)
		if err != nil {
			jsonError(w, "render html: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docmask/internal/cms"
	"github.com/dgallion1/docmask/internal/config"
	"github.com/dgallion1/docmask/internal/masker"
	"github.com/dgallion1/docmask/internal/nouns"
	"github.com/dgallion1/docmask/internal/pipeline"
	"github.com/dgallion1/docmask/internal/wordfreq"
)

const testKey = "secret"

type memStore struct {
	mu      sync.Mutex
	records []cms.Record
	next    int
}

func (s *memStore) List(context.Context) ([]cms.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]cms.Record(nil), s.records...), nil
}

func (s *memStore) Create(_ context.Context, rec cms.Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	rec.ID = fmt.Sprintf("c%d", s.next)
	s.records = append(s.records, rec)
	return rec.ID, nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if r.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return &cms.StatusError{StatusCode: http.StatusNotFound}
}

type fixture struct {
	srv   *Server
	store *memStore
	hist  *wordfreq.Aggregator
	stats *cms.Stats
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.Config{
		DocmaskAPIKey:    testKey,
		MicroCMSEndpoint: "proposals",
		MaskSeed:         42,
		MaskProbability:  1,
		WorkerCount:      1,
		MaxQueueSize:     4,
		MaxUploadBytes:   1 << 20,
		JobTTL:           time.Hour,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := &memStore{}
	hist := wordfreq.NewAggregator()
	oracle := nouns.NewSet("compiler", "machine")
	orch := pipeline.NewOrchestrator(cfg, store, oracle, hist, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	stats := cms.NewStats(time.Hour)
	return &fixture{
		srv:   NewServer(orch, store, stats, oracle, hist, log, cfg),
		store: store,
		hist:  hist,
		stats: stats,
	}
}

func (f *fixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+testKey)
	}
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

const doc = "# Async\n\n* Status: Accepted\n\n## Motivation\n\nThe compiler builds a machine.\n"

func TestHealthIsPublic(t *testing.T) {
	f := newFixture(t)
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestAuthRequired(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/proposals", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/proposals", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = f.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid api key", decode(t, rec)["error"])
}

func TestMask_RawMarkdown(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, httptest.NewRequest(http.MethodPost, "/api/mask", strings.NewReader(doc)))
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode(t, rec)
	want := strings.Replace(doc, "compiler", strings.Repeat(masker.Glyph, 8), 1)
	want = strings.Replace(want, "machine.", strings.Repeat(masker.Glyph, 7)+".", 1)
	assert.Equal(t, want, out["text"])
	assert.Equal(t, float64(2), out["masked"])
	meta := out["metadata"].(map[string]any)
	assert.Equal(t, "Async", meta["title"])
	assert.Equal(t, "Accepted", meta["status"])
}

func TestMask_JSONBodyAndSeedOverride(t *testing.T) {
	f := newFixture(t)
	body := `{"markdown": "# T\n\n## M\n\nThe compiler runs.\n", "seed": 7}`

	req := httptest.NewRequest(http.MethodPost, "/api/mask?seed=9&html=true", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec := f.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode(t, rec)
	assert.Equal(t, float64(9), out["seed"])
	assert.Contains(t, out["html"], `<span class="masked">`)

	req = httptest.NewRequest(http.MethodPost, "/api/mask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, float64(7), decode(t, f.do(t, req))["seed"])
}

func TestMask_BadInput(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/mask", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, f.do(t, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/api/mask?seed=-1", strings.NewReader(doc))
	assert.Equal(t, http.StatusBadRequest, f.do(t, req).Code)
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/publish", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestPublish_QueuesAndCompletes(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, uploadRequest(t, "0042-async.md", doc))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	out := decode(t, rec)
	assert.Equal(t, "0042", out["proposal_id"])
	pollURL := out["poll_url"].(string)

	require.Eventually(t, func() bool {
		rec := f.do(t, httptest.NewRequest(http.MethodGet, pollURL, nil))
		return rec.Code == http.StatusOK && decode(t, rec)["status"] == string(pipeline.StatusCompleted)
	}, 5*time.Second, 10*time.Millisecond)

	recs, _ := f.store.List(context.Background())
	require.Len(t, recs, 1)
	assert.Equal(t, "0042", recs[0].ProposalID)
	assert.Equal(t, "Async", recs[0].Title)
	assert.Equal(t, 1, f.hist.Documents())
}

func TestPublish_RejectsNonMarkdown(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, uploadRequest(t, "notes.pdf", "x"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unsupported file type: .pdf", decode(t, rec)["error"])
}

func TestPublishStatus_UnknownJob(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/publish/nope/status", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProposals_ListAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.store.Create(ctx, cms.Record{ProposalID: "0002", Title: "B", Content: "<p>x</p>"})
	_, _ = f.store.Create(ctx, cms.Record{ProposalID: "0001", Title: "A"})
	_, _ = f.store.Create(ctx, cms.Record{ProposalID: "0001", Title: "A again"})

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/proposals", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode(t, rec)["proposals"].([]any)
	require.Len(t, list, 3)
	first := list[0].(map[string]any)
	assert.Equal(t, "0001", first["proposal_id"])
	assert.NotContains(t, first, "content")

	rec = f.do(t, httptest.NewRequest(http.MethodDelete, "/api/proposals/0001", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decode(t, rec)["deleted"])

	recs, _ := f.store.List(ctx)
	require.Len(t, recs, 1)
	assert.Equal(t, "0002", recs[0].ProposalID)

	rec = f.do(t, httptest.NewRequest(http.MethodDelete, "/api/proposals/0001", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	f.stats.Record(120, false)
	f.hist.AddText("masking masking proposal")

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/stats/cms", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, "proposals", out["endpoint"])
	assert.NotNil(t, out["stats"])

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/stats/words?top=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	words := decode(t, rec)["words"].([]any)
	require.Len(t, words, 1)
	assert.Equal(t, "masking", words[0].(map[string]any)["word"])

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/api/stats/words?top=zero", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"0001-a.md":           "0001-a.md",
		"../../etc/passwd":    "passwd",
		`C:\docs\0002-b.md`:   "0002-b.md",
		"":                    "unnamed",
		"..md":                "_md",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), in)
	}
}

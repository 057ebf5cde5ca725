package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dgallion1/docmask/internal/cms"
	"github.com/dgallion1/docmask/internal/htmlconv"
	"github.com/dgallion1/docmask/internal/masker"
	"github.com/dgallion1/docmask/internal/proposal"
	"github.com/dgallion1/docmask/internal/wordfreq"
)

// Prepared is a masked proposal ready for upload.
type Prepared struct {
	Proposal *proposal.Proposal
	Result   masker.Result
	Record   cms.Record
}

// Prepare masks p with m and renders the CMS record.
func Prepare(p *proposal.Proposal, m *masker.Masker) (*Prepared, error) {
	res := m.MaskDocument(p.Body)
	content, err := htmlconv.Convert(res.Text)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", p.Filename, err)
	}
	return &Prepared{
		Proposal: p,
		Result:   res,
		Record: cms.Record{
			Title:         res.Metadata.Title,
			Content:       content,
			ProposalID:    p.ID,
			Status:        res.Metadata.Status,
			Authors:       res.Metadata.AuthorList(),
			ReviewManager: res.Metadata.ReviewManager,
		},
	}, nil
}

// Summary reports a batch run.
type Summary struct {
	Processed int
	Published int
	Failed    int
	Tokens    int
	Masked    int
}

// Publisher masks a batch of proposal files and replaces them in the CMS.
type Publisher struct {
	Store     Store // nil runs without uploading.
	Oracle    masker.NounOracle
	Mask      masker.Config
	Seed      uint64
	Workers   int
	OutputDir string // When set, masked Markdown and HTML are written here.
	Hist      *wordfreq.Aggregator
	Log       *slog.Logger
}

type fileResult struct {
	prep *Prepared
	err  error
}

// Run processes files in the given order. With one worker all documents
// share a single stream seeded with Seed; with more, each document gets a
// stream derived from Seed and its proposal ID. Per-file failures are
// logged and counted, never returned.
func (p *Publisher) Run(ctx context.Context, files []string) (Summary, error) {
	log := p.Log
	if log == nil {
		log = slog.Default()
	}
	if p.Hist == nil {
		p.Hist = wordfreq.NewAggregator()
	}

	var idx *Index
	if p.Store != nil {
		log.Info("fetching published proposals")
		var err error
		idx, err = LoadIndex(ctx, p.Store)
		if err != nil {
			return Summary{}, fmt.Errorf("load cms index: %w", err)
		}
	}

	var sum Summary
	for i, r := range p.prepareAll(files) {
		if ctx.Err() != nil {
			return sum, ctx.Err()
		}
		sum.Processed++
		flog := log.With("file", files[i])
		if r.err != nil {
			flog.Error("prepare failed", "error", r.err)
			sum.Failed++
			continue
		}
		sum.Tokens += r.prep.Result.Tokens
		sum.Masked += r.prep.Result.Masked
		p.Hist.AddText(r.prep.Proposal.Body)

		if p.OutputDir != "" {
			if err := writeOutputs(p.OutputDir, r.prep); err != nil {
				flog.Error("write output failed", "error", err)
				sum.Failed++
				continue
			}
		}
		if p.Store == nil {
			continue
		}

		id, err := Replace(ctx, p.Store, idx, r.prep.Record, flog)
		if err != nil {
			flog.Error("upload failed", "proposal_id", r.prep.Record.ProposalID, "error", err)
			sum.Failed++
			continue
		}
		sum.Published++
		flog.Info("uploaded proposal", "proposal_id", r.prep.Record.ProposalID, "content_id", id,
			"masked", r.prep.Result.Masked)
	}
	return sum, nil
}

// prepareAll masks every file, returning results in input order.
func (p *Publisher) prepareAll(files []string) []fileResult {
	results := make([]fileResult, len(files))

	if p.Workers <= 1 {
		m := masker.New(p.Oracle, masker.NewStream(p.Seed), p.Mask)
		for i, f := range files {
			results[i] = prepareFile(f, func(*proposal.Proposal) *masker.Masker { return m })
		}
		return results
	}

	perDoc := func(doc *proposal.Proposal) *masker.Masker {
		return masker.New(p.Oracle, masker.StreamFor(p.Seed, doc.ID), p.Mask)
	}
	sem := make(chan struct{}, p.Workers)
	var wg sync.WaitGroup
	for i, f := range files {
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = prepareFile(f, perDoc)
		}()
	}
	wg.Wait()
	return results
}

func prepareFile(path string, maskerFor func(*proposal.Proposal) *masker.Masker) fileResult {
	doc, err := proposal.Load(path)
	if err != nil {
		return fileResult{err: err}
	}
	prep, err := Prepare(doc, maskerFor(doc))
	return fileResult{prep: prep, err: err}
}

func writeOutputs(dir string, prep *Prepared) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	base := strings.TrimSuffix(prep.Proposal.Filename, filepath.Ext(prep.Proposal.Filename))
	if err := os.WriteFile(filepath.Join(dir, base+".md"), []byte(prep.Result.Text), 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, base+".html"), []byte(prep.Record.Content), 0o644)
}

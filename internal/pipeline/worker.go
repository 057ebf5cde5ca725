package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docmask/internal/config"
	"github.com/dgallion1/docmask/internal/masker"
	"github.com/dgallion1/docmask/internal/proposal"
	"github.com/dgallion1/docmask/internal/wordfreq"
)

// Worker processes a single publish job.
type Worker struct {
	store  Store
	oracle masker.NounOracle
	hist   *wordfreq.Aggregator
	log    *slog.Logger
	cfg    config.Config
}

func NewWorker(store Store, oracle masker.NounOracle, hist *wordfreq.Aggregator, log *slog.Logger, cfg config.Config) *Worker {
	return &Worker{
		store:  store,
		oracle: oracle,
		hist:   hist,
		log:    log,
		cfg:    cfg,
	}
}

// Process masks the uploaded proposal and replaces it in the CMS. Each job
// draws from a stream keyed by its proposal ID, so results do not depend on
// which worker picks the job up or when.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "proposal_id", job.ProposalID)
	defer job.releaseData()

	// Phase 1: Mask
	job.SetStatus(StatusMasking, "masking")
	doc, err := proposal.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "masking")
		return
	}

	m := masker.New(w.oracle, masker.StreamFor(w.cfg.MaskSeed, doc.ID), masker.Config{Probability: w.cfg.MaskProbability})
	prep, err := Prepare(doc, m)
	if err != nil {
		log.Error("prepare failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "masking")
		return
	}
	job.SetMasked(prep.Result)
	if w.hist != nil {
		w.hist.AddText(doc.Body)
	}
	log.Info("masked proposal", "tokens", prep.Result.Tokens, "masked", prep.Result.Masked)

	// Phase 2: Publish
	job.SetStatus(StatusPublishing, "publishing")
	idx, err := LoadIndex(ctx, w.store)
	if err != nil {
		log.Error("cms index failed", "error", err)
		job.AddError(fmt.Sprintf("index: %s", err))
		job.SetStatus(StatusFailed, "publishing")
		return
	}
	id, err := Replace(ctx, w.store, idx, prep.Record, log)
	if err != nil {
		log.Error("upload failed", "error", err)
		job.AddError(fmt.Sprintf("upload: %s", err))
		job.SetStatus(StatusFailed, "publishing")
		return
	}
	job.SetContentID(id)
	job.SetStatus(StatusCompleted, "done")
	log.Info("published proposal", "content_id", id)
}

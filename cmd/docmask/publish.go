package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/docmask/internal/cms"
	"github.com/dgallion1/docmask/internal/masker"
	"github.com/dgallion1/docmask/internal/pipeline"
	"github.com/dgallion1/docmask/internal/proposal"
	"github.com/dgallion1/docmask/internal/wordfreq"
	"github.com/spf13/cobra"
)

func publishCmd() *cobra.Command {
	var (
		glob      string
		workers   int
		dryRun    bool
		artifacts string
		outputDir string
		nounsFile string
		top       int
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Mask every proposal and replace it in microCMS",
		Long: `Mask every proposal matching --glob in file name order, delete any
published copy of each proposal and upload the masked version.
A word-frequency histogram of the unmasked corpus is written to
the artifacts directory.

With --workers 1 (the default) the run draws from one random stream
and reproduces earlier sequential runs exactly. Higher values mask
documents in parallel with one stream per proposal.

Example:
  docmask publish
  docmask publish --glob 'proposals/00*.md' --dry-run --output masked/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(os.Stderr)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("glob") {
				glob = cfg.ProposalsGlob
			}
			if !cmd.Flags().Changed("artifacts") {
				artifacts = cfg.ArtifactsDir
			}
			if !dryRun {
				if err := cfg.ValidatePublish(); err != nil {
					return err
				}
			}

			files, err := proposal.Glob(glob)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no proposals match %q", glob)
			}

			oracle, err := loadOracle(nounsFile, cfg, log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			hist := wordfreq.NewAggregator()
			pub := &pipeline.Publisher{
				Oracle:    oracle,
				Mask:      masker.Config{Probability: cfg.MaskProbability},
				Seed:      cfg.MaskSeed,
				Workers:   workers,
				OutputDir: outputDir,
				Hist:      hist,
				Log:       log,
			}
			var client *cms.Client
			if !dryRun {
				client = cms.NewClient(cfg.CMSURL(), cfg.MicroCMSAPIKey, cfg.CMSTimeout)
				defer client.Close()
				pub.Store = client
			}

			log.Info("publishing proposals", "files", len(files), "workers", workers, "dry_run", dryRun)
			sum, err := pub.Run(ctx, files)
			if err != nil {
				return err
			}
			log.Info("publish finished",
				"processed", sum.Processed,
				"published", sum.Published,
				"failed", sum.Failed,
				"tokens", sum.Tokens,
				"masked", sum.Masked,
			)
			if client != nil {
				log.Info("cms latency", "stats", client.Stats.Snapshot())
			}

			entries := hist.Top(top)
			path, err := wordfreq.WriteArtifact(artifacts, entries)
			if err != nil {
				return fmt.Errorf("write histogram: %w", err)
			}
			log.Info("wrote histogram", "path", path)
			if err := wordfreq.WriteChart(cmd.OutOrStdout(), entries, chartWidth()); err != nil {
				return err
			}

			if sum.Failed > 0 {
				return fmt.Errorf("%d of %d proposals failed", sum.Failed, sum.Processed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&glob, "glob", "proposals/*.md", "Proposal files to publish (default from PROPOSALS_GLOB)")
	cmd.Flags().IntVar(&workers, "workers", 1, "Documents masked in parallel")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Mask without contacting the CMS")
	cmd.Flags().StringVar(&artifacts, "artifacts", "artifacts", "Directory for the histogram artifact (default from ARTIFACTS_DIR)")
	cmd.Flags().StringVar(&outputDir, "output", "", "Also write masked Markdown and HTML to this directory")
	cmd.Flags().StringVar(&nounsFile, "nouns-file", "", "Newline-separated noun list used instead of the tagger")
	cmd.Flags().IntVar(&top, "top", 20, "Words kept in the histogram")

	return cmd
}

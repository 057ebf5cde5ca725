package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dgallion1/docmask/internal/masker"
	"github.com/dgallion1/docmask/internal/proposal"
	"github.com/spf13/cobra"
)

func maskCmd() *cobra.Command {
	var (
		seed        uint64
		probability float64
		metadata    bool
		nounsFile   string
	)

	cmd := &cobra.Command{
		Use:   "mask [file]",
		Short: "Mask one proposal and print the result",
		Long: `Mask a single Markdown proposal and print the masked text.
Reads standard input when no file is given. Front matter is stripped.

Example:
  docmask mask proposals/0001-async.md --seed 7
  cat draft.md | docmask mask --nouns-file nouns.txt
  docmask mask proposals/0001-async.md --metadata`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("seed") {
				seed = cfg.MaskSeed
			}
			if !cmd.Flags().Changed("probability") {
				probability = cfg.MaskProbability
			}
			if probability < 0 || probability > 1 {
				return fmt.Errorf("probability must be within [0, 1], got %g", probability)
			}

			var (
				in   io.Reader = cmd.InOrStdin()
				name           = "stdin.md"
			)
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in, name = f, args[0]
			}
			doc, err := proposal.Parse(in, name)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if metadata {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(masker.ExtractMetadata(doc.Body))
			}

			oracle, err := loadOracle(nounsFile, cfg, log)
			if err != nil {
				return err
			}
			m := masker.New(oracle, masker.NewStream(seed), masker.Config{Probability: probability})
			res := m.MaskDocument(doc.Body)
			log.Info("masked document", "file", name, "tokens", res.Tokens, "masked", res.Masked)
			_, err = io.WriteString(out, res.Text)
			return err
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 42, "Random seed (default from MASK_SEED)")
	cmd.Flags().Float64Var(&probability, "probability", 0.3, "Chance that an eligible noun is masked (default from MASK_PROBABILITY)")
	cmd.Flags().BoolVar(&metadata, "metadata", false, "Print the header metadata as JSON instead of masking")
	cmd.Flags().StringVar(&nounsFile, "nouns-file", "", "Newline-separated noun list used instead of the tagger")

	return cmd
}

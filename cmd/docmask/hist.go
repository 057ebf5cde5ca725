package main

import (
	"fmt"
	"os"

	"github.com/dgallion1/docmask/internal/proposal"
	"github.com/dgallion1/docmask/internal/wordfreq"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const defaultChartWidth = 80

func histCmd() *cobra.Command {
	var (
		top    int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "hist [files...]",
		Short: "Print a word-frequency histogram of proposals",
		Long: `Count the words of the given proposals (or PROPOSALS_GLOB when no
files are given) and print the most frequent ones as a bar chart
or JSON.

Example:
  docmask hist proposals/*.md --top 10
  docmask hist --json > hist.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(os.Stderr)
			if err != nil {
				return err
			}
			files := args
			if len(files) == 0 {
				if files, err = proposal.Glob(cfg.ProposalsGlob); err != nil {
					return err
				}
			}
			if len(files) == 0 {
				return fmt.Errorf("no proposals to count")
			}

			hist := wordfreq.NewAggregator()
			for _, f := range files {
				doc, err := proposal.Load(f)
				if err != nil {
					log.Error("load failed", "file", f, "error", err)
					continue
				}
				hist.AddText(doc.Body)
			}

			entries := hist.Top(top)
			if asJSON {
				return wordfreq.WriteJSON(cmd.OutOrStdout(), entries)
			}
			return wordfreq.WriteChart(cmd.OutOrStdout(), entries, chartWidth())
		},
	}

	cmd.Flags().IntVar(&top, "top", 20, "Number of words to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a chart")

	return cmd
}

// chartWidth is the terminal width of stdout, or a fixed width when stdout
// is not a terminal.
func chartWidth() int {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	return defaultChartWidth
}

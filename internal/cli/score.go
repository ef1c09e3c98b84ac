package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lrvideckis/keygen/pkg/penalty"
	"github.com/lrvideckis/keygen/pkg/pipeline"
)

// scoreCommand creates the score command for reference scoring.
func (c *CLI) scoreCommand() *cobra.Command {
	var (
		config   string
		layout   string
		noCache  bool
		detailed bool
		topN     int
	)

	cmd := &cobra.Command{
		Use:   "score <corpus>",
		Short: "Score a layout against a corpus",
		Long: `Score a layout against a corpus.

Scores the reference layout (or a named layout from the config) and prints
the absolute total and the per-character average. With --detailed it also
prints a per-term breakdown with the windows contributing the highest cost
to each term.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runScore(cmd, args[0], config, layout, noCache, detailed, topN)
		},
	}

	cmd.Flags().StringVar(&config, "config", "", "TOML config with geometry, weights and layouts")
	cmd.Flags().StringVarP(&layout, "layout", "l", "", "named layout from the config (default: reference)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVarP(&detailed, "detailed", "d", false, "print a per-term breakdown")
	cmd.Flags().IntVar(&topN, "top-windows", 5, "windows to show per term in detailed mode")

	return cmd
}

func (c *CLI) runScore(cmd *cobra.Command, corpusPath, config, layoutName string, noCache, detailed bool, topN int) error {
	ctx := cmd.Context()

	corpus, err := loadCorpus(corpusPath)
	if err != nil {
		return fmt.Errorf("load corpus %s: %w", corpusPath, err)
	}
	if len(corpus) == 0 {
		printWarning("Corpus is empty; the per-character average is undefined and reported as 0")
	}

	setup, err := pipeline.LoadSetup(config)
	if err != nil {
		return err
	}
	lay := setup.Reference
	if layoutName != "" {
		named, ok := setup.Layouts[layoutName]
		if !ok {
			return fmt.Errorf("no layout named %q in configuration", layoutName)
		}
		lay = named
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	p := newProgress(c.Logger)
	res, breakdown, info, err := runner.Score(ctx, corpus, lay, setup, detailed)
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("Scored %d corpus bytes", len(corpus)))

	printSuccess("Score complete")
	printStats(len(corpus), 0, info.CompileHit || info.ScoreHit)
	printNewline()
	fmt.Println(lay.String())
	printKeyValue("total", fmt.Sprintf("%.4f", res.Total))
	printKeyValue("average", fmt.Sprintf("%.6f per char", res.Average))

	if breakdown != nil {
		printNewline()
		fmt.Println(StyleTitle.Render("Per-term breakdown"))
		for _, term := range penalty.Terms {
			printKeyValue(string(term), fmt.Sprintf("%.4f", breakdown.Total(term)))
			for _, wc := range breakdown.TopWindows(term, topN) {
				printDetail("%-6q %10.4f", wc.Window, wc.Cost)
			}
		}
	}
	return nil
}

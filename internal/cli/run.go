package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lrvideckis/keygen/pkg/pipeline"
	"github.com/lrvideckis/keygen/pkg/search"
	"github.com/lrvideckis/keygen/pkg/store"
)

// searchFlags are the knobs shared by the run and refine commands.
type searchFlags struct {
	config   string
	start    string
	top      int
	swaps    int
	noCache  bool
	save     bool
	storeURI string
}

func (f *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.config, "config", "", "TOML config with geometry, weights and layouts")
	cmd.Flags().StringVar(&f.start, "start", "", "named layout from the config to start from (default: reference)")
	cmd.Flags().IntVarP(&f.top, "top", "t", search.DefaultTop, "number of top layouts to keep")
	cmd.Flags().IntVarP(&f.swaps, "swaps", "s", search.DefaultSwaps, "maximum swaps per mutation")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.save, "save", false, "persist the best layouts to the result store")
	cmd.Flags().StringVar(&f.storeURI, "store", "", "result store: empty for the local file store, or a mongodb:// URI")
}

// runCommand creates the run command for simulated-annealing search.
func (c *CLI) runCommand() *cobra.Command {
	var (
		flags      searchFlags
		iterations int
		restarts   int
		seed       int64
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   "run <corpus>",
		Short: "Search for low-penalty layouts with simulated annealing",
		Long: `Search for low-penalty layouts with simulated annealing.

The corpus file is compiled once into quartad frequencies (cached by content
hash), then independent annealing chains mutate the starting layout with
random swaps, accepting regressions with decreasing probability as the
temperature falls. The best layouts across all chains are reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.OptimizeOptions{
				Mode: pipeline.ModeAnneal,
				Search: search.Options{
					Iterations: iterations,
					Restarts:   restarts,
					Swaps:      flags.swaps,
					Top:        flags.top,
					Seed:       seed,
				},
				Start: flags.start,
			}
			return c.runSearch(cmd, args[0], flags, opts, watch)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&iterations, "iterations", "i", search.DefaultIterations, "annealing iterations per restart")
	cmd.Flags().IntVarP(&restarts, "restarts", "r", search.DefaultRestarts, "parallel annealing restarts")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0: derive from the clock)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "show live search progress")

	return cmd
}

// runSearch loads the corpus, executes the pipeline and reports results.
// Shared by run and refine.
func (c *CLI) runSearch(cmd *cobra.Command, corpusPath string, flags searchFlags, opts pipeline.OptimizeOptions, watch bool) error {
	ctx := withLogger(cmd.Context(), c.Logger)

	corpus, err := loadCorpus(corpusPath)
	if err != nil {
		return fmt.Errorf("load corpus %s: %w", corpusPath, err)
	}

	setup, err := pipeline.LoadSetup(flags.config)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var stopUI func()
	if watch && opts.Mode == pipeline.ModeAnneal {
		opts.Search.Progress, stopUI = startSearchUI(ctx, opts.Search.Restarts)
	} else {
		spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Searching (%s)...", opts.Mode))
		spinner.Start()
		stopUI = spinner.Stop
	}

	result, err := runner.Optimize(ctx, corpus, setup, opts)
	stopUI()
	if err != nil {
		// Optimize returns a nil result when it fails before the search
		// phase, even if the context was already cancelled.
		if ctx.Err() != nil && result != nil && len(result.Candidates) > 0 {
			printWarning("Search interrupted; reporting best layouts so far")
		} else {
			return err
		}
	}

	printSuccess("Search complete")
	printStats(len(corpus), result.Stats.Windows, result.CacheInfo.CompileHit)
	printNewline()
	printKeyValue("baseline", fmt.Sprintf("%.6f per char", result.Baseline.Average))

	for i, cand := range result.Candidates {
		printNewline()
		fmt.Println(StyleTitle.Render(fmt.Sprintf("#%d", i+1)) + "  " +
			StyleNumber.Render(fmt.Sprintf("%.6f per char", cand.Average)) + "  " +
			StyleDim.Render(fmt.Sprintf("total %.2f", cand.Total)))
		fmt.Println(cand.Layout.String())
	}

	if flags.save && len(result.Candidates) > 0 {
		if err := c.saveCandidates(ctx, cmd, flags, opts.Mode, result); err != nil {
			return err
		}
	}

	if len(result.Candidates) > 0 && opts.Mode == pipeline.ModeAnneal {
		printNextStep("Polish the winner", "keygen refine "+corpusPath)
	}
	return nil
}

// saveCandidates persists the run's candidates to the configured store.
func (c *CLI) saveCandidates(ctx context.Context, cmd *cobra.Command, flags searchFlags, mode string, result *pipeline.Result) error {
	st, err := c.newStore(cmd, flags.storeURI)
	if err != nil {
		return fmt.Errorf("open result store: %w", err)
	}
	defer st.Close(ctx)

	logger := loggerFromContext(ctx)
	for _, cand := range result.Candidates {
		text, err := cand.Layout.MarshalText()
		if err != nil {
			return err
		}
		rec := store.NewRecord(string(text), result.CorpusHash, mode, cand.Total, cand.Average)
		if err := st.Save(ctx, rec); err != nil {
			return fmt.Errorf("save layout: %w", err)
		}
		logger.Debug("saved candidate", "id", rec.ID, "average", cand.Average)
		printDetail("saved %s", rec.ID)
	}
	printSuccess("Saved %d layouts", len(result.Candidates))
	return nil
}

package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lrvideckis/keygen/pkg/cache"
	"github.com/lrvideckis/keygen/pkg/errors"
	"github.com/lrvideckis/keygen/pkg/keyboard"
	"github.com/lrvideckis/keygen/pkg/penalty"
	"github.com/lrvideckis/keygen/pkg/search"
)

// quartadTTL bounds how long compiled tables live in shared caches. Content
// hashing already guarantees correctness; the TTL only caps storage.
const quartadTTL = 30 * 24 * time.Hour

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Close releases the runner's cache backend.
func (r *Runner) Close() {
	_ = r.Cache.Close()
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Windows     int
	CompileTime time.Duration
	SearchTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	CompileHit bool // Whether the quartad table came from cache
	ScoreHit   bool // Whether a scalar score came from cache
}

// Result contains the outputs of one Optimize run.
type Result struct {
	// Candidates are the best layouts found, best first.
	Candidates []search.Candidate
	// Baseline is the starting layout's score.
	Baseline penalty.Result
	// CorpusHash identifies the corpus the run was scored against.
	CorpusHash string
	// Stats and CacheInfo report timings and cache behavior.
	Stats     Stats
	CacheInfo CacheInfo
}

// CompileQuartads returns the quartad table for corpus under the setup's
// reference position map, consulting the cache first. The reported bool is
// true on a cache hit.
func (r *Runner) CompileQuartads(ctx context.Context, corpus string, ref keyboard.Layout) (penalty.QuartadTable, bool, error) {
	refText, _ := ref.MarshalText()
	key := r.Keyer.QuartadKey(cache.Hash([]byte(corpus)), cache.Hash(refText))

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		var table penalty.QuartadTable
		if err := json.Unmarshal(data, &table); err == nil {
			return table, true, nil
		}
		// Corrupt entry: fall through and recompile.
		_ = r.Cache.Delete(ctx, key)
	} else if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeCache, err, "get quartads")
	}

	table := penalty.CompileQuartads(corpus, ref.PositionMap())
	if data, err := json.Marshal(table); err == nil {
		if err := r.Cache.Set(ctx, key, data, quartadTTL); err != nil {
			r.Logger.Debug("quartad cache write failed", "err", err)
		}
	}
	return table, false, nil
}

// Score evaluates one layout against the corpus. Scalar results are cached;
// a detailed breakdown is always computed fresh since observers cannot be
// serialized meaningfully.
func (r *Runner) Score(ctx context.Context, corpus string, lay keyboard.Layout, setup *Setup, detailed bool) (penalty.Result, *penalty.Breakdown, CacheInfo, error) {
	var info CacheInfo

	table, hit, err := r.CompileQuartads(ctx, corpus, setup.Reference)
	if err != nil {
		return penalty.Result{}, nil, info, err
	}
	info.CompileHit = hit

	model := setup.Model()
	if detailed {
		bd := penalty.NewBreakdown()
		res := model.ScoreCorpus(table, len(corpus), lay, bd)
		return res, bd, info, nil
	}

	layText, _ := lay.MarshalText()
	weightsData, _ := json.Marshal(setup.Weights)
	key := r.Keyer.ScoreKey(cache.Hash([]byte(corpus)), cache.Hash(layText), cache.Hash(weightsData))

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		var res penalty.Result
		if err := json.Unmarshal(data, &res); err == nil {
			info.ScoreHit = true
			return res, nil, info, nil
		}
		_ = r.Cache.Delete(ctx, key)
	}

	res := model.ScoreCorpus(table, len(corpus), lay, nil)
	if data, err := json.Marshal(res); err == nil {
		if err := r.Cache.Set(ctx, key, data, quartadTTL); err != nil {
			r.Logger.Debug("score cache write failed", "err", err)
		}
	}
	return res, nil, info, nil
}

// Optimize runs the complete compile → search pipeline.
func (r *Runner) Optimize(ctx context.Context, corpus string, setup *Setup, opts OptimizeOptions) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if len(corpus) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyCorpus, "corpus is empty")
	}

	start := setup.Reference
	if opts.Start != "" {
		lay, ok := setup.Layouts[opts.Start]
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "no layout named %q in configuration", opts.Start)
		}
		start = lay
	}

	result := &Result{CorpusHash: cache.Hash([]byte(corpus))}

	compileStart := time.Now()
	table, hit, err := r.CompileQuartads(ctx, corpus, setup.Reference)
	if err != nil {
		return nil, err
	}
	result.Stats.CompileTime = time.Since(compileStart)
	result.Stats.Windows = len(table)
	result.CacheInfo.CompileHit = hit

	r.Logger.Info("compiled corpus",
		"bytes", len(corpus),
		"windows", len(table),
		"duration", result.Stats.CompileTime)

	model := setup.Model()
	result.Baseline = model.ScoreCorpus(table, len(corpus), start, nil)

	if opts.Search.Logger == nil {
		opts.Search.Logger = r.Logger
	}

	searchStart := time.Now()
	var candidates []search.Candidate
	switch opts.Mode {
	case ModeRefine:
		candidates, err = search.Refine(ctx, table, len(corpus), start, model, opts.Search)
	default:
		candidates, err = search.Anneal(ctx, table, len(corpus), start, model, opts.Search)
	}
	result.Stats.SearchTime = time.Since(searchStart)
	result.Candidates = candidates
	if err != nil {
		return result, err
	}

	r.Logger.Info("search finished",
		"mode", opts.Mode,
		"candidates", len(candidates),
		"duration", result.Stats.SearchTime)

	return result, nil
}

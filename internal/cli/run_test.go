package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/lrvideckis/keygen/pkg/errors"
	"github.com/lrvideckis/keygen/pkg/pipeline"
	"github.com/lrvideckis/keygen/pkg/search"
)

func TestRunSearchCancelledWithEmptyCorpus(t *testing.T) {
	// An interrupt arriving around an early pipeline failure must surface
	// the error, not dereference the absent result.
	dir := t.TempDir()
	corpus := filepath.Join(dir, "corpus.txt")
	if err := os.WriteFile(corpus, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := &cobra.Command{}
	cmd.SetContext(ctx)

	c := New(io.Discard, LogInfo)
	opts := pipeline.OptimizeOptions{
		Mode: pipeline.ModeAnneal,
		Search: search.Options{
			Iterations: 1,
			Restarts:   1,
			Top:        1,
			Seed:       1,
		},
	}
	err := c.runSearch(cmd, corpus, searchFlags{noCache: true}, opts, false)
	if err == nil {
		t.Fatal("expected an error for an empty corpus")
	}
	if !errors.Is(err, errors.ErrCodeEmptyCorpus) {
		t.Fatalf("error = %v, want code %s", err, errors.ErrCodeEmptyCorpus)
	}
}

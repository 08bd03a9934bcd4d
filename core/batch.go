package core

import (
	"context"
	"time"

	"github.com/hydrolab/hmpi/core/agg"
	"github.com/hydrolab/hmpi/core/algo"
	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/hydrolab/hmpi/schema"
	"golang.org/x/sync/errgroup"
)

// ExecuteBatch calculates every input sample concurrently, records each run and prints
// the ranking. It serves as the main entry point for the 'batch' command.
func ExecuteBatch(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()

	samples, err := LoadSamples(cfg.InputPath)
	if err != nil {
		return err
	}
	store := runStore(mgr)
	resolved, err := resolveParams(cfg, store, cfg.SchemeName)
	if err != nil {
		return err
	}

	results, err := calculateBatch(ctx, samples, resolved.Params, cfg.Workers)
	if err != nil {
		return err
	}

	recorded := 0
	for i, sample := range samples {
		if _, err := recordRun(ctx, store, sample, results[i], resolved); err != nil {
			contract.LogWarn("failed to record calculation run for sample "+sample.ID, err)
			continue
		}
		recorded++
	}
	contract.Logger.Debug().Int("samples", len(samples)).Int("recorded", recorded).Msg("batch calculated")

	summary := schema.Summarize(results)
	ranked := algo.RankSamples(results, cfg.ResultLimit)
	return writer.WriteBatch(schema.EnrichSamples(ranked), summary, cfg, time.Since(start))
}

// calculateBatch fans samples out over a bounded worker pool. Each goroutine writes its own
// slot, so results keep the input order. Cancellation stops the remaining samples.
func calculateBatch(ctx context.Context, samples []schema.Sample, p agg.Params, workers int) ([]schema.SampleResult, error) {
	results := make([]schema.SampleResult, len(samples))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, sample := range samples {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = calculateSample(sample, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Package pipeline runs the full cleaning pipeline for one (language, n)
// pair: merge, POS filtering, contraction splitting, case merging, the
// pattern passes, shares and the final truncated table. Every stage that can
// shrink the table is followed by the truncation-safety check.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/casemerge"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/cleaning"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/contraction"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/exclusion"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/guard"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/language"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/merger"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/ngram"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/postag"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/share"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/tableio"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/config"
	pkgerrors "github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/tracing"
)

// Runner executes pairs against one immutable configuration. It holds no
// per-pair state, so a single Runner may run several pairs concurrently.
type Runner struct {
	cfg     *config.Config
	lists   *exclusion.Config
	metrics *metrics.Metrics
}

// NewRunner creates a Runner. m may be nil.
func NewRunner(cfg *config.Config, lists *exclusion.Config, m *metrics.Metrics) *Runner {
	return &Runner{cfg: cfg, lists: lists, metrics: m}
}

// run is the state of a single pair's execution.
type run struct {
	*Runner
	pair    Pair
	bound   int64
	acc     Accounting
	diagDir string
}

// Run processes one pair to completion. Failures are returned as
// *pkgerrors.PairError naming the stage that failed.
func (r *Runner) Run(ctx context.Context, pair Pair) (*Outcome, error) {
	traceID := tracing.NewTraceID()
	ctx, root := tracing.StartSpan(ctx, "pair "+pair.String(), traceID)
	pairLog := logger.WithPair(ctx, "pipeline", pair.Lang, pair.N).With("trace_id", traceID)
	start := time.Now()

	if r.metrics != nil {
		r.metrics.PairsInFlight.Inc()
		defer r.metrics.PairsInFlight.Dec()
	}

	out, err := r.run(ctx, pair)
	root.End()
	root.Log(pairLog)

	status := "ok"
	switch {
	case err == nil:
		out.TraceID = traceID
		pairLog.Info("pair finished",
			"rows", len(out.Table),
			"cutoff", out.Cutoff,
			"bound", out.Accounting.TruncationBound,
			"freq_added", out.Accounting.FreqAdded,
			"freq_removed", out.Accounting.FreqRemoved,
			"output", out.OutputPath,
			"duration", time.Since(start),
		)
	case pkgerrors.IsTruncation(err):
		status = "truncated"
		pairLog.Error("pair aborted by truncation check", "stage", pkgerrors.Stage(err), "error", err)
	default:
		status = "failed"
		pairLog.Error("pair failed", "stage", pkgerrors.Stage(err), "error", err)
	}
	if r.metrics != nil {
		r.metrics.PairsTotal.WithLabelValues(pair.Lang, metrics.N(pair.N), status).Inc()
	}
	return out, err
}

func (r *Runner) run(ctx context.Context, pair Pair) (*Outcome, error) {
	profile, err := language.Lookup(pair.Lang)
	if err != nil {
		return nil, pkgerrors.NewPairError(pair.Lang, pair.N, StageConfig, err)
	}
	if !r.cfg.Pipeline.Builds(pair.N) {
		return nil, pkgerrors.NewPairError(pair.Lang, pair.N, StageConfig,
			pkgerrors.Newf(pkgerrors.ErrInvalidInput, "n=%d is not in pipeline.ns", pair.N))
	}
	k, ok := r.cfg.Pipeline.OutputSize(pair.Lang, pair.N)
	if !ok {
		return nil, pkgerrors.NewPairError(pair.Lang, pair.N, StageConfig,
			pkgerrors.Newf(pkgerrors.ErrInvalidInput, "no output size configured"))
	}
	perFile, ok := r.cfg.Pipeline.PerFileSize(pair.Lang, pair.N)
	if !ok {
		return nil, pkgerrors.NewPairError(pair.Lang, pair.N, StageConfig,
			pkgerrors.Newf(pkgerrors.ErrInvalidInput, "no per-file size configured"))
	}

	paths := r.cfg.Paths
	x := &run{
		Runner:  r,
		pair:    pair,
		diagDir: paths.Resolve(paths.DiagnosticsDir, pair.Lang, profile.Code, pair.N),
	}
	out := &Outcome{Pair: pair, Code: profile.Code}

	var t ngram.Table

	err = x.stage(ctx, StageMerge, func() error {
		dir := paths.Resolve(paths.PartialDir, pair.Lang, profile.Code, pair.N)
		files, err := tableio.PartialFiles(dir, pair.N)
		if err != nil {
			return err
		}
		res, err := merger.Merge(files, tableio.ReadOptions{
			MaxRows:      perFile,
			NormalizeNFC: r.cfg.Pipeline.NormalizeNFC,
		})
		if err != nil {
			return err
		}
		x.bound = res.Bound
		x.acc.TruncationBound = res.Bound
		if r.metrics != nil {
			r.metrics.TruncationBound.WithLabelValues(pair.Lang, metrics.N(pair.N)).Set(float64(res.Bound))
		}
		t = res.Table
		if err := x.writeDiag("0_raw", t.Head(k)); err != nil {
			return err
		}
		return guard.Check(t, k, x.bound)
	})
	if err != nil {
		return nil, err
	}

	err = x.stage(ctx, StagePOS, func() error {
		res := postag.Filter(t, pair.N)
		if pair.N == 1 {
			if err := guard.Check(res.WithPOS, k, x.bound); err != nil {
				return fmt.Errorf("with_pos branch: %w", err)
			}
			if err := x.writeDiag("1b_with_pos", res.WithPOS.Head(k)); err != nil {
				return err
			}
		}
		if err := guard.Check(res.NoPOS, k, x.bound); err != nil {
			return fmt.Errorf("no_pos branch: %w", err)
		}
		t = res.NoPOS
		return x.writeDiag("1a_no_pos", t.Head(k))
	})
	if err != nil {
		return nil, err
	}

	if profile.HasContractions() {
		err = x.stage(ctx, StageContraction, func() error {
			res := contraction.Split(t, pair.N, profile.ContractionMarker)
			x.acc.FreqAdded += res.Added
			for _, m := range contraction.SpillCounts(res.Spill) {
				if err := x.writeDiag(fmt.Sprintf("1c_split_to_%dgrams", m), res.Spill[m]); err != nil {
					return err
				}
			}
			out.Spill = res.Spill
			t = res.Table
			return guard.Check(t, k, x.bound)
		})
		if err != nil {
			return nil, err
		}
	}

	err = x.stage(ctx, StageCaseMerge, func() error {
		res := casemerge.Merge(t, r.cfg.Pipeline.CaseMergeCutoff, profile.Tag)
		t = res.Table
		return guard.Check(t, k, x.bound)
	})
	if err != nil {
		return nil, err
	}

	var report cleaning.Report
	err = x.stage(ctx, StageCleaning, func() error {
		t, report = cleaning.Run(t, cleaning.Build(profile, pair.N, r.lists))
		x.acc.FreqRemoved += report.Mass
		if r.metrics != nil {
			for _, s := range report.Stats {
				r.metrics.PassRowsRemoved.WithLabelValues(pair.Lang, s.Name).Add(float64(s.Rows))
				r.metrics.PassMassRemoved.WithLabelValues(pair.Lang, s.Name).Add(float64(s.Mass))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out.Passes = report.Stats

	err = x.stage(ctx, StageFinal, func() error {
		t.SortByFreq()
		if err := guard.Check(t, k, x.bound); err != nil {
			return err
		}
		out.Table = t.Head(k).Clone()
		out.Cutoff, _ = guard.Cutoff(t, k)
		out.Removed = removedAbove(report.Removed, out.Cutoff)
		if r.metrics != nil {
			r.metrics.FinalCutoff.WithLabelValues(pair.Lang, metrics.N(pair.N)).Set(float64(out.Cutoff))
		}
		return x.writeDiag("2_removed", out.Removed)
	})
	if err != nil {
		return nil, err
	}

	var extra []tableio.Column
	if pair.N == 1 {
		err = x.stage(ctx, StageShare, func() error {
			path := paths.Resolve(paths.TotalCountsFile, pair.Lang, profile.Code, pair.N)
			totals, err := share.ReadTotalsFile(path)
			if err != nil {
				return err
			}
			p := r.cfg.Pipeline
			total, err := share.CorpusTotal(totals, p.YearStart, p.YearEnd, x.acc.FreqAdded, x.acc.FreqRemoved)
			if err != nil {
				return err
			}
			cum, err := share.Cumulative(out.Table, total)
			if err != nil {
				return err
			}
			out.CorpusTotal = total
			out.Cumshare = cum
			extra = append(extra, share.Column(cum, p.CumshareDecimals))
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	err = x.stage(ctx, StageWrite, func() error {
		dir := paths.Resolve(paths.OutputDir, pair.Lang, profile.Code, pair.N)
		out.OutputPath = filepath.Join(dir, OutputFile(pair))
		return tableio.WriteFile(out.OutputPath, out.Table, extra...)
	})
	if err != nil {
		return nil, err
	}

	out.Accounting = x.acc
	return out, nil
}

// stage runs fn inside a child span, records its duration and tags any error
// with the pair and stage.
func (x *run) stage(ctx context.Context, name string, fn func() error) error {
	_, span := tracing.StartChildSpan(ctx, name)
	err := fn()
	span.End()
	if x.metrics != nil {
		x.metrics.StageDuration.WithLabelValues(name).Observe(span.Duration.Seconds())
	}
	if err != nil {
		span.SetAttr("error", err.Error())
		return pkgerrors.NewPairError(x.pair.Lang, x.pair.N, name, err)
	}
	return nil
}

func (x *run) writeDiag(suffix string, t ngram.Table) error {
	return tableio.WriteFile(filepath.Join(x.diagDir, DiagnosticFile(x.pair, suffix)), t)
}

// removedAbove returns the removed rows with frequency >= cutoff, sorted by
// descending frequency.
func removedAbove(removed ngram.Table, cutoff int64) ngram.Table {
	out := make(ngram.Table, 0)
	for _, r := range removed {
		if r.Freq >= cutoff {
			out = append(out, r)
		}
	}
	out.SortByFreq()
	return out
}

// DiagnosticFile names a diagnostic table, e.g. "1grams_french_0_raw.csv".
func DiagnosticFile(p Pair, suffix string) string {
	return fmt.Sprintf("%dgrams_%s_%s.csv", p.N, p.Lang, suffix)
}

// OutputFile names the final table, e.g. "1grams_french.csv".
func OutputFile(p Pair) string {
	return fmt.Sprintf("%dgrams_%s.csv", p.N, p.Lang)
}

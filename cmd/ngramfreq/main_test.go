package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/pipeline"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/config"
	pkgerrors "github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/errors"
)

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name      string
		langs, ns string
		wantLangs []string
		wantNs    []int
		wantErr   bool
	}{
		{"defaults kept", "", "", nil, nil, false},
		{"narrowed", "french, german", "1,2", []string{"french", "german"}, []int{1, 2}, false},
		{"unknown language", "klingon", "", nil, nil, true},
		{"bad n", "", "1,x", nil, nil, true},
		{"n without sizes", "", "6", nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load("")
			if err != nil {
				t.Fatal(err)
			}
			defaults := append([]string(nil), cfg.Pipeline.Langs...)
			err = applyFlags(cfg, tt.langs, tt.ns)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if tt.wantErr {
				return
			}
			wantLangs := tt.wantLangs
			if wantLangs == nil {
				wantLangs = defaults
			}
			if !reflect.DeepEqual(cfg.Pipeline.Langs, wantLangs) {
				t.Errorf("expected langs %v, got %v", wantLangs, cfg.Pipeline.Langs)
			}
			if tt.wantNs != nil && !reflect.DeepEqual(cfg.Pipeline.Ns, tt.wantNs) {
				t.Errorf("expected ns %v, got %v", tt.wantNs, cfg.Pipeline.Ns)
			}
		})
	}
}

func TestPairsOrder(t *testing.T) {
	cfg := &config.Config{Pipeline: config.PipelineConfig{Langs: []string{"french", "german"}, Ns: []int{1, 2}}}
	want := []pipeline.Pair{{Lang: "french", N: 1}, {Lang: "french", N: 2}, {Lang: "german", N: 1}, {Lang: "german", N: 2}}
	if got := pairs(cfg); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

type scriptedRunner struct {
	mu   sync.Mutex
	fail map[pipeline.Pair]bool
	ran  []pipeline.Pair
}

func (r *scriptedRunner) Run(_ context.Context, pair pipeline.Pair) (*pipeline.Outcome, error) {
	r.mu.Lock()
	r.ran = append(r.ran, pair)
	r.mu.Unlock()
	if r.fail[pair] {
		return nil, pkgerrors.NewPairError(pair.Lang, pair.N, pipeline.StageMerge, errors.New("boom"))
	}
	return &pipeline.Outcome{Pair: pair}, nil
}

func TestRunAllIsolatesFailures(t *testing.T) {
	all := []pipeline.Pair{{Lang: "french", N: 1}, {Lang: "french", N: 2}, {Lang: "german", N: 1}}
	runner := &scriptedRunner{fail: map[pipeline.Pair]bool{{Lang: "french", N: 2}: true}}
	failed := runAll(context.Background(), runner, pipeline.NewPublisher(0, 1, nil), all, 2)
	if failed != 1 {
		t.Errorf("expected one failure, got %d", failed)
	}
	if len(runner.ran) != 3 {
		t.Errorf("a failing pair must not stop the others, ran %v", runner.ran)
	}
}

func TestRunExitStatus(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "ngramfreq.yaml")
	yaml := "pipeline:\n  langs: [french]\n  ns: [1]\n" +
		"paths:\n" +
		"  partialDir: " + filepath.Join(root, "partial", "{lang}") + "\n" +
		"  diagnosticsDir: " + filepath.Join(root, "more", "{lang}") + "\n" +
		"  outputDir: " + filepath.Join(root, "out") + "\n" +
		"  totalCountsFile: " + filepath.Join(root, "totals", "{code}.txt") + "\n" +
		"  exclusionDir: " + filepath.Join(root, "exclude") + "\n" +
		"metrics:\n  enabled: false\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"unknown flag", []string{"-bogus"}, 2},
		{"unknown language", []string{"-config", cfgPath, "-langs", "klingon"}, 2},
		{"missing config", []string{"-config", filepath.Join(root, "missing.yaml")}, 1},
		{"pair without partial files", []string{"-config", cfgPath}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(tt.args); got != tt.want {
				t.Errorf("expected exit status %d, got %d", tt.want, got)
			}
		})
	}
}

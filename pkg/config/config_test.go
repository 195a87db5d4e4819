package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if k, ok := cfg.Pipeline.OutputSize("hebrew", 5); !ok || k != 80 {
		t.Errorf("expected hebrew n=5 output size 80, got %d", k)
	}
	if k, ok := cfg.Pipeline.PerFileSize("english-fiction", 1); !ok || k != 40000 {
		t.Errorf("expected english-fiction n=1 per-file size 40000, got %d", k)
	}
	if cfg.Pipeline.CaseMergeCutoff != 0.92 || cfg.Pipeline.YearStart != 2010 || cfg.Pipeline.YearEnd != 2019 {
		t.Errorf("unexpected pipeline defaults %+v", cfg.Pipeline)
	}
}

func TestLoadExampleFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "ngramfreq.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pipeline.Concurrency != 4 || cfg.Sinks.Timeout != 30*time.Second {
		t.Errorf("file values not applied: %+v %+v", cfg.Pipeline, cfg.Sinks)
	}
	if len(cfg.Pipeline.NumberOfMostFreq) != 9 {
		t.Errorf("sizes not in the file must keep their defaults")
	}
}

func TestLoadFileOverridesAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	yaml := `
pipeline:
  langs: [french]
  ns: [1]
  caseMergeCutoff: 0.5
sinks:
  redis: true
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NG_PIPELINE_CONCURRENCY", "3")
	t.Setenv("NG_SINKS_KAFKA", "true")
	t.Setenv("NG_PATHS_OUTPUT_DIR", "/tmp/out")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Pipeline.Langs) != 1 || cfg.Pipeline.CaseMergeCutoff != 0.5 {
		t.Errorf("file values not applied: %+v", cfg.Pipeline)
	}
	if cfg.Pipeline.Concurrency != 3 || !cfg.Sinks.Kafka || !cfg.Sinks.Redis || cfg.Paths.OutputDir != "/tmp/out" {
		t.Errorf("env overrides not applied: %+v %+v", cfg.Pipeline, cfg.Sinks)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no langs", func(c *Config) { c.Pipeline.Langs = nil }, "langs is empty"},
		{"years reversed", func(c *Config) { c.Pipeline.YearStart = 2020 }, "after yearEnd"},
		{"cutoff out of range", func(c *Config) { c.Pipeline.CaseMergeCutoff = 1.5 }, "caseMergeCutoff"},
		{"missing size", func(c *Config) { delete(c.Pipeline.NumberOfMostFreq, "german") }, "numberOfMostFreq missing for german"},
		{"missing per-file size", func(c *Config) { c.Pipeline.PerFileNumberOfMostFreq["french"] = map[int]int{1: 10} }, "perFileNumberOfMostFreq missing for french n=2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	p := PathsConfig{}
	got := p.Resolve("data/{lang}/totals-{code}-{n}.txt", "french", "fre", 2)
	if got != "data/french/totals-fre-2.txt" {
		t.Errorf("unexpected path %q", got)
	}
}

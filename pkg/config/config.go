// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for the
// cleaning pipeline, the file layout, and every publication sink (Postgres,
// Redis, Kafka) plus logging and metrics.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Paths    PathsConfig    `yaml:"paths"`
	Postgres PostgresConfig `yaml:"postgres"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	Sinks    SinksConfig    `yaml:"sinks"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// PipelineConfig holds the per-language output sizes and cleaning settings.
type PipelineConfig struct {
	Langs                   []string               `yaml:"langs"`
	Ns                      []int                  `yaml:"ns"`
	YearStart               int                    `yaml:"yearStart"`
	YearEnd                 int                    `yaml:"yearEnd"`
	NumberOfMostFreq        map[string]map[int]int `yaml:"numberOfMostFreq"`
	PerFileNumberOfMostFreq map[string]map[int]int `yaml:"perFileNumberOfMostFreq"`
	CaseMergeCutoff         float64                `yaml:"caseMergeCutoff"`
	CumshareDecimals        int                    `yaml:"cumshareDecimals"`
	NormalizeNFC            bool                   `yaml:"normalizeNFC"`
	Concurrency             int                    `yaml:"concurrency"`
}

// OutputSize returns number_of_most_freq[lang][n].
func (p PipelineConfig) OutputSize(lang string, n int) (int, bool) {
	k, ok := p.NumberOfMostFreq[lang][n]
	return k, ok
}

// Builds reports whether n is one of the configured ns. Exclusion lists are
// only loaded for these.
func (p PipelineConfig) Builds(n int) bool {
	return slices.Contains(p.Ns, n)
}

// PerFileSize returns per_file_number_of_most_freq[lang][n].
func (p PipelineConfig) PerFileSize(lang string, n int) (int, bool) {
	k, ok := p.PerFileNumberOfMostFreq[lang][n]
	return k, ok
}

// PathsConfig holds path templates. Templates may contain {lang}, {code} and
// {n} placeholders.
type PathsConfig struct {
	PartialDir      string `yaml:"partialDir"`
	DiagnosticsDir  string `yaml:"diagnosticsDir"`
	OutputDir       string `yaml:"outputDir"`
	TotalCountsFile string `yaml:"totalCountsFile"`
	ExclusionDir    string `yaml:"exclusionDir"`
}

// Resolve substitutes the placeholders of a path template.
func (p PathsConfig) Resolve(template string, lang string, code string, n int) string {
	return strings.NewReplacer(
		"{lang}", lang,
		"{code}", code,
		"{n}", strconv.Itoa(n),
	).Replace(template)
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	TablePublished string `yaml:"tablePublished"`
	RunRequests    string `yaml:"runRequests"`
}

// RedisConfig holds Redis connection parameters for the ranked lookup cache.
type RedisConfig struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	PoolSize  int           `yaml:"poolSize"`
	KeyPrefix string        `yaml:"keyPrefix"`
	KeyTTL    time.Duration `yaml:"keyTTL"`
}

// SinksConfig selects where finished tables are published after the CSV is
// written.
type SinksConfig struct {
	Postgres      bool          `yaml:"postgres"`
	Redis         bool          `yaml:"redis"`
	Kafka         bool          `yaml:"kafka"`
	Timeout       time.Duration `yaml:"timeout"`
	RetryAttempts int           `yaml:"retryAttempts"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with defaults for any missing
// values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every configured (lang, n) pair has both output sizes
// and that the numeric settings are in range.
func (c *Config) Validate() error {
	p := c.Pipeline
	if len(p.Langs) == 0 {
		return fmt.Errorf("config: pipeline.langs is empty")
	}
	if len(p.Ns) == 0 {
		return fmt.Errorf("config: pipeline.ns is empty")
	}
	if p.YearStart > p.YearEnd {
		return fmt.Errorf("config: yearStart %d is after yearEnd %d", p.YearStart, p.YearEnd)
	}
	if p.CaseMergeCutoff <= 0 || p.CaseMergeCutoff > 1 {
		return fmt.Errorf("config: caseMergeCutoff must be in (0, 1], got %v", p.CaseMergeCutoff)
	}
	if p.CumshareDecimals < 0 {
		return fmt.Errorf("config: cumshareDecimals must not be negative")
	}
	for _, lang := range p.Langs {
		for _, n := range p.Ns {
			if n < 1 {
				return fmt.Errorf("config: n must be positive, got %d", n)
			}
			k, ok := p.OutputSize(lang, n)
			if !ok || k <= 0 {
				return fmt.Errorf("config: numberOfMostFreq missing for %s n=%d", lang, n)
			}
			perFile, ok := p.PerFileSize(lang, n)
			if !ok || perFile <= 0 {
				return fmt.Errorf("config: perFileNumberOfMostFreq missing for %s n=%d", lang, n)
			}
		}
	}
	return nil
}

// defaultConfig returns the settings the published frequency lists were
// built with.
func defaultConfig() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			Langs: []string{
				"chinese_simplified", "english", "english-fiction", "french", "german",
				"hebrew", "italian", "russian", "spanish",
			},
			Ns:        []int{1, 2, 3, 4, 5},
			YearStart: 2010,
			YearEnd:   2019,
			NumberOfMostFreq: map[string]map[int]int{
				"chinese_simplified": {1: 10000, 2: 5000, 3: 3000, 4: 1000, 5: 1000},
				"english":            {1: 10000, 2: 5000, 3: 3000, 4: 1000, 5: 1000},
				"english-fiction":    {1: 10000, 2: 5000, 3: 3000, 4: 1000, 5: 1000},
				"french":             {1: 10000, 2: 5000, 3: 3000, 4: 1000, 5: 1000},
				"german":             {1: 10000, 2: 5000, 3: 3000, 4: 1000, 5: 1000},
				"hebrew":             {1: 10000, 2: 5000, 3: 1000, 4: 200, 5: 80},
				"italian":            {1: 10000, 2: 5000, 3: 3000, 4: 1000, 5: 1000},
				"russian":            {1: 10000, 2: 5000, 3: 3000, 4: 1000, 5: 1000},
				"spanish":            {1: 10000, 2: 5000, 3: 3000, 4: 1000, 5: 1000},
			},
			PerFileNumberOfMostFreq: map[string]map[int]int{
				"chinese_simplified": {1: 40000, 2: 25000, 3: 25000, 4: 25000, 5: 25000},
				"english":            {1: 25000, 2: 5000, 3: 3000, 4: 3000, 5: 5000},
				"english-fiction":    {1: 40000, 2: 10000, 3: 3000, 4: 3000, 5: 5000},
				"french":             {1: 25000, 2: 5000, 3: 3000, 4: 3000, 5: 5000},
				"german":             {1: 25000, 2: 5000, 3: 3000, 4: 10000, 5: 20000},
				"hebrew":             {1: 50000, 2: 50000, 3: 50000, 4: 50000, 5: 50000},
				"italian":            {1: 25000, 2: 5000, 3: 3000, 4: 3000, 5: 10000},
				"russian":            {1: 25000, 2: 25000, 3: 25000, 4: 25000, 5: 25000},
				"spanish":            {1: 25000, 2: 5000, 3: 3000, 4: 3000, 5: 5000},
			},
			CaseMergeCutoff:  0.92,
			CumshareDecimals: 6,
			Concurrency:      1,
		},
		Paths: PathsConfig{
			PartialDir:      "ngrams/more/{lang}/most_freq_ngrams_per_gz_file",
			DiagnosticsDir:  "ngrams/more/{lang}",
			OutputDir:       "ngrams",
			TotalCountsFile: "source-data/data_googlebooks-{code}-20200217/totalcounts_1.txt",
			ExclusionDir:    "source-data/extra_ngrams_to_exclude",
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "ngramfreq",
			User:            "ngramfreq",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "ngramfreq-worker",
			Topics: KafkaTopics{
				TablePublished: "ngram-table-published",
				RunRequests:    "ngram-run-requests",
			},
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			Password:  "",
			DB:        0,
			PoolSize:  10,
			KeyPrefix: "ngramfreq",
		},
		Sinks: SinksConfig{
			Timeout:       30 * time.Second,
			RetryAttempts: 3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads NG_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NG_PIPELINE_LANGS"); v != "" {
		cfg.Pipeline.Langs = strings.Split(v, ",")
	}
	if v := os.Getenv("NG_PIPELINE_CONCURRENCY"); v != "" {
		if c, err := strconv.Atoi(v); err == nil {
			cfg.Pipeline.Concurrency = c
		}
	}
	if v := os.Getenv("NG_PATHS_PARTIAL_DIR"); v != "" {
		cfg.Paths.PartialDir = v
	}
	if v := os.Getenv("NG_PATHS_DIAGNOSTICS_DIR"); v != "" {
		cfg.Paths.DiagnosticsDir = v
	}
	if v := os.Getenv("NG_PATHS_OUTPUT_DIR"); v != "" {
		cfg.Paths.OutputDir = v
	}
	if v := os.Getenv("NG_PATHS_TOTAL_COUNTS_FILE"); v != "" {
		cfg.Paths.TotalCountsFile = v
	}
	if v := os.Getenv("NG_PATHS_EXCLUSION_DIR"); v != "" {
		cfg.Paths.ExclusionDir = v
	}
	if v := os.Getenv("NG_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("NG_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("NG_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("NG_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("NG_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("NG_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("NG_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("NG_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("NG_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("NG_SINKS_POSTGRES"); v != "" {
		cfg.Sinks.Postgres = parseBool(v, cfg.Sinks.Postgres)
	}
	if v := os.Getenv("NG_SINKS_REDIS"); v != "" {
		cfg.Sinks.Redis = parseBool(v, cfg.Sinks.Redis)
	}
	if v := os.Getenv("NG_SINKS_KAFKA"); v != "" {
		cfg.Sinks.Kafka = parseBool(v, cfg.Sinks.Kafka)
	}
	if v := os.Getenv("NG_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("NG_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("NG_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

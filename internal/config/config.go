// Package config loads the retrieval core's configuration surface,
// matching the knobs enumerated in spec.md §6.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the complete retrieval-core configuration.
type Config struct {
	Version   int             `yaml:"version" json:"version"`
	Paths     PathsConfig     `yaml:"paths" json:"paths"`
	Retrieve  RetrieveConfig  `yaml:"retrieve" json:"retrieve"`
	Cache     CacheConfig     `yaml:"cache" json:"cache"`
	Citations CitationPolicy  `yaml:"citations" json:"citations"`
	Reranker  RerankerConfig  `yaml:"reranker" json:"reranker"`
	Server    ServerConfig    `yaml:"server" json:"server"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry"`
}

// PathsConfig locates the ingestion artifacts described in spec.md §6.
type PathsConfig struct {
	ChunksPath     string `yaml:"chunks_path" json:"chunks_path"`
	EmbeddingsPath string `yaml:"embeddings_path" json:"embeddings_path"`
	CPTIndexPath   string `yaml:"cpt_index_path" json:"cpt_index_path"`
	AliasIndexPath string `yaml:"alias_index_path" json:"alias_index_path"`
}

// RetrieveConfig carries the fan-out/rerank/result-size knobs from spec.md §6.
type RetrieveConfig struct {
	RetrieveM          int `yaml:"retrieve_m" json:"retrieve_m"`
	RerankN            int `yaml:"rerank_n" json:"rerank_n"`
	TopK               int `yaml:"top_k" json:"top_k"`
	RerankConcurrency  int `yaml:"rerank_concurrency" json:"rerank_concurrency"`
	MaxInFlightQueries int `yaml:"max_in_flight_queries" json:"max_in_flight_queries"`
	QueryTimeoutMS     int `yaml:"query_timeout_ms" json:"query_timeout_ms"`
}

// CacheConfig configures the Result Cache (spec.md §4.9).
type CacheConfig struct {
	MaxEntries        int    `yaml:"max_entries" json:"max_entries"`
	TTLSeconds        int    `yaml:"ttl_seconds" json:"ttl_seconds"`
	IndexFingerprint  string `yaml:"index_fingerprint" json:"index_fingerprint"`
	ComposerModelTag  string `yaml:"composer_model_tag" json:"composer_model_tag"`
}

// CitationPolicy configures select_citations (spec.md §4.8).
type CitationPolicy struct {
	AllowedDocTypes      []string `yaml:"allowed_doc_types" json:"allowed_doc_types"`
	DeniedDocTypes       []string `yaml:"denied_doc_types" json:"denied_doc_types"`
	DeniedAuthorityTiers []string `yaml:"denied_authority_tiers" json:"denied_authority_tiers"`
	MaxCitations         int      `yaml:"max_citations" json:"max_citations"`
	MinYear              int      `yaml:"min_year" json:"min_year"`
	FallbackCap          int      `yaml:"fallback_cap" json:"fallback_cap"`
}

// RerankerConfig is the kill switch from spec.md §6.
type RerankerConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// ServerConfig configures the MCP server transport.
type ServerConfig struct {
	Transport string `yaml:"transport" json:"transport"`
	Port      int    `yaml:"port" json:"port"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level         string `yaml:"level" json:"level"`
	FilePath      string `yaml:"file_path" json:"file_path"`
	WriteToStderr bool   `yaml:"write_to_stderr" json:"write_to_stderr"`
}

// TelemetryConfig configures the observability sink.
type TelemetryConfig struct {
	SQLitePath       string `yaml:"sqlite_path" json:"sqlite_path"`
	ZeroResultBuffer int    `yaml:"zero_result_buffer" json:"zero_result_buffer"`
}

// Default returns the documented defaults from spec.md §6.
func Default() Config {
	return Config{
		Version: 1,
		Paths: PathsConfig{
			ChunksPath:     "data/chunks.ndjson",
			EmbeddingsPath: "data/embeddings.bin",
		},
		Retrieve: RetrieveConfig{
			RetrieveM:          30,
			RerankN:            10,
			TopK:               5,
			RerankConcurrency:  4,
			MaxInFlightQueries: 64,
			QueryTimeoutMS:     3000,
		},
		Cache: CacheConfig{
			MaxEntries: 256,
			TTLSeconds: 600,
		},
		Citations: CitationPolicy{
			AllowedDocTypes: []string{
				"journal_article", "guideline", "systematic_review", "rct",
				"cohort", "case_series", "narrative_review", "coding_update",
			},
			DeniedDocTypes:       []string{"book_chapter"},
			DeniedAuthorityTiers: []string{"A1", "A2", "A3"},
			MaxCitations:         10,
			FallbackCap:          5,
		},
		Reranker: RerankerConfig{Enabled: true},
		Server:   ServerConfig{Transport: "stdio", Port: 0, LogLevel: "info"},
		Logging:  LoggingConfig{Level: "info", WriteToStderr: true},
		Telemetry: TelemetryConfig{
			ZeroResultBuffer: 100,
		},
	}
}

// Load reads and merges a YAML config file over the defaults.
// A missing file is not an error; Default() is returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks invariants that must hold before the server starts
// (spec.md §7 FatalConfig).
func (c Config) Validate() error {
	if c.Paths.ChunksPath == "" {
		return fmt.Errorf("paths.chunks_path must be set")
	}
	if c.Retrieve.TopK <= 0 || c.Retrieve.TopK > 50 {
		return fmt.Errorf("retrieve.top_k must be in [1,50], got %d", c.Retrieve.TopK)
	}
	if c.Retrieve.RetrieveM <= 0 {
		return fmt.Errorf("retrieve.retrieve_m must be positive")
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache.max_entries must be positive")
	}
	return nil
}

package caseselection

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// BM25Config holds the Okapi BM25 parameters
type BM25Config struct {
	K1      float64 `yaml:"k1"`
	B       float64 `yaml:"b"`
	Epsilon float64 `yaml:"epsilon"`
}

// EncoderConfig describes the embedding model used by the vector strategies
type EncoderConfig struct {
	ModelPath     string `yaml:"modelPath"`
	TokenizerPath string `yaml:"tokenizerPath"`
	OrtLibrary    string `yaml:"ortLibrary"`
	MaxSeqLen     int    `yaml:"maxSeqLen"`
	BatchSize     int    `yaml:"batchSize"`
	Workers       int    `yaml:"workers"`
	CacheSize     int    `yaml:"cacheSize"`
}

// Config controls one selection run
type Config struct {
	Strategy StrategyKind `yaml:"strategy"`
	// Number is the selection count per query (or per task)
	Number int `yaml:"number"`
	// Key is the record field used as the text signal
	Key string `yaml:"key"`
	// NoCamelSplit disables camel-case sub-word splitting for BM25
	NoCamelSplit bool `yaml:"noCamelSplit"`

	ClusterNumber int `yaml:"clusterNumber"`
	// ClusterSeed seeds k-means++ initialisation
	ClusterSeed   uint64 `yaml:"clusterSeed"`
	MaxIterations int    `yaml:"maxIterations"`

	// Seed seeds the default random source when the caller passes none
	Seed uint64 `yaml:"seed"`

	BM25    BM25Config    `yaml:"bm25"`
	Encoder EncoderConfig `yaml:"encoder"`
}

// DefaultConfig returns the configuration used when nothing is specified
func DefaultConfig() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults populates zero values with defaults
func (c *Config) ApplyDefaults() {
	if c.Strategy == "" {
		c.Strategy = StrategyBM25
	}
	if c.Number == 0 {
		c.Number = 5
	}
	if c.Key == "" {
		c.Key = "method_code"
	}
	if c.ClusterNumber == 0 {
		c.ClusterNumber = 5
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = 300
	}
	if c.BM25.K1 == 0 {
		c.BM25.K1 = 1.5
	}
	if c.BM25.B == 0 {
		c.BM25.B = 0.75
	}
	if c.BM25.Epsilon == 0 {
		c.BM25.Epsilon = 0.25
	}
	if c.Encoder.MaxSeqLen == 0 {
		c.Encoder.MaxSeqLen = 256
	}
	if c.Encoder.BatchSize == 0 {
		c.Encoder.BatchSize = 32
	}
	if c.Encoder.Workers == 0 {
		c.Encoder.Workers = 1
	}
	if c.Encoder.CacheSize == 0 {
		c.Encoder.CacheSize = 10000
	}
}

// Validate checks values that no strategy can work with
func (c Config) Validate() error {
	known := false
	for _, k := range Strategies {
		if c.Strategy == k {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, c.Strategy)
	}
	if c.Number < 1 {
		return fmt.Errorf("%w: number must be >= 1, got %d", ErrInvalidConfig, c.Number)
	}
	if c.Key == "" {
		return fmt.Errorf("%w: key is required", ErrInvalidConfig)
	}
	if c.Encoder.MaxSeqLen < 5 {
		return fmt.Errorf("%w: encoder maxSeqLen must leave room for boundary markers, got %d", ErrInvalidConfig, c.Encoder.MaxSeqLen)
	}
	if c.Encoder.BatchSize < 1 || c.Encoder.Workers < 1 {
		return fmt.Errorf("%w: encoder batchSize and workers must be positive", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads a YAML config file. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		cfg.ApplyDefaults()
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"benefits-rag/internal/models"
)

// LLMConfig configures one langchaingo-backed provider client.
type LLMConfig struct {
	Provider    string `yaml:"provider"` // "openai" or "ollama"
	BaseURL     string `yaml:"base_url"`
	Key         string `yaml:"key"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// Timeout returns the configured per-call timeout.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// ChunkingConfig controls how large documents are split before indexing.
type ChunkingConfig struct {
	Size                 int `yaml:"size"`
	Overlap              int `yaml:"overlap"`
	MaxChunksPerDocument int `yaml:"max_chunks_per_document"`
}

// RetrievalConfig holds search defaults applied to unset request fields.
type RetrievalConfig struct {
	MaxResults int     `yaml:"max_results"`
	Threshold  float64 `yaml:"threshold"`
}

// EmbeddingConfig bounds embedding input and batch parallelism.
type EmbeddingConfig struct {
	Dimension int `yaml:"dimension"`
	MaxChars  int `yaml:"max_chars"`
	Workers   int `yaml:"workers"`
}

// ChromemConfig contains settings for the chromem-go store.
type ChromemConfig struct {
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
	InMemory   bool   `yaml:"in_memory"`
}

// DatabaseConfig contains connection details for the pgvector store.
type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

// StoreConfig selects and configures the vector store implementation.
type StoreConfig struct {
	Type     string         `yaml:"type"` // "memory", "chromem" or "pgvector"
	Chromem  ChromemConfig  `yaml:"chromem"`
	Database DatabaseConfig `yaml:"database"`
}

// Config is the root application configuration.
type Config struct {
	EmbedLLM     LLMConfig       `yaml:"embed_llm"`
	InferenceLLM LLMConfig       `yaml:"inference_llm"`
	Chunking     ChunkingConfig  `yaml:"chunking"`
	Retrieval    RetrievalConfig `yaml:"retrieval"`
	Embedding    EmbeddingConfig `yaml:"embedding"`
	Store        StoreConfig     `yaml:"store"`
}

// LoadConfig reads a YAML config from path. ${VAR} references in the file
// are expanded from the environment before parsing.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Chunking.Size == 0 {
		cfg.Chunking.Size = models.DefaultChunkSize
	}
	if cfg.Chunking.Overlap == 0 {
		cfg.Chunking.Overlap = models.DefaultChunkOverlap
	}
	if cfg.Chunking.MaxChunksPerDocument == 0 {
		cfg.Chunking.MaxChunksPerDocument = models.DefaultMaxChunksPerDocument
	}
	if cfg.Retrieval.MaxResults == 0 {
		cfg.Retrieval.MaxResults = models.DefaultMaxResults
	}
	if cfg.Retrieval.Threshold == 0 {
		cfg.Retrieval.Threshold = models.DefaultThreshold
	}
	if cfg.Embedding.Dimension == 0 {
		cfg.Embedding.Dimension = 1536
	}
	if cfg.Embedding.MaxChars == 0 {
		cfg.Embedding.MaxChars = 30000
	}
	if cfg.Embedding.Workers == 0 {
		cfg.Embedding.Workers = 8
	}
	if cfg.EmbedLLM.TimeoutSecs == 0 {
		cfg.EmbedLLM.TimeoutSecs = 30
	}
	if cfg.InferenceLLM.TimeoutSecs == 0 {
		cfg.InferenceLLM.TimeoutSecs = 120
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = "memory"
	}
	if cfg.Store.Chromem.Collection == "" {
		cfg.Store.Chromem.Collection = "documents"
	}
}

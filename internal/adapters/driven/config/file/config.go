// Package file loads the TOML configuration file.
// Configuration lives in ~/.docrag/config.toml by default; a missing
// file yields the defaults so the tool works with zero setup.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultConfigDir is the directory under the user's home that holds
// the config file and the database.
const DefaultConfigDir = ".docrag"

// ChunkingConfig tunes the text splitter.
type ChunkingConfig struct {
	// ChunkSize is the nominal chunk length in characters.
	ChunkSize int `toml:"chunk_size"`

	// Overlap is the number of characters carried into the next chunk.
	Overlap int `toml:"overlap"`

	// MinChunkSize drops chunks shorter than this.
	MinChunkSize int `toml:"min_chunk_size"`

	// BoundaryBack is how far before a nominal cut the splitter looks
	// for a sentence boundary.
	BoundaryBack int `toml:"boundary_back"`

	// BoundaryForward is how far past a nominal cut the splitter looks
	// for a sentence boundary.
	BoundaryForward int `toml:"boundary_forward"`
}

// SearchConfig tunes retrieval.
type SearchConfig struct {
	// TopK is the default number of results.
	TopK int `toml:"top_k"`

	// Threshold is the minimum cosine similarity for semantic results.
	Threshold float64 `toml:"threshold"`

	// MaxContextLength bounds the assembled context string.
	MaxContextLength int `toml:"max_context_length"`
}

// EmbeddingConfig selects and tunes the embedding provider.
type EmbeddingConfig struct {
	// Provider is "ollama", "openai" or "" to disable embeddings.
	// Without a provider, documents are keyword-searchable only.
	Provider string `toml:"provider"`

	// Model overrides the provider's default model.
	Model string `toml:"model"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `toml:"base_url"`

	// APIKey authenticates against hosted providers. The
	// OPENAI_API_KEY environment variable takes precedence so the key
	// never has to live in the config file.
	APIKey string `toml:"api_key"`

	// RequestsPerSecond caps the provider request rate.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Config is the full application configuration.
type Config struct {
	// DataDir holds the SQLite database. Defaults to ~/.docrag/data.
	DataDir string `toml:"data_dir"`

	// Verbose enables debug logging.
	Verbose bool `toml:"verbose"`

	Chunking  ChunkingConfig  `toml:"chunking"`
	Search    SearchConfig    `toml:"search"`
	Embedding EmbeddingConfig `toml:"embedding"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Chunking: ChunkingConfig{
			ChunkSize:       500,
			Overlap:         50,
			MinChunkSize:    100,
			BoundaryBack:    100,
			BoundaryForward: 50,
		},
		Search: SearchConfig{
			TopK:             5,
			Threshold:        0.5,
			MaxContextLength: 2000,
		},
	}
}

// DefaultPath returns the standard config file location,
// ~/.docrag/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, DefaultConfigDir, "config.toml"), nil
}

// Load reads the config file at path, or the default location when
// path is empty. A missing file is not an error; defaults apply.
// Values present in the file override defaults field by field.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return cfg, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overlays environment variables onto the loaded config.
func applyEnv(cfg *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Embedding.APIKey = key
	}
}

// Save writes the config to path with restricted permissions, creating
// the parent directory if needed. Used by the init command to seed a
// commented starting point.
func (c Config) Save(path string) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

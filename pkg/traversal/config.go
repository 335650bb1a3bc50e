package traversal

import (
	"flag"
	"fmt"

	"github.com/Mc-Fr/Convertisseur/pkg/util"
)

const (
	DefaultWorkers       = 4
	DefaultMaxChunkBytes = 64 * 1024 * 1024 // 64MB
)

// Config holds the traversal engine settings.
type Config struct {
	// Workers is the number of goroutines claiming regions.
	Workers int `yaml:"workers"`

	// ReadOnly disables writing chunks back.
	ReadOnly bool `yaml:"read_only"`

	// MaxChunkBytes bounds the virtual size of one decoded chunk. 0 disables the bound.
	MaxChunkBytes int64 `yaml:"max_chunk_bytes"`
}

func (cfg *Config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	f.IntVar(&cfg.Workers, util.PrefixConfig(prefix, "workers"), DefaultWorkers, "Number of regions processed concurrently.")
	f.BoolVar(&cfg.ReadOnly, util.PrefixConfig(prefix, "read-only"), false, "Visit chunks without writing them back.")
	f.Int64Var(&cfg.MaxChunkBytes, util.PrefixConfig(prefix, "max-chunk-bytes"), DefaultMaxChunkBytes, "Virtual size budget for one decoded chunk, 0 for unlimited.")
}

// Validate checks if the traversal configuration is valid.
func (cfg *Config) Validate() error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", cfg.Workers)
	}
	if cfg.MaxChunkBytes < 0 {
		return fmt.Errorf("max chunk bytes cannot be negative")
	}
	return nil
}

// Package finder searches a world for the positions of a block or of the
// containers holding an item.
package finder

import (
	"context"
	"flag"
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/Mc-Fr/Convertisseur/pkg/block"
	"github.com/Mc-Fr/Convertisseur/pkg/region"
	"github.com/Mc-Fr/Convertisseur/pkg/registry"
	"github.com/Mc-Fr/Convertisseur/pkg/traversal"
	"github.com/Mc-Fr/Convertisseur/pkg/util"
)

// Version is reported in the banner.
const Version = "1.0"

// Config holds configuration for a search.
type Config struct {
	World string `yaml:"world"`
	Name  string `yaml:"name"`
	Meta  int    `yaml:"meta"`
	Items bool   `yaml:"items"`

	// Output is an optional Parquet report path.
	Output string `yaml:"output"`

	Traversal traversal.Config `yaml:"traversal"`
}

func (cfg *Config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	f.StringVar(&cfg.World, util.PrefixConfig(prefix, "world"), "", "World directory to search.")
	f.StringVar(&cfg.Name, util.PrefixConfig(prefix, "name"), "", "Registry name to look for, e.g. minecraft:chest.")
	f.IntVar(&cfg.Meta, util.PrefixConfig(prefix, "meta"), block.AnyMeta, "Metadata or damage value to match, -1 for any.")
	f.BoolVar(&cfg.Items, util.PrefixConfig(prefix, "items"), false, "Search items held by tile entities instead of blocks.")
	f.StringVar(&cfg.Output, util.PrefixConfig(prefix, "out"), "", "Write the positions to this Parquet file.")

	cfg.Traversal.RegisterFlagsAndApplyDefaults(prefix, f)
}

// Query returns the query described by the configuration.
func (cfg *Config) Query() Query {
	q := Query{Name: cfg.Name, Meta: cfg.Meta, Kind: KindBlock}
	if cfg.Items {
		q.Kind = KindItem
	}
	return q
}

// Validate checks if the finder configuration is valid.
func (cfg *Config) Validate() error {
	if cfg.World == "" {
		return fmt.Errorf("world directory cannot be empty")
	}
	if err := cfg.Query().Validate(); err != nil {
		return err
	}
	if err := cfg.Traversal.Validate(); err != nil {
		return fmt.Errorf("invalid traversal config: %w", err)
	}
	return nil
}

// Finder runs a search over a world. Chunks are never written back.
type Finder struct {
	cfg     Config
	visitor *Visitor
	engine  *traversal.Engine
	logger  log.Logger
}

// New loads the registry of cfg.World and prepares the search.
func New(cfg Config, metrics *traversal.Metrics, logger log.Logger) (*Finder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.Traversal.ReadOnly = true

	reg, err := registry.Load(cfg.World)
	if err != nil {
		return nil, err
	}
	if reg.Empty() {
		level.Warn(logger).Log("msg", "no block registry in level.dat, only numeric ids resolve", "world", cfg.World)
	}
	q := cfg.Query()
	if q.Kind == KindBlock {
		if _, ok := reg.Blocks.ID(q.Name); !ok {
			level.Warn(logger).Log("msg", "block not in registry, nothing will match", "name", q.Name)
		}
	}

	visitor := NewVisitor(q, reg)
	engine, err := traversal.New(cfg.Traversal, region.NewDir(cfg.World, region.CompressionZlib), visitor, metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	return &Finder{
		cfg:     cfg,
		visitor: visitor,
		engine:  engine,
		logger:  logger,
	}, nil
}

// Run searches the world and writes the Parquet report when configured.
func (f *Finder) Run(ctx context.Context) (traversal.Stats, error) {
	level.Info(f.logger).Log("msg", "searching", "query", f.cfg.Query())

	stats, err := f.engine.Run(ctx)
	if err != nil {
		return stats, err
	}

	positions := f.visitor.Positions()
	level.Info(f.logger).Log("msg", "search done", "matches", len(positions), "interrupted", stats.Interrupted)

	if f.cfg.Output != "" {
		if err := WriteParquet(f.cfg.Output, f.cfg.Query(), positions); err != nil {
			return stats, err
		}
		level.Info(f.logger).Log("msg", "report written", "path", f.cfg.Output)
	}
	return stats, nil
}

// Positions returns the sorted positions found so far.
func (f *Finder) Positions() []block.Pos {
	return f.visitor.Positions()
}

// Interrupt stops the running search after the chunks in flight.
func (f *Finder) Interrupt() {
	f.engine.Interrupt()
}

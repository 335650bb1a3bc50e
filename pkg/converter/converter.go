// Package converter rewrites the block ids of a world according to a rule
// file.
package converter

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/Mc-Fr/Convertisseur/pkg/region"
	"github.com/Mc-Fr/Convertisseur/pkg/registry"
	"github.com/Mc-Fr/Convertisseur/pkg/remap"
	"github.com/Mc-Fr/Convertisseur/pkg/traversal"
	"github.com/Mc-Fr/Convertisseur/pkg/util"
)

// Version is reported in the banner.
const Version = "1.2.1"

// Converter wires the registry, the compiled rules and the traversal
// engine of one conversion run.
type Converter struct {
	cfg     Config
	table   remap.Table
	visitor *Visitor
	engine  *traversal.Engine
	logger  log.Logger
}

// New loads the registry of cfg.World and compiles the rule file. Rule
// errors are returned as *remap.ParseError.
func New(cfg Config, metrics *traversal.Metrics, logger log.Logger) (*Converter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	reg, err := registry.Load(cfg.World)
	if err != nil {
		return nil, err
	}
	if reg.Empty() {
		level.Warn(logger).Log("msg", "no block registry in level.dat, only numeric ids resolve", "world", cfg.World)
	}

	level.Info(logger).Log("msg", "building id table")
	table, err := remap.CompileFile(filepath.Join(cfg.Rules, remap.RulesFile), reg.Blocks)
	if err != nil {
		return nil, err
	}
	level.Info(logger).Log("msg", "id table built", "entries", len(table))

	var replacer remap.Replacer = remap.NewRemapper(table)
	if cfg.Upgrade {
		replacer = remap.NewSlopeRemapper(table, reg.Blocks)
	}
	visitor := NewVisitor(replacer)

	compression, err := region.ParseCompression(cfg.Compression)
	if err != nil {
		return nil, err
	}
	engine, err := traversal.New(cfg.Traversal, region.NewDir(cfg.World, compression), visitor, metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	return &Converter{
		cfg:     cfg,
		table:   table,
		visitor: visitor,
		engine:  engine,
		logger:  logger,
	}, nil
}

// Table returns the compiled id table.
func (c *Converter) Table() remap.Table {
	return c.table
}

// Run converts the world.
func (c *Converter) Run(ctx context.Context) (traversal.Stats, error) {
	if c.cfg.Traversal.ReadOnly {
		level.Warn(c.logger).Log("msg", "read-only mode enabled, changes will be discarded")
	}
	level.Info(c.logger).Log("msg", "converting map", "world", filepath.Base(filepath.Clean(c.cfg.World)), "upgrade", c.cfg.Upgrade)

	stats, err := c.engine.Run(ctx)
	level.Info(c.logger).Log("msg", "conversion done", "cells_replaced", c.visitor.Replaced(), "chunks_written", stats.ChunksWritten, "interrupted", stats.Interrupted)
	return stats, err
}

// Interrupt stops the running conversion after the chunks in flight.
func (c *Converter) Interrupt() {
	c.engine.Interrupt()
}

// WriteBanner prints the framed program name and converter version.
func WriteBanner(w io.Writer, name string) error {
	return util.WriteBanner(w, name, Version)
}

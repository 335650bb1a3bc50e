package converter

import (
	"flag"
	"fmt"

	"github.com/Mc-Fr/Convertisseur/pkg/region"
	"github.com/Mc-Fr/Convertisseur/pkg/traversal"
	"github.com/Mc-Fr/Convertisseur/pkg/util"
)

// Config holds configuration for a conversion run.
type Config struct {
	// World is the world directory holding level.dat and region/.
	World string `yaml:"world"`

	// Rules is the directory holding the ids.cfg rule file.
	Rules string `yaml:"rules"`

	// Upgrade enables slope reorientation for worlds moving to the new slope layout.
	Upgrade bool `yaml:"upgrade"`

	// Compression is the scheme used for rewritten chunks (gzip, zlib, none).
	Compression string `yaml:"compression"`

	Traversal traversal.Config `yaml:"traversal"`
}

func (cfg *Config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	f.StringVar(&cfg.World, util.PrefixConfig(prefix, "world"), "", "World directory to convert.")
	f.StringVar(&cfg.Rules, util.PrefixConfig(prefix, "rules"), "", "Directory holding the ids.cfg rule file.")
	f.BoolVar(&cfg.Upgrade, util.PrefixConfig(prefix, "upgrade"), false, "Reorient slopes for the new metadata layout.")
	f.StringVar(&cfg.Compression, util.PrefixConfig(prefix, "compression"), region.CompressionZlib.String(), "Compression of rewritten chunks: gzip, zlib or none.")

	cfg.Traversal.RegisterFlagsAndApplyDefaults(prefix, f)
}

// Validate checks if the converter configuration is valid.
func (cfg *Config) Validate() error {
	if cfg.World == "" {
		return fmt.Errorf("world directory cannot be empty")
	}
	if cfg.Rules == "" {
		return fmt.Errorf("rules directory cannot be empty")
	}
	if _, err := region.ParseCompression(cfg.Compression); err != nil {
		return err
	}
	if err := cfg.Traversal.Validate(); err != nil {
		return fmt.Errorf("invalid traversal config: %w", err)
	}
	return nil
}

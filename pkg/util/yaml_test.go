package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	World   string `yaml:"world"`
	Workers int    `yaml:"workers"`
	Nested  struct {
		ReadOnly bool `yaml:"read_only"`
	} `yaml:"nested"`
}

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadYAMLFile(t *testing.T) {
	cfg := testConfig{World: "default", Workers: 4}
	path := writeFile(t, "workers: 8\nnested:\n  read_only: true\n")

	require.NoError(t, LoadYAMLFile(path, &cfg))
	require.Equal(t, "default", cfg.World)
	require.Equal(t, 8, cfg.Workers)
	require.True(t, cfg.Nested.ReadOnly)
}

func TestLoadYAMLFile_Empty(t *testing.T) {
	cfg := testConfig{Workers: 4}
	require.NoError(t, LoadYAMLFile(writeFile(t, ""), &cfg))
	require.Equal(t, 4, cfg.Workers)
}

func TestLoadYAMLFile_Errors(t *testing.T) {
	var cfg testConfig
	require.Error(t, LoadYAMLFile(filepath.Join(t.TempDir(), "missing.yaml"), &cfg))
	require.Error(t, LoadYAMLFile(writeFile(t, "unknown: 1\n"), &cfg))
	require.Error(t, LoadYAMLFile(writeFile(t, "workers: [1, 2]\n"), &cfg))
}

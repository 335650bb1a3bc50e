package util

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrefixConfig(t *testing.T) {
	require.Equal(t, "workers", PrefixConfig("", "workers"))
	require.Equal(t, "traversal.workers", PrefixConfig("traversal", "workers"))
}

func TestWriteBanner(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBanner(&buf, "Block Finder", "1.0"))
	require.Equal(t, "=====================\n= Block Finder v1.0 =\n=====================\n", buf.String())
}

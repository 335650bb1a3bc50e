package remap

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Mc-Fr/Convertisseur/pkg/block"
	"github.com/Mc-Fr/Convertisseur/pkg/nbt"
	"github.com/Mc-Fr/Convertisseur/pkg/registry"
)

func testNames() *registry.Table {
	names := registry.NewTable()
	names.Add("minecraft:stone", 1)
	names.Add("minecraft:dirt", 3)
	names.Add("minecraft:grass", 2)
	names.Add("mcfr_b_i:stair_slope", 300)
	names.Add("mcfr_b_i:big.block-1", 301)
	return names
}

func compile(t *testing.T, rules string) (Table, error) {
	t.Helper()
	return Compile(strings.NewReader(rules), testNames())
}

func TestCompile_AnyMetaToAnyMeta(t *testing.T) {
	table, err := compile(t, "17->12")
	require.NoError(t, err)
	require.Len(t, table, 16)
	for m := 0; m <= block.MaxMeta; m++ {
		require.Equal(t, block.ID{ID: 12, Meta: m}, table[block.ID{ID: 17, Meta: m}])
	}
}

func TestCompile_AnyMetaToExplicit(t *testing.T) {
	table, err := compile(t, "17->12/3")
	require.NoError(t, err)
	require.Len(t, table, 16)
	for m := 0; m <= block.MaxMeta; m++ {
		require.Equal(t, block.ID{ID: 12, Meta: 3}, table[block.ID{ID: 17, Meta: m}])
	}
}

func TestCompile_Explicit(t *testing.T) {
	table, err := compile(t, "18/1->19/2")
	require.NoError(t, err)
	require.Equal(t, Table{{ID: 18, Meta: 1}: {ID: 19, Meta: 2}}, table)
}

func TestCompile_Wildcard(t *testing.T) {
	table, err := compile(t, "257/6->*")
	require.NoError(t, err)
	require.Equal(t, Table{{ID: 257, Meta: 6}: {ID: 0, Meta: 0}}, table)

	table, err = compile(t, "257->*")
	require.NoError(t, err)
	require.Len(t, table, 16)
	require.Equal(t, block.ID{}, table[block.ID{ID: 257, Meta: 15}])
}

func TestCompile_Symbolic(t *testing.T) {
	table, err := compile(t, "minecraft:dirt/0->minecraft:grass/0\nmcfr_b_i:big.block-1/2->minecraft:stone/0")
	require.NoError(t, err)
	require.Equal(t, Table{
		{ID: 3, Meta: 0}:   {ID: 2, Meta: 0},
		{ID: 301, Meta: 2}: {ID: 1, Meta: 0},
	}, table)
}

func TestCompile_CommentsAndBlankLines(t *testing.T) {
	rules := `
# header comment
17->12              # keep metadata

   257/6->*   
`
	table, err := compile(t, rules)
	require.NoError(t, err)
	require.Len(t, table, 17)
}

func TestCompile_LastLineWins(t *testing.T) {
	table, err := compile(t, "17->12\n17/4->5/5")
	require.NoError(t, err)
	require.Len(t, table, 16)
	require.Equal(t, block.ID{ID: 5, Meta: 5}, table[block.ID{ID: 17, Meta: 4}])
	require.Equal(t, block.ID{ID: 12, Meta: 3}, table[block.ID{ID: 17, Meta: 3}])
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name  string
		rules string
		line  int
		msg   string
	}{
		{"syntax", "17 => 12", 1, "syntax error"},
		{"missing destination", "1->2\n17->", 2, "syntax error"},
		{"negative", "-1->2", 1, "syntax error"},
		{"inconsistent", "1->2\n\n18/1->19", 3, "inconsistent rule"},
		{"unknown source", "minecraft:nope->1", 1, "unknown id 'minecraft:nope'"},
		{"unknown destination", "1->minecraft:nope/2", 1, "unknown id 'minecraft:nope'"},
		{"metadata range", "1/16->2/0", 1, "metadata 16 out of range"},
		{"id range", "4096->2", 1, "id 4096 out of range"},
		{"line too long", "1->2\n3->4\n" + strings.Repeat("#", 70*1024), 3, "line too long"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := compile(t, tc.rules)
			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			require.Equal(t, tc.line, perr.Line)
			require.Equal(t, tc.msg, perr.Msg)
		})
	}
}

func TestParseError_Error(t *testing.T) {
	err := &ParseError{Line: 4, Msg: "syntax error"}
	require.Equal(t, "syntax error line 4", err.Error())
}

func TestCompile_NoNames(t *testing.T) {
	_, err := Compile(strings.NewReader("minecraft:stone->1"), nil)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)

	table, err := Compile(strings.NewReader("1->2/0"), nil)
	require.NoError(t, err)
	require.Len(t, table, 16)
}

func TestCompile_EmptyRegistry(t *testing.T) {
	names := registry.FromLevel(nbt.NewCompound()).Blocks

	table, err := Compile(strings.NewReader("17->12\n257/6->*\n"), names)
	require.NoError(t, err)
	require.Len(t, table, 17)

	_, err = Compile(strings.NewReader("17->12\nminecraft:stone->1\n"), names)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, 2, perr.Line)
	require.Equal(t, "unknown id 'minecraft:stone'", perr.Msg)
}

func TestCompileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), RulesFile)
	require.NoError(t, os.WriteFile(path, []byte("257/6->*\n4/0->256/1\n1/5->6/5\n"), 0o644))

	table, err := CompileFile(path, testNames())
	require.NoError(t, err)
	require.Len(t, table, 3)

	_, err = CompileFile(filepath.Join(t.TempDir(), "missing.cfg"), testNames())
	require.Error(t, err)
}

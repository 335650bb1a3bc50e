package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Mc-Fr/Convertisseur/pkg/nbt"
)

func entries(kv map[string]int) *nbt.List {
	l := nbt.NewList()
	for k, v := range kv {
		e := nbt.NewCompound()
		e.SetString("K", k)
		e.SetInt("V", int32(v))
		l.Add(e)
	}
	return l
}

func modernLevel() *nbt.Compound {
	blocks := nbt.NewCompound()
	blocks.SetList("ids", entries(map[string]int{
		"minecraft:stone":      1,
		"minecraft:grass":      2,
		"mcfr_b_i:stair_slope": 300,
	}))
	items := nbt.NewCompound()
	items.SetList("ids", entries(map[string]int{"minecraft:iron_ingot": 265}))

	registries := nbt.NewCompound()
	registries.SetCompound("minecraft:blocks", blocks)
	registries.SetCompound("minecraft:items", items)
	fml := nbt.NewCompound()
	fml.SetCompound("Registries", registries)
	root := nbt.NewCompound()
	root.SetCompound("FML", fml)
	return root
}

func TestLoad_Modern(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, nbt.EncodeFile(modernLevel(), filepath.Join(dir, LevelFile)))

	r, err := Load(dir)
	require.NoError(t, err)

	id, ok := r.Blocks.ID("mcfr_b_i:stair_slope")
	require.True(t, ok)
	require.Equal(t, 300, id)

	name, ok := r.Blocks.Name(2)
	require.True(t, ok)
	require.Equal(t, "minecraft:grass", name)

	_, ok = r.Blocks.ID("minecraft:dirt")
	require.False(t, ok)

	require.Equal(t, 3, r.Blocks.Len())
	require.Equal(t, []string{"mcfr_b_i:stair_slope", "minecraft:grass", "minecraft:stone"}, r.Blocks.Names())
	require.Equal(t, []int{1, 2, 300}, r.Blocks.IDs())

	id, ok = r.Items.ID("minecraft:iron_ingot")
	require.True(t, ok)
	require.Equal(t, 265, id)
}

func TestFromLevel_Legacy(t *testing.T) {
	fml := nbt.NewCompound()
	fml.SetList("ItemData", entries(map[string]int{
		"\x01minecraft:stone":      1,
		"\x02minecraft:iron_ingot": 265,
		"":                         7,
	}))
	root := nbt.NewCompound()
	root.SetCompound("FML", fml)

	r := FromLevel(root)
	require.False(t, r.Empty())
	require.Equal(t, 1, r.Blocks.Len())
	require.Equal(t, 1, r.Items.Len())
	name, ok := r.Items.Name(265)
	require.True(t, ok)
	require.Equal(t, "minecraft:iron_ingot", name)
}

func TestFromLevel_WithoutForgeData(t *testing.T) {
	data := nbt.NewCompound()
	data.SetString("LevelName", "vanilla")
	root := nbt.NewCompound()
	root.SetCompound("Data", data)

	r := FromLevel(root)
	require.True(t, r.Empty())
	require.Equal(t, 0, r.Items.Len())
	_, ok := r.Blocks.ID("minecraft:stone")
	require.False(t, ok)
}

func TestLoad_WithoutForgeData(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, nbt.EncodeFile(nbt.NewCompound(), filepath.Join(dir, LevelFile)))

	r, err := Load(dir)
	require.NoError(t, err)
	require.True(t, r.Empty())
}

func TestLoad_NoFile(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
}

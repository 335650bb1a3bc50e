// Package registry reads the block and item name tables that Forge stores
// in a world's level.dat.
package registry

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/Mc-Fr/Convertisseur/pkg/nbt"
)

// LevelFile is the name of the world metadata file inside a world directory.
const LevelFile = "level.dat"

// Legacy ItemData entries prefix their names with a kind marker.
const (
	legacyBlockPrefix = '\x01'
	legacyItemPrefix  = '\x02'
)

// Table is a bidirectional name <-> identifier map. It is read-only once
// loaded and safe for concurrent use.
type Table struct {
	byName map[string]int
	byID   map[int]string
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		byName: make(map[string]int),
		byID:   make(map[int]string),
	}
}

// Add registers name under id, replacing any previous mapping of either.
func (t *Table) Add(name string, id int) {
	t.byName[name] = id
	t.byID[id] = name
}

// ID returns the identifier registered for name.
func (t *Table) ID(name string) (int, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// Name returns the name registered for id.
func (t *Table) Name(id int) (string, bool) {
	name, ok := t.byID[id]
	return name, ok
}

// Len returns the number of registered names.
func (t *Table) Len() int {
	return len(t.byName)
}

// Names returns every registered name in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.byName))
	for n := range t.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// IDs returns every registered identifier in ascending order.
func (t *Table) IDs() []int {
	ids := make([]int, 0, len(t.byID))
	for id := range t.byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Registry groups the block and item tables of one world.
type Registry struct {
	Blocks *Table
	Items  *Table
}

// Load reads the registry from the level.dat of worldDir.
func Load(worldDir string) (*Registry, error) {
	path := filepath.Join(worldDir, LevelFile)
	root, err := nbt.DecodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading registry: %w", err)
	}
	return FromLevel(root), nil
}

// FromLevel extracts the registry from a decoded level.dat root. Modern
// worlds keep it under FML/Registries; older ones under FML/ItemData.
// Worlds without Forge data yield empty tables.
func FromLevel(root *nbt.Compound) *Registry {
	fml := root.Compound("FML")
	registries := fml.Compound("Registries")

	r := &Registry{Blocks: NewTable(), Items: NewTable()}
	fill(r.Blocks, registries.Compound("minecraft:blocks").List("ids", nbt.TypeCompound))
	fill(r.Items, registries.Compound("minecraft:items").List("ids", nbt.TypeCompound))

	if r.Blocks.Len() == 0 {
		legacy := fml.List("ItemData", nbt.TypeCompound)
		for i := 0; i < legacy.Len(); i++ {
			entry := legacy.CompoundAt(i)
			key, id := entry.String("K"), int(entry.Int("V"))
			if key == "" {
				continue
			}
			switch key[0] {
			case legacyBlockPrefix:
				r.Blocks.Add(key[1:], id)
			case legacyItemPrefix:
				r.Items.Add(key[1:], id)
			}
		}
	}

	return r
}

// Empty reports whether no block name is known.
func (r *Registry) Empty() bool {
	return r.Blocks.Len() == 0
}

func fill(t *Table, ids *nbt.List) {
	for i := 0; i < ids.Len(); i++ {
		entry := ids.CompoundAt(i)
		t.Add(entry.String("K"), int(entry.Int("V")))
	}
}

package finder

import (
	"sort"
	"sync"

	"github.com/Mc-Fr/Convertisseur/pkg/block"
	"github.com/Mc-Fr/Convertisseur/pkg/nbt"
	"github.com/Mc-Fr/Convertisseur/pkg/registry"
	"github.com/Mc-Fr/Convertisseur/pkg/traversal"
)

// Visitor records the positions matching a Query. It never modifies the
// chunks it visits.
type Visitor struct {
	query Query
	items *registry.Table

	// blockID is the identifier of query.Name, -1 when the registry does
	// not know it.
	blockID int

	mu        sync.Mutex
	positions []block.Pos
}

// NewVisitor returns a Visitor for q resolving names through reg.
func NewVisitor(q Query, reg *registry.Registry) *Visitor {
	v := &Visitor{query: q, items: reg.Items, blockID: -1}
	if id, ok := reg.Blocks.ID(q.Name); ok {
		v.blockID = id
	}
	return v
}

// Positions returns a sorted copy of the positions found so far.
func (v *Visitor) Positions() []block.Pos {
	v.mu.Lock()
	out := make([]block.Pos, len(v.positions))
	copy(out, v.positions)
	v.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func (v *Visitor) add(found []block.Pos) {
	if len(found) == 0 {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.positions = append(v.positions, found...)
}

func (v *Visitor) OnTileEntities(_ traversal.ChunkRef, _ *nbt.Compound, tileEntities *nbt.List) {
	if v.query.Kind != KindItem {
		return
	}

	var found []block.Pos
	for i := 0; i < tileEntities.Len(); i++ {
		te := tileEntities.CompoundAt(i)
		if !v.holdsItem(te) {
			continue
		}
		found = append(found, block.Pos{
			X:     int(te.Int("x")),
			Y:     int(te.Int("y")),
			Z:     int(te.Int("z")),
			Label: te.String("id"),
		})
	}
	v.add(found)
}

// holdsItem reports whether one stack of the tile entity inventory matches.
func (v *Visitor) holdsItem(te *nbt.Compound) bool {
	items := te.List("Items", nbt.TypeCompound)
	for i := 0; i < items.Len(); i++ {
		stack := items.CompoundAt(i)
		name, ok := v.itemName(stack)
		if ok && name == v.query.Name && v.query.matchesMeta(int(stack.Short("Damage"))) {
			return true
		}
	}
	return false
}

// itemName returns the registry name of a stack, stored either as a name
// or as a numeric id.
func (v *Visitor) itemName(stack *nbt.Compound) (string, bool) {
	switch stack.TypeOf("id") {
	case nbt.TypeString:
		return stack.String("id"), true
	case nbt.TypeShort:
		return v.items.Name(int(stack.Short("id")))
	case nbt.TypeInt:
		return v.items.Name(int(stack.Int("id")))
	default:
		return "", false
	}
}

func (v *Visitor) OnSection(s *traversal.Section) bool {
	if v.query.Kind != KindBlock || v.blockID < 0 {
		return false
	}

	chunkX, chunkZ := int(s.Level.Int("xPos")), int(s.Level.Int("zPos"))
	var found []block.Pos
	for i := range s.Blocks {
		if block.ReadID(s.Blocks, s.Add, i) != v.blockID || !v.query.matchesMeta(block.Nibble(s.Data, i)) {
			continue
		}
		found = append(found, block.CellPos(chunkX, chunkZ, s.Y(), i))
	}
	v.add(found)
	return false
}

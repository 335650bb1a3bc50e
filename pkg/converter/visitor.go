package converter

import (
	"sync/atomic"

	"github.com/Mc-Fr/Convertisseur/pkg/block"
	"github.com/Mc-Fr/Convertisseur/pkg/nbt"
	"github.com/Mc-Fr/Convertisseur/pkg/remap"
	"github.com/Mc-Fr/Convertisseur/pkg/traversal"
)

// Visitor rewrites every block of a section through a Replacer and drops
// the transient game state of each chunk.
type Visitor struct {
	replacer remap.Replacer
	replaced atomic.Int64
}

// NewVisitor returns a Visitor applying replacer.
func NewVisitor(replacer remap.Replacer) *Visitor {
	return &Visitor{replacer: replacer}
}

// Replaced returns the number of cells rewritten so far.
func (v *Visitor) Replaced() int64 {
	return v.replaced.Load()
}

// OnTileEntities empties the entity, tile entity and pending tick lists:
// they reference block ids that the conversion invalidates.
func (v *Visitor) OnTileEntities(_ traversal.ChunkRef, level *nbt.Compound, _ *nbt.List) {
	level.SetList("Entities", nbt.NewList())
	level.SetList("TileEntities", nbt.NewList())
	if level.Has("TileTicks") {
		level.SetList("TileTicks", nbt.NewList())
	}
}

func (v *Visitor) OnSection(s *traversal.Section) bool {
	var hits int64
	for i := range s.Blocks {
		old := block.ID{
			ID:   block.ReadID(s.Blocks, s.Add, i),
			Meta: block.Nibble(s.Data, i),
		}
		if _, ok := v.replacer.Replace(s.Blocks, s.Add, s.Data, i, old); ok {
			hits++
		}
	}
	v.replaced.Add(hits)
	return hits > 0
}

package remap

import (
	"strings"

	"github.com/Mc-Fr/Convertisseur/pkg/block"
	"github.com/Mc-Fr/Convertisseur/pkg/registry"
)

// SlopeSuffix marks registry names of slope blocks whose metadata layout
// changed between versions.
const SlopeSuffix = "_slope"

// Replacer rewrites one cell of a section.
type Replacer interface {
	// Replace looks old up and, on a hit, writes the new id and metadata
	// into cell i of the arrays and returns it. A miss leaves the arrays
	// untouched.
	Replace(blocks, add, data []byte, i int, old block.ID) (block.ID, bool)
}

// Remapper applies a Table to section arrays.
type Remapper struct {
	table Table
}

// NewRemapper returns a Remapper over table.
func NewRemapper(table Table) *Remapper {
	return &Remapper{table: table}
}

func (r *Remapper) Replace(blocks, add, data []byte, i int, old block.ID) (block.ID, bool) {
	newID, ok := r.table.Lookup(old)
	if !ok {
		return block.ID{}, false
	}
	block.WriteID(blocks, add, i, newID.ID)
	block.SetNibble(data, i, newID.Meta)
	return newID, true
}

// slopeMeta maps the two low metadata bits of a slope to their new layout.
var slopeMeta = [4]int{0: 2, 1: 1, 2: 3, 3: 0}

// SlopeRemapper is a Remapper that also reorients slopes: when the new
// block is a slope its two low metadata bits are permuted and bit 4 kept.
type SlopeRemapper struct {
	*Remapper
	names *registry.Table
}

// NewSlopeRemapper returns a SlopeRemapper resolving block names through names.
func NewSlopeRemapper(table Table, names *registry.Table) *SlopeRemapper {
	return &SlopeRemapper{Remapper: NewRemapper(table), names: names}
}

func (r *SlopeRemapper) Replace(blocks, add, data []byte, i int, old block.ID) (block.ID, bool) {
	newID, ok := r.Remapper.Replace(blocks, add, data, i, old)
	if ok && r.isSlope(newID.ID) {
		m := block.Nibble(data, i)
		block.SetNibble(data, i, slopeMeta[m&3]|m&4)
	}
	return newID, ok
}

func (r *SlopeRemapper) isSlope(id int) bool {
	name, ok := r.names.Name(id)
	return ok && strings.HasSuffix(name, SlopeSuffix)
}

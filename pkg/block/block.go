// Package block holds block identifiers, positions and the packed array
// layout used by chunk sections.
package block

import "fmt"

// AnyMeta matches every metadata value. It only appears while building
// remap tables, never in decoded chunk data.
const AnyMeta = -1

const (
	// MaxMeta is the largest metadata value a nibble can hold.
	MaxMeta = 0xf
	// MaxID is the largest identifier expressible with a block byte and an
	// add nibble.
	MaxID = 0xfff
	// SectionCells is the number of cells in a 16x16x16 section.
	SectionCells = 4096
)

// ID identifies a block variant. It is comparable and used as a map key.
type ID struct {
	ID   int
	Meta int
}

func (b ID) String() string {
	if b.Meta == AnyMeta {
		return fmt.Sprintf("%d", b.ID)
	}
	return fmt.Sprintf("%d/%d", b.ID, b.Meta)
}

// Pos is a block position in world coordinates, optionally labelled with
// what was found there.
type Pos struct {
	X, Y, Z int
	Label   string
}

func (p Pos) String() string {
	if p.Label == "" {
		return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
	}
	return fmt.Sprintf("(%d, %d, %d) %s", p.X, p.Y, p.Z, p.Label)
}

// Less orders positions by X, then Y, then Z, then label.
func (p Pos) Less(o Pos) bool {
	switch {
	case p.X != o.X:
		return p.X < o.X
	case p.Y != o.Y:
		return p.Y < o.Y
	case p.Z != o.Z:
		return p.Z < o.Z
	default:
		return p.Label < o.Label
	}
}

// CellPos returns the world position of cell i of the section at height y
// (in sections) inside the chunk at chunkX, chunkZ. Cells are laid out
// x-fastest, then z, then y.
func CellPos(chunkX, chunkZ, y, i int) Pos {
	return Pos{
		X: chunkX*16 + i%16,
		Y: y*16 + i/256,
		Z: chunkZ*16 + (i/16)%16,
	}
}

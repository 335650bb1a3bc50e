package traversal

import (
	"fmt"

	"github.com/Mc-Fr/Convertisseur/pkg/nbt"
	"github.com/Mc-Fr/Convertisseur/pkg/region"
)

// ChunkRef locates a chunk: its region and its global chunk coordinates.
type ChunkRef struct {
	Region region.Coord
	X, Z   int
}

func (c ChunkRef) String() string {
	return fmt.Sprintf("%s@(%d, %d)", c.Region, c.X, c.Z)
}

// Section is one section of a chunk handed to a Visitor. Blocks, Add and
// Data alias the decoded tree, except Add when AddPresent is false: it is
// then a zeroed array that the engine stores only if the visitor reports
// a mutation.
type Section struct {
	Chunk    ChunkRef
	Index    int
	Level    *nbt.Compound
	Sections *nbt.List
	Section  *nbt.Compound

	Blocks     []byte
	Add        []byte
	Data       []byte
	AddPresent bool
}

// Y returns the section height, in sections.
func (s *Section) Y() int {
	return int(s.Section.Byte("Y"))
}

// Visitor is the per-chunk strategy run by the Engine. Calls for
// different regions happen concurrently; calls for one region come from a
// single goroutine.
type Visitor interface {
	// OnTileEntities is called once per chunk before its sections.
	OnTileEntities(chunk ChunkRef, level *nbt.Compound, tileEntities *nbt.List)
	// OnSection is called for every well-formed section and reports
	// whether the arrays were modified.
	OnSection(s *Section) bool
}

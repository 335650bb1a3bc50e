// Package region adapts Anvil region files to the unit/chunk stream model
// used by the traversal engine.
package region

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

// ChunksPerAxis is the width and depth of a region in chunks.
const ChunksPerAxis = 32

// Dirname is the region directory inside a world.
const Dirname = "region"

var fileNamePattern = regexp.MustCompile(`^r\.(-?\d+)\.(-?\d+)\.mca$`)

// ErrUnknownCompression is returned for chunk payloads whose compression
// byte is not gzip, zlib or uncompressed.
var ErrUnknownCompression = errors.New("region: unknown chunk compression")

// Coord identifies a region, a storage unit of 32x32 chunks.
type Coord struct {
	X, Z int
}

func (c Coord) String() string {
	return fmt.Sprintf("[%d, %d]", c.X, c.Z)
}

// FileName returns the on-disk name of the region.
func (c Coord) FileName() string {
	return fmt.Sprintf("r.%d.%d.mca", c.X, c.Z)
}

// ChunkPos returns the global position of the chunk at local x, z.
func (c Coord) ChunkPos(x, z int) (int, int) {
	return c.X*ChunksPerAxis + x, c.Z*ChunksPerAxis + z
}

// Container lists and opens storage units.
type Container interface {
	Units() ([]Coord, error)
	OpenUnit(c Coord) (Unit, error)
}

// Unit gives stream access to the chunks of one region. Chunk
// coordinates are local, in [0, ChunksPerAxis). A Unit is used by one
// goroutine at a time.
type Unit interface {
	// OpenReadStream returns the decompressed chunk payload. The boolean
	// is false when the chunk was never generated.
	OpenReadStream(x, z int) (io.ReadCloser, bool, error)
	// OpenWriteStream returns a writer whose Close stores the chunk.
	OpenWriteStream(x, z int) (io.WriteCloser, error)
	Close() error
}

// ParseFileName extracts the coordinates from a region file name.
func ParseFileName(name string) (Coord, bool) {
	m := fileNamePattern.FindStringSubmatch(name)
	if m == nil {
		return Coord{}, false
	}
	x, errX := strconv.Atoi(m[1])
	z, errZ := strconv.Atoi(m[2])
	if errX != nil || errZ != nil {
		return Coord{}, false
	}
	return Coord{X: x, Z: z}, true
}

// Dir is a Container over the region directory of a world.
type Dir struct {
	path        string
	compression Compression
}

// NewDir returns the container for worldDir/region. New chunk payloads
// are written with compression.
func NewDir(worldDir string, compression Compression) *Dir {
	return &Dir{path: filepath.Join(worldDir, Dirname), compression: compression}
}

// Path returns the region directory.
func (d *Dir) Path() string {
	return d.path
}

// Units lists the regions present on disk, ordered by file name.
func (d *Dir) Units() ([]Coord, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("listing regions: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	coords := make([]Coord, 0, len(names))
	for _, n := range names {
		if c, ok := ParseFileName(n); ok {
			coords = append(coords, c)
		}
	}
	return coords, nil
}

// OpenUnit opens an existing region file.
func (d *Dir) OpenUnit(c Coord) (Unit, error) {
	return openFile(filepath.Join(d.path, c.FileName()), d.compression)
}

// CreateUnit creates an empty region file, creating the region directory
// if needed.
func (d *Dir) CreateUnit(c Coord) (Unit, error) {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return nil, err
	}
	return createFile(filepath.Join(d.path, c.FileName()), d.compression)
}

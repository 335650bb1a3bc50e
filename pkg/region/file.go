package region

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/Tnze/go-mc/save/region"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// Compression is the scheme byte stored in front of every chunk payload.
type Compression byte

const (
	CompressionGzip Compression = 1
	CompressionZlib Compression = 2
	CompressionNone Compression = 3
)

// ParseCompression maps a configuration name to its scheme.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "gzip":
		return CompressionGzip, nil
	case "zlib", "":
		return CompressionZlib, nil
	case "none":
		return CompressionNone, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", s)
	}
}

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionZlib:
		return "zlib"
	case CompressionNone:
		return "none"
	default:
		return fmt.Sprintf("compression(%d)", byte(c))
	}
}

type file struct {
	r           *region.Region
	compression Compression
}

func openFile(path string, compression Compression) (*file, error) {
	r, err := region.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening region %s: %w", path, err)
	}
	return &file{r: r, compression: compression}, nil
}

func createFile(path string, compression Compression) (*file, error) {
	r, err := region.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating region %s: %w", path, err)
	}
	return &file{r: r, compression: compression}, nil
}

func checkLocal(x, z int) error {
	if x < 0 || x >= ChunksPerAxis || z < 0 || z >= ChunksPerAxis {
		return fmt.Errorf("chunk (%d, %d) outside region", x, z)
	}
	return nil
}

func (f *file) OpenReadStream(x, z int) (io.ReadCloser, bool, error) {
	if err := checkLocal(x, z); err != nil {
		return nil, false, err
	}
	if !f.r.ExistSector(x, z) {
		return nil, false, nil
	}
	data, err := f.r.ReadSector(x, z)
	if err != nil {
		return nil, false, err
	}
	if len(data) == 0 {
		return nil, false, fmt.Errorf("empty chunk payload: %w", ErrUnknownCompression)
	}

	payload := bytes.NewReader(data[1:])
	switch Compression(data[0]) {
	case CompressionGzip:
		zr, err := gzip.NewReader(payload)
		if err != nil {
			return nil, false, err
		}
		return zr, true, nil
	case CompressionZlib:
		zr, err := zlib.NewReader(payload)
		if err != nil {
			return nil, false, err
		}
		return zr, true, nil
	case CompressionNone:
		return io.NopCloser(payload), true, nil
	default:
		return nil, false, fmt.Errorf("scheme %d: %w", data[0], ErrUnknownCompression)
	}
}

func (f *file) OpenWriteStream(x, z int) (io.WriteCloser, error) {
	if err := checkLocal(x, z); err != nil {
		return nil, err
	}
	w := &chunkWriter{f: f, x: x, z: z}
	w.buf.WriteByte(byte(f.compression))
	switch f.compression {
	case CompressionGzip:
		w.zw = gzip.NewWriter(&w.buf)
	case CompressionZlib:
		w.zw = zlib.NewWriter(&w.buf)
	case CompressionNone:
	default:
		return nil, fmt.Errorf("scheme %d: %w", byte(f.compression), ErrUnknownCompression)
	}
	return w, nil
}

func (f *file) Close() error {
	return f.r.Close()
}

// chunkWriter buffers a compressed payload and stores it on Close.
type chunkWriter struct {
	f    *file
	x, z int
	buf  bytes.Buffer
	zw   io.WriteCloser
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	if w.zw != nil {
		return w.zw.Write(p)
	}
	return w.buf.Write(p)
}

func (w *chunkWriter) Close() error {
	if w.zw != nil {
		if err := w.zw.Close(); err != nil {
			return err
		}
	}
	return w.f.r.WriteSector(w.x, w.z, w.buf.Bytes())
}

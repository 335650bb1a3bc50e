package nbt

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/klauspost/compress/gzip"
)

// DecodeCompressed reads a gzip stream holding one root compound.
func DecodeCompressed(r io.Reader, tracker *SizeTracker) (*Compound, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening gzip stream: %w", err)
	}
	defer zr.Close()
	return Decode(zr, tracker)
}

// EncodeCompressed writes c to w as a gzip stream.
func EncodeCompressed(c *Compound, w io.Writer) error {
	zw := gzip.NewWriter(w)
	if err := Encode(c, zw); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// DecodeFile reads a gzip compressed file such as level.dat.
func DecodeFile(path string) (*Compound, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := DecodeCompressed(f, Unlimited())
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return c, nil
}

// EncodeFile writes c gzip compressed to path, truncating any existing file.
func EncodeFile(c *Compound, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeCompressed(c, f); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

// SafeWrite writes c next to path and then moves it into place. The
// existing file is never partially overwritten: if it cannot be removed
// the error wraps ErrReplace and the new data stays in path+"_tmp".
func SafeWrite(c *Compound, path string) error {
	tmp := path + "_tmp"
	if err := os.Remove(tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing stale %s: %w", tmp, err)
	}
	if err := EncodeFile(c, tmp); err != nil {
		return err
	}
	removeErr := os.Remove(path)
	if _, err := os.Lstat(path); err == nil {
		return fmt.Errorf("failed to delete %s: %w", path, errors.Join(ErrReplace, removeErr))
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return nil
}

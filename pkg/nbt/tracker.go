package nbt

import (
	"fmt"
	"math"
)

// SizeTracker bounds the virtual size of a decoded tree. Costs are
// charged in bits and accumulated in bytes, approximating the in-memory
// footprint of each node rather than its encoded size.
type SizeTracker struct {
	max  int64
	read int64
}

// NewSizeTracker returns a tracker that fails once more than maxBytes
// virtual bytes have been charged. A non-positive maxBytes disables the bound.
func NewSizeTracker(maxBytes int64) *SizeTracker {
	if maxBytes <= 0 {
		return Unlimited()
	}
	return &SizeTracker{max: maxBytes}
}

// Unlimited returns a tracker that never fails.
func Unlimited() *SizeTracker {
	return &SizeTracker{max: math.MaxInt64}
}

// Read returns the number of virtual bytes charged so far.
func (t *SizeTracker) Read() int64 {
	return t.read
}

// Charge accounts for bits virtual bits.
func (t *SizeTracker) Charge(bits int64) error {
	if t.max == math.MaxInt64 {
		return nil
	}
	t.read += bits / 8
	if t.read > t.max {
		return fmt.Errorf("tried to allocate %d bytes where max allowed is %d: %w", t.read, t.max, ErrResourceExhausted)
	}
	return nil
}

// chargeString accounts for a length-prefixed string: a 16 bit header
// plus 8 bits per encoded byte.
func (t *SizeTracker) chargeString(s string) error {
	if err := t.Charge(16); err != nil {
		return err
	}
	return t.Charge(8 * int64(len(s)))
}

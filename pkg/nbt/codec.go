package nbt

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// MaxDepth is the deepest nesting level at which a compound or list may
// still be decoded. The root sits at depth 0.
const MaxDepth = 512

// Virtual sizes, in bits, charged to the SizeTracker while decoding.
const (
	costType          = 8
	costAlloc         = 32
	costByte          = 72
	costShort         = 80
	costInt           = 96
	costLong          = 128
	costFloat         = 96
	costDouble        = 128
	costString        = 288
	costArray         = 192
	costList          = 296
	costListElem      = 32
	costCompound      = 384
	costCompoundEntry = 224
	costDuplicateKey  = 288
)

// maxPrealloc caps the buffer allocated up front for an array payload so
// that a forged length cannot force a huge allocation before any data has
// been read.
const maxPrealloc = 1 << 20

type decoder struct {
	r       *bufio.Reader
	tracker *SizeTracker
	buf     [8]byte
}

// Decode reads one root compound from r. A nil tracker disables the size
// budget.
func Decode(r io.Reader, tracker *SizeTracker) (*Compound, error) {
	if tracker == nil {
		tracker = Unlimited()
	}
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	d := &decoder{r: br, tracker: tracker}

	typ, err := d.readType()
	if err != nil {
		return nil, err
	}
	if typ == TypeEnd {
		return nil, fmt.Errorf("root tag is %s: %w", typ, ErrFormat)
	}
	name, err := d.readString()
	if err != nil {
		return nil, err
	}
	if err := d.tracker.chargeString(name); err != nil {
		return nil, err
	}
	if err := d.tracker.Charge(costAlloc); err != nil {
		return nil, err
	}
	tag, err := d.readPayload(typ, 0)
	if err != nil {
		return nil, err
	}
	root, ok := tag.(*Compound)
	if !ok {
		return nil, fmt.Errorf("root tag is %s, want %s: %w", typ, TypeCompound, ErrFormat)
	}
	return root, nil
}

func (d *decoder) readType() (Type, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, ioErr(err)
	}
	if err := d.tracker.Charge(costType); err != nil {
		return 0, err
	}
	return Type(b), nil
}

func (d *decoder) readFull(n int) ([]byte, error) {
	if _, err := io.ReadFull(d.r, d.buf[:n]); err != nil {
		return nil, ioErr(err)
	}
	return d.buf[:n], nil
}

func (d *decoder) readInt32() (int32, error) {
	b, err := d.readFull(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func (d *decoder) readString() (string, error) {
	b, err := d.readFull(2)
	if err != nil {
		return "", err
	}
	n := int(binary.BigEndian.Uint16(b))
	s, err := d.readBytes(n)
	if err != nil {
		return "", err
	}
	return string(s), nil
}

// readBytes reads n bytes, growing the buffer as data arrives.
func (d *decoder) readBytes(n int) ([]byte, error) {
	out := make([]byte, 0, min(n, maxPrealloc))
	for len(out) < n {
		chunk := min(n-len(out), maxPrealloc)
		start := len(out)
		out = append(out, make([]byte, chunk)...)
		if _, err := io.ReadFull(d.r, out[start:]); err != nil {
			return nil, ioErr(err)
		}
	}
	return out, nil
}

func (d *decoder) readPayload(typ Type, depth int) (Tag, error) {
	switch typ {
	case TypeByte:
		if err := d.tracker.Charge(costByte); err != nil {
			return nil, err
		}
		b, err := d.readFull(1)
		if err != nil {
			return nil, err
		}
		return Byte(int8(b[0])), nil
	case TypeShort:
		if err := d.tracker.Charge(costShort); err != nil {
			return nil, err
		}
		b, err := d.readFull(2)
		if err != nil {
			return nil, err
		}
		return Short(int16(binary.BigEndian.Uint16(b))), nil
	case TypeInt:
		if err := d.tracker.Charge(costInt); err != nil {
			return nil, err
		}
		v, err := d.readInt32()
		if err != nil {
			return nil, err
		}
		return Int(v), nil
	case TypeLong:
		if err := d.tracker.Charge(costLong); err != nil {
			return nil, err
		}
		b, err := d.readFull(8)
		if err != nil {
			return nil, err
		}
		return Long(int64(binary.BigEndian.Uint64(b))), nil
	case TypeFloat:
		if err := d.tracker.Charge(costFloat); err != nil {
			return nil, err
		}
		b, err := d.readFull(4)
		if err != nil {
			return nil, err
		}
		return Float(math.Float32frombits(binary.BigEndian.Uint32(b))), nil
	case TypeDouble:
		if err := d.tracker.Charge(costDouble); err != nil {
			return nil, err
		}
		b, err := d.readFull(8)
		if err != nil {
			return nil, err
		}
		return Double(math.Float64frombits(binary.BigEndian.Uint64(b))), nil
	case TypeByteArray:
		return d.readByteArray()
	case TypeString:
		if err := d.tracker.Charge(costString); err != nil {
			return nil, err
		}
		s, err := d.readString()
		if err != nil {
			return nil, err
		}
		if err := d.tracker.chargeString(s); err != nil {
			return nil, err
		}
		return String(s), nil
	case TypeList:
		return d.readList(depth)
	case TypeCompound:
		return d.readCompound(depth)
	case TypeIntArray:
		return d.readIntArray()
	default:
		return nil, fmt.Errorf("unknown tag type %d: %w", byte(typ), ErrFormat)
	}
}

func (d *decoder) readByteArray() (Tag, error) {
	if err := d.tracker.Charge(costArray); err != nil {
		return nil, err
	}
	n, err := d.readInt32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("negative byte array length %d: %w", n, ErrFormat)
	}
	if err := d.tracker.Charge(8 * int64(n)); err != nil {
		return nil, err
	}
	b, err := d.readBytes(int(n))
	if err != nil {
		return nil, err
	}
	return ByteArray(b), nil
}

func (d *decoder) readIntArray() (Tag, error) {
	if err := d.tracker.Charge(costArray); err != nil {
		return nil, err
	}
	n, err := d.readInt32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("negative int array length %d: %w", n, ErrFormat)
	}
	if err := d.tracker.Charge(32 * int64(n)); err != nil {
		return nil, err
	}
	raw, err := d.readBytes(4 * int(n))
	if err != nil {
		return nil, err
	}
	out := make(IntArray, n)
	for i := range out {
		out[i] = int32(binary.BigEndian.Uint32(raw[4*i:]))
	}
	return out, nil
}

func (d *decoder) readList(depth int) (Tag, error) {
	if err := d.tracker.Charge(costList); err != nil {
		return nil, err
	}
	if depth > MaxDepth {
		return nil, fmt.Errorf("list at depth %d: %w", depth, ErrStructureTooDeep)
	}
	b, err := d.readFull(1)
	if err != nil {
		return nil, err
	}
	elemType := Type(b[0])
	n, err := d.readInt32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("negative list length %d: %w", n, ErrFormat)
	}
	if elemType == TypeEnd && n > 0 {
		return nil, fmt.Errorf("list of %d elements without element type: %w", n, ErrFormat)
	}
	if !elemType.Valid() {
		return nil, fmt.Errorf("unknown list element type %d: %w", byte(elemType), ErrFormat)
	}
	if err := d.tracker.Charge(costListElem * int64(n)); err != nil {
		return nil, err
	}
	l := &List{elemType: TypeEnd, items: make([]Tag, 0, min(int(n), maxPrealloc))}
	if n > 0 {
		l.elemType = elemType
	}
	for i := int32(0); i < n; i++ {
		t, err := d.readPayload(elemType, depth+1)
		if err != nil {
			return nil, err
		}
		l.items = append(l.items, t)
	}
	return l, nil
}

func (d *decoder) readCompound(depth int) (Tag, error) {
	if err := d.tracker.Charge(costCompound); err != nil {
		return nil, err
	}
	if depth > MaxDepth {
		return nil, fmt.Errorf("compound at depth %d: %w", depth, ErrStructureTooDeep)
	}
	c := NewCompound()
	for {
		typ, err := d.readType()
		if err != nil {
			return nil, err
		}
		if typ == TypeEnd {
			return c, nil
		}
		key, err := d.readString()
		if err != nil {
			return nil, err
		}
		if err := d.tracker.Charge(costCompoundEntry + 16*int64(utf16Len(key))); err != nil {
			return nil, err
		}
		if err := d.tracker.Charge(costAlloc); err != nil {
			return nil, err
		}
		t, err := d.readPayload(typ, depth+1)
		if err != nil {
			return nil, err
		}
		if _, dup := c.tags[key]; dup {
			if err := d.tracker.Charge(costDuplicateKey); err != nil {
				return nil, err
			}
		}
		c.tags[key] = t
	}
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// ioErr maps a truncated stream to ErrFormat and keeps any other read
// error as is.
func ioErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("unexpected end of data: %w", ErrFormat)
	}
	return err
}

type encoder struct {
	w   *bufio.Writer
	buf [8]byte
}

// Encode writes c to w as an unnamed root compound.
func Encode(c *Compound, w io.Writer) error {
	e := &encoder{w: bufio.NewWriter(w)}
	if err := e.w.WriteByte(byte(TypeCompound)); err != nil {
		return err
	}
	if err := e.writeString(""); err != nil {
		return err
	}
	if err := e.writePayload(c); err != nil {
		return err
	}
	return e.w.Flush()
}

func (e *encoder) writeUint16(v uint16) error {
	binary.BigEndian.PutUint16(e.buf[:2], v)
	_, err := e.w.Write(e.buf[:2])
	return err
}

func (e *encoder) writeUint32(v uint32) error {
	binary.BigEndian.PutUint32(e.buf[:4], v)
	_, err := e.w.Write(e.buf[:4])
	return err
}

func (e *encoder) writeUint64(v uint64) error {
	binary.BigEndian.PutUint64(e.buf[:8], v)
	_, err := e.w.Write(e.buf[:8])
	return err
}

func (e *encoder) writeString(s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("string of %d bytes exceeds %d", len(s), math.MaxUint16)
	}
	if err := e.writeUint16(uint16(len(s))); err != nil {
		return err
	}
	_, err := e.w.WriteString(s)
	return err
}

func (e *encoder) writePayload(t Tag) error {
	switch v := t.(type) {
	case End:
		return nil
	case Byte:
		return e.w.WriteByte(byte(v))
	case Short:
		return e.writeUint16(uint16(v))
	case Int:
		return e.writeUint32(uint32(v))
	case Long:
		return e.writeUint64(uint64(v))
	case Float:
		return e.writeUint32(math.Float32bits(float32(v)))
	case Double:
		return e.writeUint64(math.Float64bits(float64(v)))
	case ByteArray:
		if err := e.writeUint32(uint32(len(v))); err != nil {
			return err
		}
		_, err := e.w.Write(v)
		return err
	case String:
		return e.writeString(string(v))
	case IntArray:
		if err := e.writeUint32(uint32(len(v))); err != nil {
			return err
		}
		for _, x := range v {
			if err := e.writeUint32(uint32(x)); err != nil {
				return err
			}
		}
		return nil
	case *List:
		if err := e.w.WriteByte(byte(v.ElemType())); err != nil {
			return err
		}
		if err := e.writeUint32(uint32(len(v.items))); err != nil {
			return err
		}
		for _, item := range v.items {
			if err := e.writePayload(item); err != nil {
				return err
			}
		}
		return nil
	case *Compound:
		for _, k := range v.Keys() {
			child := v.tags[k]
			if err := e.w.WriteByte(byte(child.Type())); err != nil {
				return err
			}
			if err := e.writeString(k); err != nil {
				return err
			}
			if err := e.writePayload(child); err != nil {
				return err
			}
		}
		return e.w.WriteByte(byte(TypeEnd))
	default:
		return fmt.Errorf("cannot encode %T", t)
	}
}

package nbt

import (
	"fmt"
	"math"
)

// Type is the 1-byte discriminant written before every named tag and at
// the head of every list payload.
type Type byte

const (
	TypeEnd       Type = 0
	TypeByte      Type = 1
	TypeShort     Type = 2
	TypeInt       Type = 3
	TypeLong      Type = 4
	TypeFloat     Type = 5
	TypeDouble    Type = 6
	TypeByteArray Type = 7
	TypeString    Type = 8
	TypeList      Type = 9
	TypeCompound  Type = 10
	TypeIntArray  Type = 11
)

var typeNames = [...]string{
	TypeEnd:       "TAG_End",
	TypeByte:      "TAG_Byte",
	TypeShort:     "TAG_Short",
	TypeInt:       "TAG_Int",
	TypeLong:      "TAG_Long",
	TypeFloat:     "TAG_Float",
	TypeDouble:    "TAG_Double",
	TypeByteArray: "TAG_Byte_Array",
	TypeString:    "TAG_String",
	TypeList:      "TAG_List",
	TypeCompound:  "TAG_Compound",
	TypeIntArray:  "TAG_Int_Array",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("TAG_Unknown(0x%02x)", byte(t))
}

// Valid reports whether t is one of the twelve known discriminants.
func (t Type) Valid() bool {
	return t <= TypeIntArray
}

// Tag is one node of a tag tree. The set of implementations is closed:
// End, Byte, Short, Int, Long, Float, Double, ByteArray, String, *List,
// *Compound and IntArray.
type Tag interface {
	Type() Type
	// Copy returns a deep copy that shares no memory with the receiver.
	Copy() Tag
	tag()
}

type (
	End       struct{}
	Byte      int8
	Short     int16
	Int       int32
	Long      int64
	Float     float32
	Double    float64
	ByteArray []byte
	String    string
	IntArray  []int32
)

func (End) Type() Type       { return TypeEnd }
func (Byte) Type() Type      { return TypeByte }
func (Short) Type() Type     { return TypeShort }
func (Int) Type() Type       { return TypeInt }
func (Long) Type() Type      { return TypeLong }
func (Float) Type() Type     { return TypeFloat }
func (Double) Type() Type    { return TypeDouble }
func (ByteArray) Type() Type { return TypeByteArray }
func (String) Type() Type    { return TypeString }
func (IntArray) Type() Type  { return TypeIntArray }

func (t End) Copy() Tag    { return t }
func (t Byte) Copy() Tag   { return t }
func (t Short) Copy() Tag  { return t }
func (t Int) Copy() Tag    { return t }
func (t Long) Copy() Tag   { return t }
func (t Float) Copy() Tag  { return t }
func (t Double) Copy() Tag { return t }
func (t String) Copy() Tag { return t }

func (t ByteArray) Copy() Tag {
	out := make(ByteArray, len(t))
	copy(out, t)
	return out
}

func (t IntArray) Copy() Tag {
	out := make(IntArray, len(t))
	copy(out, t)
	return out
}

func (End) tag()       {}
func (Byte) tag()      {}
func (Short) tag()     {}
func (Int) tag()       {}
func (Long) tag()      {}
func (Float) tag()     {}
func (Double) tag()    {}
func (ByteArray) tag() {}
func (String) tag()    {}
func (IntArray) tag()  {}

// newTag returns an empty tag for a payload of type t, ready to be filled
// by the decoder.
func newTag(t Type) (Tag, error) {
	switch t {
	case TypeEnd:
		return End{}, nil
	case TypeByte:
		return Byte(0), nil
	case TypeShort:
		return Short(0), nil
	case TypeInt:
		return Int(0), nil
	case TypeLong:
		return Long(0), nil
	case TypeFloat:
		return Float(0), nil
	case TypeDouble:
		return Double(0), nil
	case TypeByteArray:
		return ByteArray{}, nil
	case TypeString:
		return String(""), nil
	case TypeList:
		return NewList(), nil
	case TypeCompound:
		return NewCompound(), nil
	case TypeIntArray:
		return IntArray{}, nil
	default:
		return nil, fmt.Errorf("unknown tag type %d: %w", byte(t), ErrFormat)
	}
}

// numeric returns the value of any scalar numeric tag as float64 and int64.
func numeric(t Tag) (int64, float64, bool) {
	switch v := t.(type) {
	case Byte:
		return int64(v), float64(v), true
	case Short:
		return int64(v), float64(v), true
	case Int:
		return int64(v), float64(v), true
	case Long:
		return int64(v), float64(v), true
	case Float:
		return int64(v), float64(v), true
	case Double:
		return int64(v), float64(v), true
	default:
		return 0, 0, false
	}
}

// Equal reports whether a and b are structurally equal trees.
func Equal(a, b Tag) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Type() != b.Type() {
		return false
	}
	switch av := a.(type) {
	case ByteArray:
		bv := b.(ByteArray)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case IntArray:
		bv := b.(IntArray)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case *List:
		bv := b.(*List)
		if av.elemType != bv.elemType || len(av.items) != len(bv.items) {
			return false
		}
		for i := range av.items {
			if !Equal(av.items[i], bv.items[i]) {
				return false
			}
		}
		return true
	case *Compound:
		bv := b.(*Compound)
		if len(av.tags) != len(bv.tags) {
			return false
		}
		for k, v := range av.tags {
			w, ok := bv.tags[k]
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	case Float:
		return math.Float32bits(float32(av)) == math.Float32bits(float32(b.(Float)))
	case Double:
		return math.Float64bits(float64(av)) == math.Float64bits(float64(b.(Double)))
	default:
		return a == b
	}
}

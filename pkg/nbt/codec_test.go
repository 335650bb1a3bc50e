package nbt

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	gomcnbt "github.com/Tnze/go-mc/nbt"
	"github.com/stretchr/testify/require"
)

func sampleTree() *Compound {
	root := NewCompound()
	root.SetByte("byte", -3)
	root.SetShort("short", math.MinInt16)
	root.SetInt("int", 123456)
	root.SetLong("long", math.MaxInt64)
	root.SetFloat("float", 1.5)
	root.SetDouble("double", -0.25)
	root.SetByteArray("bytes", []byte{0, 1, 255})
	root.SetString("string", "héllo")
	root.SetIntArray("ints", []int32{-1, 0, 1 << 30})
	root.SetList("empty", NewList())
	root.SetList("strings", NewListOf(String("a"), String("b")))

	level := NewCompound()
	level.SetInt("xPos", -2)
	section := NewCompound()
	section.SetByte("Y", 0)
	section.SetByteArray("Blocks", make([]byte, 4096))
	level.SetList("Sections", NewListOf(section))
	level.SetList("Nested", NewListOf(NewListOf(Long(1)), NewListOf(Long(2), Long(3))))
	root.SetCompound("Level", level)
	return root
}

func TestRoundTrip_AllVariants(t *testing.T) {
	root := sampleTree()

	var buf bytes.Buffer
	require.NoError(t, Encode(root, &buf))

	decoded, err := Decode(&buf, NewSizeTracker(1<<21))
	require.NoError(t, err)
	require.True(t, Equal(root, decoded))
}

func TestEncode_Deterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, Encode(sampleTree(), &a))
	require.NoError(t, Encode(sampleTree(), &b))
	require.Equal(t, a.Bytes(), b.Bytes())
}

func TestEncode_EmptyRoot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(NewCompound(), &buf))
	require.Equal(t, []byte{10, 0, 0, 0}, buf.Bytes())
}

func nested(depth int) *Compound {
	root := NewCompound()
	cur := root
	for i := 0; i < depth; i++ {
		next := NewCompound()
		cur.SetCompound("c", next)
		cur = next
	}
	return root
}

func TestDecode_DepthGuard(t *testing.T) {
	var ok bytes.Buffer
	require.NoError(t, Encode(nested(MaxDepth), &ok))
	_, err := Decode(&ok, nil)
	require.NoError(t, err)

	var deep bytes.Buffer
	require.NoError(t, Encode(nested(MaxDepth+1), &deep))
	_, err = Decode(&deep, nil)
	require.ErrorIs(t, err, ErrStructureTooDeep)
}

func TestDecode_DepthGuardLists(t *testing.T) {
	var inner Tag = NewListOf(Int(1))
	for i := 0; i < MaxDepth; i++ {
		inner = NewListOf(inner)
	}
	root := NewCompound()
	root.Set("l", inner)

	var buf bytes.Buffer
	require.NoError(t, Encode(root, &buf))
	_, err := Decode(&buf, nil)
	require.ErrorIs(t, err, ErrStructureTooDeep)
}

func TestDecode_TrackerCosts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(NewCompound(), &buf))

	tracker := NewSizeTracker(1000)
	_, err := Decode(&buf, tracker)
	require.NoError(t, err)
	// type 1 + name header 2 + allocation 4 + compound 48 + end 1
	require.Equal(t, int64(56), tracker.Read())
}

func TestDecode_ResourceExhausted(t *testing.T) {
	root := NewCompound()
	root.SetByteArray("a", make([]byte, 1000))
	var buf bytes.Buffer
	require.NoError(t, Encode(root, &buf))
	data := buf.Bytes()

	_, err := Decode(bytes.NewReader(data), NewSizeTracker(500))
	require.ErrorIs(t, err, ErrResourceExhausted)

	_, err = Decode(bytes.NewReader(data), NewSizeTracker(2000))
	require.NoError(t, err)

	_, err = Decode(bytes.NewReader(data), Unlimited())
	require.NoError(t, err)
}

func TestDecode_FormatErrors(t *testing.T) {
	listOfEnd := []byte{10, 0, 0, 9, 0, 1, 'l', 0}
	listOfEnd = binary.BigEndian.AppendUint32(listOfEnd, 2)
	listOfEnd = append(listOfEnd, 0)

	negative := []byte{10, 0, 0, 7, 0, 1, 'b'}
	negative = binary.BigEndian.AppendUint32(negative, 0xffffffff)
	negative = append(negative, 0)

	tests := []struct {
		name string
		data []byte
	}{
		{"root end", []byte{0}},
		{"root not compound", []byte{3, 0, 0, 0, 0, 0, 1}},
		{"unknown type", []byte{10, 0, 0, 42, 0, 1, 'x', 0}},
		{"truncated", []byte{10, 0, 0, 3, 0, 1, 'x', 0}},
		{"empty input", nil},
		{"list of end", listOfEnd},
		{"negative length", negative},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(tc.data), nil)
			require.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestDecode_DuplicateKeyLastWins(t *testing.T) {
	data := []byte{10, 0, 0}
	data = append(data, 1, 0, 1, 'k', 1)
	data = append(data, 1, 0, 1, 'k', 2)
	data = append(data, 0)

	c, err := Decode(bytes.NewReader(data), nil)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	require.Equal(t, int8(2), c.Byte("k"))
}

func TestDecode_EmptyTypedListBecomesEnd(t *testing.T) {
	data := []byte{10, 0, 0, 9, 0, 1, 'l', byte(TypeCompound), 0, 0, 0, 0, 0}
	c, err := Decode(bytes.NewReader(data), nil)
	require.NoError(t, err)
	require.Equal(t, TypeEnd, c.List("l", TypeCompound).ElemType())
}

func TestEncode_StringTooLong(t *testing.T) {
	root := NewCompound()
	root.SetString("s", string(make([]byte, math.MaxUint16+1)))
	require.Error(t, Encode(root, &bytes.Buffer{}))
}

type registryEntry struct {
	K string `nbt:"K"`
	V int32  `nbt:"V"`
}

type interopDoc struct {
	Name    string          `nbt:"Name"`
	Blocks  []byte          `nbt:"Blocks"`
	Entries []registryEntry `nbt:"Entries"`
}

func TestInterop_GoMC(t *testing.T) {
	in := interopDoc{
		Name:    "world",
		Blocks:  []byte{1, 2, 3},
		Entries: []registryEntry{{K: "minecraft:stone", V: 1}, {K: "minecraft:dirt", V: 3}},
	}

	var buf bytes.Buffer
	require.NoError(t, gomcnbt.NewEncoder(&buf).Encode(in, ""))

	c, err := Decode(&buf, nil)
	require.NoError(t, err)
	require.Equal(t, "world", c.String("Name"))
	require.Equal(t, []byte{1, 2, 3}, c.ByteArray("Blocks"))
	entries := c.List("Entries", TypeCompound)
	require.Equal(t, 2, entries.Len())
	require.Equal(t, "minecraft:dirt", entries.CompoundAt(1).String("K"))
	require.Equal(t, int32(3), entries.CompoundAt(1).Int("V"))

	var out bytes.Buffer
	require.NoError(t, Encode(c, &out))
	var back interopDoc
	_, err = gomcnbt.NewDecoder(&out).Decode(&back)
	require.NoError(t, err)
	require.Equal(t, in, back)
}

func TestRoundTrip_ModifiedUTF8(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"encoded nul", []byte{0xc0, 0x80}},
		{"surrogate pair", []byte{0xed, 0xa0, 0xbd, 0xed, 0xb8, 0x80}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := []byte{10, 0, 0, 8, 0, 1, 's', 0, byte(len(tc.payload))}
			data = append(data, tc.payload...)
			data = append(data, 0)

			c, err := Decode(bytes.NewReader(data), nil)
			require.NoError(t, err)
			require.Equal(t, string(tc.payload), c.String("s"))

			var out bytes.Buffer
			require.NoError(t, Encode(c, &out))
			require.Equal(t, data, out.Bytes())
		})
	}
}

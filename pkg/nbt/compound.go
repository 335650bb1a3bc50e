package nbt

import "sort"

// Compound maps names to tags. Keys are unique and the last write wins;
// iteration order carries no meaning. A compound owns its children.
type Compound struct {
	tags map[string]Tag
}

// NewCompound returns an empty compound.
func NewCompound() *Compound {
	return &Compound{tags: make(map[string]Tag)}
}

func (*Compound) Type() Type { return TypeCompound }
func (*Compound) tag()       {}

// Len returns the number of entries.
func (c *Compound) Len() int {
	return len(c.tags)
}

// Keys returns the entry names in sorted order.
func (c *Compound) Keys() []string {
	keys := make([]string, 0, len(c.tags))
	for k := range c.tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the tag stored under key.
func (c *Compound) Get(key string) (Tag, bool) {
	t, ok := c.tags[key]
	return t, ok
}

// Has reports whether key is present.
func (c *Compound) Has(key string) bool {
	_, ok := c.tags[key]
	return ok
}

// HasType reports whether key is present with the given type.
func (c *Compound) HasType(key string, t Type) bool {
	v, ok := c.tags[key]
	return ok && v.Type() == t
}

// TypeOf returns the type stored under key, TypeEnd when absent.
func (c *Compound) TypeOf(key string) Type {
	if v, ok := c.tags[key]; ok {
		return v.Type()
	}
	return TypeEnd
}

// Set stores t under key. End tags are not storable and are ignored.
func (c *Compound) Set(key string, t Tag) {
	if t == nil || t.Type() == TypeEnd {
		return
	}
	c.tags[key] = t
}

// Remove deletes key.
func (c *Compound) Remove(key string) {
	delete(c.tags, key)
}

func (c *Compound) SetByte(key string, v int8)          { c.tags[key] = Byte(v) }
func (c *Compound) SetShort(key string, v int16)        { c.tags[key] = Short(v) }
func (c *Compound) SetInt(key string, v int32)          { c.tags[key] = Int(v) }
func (c *Compound) SetLong(key string, v int64)         { c.tags[key] = Long(v) }
func (c *Compound) SetFloat(key string, v float32)      { c.tags[key] = Float(v) }
func (c *Compound) SetDouble(key string, v float64)     { c.tags[key] = Double(v) }
func (c *Compound) SetString(key string, v string)      { c.tags[key] = String(v) }
func (c *Compound) SetByteArray(key string, v []byte)   { c.tags[key] = ByteArray(v) }
func (c *Compound) SetIntArray(key string, v []int32)   { c.tags[key] = IntArray(v) }
func (c *Compound) SetCompound(key string, v *Compound) { c.tags[key] = v }
func (c *Compound) SetList(key string, v *List)         { c.tags[key] = v }

func (c *Compound) SetBool(key string, v bool) {
	if v {
		c.SetByte(key, 1)
	} else {
		c.SetByte(key, 0)
	}
}

// Numeric getters accept any numeric tag and convert it. A missing key or
// a non-numeric tag yields 0.

func (c *Compound) Byte(key string) int8 {
	i, _, _ := numeric(c.tags[key])
	return int8(i)
}

func (c *Compound) Short(key string) int16 {
	i, _, _ := numeric(c.tags[key])
	return int16(i)
}

func (c *Compound) Int(key string) int32 {
	i, _, _ := numeric(c.tags[key])
	return int32(i)
}

func (c *Compound) Long(key string) int64 {
	i, _, _ := numeric(c.tags[key])
	return i
}

func (c *Compound) Float(key string) float32 {
	_, f, _ := numeric(c.tags[key])
	return float32(f)
}

func (c *Compound) Double(key string) float64 {
	_, f, _ := numeric(c.tags[key])
	return f
}

func (c *Compound) Bool(key string) bool {
	return c.Byte(key) != 0
}

// String returns the string stored under key, or "".
func (c *Compound) String(key string) string {
	if v, ok := c.tags[key].(String); ok {
		return string(v)
	}
	return ""
}

// ByteArray returns the array stored under key, or an empty slice. The
// returned slice aliases the stored one, so writes through it are visible
// in the tree.
func (c *Compound) ByteArray(key string) []byte {
	if v, ok := c.tags[key].(ByteArray); ok {
		return v
	}
	return []byte{}
}

// IntArray returns the array stored under key, or an empty slice. Like
// ByteArray, the result aliases the stored array.
func (c *Compound) IntArray(key string) []int32 {
	if v, ok := c.tags[key].(IntArray); ok {
		return v
	}
	return []int32{}
}

// Compound returns the compound stored under key. When absent or of
// another type a new detached compound is returned.
func (c *Compound) Compound(key string) *Compound {
	if v, ok := c.tags[key].(*Compound); ok {
		return v
	}
	return NewCompound()
}

// List returns the list stored under key if it is empty or holds elements
// of elemType. Otherwise a new detached empty list is returned.
func (c *Compound) List(key string, elemType Type) *List {
	v, ok := c.tags[key].(*List)
	if !ok {
		return NewList()
	}
	if v.Len() > 0 && v.ElemType() != elemType {
		return NewList()
	}
	return v
}

// Merge copies every entry of other into c. Compounds present on both
// sides are merged recursively; any other value is replaced by a deep copy.
func (c *Compound) Merge(other *Compound) {
	for k, v := range other.tags {
		if oc, ok := v.(*Compound); ok {
			if mine, ok := c.tags[k].(*Compound); ok {
				mine.Merge(oc)
				continue
			}
		}
		c.tags[k] = v.Copy()
	}
}

func (c *Compound) Copy() Tag {
	out := &Compound{tags: make(map[string]Tag, len(c.tags))}
	for k, v := range c.tags {
		out.tags[k] = v.Copy()
	}
	return out
}

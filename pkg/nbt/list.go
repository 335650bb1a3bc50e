package nbt

// List is an ordered, homogeneous sequence of unnamed tags. Its element
// type is fixed by the first insertion; an empty list has type End.
type List struct {
	elemType Type
	items    []Tag
}

// NewList returns an empty list.
func NewList() *List {
	return &List{elemType: TypeEnd}
}

// NewListOf builds a list from tags, dropping any whose type differs from
// the first one.
func NewListOf(tags ...Tag) *List {
	l := NewList()
	for _, t := range tags {
		l.Add(t)
	}
	return l
}

func (*List) Type() Type { return TypeList }
func (*List) tag()       {}

// ElemType returns the type shared by every element, or TypeEnd when empty.
func (l *List) ElemType() Type {
	if len(l.items) == 0 {
		return TypeEnd
	}
	return l.elemType
}

// Len returns the number of elements.
func (l *List) Len() int {
	return len(l.items)
}

// Add appends t. End tags and tags whose type differs from the list's
// element type are ignored.
func (l *List) Add(t Tag) {
	if t == nil || t.Type() == TypeEnd {
		return
	}
	if len(l.items) == 0 {
		l.elemType = t.Type()
	} else if l.elemType != t.Type() {
		return
	}
	l.items = append(l.items, t)
}

// Set replaces the element at i when t has the list's element type.
func (l *List) Set(i int, t Tag) {
	if t == nil || i < 0 || i >= len(l.items) || t.Type() != l.elemType {
		return
	}
	l.items[i] = t
}

// Get returns the element at i, or End when i is out of range.
func (l *List) Get(i int) Tag {
	if i < 0 || i >= len(l.items) {
		return End{}
	}
	return l.items[i]
}

// CompoundAt returns the element at i when it is a compound, otherwise a
// new empty compound.
func (l *List) CompoundAt(i int) *Compound {
	if c, ok := l.Get(i).(*Compound); ok {
		return c
	}
	return NewCompound()
}

// Remove deletes and returns the element at i, or End when out of range.
func (l *List) Remove(i int) Tag {
	if i < 0 || i >= len(l.items) {
		return End{}
	}
	t := l.items[i]
	l.items = append(l.items[:i], l.items[i+1:]...)
	if len(l.items) == 0 {
		l.elemType = TypeEnd
	}
	return t
}

func (l *List) Copy() Tag {
	out := &List{elemType: l.elemType, items: make([]Tag, len(l.items))}
	for i, t := range l.items {
		out.items[i] = t.Copy()
	}
	return out
}

package finder

import (
	"fmt"

	"github.com/Mc-Fr/Convertisseur/pkg/block"
)

// Kind selects what a Query matches.
type Kind int

const (
	KindBlock Kind = iota
	KindItem
)

func (k Kind) String() string {
	switch k {
	case KindBlock:
		return "block"
	case KindItem:
		return "item"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Query describes the blocks or items to look for.
type Query struct {
	// Name is the registry name, e.g. minecraft:chest.
	Name string
	// Meta is the metadata or damage value to match, block.AnyMeta for any.
	Meta int
	Kind Kind
}

// Validate checks if the query is usable.
func (q Query) Validate() error {
	if q.Name == "" {
		return fmt.Errorf("query name cannot be empty")
	}
	if q.Meta < block.AnyMeta || (q.Kind == KindBlock && q.Meta > block.MaxMeta) {
		return fmt.Errorf("metadata %d out of range", q.Meta)
	}
	if q.Kind != KindBlock && q.Kind != KindItem {
		return fmt.Errorf("unknown query kind %s", q.Kind)
	}
	return nil
}

func (q Query) matchesMeta(meta int) bool {
	return q.Meta == block.AnyMeta || q.Meta == meta
}

func (q Query) String() string {
	if q.Meta == block.AnyMeta {
		return fmt.Sprintf("%s %s", q.Kind, q.Name)
	}
	return fmt.Sprintf("%s %s/%d", q.Kind, q.Name, q.Meta)
}

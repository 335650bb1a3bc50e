package nbt

import "errors"

var (
	// ErrFormat is returned for structurally invalid input: unknown type
	// bytes, negative lengths, a root that is not a compound.
	ErrFormat = errors.New("nbt: malformed data")
	// ErrResourceExhausted is returned when a decode exceeds its SizeTracker budget.
	ErrResourceExhausted = errors.New("nbt: size budget exhausted")
	// ErrStructureTooDeep is returned when compounds or lists nest deeper than MaxDepth.
	ErrStructureTooDeep = errors.New("nbt: structure too deep")
	// ErrReplace is returned by SafeWrite when the destination could not be removed.
	ErrReplace = errors.New("nbt: failed to replace file")
)

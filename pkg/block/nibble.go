package block

// Nibble returns the 4-bit value of cell i in a packed array: even cells
// use the low nibble of byte i/2, odd cells the high nibble.
func Nibble(arr []byte, i int) int {
	if i%2 == 0 {
		return int(arr[i/2] & 0x0f)
	}
	return int(arr[i/2]&0xf0) >> 4
}

// SetNibble stores v&0xf as the value of cell i, leaving the other cell
// of the same byte untouched.
func SetNibble(arr []byte, i int, v int) {
	if i%2 == 0 {
		arr[i/2] = arr[i/2]&0xf0 | byte(v&0x0f)
	} else {
		arr[i/2] = arr[i/2]&0x0f | byte(v&0x0f)<<4
	}
}

// ComposeID rebuilds a 12-bit identifier from its block byte and add nibble.
func ComposeID(b byte, add int) int {
	return (add&0x0f)<<8 | int(b)
}

// SplitID is the inverse of ComposeID.
func SplitID(id int) (byte, int) {
	return byte(id & 0xff), (id & 0xf00) >> 8
}

// ReadID returns the identifier of cell i.
func ReadID(blocks, add []byte, i int) int {
	return ComposeID(blocks[i], Nibble(add, i))
}

// WriteID stores id in cell i. The add nibble is cleared when id fits in
// one byte.
func WriteID(blocks, add []byte, i int, id int) {
	b, hi := SplitID(id)
	SetNibble(add, i, hi)
	blocks[i] = b
}

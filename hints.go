package fastrpc

import (
	"fmt"
	"strings"
)

// A Hint tells the encoder how to encode a value whose FastRPC type
// is ambiguous.
type Hint string

const (
	// HintFloat encodes a number as a double, even if it is
	// integral.
	HintFloat Hint = "float"
	// HintBinary encodes a list of integers as binary instead of as
	// an array.
	HintBinary Hint = "binary"
)

// Hints provides encoding hints for values, keyed by path.
//
// A path addresses a value within the parameters of a call. Each
// parameter is addressed by its index ("0", "1", ...). Values nested
// inside structs and arrays are addressed by appending the struct
// member name or array index, joined with ".". For example, "1.tags.0"
// is the first element of the "tags" member of the second parameter.
// See [Path].
type Hints interface {
	// Lookup returns the hint for the value at path, if any.
	Lookup(path string) (Hint, bool)
}

// GlobalHint applies the same hint to every value.
type GlobalHint Hint

func (h GlobalHint) Lookup(string) (Hint, bool) {
	return Hint(h), true
}

// PathHints maps paths to the hint for the value at that path.
type PathHints map[string]Hint

func (h PathHints) Lookup(path string) (Hint, bool) {
	ret, ok := h[path]
	return ret, ok
}

// Path returns the hint path for the given sequence of parameter
// indices, array indices and struct member names.
func Path(segments ...any) string {
	var ret strings.Builder
	for i, s := range segments {
		if i > 0 {
			ret.WriteByte('.')
		}
		fmt.Fprint(&ret, s)
	}
	return ret.String()
}

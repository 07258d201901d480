package fastrpc

import (
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Simple is a struct with simple fields.
type Simple struct {
	A int16
	B bool
}

// Nested is a struct with a struct field.
type Nested struct {
	A byte
	B Simple
}

// Embedded is a struct that embeds another struct by value.
type Embedded struct {
	Simple
	C byte
}

// EmbeddedShadow is a struct that embeds another struct by value,
// with one of the embedded fields shadowed by an outer field.
type EmbeddedShadow struct {
	Simple
	B byte
}

// Embedded_P is a struct that embeds another struct by pointer.
type Embedded_P struct {
	*Simple
	C byte
}

// Tagged is a struct whose fields use fastrpc struct tags.
type Tagged struct {
	Name     string `fastrpc:"name"`
	Skip     int    `fastrpc:"-"`
	Opt      int    `fastrpc:"opt,omitempty"`
	Default  int    `fastrpc:",omitempty"`
	internal int
}

// Tree is a self-referential struct. Nil children encode as null.
type Tree struct {
	Left  *Tree
	Right *Tree
}

// Conflict is a struct whose fields map to the same member name.
type Conflict struct {
	A int
	B int `fastrpc:"A"`
}

// BadField is a struct with a field that cannot be encoded.
type BadField struct {
	A int
	F func()
}

// callBytes returns the encoding of a version 2.1 call to method "m",
// with the given encoded parameters.
func callBytes(params ...byte) []byte {
	return append([]byte{0xca, 0x11, 0x02, 0x01, 0x68, 0x01, 'm'}, params...)
}

// responseBytes returns the encoding of a response with the given
// protocol version and encoded value.
func responseBytes(major, minor byte, value ...byte) []byte {
	return append([]byte{0xca, 0x11, major, minor, 0x70}, value...)
}

// cmpValues are the cmp options for comparing decoded value trees.
var cmpValues = []cmp.Option{
	cmpopts.EquateNaNs(),
	cmpopts.EquateEmpty(),
	cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) }),
}

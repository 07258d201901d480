package fragments

import "fmt"

// Version is the protocol version carried in a message header.
type Version struct {
	Major uint8
	Minor uint8
}

// EncodeVersion is the only version the encoder produces.
var EncodeVersion = Version{2, 1}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Dialect returns the decoding rules that apply to messages of
// version v.
//
// Versions are compared as decimal numbers major.minor: anything up
// to and including 1.0 decodes as [DialectV1], exactly 3.0 decodes as
// [DialectV3], and everything else decodes as [DialectV2].
func (v Version) Dialect() Dialect {
	switch {
	case v.Major < 1 || (v.Major == 1 && v.Minor == 0):
		return DialectV1
	case v.Major == 3 && v.Minor == 0:
		return DialectV3
	default:
		return DialectV2
	}
}

// Dialect is a set of version dependent decoding rules.
type Dialect int

const (
	// DialectV1 has no null, and length fields carry their byte
	// count verbatim in the tag. Legacy integers are two's
	// complement.
	DialectV1 Dialect = iota + 1
	// DialectV2 stores byte count minus one in the tag for length
	// fields, and adds null.
	DialectV2
	// DialectV3 is DialectV2 with zigzag integers and 8 byte
	// datetime timestamps.
	DialectV3
)

func (d Dialect) String() string {
	switch d {
	case DialectV1:
		return "v1"
	case DialectV2:
		return "v2"
	case DialectV3:
		return "v3"
	default:
		return fmt.Sprintf("dialect(%d)", int(d))
	}
}

// HasNull reports whether the dialect can represent null.
func (d Dialect) HasNull() bool {
	return d != DialectV1
}

// LengthBytes returns the byte count of a length field, given the
// auxiliary bits of its tag.
func (d Dialect) LengthBytes(aux byte) int {
	if d == DialectV1 {
		return int(aux)
	}
	return int(aux) + 1
}

// TimestampBytes returns the width of a datetime's unix timestamp.
func (d Dialect) TimestampBytes() int {
	if d == DialectV3 {
		return 8
	}
	return 4
}

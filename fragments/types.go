package fragments

import (
	"errors"
	"fmt"
)

// Type is the type id carried in the high 5 bits of a tag byte.
type Type byte

const (
	TypeInt      Type = 1
	TypeBool     Type = 2
	TypeDouble   Type = 3
	TypeString   Type = 4
	TypeDateTime Type = 5
	TypeBinary   Type = 6
	TypeIntPos   Type = 7
	TypeIntNeg   Type = 8
	TypeStruct   Type = 10
	TypeArray    Type = 11
	TypeNull     Type = 12

	// Top-level message types. They share the type id space with
	// values, but only appear immediately after the header.
	TypeCall     Type = 13
	TypeResponse Type = 14
	TypeFault    Type = 15
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeDateTime:
		return "datetime"
	case TypeBinary:
		return "binary"
	case TypeIntPos:
		return "positive int"
	case TypeIntNeg:
		return "negative int"
	case TypeStruct:
		return "struct"
	case TypeArray:
		return "array"
	case TypeNull:
		return "null"
	case TypeCall:
		return "call"
	case TypeResponse:
		return "response"
	case TypeFault:
		return "fault"
	default:
		return fmt.Sprintf("type(%d)", byte(t))
	}
}

// Tag assembles a tag byte from a type id and the 3 auxiliary bits.
func Tag(t Type, aux byte) byte {
	return byte(t)<<3 | aux&7
}

// SplitTag splits a tag byte into its type id and auxiliary bits.
func SplitTag(b byte) (Type, byte) {
	return Type(b >> 3), b & 7
}

// Magic is the two byte signature that starts every FastRPC message.
var Magic = [2]byte{0xCA, 0x11}

var (
	// ErrBufferUnderrun is returned when a read runs past the end of
	// the input.
	ErrBufferUnderrun = errors.New("buffer underrun")
	// ErrInvalidMagic is returned when a message does not start with
	// [Magic].
	ErrInvalidMagic = errors.New("invalid magic")
	// ErrBadLength is returned for a zero byte count where the
	// dialect requires at least one byte.
	ErrBadLength = errors.New("bad length field")
)

package fastrpc

import (
	"errors"
	"fmt"

	"github.com/danderson/fastrpc/fragments"
)

var (
	// ErrInvalidMagic is returned when decoding input that does not
	// start with the FastRPC magic bytes.
	ErrInvalidMagic = fragments.ErrInvalidMagic
	// ErrBufferUnderrun is returned when decoding input that ends in
	// the middle of a value.
	ErrBufferUnderrun = fragments.ErrBufferUnderrun
	// ErrBadLength is returned when decoding a zero-width length
	// field where the protocol version requires at least one byte.
	ErrBadLength = fragments.ErrBadLength
	// ErrInvalidBool is returned when decoding a bool whose value is
	// neither 0 nor 1.
	ErrInvalidBool = errors.New("invalid bool")
	// ErrNullUnsupported is returned when decoding a null in a
	// protocol version 1 message.
	ErrNullUnsupported = errors.New("null not supported in protocol v1")
	// ErrUnknownType is returned when decoding a tag byte with an
	// unknown type id, or a message type in value position.
	ErrUnknownType = errors.New("unknown type")
	// ErrIntegerOverflow is returned when decoding a negative integer
	// whose magnitude does not fit in an int64.
	ErrIntegerOverflow = errors.New("integer overflow")
	// ErrTooDeep is returned when decoding arrays and structs
	// nested deeper than Decode supports.
	ErrTooDeep = errors.New("value nested too deep")
	// ErrUnsupportedValue is matched by every [TypeError].
	ErrUnsupportedValue = errors.New("unsupported value")
	// ErrFault is matched by every [Fault].
	ErrFault = errors.New("fault")
)

// TypeError is the error returned when a value cannot be represented
// in the FastRPC wire format.
type TypeError struct {
	// Type is the name of the type that caused the error.
	Type string
	// Path is the hint path of the offending value, if known.
	Path string
	// Reason is an explanation of why the value isn't representable
	// by FastRPC.
	Reason error
}

func (e TypeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("fastrpc cannot represent %s: %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("fastrpc cannot represent %s at %q: %s", e.Type, e.Path, e.Reason)
}

func (e TypeError) Unwrap() error {
	return e.Reason
}

func (e TypeError) Is(target error) bool {
	return target == ErrUnsupportedValue
}

// Fault is the error returned when decoding a fault message.
//
// Code and Message are filled in when the fault body carries them,
// and left zero otherwise.
type Fault struct {
	Code    int64
	Message string
}

func (f *Fault) Error() string {
	if f.Message == "" {
		return fmt.Sprintf("fault %d", f.Code)
	}
	return fmt.Sprintf("fault %d: %s", f.Code, f.Message)
}

func (f *Fault) Is(target error) bool {
	return target == ErrFault
}

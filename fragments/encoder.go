package fragments

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
	"unicode/utf16"
	"unicode/utf8"
)

// An Encoder provides utilities to write a FastRPC wire format
// message to a byte slice.
//
// Length fields are always written in their smallest form, and in
// the version 2 layout (tag carries byte count minus one). The
// encoder does not support producing other protocol versions.
type Encoder struct {
	// Out is the encoded output.
	Out []byte
}

// Write writes bs as-is to the output. It is the caller's
// responsibility to ensure correct framing.
func (e *Encoder) Write(bs []byte) {
	e.Out = append(e.Out, bs...)
}

// Uint8 writes a single raw byte.
func (e *Encoder) Uint8(u8 uint8) {
	e.Out = append(e.Out, u8)
}

// Header writes the magic bytes and [EncodeVersion].
func (e *Encoder) Header() {
	e.Out = append(e.Out, Magic[0], Magic[1], EncodeVersion.Major, EncodeVersion.Minor)
}

// Length writes a tag of type t, followed by n as a variable width
// length field.
func (e *Encoder) Length(t Type, n uint64) {
	e.magnitudeTag(t, n)
}

// magnitudeTag writes a tag of type t whose auxiliary bits are the
// byte count of n minus one, followed by n.
func (e *Encoder) magnitudeTag(t Type, n uint64) {
	at := len(e.Out)
	e.Out = append(e.Out, 0)
	e.Out = AppendMagnitude(e.Out, n)
	e.Out[at] = Tag(t, byte(len(e.Out)-at-2))
}

// Null writes a null value.
func (e *Encoder) Null() {
	e.Out = append(e.Out, Tag(TypeNull, 0))
}

// Bool writes a bool value.
func (e *Encoder) Bool(b bool) {
	var aux byte
	if b {
		aux = 1
	}
	e.Out = append(e.Out, Tag(TypeBool, aux))
}

// Int writes a signed integer in sign-magnitude form.
func (e *Encoder) Int(i int64) {
	if i >= 0 {
		e.magnitudeTag(TypeIntPos, uint64(i))
		return
	}
	// -(i+1) can't overflow, even for MinInt64.
	e.magnitudeTag(TypeIntNeg, uint64(-(i+1))+1)
}

// Uint writes an unsigned integer in sign-magnitude form.
func (e *Encoder) Uint(u uint64) {
	e.magnitudeTag(TypeIntPos, u)
}

// Double writes an IEEE-754 binary64 value.
func (e *Encoder) Double(f float64) {
	e.Out = append(e.Out, Tag(TypeDouble, 0))
	e.Out = binary.LittleEndian.AppendUint64(e.Out, math.Float64bits(f))
}

// String writes a string value, UTF-8 encoded.
func (e *Encoder) String(s string) {
	bs := AppendUTF8(nil, s)
	e.Length(TypeString, uint64(len(bs)))
	e.Out = append(e.Out, bs...)
}

// Binary writes a binary value.
func (e *Encoder) Binary(bs []byte) {
	e.Length(TypeBinary, uint64(len(bs)))
	e.Out = append(e.Out, bs...)
}

// Array writes an array header for n elements, then calls elements
// to write the n elements.
func (e *Encoder) Array(n int, elements func() error) error {
	e.Length(TypeArray, uint64(n))
	return elements()
}

// Struct writes a struct header for n members, then calls members to
// write the n members. Each member must be written as a
// [Encoder.MemberName] followed by a value.
func (e *Encoder) Struct(n int, members func() error) error {
	e.Length(TypeStruct, uint64(n))
	return members()
}

// MemberName writes a struct member name. Names are limited to 255
// bytes of UTF-8.
func (e *Encoder) MemberName(name string) error {
	return e.shortString(name, "struct member name")
}

// Call writes the top-level tag and method name of a call
// message. Parameters follow as regular values.
func (e *Encoder) Call(method string) error {
	e.Out = append(e.Out, Tag(TypeCall, 0))
	return e.shortString(method, "method name")
}

func (e *Encoder) shortString(s, what string) error {
	bs := AppendUTF8(nil, s)
	if len(bs) > math.MaxUint8 {
		return fmt.Errorf("%s %q is %d bytes long, maximum is %d", what, s, len(bs), math.MaxUint8)
	}
	e.Out = append(e.Out, byte(len(bs)))
	e.Out = append(e.Out, bs...)
	return nil
}

// DateTime writes a datetime value.
//
// Timestamps before 1970 or at and after 2^31 seconds cannot be
// represented, and are written as -1. The calendar fields are
// written for t's own location, but decoders only use the timestamp.
func (e *Encoder) DateTime(t time.Time) {
	e.Out = append(e.Out, Tag(TypeDateTime, 0))

	_, offset := t.Zone()
	e.Out = append(e.Out, byte(int8(offset/900)))

	ts := t.Unix()
	if ts < 0 || ts >= 1<<31 {
		ts = -1
	}
	e.Out = binary.LittleEndian.AppendUint32(e.Out, uint32(int32(ts)))

	year := min(max(t.Year()-1600, 0), 2047)
	month := int(t.Month())
	day := t.Day()
	dow := int(t.Weekday())
	hour, minute, sec := t.Clock()

	e.Out = append(e.Out,
		byte((sec&0x1f)<<3|dow&0x07),
		byte((minute&0x3f)<<1|(sec&0x20)>>5|(hour&0x01)<<7),
		byte((hour&0x1e)>>1|(day&0x0f)<<4),
		byte((day&0x1f)>>4|(month&0x0f)<<1|(year&0x07)<<5),
		byte((year&0x07f8)>>3),
	)
}

// AppendMagnitude appends n to dst as the smallest sequence of
// little-endian base-256 digits. Zero is a single zero byte.
func AppendMagnitude(dst []byte, n uint64) []byte {
	if n == 0 {
		return append(dst, 0)
	}
	for n > 0 {
		dst = append(dst, byte(n))
		n >>= 8
	}
	return dst
}

// AppendUTF8 appends the UTF-8 encoding of s to dst.
//
// Go strings are normally UTF-8 already and are copied verbatim. A
// surrogate pair that was encoded as two 3-byte sequences (as
// produced by CESU-8 or naive UTF-16 conversions) is combined into a
// single 4-byte code point. Other invalid bytes are passed through
// unchanged.
func AppendUTF8(dst []byte, s string) []byte {
	if utf8.ValidString(s) {
		return append(dst, s...)
	}
	for i := 0; i < len(s); {
		r, n := utf8.DecodeRuneInString(s[i:])
		if r != utf8.RuneError || n != 1 {
			dst = append(dst, s[i:i+n]...)
			i += n
			continue
		}
		if hi, ok := surrogateAt(s, i); ok && hi < 0xDC00 {
			if lo, ok := surrogateAt(s, i+3); ok && lo >= 0xDC00 {
				dst = utf8.AppendRune(dst, utf16.DecodeRune(hi, lo))
				i += 6
				continue
			}
		}
		dst = append(dst, s[i])
		i++
	}
	return dst
}

// surrogateAt decodes a UTF-16 surrogate code unit encoded as a
// 3-byte UTF-8 style sequence at s[i:].
func surrogateAt(s string, i int) (rune, bool) {
	if i+3 > len(s) {
		return 0, false
	}
	b0, b1, b2 := s[i], s[i+1], s[i+2]
	if b0 != 0xED || b1&0xE0 != 0xA0 || b2&0xC0 != 0x80 {
		return 0, false
	}
	return rune(b0&0x0F)<<12 | rune(b1&0x3F)<<6 | rune(b2&0x3F), true
}

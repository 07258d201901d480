package fragments

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// A Decoder provides utilities to read a FastRPC wire format message
// from a byte slice.
//
// A Decoder is a read cursor over In. It is not safe for concurrent
// use, and should be created fresh for each message.
type Decoder struct {
	// Dialect selects the version dependent decoding rules. It is
	// set by [Decoder.Header].
	Dialect Dialect
	// In is the input to read.
	In []byte

	// offset is the number of bytes consumed off the front of In so
	// far.
	offset int
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int {
	return d.offset
}

// Remaining returns the number of bytes left to read.
func (d *Decoder) Remaining() int {
	return len(d.In) - d.offset
}

// Read reads n bytes, with no framing. The returned slice aliases
// [Decoder.In].
func (d *Decoder) Read(n uint64) ([]byte, error) {
	if n > uint64(d.Remaining()) {
		return nil, fmt.Errorf("reading %d bytes at offset %d: %w", n, d.offset, ErrBufferUnderrun)
	}
	ret := d.In[d.offset : d.offset+int(n)]
	d.offset += int(n)
	return ret, nil
}

// Uint8 reads a single raw byte.
func (d *Decoder) Uint8() (uint8, error) {
	bs, err := d.Read(1)
	if err != nil {
		return 0, err
	}
	return bs[0], nil
}

// Tag reads a tag byte, and returns its type id and auxiliary bits.
func (d *Decoder) Tag() (Type, byte, error) {
	b, err := d.Uint8()
	if err != nil {
		return 0, 0, err
	}
	t, aux := SplitTag(b)
	return t, aux, nil
}

// Header reads the magic bytes and protocol version of a message,
// and sets [Decoder.Dialect] to match the version.
func (d *Decoder) Header() (Version, error) {
	bs, err := d.Read(4)
	if err != nil {
		return Version{}, err
	}
	if bs[0] != Magic[0] || bs[1] != Magic[1] {
		return Version{}, fmt.Errorf("got % x: %w", bs[:2], ErrInvalidMagic)
	}
	v := Version{bs[2], bs[3]}
	d.Dialect = v.Dialect()
	return v, nil
}

// Magnitude reads a k byte little-endian unsigned value. k must be at
// most 8.
func (d *Decoder) Magnitude(k int) (uint64, error) {
	if k < 0 || k > 8 {
		return 0, fmt.Errorf("%d byte magnitude at offset %d: %w", k, d.offset, ErrBadLength)
	}
	bs, err := d.Read(uint64(k))
	if err != nil {
		return 0, err
	}
	var ret uint64
	for i := len(bs) - 1; i >= 0; i-- {
		ret = ret<<8 | uint64(bs[i])
	}
	return ret, nil
}

// Count reads the element count of a struct or array, given the
// auxiliary bits of its tag.
func (d *Decoder) Count(aux byte) (uint64, error) {
	return d.Magnitude(d.Dialect.LengthBytes(aux))
}

// Size reads the byte length of a string or binary, given the
// auxiliary bits of its tag. Unlike [Decoder.Count], a zero-width
// length field is an error.
func (d *Decoder) Size(aux byte) (uint64, error) {
	k := d.Dialect.LengthBytes(aux)
	if k == 0 {
		return 0, fmt.Errorf("zero width size at offset %d: %w", d.offset, ErrBadLength)
	}
	return d.Magnitude(k)
}

// Text reads n bytes and returns them as a string. The bytes are not
// validated as UTF-8.
func (d *Decoder) Text(n uint64) (string, error) {
	bs, err := d.Read(n)
	if err != nil {
		return "", err
	}
	return string(bs), nil
}

// Bytes reads n bytes into a newly allocated slice.
func (d *Decoder) Bytes(n uint64) ([]byte, error) {
	bs, err := d.Read(n)
	if err != nil {
		return nil, err
	}
	ret := make([]byte, len(bs))
	copy(ret, bs)
	return ret, nil
}

// ShortString reads a string with a single byte length prefix, as
// used for struct member and method names.
func (d *Decoder) ShortString() (string, error) {
	n, err := d.Uint8()
	if err != nil {
		return "", err
	}
	return d.Text(uint64(n))
}

// Double reads an IEEE-754 binary64 value.
func (d *Decoder) Double() (float64, error) {
	bs, err := d.Read(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(bs)), nil
}

// Int reads the payload of a [TypeInt] value, given the auxiliary
// bits of its tag.
//
// In [DialectV3], the payload is a zigzag encoded value of aux+1
// bytes. Otherwise, it is a 32-bit two's complement value stored in
// aux bytes.
func (d *Decoder) Int(aux byte) (int64, error) {
	if d.Dialect == DialectV3 {
		v, err := d.Magnitude(int(aux) + 1)
		if err != nil {
			return 0, err
		}
		if v&1 == 1 {
			return -int64(v>>1) - 1, nil
		}
		return int64(v >> 1), nil
	}

	if aux == 0 {
		return 0, fmt.Errorf("zero width int at offset %d: %w", d.offset, ErrBadLength)
	}
	v, err := d.Magnitude(int(aux))
	if err != nil {
		return 0, err
	}
	ret := int64(v)
	if v >= 1<<31 {
		ret -= 1 << 32
	}
	return ret, nil
}

// DateTime reads the payload of a [TypeDateTime] value.
//
// Only the unix timestamp is used. The zone offset and the redundant
// calendar fields are consumed and discarded. The result is in UTC.
func (d *Decoder) DateTime() (time.Time, error) {
	if _, err := d.Uint8(); err != nil {
		return time.Time{}, err
	}
	n := d.Dialect.TimestampBytes()
	raw, err := d.Magnitude(n)
	if err != nil {
		return time.Time{}, err
	}
	var ts int64
	if n == 4 {
		ts = int64(int32(uint32(raw)))
	} else {
		ts = int64(raw)
	}
	if _, err := d.Read(5); err != nil {
		return time.Time{}, err
	}
	return time.Unix(ts, 0).UTC(), nil
}

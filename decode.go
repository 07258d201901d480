package fastrpc

import (
	"fmt"
	"log"
	"math"

	"github.com/danderson/fastrpc/fragments"
)

// Decode decodes a FastRPC message.
//
// Values decode to the following Go types: null to nil, bool to bool,
// integers to int64, doubles to float64, strings to string, binaries
// to []byte, arrays to []any, structs to [Struct] and datetimes to
// [time.Time] in UTC. Positive integers larger than [math.MaxInt64]
// decode to uint64.
//
// The protocol version in the message header selects the decoding
// rules for integers, nulls and length fields. Decode accepts all
// protocol versions, even though [Encode] only produces version 2.1.
//
// If the message is a fault, Decode returns a [*Fault] error. Decode
// never returns a partially decoded message.
func Decode(bs []byte) (Message, error) {
	dec := fragments.Decoder{In: bs}
	if _, err := dec.Header(); err != nil {
		return nil, err
	}
	t, _, err := dec.Tag()
	if err != nil {
		return nil, err
	}
	debugDecoder("message %s, dialect %s", t, dec.Dialect)

	switch t {
	case fragments.TypeResponse:
		v, err := decodeValue(&dec, 0)
		if err != nil {
			return nil, err
		}
		return &Response{v}, nil
	case fragments.TypeCall:
		method, err := dec.ShortString()
		if err != nil {
			return nil, err
		}
		ret := &Call{Method: method}
		for dec.Remaining() > 0 {
			v, err := decodeValue(&dec, 0)
			if err != nil {
				return nil, err
			}
			ret.Params = append(ret.Params, v)
		}
		return ret, nil
	case fragments.TypeFault:
		return nil, decodeFault(&dec)
	default:
		return nil, fmt.Errorf("message type %s: %w", t, ErrUnknownType)
	}
}

// decodeFault reads the body of a fault message, which is usually a
// status code followed by a message string. Bodies that don't match
// produce a Fault with the missing parts left zero.
func decodeFault(dec *fragments.Decoder) *Fault {
	ret := &Fault{}
	if dec.Remaining() == 0 {
		return ret
	}
	code, err := decodeValue(dec, 0)
	if err != nil {
		return ret
	}
	if c, ok := code.(int64); ok {
		ret.Code = c
	}
	if dec.Remaining() == 0 {
		return ret
	}
	msg, err := decodeValue(dec, 0)
	if err != nil {
		return ret
	}
	if m, ok := msg.(string); ok {
		ret.Message = m
	}
	return ret
}

const debugDecoders = false

func debugDecoder(msg string, args ...any) {
	if !debugDecoders {
		return
	}
	log.Printf(msg, args...)
}

// maxDecodeDepth is the deepest nesting of arrays and structs that Decode
// accepts.
const maxDecodeDepth = 1000

// decodeValue reads one value, nested depth arrays and structs deep.
func decodeValue(dec *fragments.Decoder, depth int) (any, error) {
	at := dec.Offset()
	t, aux, err := dec.Tag()
	if err != nil {
		return nil, err
	}
	debugDecoder("%s at offset %d", t, at)

	switch t {
	case fragments.TypeNull:
		if !dec.Dialect.HasNull() {
			return nil, fmt.Errorf("offset %d: %w", at, ErrNullUnsupported)
		}
		return nil, nil
	case fragments.TypeBool:
		switch aux {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
		return nil, fmt.Errorf("bool value %d at offset %d: %w", aux, at, ErrInvalidBool)
	case fragments.TypeInt:
		return dec.Int(aux)
	case fragments.TypeIntPos:
		u, err := dec.Magnitude(int(aux) + 1)
		if err != nil {
			return nil, err
		}
		if u > math.MaxInt64 {
			return u, nil
		}
		return int64(u), nil
	case fragments.TypeIntNeg:
		u, err := dec.Magnitude(int(aux) + 1)
		if err != nil {
			return nil, err
		}
		if u > 1<<63 {
			return nil, fmt.Errorf("negative int of magnitude %d at offset %d: %w", u, at, ErrIntegerOverflow)
		}
		return -int64(u), nil
	case fragments.TypeDouble:
		return dec.Double()
	case fragments.TypeString:
		n, err := dec.Size(aux)
		if err != nil {
			return nil, err
		}
		return dec.Text(n)
	case fragments.TypeBinary:
		n, err := dec.Size(aux)
		if err != nil {
			return nil, err
		}
		return dec.Bytes(n)
	case fragments.TypeDateTime:
		return dec.DateTime()
	case fragments.TypeArray, fragments.TypeStruct:
		if depth >= maxDecodeDepth {
			return nil, fmt.Errorf("%s at offset %d nested more than %d deep: %w", t, at, maxDecodeDepth, ErrTooDeep)
		}
		if t == fragments.TypeArray {
			return decodeArray(dec, aux, depth+1)
		}
		return decodeStruct(dec, aux, depth+1)
	}
	return nil, fmt.Errorf("%s at offset %d: %w", t, at, ErrUnknownType)
}

func decodeArray(dec *fragments.Decoder, aux byte, depth int) ([]any, error) {
	n, err := dec.Count(aux)
	if err != nil {
		return nil, err
	}
	// Every element is at least one byte long, so the remaining
	// input bounds the allocation.
	ret := make([]any, 0, min(n, uint64(dec.Remaining())))
	for range n {
		v, err := decodeValue(dec, depth)
		if err != nil {
			return nil, err
		}
		ret = append(ret, v)
	}
	return ret, nil
}

func decodeStruct(dec *fragments.Decoder, aux byte, depth int) (Struct, error) {
	n, err := dec.Count(aux)
	if err != nil {
		return nil, err
	}
	ret := make(Struct, 0, min(n, uint64(dec.Remaining())))
	idx := map[string]int{}
	for range n {
		name, err := dec.ShortString()
		if err != nil {
			return nil, err
		}
		v, err := decodeValue(dec, depth)
		if err != nil {
			return nil, err
		}
		// Repeated names overwrite the earlier value in place.
		if i, ok := idx[name]; ok {
			ret[i].Value = v
			continue
		}
		idx[name] = len(ret)
		ret = append(ret, Member{name, v})
	}
	return ret, nil
}

package fastrpc

import (
	"cmp"
	"errors"
	"fmt"
	"log"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/creachadair/mds/mapset"
	"github.com/danderson/fastrpc/fragments"
)

// Encode returns the FastRPC wire encoding of a call to method with
// the given parameters.
//
// Encode traverses each parameter recursively, and uses the following
// type-dependent encodings:
//
// nil, nil pointers and nil interfaces encode as null.
//
// bool encodes as a FastRPC bool, string as a FastRPC string and
// [time.Time] as a FastRPC datetime.
//
// Integer values encode as FastRPC integers. Floating point values
// encode as FastRPC doubles if they have a fractional part, are not
// finite or are out of int64 range. Integral floating point values
// encode as integers. A [HintFloat] hint forces either kind of number
// to encode as a double.
//
// []byte and [N]byte values encode as FastRPC binaries. Other slices
// and arrays encode as FastRPC arrays, or as binaries if hinted with
// [HintBinary] and all elements are integers between 0 and 255. Nil
// slices encode the same as an empty slice.
//
// [Struct], map[string]V and struct values encode as FastRPC
// structs. Map members are encoded in sorted key order. Each exported
// struct field is encoded in declaration order, according to its own
// type. The "fastrpc" struct tag can rename a member, omit it when
// empty with the "omitempty" option, or skip it with "-". Embedded
// struct fields are encoded as if their inner exported fields were
// fields in the outer struct, subject to the usual Go visibility
// rules.
//
// Pointer values encode as the value pointed to.
//
// uintptr, complex, channel, function and unsafe pointer values, and
// maps with non-string keys, cannot be encoded. Attempting to encode
// such values causes Encode to return a [TypeError].
//
// hints may be nil. See [Hints] for how paths address parameters.
func Encode(method string, params []any, hints Hints) ([]byte, error) {
	st := encodeState{hints: hints}
	st.Header()
	if err := st.Call(method); err != nil {
		return nil, TypeError{"string", "", err}
	}
	for i, p := range params {
		st.push(strconv.Itoa(i))
		if err := st.value(reflect.ValueOf(p)); err != nil {
			return nil, st.annotate(err)
		}
		st.pop()
	}
	return st.Out, nil
}

// encodeState is the state of a single Encode call.
type encodeState struct {
	fragments.Encoder
	hints Hints
	path  []string
}

func (st *encodeState) push(segment string) {
	st.path = append(st.path, segment)
}

func (st *encodeState) pop() {
	st.path = st.path[:len(st.path)-1]
}

func (st *encodeState) pathString() string {
	return strings.Join(st.path, ".")
}

// hint returns the hint for the value currently being encoded, or ""
// if there is none.
func (st *encodeState) hint() Hint {
	if st.hints == nil {
		return ""
	}
	ret, ok := st.hints.Lookup(st.pathString())
	if !ok {
		return ""
	}
	return ret
}

// value encodes v, which may be the invalid zero reflect.Value of a
// nil interface.
func (st *encodeState) value(v reflect.Value) error {
	if !v.IsValid() {
		st.Null()
		return nil
	}
	enc, err := encoderFor(v.Type())
	if err != nil {
		return err
	}
	return enc(st, v)
}

// typeErr returns a TypeError for the value currently being encoded.
func (st *encodeState) typeErr(t reflect.Type, reason string, args ...any) error {
	return TypeError{t.String(), st.pathString(), fmt.Errorf(reason, args...)}
}

// annotate fills in the path of a TypeError that was created without
// knowledge of the value being encoded.
func (st *encodeState) annotate(err error) error {
	var te TypeError
	if errors.As(err, &te) && te.Path == "" {
		te.Path = st.pathString()
		return te
	}
	return err
}

type encoderFunc func(st *encodeState, v reflect.Value) error

const debugEncoders = false

func debugEncoder(msg string, args ...any) {
	if !debugEncoders {
		return
	}
	log.Printf(msg, args...)
}

var encoders cache[encoderFunc]

func init() {
	encoders.Derive = deriveEncoder
	encoders.Forward = func(get func() encoderFunc) encoderFunc {
		return func(st *encodeState, v reflect.Value) error {
			return get()(st, v)
		}
	}
	encoders.OnError = newErrEncoder
}

func encoderFor(t reflect.Type) (encoderFunc, error) {
	return encoders.Get(t)
}

func typeErr(t reflect.Type, reason string, args ...any) error {
	return TypeError{t.String(), "", fmt.Errorf(reason, args...)}
}

func deriveEncoder(t reflect.Type) (encoderFunc, error) {
	debugEncoder("encoderFor(%s)", t)
	defer debugEncoder("end encoderFor(%s)", t)

	switch {
	case t == timeType:
		return newTimeEncoder(), nil
	case t == structType:
		return newMemberListEncoder(), nil
	case intKinds.Has(t.Kind()):
		return newIntEncoder(), nil
	case uintKinds.Has(t.Kind()):
		return newUintEncoder(), nil
	case floatKinds.Has(t.Kind()):
		return newFloatEncoder(), nil
	}

	switch t.Kind() {
	case reflect.Interface:
		return newInterfaceEncoder(), nil
	case reflect.Pointer:
		return newPtrEncoder(t)
	case reflect.Bool:
		return newBoolEncoder(), nil
	case reflect.String:
		return newStringEncoder(), nil
	case reflect.Slice, reflect.Array:
		return newSliceEncoder(t)
	case reflect.Map:
		return newMapEncoder(t)
	case reflect.Struct:
		return newStructEncoder(t)
	case reflect.Uintptr:
		return nil, typeErr(t, "uintptr is not a number, convert to uint64")
	}
	return nil, typeErr(t, "no fastrpc mapping for type")
}

func newErrEncoder(err error) encoderFunc {
	return func(*encodeState, reflect.Value) error {
		return err
	}
}

// maxDepth is the deepest nesting Encode follows through pointers
// and interfaces, to stop on cyclic values.
const maxDepth = 1000

func newInterfaceEncoder() encoderFunc {
	return func(st *encodeState, v reflect.Value) error {
		if v.IsNil() {
			st.Null()
			return nil
		}
		if len(st.path) > maxDepth {
			return st.typeErr(v.Type(), "value nested more than %d deep, possibly cyclic", maxDepth)
		}
		return st.value(v.Elem())
	}
}

func newPtrEncoder(t reflect.Type) (encoderFunc, error) {
	elemEnc, err := encoderFor(t.Elem())
	if err != nil {
		return nil, err
	}
	fn := func(st *encodeState, v reflect.Value) error {
		if v.IsNil() {
			st.Null()
			return nil
		}
		if len(st.path) > maxDepth {
			return st.typeErr(t, "value nested more than %d deep, possibly cyclic", maxDepth)
		}
		return elemEnc(st, v.Elem())
	}
	return fn, nil
}

func newBoolEncoder() encoderFunc {
	return func(st *encodeState, v reflect.Value) error {
		st.Bool(v.Bool())
		return nil
	}
}

func newIntEncoder() encoderFunc {
	return func(st *encodeState, v reflect.Value) error {
		if st.hint() == HintFloat {
			st.Double(float64(v.Int()))
		} else {
			st.Int(v.Int())
		}
		return nil
	}
}

func newUintEncoder() encoderFunc {
	return func(st *encodeState, v reflect.Value) error {
		if st.hint() == HintFloat {
			st.Double(float64(v.Uint()))
		} else {
			st.Uint(v.Uint())
		}
		return nil
	}
}

func newFloatEncoder() encoderFunc {
	return func(st *encodeState, v reflect.Value) error {
		f := v.Float()
		if st.hint() == HintFloat || !isIntegral(f) {
			st.Double(f)
		} else {
			st.Int(int64(f))
		}
		return nil
	}
}

// isIntegral reports whether f is a whole number that fits in an
// int64.
func isIntegral(f float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	return f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64
}

func newStringEncoder() encoderFunc {
	return func(st *encodeState, v reflect.Value) error {
		st.String(v.String())
		return nil
	}
}

func newTimeEncoder() encoderFunc {
	return func(st *encodeState, v reflect.Value) error {
		st.DateTime(v.Interface().(time.Time))
		return nil
	}
}

func newSliceEncoder(t reflect.Type) (encoderFunc, error) {
	if t.Elem().Kind() == reflect.Uint8 {
		// Fast path for []byte
		return func(st *encodeState, v reflect.Value) error {
			if v.Kind() == reflect.Slice {
				st.Binary(v.Bytes())
				return nil
			}
			bs := make([]byte, v.Len())
			for i := range bs {
				bs[i] = byte(v.Index(i).Uint())
			}
			st.Binary(bs)
			return nil
		}, nil
	}

	elemEnc, err := encoderFor(t.Elem())
	if err != nil {
		return nil, err
	}

	fn := func(st *encodeState, v reflect.Value) error {
		if st.hint() == HintBinary {
			return st.hintedBinary(v)
		}
		ln := v.Len()
		return st.Array(ln, func() error {
			for i := range ln {
				st.push(strconv.Itoa(i))
				if err := elemEnc(st, v.Index(i)); err != nil {
					return err
				}
				st.pop()
			}
			return nil
		})
	}
	return fn, nil
}

// hintedBinary encodes the list v as a binary. Every element of v must
// be an integer in the range [0, 255].
func (st *encodeState) hintedBinary(v reflect.Value) error {
	bs := make([]byte, v.Len())
	for i := range bs {
		elem := derefValue(v.Index(i))
		if !elem.IsValid() {
			return st.typeErr(v.Type(), "binary element %d is nil", i)
		}
		var n int64
		switch k := elem.Kind(); {
		case intKinds.Has(k):
			n = elem.Int()
		case uintKinds.Has(k):
			n = int64(min(elem.Uint(), math.MaxUint8+1))
		default:
			return st.typeErr(v.Type(), "binary element %d is a %s, not an integer", i, elem.Type())
		}
		if n < 0 || n > math.MaxUint8 {
			return st.typeErr(v.Type(), "binary element %d is out of byte range", i)
		}
		bs[i] = byte(n)
	}
	st.Binary(bs)
	return nil
}

// member encodes one struct member.
func (st *encodeState) member(name string, enc encoderFunc, v reflect.Value) error {
	if err := st.MemberName(name); err != nil {
		return st.typeErr(v.Type(), "%w", err)
	}
	st.push(name)
	if err := enc(st, v); err != nil {
		return err
	}
	st.pop()
	return nil
}

func newMemberListEncoder() encoderFunc {
	return func(st *encodeState, v reflect.Value) error {
		ms := v.Interface().(Struct)
		seen := mapset.New[string]()
		for _, m := range ms {
			if seen.Has(m.Name) {
				return st.typeErr(v.Type(), "duplicate member name %q", m.Name)
			}
			seen.Add(m.Name)
		}
		return st.Struct(len(ms), func() error {
			for _, m := range ms {
				if err := st.MemberName(m.Name); err != nil {
					return st.typeErr(v.Type(), "%w", err)
				}
				st.push(m.Name)
				if err := st.value(reflect.ValueOf(m.Value)); err != nil {
					return err
				}
				st.pop()
			}
			return nil
		})
	}
}

func newMapEncoder(t reflect.Type) (encoderFunc, error) {
	if t.Key().Kind() != reflect.String {
		return nil, typeErr(t, "invalid map key type %s, must be a string", t.Key())
	}
	vEnc, err := encoderFor(t.Elem())
	if err != nil {
		return nil, err
	}

	fn := func(st *encodeState, v reflect.Value) error {
		ks := v.MapKeys()
		slices.SortFunc(ks, func(a, b reflect.Value) int {
			return cmp.Compare(a.String(), b.String())
		})
		return st.Struct(len(ks), func() error {
			for _, k := range ks {
				if err := st.member(k.String(), vEnc, v.MapIndex(k)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return fn, nil
}

func newStructEncoder(t reflect.Type) (encoderFunc, error) {
	info, err := getStructInfo(t)
	if err != nil {
		return nil, typeErr(t, "%w", err)
	}
	debugEncoder("%s", info)

	encs := make([]encoderFunc, len(info.Fields))
	for i, f := range info.Fields {
		encs[i], err = encoderFor(f.Type)
		if err != nil {
			return nil, err
		}
	}

	fn := func(st *encodeState, v reflect.Value) error {
		type member struct {
			f   *structField
			enc encoderFunc
			v   reflect.Value
		}
		ms := make([]member, 0, len(info.Fields))
		for i, f := range info.Fields {
			fv := f.Get(v)
			if f.OmitEmpty && fv.IsZero() {
				continue
			}
			ms = append(ms, member{f, encs[i], fv})
		}
		return st.Struct(len(ms), func() error {
			for _, m := range ms {
				if err := st.member(m.f.Name, m.enc, m.v); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return fn, nil
}

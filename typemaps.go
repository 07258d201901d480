package fastrpc

import (
	"reflect"
	"time"

	"github.com/creachadair/mds/mapset"
)

var (
	// intKinds is the set of signed integer kinds.
	intKinds = mapset.New(
		reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64,
	)

	// uintKinds is the set of unsigned integer kinds. uintptr is
	// deliberately absent, it is not a number.
	uintKinds = mapset.New(
		reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64,
	)

	// floatKinds is the set of floating point kinds.
	floatKinds = mapset.New(
		reflect.Float32,
		reflect.Float64,
	)

	timeType   = reflect.TypeFor[time.Time]()
	structType = reflect.TypeFor[Struct]()
)

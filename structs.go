package fastrpc

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/creachadair/mds/mapset"
)

// structField is the information about a struct field that needs to
// be encoded.
type structField struct {
	// Name is the FastRPC member name of the field.
	Name string
	// Index is the field's index sequence, for use with
	// reflect.Value.FieldByIndexErr.
	Index []int
	Type  reflect.Type
	// OmitEmpty is whether to skip the field when it holds the zero
	// value of its type.
	OmitEmpty bool
}

// Get loads the struct field from structVal. If loading requires
// traversing a nil pointer into an embedded struct, Get returns a
// zero value of the field.
func (f *structField) Get(structVal reflect.Value) reflect.Value {
	v, err := structVal.FieldByIndexErr(f.Index)
	if err != nil {
		return reflect.Zero(f.Type)
	}
	return v
}

func (f *structField) String() string {
	omit := ""
	if f.OmitEmpty {
		omit = ", omitempty"
	}
	return fmt.Sprintf("%s: %s at %v%s", f.Name, f.Type, f.Index, omit)
}

// structInfo is the information about a struct relevant to encoding.
type structInfo struct {
	// Type is the struct's type, for use in diagnostics.
	Type reflect.Type
	// Fields is the information about each struct field eligible
	// for FastRPC encoding, in declaration order.
	Fields []*structField
}

func (s *structInfo) String() string {
	var ret strings.Builder
	fmt.Fprintf(&ret, "%s, fields:\n", s.Type)
	for _, f := range s.Fields {
		ret.WriteString(f.String())
		ret.WriteByte('\n')
	}
	return ret.String()
}

// getStructInfo returns the structInfo for t.
//
// getStructInfo returns an error if t is not a struct, or if the
// struct's fields map to conflicting member names.
func getStructInfo(t reflect.Type) (*structInfo, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%s is not a struct", t)
	}

	ret := &structInfo{Type: t}
	seen := mapset.New[string]()
	for _, field := range reflect.VisibleFields(t) {
		if field.Anonymous || !field.IsExported() {
			continue
		}
		name, omitEmpty, skip := parseStructTag(field)
		if skip {
			continue
		}
		if seen.Has(name) {
			return nil, fmt.Errorf("duplicate member name %q in struct %s", name, t)
		}
		seen.Add(name)
		ret.Fields = append(ret.Fields, &structField{
			Name:      name,
			Index:     field.Index,
			Type:      field.Type,
			OmitEmpty: omitEmpty,
		})
	}
	return ret, nil
}

// parseStructTag returns the information contained in field's
// "fastrpc" struct tag.
//
// The tag's first element renames the member, the remaining elements
// are options. A tag of "-" skips the field.
func parseStructTag(field reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := field.Tag.Get("fastrpc")
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}
	for _, o := range strings.Split(opts, ",") {
		if o == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

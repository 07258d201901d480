package fragments_test

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/danderson/fastrpc/fragments"
)

type mustDecoder struct {
	t *testing.T
	*fragments.Decoder
}

func (d *mustDecoder) MustRead(n uint64, want []byte) {
	got, err := d.Read(n)
	if err != nil {
		d.t.Fatalf("Read(%d) got err: %v", n, err)
	}
	if !bytes.Equal(got, want) {
		d.t.Fatalf("Read(%d) wrong output:\n  got: % x\n want: % x", n, got, want)
	}
	if testing.Verbose() {
		d.t.Logf("Read(%d) = % x", n, got)
	}
}

func (d *mustDecoder) MustTag(wantType fragments.Type, wantAux byte) {
	gotType, gotAux, err := d.Tag()
	if err != nil {
		d.t.Fatalf("Tag() got err: %v", err)
	}
	if gotType != wantType || gotAux != wantAux {
		d.t.Fatalf("Tag() got (%s, %d), want (%s, %d)", gotType, gotAux, wantType, wantAux)
	}
}

func (d *mustDecoder) MustHeader(want fragments.Version) {
	got, err := d.Header()
	if err != nil {
		d.t.Fatalf("Header() got err: %v", err)
	}
	if got != want {
		d.t.Fatalf("Header() got version %s, want %s", got, want)
	}
}

func (d *mustDecoder) MustMagnitude(k int, want uint64) {
	got, err := d.Magnitude(k)
	if err != nil {
		d.t.Fatalf("Magnitude(%d) got err: %v", k, err)
	}
	if got != want {
		d.t.Fatalf("Magnitude(%d) got %d, want %d", k, got, want)
	}
}

func (d *mustDecoder) MustCount(aux byte, want uint64) {
	got, err := d.Count(aux)
	if err != nil {
		d.t.Fatalf("Count(%d) got err: %v", aux, err)
	}
	if got != want {
		d.t.Fatalf("Count(%d) got %d, want %d", aux, got, want)
	}
}

func (d *mustDecoder) MustText(n uint64, want string) {
	got, err := d.Text(n)
	if err != nil {
		d.t.Fatalf("Text(%d) got err: %v", n, err)
	}
	if got != want {
		d.t.Fatalf("Text(%d) got %q, want %q", n, got, want)
	}
}

func (d *mustDecoder) MustInt(aux byte, want int64) {
	got, err := d.Int(aux)
	if err != nil {
		d.t.Fatalf("Int(%d) got err: %v", aux, err)
	}
	if got != want {
		d.t.Fatalf("Int(%d) got %d, want %d", aux, got, want)
	}
}

func (d *mustDecoder) MustDouble(want float64) {
	got, err := d.Double()
	if err != nil {
		d.t.Fatalf("Double() got err: %v", err)
	}
	if math.Float64bits(got) != math.Float64bits(want) {
		d.t.Fatalf("Double() got %v, want %v", got, want)
	}
}

func (d *mustDecoder) MustDateTime(want time.Time) {
	got, err := d.DateTime()
	if err != nil {
		d.t.Fatalf("DateTime() got err: %v", err)
	}
	if !got.Equal(want) {
		d.t.Fatalf("DateTime() got %v, want %v", got, want)
	}
}

func TestDecoder(t *testing.T) {
	tests := []struct {
		name    string
		dialect fragments.Dialect
		in      []byte
		decode  func(d *mustDecoder)
	}{
		{
			"raw bytes",
			fragments.DialectV2,
			[]byte{0x01, 0x02, 0x03},
			func(d *mustDecoder) {
				d.MustRead(3, []byte{1, 2, 3})
			},
		},

		{
			"header",
			0,
			[]byte{0xca, 0x11, 0x02, 0x01},
			func(d *mustDecoder) {
				d.MustHeader(fragments.Version{2, 1})
				if d.Dialect != fragments.DialectV2 {
					d.t.Fatalf("Header() set dialect %s, want %s", d.Dialect, fragments.DialectV2)
				}
			},
		},

		{
			"tags",
			fragments.DialectV2,
			[]byte{0x11, 0x5b, 0x68},
			func(d *mustDecoder) {
				d.MustTag(fragments.TypeBool, 1)
				d.MustTag(fragments.TypeArray, 3)
				d.MustTag(fragments.TypeCall, 0)
			},
		},

		{
			"magnitudes",
			fragments.DialectV2,
			[]byte{
				0x2a,
				0x34, 0x12,
				0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
			},
			func(d *mustDecoder) {
				d.MustMagnitude(0, 0)
				d.MustMagnitude(1, 42)
				d.MustMagnitude(2, 0x1234)
				d.MustMagnitude(8, math.MaxUint64)
			},
		},

		{
			"v2 counts",
			fragments.DialectV2,
			[]byte{
				0x03,
				0x00, 0x01,
			},
			func(d *mustDecoder) {
				d.MustCount(0, 3)
				d.MustCount(1, 256)
			},
		},

		{
			"v1 counts",
			fragments.DialectV1,
			[]byte{
				0x03,
				0x00, 0x01,
			},
			func(d *mustDecoder) {
				d.MustCount(0, 0)
				d.MustCount(1, 3)
				d.MustCount(2, 256)
			},
		},

		{
			"text",
			fragments.DialectV2,
			[]byte{0x66, 0x6f, 0x6f, 0xff},
			func(d *mustDecoder) {
				d.MustText(4, "foo\xff")
			},
		},

		{
			"legacy ints",
			fragments.DialectV2,
			[]byte{
				0x2a,
				0xff, 0xff, 0xff, 0xff,
				0x00, 0x00, 0x00, 0x80,
				0xff, 0xff, 0xff, 0x7f,
			},
			func(d *mustDecoder) {
				d.MustInt(1, 42)
				d.MustInt(4, -1)
				d.MustInt(4, math.MinInt32)
				d.MustInt(4, math.MaxInt32)
			},
		},

		{
			"zigzag ints",
			fragments.DialectV3,
			[]byte{
				0x00,
				0x01,
				0x54,
				0x53,
				0xfe, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
				0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
			},
			func(d *mustDecoder) {
				d.MustInt(0, 0)
				d.MustInt(0, -1)
				d.MustInt(0, 42)
				d.MustInt(0, -42)
				d.MustInt(7, math.MaxInt64)
				d.MustInt(7, math.MinInt64)
			},
		},

		{
			"doubles",
			fragments.DialectV2,
			[]byte{
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xf8, 0x3f,
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xf0, 0xff,
			},
			func(d *mustDecoder) {
				d.MustDouble(1.5)
				d.MustDouble(math.Inf(-1))
			},
		},

		{
			"v2 datetime",
			fragments.DialectV2,
			[]byte{
				0x04,
				0x6d, 0xd9, 0xdd, 0x65,
				0x00, 0x00, 0x00, 0x00, 0x00,
			},
			func(d *mustDecoder) {
				d.MustDateTime(time.Unix(1709037933, 0))
			},
		},

		{
			"v2 datetime sentinel",
			fragments.DialectV2,
			[]byte{
				0x00,
				0xff, 0xff, 0xff, 0xff,
				0x00, 0x00, 0x00, 0x00, 0x00,
			},
			func(d *mustDecoder) {
				d.MustDateTime(time.Unix(-1, 0))
			},
		},

		{
			"v3 datetime",
			fragments.DialectV3,
			[]byte{
				0x00,
				0x00, 0x00, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00, 0x00,
			},
			func(d *mustDecoder) {
				d.MustDateTime(time.Unix(1<<31, 0))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := mustDecoder{
				t: t,
				Decoder: &fragments.Decoder{
					Dialect: tc.dialect,
					In:      tc.in,
				},
			}
			tc.decode(&d)
			if remain := d.Remaining(); remain > 0 {
				t.Fatalf("decoder failed to consume %d trailing bytes", remain)
			}
		})
	}
}

func TestDecoderErrors(t *testing.T) {
	tests := []struct {
		name    string
		dialect fragments.Dialect
		in      []byte
		decode  func(d *fragments.Decoder) error
		want    error
	}{
		{
			"short read",
			fragments.DialectV2,
			[]byte{1, 2},
			func(d *fragments.Decoder) error {
				_, err := d.Read(3)
				return err
			},
			fragments.ErrBufferUnderrun,
		},
		{
			"huge read",
			fragments.DialectV2,
			[]byte{1, 2},
			func(d *fragments.Decoder) error {
				_, err := d.Read(math.MaxUint64)
				return err
			},
			fragments.ErrBufferUnderrun,
		},
		{
			"bad magic",
			0,
			[]byte{0xca, 0x12, 0x02, 0x01},
			func(d *fragments.Decoder) error {
				_, err := d.Header()
				return err
			},
			fragments.ErrInvalidMagic,
		},
		{
			"short header",
			0,
			[]byte{0xca, 0x11, 0x02},
			func(d *fragments.Decoder) error {
				_, err := d.Header()
				return err
			},
			fragments.ErrBufferUnderrun,
		},
		{
			"v1 zero width size",
			fragments.DialectV1,
			[]byte{0x01},
			func(d *fragments.Decoder) error {
				_, err := d.Size(0)
				return err
			},
			fragments.ErrBadLength,
		},
		{
			"legacy zero width int",
			fragments.DialectV2,
			[]byte{0x01},
			func(d *fragments.Decoder) error {
				_, err := d.Int(0)
				return err
			},
			fragments.ErrBadLength,
		},
		{
			"truncated datetime",
			fragments.DialectV2,
			[]byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x00, 0x00},
			func(d *fragments.Decoder) error {
				_, err := d.DateTime()
				return err
			},
			fragments.ErrBufferUnderrun,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := &fragments.Decoder{
				Dialect: tc.dialect,
				In:      tc.in,
			}
			err := tc.decode(d)
			if !errors.Is(err, tc.want) {
				t.Fatalf("got err %v, want %v", err, tc.want)
			}
		})
	}
}

func TestVersionDialect(t *testing.T) {
	tests := []struct {
		v    fragments.Version
		want fragments.Dialect
	}{
		{fragments.Version{0, 9}, fragments.DialectV1},
		{fragments.Version{1, 0}, fragments.DialectV1},
		{fragments.Version{1, 1}, fragments.DialectV2},
		{fragments.Version{2, 0}, fragments.DialectV2},
		{fragments.Version{2, 1}, fragments.DialectV2},
		{fragments.Version{3, 0}, fragments.DialectV3},
		{fragments.Version{3, 1}, fragments.DialectV2},
	}
	for _, tc := range tests {
		if got := tc.v.Dialect(); got != tc.want {
			t.Errorf("Version %s Dialect() = %s, want %s", tc.v, got, tc.want)
		}
	}
}

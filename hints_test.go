package fastrpc

import "testing"

func TestPath(t *testing.T) {
	tests := []struct {
		segments []any
		want     string
	}{
		{nil, ""},
		{[]any{0}, "0"},
		{[]any{1, "tags", 0}, "1.tags.0"},
		{[]any{2, "a", "b"}, "2.a.b"},
	}
	for _, tc := range tests {
		if got := Path(tc.segments...); got != tc.want {
			t.Errorf("Path(%v) = %q, want %q", tc.segments, got, tc.want)
		}
	}
}

func TestHints(t *testing.T) {
	ph := PathHints{"0": HintFloat, "1.x": HintBinary}
	tests := []struct {
		name   string
		hints  Hints
		path   string
		want   Hint
		wantOK bool
	}{
		{"global", GlobalHint(HintFloat), "3.a.b", HintFloat, true},
		{"global empty path", GlobalHint(HintBinary), "", HintBinary, true},
		{"path hit", ph, "1.x", HintBinary, true},
		{"path miss", ph, "1", "", false},
		{"path prefix miss", ph, "0.0", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.hints.Lookup(tc.path)
			if got != tc.want || ok != tc.wantOK {
				t.Errorf("Lookup(%q) = %q, %v, want %q, %v", tc.path, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestStructGet(t *testing.T) {
	s := Struct{{"a", 1}, {"b", nil}}
	if v, ok := s.Get("a"); !ok || v != 1 {
		t.Errorf(`Get("a") = %v, %v, want 1, true`, v, ok)
	}
	if v, ok := s.Get("b"); !ok || v != nil {
		t.Errorf(`Get("b") = %v, %v, want nil, true`, v, ok)
	}
	if v, ok := s.Get("c"); ok {
		t.Errorf(`Get("c") = %v, %v, want nil, false`, v, ok)
	}
}

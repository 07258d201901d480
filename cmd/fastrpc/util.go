package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/creachadair/mds/slice"
	"github.com/danderson/fastrpc"
)

// buildHints returns the encoding hints described by the --hints and
// --global-hint flags, layered over the hints derived from the YAML
// parameters.
func buildHints(pathHints, global string, fromYAML fastrpc.PathHints) (fastrpc.Hints, error) {
	if global != "" {
		if pathHints != "" {
			return nil, fmt.Errorf("--hints and --global-hint are mutually exclusive")
		}
		h, err := parseHint(global)
		if err != nil {
			return nil, err
		}
		return fastrpc.GlobalHint(h), nil
	}

	ret := fastrpc.PathHints{}
	maps.Copy(ret, fromYAML)
	specs := slices.Collect(slice.Select(strings.Split(pathHints, ","), func(s string) bool {
		return strings.TrimSpace(s) != ""
	}))
	for _, spec := range specs {
		path, hint, ok := strings.Cut(strings.TrimSpace(spec), "=")
		if !ok {
			return nil, fmt.Errorf("invalid hint %q, want path=hint", spec)
		}
		h, err := parseHint(hint)
		if err != nil {
			return nil, err
		}
		ret[path] = h
	}
	return ret, nil
}

func parseHint(s string) (fastrpc.Hint, error) {
	switch h := fastrpc.Hint(s); h {
	case fastrpc.HintFloat, fastrpc.HintBinary:
		return h, nil
	}
	return "", fmt.Errorf("unknown hint %q, want %q or %q", s, fastrpc.HintFloat, fastrpc.HintBinary)
}

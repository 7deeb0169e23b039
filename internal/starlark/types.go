package starlark

import (
	"fmt"

	"go.starlark.net/starlark"

	"github.com/leapstack-labs/lpi/pkg/core"
)

// KnownDict returns a frozen dict mapping kind names to SI values, in
// kind order.
func KnownDict(known *core.KnownSet) *starlark.Dict {
	if known == nil {
		d := starlark.NewDict(0)
		d.Freeze()
		return d
	}
	all := known.All()
	d := starlark.NewDict(len(all))
	for _, q := range all {
		// string keys are always hashable
		_ = d.SetKey(starlark.String(q.Kind.String()), starlark.Float(q.Value))
	}
	d.Freeze()
	return d
}

// Notes converts what a check function returns into notes: None means
// none, a string is one note, any other iterable is one note per element.
func Notes(v starlark.Value) ([]string, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.String:
		if val == "" {
			return nil, nil
		}
		return []string{string(val)}, nil
	case starlark.Iterable:
		var notes []string
		iter := val.Iterate()
		defer iter.Done()
		var item starlark.Value
		for iter.Next(&item) {
			if s, ok := starlark.AsString(item); ok {
				notes = append(notes, s)
				continue
			}
			notes = append(notes, item.String())
		}
		return notes, nil
	case starlark.Bool:
		return nil, fmt.Errorf("check returned %s, want None, a string or a list of strings", val)
	default:
		return []string{val.String()}, nil
	}
}

// ToGo converts an expression result back to Go: string, int64, float64,
// bool, []any, map[string]any or nil. Integers that overflow int64 and
// unknown types come back as their string form.
func ToGo(v starlark.Value) (any, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.String:
		return string(val), nil
	case starlark.Int:
		if i64, ok := val.Int64(); ok {
			return i64, nil
		}
		return val.String(), nil
	case starlark.Float:
		return float64(val), nil
	case starlark.Bool:
		return bool(val), nil
	case *starlark.Dict:
		out := make(map[string]any, val.Len())
		for _, item := range val.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key must be string, got %s", item[0].Type())
			}
			g, err := ToGo(item[1])
			if err != nil {
				return nil, fmt.Errorf("dict key %q: %w", string(key), err)
			}
			out[string(key)] = g
		}
		return out, nil
	case starlark.Indexable:
		out := make([]any, val.Len())
		for i := range out {
			g, err := ToGo(val.Index(i))
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = g
		}
		return out, nil
	default:
		return val.String(), nil
	}
}

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/stoap/dim"
)

// resolveToken resolves a getCell/getArea token against dimension d:
// a bare integer is taken as an element id directly; anything else is
// looked up by name, with a "did you mean" suggestion on miss.
func resolveToken(d *dim.Dimension, token string) (uint64, error) {
	if id, err := strconv.ParseUint(token, 10, 32); err == nil {
		return id, nil
	}
	if e := d.LookupByName(token); e != nil {
		return uint64(e.ID), nil
	}
	if s := d.Suggest(token); s != "" {
		return 0, fmt.Errorf("invalid-coordinates: unknown element %q in dimension %q (did you mean %q?)", token, d.Name, s)
	}
	return 0, fmt.Errorf("invalid-coordinates: unknown element %q in dimension %q", token, d.Name)
}

// parsePath parses a getCell argument: a comma-separated list of
// tokens, one per dimension in cube order.
func parsePath(dims []*dim.Dimension, arg string) ([]uint64, error) {
	tokens := strings.Split(arg, ",")
	if len(tokens) != len(dims) {
		return nil, fmt.Errorf("invalid-coordinates: wrong number of dimension ids: got %d, want %d", len(tokens), len(dims))
	}
	ids := make([]uint64, len(tokens))
	for i, tok := range tokens {
		id, err := resolveToken(dims[i], tok)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

// parseArea parses a getArea argument: dimensions separated by 'x',
// each a comma-separated list of tokens or "lo-hi" ranges.
func parseArea(dims []*dim.Dimension, arg string) ([][]uint64, error) {
	parts := strings.Split(arg, "x")
	if len(parts) != len(dims) {
		return nil, fmt.Errorf("invalid-coordinates: wrong number of dimensions: got %d, want %d", len(parts), len(dims))
	}
	lists := make([][]uint64, len(parts))
	for i, part := range parts {
		var ids []uint64
		for _, tok := range strings.Split(part, ",") {
			if dash := strings.IndexByte(tok, '-'); dash > 0 && dash < len(tok)-1 {
				lo, hi := tok[:dash], tok[dash+1:]
				loID, err := resolveToken(dims[i], lo)
				if err != nil {
					return nil, err
				}
				hiID, err := resolveToken(dims[i], hi)
				if err != nil {
					return nil, err
				}
				for id := loID; id <= hiID; id++ {
					ids = append(ids, id)
				}
				continue
			}
			id, err := resolveToken(dims[i], tok)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		lists[i] = ids
	}
	return lists, nil
}

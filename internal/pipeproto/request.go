// Package pipeproto implements the named-pipe server's request
// grammar and response record format: one request per line in,
// one CSV record per result cell out.
package pipeproto

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/grailbio/stoap/errs"
)

// Kind distinguishes the two request shapes the server accepts.
type Kind int

const (
	// Values requests a list of explicit cell paths.
	Values Kind = iota
	// Area requests the full cross-product of per-dimension id lists.
	Area
)

// Request is a parsed "/cell/values?..." or "/cell/area?..." line.
type Request struct {
	Kind   Kind
	CubeID uint64
	// Paths holds one tuple per requested cell (Values requests).
	Paths [][]uint64
	// Dims holds one id list per dimension (Area requests).
	Dims [][]uint64
}

// Parse decodes a single request line.
func Parse(line string) (*Request, error) {
	line = strings.TrimSpace(line)
	var kind Kind
	var query string
	switch {
	case strings.HasPrefix(line, "/cell/values?"):
		kind = Values
		query = line[len("/cell/values?"):]
	case strings.HasPrefix(line, "/cell/area?"):
		kind = Area
		query = line[len("/cell/area?"):]
	default:
		return nil, errs.New(errs.ParameterMissing, "pipeproto: unrecognized request %q", line)
	}

	values, err := url.ParseQuery(query)
	if err != nil {
		return nil, errs.Wrap(errs.ConversionFailed, err, "pipeproto: malformed query string")
	}

	cubeStr := values.Get("cube")
	if cubeStr == "" {
		return nil, errs.New(errs.ParameterMissing, "pipeproto: missing cube parameter")
	}
	cubeID, err := strconv.ParseUint(cubeStr, 10, 64)
	if err != nil {
		return nil, errs.Wrap(errs.ConversionFailed, err, "pipeproto: bad cube id %q", cubeStr)
	}

	req := &Request{Kind: kind, CubeID: cubeID}
	switch kind {
	case Values:
		raw := values.Get("paths")
		if raw == "" {
			return nil, errs.New(errs.ParameterMissing, "pipeproto: missing paths parameter")
		}
		for _, p := range strings.Split(raw, ":") {
			ids, err := parseIDList(p, ",")
			if err != nil {
				return nil, err
			}
			req.Paths = append(req.Paths, ids)
		}
	case Area:
		raw := values.Get("area")
		if raw == "" {
			return nil, errs.New(errs.ParameterMissing, "pipeproto: missing area parameter")
		}
		for _, d := range strings.Split(raw, ":") {
			ids, err := parseIDList(d, ",")
			if err != nil {
				return nil, err
			}
			req.Dims = append(req.Dims, ids)
		}
	}
	return req, nil
}

func parseIDList(s, sep string) ([]uint64, error) {
	parts := strings.Split(s, sep)
	ids := make([]uint64, len(parts))
	for i, p := range parts {
		id, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, errs.Wrap(errs.ConversionFailed, err, "pipeproto: bad element id %q", p)
		}
		ids[i] = id
	}
	return ids, nil
}

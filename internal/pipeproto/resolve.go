package pipeproto

import (
	"github.com/grailbio/stoap/area"
	"github.com/grailbio/stoap/cube"
	"github.com/grailbio/stoap/errs"
	"github.com/grailbio/stoap/result"
)

// Serve resolves req against env and returns the result cells (for
// FormatCell/WriteCells to render), in request order for Values and in last-dim-fastest path
// order for Area.
func Serve(env *cube.Environment, req *Request) ([]result.Cell, error) {
	c, err := env.Cube(req.CubeID)
	if err != nil {
		return nil, err
	}

	switch req.Kind {
	case Values:
		for _, p := range req.Paths {
			if len(p) != len(c.Dims) {
				return nil, errs.New(errs.InvalidCoordinates, "pipeproto: wrong number of dimension ids: got %d, want %d", len(p), len(c.Dims))
			}
		}
		var cells []result.Cell
		for _, p := range req.Paths {
			ar := area.NewSinglePath(p)
			got, err := c.Query(ar)
			if err != nil {
				return nil, err
			}
			cells = append(cells, got...)
		}
		return cells, nil
	case Area:
		ar, err := c.NewArea(req.Dims)
		if err != nil {
			return nil, err
		}
		return c.Query(ar)
	default:
		return nil, errs.New(errs.Internal, "pipeproto: unknown request kind %d", req.Kind)
	}
}

package csvdb

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/base/log"

	"github.com/grailbio/stoap/cube"
	"github.com/grailbio/stoap/dim"
	"github.com/grailbio/stoap/errs"
	"github.com/grailbio/stoap/storage"
)

// LoadReport counts rows the loader skipped rather than rejecting the
// whole file for — every count should be reviewed after a load, since
// a nonzero one usually means the database.csv and its CUBE files
// drifted out of sync with each other.
type LoadReport struct {
	SkippedStringElements     int
	SkippedMalformedRows      int
	SkippedUnknownEdges       int
	SkippedConsolidatedTuples int
	SkippedBadValues          int
}

type cubeDecl struct {
	id     uint64
	name   string
	dimIDs []uint32
}

type pendingEdge struct {
	parent, child uint32
	weight        float64
}

// Load reads database.csv and one database_CUBE_<id>.csv per declared
// cube from dir, and returns the assembled Environment.
func Load(ctx context.Context, dir string) (*cube.Environment, *LoadReport, error) {
	report := &LoadReport{}

	dims := make(map[uint32]*dim.Dimension)
	var cubeDecls []cubeDecl
	pendingEdges := make(map[uint32][]pendingEdge)

	dbPath := dir + "/database.csv"
	s, closeFn, err := openScanner(ctx, dbPath)
	if err != nil {
		return nil, nil, err
	}
	defer closeFn()

	for s.next() {
		switch s.section {
		case "DIMENSIONS":
			f := fields(s.line)
			if len(f) < 2 {
				report.SkippedMalformedRows++
				continue
			}
			id, err := strconv.ParseUint(f[0], 10, 32)
			if err != nil {
				report.SkippedMalformedRows++
				continue
			}
			dims[uint32(id)] = dim.New(uint32(id), f[1], 0)
		case "CUBES":
			f := fields(s.line)
			if len(f) < 3 {
				report.SkippedMalformedRows++
				continue
			}
			id, err := strconv.ParseUint(f[0], 10, 64)
			if err != nil {
				report.SkippedMalformedRows++
				continue
			}
			var dimIDs []uint32
			for _, ds := range subList(f[2]) {
				did, err := strconv.ParseUint(ds, 10, 32)
				if err != nil {
					report.SkippedMalformedRows++
					continue
				}
				dimIDs = append(dimIDs, uint32(did))
			}
			cubeDecls = append(cubeDecls, cubeDecl{id: id, name: f[1], dimIDs: dimIDs})
		default:
			if strings.HasPrefix(s.section, "ELEMENTS DIMENSION ") {
				dimID, err := strconv.ParseUint(s.section[len("ELEMENTS DIMENSION "):], 10, 32)
				if err != nil {
					report.SkippedMalformedRows++
					continue
				}
				d, ok := dims[uint32(dimID)]
				if !ok {
					report.SkippedMalformedRows++
					continue
				}
				edges, err := loadElementRow(d, s.line, report)
				if err != nil {
					return nil, nil, err
				}
				pendingEdges[uint32(dimID)] = append(pendingEdges[uint32(dimID)], edges...)
			}
		}
	}
	if err := s.Err(); err != nil {
		return nil, nil, err
	}

	for dimID, edges := range pendingEdges {
		d := dims[dimID]
		for _, e := range edges {
			if e.child == e.parent {
				log.Debug.Printf("csvdb: dimension %d: element %d is its own parent, dropping the edge", dimID, e.parent)
				report.SkippedUnknownEdges++
				continue
			}
			if d.LookupByID(e.child) == nil {
				log.Debug.Printf("csvdb: dimension %d: edge %d->%d references unknown child, skipping", dimID, e.parent, e.child)
				report.SkippedUnknownEdges++
				continue
			}
			d.AddChild(e.parent, e.child, e.weight)
		}
	}

	// A declared kind that disagrees with the wired-up child list loses:
	// an element with at least one child is consolidated regardless of
	// what its kind field said.
	for _, d := range dims {
		for _, elem := range d.Elements() {
			if len(d.Children(elem.ID)) > 0 {
				elem.Kind = dim.Consolidated
			}
		}
	}

	for _, d := range dims {
		if err := d.ComputeTopology(); err != nil {
			return nil, nil, err
		}
	}

	cubes := make(map[uint64]*cube.Cube)
	for _, decl := range cubeDecls {
		cubeDims := make([]*dim.Dimension, 0, len(decl.dimIDs))
		for _, did := range decl.dimIDs {
			d, ok := dims[did]
			if !ok {
				return nil, nil, errs.New(errs.CorruptFile, "csvdb: cube %d references unknown dimension %d", decl.id, did)
			}
			cubeDims = append(cubeDims, d)
		}
		base := storage.New(1024)
		c, err := cube.New(decl.id, decl.name, cubeDims, base)
		if err != nil {
			return nil, nil, err
		}
		path := fmt.Sprintf("%s/database_CUBE_%d.csv", dir, decl.id)
		if err := loadCubeValues(ctx, path, c, report); err != nil {
			return nil, nil, err
		}
		cubes[decl.id] = c
	}

	return cube.NewEnvironment(dims, cubes), report, nil
}

// loadElementRow parses one [ELEMENTS DIMENSION] row, registers the
// element, and returns its child edges for the caller to apply once
// every element in the dimension has been read — a forward reference
// to a child defined later in the file must still resolve.
func loadElementRow(d *dim.Dimension, line string, report *LoadReport) ([]pendingEdge, error) {
	f := fields(line)
	if len(f) < 10 {
		report.SkippedMalformedRows++
		return nil, nil
	}
	id, err1 := strconv.ParseUint(f[0], 10, 32)
	kindRaw, err2 := strconv.ParseInt(f[3], 10, 32)
	pos, err3 := strconv.Atoi(f[2])
	if err1 != nil || err2 != nil || err3 != nil {
		report.SkippedMalformedRows++
		return nil, nil
	}

	var kind dim.Kind
	switch kindRaw {
	case 1:
		kind = dim.Base
	case 4:
		kind = dim.Consolidated
	case 2:
		report.SkippedStringElements++
		return nil, nil
	default:
		report.SkippedMalformedRows++
		return nil, nil
	}

	d.AddElement(&dim.Element{ID: uint32(id), Name: f[1], Position: pos, Kind: kind})

	childIDs := subList(f[8])
	weights := subList(f[9])
	var edges []pendingEdge
	for i, cs := range childIDs {
		cid, err := strconv.ParseUint(cs, 10, 32)
		if err != nil {
			report.SkippedMalformedRows++
			continue
		}
		weight := 1.0
		if i < len(weights) && weights[i] != "" {
			w, err := strconv.ParseFloat(weights[i], 64)
			if err == nil {
				weight = w
			}
		}
		edges = append(edges, pendingEdge{parent: uint32(id), child: uint32(cid), weight: weight})
	}
	return edges, nil
}

func loadCubeValues(ctx context.Context, path string, c *cube.Cube, report *LoadReport) error {
	s, closeFn, err := openScanner(ctx, path)
	if err != nil {
		return err
	}
	defer closeFn()

	for s.next() {
		if s.section != "NUMERIC" {
			continue
		}
		f := fields(s.line)
		if len(f) < 2 {
			report.SkippedMalformedRows++
			continue
		}
		ids := subList(f[0])
		if len(ids) != len(c.Dims) {
			return errs.New(errs.CorruptFile, "csvdb: cube %d: row has %d dimension ids, want %d", c.ID, len(ids), len(c.Dims))
		}
		tuple := make([]uint64, len(ids))
		skip := false
		for i, idStr := range ids {
			id, err := strconv.ParseUint(idStr, 10, 32)
			if err != nil {
				report.SkippedMalformedRows++
				skip = true
				break
			}
			if !c.IsBase(i, id) {
				report.SkippedConsolidatedTuples++
				skip = true
				break
			}
			tuple[i] = id
		}
		if skip {
			continue
		}
		value, err := strconv.ParseFloat(f[1], 64)
		if err != nil {
			report.SkippedBadValues++
			continue
		}
		key, err := c.Codec.Encode(tuple)
		if err != nil {
			report.SkippedMalformedRows++
			continue
		}
		c.Base.Set(key, value)
	}
	return s.Err()
}

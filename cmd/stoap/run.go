package main

import (
	"sort"

	"github.com/grailbio/base/vcontext"

	"github.com/grailbio/stoap/csvdb"
	"github.com/grailbio/stoap/cube"
)

func run(dbdir string, opts *runOpts) error {
	ctx := vcontext.Background()

	env, report, err := csvdb.Load(ctx, dbdir)
	if err != nil {
		return err
	}
	if report.SkippedStringElements > 0 || report.SkippedMalformedRows > 0 ||
		report.SkippedUnknownEdges > 0 || report.SkippedConsolidatedTuples > 0 ||
		report.SkippedBadValues > 0 {
		opts.infof("stoap: loaded %s with %d cubes (skipped: %d string elements, %d malformed rows, %d unknown edges, %d consolidated tuples, %d bad values)",
			dbdir, len(env.Cubes), report.SkippedStringElements, report.SkippedMalformedRows,
			report.SkippedUnknownEdges, report.SkippedConsolidatedTuples, report.SkippedBadValues)
	} else {
		opts.debugf("stoap: loaded %s with %d cubes cleanly", dbdir, len(env.Cubes))
	}

	if opts.serverMode {
		return serve(env, opts)
	}
	return shell(env, opts)
}

// primaryCube picks the cube the interactive shell and pipe server
// operate against by default: the lowest cube id, when more than one
// cube is loaded.
func primaryCube(env *cube.Environment) *cube.Cube {
	if len(env.Cubes) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(env.Cubes))
	for id := range env.Cubes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return env.Cubes[ids[0]]
}

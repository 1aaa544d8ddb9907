package main

import (
	"bufio"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/grailbio/base/log"

	"github.com/grailbio/stoap/cube"
	"github.com/grailbio/stoap/internal/pipeproto"
)

const (
	inPipePath  = "/tmp/stoap-in"
	outPipePath = "/tmp/stoap-out"
)

// serve runs the named-pipe protocol server: each request is one line
// read from inPipePath, and the response is written to outPipePath
// and signaled complete by closing it, per request.
func serve(env *cube.Environment, opts *runOpts) error {
	for _, p := range []string{inPipePath, outPipePath} {
		if err := unix.Mkfifo(p, 0666); err != nil && err != unix.EEXIST {
			return fmt.Errorf("stoap: mkfifo %s: %w", p, err)
		}
	}
	opts.debugf("stoap: serving on %s / %s", inPipePath, outPipePath)

	for {
		if err := serveOnce(env); err != nil {
			log.Error.Printf("stoap: request failed: %v", err)
		}
	}
}

func serveOnce(env *cube.Environment) error {
	in, err := os.Open(inPipePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", inPipePath, err)
	}
	defer in.Close()

	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		return sc.Err()
	}
	line := sc.Text()

	out, err := os.OpenFile(outPipePath, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", outPipePath, err)
	}
	defer out.Close()

	req, err := pipeproto.Parse(line)
	if err != nil {
		return pipeproto.WriteError(out, err.Error())
	}
	cells, err := pipeproto.Serve(env, req)
	if err != nil {
		return pipeproto.WriteError(out, err.Error())
	}
	return pipeproto.WriteCells(out, cells)
}

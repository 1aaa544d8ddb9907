package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grailbio/stoap/cube"
	"github.com/grailbio/stoap/result"
)

const shellHelp = `Commands:
  exit                       leave the shell
  help                       show this message
  info cube                  print the cube's name, dimensions, and cell count
  info dimensions            print every element's level/depth/indent
  info storage               print base cell count and checksum
  getCell <id,id,...>        fetch a single cell
  getArea <r0xr1x...>        fetch a cross-product area; each r is id,id,lo-hi,...
`

// shell runs the interactive command loop against env's primary cube,
// reading from stdin and writing to stdout until "exit" or EOF.
func shell(env *cube.Environment, opts *runOpts) error {
	c := primaryCube(env)
	if c == nil {
		return fmt.Errorf("no cubes loaded")
	}
	opts.debugf("stoap: shell operating on cube %d %q", c.ID, c.Name)

	sc := bufio.NewScanner(os.Stdin)
	fmt.Print("stoap> ")
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			fmt.Print("stoap> ")
			continue
		}
		if dispatch(os.Stdout, c, line) {
			return nil
		}
		fmt.Print("stoap> ")
	}
	return sc.Err()
}

// dispatch runs one shell command line, returning true if the shell
// should exit.
func dispatch(w io.Writer, c *cube.Cube, line string) bool {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "exit":
		return true
	case "help":
		fmt.Fprint(w, shellHelp)
	case "info":
		if len(args) != 1 {
			fmt.Fprintln(w, "Error: info takes one of cube, dimensions, storage")
			return false
		}
		switch args[0] {
		case "cube":
			infoCube(w, c)
		case "dimensions":
			infoDimensions(w, c)
		case "storage":
			infoStorage(w, c)
		default:
			fmt.Fprintf(w, "Error: unknown info target %q\n", args[0])
		}
	case "getCell":
		if len(args) != 1 {
			fmt.Fprintln(w, "Error: invalid-coordinates: getCell takes one comma-separated path")
			return false
		}
		runGetCell(w, c, args[0])
	case "getArea":
		if len(args) != 1 {
			fmt.Fprintln(w, "Error: invalid-coordinates: getArea takes one rXrX...-separated area")
			return false
		}
		runGetArea(w, c, args[0])
	default:
		fmt.Fprintf(w, "Error: unknown command %q; type 'help' for a list\n", cmd)
	}
	return false
}

func runGetCell(w io.Writer, c *cube.Cube, arg string) {
	path, err := parsePath(c.Dims, arg)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	ar, err := c.NewArea(pathToLists(path))
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	cells, err := c.Query(ar)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	printCells(w, cells)
}

func runGetArea(w io.Writer, c *cube.Cube, arg string) {
	lists, err := parseArea(c.Dims, arg)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	ar, err := c.NewArea(lists)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	cells, err := c.Query(ar)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	printCells(w, cells)
}

func pathToLists(path []uint64) [][]uint64 {
	lists := make([][]uint64, len(path))
	for i, id := range path {
		lists[i] = []uint64{id}
	}
	return lists
}

func printCells(w io.Writer, cells []result.Cell) {
	for _, cell := range cells {
		if cell.Found {
			fmt.Fprintf(w, "%s: %v\n", cell.Path.String(), cell.Value)
		} else {
			fmt.Fprintf(w, "%s: not found\n", cell.Path.String())
		}
	}
}

package main

import (
	"fmt"
	"io"

	"github.com/grailbio/stoap/cube"
	"github.com/grailbio/stoap/dim"
)

func infoCube(w io.Writer, c *cube.Cube) {
	fmt.Fprintf(w, "cube %d %q\n", c.ID, c.Name)
	fmt.Fprintf(w, "dimensions: %d\n", len(c.Dims))
	for i, d := range c.Dims {
		fmt.Fprintf(w, "  %d: %s (max id %d)\n", i, d.Name, d.MaxID())
	}
	fmt.Fprintf(w, "base cells: %d\n", c.Base.Size())
}

func infoDimensions(w io.Writer, c *cube.Cube) {
	for _, d := range c.Dims {
		fmt.Fprintf(w, "dimension %q\n", d.Name)
		for _, e := range d.Elements() {
			kind := "base"
			if e.Kind == dim.Consolidated {
				kind = "consolidated"
			}
			fmt.Fprintf(w, "  %-20s id=%-6d kind=%-12s level=%-3d depth=%-3d indent=%d\n",
				e.Name, e.ID, kind, e.Level, e.Depth, e.Indent)
		}
	}
}

func infoStorage(w io.Writer, c *cube.Cube) {
	sum := c.Checksum()
	fmt.Fprintf(w, "base cells: %d\n", c.Base.Size())
	fmt.Fprintf(w, "checksum: %x\n", sum)
}

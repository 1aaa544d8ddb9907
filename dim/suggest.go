package dim

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// Suggest returns the element name in the dimension with the smallest
// edit distance to name (case-insensitive), for "did you mean" output
// when a lookupByName misses. Returns "" if the dimension has no
// elements.
func (d *Dimension) Suggest(name string) string {
	lower := strings.ToLower(name)
	best := ""
	bestDist := -1
	for _, e := range d.Elements() {
		dist := matchr.Levenshtein(lower, strings.ToLower(e.Name))
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = e.Name
		}
	}
	return best
}

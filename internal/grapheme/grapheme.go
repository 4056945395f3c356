// Package grapheme measures text in grapheme clusters and terminal cells.
package grapheme

import (
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// DefaultTabWidth is the tab stop distance used when callers pass <= 0.
const DefaultTabWidth = 4

// Cluster is one grapheme cluster located by byte offset in its source text.
type Cluster struct {
	Text   string
	Offset int
}

// End returns the byte offset just past the cluster.
func (c Cluster) End() int { return c.Offset + len(c.Text) }

// Clusters splits text into grapheme clusters in logical order.
func Clusters(text string) []Cluster {
	if text == "" {
		return nil
	}
	g := uniseg.NewGraphemes(text)
	out := make([]Cluster, 0, len(text))
	for g.Next() {
		start, _ := g.Positions()
		out = append(out, Cluster{Text: g.Str(), Offset: start})
	}
	return out
}

// Count returns the number of grapheme clusters in text.
func Count(text string) int {
	if text == "" {
		return 0
	}
	return uniseg.GraphemeClusterCount(text)
}

// CellWidth returns the terminal-cell width of cluster when it starts at
// visual column col. Tabs advance to the next tab stop.
func CellWidth(cluster string, col, tabWidth int) int {
	if cluster == "\t" {
		return tabAdvance(col, tabWidth)
	}
	w := runewidth.StringWidth(cluster)
	if w <= 0 {
		w = uniseg.StringWidth(cluster)
	}
	if w < 0 {
		w = 0
	}
	return w
}

// StringWidth returns the cell width of a single visual line.
func StringWidth(text string, tabWidth int) int {
	col := 0
	for _, c := range Clusters(text) {
		col += CellWidth(c.Text, col, tabWidth)
	}
	return col
}

func tabAdvance(col, tabWidth int) int {
	if tabWidth <= 0 {
		tabWidth = DefaultTabWidth
	}
	if col < 0 {
		col = 0
	}
	return tabWidth - col%tabWidth
}

// IsSpace reports whether all runes in cluster are Unicode whitespace.
func IsSpace(cluster string) bool {
	if cluster == "" {
		return false
	}
	for _, r := range cluster {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

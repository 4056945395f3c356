package buffer

import "github.com/iw2rmb/quill/internal/grapheme"

// Segment is one soft-wrapped visual row as byte offsets [Start, End) into
// the buffer text.
type Segment struct {
	Start int
	End   int
}

// VisualLines returns the soft-wrapped rows of the whole buffer at the
// current wrap width. Each logical line yields at least one row.
func (b *Buffer) VisualLines() []Segment {
	var out []Segment
	off := 0
	for {
		eol := lineEnd(b.text, off)
		for _, seg := range wrapSegments(b.text[off:eol], b.opt.WrapWidth, b.opt.TabWidth) {
			out = append(out, Segment{Start: off + seg.Start, End: off + seg.End})
		}
		if eol >= len(b.text) {
			return out
		}
		off = eol + 1
	}
}

// visualLineBounds returns the visual row containing off. A cursor sitting on
// a wrap boundary belongs to the row that starts there.
func (b *Buffer) visualLineBounds(off int) (int, int) {
	bol := lineStart(b.text, off)
	eol := lineEnd(b.text, off)
	segs := wrapSegments(b.text[bol:eol], b.opt.WrapWidth, b.opt.TabWidth)
	for i, seg := range segs {
		if off-bol < seg.End || i == len(segs)-1 {
			return bol + seg.Start, bol + seg.End
		}
	}
	return bol, eol
}

// wrapSegments soft-wraps one logical line. Breaks prefer the end of the last
// whitespace run that fits; a word wider than the row is split by grapheme.
func wrapSegments(line string, width, tabWidth int) []Segment {
	clusters := grapheme.Clusters(line)
	if width <= 0 || len(clusters) == 0 {
		return []Segment{{Start: 0, End: len(line)}}
	}

	var segs []Segment
	for start := 0; start < len(clusters); {
		used := 0
		overflow := start
		for overflow < len(clusters) {
			w := grapheme.CellWidth(clusters[overflow].Text, used, tabWidth)
			if used > 0 && used+w > width {
				break
			}
			used += w
			overflow++
		}

		end := overflow
		if overflow < len(clusters) {
			if br, ok := findWordWrapBreak(clusters, start, overflow); ok {
				end = br
			}
		}
		segs = append(segs, Segment{Start: clusters[start].Offset, End: clusters[end-1].End()})
		start = end
	}
	return segs
}

func findWordWrapBreak(clusters []grapheme.Cluster, start, overflow int) (int, bool) {
	lastBreak := -1
	for i := start; i < overflow; {
		if !grapheme.IsSpace(clusters[i].Text) {
			i++
			continue
		}
		j := i + 1
		for j < overflow && grapheme.IsSpace(clusters[j].Text) {
			j++
		}
		lastBreak = j
		i = j
	}
	if lastBreak <= start {
		return 0, false
	}
	return lastBreak, true
}

package buffer

import "errors"

// ErrRejected reports a command the engine refuses to interpret.
// Boundary no-ops are not rejections.
var ErrRejected = errors.New("command rejected")

// State is a point-in-time snapshot of the buffer.
type State struct {
	Text   string
	Cursor int
}

// Pos points into the document by (row, col); Col counts code points.
// Row and Col are 0-based.
type Pos struct {
	Row int
	Col int
}

func clampInt(v, min, max int) int {
	if max < min {
		return min
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

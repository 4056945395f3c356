package buffer

import "unicode"

type runeClass uint8

const (
	classSpace runeClass = iota
	classWord
	classPunct
)

func classOf(r rune) runeClass {
	switch {
	case unicode.IsSpace(r):
		return classSpace
	case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
		return classWord
	default:
		return classPunct
	}
}

// Word boundary rules:
// - skip whitespace (newlines included)
// - then skip the run of code points sharing the class of the first one
func prevWordBoundary(text string, off int) int {
	i := off
	for i > 0 {
		r, n := prevRune(text, i)
		if classOf(r) != classSpace {
			break
		}
		i -= n
	}
	if i == 0 {
		return 0
	}
	r, _ := prevRune(text, i)
	cls := classOf(r)
	for i > 0 {
		r, n := prevRune(text, i)
		if classOf(r) != cls {
			break
		}
		i -= n
	}
	return i
}

func nextWordBoundary(text string, off int) int {
	i := off
	for i < len(text) {
		r, n := nextRune(text, i)
		if classOf(r) != classSpace {
			break
		}
		i += n
	}
	if i >= len(text) {
		return len(text)
	}
	r, _ := nextRune(text, i)
	cls := classOf(r)
	for i < len(text) {
		r, n := nextRune(text, i)
		if classOf(r) != cls {
			break
		}
		i += n
	}
	return i
}

package input

import (
	"strconv"
	"strings"
	"unicode"
)

// Modifier bits as encoded in CSI parameters (value-1).
const (
	modShift = 1 << iota
	modAlt
	modCtrl
)

// controlName names a C0 control byte (or DEL) the way Bubble Tea does.
func controlName(b byte) string {
	switch b {
	case 0x00:
		return "ctrl+@"
	case '\t':
		return "tab"
	case '\r':
		return "enter"
	case esc:
		return "esc"
	case 0x1c:
		return "ctrl+\\"
	case 0x1d:
		return "ctrl+]"
	case 0x1e:
		return "ctrl+^"
	case 0x1f:
		return "ctrl+_"
	case del:
		return "backspace"
	}
	if b >= 0x01 && b <= 0x1a {
		return "ctrl+" + string(rune('a'+b-1))
	}
	return ""
}

func ss3Name(final byte) string {
	switch final {
	case 'A':
		return "up"
	case 'B':
		return "down"
	case 'C':
		return "right"
	case 'D':
		return "left"
	case 'H':
		return "home"
	case 'F':
		return "end"
	case 'P':
		return "f1"
	case 'Q':
		return "f2"
	case 'R':
		return "f3"
	case 'S':
		return "f4"
	}
	return ""
}

var csiLetterKeys = map[byte]string{
	'A': "up",
	'B': "down",
	'C': "right",
	'D': "left",
	'H': "home",
	'F': "end",
	'Z': "shift+tab",
}

var csiTildeKeys = map[int]string{
	1: "home",
	2: "insert",
	3: "delete",
	4: "end",
	5: "pgup",
	6: "pgdown",
	7: "home",
	8: "end",
}

// csiKey is a decoded CSI sequence: either a key name or, for unmodified
// printable CSI-u keys, a rune to insert.
type csiKey struct {
	name   string
	insert rune
}

// parseCSI decodes the parameter bytes and final byte of a CSI sequence.
func parseCSI(params string, final byte) (csiKey, bool) {
	switch {
	case final == 'u':
		return parseCSIu(params)
	case final == '~':
		fields := strings.Split(params, ";")
		code, err := strconv.Atoi(fields[0])
		if err != nil {
			return csiKey{}, false
		}
		base, ok := csiTildeKeys[code]
		if !ok {
			return csiKey{}, false
		}
		mods, ok := parseMods(fields[1:])
		if !ok {
			return csiKey{}, false
		}
		return csiKey{name: modPrefix(mods) + base}, true
	default:
		base, ok := csiLetterKeys[final]
		if !ok {
			return csiKey{}, false
		}
		if params == "" {
			return csiKey{name: base}, true
		}
		// Modified form: "1;<mods>".
		fields := strings.Split(params, ";")
		if len(fields) != 2 || fields[0] != "1" {
			return csiKey{}, false
		}
		mods, ok := parseMods(fields[1:])
		if !ok {
			return csiKey{}, false
		}
		return csiKey{name: modPrefix(mods) + base}, true
	}
}

// parseCSIu decodes kitty keyboard protocol keys: "code[:alternates][;mods[:event]]".
func parseCSIu(params string) (csiKey, bool) {
	fields := strings.Split(params, ";")
	codeField, _, _ := strings.Cut(fields[0], ":")
	code, err := strconv.Atoi(codeField)
	if err != nil || code < 0 || code > unicode.MaxRune {
		return csiKey{}, false
	}
	mods, ok := parseMods(fields[1:])
	if !ok {
		return csiKey{}, false
	}

	switch code {
	case '\r':
		return csiKey{name: modPrefix(mods) + "enter"}, true
	case '\t':
		return csiKey{name: modPrefix(mods) + "tab"}, true
	case del, 0x08:
		return csiKey{name: modPrefix(mods) + "backspace"}, true
	case esc:
		return csiKey{name: modPrefix(mods) + "esc"}, true
	}

	r := rune(code)
	if !unicode.IsPrint(r) {
		return csiKey{}, false
	}

	if mods&modCtrl != 0 {
		prefix := ""
		if mods&modAlt != 0 {
			prefix = "alt+"
		}
		lower := unicode.ToLower(r)
		if mods&modShift != 0 {
			return csiKey{name: prefix + "ctrl+shift+" + string(lower)}, true
		}
		// ctrl+letter converges with the raw control byte name.
		if lower >= 'a' && lower <= 'z' {
			return csiKey{name: prefix + controlName(byte(lower-'a'+1))}, true
		}
		return csiKey{name: prefix + "ctrl+" + string(r)}, true
	}

	if mods&modShift != 0 {
		r = unicode.ToUpper(r)
	}
	if mods&modAlt != 0 {
		return csiKey{name: "alt+" + string(r)}, true
	}
	return csiKey{insert: r}, true
}

// parseMods reads an optional "mods[:event]" field. Only shift, alt and ctrl
// are supported; other modifiers fail closed.
func parseMods(fields []string) (int, bool) {
	if len(fields) == 0 {
		return 0, true
	}
	if len(fields) > 1 {
		return 0, false
	}
	modField, event, _ := strings.Cut(fields[0], ":")
	switch event {
	case "", "1", "2":
	default:
		// Release events are not keystrokes.
		return 0, false
	}
	if modField == "" {
		return 0, true
	}
	v, err := strconv.Atoi(modField)
	if err != nil || v < 1 {
		return 0, false
	}
	mods := v - 1
	if mods&^(modShift|modAlt|modCtrl) != 0 {
		return 0, false
	}
	return mods, true
}

// modPrefix orders modifiers the way Bubble Tea names them: alt, ctrl, shift.
func modPrefix(mods int) string {
	var sb strings.Builder
	if mods&modAlt != 0 {
		sb.WriteString("alt+")
	}
	if mods&modCtrl != 0 {
		sb.WriteString("ctrl+")
	}
	if mods&modShift != 0 {
		sb.WriteString("shift+")
	}
	return sb.String()
}

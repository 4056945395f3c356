package buffer

// killRing keeps the most recent kills, newest first. With size 1 the last
// kill wins.
type killRing struct {
	entries []string
	size    int
}

func (k *killRing) push(s string) {
	if s == "" {
		return
	}
	k.entries = append([]string{s}, k.entries...)
	if len(k.entries) > k.size {
		k.entries = k.entries[:k.size]
	}
}

// KillRing returns the kill ring entries, newest first.
func (b *Buffer) KillRing() []string {
	return append([]string(nil), b.kill.entries...)
}

// LastKill returns the most recent kill ring entry.
func (b *Buffer) LastKill() (string, bool) {
	if len(b.kill.entries) == 0 {
		return "", false
	}
	return b.kill.entries[0], true
}

// killRange deletes [start, end) as one undo group and pushes the span onto
// the kill ring.
func (b *Buffer) killRange(cb *changeBuilder, start, end int) {
	if start >= end {
		return
	}
	killed := b.text[start:end]
	b.seal()
	if b.replace(cb, classSealed, start, end, "", start) {
		b.kill.push(killed)
	}
}

// killLineStart kills from the logical line start to the cursor. At the start
// of a line it kills the preceding newline instead.
func (b *Buffer) killLineStart(cb *changeBuilder) {
	bol := lineStart(b.text, b.cursor)
	if bol == b.cursor {
		if bol > 0 {
			b.killRange(cb, bol-1, bol)
		}
		return
	}
	b.killRange(cb, bol, b.cursor)
}

// killLineEnd kills from the cursor to the logical line end. At the end of a
// line it kills the following newline instead.
func (b *Buffer) killLineEnd(cb *changeBuilder) {
	eol := lineEnd(b.text, b.cursor)
	if eol == b.cursor {
		if eol < len(b.text) {
			b.killRange(cb, eol, eol+1)
		}
		return
	}
	b.killRange(cb, b.cursor, eol)
}

func (b *Buffer) killWrappedLineStart(cb *changeBuilder) {
	start, _ := b.visualLineBounds(b.cursor)
	if start == b.cursor {
		if start == lineStart(b.text, b.cursor) {
			b.killLineStart(cb)
		}
		return
	}
	b.killRange(cb, start, b.cursor)
}

func (b *Buffer) killWrappedLineEnd(cb *changeBuilder) {
	_, end := b.visualLineBounds(b.cursor)
	if end == b.cursor {
		if end == lineEnd(b.text, b.cursor) {
			b.killLineEnd(cb)
		}
		return
	}
	b.killRange(cb, b.cursor, end)
}

// killLine kills the whole logical line with its line break. On the last line
// the preceding line break goes with it.
func (b *Buffer) killLine(cb *changeBuilder) {
	if b.text == "" {
		return
	}
	bol := lineStart(b.text, b.cursor)
	eol := lineEnd(b.text, b.cursor)
	switch {
	case eol < len(b.text):
		eol++
	case bol > 0:
		bol--
	}
	b.killRange(cb, bol, eol)
}

// yank inserts the newest kill ring entry at the cursor.
func (b *Buffer) yank(cb *changeBuilder) {
	s, ok := b.LastKill()
	if !ok {
		return
	}
	at := b.cursor
	b.seal()
	b.replace(cb, classSealed, at, at, s, at+len(s))
}

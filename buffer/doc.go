// Package buffer implements the single-owner editing engine behind the
// composer: buffer text, cursor, grouped undo/redo history, and the kill ring.
//
// Text is valid UTF-8. The cursor is a byte offset that always sits on a
// code-point boundary. Every command source reduces to edit.Command and goes
// through Apply or ApplyRemote.
package buffer

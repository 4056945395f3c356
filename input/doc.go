// Package input turns raw terminal bytes and Bubble Tea key events into
// edit commands.
//
// Decoder is a byte-at-a-time state machine: control bytes, meta (ESC
// prefixed) keys, CSI/SS3 sequences and kitty CSI-u keys all resolve to a
// Bubble Tea style key name, which is then looked up in a KeyMap. Incomplete
// escape sequences wait for more bytes until a deadline; callers drive the
// deadline with Expire. Anything the decoder cannot interpret is dropped.
package input

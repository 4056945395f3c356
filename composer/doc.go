// Package composer is a Bubble Tea host for a quill buffer.
//
// The Model owns the buffer, the input decoder and the control channel, and
// drives all of them from its Update loop: raw terminal bytes, escape
// deadlines, control polls and watch hints all arrive as messages, so a
// remote batch is applied between two keystrokes and never interleaved with
// one.
//
// Model is a component in the usual Bubble Tea sense: embed it in a program
// model and forward messages to Update.
package composer

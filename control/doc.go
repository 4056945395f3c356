// Package control implements the file-based remote control channel.
//
// An external process stages a JSON request in the control directory. The
// composer notices it (Check only stats the file), consumes it as a discrete
// step (Process), applies each recognized command to the buffer, and answers
// with a response file written by atomic replace. A request is identified by
// its SHA-256 digest and modification time; the identity is persisted before
// any command is applied, so a batch is applied at most once even across
// restarts.
package control

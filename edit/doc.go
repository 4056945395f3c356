// Package edit defines the closed set of logical edit operations shared by
// every command source (terminal input, the file-based control channel) and
// consumed by the buffer package.
package edit

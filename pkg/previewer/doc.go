// Package previewer drives an external tev image viewer.
//
// A Bridge keeps at most one viewer session: a child process plus the TCP
// connection to its IPC port. The port is discovered by scanning the child's
// stdout for one of the lines tev prints on startup:
//
//	Initialized IPC, listening on 127.0.0.1:14158
//	Connected to primary instance at 127.0.0.1:14158
//
// Images are opened by sending tev's OpenImage packet (type 7). A session
// whose process has exited is discarded and a new one is spawned on the next
// request.
package previewer

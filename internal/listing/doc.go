// Package listing provides the directory listing transport used by release
// discovery.
//
// A Dialer opens a Session rooted at a remote base URL; Session.List returns
// the bare entry names of a directory relative to that root. Callers own the
// session and must Close it on every exit path. FTP roots use anonymous NLST
// listings; HTTP(S) roots parse Apache-style index pages. No retries happen at
// this layer.
package listing

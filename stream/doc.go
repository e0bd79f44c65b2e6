// SPDX-License-Identifier: EPL-2.0

// Package stream provides the byte-level readers used by the demuxers.
//
// A MediaSource is any io.Reader, optionally seekable. MediaSourceStream wraps
// a MediaSource with an exponentially growing read-ahead buffer kept in a
// power-of-two ring, so recently read bytes can be revisited with
// SeekBuffered even when the underlying source cannot seek.
//
// BufReader reads from an in-memory packet, ScopedReader limits how many
// bytes may be taken from another reader and MonitorReader shows every byte
// it reads to a Monitor, such as a running checksum.
//
// Readers follow io.ReadFull conventions: reading from an exhausted reader
// returns io.EOF, a read that ends part way through returns
// io.ErrUnexpectedEOF.
package stream

// SPDX-License-Identifier: EPL-2.0

// Package mpa parses MPEG-1, MPEG-2 and MPEG-2.5 audio frames.
//
// ParseFrameHeader and SyncFrame serve demuxers. Decoder follows a Layer 3
// frame through its side information, the bit reservoir shared with earlier
// frames and the MPEG-1 scale factors, which ReadFrame exposes. Huffman
// decoding of the spectral samples, Layers 1 and 2 and MPEG-2 scale factors
// are not implemented and are reported as media.ErrUnsupported.
package mpa

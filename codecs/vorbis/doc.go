// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Vorbis I audio packets.
//
// The identification and setup headers are handed to NewDecoder through
// media.CodecParameters.ExtraData. Each call to Decode then turns one audio
// packet into planar float32 samples, overlapping it with the previous
// packet, so the first packet after NewDecoder or Reset produces no frames.
//
// ReadIdentHeader, ReadCommentHeader, ReadModes and PacketParser serve
// demuxers that need stream parameters, tags and packet durations without
// decoding audio.
package vorbis

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package decode provides incremental UTF-8 decoding for streamed responses.
package decode

import (
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// =============================================================================
// STREAM DECODER
// =============================================================================

// StreamDecoder decodes a byte stream into text incrementally. A multi-byte
// UTF-8 sequence split across chunk boundaries is carried over and completed
// by the next chunk, so emitted text always ends on a character boundary.
//
// UNICODE: Invalid byte sequences are replaced with U+FFFD rather than
// surfaced as errors; decoding never fails a stream.
//
// A StreamDecoder holds carry-over state and must not be shared between
// streams or reused after Flush. Create one per response stream.
type StreamDecoder struct {
	transformer transform.Transformer
	carry       []byte
	dst         []byte
	flushed     bool
}

// NewStreamDecoder creates a decoder for a single response stream.
func NewStreamDecoder() *StreamDecoder {
	return &StreamDecoder{
		transformer: unicode.UTF8.NewDecoder(),
		dst:         make([]byte, 4096),
	}
}

// Write feeds the next chunk of raw bytes and returns the maximal decodable
// text. Bytes that form an incomplete trailing sequence are held back until
// the next Write or the final Flush.
func (d *StreamDecoder) Write(chunk []byte) string {
	if d.flushed || (len(chunk) == 0 && len(d.carry) == 0) {
		return ""
	}
	d.carry = append(d.carry, chunk...)
	return d.decode(false)
}

// Flush signals end of stream and returns any remaining text. Carried bytes
// that never completed a sequence decode best-effort (U+FFFD per invalid
// byte). The decoder is spent after Flush.
func (d *StreamDecoder) Flush() string {
	if d.flushed {
		return ""
	}
	d.flushed = true
	if len(d.carry) == 0 {
		return ""
	}
	return d.decode(true)
}

// decode runs the transformer over the carried bytes, growing the
// destination buffer as needed, and retains any undecodable tail.
func (d *StreamDecoder) decode(atEOF bool) string {
	var out []byte
	src := d.carry
	for {
		nDst, nSrc, err := d.transformer.Transform(d.dst, src, atEOF)
		out = append(out, d.dst[:nDst]...)
		src = src[nSrc:]
		if err == transform.ErrShortDst {
			continue
		}
		// nil or ErrShortSrc: anything left in src is an incomplete
		// sequence waiting for more bytes.
		break
	}

	// Copy the tail instead of re-slicing so appends to carry never
	// clobber bytes the caller handed us.
	if len(src) > 0 {
		d.carry = append(d.carry[:0:0], src...)
	} else {
		d.carry = nil
	}

	return string(out)
}

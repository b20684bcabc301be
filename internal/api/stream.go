// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the chatbot backend.
//
// This file implements the streaming side of the client: one POST per user
// turn, response metadata from headers, and the raw byte stream of the
// model's reply.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
)

// streamReadBuffer is the per-read buffer size for the response body.
// Chunks from the server are typically far smaller.
const streamReadBuffer = 4096

// Headers carrying the response metadata.
const (
	headerSessionID      = "X-Session-ID"
	headerSessionCreated = "X-Session-Created"
)

// =============================================================================
// OPEN STREAM
// =============================================================================

// OpenStream issues the chat POST for one turn and returns the open
// response stream. The returned Stream's Meta is populated from the
// response headers, so session identity is known before any of the body is
// read.
//
// A non-2xx status or a network failure returns *TransportError. The
// context aborts both the header wait and subsequent body reads; the
// caller must Close the stream when done.
func (c *Client) OpenStream(ctx context.Context, turn TurnRequest) (*Stream, error) {
	payload, err := json.Marshal(turn)
	if err != nil {
		return nil, fmt.Errorf("failed to encode turn request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chats/", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create stream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/plain")
	c.authorize(req)

	resp, err := c.streamClient.Do(req)
	if err != nil {
		// Surface cancellation as the context error so callers can
		// distinguish an abort from a genuine network failure.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, newNetworkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := readBounded(resp.Body)
		resp.Body.Close()
		return nil, newHTTPError(resp.StatusCode, body)
	}

	return &Stream{
		ctx:  ctx,
		body: resp.Body,
		meta: parseMeta(resp.Header),
		buf:  make([]byte, streamReadBuffer),
	}, nil
}

// parseMeta extracts the session metadata from response headers. A missing
// or malformed session header leaves HasSessionID false rather than failing
// the turn.
func parseMeta(h http.Header) Meta {
	var meta Meta
	meta.SessionCreated = h.Get(headerSessionCreated) == "true"

	if raw := h.Get(headerSessionID); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			meta.SessionID = id
			meta.HasSessionID = true
		}
	}
	return meta
}

// =============================================================================
// STREAM
// =============================================================================

// Stream is one open turn response. Recv yields raw byte chunks in arrival
// order; the stream makes no framing or encoding guarantees, so chunk
// boundaries may fall inside multi-byte characters. Decoding is the
// caller's job.
//
// A Stream is used by a single goroutine; it is not safe for concurrent
// Recv calls.
type Stream struct {
	ctx  context.Context
	body io.ReadCloser
	meta Meta
	buf  []byte

	err       error
	closeOnce sync.Once
}

// Meta returns the response metadata read from headers.
func (s *Stream) Meta() Meta {
	return s.meta
}

// Recv returns the next chunk of response bytes. It returns io.EOF when
// the server finishes the response, and the context error when the turn
// was cancelled. The returned slice is valid until the next Recv call.
func (s *Stream) Recv() ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	if err := s.ctx.Err(); err != nil {
		s.err = err
		return nil, err
	}

	n, err := s.body.Read(s.buf)
	if n > 0 {
		// Hold a trailing error for the next call so the final chunk
		// is delivered intact.
		if err != nil {
			s.err = s.mapReadError(err)
		}
		return s.buf[:n], nil
	}

	if err == nil {
		err = io.EOF
	}
	s.err = s.mapReadError(err)
	return nil, s.err
}

// mapReadError normalizes body-read failures: cancellation surfaces as the
// context error, EOF passes through, everything else is a transport error.
func (s *Stream) mapReadError(err error) error {
	if ctxErr := s.ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err == io.EOF {
		return io.EOF
	}
	return newNetworkError(err)
}

// Close releases the response body. Idempotent and safe after Recv errors.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.body.Close()
	})
	return err
}

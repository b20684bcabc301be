// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the chatbot backend.
//
// The backend exposes one streaming endpoint (POST /chats/ returns the
// model's reply as a raw text byte stream, with session identity in the
// X-Session-ID and X-Session-Created response headers) plus plain REST
// endpoints for session management and login. All requests carry an opaque
// bearer token.
//
// # Key Types
//
//   - Client: Authenticated client over both endpoint styles
//   - Stream: One open turn response; Recv yields byte chunks in order
//   - Meta: Session metadata from headers, available before the body
//   - TransportError: HTTP or network failure with status and body excerpt
//
// # Usage
//
// Open a turn and consume the stream:
//
//	client, _ := api.New("https://chat.example.com", token)
//	stream, err := client.OpenStream(ctx, api.TurnRequest{Prompt: "Hello"})
//	if err != nil {
//	    return err
//	}
//	defer stream.Close()
//
//	meta := stream.Meta() // session id known before any body bytes
//	for {
//	    chunk, err := stream.Recv()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//
// Streaming uses a dedicated http.Client without a timeout; lifetime is
// controlled entirely by the caller's context.
package api

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the chatbot-tui application.
//
// # Key Functions
//
// String Utilities (all UTF-8 and display-width aware):
//   - TruncateWidth: Terminal-column truncation with ellipsis, CJK safe
//   - StringWidth: Display width in terminal columns
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//   - AtomicWriteFileWithDir: Same, with explicit directory permissions
//
// # Usage
//
//	// Truncate long session titles safely for display
//	display := util.TruncateWidth(title, 50)
//
//	// Write files atomically to prevent data loss
//	err := util.AtomicWriteFile(path, data, 0644)
package util

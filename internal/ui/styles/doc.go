// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the chatbot TUI.
//
// The palette is defined once as lipgloss.AdaptiveColor values and
// assembled into a Theme of ready-to-use styles. The theme mode comes from
// configuration ("dark", "light", or "auto"); auto defers to the terminal's
// reported background.
//
// # Key Types
//
//   - Theme: All styles the chat view renders with
//
// # Usage
//
//	theme := styles.NewTheme(cfg.UI.Theme)
//	fmt.Println(theme.UserLabel.Render("You"))
package styles

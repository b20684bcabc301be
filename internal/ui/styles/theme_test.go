// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "testing"

func TestNewThemeModes(t *testing.T) {
	dark := NewTheme("dark")
	if !dark.IsDark {
		t.Error("Expected dark theme to report IsDark")
	}
	if dark.GlamourStyle() != "dark" {
		t.Errorf("Expected glamour style dark, got %q", dark.GlamourStyle())
	}

	light := NewTheme("light")
	if light.IsDark {
		t.Error("Expected light theme to report !IsDark")
	}
	if light.GlamourStyle() != "light" {
		t.Errorf("Expected glamour style light, got %q", light.GlamourStyle())
	}

	// Auto must not panic without a real terminal.
	_ = NewTheme("auto")
}

func TestThemeStylesRender(t *testing.T) {
	theme := NewTheme("dark")

	// Styles must be usable immediately after construction.
	if out := theme.UserLabel.Render("You"); out == "" {
		t.Error("Expected non-empty render for UserLabel")
	}
	if out := theme.MessageError.Render("boom"); out == "" {
		t.Error("Expected non-empty render for MessageError")
	}
	if out := theme.StatusBar.Render("ready"); out == "" {
		t.Error("Expected non-empty render for StatusBar")
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config handles loading and saving chatbot-tui configuration.
//
// Configuration lives in ~/.chatbot-tui/config.toml (legacy config.json is
// still read). Precedence, lowest to highest: built-in defaults, config
// file, CHATBOT_* environment variables. Saves are atomic and the file is
// written 0600 because it carries the bearer token.
//
// # Key Types
//
//   - Config: Complete application configuration (server, chat, typing, ui)
//   - Watcher: fsnotify-based hot reload of the config file
//   - ValidationError: One invalid field with its reason
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	client, _ := api.New(cfg.Server.BaseURL, cfg.Server.Token)
//
// Environment overrides: CHATBOT_SERVER_URL, CHATBOT_TOKEN, CHATBOT_MODEL,
// CHATBOT_USE_WEB_SEARCH, CHATBOT_THEME.
package config

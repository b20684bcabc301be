// chatbot-tui - A terminal interface for streaming chatbot conversations.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/Goutam-aswani/chatbot-tui/internal/api"
	"github.com/Goutam-aswani/chatbot-tui/internal/config"
	"github.com/Goutam-aswani/chatbot-tui/internal/model"
	"github.com/Goutam-aswani/chatbot-tui/internal/session"
	"github.com/Goutam-aswani/chatbot-tui/internal/turn"
	"github.com/Goutam-aswani/chatbot-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// configReloadDebounce smooths editor write bursts on the config file.
const configReloadDebounce = 200 * time.Millisecond

func main() {
	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "login":
			runLogin()
			return
		case "version", "--version", "-v":
			fmt.Printf("chatbot-tui %s (%s, built %s)\n", Version, GitCommit, BuildDate)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		}
	}

	runTUI(args)
}

func printUsage() {
	fmt.Print(`chatbot-tui - streaming chat in your terminal

Usage:
  chatbot-tui [flags]       Start the chat interface
  chatbot-tui login         Obtain and store an access token
  chatbot-tui version       Print version information

Flags:
  -server URL    Override the backend base URL
  -model NAME    Override the model name
  -token TOKEN   Override the access token
  -web-search    Ask the backend to ground responses in web search

Configuration lives in ~/.chatbot-tui/config.toml and can be overridden
with CHATBOT_* environment variables.
`)
}

// =============================================================================
// TUI
// =============================================================================

func runTUI(args []string) {
	fs := flag.NewFlagSet("chatbot-tui", flag.ExitOnError)
	serverFlag := fs.String("server", "", "backend base URL")
	modelFlag := fs.String("model", "", "model name")
	tokenFlag := fs.String("token", "", "access token")
	webSearchFlag := fs.Bool("web-search", false, "ground responses in web search")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("Failed to load configuration: %v", err)
	}
	if *serverFlag != "" {
		cfg.Server.BaseURL = *serverFlag
	}
	if *modelFlag != "" {
		cfg.Chat.Model = *modelFlag
	}
	if *tokenFlag != "" {
		cfg.Server.Token = *tokenFlag
	}
	if *webSearchFlag {
		cfg.Chat.UseWebSearch = true
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fatal("chatbot-tui requires an interactive terminal")
	}

	// Bubble Tea owns stdout, so diagnostics go to a file when requested.
	if os.Getenv("CHATBOT_DEBUG") != "" {
		if dir, err := config.Dir(); err == nil {
			if f, err := tea.LogToFile(filepath.Join(dir, "debug.log"), "debug"); err == nil {
				defer f.Close()
			}
		}
	}
	if cfg.Server.Token == "" {
		fmt.Fprintln(os.Stderr, "No access token configured; run 'chatbot-tui login' first.")
		os.Exit(1)
	}

	client, err := api.New(cfg.Server.BaseURL, cfg.Server.Token)
	if err != nil {
		fatal("Failed to create API client: %v", err)
	}

	// Wire the turn pipeline: one conversation, one runner, and a
	// refresher feeding session lists back into the view.
	conv := model.NewConversation()
	refreshCh, onRefresh := chat.NewRefreshChannel()
	refresher := session.NewRefresher(client, onRefresh)
	defer refresher.Close()

	runner := turn.NewRunner(client, conv, refresher, turn.Options{
		ModelName:    cfg.Chat.Model,
		UseWebSearch: cfg.Chat.UseWebSearch,
		RunesPerTick: cfg.Typing.RunesPerTick,
	})

	p := tea.NewProgram(
		chat.New(client, runner, refreshCh, cfg),
		tea.WithAltScreen(),
	)

	// Hot reload: config edits land in the running view without restart.
	if dir, err := config.Dir(); err == nil {
		watcher, err := config.NewWatcher(dir, configReloadDebounce, func(next *config.Config) {
			client.SetToken(next.Server.Token)
			p.Send(chat.ConfigReloadedMsg{Config: next})
		})
		if err == nil && watcher.Watch() == nil {
			defer watcher.Close()
		}
	}

	if _, err := p.Run(); err != nil {
		fatal("TUI error: %v", err)
	}
}

// =============================================================================
// LOGIN
// =============================================================================

// runLogin exchanges credentials for a token and stores it in the config.
func runLogin() {
	cfg, err := config.Load()
	if err != nil {
		fatal("Failed to load configuration: %v", err)
	}

	client, err := api.New(cfg.Server.BaseURL, "")
	if err != nil {
		fatal("Failed to create API client: %v", err)
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Username: ")
	username, err := reader.ReadString('\n')
	if err != nil {
		fatal("Failed to read username: %v", err)
	}
	username = strings.TrimSpace(username)

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		fatal("Failed to read password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()

	token, err := client.Login(ctx, username, string(password))
	if err != nil {
		fatal("Login failed: %v", err)
	}

	cfg.Server.Token = token
	if err := cfg.Save(); err != nil {
		fatal("Failed to save token: %v", err)
	}

	path, _ := config.Path()
	fmt.Printf("Logged in as %s; token saved to %s\n", username, path)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// MIT License
//
// Copyright (c) 2025 Mike Lane
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Proposald is the proposal-stewardship daemon: it listens for GitHub
// webhook events and keeps proposal pull requests numbered, normalized, and
// mergeable.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/mikelane/proposald/internal/github"
	"github.com/mikelane/proposald/internal/merge"
	"github.com/mikelane/proposald/internal/webhook"
)

func main() {
	var (
		addr          string
		port          int
		token         string
		webhookSecret string
		development   bool
	)

	flag.StringVar(&addr, "addr", "0.0.0.0", "Address the webhook server binds to")
	flag.IntVar(&port, "port", 8080, "Port the webhook server listens on")
	flag.StringVar(&token, "github-token", os.Getenv("GITHUB_TOKEN"), "GitHub access token (defaults to GITHUB_TOKEN)")
	flag.StringVar(&webhookSecret, "webhook-secret", os.Getenv("WEBHOOK_SECRET"), "GitHub webhook secret (defaults to WEBHOOK_SECRET)")
	flag.BoolVar(&development, "development", false, "Enable human-readable development logging")
	flag.Parse()

	if err := run(addr, port, token, webhookSecret, development); err != nil {
		fmt.Fprintf(os.Stderr, "proposald: %v\n", err)
		os.Exit(1)
	}
}

func run(addr string, port int, token, webhookSecret string, development bool) error {
	var zapLog *zap.Logger
	var err error
	if development {
		zapLog, err = zap.NewDevelopment()
	} else {
		zapLog, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer zapLog.Sync() //nolint:errcheck

	logger := zapr.NewLogger(zapLog)

	if token == "" {
		return fmt.Errorf("a GitHub token is required (set --github-token or GITHUB_TOKEN)")
	}
	if webhookSecret == "" {
		return fmt.Errorf("a webhook secret is required (set --webhook-secret or WEBHOOK_SECRET)")
	}

	client, err := github.NewClient(token)
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}

	orchestrator := merge.NewOrchestrator(client)
	server := webhook.NewServer(addr, port, orchestrator, webhookSecret)

	ctx, stop := signal.NotifyContext(logr.NewContext(context.Background(), logger), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Start(ctx)
}

// Copyright 2025 The Proposald Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

// Processor handles pull request events. The merge orchestrator satisfies it.
type Processor interface {
	// Normalize runs the non-merge rewrite pass for a pull request
	Normalize(ctx context.Context, owner, repo string, number int) error
	// Merge runs the final pass and enables automatic merging
	Merge(ctx context.Context, owner, repo string, number int) error
}

// Server handles GitHub webhook requests
type Server struct {
	addr          string
	port          int
	processor     Processor
	webhookSecret string
	server        *http.Server
	rateLimiter   *RateLimiter
}

// RateLimiter provides per-repository rate limiting
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*bucket
	limit    int
	window   time.Duration
}

type bucket struct {
	tokens    int
	lastReset time.Time
}

// NewServer creates a new webhook server
func NewServer(addr string, port int, processor Processor, webhookSecret string) *Server {
	return &Server{
		addr:          addr,
		port:          port,
		processor:     processor,
		webhookSecret: webhookSecret,
		rateLimiter:   NewRateLimiter(10, time.Second), // 10 requests per second per repo
	}
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*bucket),
		limit:    limit,
		window:   window,
	}
}

// Allow checks if a request from the given repository should be allowed
func (rl *RateLimiter) Allow(repo string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.limiters[repo]
	if !exists {
		b = &bucket{
			tokens:    rl.limit,
			lastReset: time.Now(),
		}
		rl.limiters[repo] = b
	}

	// Reset bucket if window has passed
	if time.Since(b.lastReset) >= rl.window {
		b.tokens = rl.limit
		b.lastReset = time.Now()
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}

	return false
}

// Start starts the webhook server and blocks until the context is canceled
func (s *Server) Start(ctx context.Context) error {
	logger := logr.FromContextOrDiscard(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", s.handleWebhook)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.addr, s.port),
		Handler: mux,
		// Request contexts inherit the logger and lifetime of the server
		// context.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting webhook server", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down webhook server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleWebhook handles GitHub webhook requests
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	logger := logr.FromContextOrDiscard(r.Context())

	// Only accept POST requests
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Read body
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error(err, "Failed to read request body")
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	// Validate signature
	signature := r.Header.Get("X-Hub-Signature-256")
	if !ValidateSignature(payload, signature, s.webhookSecret) {
		logger.Info("Invalid webhook signature")
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	eventType := r.Header.Get("X-GitHub-Event")
	switch eventType {
	case "pull_request":
		s.handlePullRequestEvent(w, r, payload)
	case "pull_request_review":
		s.handleReviewEvent(w, r, payload)
	default:
		logger.V(1).Info("Ignoring event", "event", eventType)
		w.WriteHeader(http.StatusOK)
	}
}

// handlePullRequestEvent runs the normalization pass for freshly opened or
// updated pull requests
func (s *Server) handlePullRequestEvent(w http.ResponseWriter, r *http.Request, payload []byte) {
	logger := logr.FromContextOrDiscard(r.Context())

	var event PullRequestEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		logger.Error(err, "Failed to parse JSON payload")
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if !s.rateLimiter.Allow(event.Repository.FullName) {
		logger.Info("Rate limit exceeded", "repository", event.Repository.FullName)
		http.Error(w, "Too many requests", http.StatusTooManyRequests)
		return
	}

	switch strings.ToLower(event.Action) {
	case "opened", "reopened", "synchronize":
		if err := s.processor.Normalize(r.Context(), event.Repository.Owner.Login, event.Repository.Name, event.Number); err != nil {
			logger.Error(err, "Failed to normalize pull request", "pr", event.Number)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		logger.Info("Normalized pull request", "pr", event.Number)
		w.WriteHeader(http.StatusOK)

	default:
		logger.V(1).Info("Ignoring PR action", "action", event.Action)
		w.WriteHeader(http.StatusOK)
	}
}

// handleReviewEvent runs the merge pass when a pull request is approved
func (s *Server) handleReviewEvent(w http.ResponseWriter, r *http.Request, payload []byte) {
	logger := logr.FromContextOrDiscard(r.Context())

	var event ReviewEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		logger.Error(err, "Failed to parse JSON payload")
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if !s.rateLimiter.Allow(event.Repository.FullName) {
		logger.Info("Rate limit exceeded", "repository", event.Repository.FullName)
		http.Error(w, "Too many requests", http.StatusTooManyRequests)
		return
	}

	if strings.ToLower(event.Action) != "submitted" || strings.ToLower(event.Review.State) != "approved" {
		logger.V(1).Info("Ignoring review event", "action", event.Action, "state", event.Review.State)
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := s.processor.Merge(r.Context(), event.Repository.Owner.Login, event.Repository.Name, event.PullRequest.Number); err != nil {
		logger.Error(err, "Failed to merge pull request", "pr", event.PullRequest.Number)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	logger.Info("Enabled automatic merge", "pr", event.PullRequest.Number)
	w.WriteHeader(http.StatusOK)
}

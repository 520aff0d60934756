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

// Package webhook implements the GitHub webhook server that triggers
// pull-request processing.
//
// Incoming requests are authenticated with HMAC-SHA256 signatures
// (X-Hub-Signature-256) and rate-limited per repository. pull_request
// events (opened, reopened, synchronize) run the normalization pass;
// pull_request_review events with an approved review run the merge pass.
// All other events are acknowledged and ignored.
package webhook

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

// Package github provides GitHub API integration for Proposald.
//
// This package wraps the GitHub REST git data API (blobs, trees, commits,
// refs), the pull request API (metadata, file lists, base updates, branch
// updates, reviews), and the single GraphQL mutation needed to enable
// automatic merging.
//
// Key features:
//   - Fetch pull request details including head/base repository provenance
//   - Create and read git objects in any repository the token can reach
//   - Repoint a pull request's base branch and fold the base into its head
//   - Enable squash auto-merge and submit reviews
//
// Authentication:
//
// The client requires a GitHub personal access token with the following scopes:
//   - repo (for reading and writing repository content)
//   - workflow is not required; no workflow files are touched
//
// Example usage:
//
//	client, err := github.NewClient(token)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pr, err := client.GetPullRequest(ctx, "owner", "repo", 123)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("PR #%d: %s\n", pr.Number, pr.Title)
//
// Error handling:
//
// No call is retried automatically; every failure propagates to the caller.
// IsNotFound classifies the "missing ref" responses (404, and 422 with
// "Reference does not exist" on ref deletion) that the branch redirection
// workaround tolerates during cleanup.
package github

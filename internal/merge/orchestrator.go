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

package merge

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/mikelane/proposald/internal/branch"
	"github.com/mikelane/proposald/internal/github"
	"github.com/mikelane/proposald/internal/proposal"
	"github.com/mikelane/proposald/internal/rewrite"
	"github.com/mikelane/proposald/internal/tree"
)

const (
	approveMessage  = "All proposal checks passed; approving automatically."
	mergeCommitBody = "Merged automatically by proposald."
	reviewApprove   = "APPROVE"
)

// Orchestrator sequences the full pull-request processing pipeline:
// file-set rewriting, tree reconciliation, branch redirection, and on the
// merge pass, auto-merge enablement plus an approving review.
type Orchestrator struct {
	client     github.Client
	rewriter   *rewrite.Rewriter
	reconciler *tree.Reconciler
	redirector *branch.Redirector
}

// NewOrchestrator wires the pipeline components around one GitHub client
func NewOrchestrator(client github.Client) *Orchestrator {
	return &Orchestrator{
		client: client,
		rewriter: &rewrite.Rewriter{
			Allocator: &proposal.Allocator{Lister: client},
		},
		reconciler: &tree.Reconciler{Git: client},
		redirector: &branch.Redirector{Refs: client},
	}
}

// Normalize runs the non-merge pass for a pull request: rewrite its file
// set and, if anything changed, publish the reconciled tree back onto the
// pull request.
func (o *Orchestrator) Normalize(ctx context.Context, owner, repo string, number int) error {
	_, err := o.run(ctx, owner, repo, number, false)
	return err
}

// Merge runs the final pass: rewrite and publish with merge-pass semantics,
// then enable squash auto-merge with the pull request's title as the commit
// headline and submit an approving review. Any step's failure aborts the
// remaining steps.
func (o *Orchestrator) Merge(ctx context.Context, owner, repo string, number int) error {
	pr, err := o.run(ctx, owner, repo, number, true)
	if err != nil {
		return err
	}

	if err := o.client.EnableAutoMerge(ctx, pr.NodeID, pr.Title, mergeCommitBody); err != nil {
		return err
	}

	return o.client.CreateReview(ctx, owner, repo, number, reviewApprove, approveMessage)
}

func (o *Orchestrator) run(ctx context.Context, owner, repo string, number int, mergePass bool) (*github.PullRequest, error) {
	logger := logr.FromContextOrDiscard(ctx)

	pr, err := o.client.GetPullRequest(ctx, owner, repo, number)
	if err != nil {
		return nil, err
	}

	files, err := o.loadFiles(ctx, pr)
	if err != nil {
		return nil, err
	}

	rewritten, changed, err := o.rewriter.Rewrite(ctx, pr.BaseRepo, files, mergePass)
	if err != nil {
		return nil, err
	}
	if !changed {
		logger.V(1).Info("No rewrite needed", "pr", number)
		return pr, nil
	}

	commitSHA, err := o.reconciler.Reconcile(ctx, pr, files, rewritten)
	if err != nil {
		return nil, err
	}
	logger.Info("Synthesized replacement commit", "pr", number, "commit", commitSHA)

	if err := o.redirector.Publish(ctx, pr, commitSHA); err != nil {
		return nil, err
	}

	return pr, nil
}

// loadFiles assembles the pull request's file-change records, fetching
// head-ref contents for every file that still exists there.
func (o *Orchestrator) loadFiles(ctx context.Context, pr *github.PullRequest) ([]*github.File, error) {
	files, err := o.client.GetPRFiles(ctx, pr.BaseRepo.Owner, pr.BaseRepo.Name, pr.Number)
	if err != nil {
		return nil, err
	}

	for _, f := range files {
		if f.Status == github.StatusRemoved {
			continue
		}
		contents, err := o.client.GetFileContents(ctx, pr.HeadRepo.Owner, pr.HeadRepo.Name, f.Filename, pr.HeadSHA)
		if err != nil {
			return nil, err
		}
		f.Contents = contents
	}

	return files, nil
}

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

package branch

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/mikelane/proposald/internal/github"
)

// RefService is the slice of the platform API the redirector needs
type RefService interface {
	CreateBranch(ctx context.Context, owner, repo, branch, sha string) error
	DeleteBranch(ctx context.Context, owner, repo, branch string) error
	UpdatePullRequestBase(ctx context.Context, owner, repo string, number int, base string) error
	UpdatePullRequestBranch(ctx context.Context, owner, repo string, number int) error
}

// Redirector makes a synthesized commit visible as a pull request's content.
// The platform refuses direct rewrites of a pull request's remote branch
// ref, so the commit is published on a temporary branch, the pull request's
// base is pointed at it, and the platform's update-branch operation folds
// the content in. The base is restored and the temporary branch deleted on
// every exit path.
type Redirector struct {
	Refs RefService
}

// TempBranchName returns the temporary branch name for a pull request.
// The name is keyed only on the pull request number: concurrent runs
// against the same pull request would race on it. Invocations are expected
// to be serialized per pull request by the caller.
func TempBranchName(number int) string {
	return fmt.Sprintf("proposald/pr-%d", number)
}

// Publish points the pull request at commitSHA's content.
//
// Whatever the fold-in step does, the pull request ends pointed back at the
// default branch and the temporary branch does not persist; a crash can
// leave a dangling temporary branch but never a misconfigured pull request.
func (rd *Redirector) Publish(ctx context.Context, pr *github.PullRequest, commitSHA string) (err error) {
	logger := logr.FromContextOrDiscard(ctx)
	base := pr.BaseRepo
	temp := TempBranchName(pr.Number)

	// A stale temporary branch from an earlier crash is deleted first;
	// "not found" is the expected case.
	if deleteErr := rd.Refs.DeleteBranch(ctx, base.Owner, base.Name, temp); deleteErr != nil && !github.IsNotFound(deleteErr) {
		return fmt.Errorf("failed to delete stale temporary branch %s: %w", temp, deleteErr)
	}

	if createErr := rd.Refs.CreateBranch(ctx, base.Owner, base.Name, temp, commitSHA); createErr != nil {
		return fmt.Errorf("failed to create temporary branch %s: %w", temp, createErr)
	}

	defer func() {
		restoreErr := rd.Refs.UpdatePullRequestBase(ctx, base.Owner, base.Name, pr.Number, pr.DefaultBranch)
		if restoreErr != nil {
			logger.Error(restoreErr, "failed to restore pull request base", "pr", pr.Number, "base", pr.DefaultBranch)
		}
		deleteErr := rd.Refs.DeleteBranch(ctx, base.Owner, base.Name, temp)
		if deleteErr != nil && !github.IsNotFound(deleteErr) {
			logger.Error(deleteErr, "failed to delete temporary branch", "branch", temp)
		}
		if err == nil {
			if restoreErr != nil {
				err = fmt.Errorf("failed to restore pull request base: %w", restoreErr)
			} else if deleteErr != nil && !github.IsNotFound(deleteErr) {
				err = fmt.Errorf("failed to delete temporary branch %s: %w", temp, deleteErr)
			}
		}
	}()

	if baseErr := rd.Refs.UpdatePullRequestBase(ctx, base.Owner, base.Name, pr.Number, temp); baseErr != nil {
		return fmt.Errorf("failed to point pull request at %s: %w", temp, baseErr)
	}
	if foldErr := rd.Refs.UpdatePullRequestBranch(ctx, base.Owner, base.Name, pr.Number); foldErr != nil {
		return fmt.Errorf("failed to fold %s into pull request #%d: %w", temp, pr.Number, foldErr)
	}

	return nil
}

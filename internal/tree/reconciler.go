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

package tree

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mikelane/proposald/internal/github"
)

const (
	commitMessage = "Update proposal files"
	fileMode      = "100644"
)

// GitService is the slice of the platform API the reconciler needs
type GitService interface {
	GetBranchCommit(ctx context.Context, owner, repo, branch string) (*github.Commit, error)
	GetTree(ctx context.Context, owner, repo, treeSHA string, recursive bool) ([]*github.TreeEntry, error)
	CreateBlob(ctx context.Context, owner, repo, content, encoding string) (string, error)
	GetBlob(ctx context.Context, owner, repo, sha string) (content, encoding string, err error)
	CreateTree(ctx context.Context, owner, repo string, entries []*github.TreeEntry) (string, error)
	CreateCommit(ctx context.Context, owner, repo, message, treeSHA string, parents []string) (string, error)
	UpdatePullRequestBase(ctx context.Context, owner, repo string, number int, base string) error
	UpdatePullRequestBranch(ctx context.Context, owner, repo string, number int) error
}

// ForkPointPolicy picks the parent for the synthesized commit when the head
// branch's current commit is a merge commit. It returns false when the
// commit is not a merge commit, in which case the branch is updated from the
// default branch first and its own commit becomes the parent.
type ForkPointPolicy func(parents []string) (string, bool)

// FirstParentForkPoint assumes the first parent of a two-parent commit is
// the fork point with the base branch. This holds for the update-branch
// workflow that produces those merge commits; callers with a different
// workflow can supply their own policy.
func FirstParentForkPoint(parents []string) (string, bool) {
	if len(parents) >= 2 {
		return parents[0], true
	}
	return "", false
}

// Reconciler synthesizes a complete replacement tree and commit in the base
// repository from a pull request's old and new file sets.
type Reconciler struct {
	Git GitService
	// Locator resolves tree-entry provenance. Nil uses URLLocator.
	Locator ObjectLocator
	// ForkPoint selects the commit parent for merge-commit heads. Nil uses
	// FirstParentForkPoint.
	ForkPoint ForkPointPolicy
}

// Reconcile builds and publishes a commit in the base repository whose tree
// is the base repository's current content with the pull request's touched
// files replaced, removed, or renamed per the rewritten list. It returns the
// new commit's SHA.
//
// The resulting tree is exactly (rewritten files) ∪ (head-branch files not
// touched by the pull request); old paths of renamed documents do not
// survive.
func (r *Reconciler) Reconcile(ctx context.Context, pr *github.PullRequest, original, rewritten []*github.File) (string, error) {
	head, err := r.Git.GetBranchCommit(ctx, pr.HeadRepo.Owner, pr.HeadRepo.Name, pr.HeadBranch)
	if err != nil {
		return "", err
	}

	entries, err := r.Git.GetTree(ctx, pr.HeadRepo.Owner, pr.HeadRepo.Name, head.TreeSHA, true)
	if err != nil {
		return "", err
	}

	rewrittenPaths := pathSet(rewritten)
	originalPaths := pathSet(original)

	// Blobs for every rewritten file that still has content are created in
	// the base repository as one concurrent batch, joined back by index.
	var withContent []*github.File
	for _, f := range rewritten {
		if f.Status != github.StatusRemoved {
			withContent = append(withContent, f)
		}
	}

	blobSHAs := make([]string, len(withContent))
	blobs, bctx := errgroup.WithContext(ctx)
	for i, f := range withContent {
		i, f := i, f
		blobs.Go(func() error {
			sha, err := r.Git.CreateBlob(bctx, pr.BaseRepo.Owner, pr.BaseRepo.Name, f.Contents, "utf-8")
			if err != nil {
				return fmt.Errorf("failed to create blob for %s: %w", f.Filename, err)
			}
			blobSHAs[i] = sha
			return nil
		})
	}
	if err := blobs.Wait(); err != nil {
		return "", err
	}

	staged := make([]*github.TreeEntry, 0, len(withContent)+len(entries))
	for i, f := range withContent {
		staged = append(staged, &github.TreeEntry{
			Path: f.Filename,
			Mode: fileMode,
			Type: "blob",
			SHA:  blobSHAs[i],
		})
	}

	// Walk the head tree concurrently. Each entry resolves independently to
	// at most one staged entry; results land in an indexed slice and are
	// flattened afterwards rather than appended from the goroutines.
	carried := make([]*github.TreeEntry, len(entries))
	walk, wctx := errgroup.WithContext(ctx)
	for i, entry := range entries {
		if entry.Type != "blob" {
			continue // directory entries are implicit
		}
		if rewrittenPaths[entry.Path] || originalPaths[entry.Path] {
			continue // already staged, or intentionally removed or renamed away
		}
		i, entry := i, entry
		walk.Go(func() error {
			resolved, err := r.resolveEntry(wctx, pr, entry, originalPaths)
			if err != nil {
				return err
			}
			carried[i] = resolved
			return nil
		})
	}
	if err := walk.Wait(); err != nil {
		return "", err
	}
	for _, entry := range carried {
		if entry != nil {
			staged = append(staged, entry)
		}
	}

	parent, err := r.chooseParent(ctx, pr, head)
	if err != nil {
		return "", err
	}

	treeSHA, err := r.Git.CreateTree(ctx, pr.BaseRepo.Owner, pr.BaseRepo.Name, staged)
	if err != nil {
		return "", err
	}

	return r.Git.CreateCommit(ctx, pr.BaseRepo.Owner, pr.BaseRepo.Name, commitMessage, treeSHA, []string{parent})
}

// resolveEntry stages one untouched head-tree entry. Entries whose object
// already lives in the base repository, and untouched paths generally, are
// reused by hash. A diff path whose object lives only in a forked head
// repository gets its blob copied into the base repository first.
func (r *Reconciler) resolveEntry(ctx context.Context, pr *github.PullRequest, entry *github.TreeEntry, originalPaths map[string]bool) (*github.TreeEntry, error) {
	locator := r.Locator
	if locator == nil {
		locator = URLLocator{}
	}

	if loc, ok := locator.Locate(entry); ok && loc == pr.BaseRepo {
		return reusedEntry(entry), nil
	}
	if !originalPaths[entry.Path] {
		// Unrelated pre-existing file; its object is reachable from the
		// base repository's object store.
		return reusedEntry(entry), nil
	}

	content, encoding, err := r.Git.GetBlob(ctx, pr.HeadRepo.Owner, pr.HeadRepo.Name, entry.SHA)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob for %s: %w", entry.Path, err)
	}
	sha, err := r.Git.CreateBlob(ctx, pr.BaseRepo.Owner, pr.BaseRepo.Name, content, encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to copy blob for %s: %w", entry.Path, err)
	}

	return &github.TreeEntry{Path: entry.Path, Mode: entry.Mode, Type: "blob", SHA: sha}, nil
}

// chooseParent determines the synthesized commit's sole parent. A merge-
// commit head delegates to the fork-point policy. Otherwise the pull
// request is retargeted at the default branch and updated from it so
// upstream changes fold in, and the branch's own refreshed commit becomes
// the parent.
func (r *Reconciler) chooseParent(ctx context.Context, pr *github.PullRequest, head *github.Commit) (string, error) {
	policy := r.ForkPoint
	if policy == nil {
		policy = FirstParentForkPoint
	}
	if parent, ok := policy(head.Parents); ok {
		return parent, nil
	}

	if err := r.Git.UpdatePullRequestBase(ctx, pr.BaseRepo.Owner, pr.BaseRepo.Name, pr.Number, pr.DefaultBranch); err != nil {
		return "", err
	}
	if err := r.Git.UpdatePullRequestBranch(ctx, pr.BaseRepo.Owner, pr.BaseRepo.Name, pr.Number); err != nil {
		return "", err
	}

	current, err := r.Git.GetBranchCommit(ctx, pr.HeadRepo.Owner, pr.HeadRepo.Name, pr.HeadBranch)
	if err != nil {
		return "", err
	}
	return current.SHA, nil
}

// reusedEntry restages an existing entry by hash, without the URL so the
// platform treats it as a plain reference.
func reusedEntry(entry *github.TreeEntry) *github.TreeEntry {
	return &github.TreeEntry{Path: entry.Path, Mode: entry.Mode, Type: entry.Type, SHA: entry.SHA}
}

func pathSet(files []*github.File) map[string]bool {
	set := make(map[string]bool, len(files))
	for _, f := range files {
		set[f.Filename] = true
	}
	return set
}

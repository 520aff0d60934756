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

package github

import (
	"context"
	"time"
)

// Client interface defines the contract for interacting with GitHub API
type Client interface {
	// GetPullRequest retrieves metadata about a pull request
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error)
	// GetPRFiles retrieves the list of files changed in a pull request
	GetPRFiles(ctx context.Context, owner, repo string, number int) ([]*File, error)
	// GetFileContents retrieves the decoded contents of a file at a ref
	GetFileContents(ctx context.Context, owner, repo, path, ref string) (string, error)
	// ListDirectory lists the file names directly under a repository path
	ListDirectory(ctx context.Context, owner, repo, path string) ([]string, error)

	// GetBranchCommit resolves a branch to its current commit
	GetBranchCommit(ctx context.Context, owner, repo, branch string) (*Commit, error)
	// GetTree retrieves a tree object, optionally recursively
	GetTree(ctx context.Context, owner, repo, treeSHA string, recursive bool) ([]*TreeEntry, error)
	// CreateBlob creates a blob object and returns its SHA
	CreateBlob(ctx context.Context, owner, repo, content, encoding string) (string, error)
	// GetBlob retrieves a blob object's raw content and encoding
	GetBlob(ctx context.Context, owner, repo, sha string) (content, encoding string, err error)
	// CreateTree creates a tree object from a flat entry list and returns its SHA
	CreateTree(ctx context.Context, owner, repo string, entries []*TreeEntry) (string, error)
	// CreateCommit creates a commit object and returns its SHA
	CreateCommit(ctx context.Context, owner, repo, message, treeSHA string, parents []string) (string, error)

	// CreateBranch creates a branch ref pointing at a commit
	CreateBranch(ctx context.Context, owner, repo, branch, sha string) error
	// DeleteBranch deletes a branch ref
	DeleteBranch(ctx context.Context, owner, repo, branch string) error

	// UpdatePullRequestBase repoints a pull request's base branch
	UpdatePullRequestBase(ctx context.Context, owner, repo string, number int, base string) error
	// UpdatePullRequestBranch folds the base branch into the pull request's head
	UpdatePullRequestBranch(ctx context.Context, owner, repo string, number int) error
	// CreateReview submits a pull request review
	CreateReview(ctx context.Context, owner, repo string, number int, event, body string) error
	// EnableAutoMerge enables automatic squash-merge for a pull request
	EnableAutoMerge(ctx context.Context, pullRequestID, commitHeadline, commitBody string) error
}

// RepositoryRef identifies a repository by owner and name
type RepositoryRef struct {
	Owner string
	Name  string
}

// String returns the owner/name form of the reference
func (r RepositoryRef) String() string {
	return r.Owner + "/" + r.Name
}

// PullRequest represents GitHub pull request metadata
type PullRequest struct {
	Number        int
	NodeID        string // GraphQL node identifier
	Title         string
	Author        string
	State         string // open, closed, merged
	HeadRepo      RepositoryRef
	HeadBranch    string
	HeadSHA       string
	BaseRepo      RepositoryRef
	BaseBranch    string
	DefaultBranch string // default branch of the base repository
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// File status values as reported by the pull request diff
const (
	StatusAdded    = "added"
	StatusModified = "modified"
	StatusRemoved  = "removed"
	StatusRenamed  = "renamed"
)

// File represents a file changed in a pull request
type File struct {
	Filename         string
	PreviousFilename string // set for renamed files
	Status           string // added, modified, removed, renamed
	Contents         string // decoded head-ref contents; empty for removed files
}

// TreeEntry represents one addressable object in a repository tree
type TreeEntry struct {
	Path string
	Mode string
	Type string // blob or tree
	SHA  string
	URL  string // self-referential API URL of the object
}

// Commit represents a commit object with its tree and parent SHAs
type Commit struct {
	SHA     string
	TreeSHA string
	Parents []string
}

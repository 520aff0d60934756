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
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v66/github"
)

// githubClient implements the Client interface using go-github
type githubClient struct {
	client     *github.Client
	httpClient *http.Client
	graphqlURL string
}

// NewClient creates a new GitHub client with the provided token
func NewClient(token string) (Client, error) {
	var httpClient *http.Client
	if token != "" {
		httpClient = github.NewClient(nil).Client()
		httpClient.Transport = &github.BasicAuthTransport{
			Username: "token",
			Password: token,
		}
	}

	return &githubClient{
		client:     github.NewClient(httpClient),
		httpClient: httpClient,
		graphqlURL: defaultGraphQLURL,
	}, nil
}

// GetPullRequest retrieves metadata about a pull request
func (c *githubClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error) {
	pr, _, err := c.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get pull request: %w", err)
	}

	return c.convertPullRequest(pr), nil
}

// GetPRFiles retrieves the list of files changed in a pull request
func (c *githubClient) GetPRFiles(ctx context.Context, owner, repo string, number int) ([]*File, error) {
	allFiles := []*File{} // Initialize as empty slice, not nil
	opts := &github.ListOptions{
		PerPage: 100,
	}

	for {
		files, resp, err := c.client.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list PR files: %w", err)
		}

		for _, file := range files {
			allFiles = append(allFiles, c.convertFile(file))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allFiles, nil
}

// GetFileContents retrieves the decoded contents of a file at a ref
func (c *githubClient) GetFileContents(ctx context.Context, owner, repo, path, ref string) (string, error) {
	fileContent, _, _, err := c.client.Repositories.GetContents(ctx, owner, repo, path, &github.RepositoryContentGetOptions{
		Ref: ref,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get contents of %s at %s: %w", path, ref, err)
	}
	if fileContent == nil {
		return "", fmt.Errorf("path %s at %s is not a file", path, ref)
	}

	contents, err := fileContent.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode contents of %s: %w", path, err)
	}

	return contents, nil
}

// ListDirectory lists the file names directly under a repository path
func (c *githubClient) ListDirectory(ctx context.Context, owner, repo, path string) ([]string, error) {
	_, dirContent, _, err := c.client.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory %s: %w", path, err)
	}

	names := []string{}
	for _, entry := range dirContent {
		names = append(names, entry.GetName())
	}

	return names, nil
}

// GetBranchCommit resolves a branch to its current commit
func (c *githubClient) GetBranchCommit(ctx context.Context, owner, repo, branch string) (*Commit, error) {
	b, _, err := c.client.Repositories.GetBranch(ctx, owner, repo, branch, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to get branch %s: %w", branch, err)
	}

	commit := &Commit{
		SHA: b.GetCommit().GetSHA(),
	}
	if gc := b.GetCommit().GetCommit(); gc != nil {
		commit.TreeSHA = gc.GetTree().GetSHA()
	}
	for _, parent := range b.GetCommit().Parents {
		commit.Parents = append(commit.Parents, parent.GetSHA())
	}

	return commit, nil
}

// GetTree retrieves a tree object, optionally recursively
func (c *githubClient) GetTree(ctx context.Context, owner, repo, treeSHA string, recursive bool) ([]*TreeEntry, error) {
	tree, _, err := c.client.Git.GetTree(ctx, owner, repo, treeSHA, recursive)
	if err != nil {
		return nil, fmt.Errorf("failed to get tree %s: %w", treeSHA, err)
	}

	entries := make([]*TreeEntry, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		entries = append(entries, &TreeEntry{
			Path: entry.GetPath(),
			Mode: entry.GetMode(),
			Type: entry.GetType(),
			SHA:  entry.GetSHA(),
			URL:  entry.GetURL(),
		})
	}

	return entries, nil
}

// CreateBlob creates a blob object and returns its SHA
func (c *githubClient) CreateBlob(ctx context.Context, owner, repo, content, encoding string) (string, error) {
	blob, _, err := c.client.Git.CreateBlob(ctx, owner, repo, &github.Blob{
		Content:  github.String(content),
		Encoding: github.String(encoding),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create blob: %w", err)
	}

	return blob.GetSHA(), nil
}

// GetBlob retrieves a blob object's raw content and encoding. The content is
// returned exactly as stored (base64 for binary blobs) so it can be re-created
// in another repository without a decode round trip.
func (c *githubClient) GetBlob(ctx context.Context, owner, repo, sha string) (string, string, error) {
	blob, _, err := c.client.Git.GetBlob(ctx, owner, repo, sha)
	if err != nil {
		return "", "", fmt.Errorf("failed to get blob %s: %w", sha, err)
	}

	return blob.GetContent(), blob.GetEncoding(), nil
}

// CreateTree creates a tree object from a flat entry list and returns its SHA.
// No base tree is inherited; the entry list is the complete tree.
func (c *githubClient) CreateTree(ctx context.Context, owner, repo string, entries []*TreeEntry) (string, error) {
	treeEntries := make([]*github.TreeEntry, 0, len(entries))
	for _, entry := range entries {
		treeEntries = append(treeEntries, &github.TreeEntry{
			Path: github.String(entry.Path),
			Mode: github.String(entry.Mode),
			Type: github.String(entry.Type),
			SHA:  github.String(entry.SHA),
		})
	}

	tree, _, err := c.client.Git.CreateTree(ctx, owner, repo, "", treeEntries)
	if err != nil {
		return "", fmt.Errorf("failed to create tree: %w", err)
	}

	return tree.GetSHA(), nil
}

// CreateCommit creates a commit object and returns its SHA
func (c *githubClient) CreateCommit(ctx context.Context, owner, repo, message, treeSHA string, parents []string) (string, error) {
	parentCommits := make([]*github.Commit, 0, len(parents))
	for _, parent := range parents {
		parentCommits = append(parentCommits, &github.Commit{SHA: github.String(parent)})
	}

	commit, _, err := c.client.Git.CreateCommit(ctx, owner, repo, &github.Commit{
		Message: github.String(message),
		Tree:    &github.Tree{SHA: github.String(treeSHA)},
		Parents: parentCommits,
	}, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create commit: %w", err)
	}

	return commit.GetSHA(), nil
}

// CreateBranch creates a branch ref pointing at a commit
func (c *githubClient) CreateBranch(ctx context.Context, owner, repo, branch, sha string) error {
	_, _, err := c.client.Git.CreateRef(ctx, owner, repo, &github.Reference{
		Ref:    github.String("refs/heads/" + branch),
		Object: &github.GitObject{SHA: github.String(sha)},
	})
	if err != nil {
		return fmt.Errorf("failed to create branch %s: %w", branch, err)
	}

	return nil
}

// DeleteBranch deletes a branch ref
func (c *githubClient) DeleteBranch(ctx context.Context, owner, repo, branch string) error {
	_, err := c.client.Git.DeleteRef(ctx, owner, repo, "refs/heads/"+branch)
	if err != nil {
		return fmt.Errorf("failed to delete branch %s: %w", branch, err)
	}

	return nil
}

// UpdatePullRequestBase repoints a pull request's base branch
func (c *githubClient) UpdatePullRequestBase(ctx context.Context, owner, repo string, number int, base string) error {
	_, _, err := c.client.PullRequests.Edit(ctx, owner, repo, number, &github.PullRequest{
		Base: &github.PullRequestBranch{Ref: github.String(base)},
	})
	if err != nil {
		return fmt.Errorf("failed to update base of pull request #%d: %w", number, err)
	}

	return nil
}

// UpdatePullRequestBranch folds the base branch into the pull request's head.
// GitHub schedules the update asynchronously and answers 202; go-github
// surfaces that as an AcceptedError, which is success here.
func (c *githubClient) UpdatePullRequestBranch(ctx context.Context, owner, repo string, number int) error {
	_, _, err := c.client.PullRequests.UpdateBranch(ctx, owner, repo, number, nil)
	if err != nil {
		var accepted *github.AcceptedError
		if errors.As(err, &accepted) {
			return nil
		}
		return fmt.Errorf("failed to update branch of pull request #%d: %w", number, err)
	}

	return nil
}

// CreateReview submits a pull request review
func (c *githubClient) CreateReview(ctx context.Context, owner, repo string, number int, event, body string) error {
	_, _, err := c.client.PullRequests.CreateReview(ctx, owner, repo, number, &github.PullRequestReviewRequest{
		Event: github.String(event),
		Body:  github.String(body),
	})
	if err != nil {
		return fmt.Errorf("failed to create review on pull request #%d: %w", number, err)
	}

	return nil
}

// IsNotFound reports whether an error represents a missing object or ref.
// GitHub answers 404 for most lookups but 422 "Reference does not exist"
// when deleting a ref that is already gone.
func IsNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	if !errors.As(err, &ghErr) {
		return false
	}
	if ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
		return true
	}
	if ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusUnprocessableEntity &&
		strings.Contains(ghErr.Message, "Reference does not exist") {
		return true
	}
	return false
}

// convertPullRequest converts a GitHub PR to our domain model
func (c *githubClient) convertPullRequest(pr *github.PullRequest) *PullRequest {
	if pr == nil {
		return nil
	}

	result := &PullRequest{
		Number:    pr.GetNumber(),
		NodeID:    pr.GetNodeID(),
		Title:     pr.GetTitle(),
		State:     pr.GetState(),
		CreatedAt: pr.GetCreatedAt().Time,
		UpdatedAt: pr.GetUpdatedAt().Time,
	}

	if pr.Head != nil {
		result.HeadSHA = pr.Head.GetSHA()
		result.HeadBranch = pr.Head.GetRef()
		if repo := pr.Head.GetRepo(); repo != nil {
			result.HeadRepo = RepositoryRef{
				Owner: repo.GetOwner().GetLogin(),
				Name:  repo.GetName(),
			}
		}
	}

	if pr.Base != nil {
		result.BaseBranch = pr.Base.GetRef()
		if repo := pr.Base.GetRepo(); repo != nil {
			result.BaseRepo = RepositoryRef{
				Owner: repo.GetOwner().GetLogin(),
				Name:  repo.GetName(),
			}
			result.DefaultBranch = repo.GetDefaultBranch()
		}
	}

	if pr.User != nil {
		result.Author = pr.User.GetLogin()
	}

	return result
}

// convertFile converts a GitHub CommitFile to our domain model
func (c *githubClient) convertFile(file *github.CommitFile) *File {
	if file == nil {
		return nil
	}

	return &File{
		Filename:         file.GetFilename(),
		PreviousFilename: file.GetPreviousFilename(),
		Status:           file.GetStatus(),
	}
}

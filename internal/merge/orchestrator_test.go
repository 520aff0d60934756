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
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mikelane/proposald/internal/github"
)

// fakeClient is a mutex-guarded in-memory github.Client; the pipeline calls
// it from multiple goroutines during tree reconciliation.
type fakeClient struct {
	mu sync.Mutex

	pr       *github.PullRequest
	prFiles  []*github.File
	contents map[string]string
	listing  []string

	headCommit *github.Commit
	headTree   []*github.TreeEntry

	blobSeq     int
	treeEntries []*github.TreeEntry
	commits     int

	branchOps []string
	baseOps   []string

	autoMerge []string
	reviews   []string
}

func (f *fakeClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	return f.pr, nil
}

func (f *fakeClient) GetPRFiles(ctx context.Context, owner, repo string, number int) ([]*github.File, error) {
	return f.prFiles, nil
}

func (f *fakeClient) GetFileContents(ctx context.Context, owner, repo, path, ref string) (string, error) {
	contents, ok := f.contents[path]
	if !ok {
		return "", fmt.Errorf("no contents for %s", path)
	}
	return contents, nil
}

func (f *fakeClient) ListDirectory(ctx context.Context, owner, repo, path string) ([]string, error) {
	return f.listing, nil
}

func (f *fakeClient) GetBranchCommit(ctx context.Context, owner, repo, branch string) (*github.Commit, error) {
	return f.headCommit, nil
}

func (f *fakeClient) GetTree(ctx context.Context, owner, repo, treeSHA string, recursive bool) ([]*github.TreeEntry, error) {
	return f.headTree, nil
}

func (f *fakeClient) CreateBlob(ctx context.Context, owner, repo, content, encoding string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobSeq++
	return fmt.Sprintf("blob-%d", f.blobSeq), nil
}

func (f *fakeClient) GetBlob(ctx context.Context, owner, repo, sha string) (string, string, error) {
	return "", "", fmt.Errorf("unexpected GetBlob for %s", sha)
}

func (f *fakeClient) CreateTree(ctx context.Context, owner, repo string, entries []*github.TreeEntry) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.treeEntries = entries
	return "tree-1", nil
}

func (f *fakeClient) CreateCommit(ctx context.Context, owner, repo, message, treeSHA string, parents []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commits++
	return "commit-1", nil
}

func (f *fakeClient) CreateBranch(ctx context.Context, owner, repo, branch, sha string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.branchOps = append(f.branchOps, "create "+branch)
	return nil
}

func (f *fakeClient) DeleteBranch(ctx context.Context, owner, repo, branch string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.branchOps = append(f.branchOps, "delete "+branch)
	return nil
}

func (f *fakeClient) UpdatePullRequestBase(ctx context.Context, owner, repo string, number int, base string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.baseOps = append(f.baseOps, base)
	return nil
}

func (f *fakeClient) UpdatePullRequestBranch(ctx context.Context, owner, repo string, number int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.branchOps = append(f.branchOps, "update-branch")
	return nil
}

func (f *fakeClient) CreateReview(ctx context.Context, owner, repo string, number int, event, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reviews = append(f.reviews, event+": "+body)
	return nil
}

func (f *fakeClient) EnableAutoMerge(ctx context.Context, pullRequestID, commitHeadline, commitBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.autoMerge = append(f.autoMerge, pullRequestID+": "+commitHeadline)
	return nil
}

func entryURL(owner, repo, sha string) string {
	return fmt.Sprintf("https://api.github.com/repos/%s/%s/git/blobs/%s", owner, repo, sha)
}

var _ = Describe("Orchestrator", func() {
	var (
		ctx    context.Context
		client *fakeClient
	)

	BeforeEach(func() {
		ctx = context.Background()
		client = &fakeClient{
			pr: &github.PullRequest{
				Number:        5,
				NodeID:        "PR_node5",
				Title:         "Add proposal",
				State:         "open",
				HeadRepo:      github.RepositoryRef{Owner: "alice", Name: "EIPs"},
				HeadBranch:    "renumber",
				HeadSHA:       "headsha",
				BaseRepo:      github.RepositoryRef{Owner: "ethereum", Name: "EIPs"},
				BaseBranch:    "master",
				DefaultBranch: "master",
			},
			// A merge-commit head keeps the reconciler off the pull request's
			// base during parent selection.
			headCommit: &github.Commit{SHA: "headsha", TreeSHA: "treesha", Parents: []string{"fork-point", "upstream"}},
		}
	})

	Describe("Scenario: merge pass over a renumbering pull request", func() {
		BeforeEach(func() {
			client.prFiles = []*github.File{
				{Filename: "EIPS/eip-9.md", Status: github.StatusAdded},
			}
			client.contents = map[string]string{
				"EIPS/eip-9.md": "---\neip: 9\ntitle: New Proposal\nstatus: Draft\n---\n\nBody.\n",
			}
			client.listing = []string{"eip-41.md"}
			client.headTree = []*github.TreeEntry{
				{Path: "EIPS/eip-9.md", Mode: "100644", Type: "blob", SHA: "old1", URL: entryURL("alice", "EIPs", "old1")},
				{Path: "README.md", Mode: "100644", Type: "blob", SHA: "keep1", URL: entryURL("ethereum", "EIPs", "keep1")},
			}
		})

		It("renumbers the document, publishes the commit, and enables auto-merge", func() {
			By("running the merge pass")
			Expect(NewOrchestrator(client).Merge(ctx, "ethereum", "EIPs", 5)).To(Succeed())

			By("checking the synthesized tree")
			paths := make([]string, 0, len(client.treeEntries))
			for _, entry := range client.treeEntries {
				paths = append(paths, entry.Path)
			}
			Expect(paths).To(ContainElement(MatchRegexp(`^EIPS/eip-4[234]\.md$`)))
			Expect(paths).To(ContainElement("README.md"))
			Expect(paths).NotTo(ContainElement("EIPS/eip-9.md"))
			Expect(client.commits).To(Equal(1))

			By("checking the temporary-branch choreography")
			Expect(client.branchOps).To(Equal([]string{
				"delete proposald/pr-5",
				"create proposald/pr-5",
				"update-branch",
				"delete proposald/pr-5",
			}))
			Expect(client.baseOps).To(Equal([]string{"proposald/pr-5", "master"}))

			By("checking auto-merge and the approving review")
			Expect(client.autoMerge).To(Equal([]string{"PR_node5: Add proposal"}))
			Expect(client.reviews).To(HaveLen(1))
			Expect(client.reviews[0]).To(HavePrefix("APPROVE: "))
		})
	})

	Describe("Scenario: merge pass with nothing to rewrite", func() {
		BeforeEach(func() {
			client.prFiles = []*github.File{
				{Filename: "EIPS/eip-7.md", Status: github.StatusModified},
			}
			client.contents = map[string]string{
				"EIPS/eip-7.md": "---\neip: 7\ntitle: Delegatecall\nstatus: Final\ncreated: 2015-11-15\n---\n\nBody.\n",
			}
		})

		It("skips publication but still enables auto-merge and approves", func() {
			Expect(NewOrchestrator(client).Merge(ctx, "ethereum", "EIPs", 5)).To(Succeed())

			Expect(client.commits).To(BeZero())
			Expect(client.branchOps).To(BeEmpty())
			Expect(client.baseOps).To(BeEmpty())
			Expect(client.autoMerge).To(HaveLen(1))
			Expect(client.reviews).To(HaveLen(1))
		})
	})

	Describe("Scenario: normalization pass over a fresh draft", func() {
		BeforeEach(func() {
			client.prFiles = []*github.File{
				{Filename: "EIPS/eip-new.md", Status: github.StatusAdded},
			}
			client.contents = map[string]string{
				"EIPS/eip-new.md": "---\ntitle: Project Logo\nstatus: Draft\n---\n\nBody.\n",
			}
			client.headTree = []*github.TreeEntry{
				{Path: "EIPS/eip-new.md", Mode: "100644", Type: "blob", SHA: "old1", URL: entryURL("alice", "EIPs", "old1")},
			}
		})

		It("publishes the mnemonic rename without touching merge state", func() {
			Expect(NewOrchestrator(client).Normalize(ctx, "ethereum", "EIPs", 5)).To(Succeed())

			paths := make([]string, 0, len(client.treeEntries))
			for _, entry := range client.treeEntries {
				paths = append(paths, entry.Path)
			}
			Expect(paths).To(ConsistOf("EIPS/eip-draft_project_logo.md"))
			Expect(client.commits).To(Equal(1))
			Expect(client.branchOps).NotTo(BeEmpty())

			Expect(client.autoMerge).To(BeEmpty())
			Expect(client.reviews).To(BeEmpty())
		})
	})

	Describe("Scenario: removed files", func() {
		BeforeEach(func() {
			client.prFiles = []*github.File{
				{Filename: "EIPS/eip-7.md", Status: github.StatusRemoved},
			}
		})

		It("never fetches contents for them", func() {
			// contents map is empty; a fetch would error out
			Expect(NewOrchestrator(client).Normalize(ctx, "ethereum", "EIPs", 5)).To(Succeed())
			Expect(client.commits).To(BeZero())
		})
	})
})

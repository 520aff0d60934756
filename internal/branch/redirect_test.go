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
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	gogithub "github.com/google/go-github/v66/github"

	"github.com/mikelane/proposald/internal/github"
)

// fakeRefs records every ref operation in order
type fakeRefs struct {
	calls []string

	deleteErrs []error // popped per DeleteBranch call
	createErr  error
	baseErrs   map[string]error // keyed by target base
	updateErr  error
}

func (f *fakeRefs) CreateBranch(ctx context.Context, owner, repo, branch, sha string) error {
	f.calls = append(f.calls, fmt.Sprintf("create %s@%s", branch, sha))
	return f.createErr
}

func (f *fakeRefs) DeleteBranch(ctx context.Context, owner, repo, branch string) error {
	f.calls = append(f.calls, "delete "+branch)
	if len(f.deleteErrs) > 0 {
		err := f.deleteErrs[0]
		f.deleteErrs = f.deleteErrs[1:]
		return err
	}
	return nil
}

func (f *fakeRefs) UpdatePullRequestBase(ctx context.Context, owner, repo string, number int, base string) error {
	f.calls = append(f.calls, "base "+base)
	return f.baseErrs[base]
}

func (f *fakeRefs) UpdatePullRequestBranch(ctx context.Context, owner, repo string, number int) error {
	f.calls = append(f.calls, "update-branch")
	return f.updateErr
}

func notFoundErr() error {
	return &gogithub.ErrorResponse{
		Response: &http.Response{
			StatusCode: http.StatusNotFound,
			Request:    &http.Request{Method: http.MethodDelete},
		},
		Message: "Not Found",
	}
}

func redirectPR() *github.PullRequest {
	return &github.PullRequest{
		Number:        7,
		BaseRepo:      github.RepositoryRef{Owner: "ethereum", Name: "EIPs"},
		BaseBranch:    "master",
		DefaultBranch: "master",
	}
}

// TestPublishSequence tests the ordered happy path: stale delete, create,
// redirect, fold in, restore, delete
func TestPublishSequence(t *testing.T) {
	refs := &fakeRefs{deleteErrs: []error{notFoundErr()}}
	rd := &Redirector{Refs: refs}

	if err := rd.Publish(context.Background(), redirectPR(), "commitsha"); err != nil {
		t.Fatalf("Publish() unexpected error: %v", err)
	}

	want := []string{
		"delete proposald/pr-7",
		"create proposald/pr-7@commitsha",
		"base proposald/pr-7",
		"update-branch",
		"base master",
		"delete proposald/pr-7",
	}
	if len(refs.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", refs.calls, want)
	}
	for i, call := range want {
		if refs.calls[i] != call {
			t.Errorf("calls[%d] = %q, want %q", i, refs.calls[i], call)
		}
	}
}

// TestPublishFoldInFailureStillCleansUp tests that a failed fold-in restores
// the base, deletes the temporary branch, and surfaces the original error
func TestPublishFoldInFailureStillCleansUp(t *testing.T) {
	refs := &fakeRefs{updateErr: errors.New("update rejected")}
	rd := &Redirector{Refs: refs}

	err := rd.Publish(context.Background(), redirectPR(), "commitsha")
	if err == nil {
		t.Fatal("Publish() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "update rejected") {
		t.Errorf("Publish() error = %v, want the fold-in failure", err)
	}

	tail := refs.calls[len(refs.calls)-2:]
	if tail[0] != "base master" || tail[1] != "delete proposald/pr-7" {
		t.Errorf("cleanup calls = %v, want [base master, delete proposald/pr-7]", tail)
	}
}

// TestPublishStaleDeleteFailure tests that an unexpected stale-delete error
// aborts before anything is created
func TestPublishStaleDeleteFailure(t *testing.T) {
	refs := &fakeRefs{deleteErrs: []error{errors.New("forbidden")}}
	rd := &Redirector{Refs: refs}

	if err := rd.Publish(context.Background(), redirectPR(), "commitsha"); err == nil {
		t.Fatal("Publish() expected error, got nil")
	}
	if len(refs.calls) != 1 {
		t.Errorf("calls = %v, want the stale delete only", refs.calls)
	}
}

// TestPublishCreateFailureSkipsCleanup tests that a failed branch creation
// returns without touching the pull request
func TestPublishCreateFailureSkipsCleanup(t *testing.T) {
	refs := &fakeRefs{createErr: errors.New("ref exists")}
	rd := &Redirector{Refs: refs}

	if err := rd.Publish(context.Background(), redirectPR(), "commitsha"); err == nil {
		t.Fatal("Publish() expected error, got nil")
	}
	for _, call := range refs.calls {
		if strings.HasPrefix(call, "base ") || call == "update-branch" {
			t.Errorf("pull request touched after failed create: %v", refs.calls)
		}
	}
}

// TestPublishRestoreFailureSurfaces tests that a restore failure after a
// clean fold-in becomes the returned error
func TestPublishRestoreFailureSurfaces(t *testing.T) {
	refs := &fakeRefs{baseErrs: map[string]error{"master": errors.New("restore failed")}}
	rd := &Redirector{Refs: refs}

	err := rd.Publish(context.Background(), redirectPR(), "commitsha")
	if err == nil {
		t.Fatal("Publish() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "restore failed") {
		t.Errorf("Publish() error = %v, want the restore failure", err)
	}
}

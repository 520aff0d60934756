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

package proposal

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"github.com/mikelane/proposald/internal/github"
)

const (
	// DocumentDir is the canonical repository directory holding proposal files
	DocumentDir = "EIPS"

	draftPrefix    = "draft_"
	mnemonicMaxLen = 30

	// allocationSpread is the width of the random offset added to the highest
	// existing identifier. Concurrent pull requests allocating at the same
	// time land on different numbers often enough to avoid most collisions,
	// and nobody can predict the number a proposal will get.
	allocationSpread = 3
)

var (
	numberedPathRE  = regexp.MustCompile(`^EIPS/eip-(\d+)\.md$`)
	listingNumberRE = regexp.MustCompile(`^eip-(.+)\.md$`)
	nonAlphanumRE   = regexp.MustCompile(`[^a-z0-9]+`)
)

// DirectoryLister lists the file names directly under a repository path
type DirectoryLister interface {
	ListDirectory(ctx context.Context, owner, repo, path string) ([]string, error)
}

// Allocator decides a proposal's identifier: a draft mnemonic for new drafts
// outside the merge pass, the path-encoded number for existing numbered
// documents, or a freshly allocated number above the repository's current
// maximum.
type Allocator struct {
	Lister DirectoryLister
	// Intn overrides the random source for the allocation offset. Nil uses
	// math/rand.
	Intn func(n int) int
}

// Allocate returns the proposal's identifier as a string.
//
// The rules, in priority order:
//  1. Outside the merge pass, a newly added Draft document gets a mnemonic
//     identifier derived from its title. This never consults the remote
//     repository and is idempotent for a fixed title.
//  2. A document that is not newly added and whose path already encodes a
//     number keeps that number. A newly added file never keeps a
//     self-assigned number; it falls through to fresh allocation.
//  3. Otherwise the canonical directory is scanned and the identifier is the
//     current maximum plus a random offset in [1, 3].
func (a *Allocator) Allocate(ctx context.Context, owner, repo string, fm *FrontMatter, filename, status string, mergePass bool) (string, error) {
	if !mergePass && fm.Get("status") == statusDraft && status == github.StatusAdded {
		return DraftIdentifier(fm.Get("title")), nil
	}

	if m := numberedPathRE.FindStringSubmatch(filename); m != nil && status != github.StatusAdded {
		return m[1], nil
	}

	names, err := a.Lister.ListDirectory(ctx, owner, repo, DocumentDir)
	if err != nil {
		return "", fmt.Errorf("failed to scan %s directory: %w", DocumentDir, err)
	}

	max := 0
	for _, name := range names {
		m := listingNumberRE.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			n = 0 // malformed suffixes count as zero
		}
		if n > max {
			max = n
		}
	}

	intn := a.Intn
	if intn == nil {
		intn = rand.Intn
	}

	return strconv.Itoa(max + 1 + intn(allocationSpread)), nil
}

// DraftIdentifier derives the mnemonic identifier for a draft from its title:
// lower-cased, runs of non-alphanumerics collapsed to underscores, trimmed,
// truncated to 30 characters, prefixed with "draft_".
func DraftIdentifier(title string) string {
	s := nonAlphanumRE.ReplaceAllString(strings.ToLower(title), "_")
	s = strings.Trim(s, "_")
	if len(s) > mnemonicMaxLen {
		s = s[:mnemonicMaxLen]
	}
	return draftPrefix + s
}

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

package rewrite

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mikelane/proposald/internal/github"
	"github.com/mikelane/proposald/internal/proposal"
)

var (
	docIDRE     = regexp.MustCompile(`^EIPS/eip-([0-9A-Za-z_]+)\.md$`)
	assetPathRE = regexp.MustCompile(`^assets/eip-([0-9A-Za-z_]+)/`)
)

// Rewriter walks a pull request's file list, allocating identifiers,
// normalizing front matter, and cascading asset-path renames through the
// provenance map built during the pass.
type Rewriter struct {
	Allocator *proposal.Allocator
	// Now overrides the clock for deadline computation. Nil uses time.Now.
	Now func() time.Time
}

// Rewrite returns the rewritten file list and whether anything changed.
// base identifies the canonical repository whose document directory backs
// fresh identifier allocation.
func (r *Rewriter) Rewrite(ctx context.Context, base github.RepositoryRef, files []*github.File, mergePass bool) ([]*github.File, bool, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	out := make([]*github.File, 0, len(files))
	// provenance maps an old document identifier to the new canonical
	// filename, so asset paths referencing the old identifier follow it.
	provenance := make(map[string]string)
	changed := false

	for _, f := range files {
		switch {
		case isDocument(f.Filename) && f.Status != github.StatusRemoved:
			doc, err := proposal.ParseDocument(f.Contents)
			if err != nil {
				return nil, false, fmt.Errorf("failed to parse %s: %w", f.Filename, err)
			}

			id, err := r.Allocator.Allocate(ctx, base.Owner, base.Name, doc.FrontMatter, f.Filename, f.Status, mergePass)
			if err != nil {
				return nil, false, err
			}
			newName := DocumentFilename(id)

			proposal.Normalize(doc.FrontMatter, id, now())
			contents := doc.Render()

			if newName != f.Filename {
				changed = true
				if oldID := documentIdentifier(f.Filename); oldID != "" && oldID != id {
					provenance[oldID] = newName
					// An asset referencing the old identifier may already
					// have passed through; pull it along retroactively.
					retargetAssets(out, oldID, id)
				}
			}
			if contents != f.Contents {
				changed = true
			}

			out = append(out, &github.File{
				Filename:         newName,
				PreviousFilename: f.PreviousFilename,
				Status:           f.Status,
				Contents:         contents,
			})

		case assetIdentifier(f.Filename) != "":
			path := f.Filename
			if oldID := assetIdentifier(path); oldID != "" {
				if newName, ok := provenance[oldID]; ok {
					path = strings.Replace(path, "eip-"+oldID, "eip-"+documentIdentifier(newName), 1)
				}
			}
			if path != f.Filename {
				changed = true
			}
			out = append(out, &github.File{
				Filename:         path,
				PreviousFilename: f.PreviousFilename,
				Status:           f.Status,
				Contents:         f.Contents,
			})

		default:
			copied := *f
			out = append(out, &copied)
		}
	}

	return out, changed, nil
}

// DocumentFilename returns the canonical path for a proposal identifier
func DocumentFilename(id string) string {
	return fmt.Sprintf("%s/eip-%s.md", proposal.DocumentDir, id)
}

func isDocument(path string) bool {
	return strings.HasPrefix(path, proposal.DocumentDir+"/") && strings.HasSuffix(path, ".md")
}

// documentIdentifier extracts the identifier token from a canonical document
// path, or "" when the path does not encode one.
func documentIdentifier(path string) string {
	if m := docIDRE.FindStringSubmatch(path); m != nil {
		return m[1]
	}
	return ""
}

// assetIdentifier extracts the identifier token an asset path references,
// or "" for non-asset paths. The match is textual; assets are tied to their
// document only through this path convention.
func assetIdentifier(path string) string {
	if m := assetPathRE.FindStringSubmatch(path); m != nil {
		return m[1]
	}
	return ""
}

func retargetAssets(files []*github.File, oldID, newID string) {
	for _, f := range files {
		if assetIdentifier(f.Filename) == oldID {
			f.Filename = strings.Replace(f.Filename, "eip-"+oldID, "eip-"+newID, 1)
		}
	}
}

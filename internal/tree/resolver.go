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
	"regexp"

	"github.com/mikelane/proposald/internal/github"
)

// ObjectLocator resolves the repository a tree entry's object physically
// resides in. Provenance matters when a pull request comes from a fork:
// blobs living only in the fork must be copied before the base repository
// can reference them.
type ObjectLocator interface {
	Locate(entry *github.TreeEntry) (github.RepositoryRef, bool)
}

// URLLocator reads provenance out of the entry's self-referential API URL,
// e.g. https://api.github.com/repos/OWNER/REPO/git/blobs/SHA.
type URLLocator struct{}

var objectURLRE = regexp.MustCompile(`/repos/([^/]+)/([^/]+)/git/`)

// Locate returns the repository encoded in the entry's object URL
func (URLLocator) Locate(entry *github.TreeEntry) (github.RepositoryRef, bool) {
	m := objectURLRE.FindStringSubmatch(entry.URL)
	if m == nil {
		return github.RepositoryRef{}, false
	}
	return github.RepositoryRef{Owner: m[1], Name: m[2]}, true
}

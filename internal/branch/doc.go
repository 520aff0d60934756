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

// Package branch implements the temporary-branch redirection protocol that
// publishes a synthesized commit as a pull request's visible content.
//
// The hosting platform does not let this system rewrite a pull request's
// remote branch ref directly. Instead: create a temporary branch at the new
// commit in the base repository, point the pull request's base at it, and
// ask the platform to fold that branch into the pull request. Cleanup —
// restoring the base to the default branch and deleting the temporary
// branch — runs unconditionally, so no outcome of the fold-in step leaves
// the pull request misconfigured.
//
// The temporary branch name is keyed only on the pull request number.
// Concurrent invocations against the same pull request are not serialized
// here and would race on that name; that limitation is inherited from the
// workflow this protocol supports.
package branch

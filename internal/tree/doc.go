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

// Package tree synthesizes a pull request's replacement file tree in the
// canonical repository.
//
// Given the pull request's original and rewritten file lists, the reconciler
// creates blobs for rewritten content in the base repository, carries every
// head-branch file the pull request did not touch, copies fork-resident
// blobs across repository boundaries when needed, and publishes the result
// as one flat tree plus a commit. Tree entries are resolved concurrently;
// each goroutine produces at most one entry into an indexed slice that is
// flattened after the batch completes.
//
// Provenance is read from each entry's self-referential object URL through
// the ObjectLocator capability, and the merge-commit parent assumption is an
// overridable ForkPointPolicy rather than a hard-coded rule.
package tree

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

// Package proposal handles proposal documents: the front-matter codec, the
// identifier allocator, and the front-matter normalizer.
//
// A proposal document is front-matter-delimited text: a leading "---" line,
// a YAML metadata block, a closing "---" line, a blank line, and the body.
// The FrontMatter type preserves key order and unknown keys so a document
// can round-trip through normalization without losing anything its authors
// wrote.
//
// Identifiers are either numeric (assigned above the repository's current
// maximum, with a small random offset so concurrent pull requests rarely
// collide and numbers cannot be gamed) or draft mnemonics derived from the
// title for not-yet-accepted drafts.
//
// Serialization is deliberately strict: fixed preamble key order, integer
// identifiers, plain calendar dates with any midnight-UTC suffix stripped,
// one line per key with no wrapping. Running Normalize on already-canonical
// front matter reports no change.
package proposal

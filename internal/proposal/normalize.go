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
	"time"

	"gopkg.in/yaml.v3"
)

const (
	statusDraft    = "Draft"
	statusLastCall = "Last Call"

	// lastCallWindow is how long a Last Call review period runs when a
	// deadline is not already set.
	lastCallWindow = 14 * 24 * time.Hour

	dateLayout = "2006-01-02"
)

// Normalize rewrites fm into canonical form for the allocated identifier.
// It reports whether any field value changed:
//   - the identifier field is forced to the allocated identifier
//   - an absent status defaults to Draft
//   - a Last Call document without a deadline gets one fourteen calendar
//     days from now, truncated to a date
//   - created and last-call-deadline lose any literal midnight-UTC suffix
//
// The type coercions of the canonical serialized form (integer identifier,
// integer comma-free requires) are applied by Serialize.
func Normalize(fm *FrontMatter, id string, now time.Time) bool {
	changed := false

	if fm.Get("eip") != id {
		changed = true
	}
	fm.Set("eip", identifierNode(id))

	if !fm.Has("status") {
		fm.Set("status", stringNode(statusDraft))
		changed = true
	}

	if fm.Get("status") == statusLastCall && !fm.Has("last-call-deadline") {
		deadline := now.UTC().Add(lastCallWindow).Format(dateLayout)
		fm.Set("last-call-deadline", stringNode(deadline))
		changed = true
	}

	for _, key := range []string{"created", "last-call-deadline"} {
		n := fm.Node(key)
		if n == nil || n.Kind != yaml.ScalarNode {
			continue
		}
		if m := midnightRE.FindStringSubmatch(n.Value); m != nil && m[1] != n.Value {
			fm.Set(key, stringNode(m[1]))
			changed = true
		}
	}

	return changed
}

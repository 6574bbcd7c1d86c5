// Copyright 2025 Alibaba Group Holding Ltd.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package session

// DefaultHistorySize caps the command history when no size is configured.
const DefaultHistorySize = 50

// History keeps the most recent commands, oldest first.
type History struct {
	limit   int
	entries []string
}

// NewHistory returns an empty history holding at most limit entries.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	return &History{limit: limit}
}

// Add records a command, evicting the oldest entries beyond the limit.
func (h *History) Add(entry string) {
	if entry == "" {
		return
	}
	h.entries = append(h.entries, entry)
	if over := len(h.entries) - h.limit; over > 0 {
		h.entries = append(h.entries[:0:0], h.entries[over:]...)
	}
}

// Entries returns a copy of the stored commands.
func (h *History) Entries() []string {
	return append([]string(nil), h.entries...)
}

// Len returns the number of stored commands.
func (h *History) Len() int {
	return len(h.entries)
}

// Limit returns the capacity.
func (h *History) Limit() int {
	return h.limit
}

// Replace swaps the contents, keeping only the newest entries that fit.
func (h *History) Replace(entries []string) {
	h.entries = nil
	for _, e := range entries {
		h.Add(e)
	}
}

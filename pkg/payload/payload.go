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

// Package payload reads and writes the small text formats stored in pseudo-files:
// "key:value" lines for devices, network adapters and groups, and "[KEY:VALUE]"
// brackets for program help text.
package payload

import (
	"strings"
)

// Field is one key/value pair in file order.
type Field struct {
	Key   string
	Value string
}

// Fields is an ordered list of pairs.
type Fields []Field

// Get returns the first value stored under key, compared case-insensitively.
func (f Fields) Get(key string) (string, bool) {
	for _, field := range f {
		if strings.EqualFold(field.Key, key) {
			return field.Value, true
		}
	}
	return "", false
}

// All returns every value stored under key.
func (f Fields) All(key string) []string {
	var values []string
	for _, field := range f {
		if strings.EqualFold(field.Key, key) {
			values = append(values, field.Value)
		}
	}
	return values
}

// ParseLines reads "key:value" lines. It is looser than a strict one-colon
// format on purpose: the key ends at the first ':' and any further colons stay
// in the value, so ipv6 addresses and times round-trip. Lines without a key are
// skipped.
func ParseLines(contents string) Fields {
	var fields Fields
	for _, line := range strings.Split(contents, "\n") {
		line = strings.TrimSpace(line)
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		fields = append(fields, Field{Key: key, Value: strings.TrimSpace(value)})
	}
	return fields
}

// FormatLines is the inverse of ParseLines.
func FormatLines(fields Fields) string {
	var b strings.Builder
	for i, field := range fields {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(field.Key)
		b.WriteByte(':')
		b.WriteString(field.Value)
	}
	return b.String()
}

// ParseBrackets reads "[KEY:VALUE]" groups, ignoring any text between them.
// Values may hold balanced brackets, as in "[USAGE:ls [directory]]".
func ParseBrackets(contents string) Fields {
	var fields Fields
	rest := contents
	for {
		start := strings.IndexByte(rest, '[')
		if start < 0 {
			return fields
		}
		end := closing(rest, start)
		if end < 0 {
			return fields
		}
		body := rest[start+1 : end]
		rest = rest[end+1:]

		key, value, ok := strings.Cut(body, ":")
		if !ok || strings.TrimSpace(key) == "" {
			continue
		}
		fields = append(fields, Field{Key: strings.TrimSpace(key), Value: value})
	}
}

// closing returns the index of the ']' balancing the '[' at open, or -1.
func closing(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// FormatBrackets renders fields as consecutive brackets.
func FormatBrackets(fields Fields) string {
	var b strings.Builder
	for _, field := range fields {
		b.WriteByte('[')
		b.WriteString(field.Key)
		b.WriteByte(':')
		b.WriteString(field.Value)
		b.WriteByte(']')
	}
	return b.String()
}

// ReplaceBracket rewrites the value of the last "[KEY:...]" group, appending a
// new group when key is absent.
func ReplaceBracket(contents, key, value string) string {
	marker := "[" + key + ":"
	idx := strings.LastIndex(strings.ToUpper(contents), strings.ToUpper(marker))
	if idx < 0 {
		return contents + marker + value + "]"
	}
	end := closing(contents, idx)
	if end < 0 {
		return contents[:idx] + marker + value + "]"
	}
	return contents[:idx] + marker + value + contents[end:]
}

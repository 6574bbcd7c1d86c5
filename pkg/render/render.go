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

// Package render formats tabular shell output and terminal colors.
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// Table draws a box-drawn table. Rows shorter than headers are padded.
func Table(headers []string, rows [][]string) string {
	padded := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) < len(headers) {
			row = append(row, make([]string, len(headers)-len(row))...)
		}
		padded = append(padded, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(padded...).
		StyleFunc(func(_, _ int) lipgloss.Style {
			return cellStyle
		})
	return t.String()
}

// Colorize paints text with a named or hex color. An empty color leaves text as is.
func Colorize(color, text string) string {
	if color == "" {
		return text
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(text)
}

// Palette is the named terminal colors in listing order with their hex value.
var Palette = []struct {
	Name string
	Hex  string
}{
	{"white", "#f3f3f3"},
	{"green", "#33ff66"},
	{"amber", "#ffb000"},
	{"red", "#ff5555"},
	{"blue", "#5599ff"},
	{"cyan", "#55ffff"},
	{"magenta", "#ff55ff"},
	{"yellow", "#ffff55"},
	{"grey", "#a0a0a0"},
}

// LookupColor resolves a palette name or a #rrggbb literal to a hex color.
func LookupColor(name string) (string, bool) {
	for _, c := range Palette {
		if strings.EqualFold(c.Name, name) {
			return c.Hex, true
		}
	}
	if isHexColor(name) {
		return strings.ToLower(name), true
	}
	return "", false
}

// ColorNames lists the palette names.
func ColorNames() []string {
	names := make([]string, 0, len(Palette))
	for _, c := range Palette {
		names = append(names, c.Name)
	}
	return names
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

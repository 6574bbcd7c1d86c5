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

// Package autocomplete completes path arguments of filesystem commands.
package autocomplete

import (
	"strings"

	"github.com/alibaba/opensandbox/vshell/pkg/command"
	"github.com/alibaba/opensandbox/vshell/pkg/metrics"
	"github.com/alibaba/opensandbox/vshell/pkg/session"
	"github.com/alibaba/opensandbox/vshell/pkg/vfs"
)

// PromptSuffix ends every prompt.
const PromptSuffix = "> "

// ArgumentKind classifies the path being completed.
type ArgumentKind int

const (
	ArgRoot ArgumentKind = iota
	ArgShallowRelative
	ArgDeepRelative
	ArgAbsolute
	ArgDeepAbsolute
	ArgComplete
)

// Result of one completion.
type Result struct {
	// Valid is false when nothing could be completed.
	Valid bool
	// Line is the new input line, prompt included. Invalid results echo the input.
	Line string
	// Completion is the resolved argument, directories end with "/".
	Completion string
	// SearchPath is the directory that was searched.
	SearchPath string
	// Candidates lists every match in the searched directory.
	Candidates []string
}

// Engine completes input against the session filesystem and remembers the last
// selection so repeated requests cycle through the matches.
type Engine struct {
	sess *session.Session

	lastID     string
	lastLine   string
	lastSource string
}

// New returns an engine bound to sess.
func New(sess *session.Session) *Engine {
	return &Engine{sess: sess}
}

// Prompt renders the prompt for the current directory.
func Prompt(fs *vfs.FileSystem) string {
	return fs.DisplayPath(fs.CurrentDirectory()) + PromptSuffix
}

// Prompt renders the prompt of the bound session.
func (e *Engine) Prompt() string {
	e.sess.Lock()
	defer e.sess.Unlock()
	return Prompt(e.sess.FS)
}

// Complete completes input. With next set and input equal to the previous
// completion, the match after the previous one is chosen instead.
func (e *Engine) Complete(input string, next bool) Result {
	e.sess.Lock()
	defer e.sess.Unlock()

	result := e.complete(e.sess.FS, input, next)
	metrics.RecordAutocomplete(result.Valid)
	return result
}

// Reset forgets the cycling state.
func (e *Engine) Reset() {
	e.sess.Lock()
	defer e.sess.Unlock()
	e.forget()
}

func (e *Engine) forget() {
	e.lastID, e.lastLine, e.lastSource = "", "", ""
}

func (e *Engine) complete(fs *vfs.FileSystem, input string, next bool) Result {
	prompt := Prompt(fs)
	cycling := next && e.lastLine != "" && input == e.lastLine
	source := input
	if cycling {
		source = e.lastSource
	} else {
		e.forget()
	}

	text := strings.TrimPrefix(source, prompt)
	tokens := command.Tokenize(text)
	if len(tokens) == 0 || len(tokens) > 2 {
		return Result{Line: input}
	}
	cmd := command.Classify(tokens[0])
	kind, ok := kindFor(cmd)
	if !ok {
		return Result{Line: input}
	}

	arg := ""
	if len(tokens) == 2 {
		arg = tokens[1]
	}
	dir, fragment := searchScope(fs, arg)
	if dir == nil {
		return Result{Line: input, SearchPath: strings.TrimSuffix(arg, fragment)}
	}
	searchPath := fs.EntityPath(dir)

	var matches []*vfs.Entity
	for _, child := range dir.Entities {
		if accepts(kind, child) && strings.HasPrefix(child.DisplayName(), fragment) {
			matches = append(matches, child)
		}
	}
	if len(matches) == 0 {
		return Result{Line: input, SearchPath: searchPath}
	}

	pick := matches[0]
	if cycling {
		pick = after(matches, e.lastID)
	}

	completion := arg[:len(arg)-len(fragment)] + pick.DisplayName()
	if pick.IsDirectory {
		completion += "/"
	}
	line := prompt + tokens[0] + " " + completion

	e.lastID = pick.ID
	e.lastLine = line
	e.lastSource = source

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m.DisplayName())
	}
	return Result{
		Valid:      true,
		Line:       line,
		Completion: completion,
		SearchPath: searchPath,
		Candidates: names,
	}
}

// Classify names the shape of a path argument.
func Classify(arg string) ArgumentKind {
	switch {
	case arg == "/":
		return ArgRoot
	case strings.HasSuffix(arg, "/"):
		return ArgComplete
	case strings.HasPrefix(arg, "/"):
		if strings.Contains(arg[1:], "/") {
			return ArgDeepAbsolute
		}
		return ArgAbsolute
	case strings.Contains(arg, "/"):
		return ArgDeepRelative
	default:
		return ArgShallowRelative
	}
}

// searchScope returns the folder to search and the fragment to match in it.
func searchScope(fs *vfs.FileSystem, arg string) (*vfs.Entity, string) {
	switch Classify(arg) {
	case ArgRoot:
		return fs.Root(), ""
	case ArgComplete:
		return fs.FindDirectory(arg), ""
	case ArgAbsolute:
		return fs.Root(), arg[1:]
	case ArgShallowRelative:
		return fs.CurrentDirectory(), arg
	default:
		dirPart, fragment := vfs.SplitPath(arg)
		return fs.FindDirectory(dirPart), fragment
	}
}

func kindFor(cmd command.Command) (vfs.Kind, bool) {
	switch cmd {
	case command.ChangeDirectory, command.ListDirectory, command.DeleteDirectory:
		return vfs.KindDirectory, true
	case command.ViewPermissions, command.ChangePermissions:
		return vfs.KindAny, true
	case command.ViewFile, command.EditFile, command.DeleteFile:
		return vfs.KindFile, true
	default:
		return vfs.KindAny, false
	}
}

func accepts(kind vfs.Kind, e *vfs.Entity) bool {
	switch kind {
	case vfs.KindDirectory:
		return e.IsDirectory
	case vfs.KindFile:
		return !e.IsDirectory
	default:
		return true
	}
}

// after returns the match following the one with id, wrapping to the first.
func after(matches []*vfs.Entity, id string) *vfs.Entity {
	for i, m := range matches {
		if m.ID == id {
			return matches[(i+1)%len(matches)]
		}
	}
	return matches[0]
}

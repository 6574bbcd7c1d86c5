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

package vfs

import "strings"

// Kind filters lookups by entity type.
type Kind int

const (
	KindAny Kind = iota
	KindFile
	KindDirectory
)

func (k Kind) accepts(e *Entity) bool {
	switch k {
	case KindFile:
		return !e.IsDirectory
	case KindDirectory:
		return e.IsDirectory
	default:
		return true
	}
}

// FindByName searches the descendants of root depth-first.
func FindByName(root *Entity, name string) *Entity {
	return findByName(root, name, KindAny)
}

func findByName(root *Entity, name string, kind Kind) *Entity {
	if root == nil || name == "" {
		return nil
	}
	for _, child := range root.Entities {
		if kind.accepts(child) && child.matches(name) {
			return child
		}
		if found := findByName(child, name, kind); found != nil {
			return found
		}
	}
	return nil
}

// FindByID returns the entity with id, root itself included.
func FindByID(root *Entity, id string) *Entity {
	if root == nil || id == "" {
		return nil
	}
	var found *Entity
	Walk(root, func(e *Entity) bool {
		if e.ID == id {
			found = e
			return false
		}
		return true
	})
	return found
}

// FindChild looks only at the immediate children of dir.
func FindChild(dir *Entity, name string, kind Kind) *Entity {
	if dir == nil {
		return nil
	}
	for _, child := range dir.Entities {
		if kind.accepts(child) && child.matches(name) {
			return child
		}
	}
	return nil
}

// FindDirectory resolves a folder path. A leading "/" starts at the root, "~" at
// home, anything else at the working directory.
func (fs *FileSystem) FindDirectory(path string) *Entity {
	start, rest := fs.anchor(path)
	return fs.walkDirectory(start, rest)
}

// FindDirectoryFrom resolves path relative to start.
func (fs *FileSystem) FindDirectoryFrom(start *Entity, path string) *Entity {
	return fs.walkDirectory(start, path)
}

func (fs *FileSystem) anchor(path string) (*Entity, string) {
	switch {
	case strings.HasPrefix(path, "/"):
		return fs.Root(), path[1:]
	case path == HomeAlias:
		return fs.Home(), ""
	case strings.HasPrefix(path, HomeAlias+"/"):
		return fs.Home(), path[len(HomeAlias)+1:]
	default:
		return fs.CurrentDirectory(), path
	}
}

// walkDirectory steps through every segment but the last as an immediate child;
// the last one is searched by name among folders.
func (fs *FileSystem) walkDirectory(start *Entity, path string) *Entity {
	if start == nil {
		return nil
	}
	if path == "" {
		return start
	}

	head, rest, nested := strings.Cut(path, "/")
	if !nested {
		return fs.step(start, head, true)
	}
	next := fs.step(start, head, false)
	if next == nil {
		return nil
	}
	return fs.walkDirectory(next, rest)
}

func (fs *FileSystem) step(dir *Entity, segment string, last bool) *Entity {
	switch segment {
	case "", ".":
		return dir
	case "..":
		if parent := fs.Parent(dir); parent != nil {
			return parent
		}
		return dir
	}
	if child := FindChild(dir, segment, KindDirectory); child != nil {
		return child
	}
	if last {
		return findByName(dir, segment, KindDirectory)
	}
	return nil
}

// ChangeDirectory moves the working directory and returns the new one, or nil
// when target does not resolve to a folder.
func (fs *FileSystem) ChangeDirectory(target string) *Entity {
	var dir *Entity
	switch target {
	case ".":
		dir = fs.CurrentDirectory()
	case "..":
		cur := fs.CurrentDirectory()
		if dir = fs.Parent(cur); dir == nil {
			dir = cur
		}
	case HomeAlias:
		dir = fs.Home()
	case "root", "/":
		dir = fs.Root()
	default:
		dir = fs.FindDirectory(target)
		if dir == nil && !strings.HasPrefix(target, "/") {
			dir = fs.FindDirectory("/" + target)
		}
	}
	if dir == nil {
		return nil
	}
	fs.SetCurrentDirectory(dir)
	return dir
}

// SplitPath separates "a/b/c.txt" into the folder part "a/b" and the name "c.txt".
// The folder part of "/c.txt" is "/".
func SplitPath(path string) (string, string) {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return "", path
	}
	if idx == 0 {
		return "/", path[1:]
	}
	return path[:idx], path[idx+1:]
}

// Resolve finds an entity by a possibly nested path. A bare name prefers the
// immediate child of the working directory and falls back to a depth-first search.
func (fs *FileSystem) Resolve(path string, kind Kind) *Entity {
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		if kind == KindFile {
			return nil
		}
		return fs.Root()
	}
	if path == HomeAlias && kind != KindFile {
		return fs.Home()
	}

	dirPart, name := SplitPath(path)
	if dirPart == "" {
		cur := fs.CurrentDirectory()
		if child := FindChild(cur, name, kind); child != nil {
			return child
		}
		return findByName(cur, name, kind)
	}

	dir := fs.FindDirectory(dirPart)
	if dir == nil {
		return nil
	}
	if name == "." || name == ".." {
		if kind == KindFile {
			return nil
		}
		return fs.step(dir, name, true)
	}
	return FindChild(dir, name, kind)
}

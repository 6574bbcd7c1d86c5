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

// Well known locations of the default layout.
const (
	ProgramsPath = "/system/programs"
	DevicesPath  = "/system/devices"
	NetworkPath  = "/system/network"
	GroupsPath   = "/system/groups"
	UsersPath    = "/users"
	TempPath     = "/temp"

	// HomeAlias replaces the home directory prefix in displayed paths.
	HomeAlias = "~"
)

// FileSystem is the whole virtual tree plus the working directory.
type FileSystem struct {
	Directories        []*Entity `json:"directories" yaml:"directories"`
	CurrentDirectoryID string    `json:"currentDirectoryId" yaml:"currentDirectoryId"`
}

// New builds a filesystem around a root folder.
func New(root *Entity) *FileSystem {
	root.IsRoot = true
	root.IsDirectory = true
	root.ParentID = ""
	return &FileSystem{
		Directories:        []*Entity{root},
		CurrentDirectoryID: root.ID,
	}
}

// Root returns the root folder, or nil for an empty filesystem.
func (fs *FileSystem) Root() *Entity {
	var first *Entity
	for _, dir := range fs.Directories {
		if dir == nil {
			continue
		}
		if dir.IsRoot {
			return dir
		}
		if first == nil {
			first = dir
		}
	}
	return first
}

// CurrentDirectory resolves the working directory. A stale id resets to the root.
func (fs *FileSystem) CurrentDirectory() *Entity {
	root := fs.Root()
	if root == nil {
		return nil
	}
	if cur := FindByID(root, fs.CurrentDirectoryID); cur != nil && cur.IsDirectory {
		return cur
	}
	fs.CurrentDirectoryID = root.ID
	return root
}

// SetCurrentDirectory moves the working directory. Files are ignored.
func (fs *FileSystem) SetCurrentDirectory(dir *Entity) {
	if dir == nil || !dir.IsDirectory {
		return
	}
	fs.CurrentDirectoryID = dir.ID
}

// Home returns the active user's home folder, falling back to the root.
func (fs *FileSystem) Home() *Entity {
	root := fs.Root()
	if root == nil {
		return nil
	}
	var home *Entity
	Walk(root, func(e *Entity) bool {
		if e.IsHome && e.IsDirectory {
			home = e
			return false
		}
		return true
	})
	if home == nil {
		return root
	}
	return home
}

// Parent returns the folder holding e, nil for the root or a detached entity.
func (fs *FileSystem) Parent(e *Entity) *Entity {
	if e == nil || e.IsRoot || e.ParentID == "" {
		return nil
	}
	return FindByID(fs.Root(), e.ParentID)
}

// Ancestry returns the chain from the root down to e, both included.
func (fs *FileSystem) Ancestry(e *Entity) []*Entity {
	var chain []*Entity
	seen := make(map[string]struct{})
	for cur := e; cur != nil; cur = fs.Parent(cur) {
		if _, loop := seen[cur.ID]; loop {
			break
		}
		seen[cur.ID] = struct{}{}
		chain = append(chain, cur)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// EntityPath renders the absolute path of e. The root is "/".
func (fs *FileSystem) EntityPath(e *Entity) string {
	if e == nil {
		return ""
	}
	chain := fs.Ancestry(e)
	parts := make([]string, 0, len(chain))
	for _, node := range chain {
		if node.IsRoot {
			continue
		}
		parts = append(parts, node.DisplayName())
	}
	return "/" + strings.Join(parts, "/")
}

// DirectoryPath renders the path of e when it is a folder, of its parent otherwise.
func (fs *FileSystem) DirectoryPath(e *Entity) string {
	if e != nil && !e.IsDirectory {
		if parent := fs.Parent(e); parent != nil {
			return fs.EntityPath(parent)
		}
	}
	return fs.EntityPath(e)
}

// DisplayPath is EntityPath with the home prefix replaced by "~".
func (fs *FileSystem) DisplayPath(e *Entity) string {
	full := fs.EntityPath(e)
	home := fs.Home()
	if home == nil || home.IsRoot {
		return full
	}
	homePath := fs.EntityPath(home)
	switch {
	case full == homePath:
		return HomeAlias
	case strings.HasPrefix(full, homePath+"/"):
		return HomeAlias + full[len(homePath):]
	default:
		return full
	}
}

// Walk visits root and its descendants depth-first in child order until fn
// returns false.
func Walk(root *Entity, fn func(e *Entity) bool) bool {
	if root == nil {
		return true
	}
	if !fn(root) {
		return false
	}
	for _, child := range root.Entities {
		if !Walk(child, fn) {
			return false
		}
	}
	return true
}

// Count returns the number of entities in the tree.
func (fs *FileSystem) Count() int {
	n := 0
	Walk(fs.Root(), func(*Entity) bool {
		n++
		return true
	})
	return n
}

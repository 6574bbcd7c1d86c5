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

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrNotFound     = errors.New("entity not found")
	ErrExists       = errors.New("entity already exists")
	ErrCycle        = errors.New("entity would become its own ancestor")
	ErrNotEmpty     = errors.New("directory is not empty")
	ErrNotDirectory = errors.New("entity is not a directory")
	ErrSameLocation = errors.New("source and destination are the same")
	ErrDetached     = errors.New("entity is not a child of its parent")
)

// IsAncestor reports whether e lives somewhere below ancestor.
func IsAncestor(ancestor, e *Entity) bool {
	if ancestor == nil || e == nil || ancestor == e {
		return false
	}
	return FindByID(ancestor, e.ID) != nil
}

// Conflict returns the child of dir already answering to the display name of e.
func Conflict(dir, e *Entity) *Entity {
	if dir == nil || e == nil {
		return nil
	}
	name := e.DisplayName()
	for _, child := range dir.Entities {
		if child != e && strings.EqualFold(child.DisplayName(), name) {
			return child
		}
	}
	return nil
}

// AddChild attaches child to parent.
func (fs *FileSystem) AddChild(parent, child *Entity) error {
	if parent == nil || child == nil {
		return ErrNotFound
	}
	if !parent.IsDirectory {
		return fmt.Errorf("add %q to %q: %w", child.DisplayName(), parent.DisplayName(), ErrNotDirectory)
	}
	if parent == child || IsAncestor(child, parent) {
		return fmt.Errorf("add %q to %q: %w", child.DisplayName(), parent.DisplayName(), ErrCycle)
	}
	if Conflict(parent, child) != nil {
		return fmt.Errorf("add %q to %q: %w", child.DisplayName(), parent.DisplayName(), ErrExists)
	}
	child.ParentID = parent.ID
	child.IsRoot = false
	parent.Entities = append(parent.Entities, child)
	return nil
}

// RemoveChild detaches child and its whole subtree from parent.
func (fs *FileSystem) RemoveChild(parent, child *Entity) error {
	if parent == nil || child == nil {
		return ErrNotFound
	}
	idx := slices.Index(parent.Entities, child)
	if idx < 0 {
		return fmt.Errorf("remove %q from %q: %w", child.DisplayName(), parent.DisplayName(), ErrNotFound)
	}
	parent.Entities = slices.Delete(parent.Entities, idx, idx+1)
	child.ParentID = ""

	if cur := FindByID(child, fs.CurrentDirectoryID); cur != nil {
		fs.CurrentDirectoryID = parent.ID
	}
	return nil
}

// Move reparents e under dest.
func (fs *FileSystem) Move(e, dest *Entity) error {
	if e == nil || dest == nil {
		return ErrNotFound
	}
	if e == dest {
		return fmt.Errorf("move %q: %w", e.DisplayName(), ErrSameLocation)
	}
	if !dest.IsDirectory {
		return fmt.Errorf("move %q to %q: %w", e.DisplayName(), dest.DisplayName(), ErrNotDirectory)
	}
	parent := fs.Parent(e)
	if parent == nil || !slices.Contains(parent.Entities, e) {
		return fmt.Errorf("move %q: %w", e.DisplayName(), ErrDetached)
	}
	if parent == dest {
		return fmt.Errorf("move %q to %q: %w", e.DisplayName(), dest.DisplayName(), ErrSameLocation)
	}
	if IsAncestor(e, dest) {
		return fmt.Errorf("move %q to %q: %w", e.DisplayName(), dest.DisplayName(), ErrCycle)
	}
	if Conflict(dest, e) != nil {
		return fmt.Errorf("move %q to %q: %w", e.DisplayName(), dest.DisplayName(), ErrExists)
	}

	idx := slices.Index(parent.Entities, e)
	parent.Entities = slices.Delete(parent.Entities, idx, idx+1)
	e.ParentID = dest.ID
	dest.Entities = append(dest.Entities, e)
	return nil
}

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
	"fmt"

	"go.uber.org/multierr"
)

// Validate checks the tree invariants and reports every violation found.
func (fs *FileSystem) Validate() error {
	var err error

	roots := 0
	for i, dir := range fs.Directories {
		if dir == nil {
			err = multierr.Append(err, fmt.Errorf("directory entry %d is null", i))
			continue
		}
		if dir.IsRoot {
			roots++
		}
	}
	if roots != 1 {
		err = multierr.Append(err, fmt.Errorf("expected exactly one root, found %d", roots))
	}

	root := fs.Root()
	if root == nil {
		return multierr.Append(err, fmt.Errorf("filesystem has no directories"))
	}
	if !root.IsDirectory {
		err = multierr.Append(err, fmt.Errorf("root %q is not a directory", root.ID))
	}
	if root.ParentID != "" {
		err = multierr.Append(err, fmt.Errorf("root %q has parent %q", root.ID, root.ParentID))
	}

	seen := make(map[string]*Entity)
	var check func(e *Entity)
	check = func(e *Entity) {
		if e.ID == "" {
			err = multierr.Append(err, fmt.Errorf("entity %q has no id", e.DisplayName()))
		} else if _, dup := seen[e.ID]; dup {
			err = multierr.Append(err, fmt.Errorf("entity id %q appears more than once", e.ID))
			return
		}
		seen[e.ID] = e

		if !e.IsDirectory && len(e.Entities) > 0 {
			err = multierr.Append(err, fmt.Errorf("file %q has children", e.ID))
		}
		if e != root && e.IsRoot {
			err = multierr.Append(err, fmt.Errorf("nested entity %q is marked root", e.ID))
		}
		for i, child := range e.Entities {
			if child == nil {
				err = multierr.Append(err, fmt.Errorf("entity %q has a null child at %d", e.ID, i))
				continue
			}
			if child.ParentID != e.ID {
				err = multierr.Append(err, fmt.Errorf("entity %q lists child %q whose parent is %q", e.ID, child.ID, child.ParentID))
			}
			check(child)
		}
	}
	check(root)

	if cur, ok := seen[fs.CurrentDirectoryID]; !ok || !cur.IsDirectory {
		err = multierr.Append(err, fmt.Errorf("current directory %q does not resolve to a directory", fs.CurrentDirectoryID))
	}
	return err
}

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
	"strings"

	"github.com/google/uuid"
)

// Entity is a file or a folder of the virtual filesystem.
type Entity struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Extension   string       `json:"extension,omitempty" yaml:"extension,omitempty"`
	Contents    string       `json:"contents,omitempty" yaml:"contents,omitempty"`
	IsDirectory bool         `json:"isDirectory" yaml:"isDirectory"`
	IsRoot      bool         `json:"isRoot,omitempty" yaml:"isRoot,omitempty"`
	IsHome      bool         `json:"isHome,omitempty" yaml:"isHome,omitempty"`
	Permissions []Permission `json:"permissions" yaml:"permissions"`
	ParentID    string       `json:"parentId,omitempty" yaml:"parentId,omitempty"`
	Entities    []*Entity    `json:"entities,omitempty" yaml:"entities,omitempty"`
}

func newID() string {
	return uuid.New().String()
}

// NewDirectory creates a detached folder.
func NewDirectory(name string, perms []Permission) *Entity {
	return &Entity{
		ID:          newID(),
		Name:        name,
		IsDirectory: true,
		Permissions: clonePermissions(perms),
	}
}

// NewFile creates a detached file. The part after the last '.' of fullName becomes
// the extension.
func NewFile(fullName, contents string, perms []Permission) *Entity {
	name, ext := SplitFileName(fullName)
	return &Entity{
		ID:          newID(),
		Name:        name,
		Extension:   ext,
		Contents:    contents,
		Permissions: clonePermissions(perms),
	}
}

// SplitFileName splits "report.txt" into "report" and "txt".
func SplitFileName(fullName string) (string, string) {
	idx := strings.LastIndex(fullName, ".")
	if idx <= 0 || idx == len(fullName)-1 {
		return fullName, ""
	}
	return fullName[:idx], fullName[idx+1:]
}

// DisplayName is the name shown to the user, name.extension for files.
func (e *Entity) DisplayName() string {
	if e.Extension != "" {
		return e.Name + "." + e.Extension
	}
	return e.Name
}

// Can reports whether the entity grants p.
func (e *Entity) Can(p Permission) bool {
	return HasPermission(e.Permissions, p)
}

// SetPermissions replaces the permission set.
func (e *Entity) SetPermissions(perms []Permission) {
	e.Permissions = clonePermissions(perms)
}

// matches applies the lookup rules: files answer to the bare name or the
// name.extension form, folders to the bare name, both case-insensitively.
func (e *Entity) matches(name string) bool {
	if strings.EqualFold(e.Name, name) {
		return true
	}
	return !e.IsDirectory && e.Extension != "" && strings.EqualFold(e.DisplayName(), name)
}

func clonePermissions(perms []Permission) []Permission {
	if len(perms) == 0 {
		return []Permission{None}
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

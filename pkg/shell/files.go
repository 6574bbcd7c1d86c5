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

package shell

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"

	"github.com/alibaba/opensandbox/vshell/pkg/log"
	"github.com/alibaba/opensandbox/vshell/pkg/render"
	"github.com/alibaba/opensandbox/vshell/pkg/session"
	"github.com/alibaba/opensandbox/vshell/pkg/vfs"
)

var recurseFlags = []string{"-r", "--recurse"}

// reserved names are path tokens and never valid entity names.
var reserved = []string{".", "..", vfs.HomeAlias, "root"}

func validName(name string) bool {
	return name != "" && !strings.Contains(name, "/") && !slices.Contains(reserved, strings.ToLower(name))
}

func notWritable(fs *vfs.FileSystem, e *vfs.Entity) string {
	return fmt.Sprintf("permission denied: %q is not writable", fs.DisplayPath(e))
}

func notReadable(fs *vfs.FileSystem, e *vfs.Entity) string {
	return fmt.Sprintf("permission denied: %q is not readable", fs.DisplayPath(e))
}

func notDirectory(name string) string {
	return fmt.Sprintf("%q is not a directory", name)
}

func noFile(name string) string {
	return fmt.Sprintf("no file named %q", name)
}

// resolveFile finds a file, telling apart a missing name from a folder name.
func resolveFile(fs *vfs.FileSystem, path string) (*vfs.Entity, string) {
	if f := fs.Resolve(path, vfs.KindFile); f != nil {
		return f, ""
	}
	if fs.Resolve(path, vfs.KindDirectory) != nil {
		return nil, fmt.Sprintf("%q is a directory", path)
	}
	return nil, noFile(path)
}

func (d *Dispatcher) listDirectory(c *call) string {
	dir := c.fs.CurrentDirectory()
	if target := c.arg(0); target != "" {
		if dir = c.fs.FindDirectory(target); dir == nil {
			return notDirectory(target)
		}
	}
	if len(dir.Entities) == 0 {
		return fmt.Sprintf("%s is empty", c.fs.DisplayPath(dir))
	}

	rows := make([][]string, 0, len(dir.Entities))
	for _, e := range dir.Entities {
		name, kind, size := e.DisplayName(), "file", humanize.Bytes(uint64(len(e.Contents)))
		if e.IsDirectory {
			name, kind, size = name+"/", "dir", "-"
		}
		rows = append(rows, []string{name, kind, vfs.DisplayPermissions(e.Permissions), size})
	}
	return render.Table([]string{"NAME", "TYPE", "PERMISSIONS", "SIZE"}, rows)
}

func (d *Dispatcher) changeDirectory(c *call) string {
	target := c.arg(0)
	if c.fs.ChangeDirectory(target) == nil {
		return notDirectory(target)
	}
	return ""
}

// makeEntity creates a file or folder, optionally below a nested path.
func (d *Dispatcher) makeEntity(c *call, directory bool) string {
	dirPart, name := vfs.SplitPath(c.arg(0))
	parent := c.fs.CurrentDirectory()
	if dirPart != "" {
		if parent = c.fs.FindDirectory(dirPart); parent == nil {
			return notDirectory(dirPart)
		}
	}
	if !validName(name) {
		return fmt.Sprintf("%q is not a valid name", name)
	}
	if !parent.Can(vfs.UserWrite) {
		return notWritable(c.fs, parent)
	}

	var e *vfs.Entity
	if directory {
		e = vfs.NewDirectory(name, session.PermNewDirectory)
	} else {
		e = vfs.NewFile(name, "", session.PermNewFile)
	}
	if err := c.fs.AddChild(parent, e); err != nil {
		if errors.Is(err, vfs.ErrExists) {
			return fmt.Sprintf("%q already exists", e.DisplayName())
		}
		log.Warn("create %q rejected: %v", name, err)
		return ""
	}
	return fmt.Sprintf("created %q", c.fs.DisplayPath(e))
}

func (d *Dispatcher) deleteFile(c *call) string {
	f, msg := resolveFile(c.fs, c.arg(0))
	if f == nil {
		return msg
	}
	parent := c.fs.Parent(f)
	if parent == nil {
		log.Warn("delete %q rejected: %v", f.ID, vfs.ErrDetached)
		return ""
	}
	if !parent.Can(vfs.UserWrite) {
		return notWritable(c.fs, parent)
	}
	if err := c.fs.RemoveChild(parent, f); err != nil {
		log.Warn("delete %q rejected: %v", f.ID, err)
		return ""
	}
	return fmt.Sprintf("deleted %q", f.DisplayName())
}

func (d *Dispatcher) deleteDirectory(c *call) string {
	var (
		target  string
		recurse bool
	)
	for _, a := range c.args {
		if slices.Contains(recurseFlags, a) {
			recurse = true
		} else if target == "" {
			target = a
		}
	}
	if target == "" {
		return d.helpFor(c.fs, c.token)
	}

	dir := c.fs.Resolve(target, vfs.KindDirectory)
	if dir == nil {
		return notDirectory(target)
	}
	if dir.IsRoot {
		return "the root directory cannot be deleted"
	}
	home := c.fs.Home()
	if dir == home || vfs.IsAncestor(dir, home) {
		return fmt.Sprintf("%q holds the active home directory", target)
	}
	if len(dir.Entities) > 0 && !recurse {
		return fmt.Sprintf("%q has files or folders in it. Use \"-r\" to delete it with its contents.", target)
	}
	parent := c.fs.Parent(dir)
	if parent == nil {
		log.Warn("delete %q rejected: %v", dir.ID, vfs.ErrDetached)
		return ""
	}
	if !parent.Can(vfs.UserWrite) {
		return notWritable(c.fs, parent)
	}
	if err := c.fs.RemoveChild(parent, dir); err != nil {
		log.Warn("delete %q rejected: %v", dir.ID, err)
		return ""
	}
	return fmt.Sprintf("deleted %q", dir.DisplayName())
}

// move reparents a file or folder. Refusals that break tree rules are logged and
// answered with an empty reply.
func (d *Dispatcher) move(c *call, kind vfs.Kind) string {
	if len(c.args) < 2 {
		return d.helpFor(c.fs, c.token)
	}
	srcPath, dstPath := c.args[0], c.args[1]

	src := c.fs.Resolve(srcPath, kind)
	if src == nil {
		if kind == vfs.KindFile {
			return noFile(srcPath)
		}
		return notDirectory(srcPath)
	}
	dest := absoluteDirectory(c.fs, dstPath)
	if dest == nil {
		log.Warn("move %q rejected: destination %q not found", srcPath, dstPath)
		return ""
	}

	parent := c.fs.Parent(src)
	if parent != nil && !parent.Can(vfs.UserWrite) {
		return notWritable(c.fs, parent)
	}
	if !dest.Can(vfs.UserWrite) {
		return notWritable(c.fs, dest)
	}

	if err := c.fs.Move(src, dest); err != nil {
		if errors.Is(err, vfs.ErrExists) {
			return fmt.Sprintf("%q already exists in %q", src.DisplayName(), c.fs.DisplayPath(dest))
		}
		log.Warn("move %q to %q rejected: %v", srcPath, dstPath, err)
		return ""
	}
	return fmt.Sprintf("moved %q to %q", src.DisplayName(), c.fs.DisplayPath(dest))
}

// absoluteDirectory resolves a destination from the root, accepting the home
// alias and, as a last resort, a path relative to the working directory.
func absoluteDirectory(fs *vfs.FileSystem, path string) *vfs.Entity {
	if strings.HasPrefix(path, "/") || strings.HasPrefix(path, vfs.HomeAlias) {
		return fs.FindDirectory(path)
	}
	if dir := fs.FindDirectory("/" + path); dir != nil {
		return dir
	}
	return fs.FindDirectory(path)
}

func (d *Dispatcher) editFile(c *call) Response {
	f, msg := resolveFile(c.fs, c.arg(0))
	if f == nil {
		return text(msg)
	}
	if !f.Can(vfs.UserWrite) {
		return text(notWritable(c.fs, f))
	}
	return Response{
		Text:         fmt.Sprintf("editing %q, end with a line holding a single \".\"", f.DisplayName()),
		Action:       ActionEdit,
		EditID:       f.ID,
		EditContents: f.Contents,
	}
}

func (d *Dispatcher) viewFile(c *call) string {
	f, msg := resolveFile(c.fs, c.arg(0))
	if f == nil {
		return msg
	}
	if !f.Can(vfs.UserRead) {
		return notReadable(c.fs, f)
	}
	if f.Contents == "" {
		return fmt.Sprintf("%q is empty", f.DisplayName())
	}
	return f.Contents
}

func (d *Dispatcher) viewPermissions(c *call) string {
	target := c.arg(0)
	e := c.fs.Resolve(target, vfs.KindAny)
	if e == nil {
		return fmt.Sprintf("no file or directory named %q", target)
	}
	return fmt.Sprintf("%s %s", vfs.DisplayPermissions(e.Permissions), c.fs.DisplayPath(e))
}

func (d *Dispatcher) changePermissions(c *call) string {
	if len(c.args) < 2 {
		return vfs.PermissionFormatMessage
	}
	target, bits := c.args[0], c.args[1]
	perms, ok := vfs.ParsePermissions(bits)
	if !ok {
		return vfs.PermissionFormatMessage
	}
	e := c.fs.Resolve(target, vfs.KindAny)
	if e == nil {
		return fmt.Sprintf("no file or directory named %q", target)
	}
	e.SetPermissions(perms)
	return fmt.Sprintf("%s %s", vfs.DisplayPermissions(e.Permissions), c.fs.DisplayPath(e))
}

// find lists the descendants of the working directory whose relative path
// matches a doublestar pattern.
func (d *Dispatcher) find(c *call) string {
	pattern := c.arg(0)
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Sprintf("%q is not a valid pattern", pattern)
	}

	cur := c.fs.CurrentDirectory()
	base := c.fs.EntityPath(cur)
	if base != "/" {
		base += "/"
	}

	var hits []string
	vfs.Walk(cur, func(e *vfs.Entity) bool {
		if e == cur {
			return true
		}
		rel := strings.TrimPrefix(c.fs.EntityPath(e), base)
		if ok, _ := doublestar.Match(pattern, rel); ok {
			hit := c.fs.DisplayPath(e)
			if e.IsDirectory {
				hit += "/"
			}
			hits = append(hits, hit)
		}
		return true
	})
	if len(hits) == 0 {
		return fmt.Sprintf("nothing matches %q", pattern)
	}
	return strings.Join(hits, "\n")
}

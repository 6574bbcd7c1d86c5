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
	"fmt"
	"slices"
	"strings"

	"github.com/alibaba/opensandbox/vshell/pkg/session"
	"github.com/alibaba/opensandbox/vshell/pkg/vfs"
)

const groupExtension = "grp"

func (d *Dispatcher) findUser(fs *vfs.FileSystem, name string) *vfs.Entity {
	return vfs.FindChild(fs.FindDirectory(vfs.UsersPath), name, vfs.KindDirectory)
}

func (d *Dispatcher) findGroup(fs *vfs.FileSystem, name string) *vfs.Entity {
	groups := fs.FindDirectory(vfs.GroupsPath)
	g := vfs.FindChild(groups, name+"."+groupExtension, vfs.KindFile)
	if g == nil {
		g = vfs.FindChild(groups, name, vfs.KindFile)
	}
	return g
}

func (d *Dispatcher) makeUser(c *call) string {
	name := c.arg(0)
	if !validName(name) || strings.Contains(name, ".") {
		return fmt.Sprintf("%q is not a valid user name", name)
	}
	users := c.fs.FindDirectory(vfs.UsersPath)
	if users == nil {
		return fmt.Sprintf("%s is missing", vfs.UsersPath)
	}
	if session.NewUser(c.fs, users, name) == nil {
		return fmt.Sprintf("user %q already exists", name)
	}
	return fmt.Sprintf("created user %q", name)
}

func (d *Dispatcher) deleteUser(c *call) string {
	name := c.arg(0)
	user := d.findUser(c.fs, name)
	if user == nil {
		return fmt.Sprintf("no user named %q", name)
	}
	if vfs.IsAncestor(user, c.fs.Home()) {
		return fmt.Sprintf("%q is the active user and cannot be deleted", name)
	}
	if err := c.fs.RemoveChild(c.fs.Parent(user), user); err != nil {
		return fmt.Sprintf("could not delete user %q", name)
	}

	// drop the user from every group
	if groups := c.fs.FindDirectory(vfs.GroupsPath); groups != nil {
		for _, g := range groups.Entities {
			members := session.GroupMembers(g.Contents)
			if i := indexFold(members, user.Name); i >= 0 {
				g.Contents = session.GroupContents(slices.Delete(members, i, i+1))
			}
		}
	}
	return fmt.Sprintf("deleted user %q", name)
}

func (d *Dispatcher) makeGroup(c *call) string {
	name := c.arg(0)
	if !validName(name) || strings.Contains(name, ".") {
		return fmt.Sprintf("%q is not a valid group name", name)
	}
	groups := c.fs.FindDirectory(vfs.GroupsPath)
	if groups == nil {
		return fmt.Sprintf("%s is missing", vfs.GroupsPath)
	}
	g := vfs.NewFile(name+"."+groupExtension, "", session.PermGroup)
	if err := c.fs.AddChild(groups, g); err != nil {
		return fmt.Sprintf("group %q already exists", name)
	}
	return fmt.Sprintf("created group %q", name)
}

func (d *Dispatcher) deleteGroup(c *call) string {
	name := c.arg(0)
	g := d.findGroup(c.fs, name)
	if g == nil {
		return fmt.Sprintf("no group named %q", name)
	}
	if err := c.fs.RemoveChild(c.fs.Parent(g), g); err != nil {
		return fmt.Sprintf("could not delete group %q", name)
	}
	return fmt.Sprintf("deleted group %q", name)
}

// membership resolves the user and group arguments shared by aug and dug.
func (d *Dispatcher) membership(c *call) (*vfs.Entity, *vfs.Entity, string) {
	if len(c.args) < 2 {
		return nil, nil, d.helpFor(c.fs, c.token)
	}
	user := d.findUser(c.fs, c.args[0])
	if user == nil {
		return nil, nil, fmt.Sprintf("no user named %q", c.args[0])
	}
	g := d.findGroup(c.fs, c.args[1])
	if g == nil {
		return nil, nil, fmt.Sprintf("no group named %q", c.args[1])
	}
	return user, g, ""
}

func (d *Dispatcher) addUserToGroup(c *call) string {
	user, g, msg := d.membership(c)
	if msg != "" {
		return msg
	}
	members := session.GroupMembers(g.Contents)
	if indexFold(members, user.Name) >= 0 {
		return fmt.Sprintf("%q is already a member of %q", user.Name, g.Name)
	}
	g.Contents = session.GroupContents(append(members, user.Name))
	return fmt.Sprintf("added %q to %q", user.Name, g.Name)
}

func (d *Dispatcher) deleteUserFromGroup(c *call) string {
	user, g, msg := d.membership(c)
	if msg != "" {
		return msg
	}
	members := session.GroupMembers(g.Contents)
	i := indexFold(members, user.Name)
	if i < 0 {
		return fmt.Sprintf("%q is not a member of %q", user.Name, g.Name)
	}
	g.Contents = session.GroupContents(slices.Delete(members, i, i+1))
	return fmt.Sprintf("removed %q from %q", user.Name, g.Name)
}

func (d *Dispatcher) viewGroup(c *call) string {
	name := c.arg(0)
	g := d.findGroup(c.fs, name)
	if g == nil {
		return fmt.Sprintf("no group named %q", name)
	}
	members := session.GroupMembers(g.Contents)
	if len(members) == 0 {
		return fmt.Sprintf("%q has no members", g.Name)
	}
	return fmt.Sprintf("%s: %s", g.Name, strings.Join(members, ", "))
}

func indexFold(list []string, s string) int {
	for i, v := range list {
		if strings.EqualFold(v, s) {
			return i
		}
	}
	return -1
}

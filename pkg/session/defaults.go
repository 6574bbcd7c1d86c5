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

package session

import (
	"math/rand"
	"strings"

	"github.com/alibaba/opensandbox/vshell/pkg/command"
	"github.com/alibaba/opensandbox/vshell/pkg/network"
	"github.com/alibaba/opensandbox/vshell/pkg/payload"
	"github.com/alibaba/opensandbox/vshell/pkg/render"
	"github.com/alibaba/opensandbox/vshell/pkg/vfs"
)

const (
	// DefaultColor is the terminal color of a fresh session.
	DefaultColor = "green"
	// DefaultUser owns the home directory of a fresh session.
	DefaultUser = "user"

	commandsProgram = "commands"
	colorsProgram   = "colors"
	programExt      = "exe"
	groupExt        = "grp"
)

// Permission sets of the default layout.
var (
	permRoot     = vfs.MustPermissions("100111")
	permSystem   = vfs.MustPermissions("100111")
	permPrograms = vfs.MustPermissions("110111")
	permProgram  = vfs.MustPermissions("101111")
	permReadOnly = vfs.MustPermissions("100111")
	permUser     = vfs.MustPermissions("111000")
	permTemp     = vfs.MustPermissions("111111")

	// PermNewFile and PermNewDirectory are given to entities created by commands.
	PermNewFile      = vfs.MustPermissions("110000")
	PermNewDirectory = vfs.MustPermissions("111000")
	// PermUserHome is given to user directories created by commands.
	PermUserHome = permUser
	// PermGroup is given to group files created by commands.
	PermGroup = vfs.MustPermissions("110111")
)

var defaultDevices = []struct {
	name     string
	contents string
}{
	{"cpu.dev", "name:vCPU 8-core\ncores:8\nclock:3.4GHz"},
	{"ram.dev", "name:DDR5\nsize:16GB\nspeed:4800MHz"},
	{"disk.dev", "name:NVMe SSD\nsize:512GB\ntype:solid-state"},
	{"gpu.dev", "name:vGPU\nmemory:8GB\nclock:1.8GHz"},
}

var defaultAdapters = []struct {
	name     string
	device   string
	active   bool
	loopback bool
}{
	{"eth-0", "ethernet", true, false},
	{"wlan-0", "wireless", false, false},
	{"lo", "loopback", true, true},
}

// DefaultFileSystem builds the fixed layout every fresh session starts from.
// Adapter addresses are drawn from rng.
func DefaultFileSystem(rng *rand.Rand) *vfs.FileSystem {
	root := vfs.NewDirectory("", permRoot)
	fs := vfs.New(root)
	b := builder{fs: fs}

	system := b.dir(root, "system", permSystem)
	programs := b.dir(system, "programs", permPrograms)
	for _, cmd := range command.All() {
		topic := command.TopicFor(cmd)
		b.file(programs, topic.Name+"."+programExt, topic.Program(), permProgram)
	}

	devices := b.dir(system, "devices", permReadOnly)
	for _, d := range defaultDevices {
		b.file(devices, d.name, d.contents, permReadOnly)
	}

	adapters := b.dir(system, "network", permReadOnly)
	for _, a := range defaultAdapters {
		device := network.Device{
			Device: a.device,
			Active: a.active,
			IPv6:   network.GenerateIPv6(rng, a.loopback),
			IPv8:   network.GenerateIPv8(rng, a.loopback),
		}
		b.file(adapters, a.name, device.Contents(), permReadOnly)
	}

	groups := b.dir(system, "groups", permReadOnly)
	for _, g := range []string{"admin", "users"} {
		b.file(groups, g+"."+groupExt, GroupContents([]string{DefaultUser}), PermGroup)
	}

	users := b.dir(root, "users", permSystem)
	home := NewUser(fs, users, DefaultUser)
	home.IsHome = true
	documents := vfs.FindChild(home, "documents", vfs.KindDirectory)
	b.file(documents, "readme.txt", "welcome to vshell. type \"commands\" to see what you can do.", PermNewFile)

	b.dir(root, "temp", permTemp)

	RefreshListings(fs)
	return fs
}

// NewUser creates /users/<name>/home with its standard folders and returns home.
// It returns nil when the user already exists.
func NewUser(fs *vfs.FileSystem, users *vfs.Entity, name string) *vfs.Entity {
	user := vfs.NewDirectory(name, PermUserHome)
	if err := fs.AddChild(users, user); err != nil {
		return nil
	}
	b := builder{fs: fs}
	home := b.dir(user, "home", PermUserHome)
	for _, sub := range []string{"mail", "documents", "downloads"} {
		b.dir(home, sub, PermUserHome)
	}
	return home
}

// GroupContents encodes the member list of a group file.
func GroupContents(members []string) string {
	fields := make(payload.Fields, 0, len(members))
	for _, m := range members {
		fields = append(fields, payload.Field{Key: "member", Value: m})
	}
	return payload.FormatLines(fields)
}

// GroupMembers decodes the member list of a group file.
func GroupMembers(contents string) []string {
	return payload.ParseLines(contents).All("member")
}

// RefreshListings rewrites the trailing listing brackets of commands.exe and
// colors.exe from the current command and color tables.
func RefreshListings(fs *vfs.FileSystem) {
	programs := fs.FindDirectory(vfs.ProgramsPath)
	if programs == nil {
		return
	}
	names := make([]string, 0)
	for _, cmd := range command.All() {
		names = append(names, cmd.Name())
	}
	if f := vfs.FindChild(programs, commandsProgram, vfs.KindFile); f != nil {
		f.Contents = payload.ReplaceBracket(f.Contents, "COMMANDS", strings.Join(names, ", "))
	}
	if f := vfs.FindChild(programs, colorsProgram, vfs.KindFile); f != nil {
		f.Contents = payload.ReplaceBracket(f.Contents, "COLORS", strings.Join(render.ColorNames(), ", "))
	}
}

type builder struct {
	fs *vfs.FileSystem
}

// default layout names never collide, so AddChild errors are impossible here
func (b builder) dir(parent *vfs.Entity, name string, perms []vfs.Permission) *vfs.Entity {
	d := vfs.NewDirectory(name, perms)
	_ = b.fs.AddChild(parent, d)
	return d
}

func (b builder) file(parent *vfs.Entity, name, contents string, perms []vfs.Permission) *vfs.Entity {
	f := vfs.NewFile(name, contents, perms)
	_ = b.fs.AddChild(parent, f)
	return f
}
